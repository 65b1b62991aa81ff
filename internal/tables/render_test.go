package tables

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_AssignsNearestColumnAndJoins(t *testing.T) {
	block := Block{Rows: []Row{
		row(frag("Frais", 10, 100), frag("de", 60, 100), frag("recherche", 90, 100), frag("1 200", 198, 100)),
		row(frag("Brevets", 10, 130), frag("75", 360, 130)),
		row(frag("Fonds", 10, 160), frag("3 000", 205, 160), frag("2 900", 345, 160)),
	}}
	got := Render(block, HeaderMatch{}, threeColumns, Standard())
	assert.Equal(t, [][]string{
		{"Frais de recherche", "1 200", ""},
		{"Brevets", "", "75"},
		{"Fonds", "3 000", "2 900"},
	}, got.Cells)
	assert.False(t, got.HeaderRowPresent)
	assert.Equal(t, HeaderNone, got.HeaderSource)
}

func TestRender_TieGoesToLowerColumn(t *testing.T) {
	block := Block{Rows: []Row{row(frag("x", 50, 0))}}
	got := Render(block, HeaderMatch{}, []float64{0, 100}, Standard())
	assert.Equal(t, [][]string{{"x", ""}}, got.Cells)
}

func TestRender_ThresholdAssignment(t *testing.T) {
	block := Block{Rows: []Row{row(frag("a", 5, 0), frag("b", 95, 0), frag("c", 150, 0), frag("d", 900, 0))}}
	got := Render(block, HeaderMatch{}, []float64{10, 100, 300}, Lightweight())
	assert.Equal(t, [][]string{{"a", "b c", "d"}}, got.Cells)
}

func TestRender_MatchedHeaderLeadsAndIsFlagged(t *testing.T) {
	header := HeaderMatch{
		Kind: HeaderSynthesized,
		Row:  row(frag("31/12/2023", 205, 60), frag("31/12/2022", 352, 60)),
	}
	got := Render(blockAt(100), header, threeColumns, Standard())
	require.Len(t, got.Cells, 4)
	assert.Equal(t, []string{"", "31/12/2023", "31/12/2022"}, got.Cells[0])
	assert.True(t, got.HeaderRowPresent)
	assert.Equal(t, HeaderSynthesized, got.HeaderSource)
}

func TestRender_ColumnCountMatchesBoundaries(t *testing.T) {
	got := Render(blockAt(100), HeaderMatch{}, []float64{10, 200, 350, 500}, Standard())
	for _, r := range got.Cells {
		assert.Len(t, r, 4)
	}
}

func TestRenderedTable_HTML(t *testing.T) {
	rows := GroupRows(scenarioA(), Standard())
	got := Render(Block{Rows: rows}, HeaderMatch{}, threeColumns, Standard())

	want := "<table>" +
		"<tr><th>Actif</th><th>Brut</th><th>Net</th></tr>" +
		"<tr><td>Terrain</td><td>1 000</td><td>800</td></tr>" +
		"<tr><td>Bâtiments</td><td>2 500</td><td>2 100</td></tr>" +
		"</table>"
	assert.Equal(t, want, got.HTML())
}

func TestRenderedTable_HTMLEscapesAndEmpty(t *testing.T) {
	assert.Equal(t, "<table></table>", RenderedTable{}.HTML())

	tbl := RenderedTable{Columns: []float64{0, 100}, Cells: [][]string{{"R&D <net>", ""}}}
	assert.Equal(t, "<table><tr><td>R&amp;D &lt;net&gt;</td><td></td></tr></table>", tbl.HTML())
}

func TestRenderedTable_Markdown(t *testing.T) {
	tbl := RenderedTable{
		Columns:          []float64{10, 200},
		Cells:            [][]string{{"Poste", "2023"}, {"A|B", "1 000"}},
		HeaderRowPresent: true,
	}
	assert.Equal(t, "| Poste | 2023 |\n| --- | --- |\n| A\\|B | 1 000 |\n", tbl.Markdown())

	tbl.HeaderRowPresent = false
	assert.Equal(t, "|  |  |\n| --- | --- |\n| Poste | 2023 |\n| A\\|B | 1 000 |\n", tbl.Markdown())

	assert.Empty(t, RenderedTable{}.Markdown())
}
