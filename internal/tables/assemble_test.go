package tables

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleTables_SingleRowIsNotATable(t *testing.T) {
	rows := GroupRows([]TextFragment{frag("12 500", 200, 100)}, Standard())
	assert.Empty(t, AssembleTables(rows, Standard()))
}

func TestAssembleTables_SplitsOnVerticalGap(t *testing.T) {
	frags := append(numericBlock(100, 3), numericBlock(280, 3)...)
	blocks := AssembleTables(GroupRows(frags, Standard()), Standard())
	require.Len(t, blocks, 2)
	assert.Len(t, blocks[0].Rows, 3)
	assert.Len(t, blocks[1].Rows, 3)
	assert.Equal(t, 100.0, blocks[0].Y())
	assert.Equal(t, 280.0, blocks[1].Y())
}

func TestAssembleTables_SplitsOnShapeChange(t *testing.T) {
	frags := numericBlock(100, 3)
	// A wide row directly below, differing by three fragments.
	for i := range 6 {
		frags = append(frags, frag("9", float64(10+100*i), 190))
	}
	blocks := AssembleTables(GroupRows(frags, Standard()), Standard())
	require.Len(t, blocks, 1)
	assert.Len(t, blocks[0].Rows, 3)
}

func TestAssembleTables_RejectsLabelOnlyRun(t *testing.T) {
	rows := []Row{
		row(frag("Immobilisations", 10, 100)),
		row(frag("Incorporelles", 10, 130)),
		row(frag("Corporelles", 10, 160)),
	}
	assert.Empty(t, AssembleTables(rows, Standard()))
}

func TestAssembleTables_NumericRowsRescueSingleColumnRuns(t *testing.T) {
	rows := []Row{
		row(frag("Immobilisations", 10, 100)),
		row(frag("12 000", 10, 130)),
		row(frag("Corporelles", 10, 160)),
		row(frag("4 500", 10, 190)),
		row(frag("Financieres", 10, 220)),
	}
	blocks := AssembleTables(rows, Standard())
	require.Len(t, blocks, 1)
	assert.Len(t, blocks[0].Rows, 5)
}

func TestAssembleTables_GapFollowsProfile(t *testing.T) {
	rows := []Row{
		row(frag("A", 10, 100), frag("1", 200, 100)),
		row(frag("B", 10, 155), frag("2", 200, 155)),
		row(frag("C", 10, 210), frag("3", 200, 210)),
	}
	assert.Len(t, AssembleTables(rows, Standard()), 1)
	assert.Empty(t, AssembleTables(rows, Lightweight()))
}

func TestKeepBlock(t *testing.T) {
	p := Standard()
	multi := row(frag("A", 10, 0), frag("B", 200, 0))
	label := row(frag("Label", 10, 0))
	number := row(frag("42", 10, 0))

	assert.False(t, keepBlock([]Row{multi, multi}, p), "too short")
	assert.True(t, keepBlock([]Row{multi, label, label, label, label}, p), "20% multi-fragment")
	assert.False(t, keepBlock([]Row{multi, label, label, label, label, label}, p), "under 20%, no digits")
	assert.True(t, keepBlock([]Row{number, label, label}, p), "a third of rows numeric")
	assert.False(t, keepBlock([]Row{number, label, label, label}, p), "a quarter of rows numeric")
}

func TestAssemble_HeaderRowOnlyOpensARun(t *testing.T) {
	dataRow := func(y float64) Row { return row(frag("Poste", 10, y), frag("1 200", 200, y), frag("950", 350, y)) }
	headRow := func(y float64) Row { return row(frag("Exercice 2023", 200, y), frag("Exercice 2022", 350, y)) }

	rows := []Row{
		headRow(70), dataRow(100), dataRow(130),
		headRow(160),
		dataRow(190), dataRow(220), dataRow(250),
		headRow(500), dataRow(530), dataRow(560),
	}
	header := []bool{true, false, false, true, false, false, false, true, false, false}

	spans := assemble(rows, header, Standard())
	assert.Equal(t, []span{
		{start: 0, end: 3, led: true},
		{start: 4, end: 7},
		{start: 7, end: 10, led: true},
	}, spans)
}

func TestAssemble_HeaderRowsAloneNeverFormABlock(t *testing.T) {
	rows := []Row{
		row(frag("Actif", 10, 100), frag("Brut", 200, 100)),
		row(frag("Passif", 10, 130), frag("Net", 200, 130)),
		row(frag("Total", 10, 160), frag("Net", 200, 160)),
	}
	assert.Empty(t, assemble(rows, []bool{true, true, true}, Standard()))
}
