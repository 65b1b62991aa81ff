package tables

import (
	"math"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RenderedTable is a block projected onto its columns.
type RenderedTable struct {
	Page             int        `json:"page"`
	Columns          []float64  `json:"columns"`
	Cells            [][]string `json:"cells"`
	HeaderRowPresent bool       `json:"header_row_present"`
	HeaderSource     HeaderKind `json:"header_source"`
}

// Render lays out the header (when matched) and the block's rows on the
// given columns. Every row gets one cell per column; fragments sharing a
// cell are joined with a space.
func Render(block Block, header HeaderMatch, columns []float64, p Profile) RenderedTable {
	rows := block.Rows
	if header.Found() {
		rows = append([]Row{header.Row}, block.Rows...)
	}

	t := RenderedTable{
		Columns:      append([]float64(nil), columns...),
		HeaderSource: header.Kind,
	}
	if len(rows) == 0 || len(columns) == 0 {
		return t
	}

	t.Cells = make([][]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(columns))
		for _, f := range row.Fragments {
			col := min(assignColumn(f.Left(), columns, p), len(columns)-1)
			text := strings.TrimSpace(f.Text)
			if cells[col] != "" {
				cells[col] += " " + text
			} else {
				cells[col] = text
			}
		}
		t.Cells[i] = cells
	}
	t.HeaderRowPresent = header.Found() || IsHeaderRow(rows[0], p)
	return t
}

func assignColumn(x float64, columns []float64, p Profile) int {
	col := 0
	if p.Assignment == Threshold {
		for i, c := range columns {
			if x+p.AssignTolerance >= c {
				col = i
			}
		}
		return col
	}
	best := math.Inf(1)
	for i, c := range columns {
		if d := math.Abs(x - c); d < best {
			best = d
			col = i
		}
	}
	return col
}

// HTML renders the table as unstyled markup. The first row uses th cells
// when a header is present; all other cells are td.
func (t RenderedTable) HTML() string {
	table := &html.Node{Type: html.ElementNode, Data: "table", DataAtom: atom.Table}
	for i, row := range t.Cells {
		tr := &html.Node{Type: html.ElementNode, Data: "tr", DataAtom: atom.Tr}
		cellTag, cellAtom := "td", atom.Td
		if i == 0 && t.HeaderRowPresent {
			cellTag, cellAtom = "th", atom.Th
		}
		for _, cell := range row {
			c := &html.Node{Type: html.ElementNode, Data: cellTag, DataAtom: cellAtom}
			if cell != "" {
				c.AppendChild(&html.Node{Type: html.TextNode, Data: cell})
			}
			tr.AppendChild(c)
		}
		table.AppendChild(tr)
	}

	var sb strings.Builder
	if err := html.Render(&sb, table); err != nil {
		return "<table></table>"
	}
	return sb.String()
}

// Markdown renders the table as a GFM pipe table. Tables without a header
// row get an empty one, since the format requires it.
func (t RenderedTable) Markdown() string {
	if len(t.Cells) == 0 {
		return ""
	}
	cols := len(t.Columns)
	body := t.Cells
	head := make([]string, cols)
	if t.HeaderRowPresent {
		head = t.Cells[0]
		body = t.Cells[1:]
	}

	var sb strings.Builder
	writeMarkdownRow(&sb, head)
	sb.WriteString("|")
	for range cols {
		sb.WriteString(" --- |")
	}
	sb.WriteString("\n")
	for _, row := range body {
		writeMarkdownRow(&sb, row)
	}
	return sb.String()
}

func writeMarkdownRow(sb *strings.Builder, cells []string) {
	sb.WriteString("|")
	for _, c := range cells {
		sb.WriteString(" ")
		sb.WriteString(strings.ReplaceAll(c, "|", `\|`))
		sb.WriteString(" |")
	}
	sb.WriteString("\n")
}

// Text returns every non-empty cell, row by row.
func (t RenderedTable) Text() []string {
	var out []string
	for _, row := range t.Cells {
		for _, c := range row {
			if c != "" {
				out = append(out, c)
			}
		}
	}
	return out
}
