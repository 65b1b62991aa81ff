package report

import (
	"fmt"
	"io"

	"github.com/fumiama/go-docx"
)

// WriteDOCX writes every table of the document to a Word file, each under
// a heading naming its page.
func WriteDOCX(w io.Writer, title string, pages []PageOutput) error {
	doc := docx.New().WithDefaultTheme()
	doc.AddParagraph().AddText(title).Size("32").Bold()

	count := 0
	for _, page := range pages {
		for i, t := range page.Tables {
			if len(t.Cells) == 0 || len(t.Columns) == 0 {
				continue
			}
			count++
			doc.AddParagraph().AddText(fmt.Sprintf("Page %d, table %d", page.Page, i+1)).Size("24").Bold()

			tbl := doc.AddTable(len(t.Cells), len(t.Columns), 0, nil)
			for r, row := range t.Cells {
				for c, cell := range row {
					if c >= len(tbl.TableRows[r].TableCells) {
						break
					}
					run := tbl.TableRows[r].TableCells[c].AddParagraph().AddText(cell)
					if r == 0 && t.HeaderRowPresent {
						run.Bold()
					}
				}
			}
			doc.AddParagraph()
		}
	}
	if count == 0 {
		doc.AddParagraph().AddText("No tables detected")
	}

	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}
