package report

import (
	"bytes"
	"fmt"
	"strings"
)

// Markdown builds the human-readable report for a document: a timing
// breakdown followed, for every page, by its full text, the text left
// outside tables and the tables themselves. Verbose adds every fragment
// with its position and confidence.
func Markdown(docID string, pages []PageOutput, timing Timing, verbose bool) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "# OCR output for %s\n\n", docID)
	fmt.Fprintf(&b, "Total pages: %d\n\n", len(pages))

	b.WriteString("## Timing breakdown\n\n")
	b.WriteString("| Step | Seconds |\n| --- | --- |\n")
	for _, p := range phaseLabels {
		fmt.Fprintf(&b, "| %s | %s |\n", p.label, timing.Format(p.key))
	}
	b.WriteString("\n")

	for _, page := range pages {
		fmt.Fprintf(&b, "## Page %d\n\n", page.Page)
		if page.Error != "" {
			fmt.Fprintf(&b, "> Page failed: %s\n\n", oneLine(page.Error))
		}

		b.WriteString("### Full text\n\n")
		writeFenced(&b, page.Text())

		b.WriteString("### Text outside tables\n\n")
		var outside []string
		for _, f := range page.Leftover {
			if t := strings.TrimSpace(f.Text); t != "" {
				outside = append(outside, t)
			}
		}
		if len(outside) == 0 {
			b.WriteString("(All text is contained in tables)\n\n")
		} else {
			writeFenced(&b, strings.Join(outside, "\n"))
		}

		if len(page.Tables) == 0 {
			b.WriteString("### No tables detected\n\n")
		} else {
			fmt.Fprintf(&b, "### Extracted tables (page %d)\n\n", page.Page)
			for i, t := range page.Tables {
				fmt.Fprintf(&b, "#### Table %d\n\n", i+1)
				b.WriteString(t.Markdown())
				b.WriteString("\n")
			}
		}

		if verbose && len(page.Fragments) > 0 {
			b.WriteString("### Fragments\n\n")
			for i, f := range page.Fragments {
				fmt.Fprintf(&b, "%d. `%s` at (%.0f, %.0f)-(%.0f, %.0f), confidence %.2f\n",
					i+1, strings.ReplaceAll(f.Text, "`", "'"), f.Left(), f.Top(), f.Right(), f.Bottom(), f.Confidence)
			}
			b.WriteString("\n")
		}
	}
	return b.Bytes()
}

func writeFenced(b *bytes.Buffer, text string) {
	if text == "" {
		b.WriteString("(empty)\n\n")
		return
	}
	b.WriteString("```text\n")
	b.WriteString(strings.ReplaceAll(text, "```", "'''"))
	b.WriteString("\n```\n\n")
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
