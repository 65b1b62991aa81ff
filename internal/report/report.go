// Package report turns extracted pages into the artifacts stored for each
// document: a markdown report (also rendered to HTML), a Word document of
// the tables, and JSON dumps of the raw fragments and rendered tables.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/dgallion1/ocrgrid/internal/tables"
)

// PageOutput is one processed page.
type PageOutput struct {
	Page      int                    `json:"page"`
	Fragments []tables.TextFragment  `json:"fragments"`
	Tables    []tables.RenderedTable `json:"tables"`
	Leftover  []tables.TextFragment  `json:"leftover"`
	Error     string                 `json:"error,omitempty"`
}

// NewPageOutput combines a page's fragments with what the extractor made of them.
func NewPageOutput(frags []tables.TextFragment, res tables.PageResult) PageOutput {
	return PageOutput{
		Page:      res.Page,
		Fragments: frags,
		Tables:    res.Tables,
		Leftover:  res.Leftover,
	}
}

// Text joins the page's fragments, one per line, in recognition order.
func (p PageOutput) Text() string {
	lines := make([]string, 0, len(p.Fragments))
	for _, f := range p.Fragments {
		if t := strings.TrimSpace(f.Text); t != "" {
			lines = append(lines, t)
		}
	}
	return strings.Join(lines, "\n")
}

// Timing phases, in report order.
const (
	PhaseDownload         = "download"
	PhaseConversion       = "conversion"
	PhaseOCR              = "ocr"
	PhaseExtraction       = "extraction"
	PhaseOutputGeneration = "output_generation"
	PhaseUpload           = "upload"
	PhaseTotalProcessing  = "total_processing"
	PhaseTotal            = "total"
)

var phaseLabels = []struct{ key, label string }{
	{PhaseDownload, "Document download"},
	{PhaseConversion, "Page conversion"},
	{PhaseOCR, "OCR (text recognition)"},
	{PhaseExtraction, "Table extraction (structure analysis)"},
	{PhaseOutputGeneration, "Output generation"},
	{PhaseUpload, "Upload"},
	{PhaseTotalProcessing, "Total processing (OCR + extraction)"},
	{PhaseTotal, "Total (entire pipeline)"},
}

// Timing holds per-phase durations. Phases not yet measured report as
// "pending".
type Timing map[string]time.Duration

// Add accumulates d into phase.
func (t Timing) Add(phase string, d time.Duration) { t[phase] += d }

// Format returns the phase duration in seconds with two decimals.
func (t Timing) Format(phase string) string {
	d, ok := t[phase]
	if !ok {
		return "pending"
	}
	return fmt.Sprintf("%.2f", d.Seconds())
}

// Strings formats every known phase.
func (t Timing) Strings() map[string]string {
	out := make(map[string]string, len(phaseLabels))
	for _, p := range phaseLabels {
		out[p.key] = t.Format(p.key)
	}
	return out
}

// Clone copies t.
func (t Timing) Clone() Timing {
	out := make(Timing, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}
