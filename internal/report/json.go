package report

import (
	"encoding/json"
	"time"

	"github.com/dgallion1/ocrgrid/internal/tables"
)

type rawDump struct {
	DocID               string            `json:"doc_id"`
	NumPages            int               `json:"num_pages"`
	ProcessingTimestamp string            `json:"processing_timestamp"`
	TimingInfo          map[string]string `json:"timing_info"`
	RawOCRResults       []rawPage         `json:"raw_ocr_results"`
}

type rawPage struct {
	Page      int                   `json:"page"`
	Fragments []tables.TextFragment `json:"fragments"`
	Error     string                `json:"error,omitempty"`
}

// RawJSON dumps every page's recognized fragments. The dump can be fed
// back through the JSON parser to re-run table extraction.
func RawJSON(docID string, pages []PageOutput, timing Timing, at time.Time) ([]byte, error) {
	dump := rawDump{
		DocID:               docID,
		NumPages:            len(pages),
		ProcessingTimestamp: at.UTC().Format(time.RFC3339),
		TimingInfo:          timing.Strings(),
		RawOCRResults:       make([]rawPage, 0, len(pages)),
	}
	for _, p := range pages {
		frags := p.Fragments
		if frags == nil {
			frags = []tables.TextFragment{}
		}
		dump.RawOCRResults = append(dump.RawOCRResults, rawPage{Page: p.Page, Fragments: frags, Error: p.Error})
	}
	return json.MarshalIndent(dump, "", "  ")
}

// TableEntry is a rendered table with its HTML form.
type TableEntry struct {
	tables.RenderedTable
	HTML string `json:"html"`
}

type tablesDump struct {
	DocID  string       `json:"doc_id"`
	Tables []TableEntry `json:"tables"`
}

// TablesJSON lists every rendered table of the document in page order.
func TablesJSON(docID string, pages []PageOutput) ([]byte, error) {
	out := tablesDump{DocID: docID, Tables: []TableEntry{}}
	for _, p := range pages {
		for _, t := range p.Tables {
			out.Tables = append(out.Tables, TableEntry{RenderedTable: t, HTML: t.HTML()})
		}
	}
	return json.MarshalIndent(out, "", "  ")
}
