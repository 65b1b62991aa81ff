package parser

import (
	"strings"
	"testing"

	"github.com/dgallion1/ocrgrid/internal/doctree"
)

func TestJSONParser_Fragments(t *testing.T) {
	input := `{"pages": [
		{"page": 2, "fragments": [{"text": "Total", "bbox": [[10,10],[50,10],[50,30],[10,30]], "confidence": 0.9}]},
		{"page": 1, "fragments": []}
	]}`
	doc, err := (&JSONParser{}).Parse(strings.NewReader(input), "bilan.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "bilan" {
		t.Errorf("expected title %q, got %q", "bilan", doc.Title)
	}
	if len(doc.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(doc.Pages))
	}
	if doc.Pages[0].Number != 1 || doc.Pages[1].Number != 2 {
		t.Errorf("expected pages sorted 1,2, got %d,%d", doc.Pages[0].Number, doc.Pages[1].Number)
	}
	p2 := doc.Pages[1]
	if p2.Source != doctree.SourceFragments || len(p2.Fragments) != 1 {
		t.Fatalf("expected 1 fragment on page 2, got %d", len(p2.Fragments))
	}
	if p2.Fragments[0].Text != "Total" || p2.Fragments[0].Right() != 50 {
		t.Errorf("unexpected fragment %+v", p2.Fragments[0])
	}
}

func TestJSONParser_RawOCRResults(t *testing.T) {
	input := `{"raw_ocr_results": [
		{"page": 1, "ocr_result": {"rec_texts": ["Actif", "Net"], "dt_polys": [[[10,10],[50,10],[50,30],[10,30]], [[300,10],[330,10],[330,30],[300,30]]], "rec_scores": [0.9, 0.8]}},
		{"page": 2, "ocr_result": [null]}
	]}`
	doc, err := (&JSONParser{}).Parse(strings.NewReader(input), "dump.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(doc.Pages))
	}
	if got := len(doc.Pages[0].Fragments); got != 2 {
		t.Errorf("expected 2 fragments, got %d", got)
	}
	if got := len(doc.Pages[1].Fragments); got != 0 {
		t.Errorf("expected empty page 2, got %d fragments", got)
	}
}

func TestJSONParser_Errors(t *testing.T) {
	for _, in := range []string{`{}`, `not json`, `{"raw_ocr_results": [{"page": 1, "ocr_result": "x"}]}`} {
		if _, err := (&JSONParser{}).Parse(strings.NewReader(in), "x.json"); err == nil {
			t.Errorf("expected error for %s", in)
		}
	}
}
