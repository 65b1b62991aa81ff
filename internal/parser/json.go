package parser

import (
	"encoding/json"
	"io"
	"sort"

	"github.com/dgallion1/ocrgrid/internal/doctree"
	"github.com/dgallion1/ocrgrid/internal/ocr"
	"github.com/dgallion1/ocrgrid/internal/tables"
	"github.com/pkg/errors"
)

// JSONParser reads pages that were recognized elsewhere. Two shapes are
// accepted:
//
//	{"pages": [{"page": 1, "fragments": [{"text": ..., "bbox": ..., "confidence": ...}]}]}
//	{"raw_ocr_results": [{"page": 1, "ocr_result": <PaddleOCR page>}]}
//
// Raw result entries may carry "fragments" instead of "ocr_result"; that
// is the dump this service writes next to each report, so stored
// documents can be re-extracted without running OCR again.
type JSONParser struct{}

type fragmentDoc struct {
	Title string         `json:"title"`
	Pages []fragmentPage `json:"pages"`
	Raw   []rawOCRPage   `json:"raw_ocr_results"`
}

type fragmentPage struct {
	Page      int                   `json:"page"`
	Fragments []tables.TextFragment `json:"fragments"`
}

type rawOCRPage struct {
	Page      int                   `json:"page"`
	OCRResult json.RawMessage       `json:"ocr_result"`
	Fragments []tables.TextFragment `json:"fragments"`
}

func (p *JSONParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	var in fragmentDoc
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return nil, errors.Wrap(err, "decode fragments")
	}
	if len(in.Pages) == 0 && len(in.Raw) == 0 {
		return nil, errors.New("no pages or raw_ocr_results")
	}

	doc := &doctree.Document{Title: in.Title}
	if doc.Title == "" {
		doc.Title = titleFromFilename(filename)
	}
	for i, fp := range in.Pages {
		doc.Pages = append(doc.Pages, &doctree.Page{
			Number:    pageNumber(fp.Page, i),
			Source:    doctree.SourceFragments,
			Fragments: fp.Fragments,
		})
	}
	for i, rp := range in.Raw {
		frags := rp.Fragments
		if len(rp.OCRResult) > 0 {
			parsed, err := ocr.ParsePaddleResult(rp.OCRResult)
			if err != nil {
				return nil, errors.Wrapf(err, "raw result %d", i)
			}
			frags = parsed
		}
		doc.Pages = append(doc.Pages, &doctree.Page{
			Number:    pageNumber(rp.Page, i),
			Source:    doctree.SourceFragments,
			Fragments: frags,
		})
	}
	sort.SliceStable(doc.Pages, func(i, j int) bool { return doc.Pages[i].Number < doc.Pages[j].Number })
	return doc, nil
}

func pageNumber(n, idx int) int {
	if n > 0 {
		return n
	}
	return idx + 1
}
