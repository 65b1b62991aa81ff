package ocr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dgallion1/ocrgrid/internal/tables"
)

// paddlePage is the dictionary result shape: parallel arrays of texts,
// detection polygons and scores.
type paddlePage struct {
	RecTexts  []string      `json:"rec_texts"`
	DtPolys   [][][]float64 `json:"dt_polys"`
	RecPolys  [][][]float64 `json:"rec_polys"`
	RecScores []float64     `json:"rec_scores"`
}

// ParsePaddleResult decodes one page of PaddleOCR output. It accepts the
// dictionary shape (rec_texts, dt_polys, rec_scores) and the legacy list
// shape ([[polygon, [text, score]], ...]), either bare or wrapped in a
// one-element list. Entries with blank text or without a polygon are
// skipped; a missing score reads as zero.
func ParsePaddleResult(data []byte) ([]tables.TextFragment, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}
	switch data[0] {
	case '{':
		return parseDictPage(data)
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("decode paddle result: %w", err)
		}
		if len(items) == 0 {
			return nil, nil
		}
		first := bytes.TrimSpace(items[0])
		switch {
		case bytes.Equal(first, []byte("null")):
			return nil, nil
		case first[0] == '{':
			return parseDictPage(first)
		case isLegacyLine(first):
			return parseLegacyLines(items)
		default:
			// Wrapped page: [[line, line, ...]].
			return ParsePaddleResult(first)
		}
	default:
		return nil, fmt.Errorf("decode paddle result: unexpected %q", data[0])
	}
}

func parseDictPage(data []byte) ([]tables.TextFragment, error) {
	var page paddlePage
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("decode paddle page: %w", err)
	}
	polys := page.DtPolys
	if len(polys) == 0 {
		polys = page.RecPolys
	}
	var out []tables.TextFragment
	for i, text := range page.RecTexts {
		if strings.TrimSpace(text) == "" || i >= len(polys) {
			continue
		}
		bbox, ok := polygonBox(polys[i])
		if !ok {
			continue
		}
		var score float64
		if i < len(page.RecScores) {
			score = page.RecScores[i]
		}
		out = append(out, tables.TextFragment{Text: text, BBox: bbox, Confidence: score})
	}
	return out, nil
}

func parseLegacyLines(items []json.RawMessage) ([]tables.TextFragment, error) {
	var out []tables.TextFragment
	for _, raw := range items {
		f, ok := legacyLine(raw)
		if !ok || strings.TrimSpace(f.Text) == "" {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func isLegacyLine(raw json.RawMessage) bool {
	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil || len(parts) < 2 {
		return false
	}
	var rec []json.RawMessage
	if err := json.Unmarshal(parts[1], &rec); err != nil || len(rec) < 1 {
		return false
	}
	var text string
	return json.Unmarshal(rec[0], &text) == nil
}

func legacyLine(raw json.RawMessage) (tables.TextFragment, bool) {
	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil || len(parts) < 2 {
		return tables.TextFragment{}, false
	}
	var poly [][]float64
	if err := json.Unmarshal(parts[0], &poly); err != nil {
		return tables.TextFragment{}, false
	}
	bbox, ok := polygonBox(poly)
	if !ok {
		return tables.TextFragment{}, false
	}
	var rec []json.RawMessage
	if err := json.Unmarshal(parts[1], &rec); err != nil || len(rec) < 1 {
		return tables.TextFragment{}, false
	}
	var f tables.TextFragment
	if err := json.Unmarshal(rec[0], &f.Text); err != nil {
		return tables.TextFragment{}, false
	}
	if len(rec) > 1 {
		_ = json.Unmarshal(rec[1], &f.Confidence)
	}
	f.BBox = bbox
	return f, true
}

// polygonBox takes the first four corners of a detection polygon.
func polygonBox(poly [][]float64) ([4]tables.Point, bool) {
	var bbox [4]tables.Point
	if len(poly) < 4 {
		return bbox, false
	}
	for i := range bbox {
		if len(poly[i]) < 2 {
			return bbox, false
		}
		bbox[i] = tables.Point{X: poly[i][0], Y: poly[i][1]}
	}
	return bbox, true
}
