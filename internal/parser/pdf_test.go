package parser

import (
	"math"
	"strings"
	"testing"
)

func TestGlyphsToWords(t *testing.T) {
	// Baseline at y=700 on a 792pt page, 10pt font, scaled 2x.
	glyphs := []glyph{
		{X: 50, Y: 700, W: 6, FontSize: 10, S: "T"},
		{X: 56, Y: 700, W: 6, FontSize: 10, S: "o"},
		{X: 62, Y: 700, W: 6, FontSize: 10, S: "t"},
		{X: 68, Y: 700, W: 3, FontSize: 10, S: " "},
		{X: 71, Y: 700, W: 6, FontSize: 10, S: "a"},
		{X: 300, Y: 700, W: 6, FontSize: 10, S: "9"},
		{X: 50, Y: 680, W: 6, FontSize: 10, S: "N"},
	}
	words := glyphsToWords(glyphs, 792, 2)
	got := make([]string, len(words))
	for i, w := range words {
		got[i] = w.Text
	}
	if strings.Join(got, "|") != "Tot|a|9|N" {
		t.Fatalf("expected Tot|a|9|N, got %s", strings.Join(got, "|"))
	}

	w := words[0]
	if w.Left != 100 || w.Right != 136 {
		t.Errorf("expected x 100..136, got %v..%v", w.Left, w.Right)
	}
	// Top = (792 - (700 + 8)) * 2, bottom = (792 - (700 - 2)) * 2.
	if math.Abs(w.Top-168) > 1e-9 || math.Abs(w.Bottom-188) > 1e-9 {
		t.Errorf("expected y 168..188, got %v..%v", w.Top, w.Bottom)
	}
	if words[3].Top <= w.Top {
		t.Errorf("lower baseline should map further down the page")
	}
}

func TestPDFParser_RejectsGarbage(t *testing.T) {
	p := &PDFParser{Options: DefaultOptions()}
	if _, err := p.Parse(strings.NewReader("%PDF-1.4 truncated"), "broken.pdf"); err == nil {
		t.Error("expected error for malformed pdf")
	}
}
