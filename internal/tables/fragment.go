// Package tables rebuilds tabular structure from positioned text fragments.
//
// The input is the flat, unordered output of a recognition engine for a
// single page. The package groups fragments into rows, classifies rows,
// assembles consecutive data rows into blocks, infers column anchors,
// pairs each block with a header and renders the result as a grid.
// Every function is pure and safe for concurrent use across pages.
package tables

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Point is a pixel-space coordinate. It serializes as a two-element array.
type Point struct {
	X float64
	Y float64
}

// MarshalJSON encodes the point as [x, y].
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.X, p.Y})
}

// UnmarshalJSON decodes an [x, y] array; extra elements are ignored.
func (p *Point) UnmarshalJSON(b []byte) error {
	var xy []float64
	if err := json.Unmarshal(b, &xy); err != nil {
		return fmt.Errorf("decode point: %w", err)
	}
	if len(xy) < 2 {
		return fmt.Errorf("decode point: want 2 coordinates, got %d", len(xy))
	}
	p.X, p.Y = xy[0], xy[1]
	return nil
}

// TextFragment is one recognized text span. BBox corners run clockwise
// from the top-left: top-left, top-right, bottom-right, bottom-left.
type TextFragment struct {
	Text       string   `json:"text"`
	BBox       [4]Point `json:"bbox"`
	Confidence float64  `json:"confidence"`
}

// NewFragment builds an axis-aligned fragment from its edges.
func NewFragment(text string, left, top, right, bottom, confidence float64) TextFragment {
	return TextFragment{
		Text: text,
		BBox: [4]Point{
			{X: left, Y: top},
			{X: right, Y: top},
			{X: right, Y: bottom},
			{X: left, Y: bottom},
		},
		Confidence: confidence,
	}
}

// Left is the fragment's left edge.
func (f TextFragment) Left() float64 { return f.BBox[0].X }

// Right is the fragment's right edge.
func (f TextFragment) Right() float64 { return f.BBox[2].X }

// Top is the fragment's top edge.
func (f TextFragment) Top() float64 { return f.BBox[0].Y }

// Bottom is the fragment's bottom edge.
func (f TextFragment) Bottom() float64 { return f.BBox[2].Y }

// CenterY is the mean of the top-left and bottom-right y values.
func (f TextFragment) CenterY() float64 { return (f.BBox[0].Y + f.BBox[2].Y) / 2 }

// Height is the vertical extent of the box.
func (f TextFragment) Height() float64 { return f.BBox[2].Y - f.BBox[0].Y }

// Usable reports whether the fragment has text and a box that can be
// placed on the page. Fragments that fail this check are skipped.
func (f TextFragment) Usable() bool {
	if strings.TrimSpace(f.Text) == "" {
		return false
	}
	for _, pt := range f.BBox {
		if math.IsNaN(pt.X) || math.IsNaN(pt.Y) || math.IsInf(pt.X, 0) || math.IsInf(pt.Y, 0) {
			return false
		}
	}
	return f.Right() > f.Left() && f.Bottom() > f.Top()
}

// Row is a run of fragments sharing a line, ordered by left edge.
type Row struct {
	Fragments []TextFragment `json:"fragments"`
}

// Y is the row's vertical position: the center of its first fragment.
func (r Row) Y() float64 {
	if len(r.Fragments) == 0 {
		return math.Inf(1)
	}
	return r.Fragments[0].CenterY()
}

// Text joins the row's fragment texts with single spaces.
func (r Row) Text() string {
	parts := make([]string, len(r.Fragments))
	for i, f := range r.Fragments {
		parts[i] = f.Text
	}
	return strings.Join(parts, " ")
}

// Block is a vertically contiguous run of data rows judged to be tabular.
type Block struct {
	Rows []Row `json:"rows"`
}

// Y is the vertical position of the block's first row.
func (b Block) Y() float64 {
	if len(b.Rows) == 0 {
		return math.Inf(1)
	}
	return b.Rows[0].Y()
}

// usableFragments drops fragments that cannot be placed.
func usableFragments(frags []TextFragment) []TextFragment {
	out := make([]TextFragment, 0, len(frags))
	for _, f := range frags {
		if f.Usable() {
			out = append(out, f)
		}
	}
	return out
}
