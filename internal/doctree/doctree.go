package doctree

import "github.com/dgallion1/ocrgrid/internal/tables"

// Source records where a page's text came from.
type Source string

const (
	SourceTextLayer Source = "text-layer" // embedded PDF text, already positioned
	SourceImage     Source = "image"      // raster page awaiting recognition
	SourceFragments Source = "fragments"  // fragments supplied by the caller
)

// Document is the root of a converted document.
type Document struct {
	Title    string   // Document title (from metadata or filename)
	Pages    []*Page  // In page order
	Warnings []string // Per-page conversion problems that did not stop the parse
}

// Page is one page of a document, either as positioned fragments or as
// an image that still needs recognition.
type Page struct {
	Number    int    // 1-based
	Source    Source
	Image     []byte // Grayscale PNG when Source is SourceImage
	Width     float64
	Height    float64
	Fragments []tables.TextFragment
}

// NeedsRecognition reports whether the page has an image but no text yet.
func (p *Page) NeedsRecognition() bool {
	return p.Source == SourceImage && len(p.Fragments) == 0 && len(p.Image) > 0
}

// FragmentCount sums the fragments across all pages.
func (d *Document) FragmentCount() int {
	n := 0
	for _, p := range d.Pages {
		n += len(p.Fragments)
	}
	return n
}
