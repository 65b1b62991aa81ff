package parser

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/dgallion1/ocrgrid/internal/doctree"
	"github.com/dgallion1/ocrgrid/internal/ocr"
	pdflib "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pkg/errors"
)

// PDFParser reads PDF pages. Pages with a text layer are converted straight
// to fragments in pixel space; scanned pages carry their largest embedded
// image for recognition.
type PDFParser struct {
	Options Options
}

// glyph is one text run as ledongthuc reports it, in PDF points with a
// bottom-left origin.
type glyph struct {
	X, Y, W  float64
	FontSize float64
	S        string
}

func (p *PDFParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read pdf")
	}
	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.Wrap(err, "open pdf")
	}

	doc := &doctree.Document{Title: titleFromFilename(filename)}
	scale := float64(p.Options.DPI) / 72.0
	var scanned []int

	for i := 1; i <= reader.NumPage(); i++ {
		page := &doctree.Page{Number: i, Source: doctree.SourceTextLayer}
		doc.Pages = append(doc.Pages, page)

		pg := reader.Page(i)
		if pg.V.IsNull() {
			continue
		}
		wPt, hPt := mediaBox(pg)
		page.Width, page.Height = wPt*scale, hPt*scale

		glyphs, err := pageGlyphs(pg)
		if err != nil {
			doc.Warnings = append(doc.Warnings, fmt.Sprintf("page %d: %v", i, err))
		}
		if len(glyphs) == 0 {
			scanned = append(scanned, i)
			continue
		}
		words := glyphsToWords(glyphs, hPt, scale)
		page.Fragments = ocr.MergeWords(words, ocr.DefaultGapFactor)
	}

	if len(scanned) > 0 {
		if err := p.attachImages(doc, data, scanned); err != nil {
			doc.Warnings = append(doc.Warnings, fmt.Sprintf("extract images: %v", err))
		}
	}
	return doc, nil
}

// pageGlyphs reads the text runs of one page. Malformed content streams
// make ledongthuc panic, so the panic is turned into an error for this
// page only.
func pageGlyphs(pg pdflib.Page) (glyphs []glyph, err error) {
	defer func() {
		if r := recover(); r != nil {
			glyphs, err = nil, fmt.Errorf("read content stream: %v", r)
		}
	}()
	for _, t := range pg.Content().Text {
		glyphs = append(glyphs, glyph{X: t.X, Y: t.Y, W: t.W, FontSize: t.FontSize, S: t.S})
	}
	return glyphs, nil
}

func mediaBox(pg pdflib.Page) (float64, float64) {
	box := pg.V.Key("MediaBox")
	if box.Len() < 4 {
		// US Letter.
		return 612, 792
	}
	return box.Index(2).Float64() - box.Index(0).Float64(), box.Index(3).Float64() - box.Index(1).Float64()
}

// glyphsToWords joins consecutive glyph runs into words, breaking on
// whitespace, baseline changes and horizontal gaps wider than a quarter
// of the font size. Coordinates are flipped to a top-left origin and
// scaled to pixels.
func glyphsToWords(glyphs []glyph, pageHeight, scale float64) []ocr.Word {
	var words []ocr.Word
	var cur []glyph
	flush := func() {
		if len(cur) == 0 {
			return
		}
		words = append(words, wordFromGlyphs(cur, pageHeight, scale))
		cur = cur[:0]
	}
	for _, g := range glyphs {
		if isBlank(g.S) {
			flush()
			continue
		}
		if len(cur) > 0 {
			prev := cur[len(cur)-1]
			size := math.Max(prev.FontSize, 1)
			if math.Abs(g.Y-prev.Y) > size/2 || g.X < prev.X || g.X-(prev.X+prev.W) > size/4 {
				flush()
			}
		}
		cur = append(cur, g)
	}
	flush()
	return words
}

func wordFromGlyphs(gs []glyph, pageHeight, scale float64) ocr.Word {
	var text []byte
	left, right := math.Inf(1), math.Inf(-1)
	var size float64
	for _, g := range gs {
		text = append(text, g.S...)
		left = math.Min(left, g.X)
		right = math.Max(right, g.X+g.W)
		size = math.Max(size, g.FontSize)
	}
	base := gs[0].Y
	top := pageHeight - (base + size*0.8)
	bottom := pageHeight - (base - size*0.2)
	return ocr.Word{
		Text:       string(text),
		Left:       left * scale,
		Top:        top * scale,
		Right:      right * scale,
		Bottom:     bottom * scale,
		Confidence: 1,
	}
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }

// attachImages gives each scanned page its largest embedded image.
func (p *PDFParser) attachImages(doc *doctree.Document, data []byte, pages []int) error {
	selected := make([]string, len(pages))
	for i, n := range pages {
		selected[i] = fmt.Sprint(n)
	}
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pageImages, err := api.ExtractImagesRaw(bytes.NewReader(data), selected, conf)
	if err != nil {
		return errors.Wrap(err, "pdfcpu")
	}

	best := make(map[int]model.Image)
	for _, m := range pageImages {
		for _, img := range m {
			cur, ok := best[img.PageNr]
			if !ok || img.Width*img.Height > cur.Width*cur.Height {
				best[img.PageNr] = img
			}
		}
	}

	for _, page := range doc.Pages {
		img, ok := best[page.Number]
		if !ok {
			continue
		}
		raw, err := io.ReadAll(img)
		if err != nil {
			doc.Warnings = append(doc.Warnings, fmt.Sprintf("page %d: read image: %v", page.Number, err))
			continue
		}
		encoded, w, h, err := NormalizeImage(raw, p.Options.MaxImageWidth)
		if err != nil {
			doc.Warnings = append(doc.Warnings, fmt.Sprintf("page %d: %v", page.Number, err))
			continue
		}
		page.Source = doctree.SourceImage
		page.Image = encoded
		page.Width, page.Height = float64(w), float64(h)
	}
	return nil
}
