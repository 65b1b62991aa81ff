//go:build ocr

package ocr

import (
	"context"
	"fmt"

	"github.com/dgallion1/ocrgrid/internal/tables"
	"github.com/otiai10/gosseract/v2"
)

// Tesseract recognizes pages with a local Tesseract install. A fresh
// client is created per page so the engine can serve concurrent pages.
type Tesseract struct {
	languages []string
	dpi       int
	gapFactor float64
}

// NewTesseract creates a Tesseract engine. Languages use Tesseract codes
// such as "fra" and "eng".
func NewTesseract(languages []string, dpi int) (*Tesseract, error) {
	return &Tesseract{languages: languages, dpi: dpi, gapFactor: DefaultGapFactor}, nil
}

func (t *Tesseract) Name() string { return "tesseract" }

func (t *Tesseract) Recognize(ctx context.Context, in Input) ([]tables.TextFragment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := gosseract.NewClient()
	defer c.Close()

	if err := c.SetImageFromBytes(in.Image); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}
	langs := in.Languages
	if len(langs) == 0 {
		langs = t.languages
	}
	if len(langs) > 0 {
		if err := c.SetLanguage(langs...); err != nil {
			return nil, fmt.Errorf("set languages: %w", err)
		}
	}
	dpi := in.DPI
	if dpi == 0 {
		dpi = t.dpi
	}
	if dpi > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(dpi)); err != nil {
			return nil, fmt.Errorf("set dpi: %w", err)
		}
	}
	// Financial statements are sparse grids rather than running prose.
	if err := c.SetPageSegMode(gosseract.PSM_SPARSE_TEXT); err != nil {
		return nil, fmt.Errorf("set page segmentation: %w", err)
	}

	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("recognize page %d: %w", in.Page, err)
	}
	words := make([]Word, 0, len(boxes))
	for _, b := range boxes {
		words = append(words, Word{
			Text:       b.Word,
			Left:       float64(b.Box.Min.X),
			Top:        float64(b.Box.Min.Y),
			Right:      float64(b.Box.Max.X),
			Bottom:     float64(b.Box.Max.Y),
			Confidence: b.Confidence / 100.0,
		})
	}
	return MergeWords(words, t.gapFactor), nil
}
