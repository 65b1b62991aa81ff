//go:build !ocr

package ocr

import (
	"context"

	"github.com/dgallion1/ocrgrid/internal/tables"
)

// Tesseract is the stub used when the "ocr" build tag is not set.
type Tesseract struct{}

// NewTesseract returns ErrOCRNotEnabled. Rebuild with -tags ocr to link
// Tesseract.
func NewTesseract(languages []string, dpi int) (*Tesseract, error) {
	return nil, ErrOCRNotEnabled
}

func (t *Tesseract) Name() string { return "tesseract" }

func (t *Tesseract) Recognize(ctx context.Context, in Input) ([]tables.TextFragment, error) {
	return nil, ErrOCRNotEnabled
}
