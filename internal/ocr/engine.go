// Package ocr turns page images into positioned text fragments.
//
// Two engines are available: Tesseract, linked through gosseract when the
// binary is built with the "ocr" tag, and Remote, which posts page images
// to an HTTP recognition service that answers in the PaddleOCR result
// format.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgallion1/ocrgrid/internal/tables"
)

// ErrOCRNotEnabled is returned when a page needs recognition but no
// engine is available.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr or set OCR_ENGINE=remote")

// Engine recognizes the text on one page image.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, in Input) ([]tables.TextFragment, error)
}

// Input is one page image handed to an engine.
type Input struct {
	Page      int
	Image     []byte // PNG or JPEG
	Languages []string
	DPI       int
}

// Options selects and configures an engine.
type Options struct {
	Kind      string // tesseract, remote or none
	URL       string
	APIKey    string
	Languages []string
	DPI       int
	Timeout   time.Duration
}

// NewEngine builds the engine named by o.Kind.
func NewEngine(o Options) (Engine, error) {
	switch o.Kind {
	case "", "tesseract":
		t, err := NewTesseract(o.Languages, o.DPI)
		if err != nil {
			return nil, err
		}
		return t, nil
	case "remote":
		if o.URL == "" {
			return nil, fmt.Errorf("remote engine requires a URL")
		}
		return NewRemote(o.URL, o.APIKey, o.Timeout), nil
	case "none":
		return Disabled{}, nil
	default:
		return nil, fmt.Errorf("unknown OCR engine %q", o.Kind)
	}
}

// ParseLanguages splits a Tesseract-style language list such as "fra+eng".
func ParseLanguages(s string) []string {
	var out []string
	for _, l := range strings.FieldsFunc(s, func(r rune) bool { return r == '+' || r == ',' }) {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// Disabled fails every recognition request.
type Disabled struct{}

func (Disabled) Name() string { return "none" }

func (Disabled) Recognize(ctx context.Context, in Input) ([]tables.TextFragment, error) {
	return nil, ErrOCRNotEnabled
}

// instrumented records the outcome of every call into Stats.
type instrumented struct {
	Engine
	stats *Stats
}

// WithStats wraps e so that each Recognize call is recorded into s.
func WithStats(e Engine, s *Stats) Engine {
	if s == nil {
		return e
	}
	return &instrumented{Engine: e, stats: s}
}

func (i *instrumented) Recognize(ctx context.Context, in Input) ([]tables.TextFragment, error) {
	start := time.Now()
	frags, err := i.Engine.Recognize(ctx, in)
	i.stats.Record(time.Since(start), len(frags), err)
	return frags, err
}

// RetryableError indicates a transient failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
