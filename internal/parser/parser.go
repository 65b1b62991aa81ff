package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/ocrgrid/internal/doctree"
)

// Parser converts raw document bytes into a Document of pages.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.Document, error)
}

// Options controls page rasterization and coordinate scaling.
type Options struct {
	DPI           int // Pixel density that PDF text-layer coordinates are scaled to
	MaxImageWidth int // Wider page images are downscaled to this width; 0 disables
}

// DefaultOptions matches the resolution page images are recognized at.
func DefaultOptions() Options {
	return Options{DPI: 150, MaxImageWidth: 2480}
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".tif":  true,
	".tiff": true,
	".bmp":  true,
	".json": true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	if opts.DPI <= 0 {
		opts.DPI = DefaultOptions().DPI
	}
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return &PDFParser{Options: opts}, nil
	case ".png", ".jpg", ".jpeg", ".gif", ".tif", ".tiff", ".bmp":
		return &ImageParser{MaxWidth: opts.MaxImageWidth}, nil
	case ".json":
		return &JSONParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

func titleFromFilename(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
