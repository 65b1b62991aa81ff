package parser

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"

	"github.com/dgallion1/ocrgrid/internal/doctree"
	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
)

// ImageParser turns a single scanned page image into a one-page document.
type ImageParser struct {
	MaxWidth int
}

func (p *ImageParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read image")
	}
	img, w, h, err := NormalizeImage(data, p.MaxWidth)
	if err != nil {
		return nil, errors.Wrapf(err, "normalize %s", filename)
	}
	return &doctree.Document{
		Title: titleFromFilename(filename),
		Pages: []*doctree.Page{{
			Number: 1,
			Source: doctree.SourceImage,
			Image:  img,
			Width:  float64(w),
			Height: float64(h),
		}},
	}, nil
}

// NormalizeImage decodes a PNG, JPEG, GIF, TIFF or BMP image, converts it
// to 8-bit grayscale, downscales it to maxWidth when wider, and re-encodes
// it as PNG. It returns the encoded bytes and the final dimensions.
func NormalizeImage(data []byte, maxWidth int) ([]byte, int, int, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, errors.Wrap(err, "decode image")
	}
	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, 0, 0, errors.New("empty image")
	}

	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), src, b.Min, draw.Src)

	out := gray
	if maxWidth > 0 && b.Dx() > maxWidth {
		h := b.Dy() * maxWidth / b.Dx()
		if h < 1 {
			h = 1
		}
		out = image.NewGray(image.Rect(0, 0, maxWidth, h))
		draw.CatmullRom.Scale(out, out.Bounds(), gray, gray.Bounds(), draw.Src, nil)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, 0, 0, errors.Wrap(err, "encode png")
	}
	return buf.Bytes(), out.Bounds().Dx(), out.Bounds().Dy(), nil
}
