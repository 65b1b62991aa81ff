package parser

import (
	"testing"
)

func TestForFile(t *testing.T) {
	cases := map[string]string{
		"scan.PDF":   "*parser.PDFParser",
		"page.png":   "*parser.ImageParser",
		"page.JPEG":  "*parser.ImageParser",
		"page.tiff":  "*parser.ImageParser",
		"page.bmp":   "*parser.ImageParser",
		"pages.json": "*parser.JSONParser",
	}
	for name, want := range cases {
		p, err := ForFile(name, DefaultOptions())
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if got := typeName(p); got != want {
			t.Errorf("%s: expected %s, got %s", name, want, got)
		}
	}

	if _, err := ForFile("notes.txt", DefaultOptions()); err == nil {
		t.Error("expected error for .txt")
	}
}

func TestForFile_DefaultsDPI(t *testing.T) {
	p, err := ForFile("a.pdf", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got := p.(*PDFParser).Options.DPI; got != 150 {
		t.Errorf("expected DPI 150, got %d", got)
	}
}

func TestIsSupportedExtension(t *testing.T) {
	if !IsSupportedExtension("bilan.pdf") {
		t.Error("pdf should be supported")
	}
	if !IsSupportedExtension("scan.TIF") {
		t.Error("tif should be supported")
	}
	if IsSupportedExtension("bilan.docx") {
		t.Error("docx should not be supported")
	}
}

func typeName(p Parser) string {
	switch p.(type) {
	case *PDFParser:
		return "*parser.PDFParser"
	case *ImageParser:
		return "*parser.ImageParser"
	case *JSONParser:
		return "*parser.JSONParser"
	}
	return "unknown"
}
