package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgallion1/ocrgrid/internal/ocr"
	"github.com/dgallion1/ocrgrid/internal/tables"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func writeFragments(t *testing.T, dir string) string {
	t.Helper()
	frag := func(text string, x, y float64) tables.TextFragment {
		return tables.NewFragment(text, x, y, x+float64(8*len(text)+4), y+16, 0.95)
	}
	frags := []tables.TextFragment{frag("BILAN PASSIF", 10, 20)}
	for i, l := range []string{"Emprunts", "Fournisseurs", "Dettes fiscales", "Provisions"} {
		y := 100 + float64(30*i)
		frags = append(frags, frag(l, 10, y), frag(fmt.Sprintf("%d 500", i+1), 200, y), frag(fmt.Sprintf("%d20", i+1), 350, y))
	}
	data, err := json.Marshal(map[string]any{
		"pages": []map[string]any{{"page": 1, "fragments": frags}},
	})
	require.NoError(t, err)
	path := filepath.Join(dir, "passif.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestRunExtract_JSON(t *testing.T) {
	dir := t.TempDir()
	opts := extractOptions{
		Input:   writeFragments(t, dir),
		Format:  "json",
		Profile: tables.Standard(),
	}
	var out bytes.Buffer
	require.NoError(t, runExtract(context.Background(), opts, ocr.Disabled{}, discard, &out))

	var dump struct {
		DocID  string `json:"doc_id"`
		Tables []struct {
			Page  int        `json:"page"`
			Cells [][]string `json:"cells"`
			HTML  string     `json:"html"`
		} `json:"tables"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &dump), out.String())
	assert.Equal(t, "passif", dump.DocID)
	require.Len(t, dump.Tables, 1)
	assert.Equal(t, 1, dump.Tables[0].Page)
	assert.Contains(t, dump.Tables[0].HTML, "Emprunts")
}

func TestRunExtract_MarkdownToFile(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "out.md")
	opts := extractOptions{
		Input:   writeFragments(t, dir),
		Output:  outPath,
		Format:  "markdown",
		Profile: tables.Lightweight(),
	}
	require.NoError(t, runExtract(context.Background(), opts, ocr.Disabled{}, discard, io.Discard))

	md, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(md), "## Page 1")
	assert.Contains(t, string(md), "Provisions")
}

func TestRunExtract_ScannedPageWithoutOCR(t *testing.T) {
	dir := t.TempDir()
	img := image.NewGray(image.Rect(0, 0, 40, 20))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.Set(5, 5, color.Black)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(dir, "scan.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	var out bytes.Buffer
	opts := extractOptions{Input: path, Format: "md", Profile: tables.Standard()}
	require.NoError(t, runExtract(context.Background(), opts, ocr.Disabled{}, discard, &out))
	assert.Contains(t, out.String(), "Page failed")
}

func TestRunExtract_BadArguments(t *testing.T) {
	dir := t.TempDir()
	input := writeFragments(t, dir)

	err := runExtract(context.Background(), extractOptions{Input: input, Format: "xml"}, ocr.Disabled{}, discard, io.Discard)
	assert.Error(t, err)

	err = runExtract(context.Background(), extractOptions{Input: input, Format: "docx"}, ocr.Disabled{}, discard, io.Discard)
	assert.Error(t, err)

	err = runExtract(context.Background(), extractOptions{Input: filepath.Join(dir, "missing.json"), Format: "json"}, ocr.Disabled{}, discard, io.Discard)
	assert.Error(t, err)
}
