package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/ocrgrid/internal/doctree"
	"github.com/dgallion1/ocrgrid/internal/ocr"
	"github.com/dgallion1/ocrgrid/internal/parser"
	"github.com/dgallion1/ocrgrid/internal/report"
	"github.com/dgallion1/ocrgrid/internal/tables"
)

type extractOptions struct {
	Input     string
	Output    string
	Format    string
	Profile   tables.Profile
	Languages []string
	DPI       int
	Verbose   bool
}

// runExtract parses the input, recognizes scanned pages, rebuilds the
// tables of every page and writes them in the requested format. Pages
// are handled one after another.
func runExtract(ctx context.Context, opts extractOptions, engine ocr.Engine, log *slog.Logger, stdout io.Writer) error {
	format := strings.ToLower(opts.Format)
	switch format {
	case "markdown", "md", "html", "json":
	case "docx":
		if opts.Output == "" {
			return fmt.Errorf("docx output requires --output")
		}
	default:
		return fmt.Errorf("unknown format %q", opts.Format)
	}

	data, err := os.ReadFile(opts.Input)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	filename := filepath.Base(opts.Input)
	p, err := parser.ForFile(filename, parser.Options{DPI: opts.DPI, MaxImageWidth: parser.DefaultOptions().MaxImageWidth})
	if err != nil {
		return err
	}

	timing := report.Timing{}
	start := time.Now()
	doc, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		return fmt.Errorf("parse %s: %w", filename, err)
	}
	timing.Add(report.PhaseConversion, time.Since(start))
	for _, w := range doc.Warnings {
		log.Warn("conversion warning", "warning", w)
	}

	extractor := tables.NewExtractor(opts.Profile, log)
	pages := make([]report.PageOutput, 0, len(doc.Pages))
	for _, page := range doc.Pages {
		frags, err := pageFragments(ctx, engine, page, opts, timing)
		if err != nil {
			log.Error("page failed", "page", page.Number, "error", err)
			pages = append(pages, report.PageOutput{Page: page.Number, Error: err.Error()})
			continue
		}
		exStart := time.Now()
		res := extractor.ExtractPage(frags, page.Number)
		timing.Add(report.PhaseExtraction, time.Since(exStart))
		log.Debug("page extracted", "page", page.Number, "fragments", len(frags), "tables", len(res.Tables))
		pages = append(pages, report.NewPageOutput(frags, res))
	}
	timing.Add(report.PhaseTotal, time.Since(start))

	docID := strings.TrimSuffix(filename, filepath.Ext(filename))
	out, err := render(format, docID, doc.Title, pages, timing, opts.Verbose)
	if err != nil {
		return err
	}
	if opts.Output == "" {
		_, err = stdout.Write(out)
		return err
	}
	if err := os.WriteFile(opts.Output, out, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	log.Info("output written", "path", opts.Output, "pages", len(pages))
	return nil
}

func pageFragments(ctx context.Context, engine ocr.Engine, page *doctree.Page, opts extractOptions, timing report.Timing) ([]tables.TextFragment, error) {
	if !page.NeedsRecognition() {
		return page.Fragments, nil
	}
	start := time.Now()
	frags, err := engine.Recognize(ctx, ocr.Input{
		Page:      page.Number,
		Image:     page.Image,
		Languages: opts.Languages,
		DPI:       opts.DPI,
	})
	timing.Add(report.PhaseOCR, time.Since(start))
	return frags, err
}

func render(format, docID, title string, pages []report.PageOutput, timing report.Timing, verbose bool) ([]byte, error) {
	switch format {
	case "html":
		return report.HTML(title, report.Markdown(docID, pages, timing, verbose))
	case "json":
		return report.TablesJSON(docID, pages)
	case "docx":
		var buf bytes.Buffer
		if err := report.WriteDOCX(&buf, title, pages); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return report.Markdown(docID, pages, timing, verbose), nil
	}
}
