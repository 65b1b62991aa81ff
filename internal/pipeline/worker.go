package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/ocrgrid/internal/doctree"
	"github.com/dgallion1/ocrgrid/internal/objstore"
	"github.com/dgallion1/ocrgrid/internal/ocr"
	"github.com/dgallion1/ocrgrid/internal/parser"
	"github.com/dgallion1/ocrgrid/internal/report"
	"github.com/dgallion1/ocrgrid/internal/tables"
	"golang.org/x/sync/errgroup"
)

// Store is the object storage the worker reads sources from and writes
// artifacts to.
type Store interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
	GetObject(ctx context.Context, key string) ([]byte, error)
	DeleteObject(ctx context.Context, key string) error
	URL(key string) string
}

// DocumentMeta is the per-document record written next to the artifacts.
type DocumentMeta struct {
	DocID       string    `json:"doc_id"`
	Filename    string    `json:"filename"`
	Title       string    `json:"title"`
	ContentHash string    `json:"content_hash"`
	Pages       int       `json:"pages"`
	FailedPages int       `json:"failed_pages"`
	Tables      int       `json:"tables"`
	CreatedAt   time.Time `json:"created_at"`
}

// Artifact names as reported on a job.
const (
	ArtifactReport     = "report"
	ArtifactReportHTML = "report_html"
	ArtifactRawOCR     = "raw_ocr"
	ArtifactTablesJSON = "tables_json"
	ArtifactTablesDOCX = "tables_docx"
)

// WorkerConfig holds the per-document processing limits.
type WorkerConfig struct {
	Parser             parser.Options
	Languages          []string
	MaxConcurrentPages int
	PageBatchSize      int
	PageTimeout        time.Duration
	Dedup              bool
	Verbose            bool
}

// Worker processes a single document job.
type Worker struct {
	engine    ocr.Engine
	extractor *tables.Extractor
	store     Store
	keys      objstore.Keys
	log       *slog.Logger
	cfg       WorkerConfig
}

func NewWorker(engine ocr.Engine, extractor *tables.Extractor, store Store, keys objstore.Keys, log *slog.Logger, cfg WorkerConfig) *Worker {
	if cfg.MaxConcurrentPages <= 0 {
		cfg.MaxConcurrentPages = 1
	}
	if cfg.PageBatchSize <= 0 {
		cfg.PageBatchSize = 30
	}
	if cfg.PageTimeout <= 0 {
		cfg.PageTimeout = 30 * time.Second
	}
	return &Worker{
		engine:    engine,
		extractor: extractor,
		store:     store,
		keys:      keys,
		log:       log,
		cfg:       cfg,
	}
}

// Process runs the full extraction pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	start := time.Now()
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID)

	// Phase 1: Load
	job.SetStatus(StatusLoading, "loading")
	data, err := w.load(ctx, job)
	if err != nil {
		log.Error("load failed", "error", err)
		job.AddError(fmt.Sprintf("load: %s", err))
		job.SetStatus(StatusFailed, "loading")
		return
	}
	job.SetContentHash(ContentHashHex(data))

	// Phase 1.5: Dedup check
	if w.cfg.Dedup && !job.Force {
		existing, err := w.checkDuplicate(ctx, job.ContentHash)
		if err != nil {
			log.Warn("dedup check failed, proceeding", "error", err)
		} else if existing != "" {
			log.Info("duplicate document, skipping", "existing_doc_id", existing)
			job.MarkDuplicate(existing)
			return
		}
	}

	// Phase 2: Convert
	job.SetStatus(StatusConverting, "converting")
	convStart := time.Now()
	p, err := parser.ForFile(job.Filename, w.cfg.Parser)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "converting")
		return
	}
	doc, err := p.Parse(bytes.NewReader(data), job.Filename)
	if err != nil {
		log.Error("conversion failed", "error", err)
		job.AddError(fmt.Sprintf("convert: %s", err))
		job.SetStatus(StatusFailed, "converting")
		return
	}
	job.AddTiming(report.PhaseConversion, time.Since(convStart))
	for _, warn := range doc.Warnings {
		log.Warn("conversion warning", "warning", warn)
		job.AddError(warn)
	}
	if len(doc.Pages) == 0 {
		job.AddError("document has no pages")
		job.SetStatus(StatusFailed, "converting")
		return
	}
	job.SetTotalPages(len(doc.Pages))
	log.Info("converted document", "pages", len(doc.Pages))

	// Phase 3: Recognize and extract, in batches of pages.
	procStart := time.Now()
	outputs, err := w.processPages(ctx, job, doc, log)
	if err != nil {
		log.Error("page processing aborted", "error", err)
		job.AddError(fmt.Sprintf("process: %s", err))
		job.SetStatus(StatusFailed, "extracting")
		return
	}
	job.AddTiming(report.PhaseTotalProcessing, time.Since(procStart))

	failed := 0
	tablesFound := 0
	for _, out := range outputs {
		if out.Error != "" {
			failed++
		}
		tablesFound += len(out.Tables)
	}
	log.Info("extraction complete", "tables", tablesFound, "failed_pages", failed)
	if failed == len(outputs) {
		job.SetStatus(StatusFailed, "extracting")
		return
	}

	// Phase 4: Generate and upload artifacts.
	job.SetStatus(StatusUploading, "generating output")
	genStart := time.Now()
	artifacts, err := w.buildArtifacts(job, doc.Title, outputs)
	if err != nil {
		log.Error("output generation failed", "error", err)
		job.AddError(fmt.Sprintf("output: %s", err))
		job.SetStatus(StatusFailed, "generating output")
		return
	}
	job.AddTiming(report.PhaseOutputGeneration, time.Since(genStart))

	job.SetStatus(StatusUploading, "uploading")
	upStart := time.Now()
	for _, a := range artifacts {
		err := withRetry(ctx, log, "upload "+a.name, func(ctx context.Context) error {
			return w.store.PutObject(ctx, a.key, a.data, a.contentType)
		})
		if err != nil {
			log.Error("upload failed", "artifact", a.name, "key", a.key, "error", err)
			job.AddError(fmt.Sprintf("upload %s: %s", a.name, err))
			job.SetStatus(StatusFailed, "uploading")
			return
		}
		job.SetArtifact(a.name, w.store.URL(a.key))
	}
	job.AddTiming(report.PhaseUpload, time.Since(upStart))

	// Write document metadata.
	meta, err := json.Marshal(DocumentMeta{
		DocID:       job.DocID,
		Filename:    job.Filename,
		Title:       doc.Title,
		ContentHash: job.ContentHash,
		Pages:       len(outputs),
		FailedPages: failed,
		Tables:      tablesFound,
		CreatedAt:   job.CreatedAt,
	})
	if err == nil {
		err = w.store.PutObject(ctx, w.keys.Meta(job.DocID), meta, "application/json")
	}
	if err != nil {
		log.Error("meta write failed", "error", err)
		job.AddError(fmt.Sprintf("meta: %s", err))
	}

	// Write hash index for dedup.
	if w.cfg.Dedup {
		if err := w.store.PutObject(ctx, w.keys.ByHash(job.ContentHash), []byte(job.DocID), "text/plain"); err != nil {
			log.Error("hash index write failed", "error", err)
		}
	}

	job.AddTiming(report.PhaseTotal, time.Since(start))
	log.Info("document complete", "pages", len(outputs), "tables", tablesFound, "duration_ms", time.Since(start).Milliseconds())

	if failed > 0 {
		job.SetStatus(StatusPartial, "done")
	} else {
		job.SetStatus(StatusCompleted, "done")
	}
}

func (w *Worker) load(ctx context.Context, job *Job) ([]byte, error) {
	if data := job.FileData(); data != nil {
		return data, nil
	}
	if job.SourceKey == "" {
		return nil, errors.New("job has neither file data nor a source key")
	}
	start := time.Now()
	var data []byte
	err := withRetry(ctx, w.log, "download", func(ctx context.Context) error {
		var err error
		data, err = w.store.GetObject(ctx, job.SourceKey)
		return err
	})
	if err != nil {
		return nil, err
	}
	job.AddTiming(report.PhaseDownload, time.Since(start))
	return data, nil
}

// checkDuplicate returns the document ID already indexed under hash, or
// "" when the content is new.
func (w *Worker) checkDuplicate(ctx context.Context, hash string) (string, error) {
	data, err := w.store.GetObject(ctx, w.keys.ByHash(hash))
	if errors.Is(err, objstore.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(bytes.TrimSpace(data)), nil
}

// processPages runs every page through recognition and extraction. Pages
// are handled PageBatchSize at a time, each batch fanned out to at most
// MaxConcurrentPages goroutines. A failing page is recorded on its output
// and does not stop the others.
func (w *Worker) processPages(ctx context.Context, job *Job, doc *doctree.Document, log *slog.Logger) ([]report.PageOutput, error) {
	outputs := make([]report.PageOutput, len(doc.Pages))

	needsOCR := false
	for _, p := range doc.Pages {
		if p.NeedsRecognition() {
			needsOCR = true
			break
		}
	}
	if needsOCR {
		job.SetStatus(StatusRecognizing, "recognizing")
	} else {
		job.SetStatus(StatusExtracting, "extracting")
	}

	var mu sync.Mutex
	var ocrTime, extractTime time.Duration

	for start := 0; start < len(doc.Pages); start += w.cfg.PageBatchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := min(start+w.cfg.PageBatchSize, len(doc.Pages))
		log.Debug("processing batch", "first_page", doc.Pages[start].Number, "last_page", doc.Pages[end-1].Number)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(w.cfg.MaxConcurrentPages)
		for i := start; i < end; i++ {
			page := doc.Pages[i]
			g.Go(func() error {
				out, o, e := w.processPage(gctx, page, log)
				outputs[i] = out
				mu.Lock()
				ocrTime += o
				extractTime += e
				mu.Unlock()
				job.PageDone(len(out.Tables), out.Error != "")
				if out.Error != "" {
					job.AddError(fmt.Sprintf("page %d: %s", page.Number, out.Error))
				}
				return nil
			})
		}
		_ = g.Wait()
	}

	job.AddTiming(report.PhaseOCR, ocrTime)
	job.AddTiming(report.PhaseExtraction, extractTime)
	return outputs, nil
}

func (w *Worker) processPage(ctx context.Context, page *doctree.Page, log *slog.Logger) (report.PageOutput, time.Duration, time.Duration) {
	var ocrTime time.Duration
	frags := page.Fragments
	if page.NeedsRecognition() {
		start := time.Now()
		err := withRetry(ctx, log, fmt.Sprintf("recognize page %d", page.Number), func(ctx context.Context) error {
			pctx, cancel := context.WithTimeout(ctx, w.cfg.PageTimeout)
			defer cancel()
			var err error
			frags, err = w.engine.Recognize(pctx, ocr.Input{
				Page:      page.Number,
				Image:     page.Image,
				Languages: w.cfg.Languages,
				DPI:       w.cfg.Parser.DPI,
			})
			return err
		})
		ocrTime = time.Since(start)
		if err != nil {
			log.Error("recognition failed", "page", page.Number, "error", err)
			return report.PageOutput{Page: page.Number, Error: err.Error()}, ocrTime, 0
		}
	}

	start := time.Now()
	res := w.extractor.ExtractPage(frags, page.Number)
	return report.NewPageOutput(frags, res), ocrTime, time.Since(start)
}

type artifact struct {
	name        string
	key         string
	data        []byte
	contentType string
}

func (w *Worker) buildArtifacts(job *Job, title string, outputs []report.PageOutput) ([]artifact, error) {
	timing := job.TimingSnapshot()
	md := report.Markdown(job.DocID, outputs, timing, w.cfg.Verbose)
	htmlDoc, err := report.HTML(title, md)
	if err != nil {
		return nil, err
	}
	raw, err := report.RawJSON(job.DocID, outputs, timing, time.Now())
	if err != nil {
		return nil, fmt.Errorf("raw json: %w", err)
	}
	tablesJSON, err := report.TablesJSON(job.DocID, outputs)
	if err != nil {
		return nil, fmt.Errorf("tables json: %w", err)
	}
	var docx bytes.Buffer
	if err := report.WriteDOCX(&docx, title, outputs); err != nil {
		return nil, err
	}

	return []artifact{
		{ArtifactReport, w.keys.Report(job.DocID), md, "text/markdown; charset=utf-8"},
		{ArtifactReportHTML, w.keys.ReportHTML(job.DocID), htmlDoc, "text/html; charset=utf-8"},
		{ArtifactRawOCR, w.keys.RawOCR(job.DocID), raw, "application/json"},
		{ArtifactTablesJSON, w.keys.TablesJSON(job.DocID), tablesJSON, "application/json"},
		{ArtifactTablesDOCX, w.keys.TablesDOCX(job.DocID), docx.Bytes(), "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
	}, nil
}
