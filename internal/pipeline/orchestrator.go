package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/ocrgrid/internal/config"
	"github.com/dgallion1/ocrgrid/internal/objstore"
	"github.com/dgallion1/ocrgrid/internal/ocr"
	"github.com/dgallion1/ocrgrid/internal/parser"
	"github.com/dgallion1/ocrgrid/internal/tables"
)

// Orchestrator manages the document extraction pipeline.
type Orchestrator struct {
	jobs      *JobStore
	queue     chan *Job
	engine    ocr.Engine
	extractor *tables.Extractor
	store     Store
	keys      objstore.Keys
	log       *slog.Logger
	cfg       config.Config
	workerCfg WorkerConfig

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start to launch workers.
func NewOrchestrator(cfg config.Config, engine ocr.Engine, store Store, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:      NewJobStore(cfg.JobTTL),
		queue:     make(chan *Job, cfg.MaxQueueSize),
		engine:    engine,
		extractor: tables.NewExtractor(cfg.TableProfile(), log),
		store:     store,
		keys:      objstore.Keys{Prefix: cfg.OutputPrefix},
		log:       log,
		cfg:       cfg,
		workerCfg: WorkerConfig{
			Parser: parser.Options{
				DPI:           cfg.OCRDPI,
				MaxImageWidth: cfg.MaxImageWidth,
			},
			Languages:          ocr.ParseLanguages(cfg.OCRLanguages),
			MaxConcurrentPages: cfg.MaxConcurrentPages,
			PageBatchSize:      cfg.PageBatchSize,
			PageTimeout:        cfg.PageTimeout,
			Dedup:              cfg.Dedup,
			Verbose:            cfg.Verbose(),
		},
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.engine, o.extractor, o.store, o.keys, o.log, o.workerCfg)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
					// Release the upload once the job is done with it.
					job.SetFileData(nil)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Store returns the object store for direct use by API handlers.
func (o *Orchestrator) Store() Store {
	return o.store
}

// Keys returns the artifact key layout.
func (o *Orchestrator) Keys() objstore.Keys {
	return o.keys
}

// Extractor returns the shared table extractor.
func (o *Orchestrator) Extractor() *tables.Extractor {
	return o.extractor
}

// EngineName names the configured OCR engine.
func (o *Orchestrator) EngineName() string {
	return o.engine.Name()
}
