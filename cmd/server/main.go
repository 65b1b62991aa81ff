package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/ocrgrid/internal/api"
	"github.com/dgallion1/ocrgrid/internal/config"
	"github.com/dgallion1/ocrgrid/internal/objstore"
	"github.com/dgallion1/ocrgrid/internal/ocr"
	"github.com/dgallion1/ocrgrid/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
	engine, err := ocr.NewEngine(ocr.Options{
		Kind:      cfg.OCREngine,
		URL:       cfg.OCRURL,
		APIKey:    cfg.OCRAPIKey,
		Languages: ocr.ParseLanguages(cfg.OCRLanguages),
		DPI:       cfg.OCRDPI,
		Timeout:   cfg.OCRTimeout,
	})
	if errors.Is(err, ocr.ErrOCRNotEnabled) {
		log.Warn("tesseract not linked, scanned pages will fail", "error", err)
		engine = ocr.Disabled{}
	} else if err != nil {
		log.Error("invalid OCR engine", "error", err)
		os.Exit(1)
	}
	ocrStats := ocr.NewStats(time.Hour)
	store := objstore.NewClient(cfg.StoreURL, cfg.StoreBucket, cfg.StoreAPIKey, cfg.StorePublicURL)

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, ocr.WithStats(engine, ocrStats), store, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, ocrStats, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if r, ok := engine.(*ocr.Remote); ok {
			r.Close()
		}
		store.Close()
	}()

	log.Info("starting ocrgrid",
		"port", cfg.Port,
		"ocr_engine", engine.Name(),
		"table_profile", cfg.TableProfileName,
		"workers", cfg.WorkerCount,
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
