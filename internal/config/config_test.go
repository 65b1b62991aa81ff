package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()
	if cfg.Port != "8090" {
		t.Errorf("expected port 8090, got %s", cfg.Port)
	}
	if cfg.OCREngine != "tesseract" {
		t.Errorf("expected tesseract engine, got %s", cfg.OCREngine)
	}
	if cfg.OCRDPI != 150 {
		t.Errorf("expected DPI 150, got %d", cfg.OCRDPI)
	}
	if cfg.WorkerCount != 5 || cfg.MaxConcurrentPages != 4 || cfg.PageBatchSize != 30 {
		t.Errorf("unexpected pool defaults: %d workers, %d pages, batch %d", cfg.WorkerCount, cfg.MaxConcurrentPages, cfg.PageBatchSize)
	}
	if cfg.OutputPrefix != "structured_output" {
		t.Errorf("expected structured_output prefix, got %s", cfg.OutputPrefix)
	}
	if !cfg.Dedup || cfg.Verbose() {
		t.Errorf("expected dedup on and clean output")
	}
	if cfg.TableProfile().RowTolerance != 10 {
		t.Errorf("expected standard profile, got row tolerance %v", cfg.TableProfile().RowTolerance)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("OCR_ENGINE", "Remote")
	t.Setenv("OCR_DPI", "300")
	t.Setenv("PAGE_TIMEOUT", "45s")
	t.Setenv("MAX_CONCURRENT_PAGES", "-2")
	t.Setenv("WORKERS_PER_CONTAINER", "abc")
	t.Setenv("TABLE_PROFILE", "lightweight")
	t.Setenv("OUTPUT_FORMAT", "verbose")
	t.Setenv("OUTPUT_PREFIX", "/out/")
	t.Setenv("DEDUP", "false")

	cfg := Load()
	if cfg.OCREngine != "remote" {
		t.Errorf("expected remote, got %s", cfg.OCREngine)
	}
	if cfg.OCRDPI != 300 {
		t.Errorf("expected 300, got %d", cfg.OCRDPI)
	}
	if cfg.PageTimeout != 45*time.Second {
		t.Errorf("expected 45s, got %s", cfg.PageTimeout)
	}
	if cfg.MaxConcurrentPages != 4 {
		t.Errorf("expected negative value to fall back to 4, got %d", cfg.MaxConcurrentPages)
	}
	if cfg.WorkerCount != 5 {
		t.Errorf("expected invalid value to fall back to 5, got %d", cfg.WorkerCount)
	}
	if cfg.TableProfile().RowTolerance != 20 {
		t.Errorf("expected lightweight profile, got row tolerance %v", cfg.TableProfile().RowTolerance)
	}
	if !cfg.Verbose() {
		t.Error("expected verbose output")
	}
	if cfg.OutputPrefix != "out" {
		t.Errorf("expected trimmed prefix, got %q", cfg.OutputPrefix)
	}
	if cfg.Dedup {
		t.Error("expected dedup disabled")
	}
}

func TestValidate(t *testing.T) {
	valid := Config{APIKey: "k", StoreAPIKey: "s", OCREngine: "tesseract", TableProfileName: "standard"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := map[string]func(c *Config){
		"missing api key":   func(c *Config) { c.APIKey = "" },
		"missing store key": func(c *Config) { c.StoreAPIKey = "" },
		"remote without url": func(c *Config) {
			c.OCREngine = "remote"
		},
		"unknown engine":  func(c *Config) { c.OCREngine = "abbyy" },
		"unknown profile": func(c *Config) { c.TableProfileName = "fancy" },
	}
	for name, mutate := range cases {
		c := valid
		mutate(&c)
		if err := c.Validate(); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}

	remote := valid
	remote.OCREngine = "remote"
	remote.OCRURL = "http://ocr:8080/recognize"
	if err := remote.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
