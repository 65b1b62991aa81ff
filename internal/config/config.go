package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/ocrgrid/internal/tables"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Object storage
	StoreURL       string
	StoreAPIKey    string
	StoreBucket    string
	StorePublicURL string
	OutputPrefix   string

	// OCR
	OCREngine    string
	OCRURL       string
	OCRAPIKey    string
	OCRLanguages string
	OCRDPI       int
	OCRTimeout   time.Duration

	// Worker pool
	WorkerCount        int
	MaxQueueSize       int
	MaxConcurrentPages int
	PageBatchSize      int
	PageTimeout        time.Duration

	// Upload limits
	MaxUploadBytes int64
	MaxImageWidth  int

	// Job state
	JobTTL time.Duration

	// Output
	TableProfileName string
	OutputFormat     string
	Dedup            bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("OCRGRID_API_KEY"),

		StoreURL:       envOr("STORE_URL", "http://localhost:9000"),
		StoreAPIKey:    os.Getenv("STORE_API_KEY"),
		StoreBucket:    envOr("STORE_BUCKET", "my-invoice-files"),
		StorePublicURL: os.Getenv("STORE_PUBLIC_URL"),
		OutputPrefix:   strings.Trim(envOr("OUTPUT_PREFIX", "structured_output"), "/"),

		OCREngine:    strings.ToLower(envOr("OCR_ENGINE", "tesseract")),
		OCRURL:       os.Getenv("OCR_URL"),
		OCRAPIKey:    os.Getenv("OCR_API_KEY"),
		OCRLanguages: envOr("OCR_LANGUAGES", "fra+eng"),
		OCRDPI:       envInt("OCR_DPI", 150),
		OCRTimeout:   envDuration("OCR_TIMEOUT", 60*time.Second),

		WorkerCount:        envInt("WORKERS_PER_CONTAINER", 5),
		MaxQueueSize:       envInt("MAX_QUEUE_SIZE", 100),
		MaxConcurrentPages: envInt("MAX_CONCURRENT_PAGES", 4),
		PageBatchSize:      envInt("PAGE_BATCH_SIZE", 30),
		PageTimeout:        envDuration("PAGE_TIMEOUT", 30*time.Second),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB
		MaxImageWidth:  envInt("MAX_IMAGE_WIDTH", 2480),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		TableProfileName: strings.ToLower(envOr("TABLE_PROFILE", "standard")),
		OutputFormat:     strings.ToLower(envOr("OUTPUT_FORMAT", "clean")),
		Dedup:            envBool("DEDUP", true),
	}

	if cfg.OCRDPI <= 0 {
		cfg.OCRDPI = 150
	}
	if cfg.OCRTimeout <= 0 {
		cfg.OCRTimeout = 60 * time.Second
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 5
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxConcurrentPages <= 0 {
		cfg.MaxConcurrentPages = 4
	}
	if cfg.PageBatchSize <= 0 {
		cfg.PageBatchSize = 30
	}
	if cfg.PageTimeout <= 0 {
		cfg.PageTimeout = 30 * time.Second
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.MaxImageWidth <= 0 {
		cfg.MaxImageWidth = 2480
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.OutputFormat != "verbose" {
		cfg.OutputFormat = "clean"
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("OCRGRID_API_KEY is required")
	}
	if c.StoreAPIKey == "" {
		return fmt.Errorf("STORE_API_KEY is required")
	}
	switch c.OCREngine {
	case "tesseract", "none":
	case "remote":
		if c.OCRURL == "" {
			return fmt.Errorf("OCR_URL is required when OCR_ENGINE=remote")
		}
	default:
		return fmt.Errorf("OCR_ENGINE must be tesseract, remote or none, got %q", c.OCREngine)
	}
	if _, err := tables.ProfileByName(c.TableProfileName); err != nil {
		return fmt.Errorf("TABLE_PROFILE: %w", err)
	}
	return nil
}

// TableProfile resolves TABLE_PROFILE. Validate reports unknown names;
// here they fall back to the standard profile.
func (c Config) TableProfile() tables.Profile {
	p, err := tables.ProfileByName(c.TableProfileName)
	if err != nil {
		return tables.Standard()
	}
	return p
}

// Verbose reports whether reports include per-fragment detail.
func (c Config) Verbose() bool { return c.OutputFormat == "verbose" }

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
