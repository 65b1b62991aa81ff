// Command ocrgrid extracts tables from a scanned document or PDF without
// running the HTTP service.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dgallion1/ocrgrid/internal/ocr"
	"github.com/dgallion1/ocrgrid/internal/tables"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "ocrgrid",
		Usage: "Rebuild tables from OCR text fragments",
		Commands: []*cli.Command{
			{
				Name:  "extract",
				Usage: "Extract tables from a PDF, image or fragment dump",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Input file path (pdf, png, jpg, tiff, bmp, gif or json)",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (default: stdout, required for docx)",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: markdown, html, json or docx",
						Value:   "markdown",
					},
					&cli.StringFlag{
						Name:  "profile",
						Usage: "Table profile: " + strings.Join(tables.ProfileNames(), ", "),
						Value: "standard",
					},
					&cli.StringFlag{
						Name:  "engine",
						Usage: "OCR engine: tesseract, remote or none",
						Value: "tesseract",
					},
					&cli.StringFlag{
						Name:    "ocr-url",
						Usage:   "Recognition endpoint for the remote engine",
						Sources: cli.EnvVars("OCR_URL"),
					},
					&cli.StringFlag{
						Name:    "ocr-api-key",
						Usage:   "Bearer key for the remote engine",
						Sources: cli.EnvVars("OCR_API_KEY"),
					},
					&cli.StringFlag{
						Name:  "languages",
						Usage: "Recognition languages, such as fra+eng",
						Value: "fra+eng",
					},
					&cli.IntFlag{
						Name:  "dpi",
						Usage: "Rendering resolution hint for scanned pages",
						Value: 150,
					},
					&cli.BoolFlag{
						Name:  "verbose",
						Usage: "Include raw fragments in the report and log at debug level",
					},
				},
				Action: extractCommand,
			},
			{
				Name:   "profiles",
				Usage:  "List table profiles and their tolerances",
				Action: profilesCommand,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func extractCommand(ctx context.Context, cmd *cli.Command) error {
	level := slog.LevelInfo
	if cmd.Bool("verbose") {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	profile, err := tables.ProfileByName(cmd.String("profile"))
	if err != nil {
		return err
	}
	languages := ocr.ParseLanguages(cmd.String("languages"))
	engine, err := ocr.NewEngine(ocr.Options{
		Kind:      cmd.String("engine"),
		URL:       cmd.String("ocr-url"),
		APIKey:    cmd.String("ocr-api-key"),
		Languages: languages,
		DPI:       int(cmd.Int("dpi")),
		Timeout:   2 * time.Minute,
	})
	if err != nil {
		logger.Warn("OCR unavailable, only text layers and fragment dumps will be read", "error", err)
		engine = ocr.Disabled{}
	}

	opts := extractOptions{
		Input:     cmd.String("input"),
		Output:    cmd.String("output"),
		Format:    cmd.String("format"),
		Profile:   profile,
		Languages: languages,
		DPI:       int(cmd.Int("dpi")),
		Verbose:   cmd.Bool("verbose"),
	}
	return runExtract(ctx, opts, engine, logger, os.Stdout)
}

func profilesCommand(_ context.Context, _ *cli.Command) error {
	for _, name := range tables.ProfileNames() {
		p, err := tables.ProfileByName(name)
		if err != nil {
			return err
		}
		fmt.Printf("%-12s row_tolerance=%g table_gap=%g min_table_rows=%d rule=%s headers=%t assignment=%s\n",
			p.Name, p.RowTolerance, p.TableGap, p.MinTableRows, p.FinancialRule, p.MatchHeaders, p.Assignment)
	}
	return nil
}
