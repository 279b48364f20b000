// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/fontdown/internal/convert"
	"github.com/pdiddy/fontdown/internal/extract"
	"github.com/pdiddy/fontdown/internal/ledger"
	"github.com/pdiddy/fontdown/internal/render"
	"github.com/pdiddy/fontdown/internal/spancache"
	"github.com/pdiddy/fontdown/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert [pdfs|dirs...]",
	Short: "Convert PDF files to Markdown heading outlines",
	Long: `Convert extracts styled spans from each PDF, ranks the document's font
sizes and writes <name>.md containing the spans that fall in a heading band.

Arguments may be PDF files or directories (scanned for *.pdf). With no
arguments the configured input directory is scanned. Documents already
recorded in the ledger, or whose Markdown already exists, are skipped unless
--force is given.`,
	RunE: runConvert,
}

func init() {
	d := types.DefaultConversionConfig()
	convertCmd.Flags().String("input-dir", d.InputDir, "directory scanned for PDFs when no arguments are given")
	convertCmd.Flags().String("output-dir", d.OutputDir, "directory for Markdown output (default: next to each PDF)")
	convertCmd.Flags().Int("workers", d.Workers, "number of documents converted concurrently")
	convertCmd.Flags().Bool("force", d.Force, "reconvert documents already in the ledger")
	convertCmd.Flags().Bool("frontmatter", d.Frontmatter, "prepend YAML frontmatter to each Markdown file")
	convertCmd.Flags().Bool("cache-spans", d.CacheSpans, "save extracted spans as JSON under the state directory")

	for key, flag := range map[string]string{
		"conversion.input_dir":   "input-dir",
		"conversion.output_dir":  "output-dir",
		"conversion.workers":     "workers",
		"conversion.force":       "force",
		"conversion.frontmatter": "frontmatter",
		"conversion.cache_spans": "cache-spans",
	} {
		_ = viper.BindPFlag(key, convertCmd.Flags().Lookup(flag))
	}

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	conv := cfg.Conversion

	paths, err := resolveInputs(args, conv.InputDir)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		fmt.Println("No PDF files found.")
		return nil
	}

	converter, err := newSpanConverter(cfg)
	if err != nil {
		return err
	}

	led, err := ledger.Open(conv.StateDir)
	if err != nil {
		return err
	}
	defer led.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	run, err := led.BeginRun(ctx)
	if err != nil {
		return err
	}
	logger.Info("starting conversion",
		zap.String("run_id", run.ID),
		zap.Int("documents", len(paths)),
		zap.Int("workers", conv.Workers),
	)

	result := convert.ConvertPaths(ctx, converter, paths, convert.Options{
		Config: conv,
		Ledger: led,
		RunID:  run.ID,
		Logger: logger,
	}, os.Stdout)

	counts := ledger.Counts{Converted: result.Converted, Skipped: result.Skipped, Failed: result.Failed}
	if err := led.FinishRun(context.Background(), run, counts); err != nil {
		logger.Warn("recording run", zap.String("run_id", run.ID), zap.Error(err))
	}

	if result.HasFailures() {
		return fmt.Errorf("%d document(s) failed conversion", result.Failed)
	}
	return nil
}

// newSpanConverter wires the extractor, renderer and optional span cache
// from cfg.
func newSpanConverter(cfg types.PipelineConfig) (*convert.SpanConverter, error) {
	r, err := render.New(cfg.Render, render.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	opts := []convert.SpanOption{convert.WithLogger(logger)}
	if cfg.Conversion.CacheSpans {
		opts = append(opts, convert.WithSpanCache(spancache.New(cfg.Conversion.StateDir)))
	}
	return convert.NewSpanConverter(extract.NewPDFExtractor(logger), r, cfg.Rank, opts...)
}

// resolveInputs expands directories to the PDFs they contain. With no
// arguments, inputDir is scanned.
func resolveInputs(args []string, inputDir string) ([]string, error) {
	if len(args) == 0 {
		return convert.ScanDir(inputDir)
	}
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("reading input %s: %w", arg, err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		found, err := convert.ScanDir(arg)
		if err != nil {
			return nil, err
		}
		paths = append(paths, found...)
	}
	return paths, nil
}
