// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert runs source documents through a Converter and writes the
// resulting Markdown, skipping documents that were already converted.
package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/fontdown/internal/ledger"
	"github.com/pdiddy/fontdown/internal/outline"
	"github.com/pdiddy/fontdown/pkg/types"
)

// Converter transforms a source file into Markdown text.
type Converter interface {
	// Convert reads the document at path and returns the Markdown content.
	Convert(path string) (string, error)
}

// Ledger is the subset of ledger.Ledger the batch runner needs.
type Ledger interface {
	Seen(ctx context.Context, hash string) (bool, error)
	Record(ctx context.Context, e ledger.Entry) error
}

// Options configures ConvertPaper and ConvertBatch.
type Options struct {
	Config types.ConversionConfig

	// Ledger, when set, is consulted to skip already converted documents and
	// updated after each conversion.
	Ledger Ledger

	// RunID tags ledger entries written by this batch.
	RunID string

	Logger *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int
}

// Total returns the total number of documents processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any document failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// MarkdownPath returns where the Markdown for src is written: OutputDir when
// set, otherwise next to the source file.
func MarkdownPath(src types.Source, cfg types.ConversionConfig) string {
	dir := cfg.OutputDir
	if dir == "" {
		dir = filepath.Dir(src.Path)
	}
	base := strings.TrimSuffix(filepath.Base(src.Path), filepath.Ext(src.Path))
	return filepath.Join(dir, base+".md")
}

// ConvertPaper converts a single document, writing <name>.md and printing a
// status line to w. A document is skipped when the ledger already holds its
// hash or the Markdown file exists, unless Config.Force is set.
func ConvertPaper(ctx context.Context, c Converter, src types.Source, opts Options, w io.Writer) types.ConversionStatus {
	log := opts.logger().With(zap.String("document", src.ID))
	mdPath := MarkdownPath(src, opts.Config)

	if err := ctx.Err(); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", src.ID, err)
		return types.ConversionFailed
	}

	hash, err := ledger.HashFile(src.Path)
	if err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", src.ID, err)
		return types.ConversionFailed
	}

	if !opts.Config.Force {
		if opts.Ledger != nil {
			seen, err := opts.Ledger.Seen(ctx, hash)
			if err != nil {
				fmt.Fprintf(w, "failed:  %s (%v)\n", src.ID, err)
				return types.ConversionFailed
			}
			if seen {
				fmt.Fprintf(w, "skipped: %s (already processed)\n", src.ID)
				return types.ConversionSkipped
			}
		}
		if _, err := os.Stat(mdPath); err == nil {
			fmt.Fprintf(w, "skipped: %s (already exists)\n", src.ID)
			return types.ConversionSkipped
		}
	}

	if err := os.MkdirAll(filepath.Dir(mdPath), 0o755); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", src.ID, err)
		return types.ConversionFailed
	}

	start := time.Now()
	md, err := c.Convert(src.Path)
	if err != nil {
		log.Warn("conversion failed", zap.String("path", src.Path), zap.Error(err))
		fmt.Fprintf(w, "failed:  %s (%v)\n", src.ID, err)
		return types.ConversionFailed
	}

	headings := outline.Headings([]byte(md))
	content := md
	if opts.Config.Frontmatter {
		content, err = addFrontmatter(src, hash, len(headings), md)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", src.ID, err)
			return types.ConversionFailed
		}
	}

	if err := os.WriteFile(mdPath, []byte(content), 0o644); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", src.ID, err)
		return types.ConversionFailed
	}

	if opts.Ledger != nil {
		err := opts.Ledger.Record(ctx, ledger.Entry{
			Hash:         hash,
			Path:         src.Path,
			MarkdownPath: mdPath,
			Headings:     len(headings),
			RunID:        opts.RunID,
		})
		if err != nil {
			fmt.Fprintf(w, "warning: %s converted but not recorded: %v\n", src.ID, err)
		}
	}

	levels := outline.Count(headings)
	log.Info("converted",
		zap.String("markdown", mdPath),
		zap.Int("headings", len(headings)),
		zap.Ints("per_level", levels[1:5]),
		zap.Duration("elapsed", time.Since(start)),
	)
	fmt.Fprintf(w, "converted: %s (%d headings)\n", src.ID, len(headings))
	return types.ConversionDone
}

// ConvertBatch converts sources with up to Config.Workers documents in
// flight, printing per-file status to w and returning a summary. A failing
// document does not stop the others; a cancelled context stops new
// documents from starting.
func ConvertBatch(ctx context.Context, c Converter, sources []types.Source, opts Options, w io.Writer) BatchResult {
	workers := opts.Config.Workers
	if workers <= 0 {
		workers = 1
	}
	sw := &syncWriter{w: w}

	statuses := make([]types.ConversionStatus, len(sources))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, src := range sources {
		if ctx.Err() != nil {
			break
		}
		i, src := i, src
		g.Go(func() error {
			statuses[i] = ConvertPaper(ctx, c, src, opts, sw)
			return nil
		})
	}
	_ = g.Wait()

	var result BatchResult
	for _, status := range statuses {
		switch status {
		case types.ConversionDone:
			result.Converted++
		case types.ConversionSkipped:
			result.Skipped++
		case types.ConversionFailed:
			result.Failed++
		}
	}
	if err := ctx.Err(); err != nil {
		fmt.Fprintf(w, "\nBatch interrupted: %v\n", err)
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
	return result
}

// ConvertPaths builds Source records from file paths and delegates to
// ConvertBatch. Each ID is the file name without extension.
func ConvertPaths(ctx context.Context, c Converter, paths []string, opts Options, w io.Writer) BatchResult {
	return ConvertBatch(ctx, c, Sources(paths), opts, w)
}

// Sources turns file paths into Source records.
func Sources(paths []string) []types.Source {
	sources := make([]types.Source, len(paths))
	for i, p := range paths {
		sources[i] = types.Source{
			ID:   strings.TrimSuffix(filepath.Base(p), filepath.Ext(p)),
			Path: p,
		}
	}
	return sources
}

// ScanDir returns the PDF files directly inside dir, sorted by name. The
// extension match is case-insensitive.
func ScanDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// addFrontmatter prepends YAML frontmatter to the converted Markdown content.
func addFrontmatter(src types.Source, hash string, headings int, body string) (string, error) {
	fm := types.Frontmatter{
		DocumentID:  src.ID,
		SourcePDF:   src.Path,
		SourceMD5:   hash,
		Headings:    headings,
		ConvertedAt: time.Now().UTC().Truncate(time.Second),
	}
	data, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("encoding frontmatter: %w", err)
	}
	var b strings.Builder
	b.WriteString("---\n")
	b.Write(data)
	b.WriteString("---\n\n")
	b.WriteString(strings.TrimLeft(body, "\n"))
	return b.String(), nil
}

// syncWriter serialises status lines from concurrent conversions.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
