// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/fontdown/internal/extract"
	"github.com/pdiddy/fontdown/internal/fontrank"
	"github.com/pdiddy/fontdown/internal/ledger"
	"github.com/pdiddy/fontdown/internal/render"
	"github.com/pdiddy/fontdown/internal/spancache"
	"github.com/pdiddy/fontdown/pkg/types"
)

// SpanConverter converts PDFs by extracting styled spans, ranking their font
// sizes and rendering the ranked spans as Markdown headings.
type SpanConverter struct {
	extractor extract.Extractor
	renderer  *render.Renderer
	rankCfg   types.RankConfig
	cache     *spancache.Cache
	logger    *zap.Logger
}

// SpanOption customises a SpanConverter.
type SpanOption func(*SpanConverter)

// WithSpanCache saves every extracted document to cache before rendering.
func WithSpanCache(cache *spancache.Cache) SpanOption {
	return func(c *SpanConverter) { c.cache = cache }
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *zap.Logger) SpanOption {
	return func(c *SpanConverter) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewSpanConverter wires an extractor and renderer. The rank precision must
// match the renderer's so that lookups use the keys the ranking produced.
func NewSpanConverter(ex extract.Extractor, r *render.Renderer, rankCfg types.RankConfig, opts ...SpanOption) (*SpanConverter, error) {
	if err := rankCfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rank config: %w", err)
	}
	if p := r.Config().Precision; p != rankCfg.Precision {
		return nil, fmt.Errorf("rank precision %d does not match render precision %d", rankCfg.Precision, p)
	}
	c := &SpanConverter{
		extractor: ex,
		renderer:  r,
		rankCfg:   rankCfg,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Convert extracts the document at path and renders it.
func (c *SpanConverter) Convert(path string) (string, error) {
	doc, err := c.extractor.Extract(path)
	if err != nil {
		return "", err
	}

	if c.cache != nil {
		hash, err := ledger.HashFile(path)
		if err != nil {
			return "", err
		}
		cached, err := c.cache.Save(path, hash, doc)
		if err != nil {
			return "", err
		}
		c.logger.Debug("cached spans", zap.String("path", path), zap.String("cache", cached))
	}

	return c.RenderDocument(doc)
}

// RenderDocument ranks the fonts of doc and renders it.
func (c *SpanConverter) RenderDocument(doc types.Document) (string, error) {
	ranks := fontrank.AssignRanks(fontrank.CollectProfiles(doc), c.rankCfg)
	md, stats, err := c.renderer.RenderWithStats(doc, ranks)
	if err != nil {
		return "", err
	}
	c.logger.Debug("rendered document",
		zap.Int("lines", len(doc)),
		zap.Int("spans", doc.SpanCount()),
		zap.Int("ranks", len(ranks)),
		zap.Int("headings", stats.Headings),
		zap.Int("merged", stats.Merged),
		zap.Int("lookup_misses", stats.LookupMisses),
		zap.Int("below_min_size", stats.BelowMinSize),
		zap.Int("out_of_band", stats.OutOfBand),
	)
	return md, nil
}

// RenderCached renders a span cache file and writes the Markdown beside it,
// replacing the .json extension with .md. It returns the path written.
func (c *SpanConverter) RenderCached(jsonPath string) (string, error) {
	doc, err := spancache.Load(jsonPath)
	if err != nil {
		return "", err
	}
	md, err := c.RenderDocument(doc)
	if err != nil {
		return "", fmt.Errorf("rendering %s: %w", jsonPath, err)
	}
	mdPath := strings.TrimSuffix(jsonPath, ".json") + ".md"
	if err := os.WriteFile(mdPath, []byte(md), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", mdPath, err)
	}
	return mdPath, nil
}
