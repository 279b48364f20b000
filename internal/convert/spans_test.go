// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/fontdown/internal/extract"
	"github.com/pdiddy/fontdown/internal/render"
	"github.com/pdiddy/fontdown/internal/spancache"
	"github.com/pdiddy/fontdown/pkg/types"
)

type fakeExtractor struct {
	doc types.Document
	err error
}

func (f fakeExtractor) Extract(path string) (types.Document, error) {
	if f.err != nil {
		return nil, &extract.ParseError{Path: path, Err: f.err}
	}
	return f.doc, nil
}

func sampleDocument() types.Document {
	bold := func(text string, size float64) types.Span {
		return types.Span{Text: text, FontName: "Calibri-Bold", FontSize: size, IsBold: true, PageNumber: 1}
	}
	plain := func(text string, size float64) types.Span {
		return types.Span{Text: text, FontName: "Calibri", FontSize: size, PageNumber: 1}
	}
	return types.Document{
		{PageNumber: 1, Spans: []types.Span{plain("COVER", 44)}},
		{PageNumber: 1, Spans: []types.Span{bold("Annual", 24), bold(" Report", 24)}},
		{PageNumber: 1, Spans: []types.Span{bold("Summary", 16)}},
		{PageNumber: 1, Spans: []types.Span{plain("Revenue grew.", 16)}},
		{PageNumber: 1, Spans: []types.Span{plain("page 1", 7)}},
	}
}

func newSpanConverter(t *testing.T, ex extract.Extractor, opts ...SpanOption) *SpanConverter {
	t.Helper()
	r, err := render.New(types.DefaultRenderConfig())
	require.NoError(t, err)
	c, err := NewSpanConverter(ex, r, types.DefaultRankConfig(), opts...)
	require.NoError(t, err)
	return c
}

func TestSpanConverter_Convert(t *testing.T) {
	pdfPath, tmpDir := setupPDF(t)
	cache := spancache.New(filepath.Join(tmpDir, "state"))
	c := newSpanConverter(t, fakeExtractor{doc: sampleDocument()}, WithSpanCache(cache))

	md, err := c.Convert(pdfPath)

	require.NoError(t, err)
	// 24pt ranks 1 and 16pt ranks 2: both h1. The bold and regular 16pt
	// spans share a rank and merge onto the Summary line.
	assert.Equal(t, "\n\n# Annual Report Summary Revenue grew.", md)

	entries, err := os.ReadDir(cache.Dir())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Regexp(t, `^annual-report_[0-9a-f]{32}\.json$`, entries[0].Name())

	mdPath, err := c.RenderCached(filepath.Join(cache.Dir(), entries[0].Name()))
	require.NoError(t, err)
	data, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.Equal(t, md, string(data), "rendering from cache matches the direct render")
}

func TestSpanConverter_PropagatesParseError(t *testing.T) {
	c := newSpanConverter(t, fakeExtractor{err: errors.New("broken xref")})

	_, err := c.Convert("broken.pdf")

	var pErr *extract.ParseError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, "broken.pdf", pErr.Path)
}

func TestSpanConverter_MalformedDocument(t *testing.T) {
	doc := types.Document{{PageNumber: 1, Spans: []types.Span{{Text: "x", FontSize: -3}}}}
	c := newSpanConverter(t, fakeExtractor{doc: doc})

	md, err := c.Convert("doc.pdf")

	var mErr *render.MalformedInputError
	require.ErrorAs(t, err, &mErr)
	assert.Empty(t, md)
}

func TestNewSpanConverter_PrecisionMismatch(t *testing.T) {
	r, err := render.New(types.DefaultRenderConfig())
	require.NoError(t, err)

	_, err = NewSpanConverter(fakeExtractor{}, r, types.RankConfig{Precision: 1, MaxFontSize: 28})
	assert.ErrorContains(t, err, "does not match")

	_, err = NewSpanConverter(fakeExtractor{}, r, types.RankConfig{Precision: 2, MaxFontSize: -1})
	assert.ErrorContains(t, err, "invalid rank config")
}
