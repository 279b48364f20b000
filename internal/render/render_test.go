// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/fontdown/internal/fontrank"
	"github.com/pdiddy/fontdown/internal/outline"
	"github.com/pdiddy/fontdown/pkg/types"
)

func span(text string, size float64, bold bool) types.Span {
	name := "Arial"
	if bold {
		name = "Arial-Bold"
	}
	return types.Span{Text: text, FontName: name, FontSize: size, IsBold: bold}
}

func line(page int, spans ...types.Span) types.Line {
	var text string
	for _, s := range spans {
		text += s.Text
	}
	return types.Line{PageNumber: page, LineText: text, Spans: spans}
}

// rankDoc ranks doc the way the conversion pipeline does.
func rankDoc(doc types.Document) types.FontRank {
	return fontrank.AssignRanks(fontrank.CollectProfiles(doc), types.DefaultRankConfig())
}

func newRenderer(t *testing.T, cfg types.RenderConfig, opts ...Option) *Renderer {
	t.Helper()
	r, err := New(cfg, opts...)
	require.NoError(t, err)
	return r
}

func h1Only() types.RenderConfig {
	cfg := types.DefaultRenderConfig()
	cfg.HeadingBands = types.HeadingBands{H1: []int{1}}
	return cfg
}

func TestRender_MergesSameLevelSpans(t *testing.T) {
	doc := types.Document{
		line(1, span("Intro", 24, true), span(" Guide", 24, true)),
	}
	r := newRenderer(t, h1Only())

	md, stats, err := r.RenderWithStats(doc, rankDoc(doc))

	require.NoError(t, err)
	assert.Equal(t, "\n\n# Intro Guide", md)
	assert.Equal(t, 1, stats.Headings)
	assert.Equal(t, 1, stats.Merged)
	assert.Equal(t, 0, stats.Dropped())
}

func TestStep_StreamBeforeTrim(t *testing.T) {
	var (
		st  foldState
		out string
	)
	for _, text := range []string{"Intro", " Guide"} {
		var frag string
		st, frag, _ = step(st, 1, text)
		out += frag
	}
	out += closeLine(st)

	assert.Equal(t, "\n\n# Intro Guide\n\n", out)
}

func TestStep_NonHeadingResetsLevel(t *testing.T) {
	st, frag, merged := step(foldState{level: 2}, 0, "ignored")
	assert.Equal(t, foldState{}, st)
	assert.Equal(t, "\n\n", frag)
	assert.False(t, merged)

	st, frag, merged = step(st, 0, "ignored again")
	assert.Equal(t, foldState{}, st)
	assert.Empty(t, frag)
	assert.False(t, merged)
}

func TestRender_DropsSpansBelowMinimumSize(t *testing.T) {
	doc := types.Document{line(1, span("footer", 6, false))}
	ranks := rankDoc(doc)
	require.Equal(t, 1, ranks[types.FontKey{Size: 6}], "footer ranks first on its own")

	md, stats, err := newRenderer(t, types.DefaultRenderConfig()).RenderWithStats(doc, ranks)

	require.NoError(t, err)
	assert.Empty(t, md)
	assert.Equal(t, 1, stats.BelowMinSize)
}

func TestRender_MinimumSizeUsesRawSize(t *testing.T) {
	// 8.996 rounds to 9.00 but the raw size is below the minimum.
	doc := types.Document{
		line(1, span("Almost", 8.996, false)),
		line(1, span("Exactly", 9, true)),
	}

	md, err := newRenderer(t, types.DefaultRenderConfig()).Render(doc, rankDoc(doc))

	require.NoError(t, err)
	assert.Equal(t, "\n\n# Exactly", md)
}

func TestRender_OversizedFontIsNeverRanked(t *testing.T) {
	doc := types.Document{
		line(1, span("POSTER", 40, true)),
		line(1, span("Real Title", 20, true)),
	}
	ranks := rankDoc(doc)

	md, stats, err := newRenderer(t, types.DefaultRenderConfig()).RenderWithStats(doc, ranks)

	require.NoError(t, err)
	assert.Equal(t, "\n\n# Real Title", md)
	assert.Equal(t, 1, stats.LookupMisses)
}

func TestRender_OnlyOversizedFont(t *testing.T) {
	doc := types.Document{line(1, span("POSTER", 40, false))}

	md, err := newRenderer(t, types.DefaultRenderConfig()).Render(doc, rankDoc(doc))

	require.NoError(t, err)
	assert.Empty(t, md)
}

func TestRender_InterveningSpanSplitsSameLevelHeadings(t *testing.T) {
	cfg := types.DefaultRenderConfig()
	cfg.HeadingBands = types.HeadingBands{H1: []int{1}, H2: []int{2}}
	doc := types.Document{
		line(1, span("Chapter", 18, true)),
		line(1, span("body text", 11, false)),
		line(1, span("tiny", 12, false)), // rank 3, in no band
		line(2, span("Chapter", 18, true), span("Two", 18, true)),
		line(2, span("Section", 14, false)),
		line(2, span("1.1", 14, false)),
	}
	ranks := rankDoc(doc)

	md, stats, err := newRenderer(t, cfg).RenderWithStats(doc, ranks)

	require.NoError(t, err)
	assert.Equal(t, "\n\n# Chapter\n\n\n\n# Chapter Two\n\n\n\n## Section 1.1", md)
	assert.Equal(t, 3, stats.Headings)
	assert.Equal(t, 2, stats.Merged)
	assert.Equal(t, 2, stats.OutOfBand)
}

func TestRender_DefaultBands(t *testing.T) {
	// Eleven distinct sizes: ranks 1..11. Rank 11 is outside every default band.
	sizes := []float64{28, 26, 24, 22, 20, 18, 16, 14, 12, 10, 9.5}
	var doc types.Document
	for _, s := range sizes {
		doc = append(doc, line(1, span("x", s, false)))
	}

	md, stats, err := newRenderer(t, types.DefaultRenderConfig()).RenderWithStats(doc, rankDoc(doc))

	require.NoError(t, err)
	want := "\n\n# x x x\n\n\n\n## x x\n\n\n\n### x x x\n\n\n\n#### x x"
	assert.Equal(t, want, md)
	assert.Equal(t, 1, stats.OutOfBand)

	headings := outline.Headings([]byte(md))
	require.Len(t, headings, 4)
	for i, h := range headings {
		assert.Equal(t, i+1, h.Level)
	}
}

func TestRender_BoldAndRegularShareLevel(t *testing.T) {
	doc := types.Document{
		line(1, span("Bold", 16, true), span("Regular", 16, false)),
	}

	md, err := newRenderer(t, types.DefaultRenderConfig()).Render(doc, rankDoc(doc))

	require.NoError(t, err)
	assert.Equal(t, "\n\n# Bold Regular", md)
}

func TestRender_Idempotent(t *testing.T) {
	doc := types.Document{
		line(1, span("Report", 22, true), span("2026", 22, true)),
		line(1, span("Summary", 15, true)),
		line(1, span("body", 10, false)),
		line(2, span("page 2", 7, false)),
		line(2, span("Findings", 15, true)),
	}
	ranks := rankDoc(doc)
	r := newRenderer(t, types.DefaultRenderConfig())

	first, err := r.Render(doc, ranks)
	require.NoError(t, err)
	second, err := r.Render(doc, ranks)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRender_EmptyDocument(t *testing.T) {
	md, err := newRenderer(t, types.DefaultRenderConfig()).Render(nil, types.FontRank{})
	require.NoError(t, err)
	assert.Empty(t, md)
}

func TestRender_MalformedInput(t *testing.T) {
	tests := []struct {
		name string
		doc  types.Document
		want MalformedInputError
	}{
		{
			name: "zero font size",
			doc:  types.Document{line(1, span("ok", 12, false)), line(1, span("bad", 0, false))},
			want: MalformedInputError{Page: 1, Line: 1, Span: 0},
		},
		{
			name: "NaN font size",
			doc:  types.Document{line(3, span("ok", 12, false), span("bad", math.NaN(), false))},
			want: MalformedInputError{Page: 3, Line: 0, Span: 1},
		},
		{
			name: "empty line",
			doc:  types.Document{{PageNumber: 2}},
			want: MalformedInputError{Page: 2, Line: 0, Span: -1},
		},
		{
			name: "missing page number",
			doc:  types.Document{{Spans: []types.Span{span("x", 12, false)}}},
			want: MalformedInputError{Page: 0, Line: 0, Span: -1},
		},
	}

	r := newRenderer(t, types.DefaultRenderConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md, err := r.Render(tt.doc, types.FontRank{{Size: 12}: 1})

			require.Error(t, err)
			assert.Empty(t, md, "no partial output")
			var mErr *MalformedInputError
			require.True(t, errors.As(err, &mErr))
			assert.Equal(t, tt.want.Page, mErr.Page)
			assert.Equal(t, tt.want.Line, mErr.Line)
			assert.Equal(t, tt.want.Span, mErr.Span)
			assert.NotEmpty(t, mErr.Reason)
		})
	}
}

func TestRender_LogsDroppedSpans(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := newRenderer(t, types.DefaultRenderConfig(), WithLogger(zap.New(core)))
	doc := types.Document{
		line(1, span("Title", 20, true)),
		line(1, span("footnote", 6, false)),
	}

	_, err := r.Render(doc, rankDoc(doc))

	require.NoError(t, err)
	entries := logs.FilterMessage("ignoring span").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "footnote", fields["text"])
	assert.Equal(t, "below minimum font size", fields["reason"])
}

func TestNew_ValidatesConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*types.RenderConfig)
	}{
		{"negative min font size", func(c *types.RenderConfig) { c.MinFontSize = -1 }},
		{"precision too large", func(c *types.RenderConfig) { c.Precision = 11 }},
		{"negative precision", func(c *types.RenderConfig) { c.Precision = -2 }},
		{"overlapping bands", func(c *types.RenderConfig) { c.HeadingBands.H2 = []int{3, 4, 5} }},
		{"zero rank", func(c *types.RenderConfig) { c.HeadingBands.H4 = []int{0} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := types.DefaultRenderConfig()
			tt.mutate(&cfg)

			_, err := New(cfg)

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	_, err := New(types.DefaultRenderConfig())
	assert.NoError(t, err)
}
