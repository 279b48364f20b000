// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render turns a ranked span stream into Markdown headings.
//
// Each span is classified by the rank of its rounded font size. Spans whose
// rank falls in a heading band become ATX headings; consecutive spans of the
// same level are joined onto one heading line. Every other span is omitted:
// there is no body-text fallback.
package render

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/pdiddy/fontdown/internal/fontrank"
	"github.com/pdiddy/fontdown/pkg/types"
)

// MalformedInputError reports a document that violates the span/line
// invariants. Rendering stops before any output is produced.
type MalformedInputError struct {
	Page   int
	Line   int // 0-based index into the document
	Span   int // 0-based index into the line, -1 for line-level problems
	Reason string
}

func (e *MalformedInputError) Error() string {
	if e.Span < 0 {
		return fmt.Sprintf("malformed input: page %d line %d: %s", e.Page, e.Line, e.Reason)
	}
	return fmt.Sprintf("malformed input: page %d line %d span %d: %s", e.Page, e.Line, e.Span, e.Reason)
}

// Stats counts how spans were classified during one render.
type Stats struct {
	Spans        int `json:"spans" yaml:"spans"`
	Headings     int `json:"headings" yaml:"headings"`
	Merged       int `json:"merged" yaml:"merged"`
	LookupMisses int `json:"lookup_misses" yaml:"lookup_misses"`
	BelowMinSize int `json:"below_min_size" yaml:"below_min_size"`
	OutOfBand    int `json:"out_of_band" yaml:"out_of_band"`
}

// Dropped returns the number of spans omitted from the output.
func (s Stats) Dropped() int {
	return s.LookupMisses + s.BelowMinSize + s.OutOfBand
}

// Option customises a Renderer.
type Option func(*Renderer)

// WithLogger routes drop diagnostics to logger at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Renderer renders Documents with a fixed configuration. It holds no
// per-render state and is safe for concurrent use.
type Renderer struct {
	cfg    types.RenderConfig
	logger *zap.Logger
}

// New validates cfg and returns a Renderer. Validation failures wrap
// ErrInvalidConfig.
func New(cfg types.RenderConfig, opts ...Option) (*Renderer, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	r := &Renderer{cfg: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r, nil
}

// Config returns the renderer's configuration.
func (r *Renderer) Config() types.RenderConfig {
	return r.cfg
}

// Render returns the Markdown for doc using ranks from fontrank.AssignRanks.
func (r *Renderer) Render(doc types.Document, ranks types.FontRank) (string, error) {
	md, _, err := r.RenderWithStats(doc, ranks)
	return md, err
}

// RenderWithStats is Render plus classification counts.
func (r *Renderer) RenderWithStats(doc types.Document, ranks types.FontRank) (string, Stats, error) {
	if err := validateDocument(doc); err != nil {
		return "", Stats{}, err
	}

	var (
		b     strings.Builder
		st    foldState
		stats Stats
	)
	for _, line := range doc {
		for _, span := range line.Spans {
			stats.Spans++
			level, outcome := r.classify(span, ranks)
			if outcome != outcomeHeading {
				r.logDrop(line, span, outcome)
				stats.count(outcome)
			}

			var frag string
			var merged bool
			st, frag, merged = step(st, level, span.Text)
			switch {
			case merged:
				stats.Merged++
			case level != 0:
				stats.Headings++
			}
			b.WriteString(frag)
		}
	}

	b.WriteString(closeLine(st))

	return strings.TrimRightFunc(b.String(), unicode.IsSpace), stats, nil
}

type outcome int

const (
	outcomeHeading outcome = iota
	outcomeLookupMiss
	outcomeBelowMinSize
	outcomeOutOfBand
)

func (o outcome) String() string {
	switch o {
	case outcomeHeading:
		return "heading"
	case outcomeLookupMiss:
		return "no rank for font"
	case outcomeBelowMinSize:
		return "below minimum font size"
	case outcomeOutOfBand:
		return "rank outside heading bands"
	default:
		return "unknown"
	}
}

func (s *Stats) count(o outcome) {
	switch o {
	case outcomeLookupMiss:
		s.LookupMisses++
	case outcomeBelowMinSize:
		s.BelowMinSize++
	case outcomeOutOfBand:
		s.OutOfBand++
	}
}

// classify resolves span to a heading level. The minimum size is checked
// against the raw, unrounded font size.
func (r *Renderer) classify(span types.Span, ranks types.FontRank) (int, outcome) {
	rank, ok := ranks[fontrank.KeyFor(span, r.cfg.Precision)]
	if !ok {
		return 0, outcomeLookupMiss
	}
	if span.FontSize < r.cfg.MinFontSize {
		return 0, outcomeBelowMinSize
	}
	level := r.cfg.HeadingBands.Level(rank)
	if level == 0 {
		return 0, outcomeOutOfBand
	}
	return level, outcomeHeading
}

func (r *Renderer) logDrop(line types.Line, span types.Span, o outcome) {
	r.logger.Debug("ignoring span",
		zap.String("text", span.Text),
		zap.Float64("font_size", span.FontSize),
		zap.Bool("bold", span.IsBold),
		zap.Int("page", line.PageNumber),
		zap.String("reason", o.String()),
	)
}

// foldState is the only state carried between spans: the level of the
// heading line currently open, or 0 when none is.
type foldState struct {
	level int
}

// step folds one classified span into the output. level is 0 for spans
// that are not headings. It returns the next state, the text to append and
// whether the span continued the open heading line. A heading line stays
// open, without its trailing blank line, until a span of another level or a
// non-heading span arrives.
func step(st foldState, level int, text string) (foldState, string, bool) {
	if level == 0 {
		return foldState{}, closeLine(st), false
	}
	text = strings.TrimSpace(text)
	if st.level == level {
		return st, " " + text, true
	}
	return foldState{level: level}, closeLine(st) + "\n\n" + strings.Repeat("#", level) + " " + text, false
}

// closeLine returns the separator that ends the open heading line, if any.
func closeLine(st foldState) string {
	if st.level == 0 {
		return ""
	}
	return "\n\n"
}

func validateDocument(doc types.Document) error {
	for i, line := range doc {
		if line.PageNumber < 1 {
			return &MalformedInputError{Page: line.PageNumber, Line: i, Span: -1, Reason: "page number must be >= 1"}
		}
		if len(line.Spans) == 0 {
			return &MalformedInputError{Page: line.PageNumber, Line: i, Span: -1, Reason: "line has no spans"}
		}
		for j, s := range line.Spans {
			if math.IsNaN(s.FontSize) || math.IsInf(s.FontSize, 0) || s.FontSize <= 0 {
				return &MalformedInputError{
					Page:   line.PageNumber,
					Line:   i,
					Span:   j,
					Reason: fmt.Sprintf("font size %v must be a positive number", s.FontSize),
				}
			}
			if s.PageNumber != 0 && s.PageNumber != line.PageNumber {
				return &MalformedInputError{
					Page:   line.PageNumber,
					Line:   i,
					Span:   j,
					Reason: fmt.Sprintf("span page %d does not match line page", s.PageNumber),
				}
			}
		}
	}
	return nil
}
