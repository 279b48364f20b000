// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract reads the text layer of a PDF into page/line/span records
// annotated with font metadata.
package extract

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/pdiddy/fontdown/pkg/types"
)

// ErrNoText is reported when a PDF has no extractable text layer, e.g. a
// scanned document.
var ErrNoText = errors.New("no text layer")

// ParseError wraps any failure to read a source document.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Extractor turns a source file into a Document. Implementations return a
// *ParseError on failure.
type Extractor interface {
	Extract(path string) (types.Document, error)
}

const (
	defaultRowTolerance   = 2.0
	defaultWordSpaceRatio = 0.3
)

// PDFExtractor extracts spans with github.com/ledongthuc/pdf.
type PDFExtractor struct {
	// RowTolerance is the maximum baseline difference, in points, for two
	// glyphs to share a line.
	RowTolerance float64

	// WordSpaceRatio is the horizontal gap, as a fraction of the font size,
	// above which a space is inserted between glyphs.
	WordSpaceRatio float64

	logger *zap.Logger
}

// NewPDFExtractor returns an extractor with default tolerances. A nil
// logger disables logging.
func NewPDFExtractor(logger *zap.Logger) *PDFExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PDFExtractor{
		RowTolerance:   defaultRowTolerance,
		WordSpaceRatio: defaultWordSpaceRatio,
		logger:         logger,
	}
}

// Extract reads every page of the PDF at path.
func (e *PDFExtractor) Extract(path string) (doc types.Document, err error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		// pdf.Open hands back the file even when the header check fails.
		if f != nil {
			f.Close()
		}
		return nil, &ParseError{Path: path, Err: err}
	}
	defer f.Close()

	// The content stream interpreter panics on some malformed files.
	defer func() {
		if p := recover(); p != nil {
			doc = nil
			err = &ParseError{Path: path, Err: fmt.Errorf("reading content stream: %v", p)}
		}
	}()

	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		lines := e.buildLines(i, page.Content().Text)
		e.logger.Debug("extracted page",
			zap.String("path", path),
			zap.Int("page", i),
			zap.Int("lines", len(lines)),
		)
		doc = append(doc, lines...)
	}

	if len(doc) == 0 {
		return nil, &ParseError{Path: path, Err: ErrNoText}
	}
	return doc, nil
}

// buildLines groups the glyphs of one page into lines, top to bottom, and
// each line into spans of consecutive glyphs sharing font and size.
func (e *PDFExtractor) buildLines(pageNum int, texts []pdf.Text) []types.Line {
	var lines []types.Line
	for _, row := range groupRows(texts, e.RowTolerance) {
		spans := e.buildSpans(pageNum, row)
		if len(spans) == 0 {
			continue
		}
		var b strings.Builder
		for _, s := range spans {
			b.WriteString(s.Text)
		}
		lines = append(lines, types.Line{
			PageNumber: pageNum,
			BlockType:  types.BlockText,
			LineText:   b.String(),
			Spans:      spans,
		})
	}
	return lines
}

// groupRows buckets glyphs by baseline. PDF user space grows upwards, so
// rows are ordered by descending Y; glyphs within a row by ascending X.
func groupRows(texts []pdf.Text, tolerance float64) [][]pdf.Text {
	glyphs := make([]pdf.Text, 0, len(texts))
	for _, t := range texts {
		if t.S == "" || t.FontSize <= 0 || math.IsNaN(t.FontSize) {
			continue
		}
		glyphs = append(glyphs, t)
	}
	sort.SliceStable(glyphs, func(i, j int) bool { return glyphs[i].Y > glyphs[j].Y })

	var rows [][]pdf.Text
	var rowY float64
	for _, g := range glyphs {
		if len(rows) == 0 || math.Abs(rowY-g.Y) > tolerance {
			rows = append(rows, []pdf.Text{g})
			rowY = g.Y
			continue
		}
		rows[len(rows)-1] = append(rows[len(rows)-1], g)
	}
	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })
	}
	return rows
}

func (e *PDFExtractor) buildSpans(pageNum int, row []pdf.Text) []types.Span {
	var spans []types.Span
	var lastEnd float64
	for _, g := range row {
		name := FontName(g.Font)
		n := len(spans)
		if n > 0 && spans[n-1].FontName == name && spans[n-1].FontSize == g.FontSize {
			cur := &spans[n-1]
			gap := g.X - lastEnd
			if gap > e.WordSpaceRatio*g.FontSize &&
				!strings.HasSuffix(cur.Text, " ") && !strings.HasPrefix(g.S, " ") {
				cur.Text += " "
			}
			cur.Text += g.S
			cur.BBox[2] = math.Max(cur.BBox[2], g.X+g.W)
			cur.BBox[3] = math.Max(cur.BBox[3], g.Y+g.FontSize)
			lastEnd = g.X + g.W
			continue
		}
		text := g.S
		if n > 0 && g.X-lastEnd > e.WordSpaceRatio*g.FontSize &&
			!strings.HasSuffix(spans[n-1].Text, " ") && !strings.HasPrefix(text, " ") {
			text = " " + text
		}
		spans = append(spans, types.Span{
			Text:       text,
			FontName:   name,
			FontSize:   g.FontSize,
			IsBold:     IsBold(name),
			IsItalic:   IsItalic(name),
			BBox:       types.BBox{g.X, g.Y, g.X + g.W, g.Y + g.FontSize},
			PageNumber: pageNum,
		})
		lastEnd = g.X + g.W
	}
	return spans
}

// FontName strips the six-letter subset tag ("ABCDEF+") from an embedded
// font name.
func FontName(raw string) string {
	if len(raw) > 7 && raw[6] == '+' {
		for _, c := range raw[:6] {
			if c < 'A' || c > 'Z' {
				return raw
			}
		}
		return raw[7:]
	}
	return raw
}

// IsBold reports whether the font name carries the "Bold" marker.
func IsBold(fontName string) bool {
	return strings.Contains(fontName, "Bold")
}

// IsItalic reports whether the font name carries the "Italic" marker.
func IsItalic(fontName string) bool {
	return strings.Contains(fontName, "Italic")
}
