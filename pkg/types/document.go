// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the data records and configuration shared by the
// extraction, ranking, rendering and conversion stages.
package types

// BlockType tags the structural block a Line came from.
type BlockType int

const (
	// BlockText is a paragraph/text block.
	BlockText BlockType = 0
	// BlockImage is an image block. Image blocks carry no spans.
	BlockImage BlockType = 1
)

// BBox is a rectangle in page coordinates: x0, y0, x1, y1.
type BBox [4]float64

// Span is one contiguous run of same-styled text within a line.
// Spans are produced once by the extractor and are read-only afterwards.
type Span struct {
	Text string `json:"text" yaml:"text"`

	// FontName is the PostScript/base font name reported by the document,
	// e.g. "Arial-BoldMT".
	FontName string `json:"font_name" yaml:"font_name"`

	// FontSize is the font size in points. Always > 0 for well-formed input.
	FontSize float64 `json:"font_size" yaml:"font_size"`

	// IsBold and IsItalic are derived from FontName.
	IsBold   bool `json:"is_bold" yaml:"is_bold"`
	IsItalic bool `json:"is_italic" yaml:"is_italic"`

	// Color is the packed sRGB fill color (0xRRGGBB).
	Color int `json:"color" yaml:"color"`

	BBox BBox `json:"position" yaml:"position"`

	// PageNumber is 1-based.
	PageNumber int `json:"page_number,omitempty" yaml:"page_number,omitempty"`
}

// Line is an ordered, non-empty run of spans sharing one source line.
type Line struct {
	PageNumber int       `json:"page_number" yaml:"page_number"`
	BlockType  BlockType `json:"block_type" yaml:"block_type"`

	// LineText is the concatenation of the span texts.
	LineText string `json:"line_text" yaml:"line_text"`

	Spans []Span `json:"line_details" yaml:"line_details"`
}

// Document is the ordered sequence of lines of one source file, in page,
// block, line order.
type Document []Line

// SpanCount returns the total number of spans in the document.
func (d Document) SpanCount() int {
	n := 0
	for _, l := range d {
		n += len(l.Spans)
	}
	return n
}

// FontProfile is a distinct (font name, size, boldness) combination observed
// in a document, with the number of spans that used it.
type FontProfile struct {
	FontName string  `json:"font_name" yaml:"font_name"`
	FontSize float64 `json:"font_size" yaml:"font_size"`
	IsBold   bool    `json:"is_bold" yaml:"is_bold"`
	Count    int     `json:"count" yaml:"count"`
}

// FontKey is the lookup key into a FontRank: the font size rounded to the
// configured precision, plus boldness.
type FontKey struct {
	Size   float64
	IsBold bool
}

// FontRank maps font keys to dense size ranks. Rank 1 is the largest size
// that survived the ceiling filter.
type FontRank map[FontKey]int

// RankedProfile is a FontProfile annotated with its rounded size and rank,
// as listed by the fonts command.
type RankedProfile struct {
	FontProfile `yaml:",inline"`

	RoundedSize float64 `json:"rounded_size" yaml:"rounded_size"`

	// Rank is 0 when the profile was excluded from ranking.
	Rank int `json:"rank" yaml:"rank"`
}
