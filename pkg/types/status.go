// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ConversionStatus indicates the outcome of converting one source document.
type ConversionStatus string

const (
	ConversionNone    ConversionStatus = "none"
	ConversionDone    ConversionStatus = "converted"
	ConversionSkipped ConversionStatus = "skipped"
	ConversionFailed  ConversionStatus = "failed"
)

// Source is a document queued for conversion.
type Source struct {
	// ID is derived from the file name without extension (e.g. "annual-report").
	ID string `json:"id" yaml:"id"`

	// Path is the local filesystem path to the source file.
	Path string `json:"path" yaml:"path"`
}

// Frontmatter is the YAML header optionally prepended to converted Markdown.
type Frontmatter struct {
	DocumentID  string    `yaml:"document_id"`
	SourcePDF   string    `yaml:"source_pdf"`
	SourceMD5   string    `yaml:"source_md5,omitempty"`
	Headings    int       `yaml:"headings"`
	ConvertedAt time.Time `yaml:"converted_at"`
}
