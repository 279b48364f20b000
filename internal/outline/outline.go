// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package outline lists the headings of a Markdown document.
package outline

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Heading is one ATX or setext heading in document order.
type Heading struct {
	Level int    `json:"level" yaml:"level"`
	Text  string `json:"text" yaml:"text"`
}

var parser = goldmark.New().Parser()

// Headings parses src as CommonMark and returns its headings.
func Headings(src []byte) []Heading {
	root := parser.Parse(text.NewReader(src))

	var out []Heading
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		var buf bytes.Buffer
		lines := h.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(src))
		}
		out = append(out, Heading{Level: h.Level, Text: string(bytes.TrimSpace(buf.Bytes()))})
		return ast.WalkSkipChildren, nil
	})
	return out
}

// Count returns the number of headings at each level 1-6, indexed by level.
func Count(headings []Heading) [7]int {
	var counts [7]int
	for _, h := range headings {
		if h.Level >= 1 && h.Level <= 6 {
			counts[h.Level]++
		}
	}
	return counts
}
