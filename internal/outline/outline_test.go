// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package outline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeadings(t *testing.T) {
	src := []byte("\n\n# Annual Report 2026\n\n\n\n## Summary\n\nplain text\n\n#### Notes on method\n\n## Findings")

	got := Headings(src)

	assert.Equal(t, []Heading{
		{Level: 1, Text: "Annual Report 2026"},
		{Level: 2, Text: "Summary"},
		{Level: 4, Text: "Notes on method"},
		{Level: 2, Text: "Findings"},
	}, got)

	counts := Count(got)
	assert.Equal(t, 1, counts[1])
	assert.Equal(t, 2, counts[2])
	assert.Equal(t, 0, counts[3])
	assert.Equal(t, 1, counts[4])
}

func TestHeadings_Empty(t *testing.T) {
	assert.Empty(t, Headings(nil))
	assert.Empty(t, Headings([]byte("just a paragraph")))
}
