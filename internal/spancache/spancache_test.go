// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package spancache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/fontdown/pkg/types"
)

func TestSaveLoad(t *testing.T) {
	c := New(t.TempDir())
	doc := types.Document{
		{PageNumber: 1, LineText: "Intro Guide", Spans: []types.Span{
			{Text: "Intro", FontName: "Arial-Bold", FontSize: 24, IsBold: true, BBox: types.BBox{72, 700, 132, 724}, PageNumber: 1},
			{Text: " Guide", FontName: "Arial-Bold", FontSize: 24, IsBold: true, PageNumber: 1},
		}},
	}

	path, err := c.Save("/docs/guide.pdf", "d41d8cd98f00b204e9800998ecf8427e", doc)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(c.Dir(), "guide_d41d8cd98f00b204e9800998ecf8427e.json"), path)

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, doc, got)
}

func TestLoad_SnakeCaseLayout(t *testing.T) {
	// Layout written by the earlier extraction script: spans carry no page.
	raw := `[
    {
        "page_number": 2,
        "block_type": 0,
        "line_text": "Results",
        "line_details": [
            {
                "text": "Results",
                "font_name": "Calibri-Bold",
                "font_size": 15.96,
                "is_bold": true,
                "is_italic": false,
                "color": 2301728,
                "position": [56.7, 80.1, 120.3, 99.8]
            }
        ]
    }
]`
	path := filepath.Join(t.TempDir(), "report_abc.json")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	doc, err := Load(path)

	require.NoError(t, err)
	require.Len(t, doc, 1)
	assert.Equal(t, 2, doc[0].PageNumber)
	require.Len(t, doc[0].Spans, 1)
	s := doc[0].Spans[0]
	assert.Equal(t, "Calibri-Bold", s.FontName)
	assert.Equal(t, 15.96, s.FontSize)
	assert.True(t, s.IsBold)
	assert.Equal(t, 2301728, s.Color)
	assert.Equal(t, types.BBox{56.7, 80.1, 120.3, 99.8}, s.BBox)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	_, err = Load(bad)
	assert.ErrorContains(t, err, "decoding span cache")
}
