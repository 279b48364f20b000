// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package spancache persists extracted documents as JSON so a document can
// be re-rendered without parsing the source again.
//
// Files live at <state>/processed_pdf_to_jsons/<name>_<md5>.json and hold a
// JSON array of lines, each with its line_details spans.
package spancache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/fontdown/pkg/types"
)

const cacheDir = "processed_pdf_to_jsons"

// Cache reads and writes span files under a state directory.
type Cache struct {
	dir string
}

// New returns a cache rooted at stateDir.
func New(stateDir string) *Cache {
	return &Cache{dir: filepath.Join(stateDir, cacheDir)}
}

// Dir returns the directory holding the cache files.
func (c *Cache) Dir() string { return c.dir }

// PathFor returns the cache file path for a source file and its hash.
func (c *Cache) PathFor(sourcePath, hash string) string {
	base := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	return filepath.Join(c.dir, base+"_"+hash+".json")
}

// Save writes doc for sourcePath and returns the file written.
func (c *Cache) Save(sourcePath, hash string, doc types.Document) (string, error) {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating span cache directory: %w", err)
	}
	if doc == nil {
		doc = types.Document{}
	}
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return "", fmt.Errorf("encoding spans: %w", err)
	}
	path := c.PathFor(sourcePath, hash)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing span cache %s: %w", path, err)
	}
	return path, nil
}

// Load reads a span file written by Save, or by any producer using the same
// layout.
func Load(path string) (types.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading span cache %s: %w", path, err)
	}
	var doc types.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding span cache %s: %w", path, err)
	}
	return doc, nil
}
