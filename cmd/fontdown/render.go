// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render <spans.json...>",
	Short: "Render cached span files to Markdown",
	Long: `Render reads span files produced by convert (or any producer using the
same page/line/span JSON layout), ranks their font sizes and writes the
Markdown next to each input with the .json extension replaced by .md.

Use it to try different heading bands or minimum sizes without
re-extracting the PDFs.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	// Rendering cached spans never writes to the cache.
	cfg.Conversion.CacheSpans = false

	converter, err := newSpanConverter(cfg)
	if err != nil {
		return err
	}

	var failed int
	for _, path := range args {
		mdPath, err := converter.RenderCached(path)
		if err != nil {
			fmt.Printf("failed:    %s (%v)\n", path, err)
			failed++
			continue
		}
		fmt.Printf("rendered:  %s -> %s\n", path, mdPath)
	}
	if failed > 0 {
		return fmt.Errorf("%d file(s) failed rendering", failed)
	}
	return nil
}
