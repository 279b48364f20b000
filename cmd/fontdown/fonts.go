// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/fontdown/internal/extract"
	"github.com/pdiddy/fontdown/internal/fontrank"
	"github.com/pdiddy/fontdown/internal/spancache"
	"github.com/pdiddy/fontdown/pkg/types"
)

var fontsCmd = &cobra.Command{
	Use:   "fonts <pdf|spans.json>",
	Short: "Show the font profiles and ranks of a document",
	Long: `Fonts lists every distinct (font, size, bold) profile of a document with
its span count, rounded size, dense rank and the heading level that rank maps
to under the current configuration. Rank 0 marks sizes above the ranking
ceiling.`,
	Args: cobra.ExactArgs(1),
	RunE: runFonts,
}

func init() {
	fontsCmd.Flags().String("format", "table", "output format: table, yaml, or json")

	rootCmd.AddCommand(fontsCmd)
}

// fontRow is one line of fonts output.
type fontRow struct {
	types.RankedProfile `yaml:",inline"`
	Level               int `json:"level" yaml:"level"`
}

func runFonts(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	doc, err := loadDocument(args[0])
	if err != nil {
		return err
	}

	profiles := fontrank.CollectProfiles(doc)
	ranks := fontrank.AssignRanks(profiles, cfg.Rank)
	table := fontrank.Table(profiles, ranks, cfg.Rank.Precision)

	rows := make([]fontRow, len(table))
	for i, p := range table {
		rows[i] = fontRow{RankedProfile: p, Level: cfg.Render.HeadingBands.Level(p.Rank)}
	}

	switch format {
	case "table", "":
		return printFontTable(rows)
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(rows)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	default:
		return fmt.Errorf("unsupported format %q: use table, yaml, or json", format)
	}
}

func printFontTable(rows []fontRow) error {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tLEVEL\tSIZE\tROUNDED\tBOLD\tSPANS\tFONT")
	for _, r := range rows {
		level := "-"
		if r.Level > 0 {
			level = fmt.Sprintf("h%d", r.Level)
		}
		fmt.Fprintf(tw, "%d\t%s\t%g\t%g\t%t\t%d\t%s\n",
			r.Rank, level, r.FontSize, r.RoundedSize, r.IsBold, r.Count, r.FontName)
	}
	return tw.Flush()
}

// loadDocument reads a span cache file, or extracts a PDF.
func loadDocument(path string) (types.Document, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return spancache.Load(path)
	}
	return extract.NewPDFExtractor(logger).Extract(path)
}
