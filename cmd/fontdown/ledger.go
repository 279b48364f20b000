// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/fontdown/internal/ledger"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "List documents recorded in the conversion ledger",
	Long: `Ledger prints every document recorded in <state-dir>/fontdown.db, most
recently processed first, with its content hash and heading count.
Use --hash to look up a single document.`,
	RunE: runLedger,
}

func init() {
	ledgerCmd.Flags().Bool("json", false, "output entries as JSON")
	ledgerCmd.Flags().String("hash", "", "show only the document with this MD5 hash")

	rootCmd.AddCommand(ledgerCmd)
}

func runLedger(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	led, err := ledger.Open(cfg.Conversion.StateDir)
	if err != nil {
		return err
	}
	defer led.Close()

	var entries []ledger.Entry
	if hash, _ := cmd.Flags().GetString("hash"); hash != "" {
		e, err := led.Get(context.Background(), hash)
		if errors.Is(err, ledger.ErrNotFound) {
			return fmt.Errorf("no document recorded with hash %s", hash)
		}
		if err != nil {
			return err
		}
		entries = append(entries, e)
	} else {
		entries, err = led.List(context.Background())
		if err != nil {
			return err
		}
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("No documents recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-32s  %-8s  %-20s  %s\n", "Hash", "Headings", "Processed", "Path")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))
	for _, e := range entries {
		fmt.Fprintf(os.Stdout, "%-32s  %-8d  %-20s  %s\n",
			e.Hash, e.Headings, e.ProcessedAt.Local().Format("2006-01-02 15:04:05"), e.Path)
	}
	return nil
}
