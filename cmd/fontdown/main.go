// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the fontdown CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/fontdown/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is built in PersistentPreRunE from the --verbose flag.
var logger = zap.NewNop()

// rootCmd is the base command for the fontdown CLI.
var rootCmd = &cobra.Command{
	Use:   "fontdown",
	Short: "Recover a Markdown heading outline from PDF font sizes",
	Long: `fontdown extracts styled text spans from PDF files, ranks the distinct
font sizes from largest to smallest, and renders spans whose rank falls in a
heading band as Markdown headings. Body text is not emitted; the output is a
heading skeleton of the document.

Subcommands: convert PDFs, render cached span files, inspect font ranks,
and list the conversion ledger.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		l, err := newLogger(verbose)
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./fontdown.yaml or ~/.config/fontdown/fontdown.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log every dropped span and per-document statistics")
	rootCmd.PersistentFlags().String("state-dir", types.DefaultConversionConfig().StateDir, "directory for the ledger database and span cache")

	_ = viper.BindPFlag("conversion.state_dir", rootCmd.PersistentFlags().Lookup("state-dir"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("fontdown")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "fontdown"))
		}
	}

	setDefaults(types.DefaultPipelineConfig())

	viper.SetEnvPrefix("FONTDOWN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaults registers every configuration key so that environment
// variables are honoured by Unmarshal even without a config file.
func setDefaults(cfg types.PipelineConfig) {
	viper.SetDefault("rank.precision", cfg.Rank.Precision)
	viper.SetDefault("rank.max_font_size", cfg.Rank.MaxFontSize)

	viper.SetDefault("render.precision", cfg.Render.Precision)
	viper.SetDefault("render.min_font_size", cfg.Render.MinFontSize)
	viper.SetDefault("render.heading_bands.h1", cfg.Render.HeadingBands.H1)
	viper.SetDefault("render.heading_bands.h2", cfg.Render.HeadingBands.H2)
	viper.SetDefault("render.heading_bands.h3", cfg.Render.HeadingBands.H3)
	viper.SetDefault("render.heading_bands.h4", cfg.Render.HeadingBands.H4)

	viper.SetDefault("conversion.input_dir", cfg.Conversion.InputDir)
	viper.SetDefault("conversion.output_dir", cfg.Conversion.OutputDir)
	viper.SetDefault("conversion.state_dir", cfg.Conversion.StateDir)
	viper.SetDefault("conversion.workers", cfg.Conversion.Workers)
	viper.SetDefault("conversion.force", cfg.Conversion.Force)
	viper.SetDefault("conversion.frontmatter", cfg.Conversion.Frontmatter)
	viper.SetDefault("conversion.cache_spans", cfg.Conversion.CacheSpans)
}

// loadConfig resolves the pipeline configuration from defaults, the config
// file, FONTDOWN_* environment variables and bound flags. Every key has a
// viper default, so decoding starts from the zero value.
func loadConfig() (types.PipelineConfig, error) {
	var cfg types.PipelineConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}
	if err := cfg.Rank.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid rank configuration: %w", err)
	}
	if err := cfg.Conversion.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid conversion configuration: %w", err)
	}
	return cfg, nil
}

// newLogger writes JSON at info level to stderr, or human-readable output
// at debug level when verbose.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return cfg.Build()
	}
	cfg := zap.NewProductionConfig()
	cfg.Sampling = nil
	return cfg.Build()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
