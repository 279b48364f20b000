package types

// RankConfig holds settings for font rank assignment.
type RankConfig struct {
	// Precision is the number of decimal digits font sizes are rounded to
	// before ranking and lookup (default 2).
	Precision int `json:"precision" yaml:"precision" mapstructure:"precision"`

	// MaxFontSize excludes larger (decorative) sizes from ranking
	// (default 28pt).
	MaxFontSize float64 `json:"max_font_size" yaml:"max_font_size" mapstructure:"max_font_size"`
}

// DefaultRankConfig returns the ranking defaults.
func DefaultRankConfig() RankConfig {
	return RankConfig{
		Precision:   2,
		MaxFontSize: 28,
	}
}

// HeadingBands assigns sets of ranks to Markdown heading levels 1 through 4.
// A rank listed in no band never becomes a heading.
type HeadingBands struct {
	H1 []int `json:"h1" yaml:"h1" mapstructure:"h1"`
	H2 []int `json:"h2" yaml:"h2" mapstructure:"h2"`
	H3 []int `json:"h3" yaml:"h3" mapstructure:"h3"`
	H4 []int `json:"h4" yaml:"h4" mapstructure:"h4"`
}

// DefaultHeadingBands returns h1=[1,2,3], h2=[4,5], h3=[6,7,8], h4=[9,10].
func DefaultHeadingBands() HeadingBands {
	return HeadingBands{
		H1: []int{1, 2, 3},
		H2: []int{4, 5},
		H3: []int{6, 7, 8},
		H4: []int{9, 10},
	}
}

// Levels returns the bands indexed by heading level minus one.
func (b HeadingBands) Levels() [4][]int {
	return [4][]int{b.H1, b.H2, b.H3, b.H4}
}

// Level returns the heading level (1-4) whose band contains rank, checking
// h1 first. It returns 0 when no band contains rank.
func (b HeadingBands) Level(rank int) int {
	for i, band := range b.Levels() {
		for _, r := range band {
			if r == rank {
				return i + 1
			}
		}
	}
	return 0
}

// RenderConfig holds settings for Markdown rendering.
type RenderConfig struct {
	// Precision must match RankConfig.Precision so lookups hit the same keys.
	Precision int `json:"precision" yaml:"precision" mapstructure:"precision"`

	// MinFontSize drops spans whose raw size is below it, even if ranked
	// (default 9pt).
	MinFontSize float64 `json:"min_font_size" yaml:"min_font_size" mapstructure:"min_font_size"`

	HeadingBands HeadingBands `json:"heading_bands" yaml:"heading_bands" mapstructure:"heading_bands"`
}

// DefaultRenderConfig returns the rendering defaults.
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		Precision:    2,
		MinFontSize:  9,
		HeadingBands: DefaultHeadingBands(),
	}
}

// ConversionConfig holds settings for the conversion stage.
type ConversionConfig struct {
	// InputDir is scanned for *.pdf when convert is given no arguments.
	InputDir string `json:"input_dir" yaml:"input_dir" mapstructure:"input_dir"`

	// OutputDir receives one <name>.md per converted document. When empty,
	// Markdown is written next to the source PDF.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// StateDir holds the ledger database and the span cache.
	StateDir string `json:"state_dir" yaml:"state_dir" mapstructure:"state_dir"`

	// Workers bounds the number of documents converted concurrently (default 1).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`

	// Force reconverts documents already recorded in the ledger.
	Force bool `json:"force" yaml:"force" mapstructure:"force"`

	// Frontmatter prepends a YAML frontmatter block to each Markdown file.
	Frontmatter bool `json:"frontmatter" yaml:"frontmatter" mapstructure:"frontmatter"`

	// CacheSpans writes the extracted spans as JSON under StateDir.
	CacheSpans bool `json:"cache_spans" yaml:"cache_spans" mapstructure:"cache_spans"`
}

// DefaultConversionConfig returns the conversion defaults.
func DefaultConversionConfig() ConversionConfig {
	return ConversionConfig{
		InputDir:   "docs",
		StateDir:   "state",
		Workers:    1,
		CacheSpans: true,
	}
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Rank       RankConfig       `json:"rank" yaml:"rank" mapstructure:"rank"`
	Render     RenderConfig     `json:"render" yaml:"render" mapstructure:"render"`
	Conversion ConversionConfig `json:"conversion" yaml:"conversion" mapstructure:"conversion"`
}

// DefaultPipelineConfig returns the defaults for every stage.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Rank:       DefaultRankConfig(),
		Render:     DefaultRenderConfig(),
		Conversion: DefaultConversionConfig(),
	}
}
