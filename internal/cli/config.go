package cli

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/ironsheep/image-watermark/internal/errs"
	"github.com/ironsheep/image-watermark/internal/imaging"
	"github.com/ironsheep/image-watermark/internal/watermark"
)

const (
	defaultOutputDir  = "output"
	defaultFormat     = "png"
	defaultQuality    = 95
	defaultBackground = "#ffffff"
)

// fileConfig is the layout of a --config TOML file. Every key is optional.
//
//	[watermark]
//	proportion   = 0.15
//	opacity      = 0.4
//	scaling      = "AREA"
//	placement    = "TILE"
//	position     = "UPPER_LEFT"   # or "10,20"
//	margin       = 20
//	tile_padding = 50
//
//	[output]
//	dir        = "output"
//	format     = "jpg"
//	quality    = 90
//	background = "#000000"
//	workers    = 4
type fileConfig struct {
	Watermark watermark.Config `toml:"watermark"`
	Output    outputConfig     `toml:"output"`
}

// outputConfig holds the settings that concern files rather than pixels.
type outputConfig struct {
	Dir        string `toml:"dir"`
	Format     string `toml:"format"`
	Quality    int    `toml:"quality"`
	Background string `toml:"background"`
	Workers    int    `toml:"workers"`
}

func defaultFileConfig() fileConfig {
	return fileConfig{
		Watermark: watermark.DefaultConfig(),
		Output: outputConfig{
			Dir:        defaultOutputDir,
			Format:     defaultFormat,
			Quality:    defaultQuality,
			Background: defaultBackground,
		},
	}
}

// loadConfigFile overlays the TOML file at path onto cfg. Keys missing from
// the file keep their current values; unknown keys are an error so typos do
// not pass silently.
func loadConfigFile(path string, cfg *fileConfig) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return errs.Wrap(errs.CodeInvalidConfig, err, "failed to read config file").WithPath(path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errs.New(errs.CodeInvalidConfig, "unknown config keys: %s", strings.Join(keys, ", ")).WithPath(path)
	}
	return nil
}

// coreFlags are the flags that shape the composite itself.
type coreFlags struct {
	configPath  string
	mode        string
	position    string
	proportion  float64
	margin      int
	tilePadding int
	rescaling   string
	opacity     float64
}

// outputFlags are the flags that shape the written files.
type outputFlags struct {
	dir        string
	format     string
	quality    int
	background string
	workers    int
}

func (f *coreFlags) register(cmd *cobra.Command) {
	def := watermark.DefaultConfig()
	fs := cmd.Flags()
	fs.StringVar(&f.configPath, "config", "", "TOML file with default settings (flags override it)")
	fs.StringVar(&f.mode, "mode", string(def.Placement), "placement mode: SINGLE or TILE")
	fs.StringVar(&f.position, "position", def.Position.String(),
		"SINGLE mode position: UPPER_LEFT, UPPER_RIGHT, LOWER_LEFT, LOWER_RIGHT, MIDDLE, or x,y")
	fs.Float64Var(&f.proportion, "proportion", def.Proportion, "fraction of the image the watermark occupies (0 to 1]")
	fs.IntVar(&f.margin, "margin", def.Margin, "margin in pixels from the anchored edges (SINGLE mode)")
	fs.IntVar(&f.tilePadding, "tile-padding", def.TilePadding, "padding in pixels between tiles (TILE mode)")
	fs.StringVar(&f.rescaling, "rescaling-type", string(def.Scaling), "watermark rescaling: LINEAR or AREA")
	fs.Float64Var(&f.opacity, "opacity", def.Opacity, "watermark opacity [0 to 1]")
}

func (f *outputFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.dir, "output", "o", defaultOutputDir, "directory to save the watermarked images")
	fs.StringVar(&f.format, "format", defaultFormat, "output format: png or jpg")
	fs.IntVar(&f.quality, "quality", defaultQuality, "JPEG quality 1-100")
	fs.StringVar(&f.background, "background", defaultBackground, "colour transparent areas are flattened onto for JPEG output")
	fs.IntVar(&f.workers, "workers", 0, "images processed in parallel (0 = number of CPUs)")
}

// settings is the fully resolved configuration of one invocation.
type settings struct {
	core      watermark.Config
	outputDir string
	format    imaging.Format
	encode    imaging.EncodeOptions
	workers   int

	// warnings are non-fatal notes about the configuration, such as an
	// unrecognised position name.
	warnings []string
}

// resolveSettings layers defaults, the config file and explicitly set flags,
// then validates the result. out may be nil for commands that write nothing.
func resolveSettings(cmd *cobra.Command, core *coreFlags, out *outputFlags) (*settings, error) {
	cfg := defaultFileConfig()
	if core.configPath != "" {
		if err := loadConfigFile(core.configPath, &cfg); err != nil {
			return nil, err
		}
	}

	var warnings []string
	changed := cmd.Flags().Changed

	if changed("mode") {
		m, err := watermark.ParsePlacementMode(core.mode)
		if err != nil {
			return nil, err
		}
		cfg.Watermark.Placement = m
	}
	if changed("rescaling-type") {
		m, err := watermark.ParseScalingMode(core.rescaling)
		if err != nil {
			return nil, err
		}
		cfg.Watermark.Scaling = m
	}
	if changed("position") {
		pos, known, err := watermark.ParsePosition(core.position)
		if err != nil {
			return nil, err
		}
		if !known {
			warnings = append(warnings, fmt.Sprintf("unknown position %q, using %s", core.position, pos))
		}
		cfg.Watermark.Position = pos
	}
	if changed("proportion") {
		cfg.Watermark.Proportion = core.proportion
	}
	if changed("opacity") {
		cfg.Watermark.Opacity = core.opacity
	}
	if changed("margin") {
		cfg.Watermark.Margin = core.margin
	}
	if changed("tile-padding") {
		cfg.Watermark.TilePadding = core.tilePadding
	}

	if err := cfg.Watermark.Validate(); err != nil {
		return nil, err
	}

	s := &settings{core: cfg.Watermark, warnings: warnings}
	if out == nil {
		return s, nil
	}

	if changed("output") {
		cfg.Output.Dir = out.dir
	}
	if changed("format") {
		cfg.Output.Format = out.format
	}
	if changed("quality") {
		cfg.Output.Quality = out.quality
	}
	if changed("background") {
		cfg.Output.Background = out.background
	}
	if changed("workers") {
		cfg.Output.Workers = out.workers
	}

	format, err := imaging.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, err
	}
	if cfg.Output.Quality < 1 || cfg.Output.Quality > 100 {
		return nil, errs.New(errs.CodeInvalidConfig, "quality must be in [1, 100], got %d", cfg.Output.Quality)
	}
	bg, err := imaging.ParseBackground(cfg.Output.Background)
	if err != nil {
		return nil, err
	}
	if cfg.Output.Workers < 0 {
		return nil, errs.New(errs.CodeInvalidConfig, "workers must be non-negative, got %d", cfg.Output.Workers)
	}
	if cfg.Output.Dir == "" {
		return nil, errs.New(errs.CodeInvalidConfig, "output directory must not be empty")
	}

	s.outputDir = cfg.Output.Dir
	s.format = format
	s.encode = imaging.EncodeOptions{JPEGQuality: cfg.Output.Quality, Background: bg}
	s.workers = cfg.Output.Workers
	return s, nil
}
