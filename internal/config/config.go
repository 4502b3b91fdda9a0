package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-storir/dsp/dither"
	"github.com/cwbudde/algo-storir/internal/wavio"
	"github.com/cwbudde/algo-storir/synth"
)

// Config represents the complete storir configuration.
type Config struct {
	Acoustics AcousticsConfig `yaml:"acoustics"`
	Synthesis SynthesisConfig `yaml:"synthesis"`
	Output    OutputConfig    `yaml:"output"`
	Workers   WorkersConfig   `yaml:"workers"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// AcousticsConfig holds the room parameters. Times are in milliseconds.
type AcousticsConfig struct {
	SampleRate  int     `yaml:"sample_rate"`
	RT60        float64 `yaml:"rt60"`
	EDT         float64 `yaml:"edt"`
	ITDG        float64 `yaml:"itdg"`
	ERDuration  float64 `yaml:"er_duration"`
	NumImpulses int     `yaml:"num_impulses"`
}

// SynthesisConfig selects the synthesis recipe.
type SynthesisConfig struct {
	Variant      string        `yaml:"variant"`
	DRR          float64       `yaml:"drr"`      // dB, improved variant only
	FloorDB      float64       `yaml:"floor_db"` // tail cut level
	MaxDuration  time.Duration `yaml:"max_duration"`
	Distribution string        `yaml:"distribution"`
	Seed         uint64        `yaml:"seed"`
}

// OutputConfig describes where and how responses are written.
type OutputConfig struct {
	Folder   string `yaml:"folder"`
	Prefix   string `yaml:"prefix"`
	BitDepth int    `yaml:"bit_depth"`
	Dither   string `yaml:"dither"`
	Manifest bool   `yaml:"manifest"`
}

// WorkersConfig sizes the worker pools. Zero compute workers means one per CPU.
type WorkersConfig struct {
	Compute int `yaml:"compute"`
	IO      int `yaml:"io"`
}

// LoggingConfig contains logging configuration. Output is "stderr",
// "stdout" or a file path; files are rotated.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	Output     string `yaml:"output"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// MetricsConfig enables the Prometheus textfile written after each run.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// Default returns the built-in configuration.
func Default() *Config {
	p := synth.DefaultParams()
	return &Config{
		Acoustics: AcousticsConfig{
			SampleRate:  p.SampleRate,
			RT60:        p.RT60,
			EDT:         p.EDT,
			ITDG:        p.ITDG,
			ERDuration:  p.ERDuration,
			NumImpulses: p.NumImpulses,
		},
		Synthesis: SynthesisConfig{
			Variant:      p.Variant.String(),
			DRR:          p.DRR,
			FloorDB:      -80,
			MaxDuration:  10 * time.Second,
			Distribution: synth.Gaussian.String(),
		},
		Output: OutputConfig{
			Folder:   "rir",
			Prefix:   "rir",
			BitDepth: 16,
			Dither:   dither.DitherNone.String(),
			Manifest: true,
		},
		Workers: WorkersConfig{IO: 2},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     "stderr",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Load reads and parses the configuration file on top of Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	config, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return config, nil
}

// Parse decodes YAML on top of Default and validates the result. Unknown
// keys are rejected.
func Parse(data []byte) (*Config, error) {
	config := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Validate performs validation of every section.
func (c *Config) Validate() error {
	if err := c.Params().Validate(); err != nil {
		return fmt.Errorf("acoustics config: %w", err)
	}

	if err := c.Synthesis.Validate(); err != nil {
		return fmt.Errorf("synthesis config: %w", err)
	}

	if err := c.Output.Validate(); err != nil {
		return fmt.Errorf("output config: %w", err)
	}

	if err := c.Workers.Validate(); err != nil {
		return fmt.Errorf("workers config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates synthesis configuration.
func (s *SynthesisConfig) Validate() error {
	if _, err := synth.ParseVariant(s.Variant); err != nil {
		return err
	}

	if _, err := synth.ParseDistribution(s.Distribution); err != nil {
		return err
	}

	if !(s.FloorDB < 0) {
		return fmt.Errorf("%w: floor_db must be negative, got %g", synth.ErrInvalidParameter, s.FloorDB)
	}

	if s.MaxDuration <= 0 {
		return fmt.Errorf("%w: max_duration must be positive, got %v", synth.ErrInvalidParameter, s.MaxDuration)
	}

	return nil
}

// Validate validates output configuration.
func (o *OutputConfig) Validate() error {
	if o.Folder == "" {
		return fmt.Errorf("folder cannot be empty")
	}

	if o.Prefix == "" || filepath.Base(o.Prefix) != o.Prefix {
		return fmt.Errorf("prefix must be a plain file name, got '%s'", o.Prefix)
	}

	switch o.BitDepth {
	case 16, 24, 32:
	default:
		return fmt.Errorf("bit_depth must be 16, 24 or 32, got %d", o.BitDepth)
	}

	if _, err := dither.ParseDitherType(o.Dither); err != nil {
		return err
	}

	return nil
}

// Validate validates worker pool sizes.
func (w *WorkersConfig) Validate() error {
	if w.Compute < 0 {
		return fmt.Errorf("compute must not be negative, got %d", w.Compute)
	}

	if w.IO < 1 {
		return fmt.Errorf("io must be at least 1, got %d", w.IO)
	}

	return nil
}

// Validate validates logging configuration.
func (l *LoggingConfig) Validate() error {
	if _, err := l.SlogLevel(); err != nil {
		return err
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("format must be 'json' or 'text', got '%s'", l.Format)
	}

	if l.Output == "" {
		return fmt.Errorf("output cannot be empty")
	}

	return nil
}

// SlogLevel parses Level.
func (l *LoggingConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}
	return level, nil
}

// Params returns the synthesis parameters. An unknown variant name is left
// as an out-of-range value so that Validate reports it.
func (c *Config) Params() synth.Params {
	v, err := synth.ParseVariant(c.Synthesis.Variant)
	if err != nil {
		v = synth.Variant(-1)
	}
	return synth.Params{
		SampleRate:  c.Acoustics.SampleRate,
		RT60:        c.Acoustics.RT60,
		EDT:         c.Acoustics.EDT,
		ITDG:        c.Acoustics.ITDG,
		ERDuration:  c.Acoustics.ERDuration,
		NumImpulses: c.Acoustics.NumImpulses,
		Variant:     v,
		DRR:         c.Synthesis.DRR,
	}
}

// SynthOptions returns the synthesizer options of the synthesis section.
func (c *Config) SynthOptions() []synth.Option {
	opts := []synth.Option{
		synth.WithFloorDB(c.Synthesis.FloorDB),
		synth.WithMaxDuration(c.Synthesis.MaxDuration),
	}
	if d, err := synth.ParseDistribution(c.Synthesis.Distribution); err == nil {
		opts = append(opts, synth.WithDistribution(d))
	}
	return opts
}

// WriterOptions returns the WAV writer options of the output section.
func (o *OutputConfig) WriterOptions() ([]wavio.Option, error) {
	dt, err := dither.ParseDitherType(o.Dither)
	if err != nil {
		return nil, err
	}
	return []wavio.Option{
		wavio.WithPrefix(o.Prefix),
		wavio.WithBitDepth(o.BitDepth),
		wavio.WithDither(dt),
	}, nil
}
