// Package config provides configuration loading and management for sheetstamp.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"sheetstamp/pkg/forming"
	"sheetstamp/pkg/imageio"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Forming holds the physical tool description
	Forming struct {
		// PunchOutDepth is how far the sheet is pushed through, in mm
		PunchOutDepth float64 `yaml:"punchOutDepth"`

		// SheetThickness is the thickness of the stamped material in mm
		SheetThickness float64 `yaml:"sheetThickness"`

		// FadeDistance is the width of the punch slope in mm
		FadeDistance float64 `yaml:"fadeDistance"`

		// PixelsPerMM is the raster resolution
		PixelsPerMM float64 `yaml:"pixelsPerMM"`
	} `yaml:"forming"`

	// Processing parameters
	Processing struct {
		// NumCores specifies how many rows are computed in parallel
		NumCores int `yaml:"numCores"`

		// Threshold binarizes the input: samples below it become marks.
		// Zero keeps the input as is.
		Threshold uint16 `yaml:"threshold"`
	} `yaml:"processing"`

	// Output parameters
	Output struct {
		// Dir is where the forms are written; empty means next to the input
		Dir string `yaml:"dir"`

		// Format is png or tiff
		Format string `yaml:"format"`

		// MirrorNegative writes the negative form mirrored left to right
		MirrorNegative bool `yaml:"mirrorNegative"`

		// InvertPositive writes MaxSample minus each positive form sample.
		// Un-inverted, MaxSample is the rest plane and 0 the deepest point
		// of the die.
		InvertPositive bool `yaml:"invertPositive"`

		// ProfileRow selects the row plotted as a cross-section; negative disables it
		ProfileRow int `yaml:"profileRow"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	p := forming.DefaultParams()
	cfg.Forming.PunchOutDepth = p.PunchOutDepth
	cfg.Forming.SheetThickness = p.SheetThickness
	cfg.Forming.FadeDistance = p.FadeDistance
	cfg.Forming.PixelsPerMM = p.PixelsPerMM

	cfg.Processing.NumCores = runtime.NumCPU()
	cfg.Processing.Threshold = 0

	cfg.Output.Format = string(imageio.PNG)
	cfg.Output.MirrorNegative = true
	cfg.Output.InvertPositive = false
	cfg.Output.ProfileRow = -1
	cfg.Output.Verbose = false

	return cfg
}

// Params returns the forming parameters of the configuration.
func (c *Config) Params() forming.Params {
	return forming.Params{
		PunchOutDepth:  c.Forming.PunchOutDepth,
		SheetThickness: c.Forming.SheetThickness,
		FadeDistance:   c.Forming.FadeDistance,
		PixelsPerMM:    c.Forming.PixelsPerMM,
	}
}

// OutputFormat returns the parsed output format.
func (c *Config) OutputFormat() (imageio.Format, error) {
	return imageio.ParseFormat(c.Output.Format)
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Params().Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Processing.NumCores < 1 {
		errs = append(errs, fmt.Errorf("numCores must be at least 1, got %d", c.Processing.NumCores))
	}
	if _, err := c.OutputFormat(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// LoadConfig reads a YAML configuration on top of the defaults and validates
// the result. A missing file yields the defaults.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return cfg, nil
	case err != nil:
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Keys missing from the file keep their defaults
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file %s: %w", configPath, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}
	return cfg, nil
}

// SaveConfig writes cfg as YAML, creating parent directories as needed.
// Invalid configurations are refused so a saved file always loads again.
func SaveConfig(cfg *Config, configPath string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}
	return os.WriteFile(configPath, buf.Bytes(), 0644)
}

// CreateDefaultConfigFile writes the default configuration to configPath.
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}
