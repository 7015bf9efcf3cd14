package encoder

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig .
var ErrInvalidConfig = errors.New("invalid encoder config")

// Config stores encode settings. The bitrate is a fixed target, there is no
// adaptive rate control.
type Config struct {
	BitrateBps int    `yaml:"bitrateBps"`
	Preset     string `yaml:"preset"`
	Tune       string `yaml:"tune"`
	GopSize    int    `yaml:"gopSize"`
	FrameRate  int    `yaml:"frameRate"`
}

// DefaultConfig returns the fixed encode policy.
func DefaultConfig() Config {
	return Config{
		BitrateBps: 10_000_000,
		Preset:     "medium",
		Tune:       "zerolatency",
		GopSize:    30,
		FrameRate:  30,
	}
}

// NewConfig parses encode settings from rawYAML and fills defaults.
func NewConfig(rawYAML []byte) (Config, error) {
	var config Config
	if err := yaml.Unmarshal(rawYAML, &config); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	defaults := DefaultConfig()
	if config.BitrateBps == 0 {
		config.BitrateBps = defaults.BitrateBps
	}
	if config.Preset == "" {
		config.Preset = defaults.Preset
	}
	if config.Tune == "" {
		config.Tune = defaults.Tune
	}
	if config.GopSize == 0 {
		config.GopSize = defaults.GopSize
	}
	if config.FrameRate == 0 {
		config.FrameRate = defaults.FrameRate
	}

	if config.BitrateBps < 0 {
		return Config{}, fmt.Errorf("%w: bitrateBps %v", ErrInvalidConfig, config.BitrateBps)
	}
	if config.GopSize < 0 {
		return Config{}, fmt.Errorf("%w: gopSize %v", ErrInvalidConfig, config.GopSize)
	}
	if config.FrameRate < 0 {
		return Config{}, fmt.Errorf("%w: frameRate %v", ErrInvalidConfig, config.FrameRate)
	}

	return config, nil
}
