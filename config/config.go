// Package config handles nanoedge configuration loading.
package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/Amansingh-afk/nanoedge/hdc"
)

// Config is the root configuration structure.
type Config struct {
	Encoder EncoderConfig `yaml:"encoder"`
	Memory  MemoryConfig  `yaml:"memory"`
	Store   StoreConfig   `yaml:"store"`
	Log     LogConfig     `yaml:"log"`
}

// EncoderConfig holds thermometer and channel settings.
type EncoderConfig struct {
	MaxValue uint16   `yaml:"max_value"`
	Seed     uint64   `yaml:"seed"`     // basis namespace; different seeds give incompatible vectors
	Channels []string `yaml:"channels"` // one basis vector per channel name

	// Minimum pairwise Hamming distance between basis vectors before a
	// warning is logged. 0 disables the check.
	MinBasisDistance int `yaml:"min_basis_distance"`
}

// MemoryConfig holds pattern memory settings.
type MemoryConfig struct {
	Threshold int `yaml:"threshold"`
	Capacity  int `yaml:"capacity"`
}

// StoreConfig holds persistence settings.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // logrus level name
	Format string `yaml:"format"` // "text" or "json"
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Encoder: EncoderConfig{
			MaxValue:         hdc.ADCMax,
			Channels:         []string{"adc0"},
			MinBasisDistance: 32,
		},
		Memory: MemoryConfig{
			Threshold: 96,
			Capacity:  16,
		},
		Store: StoreConfig{
			Path: "nanoedge.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Encoder.MaxValue == 0:
		return errors.New("encoder.max_value must be positive")
	case len(c.Encoder.Channels) == 0:
		return errors.New("encoder.channels must name at least one channel")
	case c.Encoder.MinBasisDistance < 0 || c.Encoder.MinBasisDistance > hdc.Dims:
		return errors.Errorf("encoder.min_basis_distance must be in [0, %d]", hdc.Dims)
	case c.Memory.Threshold <= 0 || c.Memory.Threshold > hdc.Dims:
		return errors.Errorf("memory.threshold must be in (0, %d]", hdc.Dims)
	case c.Memory.Capacity <= 0:
		return errors.New("memory.capacity must be positive")
	case c.Log.Format != "text" && c.Log.Format != "json":
		return errors.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}

	seen := make(map[string]struct{}, len(c.Encoder.Channels))
	for _, ch := range c.Encoder.Channels {
		if ch == "" {
			return errors.New("encoder.channels must not contain empty names")
		}
		if _, dup := seen[ch]; dup {
			return errors.Errorf("encoder.channels: duplicate channel %q", ch)
		}
		seen[ch] = struct{}{}
	}
	return nil
}

// Load loads configuration from a file. Missing fields keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config")
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", path)
	}

	return cfg, nil
}

// LoadOrDefault loads config from path, or returns default if not found.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}

	return Load(path)
}

// Save saves configuration to a file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}
	return nil
}

// InitConfig creates a default config file if it doesn't exist.
func InitConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil // Already exists
	}

	return Default().Save(path)
}
