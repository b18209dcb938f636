// Package config loads and saves the client's settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/jinzhu/copier"
)

const (
	// DefaultBaseDir is the configuration directory under the user's home
	DefaultBaseDir = ".morseclient"
	// DefaultConfigFile is the configuration filename
	DefaultConfigFile = "config.yaml"
)

// Audio backends.
const (
	BackendMiniaudio = "miniaudio"
	BackendPortaudio = "portaudio"
	BackendNone      = "none"
)

// Limits the UI enforces on sidetone settings.
const (
	DefaultFrequency = 700
	MinFrequency     = 300
	MaxFrequency     = 2400

	DefaultSpacing = 100
	MinSpacing     = 25
	MaxSpacing     = 300
)

type Config struct {
	// Port is the serial port to connect to on start (optional)
	Port string `yaml:"port,omitempty"`

	Audio   AudioConfig   `yaml:"audio"`
	Relay   RelayConfig   `yaml:"relay,omitempty"`
	Session SessionConfig `yaml:"session,omitempty"`

	configPath string
}

type AudioConfig struct {
	// Backend is one of miniaudio, portaudio or none
	Backend string `yaml:"backend,omitempty"`

	// Frequency is the sidetone pitch in Hz
	Frequency int `yaml:"frequency,omitempty"`

	// Spacing is the gap between symbols as a percentage of one unit
	Spacing int `yaml:"spacing,omitempty"`
}

type RelayConfig struct {
	// Addr is the listen address of the browser relay, disabled when empty
	Addr string `yaml:"addr,omitempty"`
}

type SessionConfig struct {
	// ExportDir is where session CSV files are written
	ExportDir string `yaml:"export_dir,omitempty"`
}

// Load reads the configuration from customPath, or from the default location
// when customPath is empty. A missing file is created with defaults.
func Load(customPath string) (*Config, error) {
	configPath := customPath
	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(home, DefaultBaseDir, DefaultConfigFile)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	cfg := &Config{configPath: configPath}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.applyDefaults()
			return cfg, cfg.Save()
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.configPath = configPath
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Audio.Backend == "" {
		c.Audio.Backend = BackendMiniaudio
	}
	if c.Audio.Frequency == 0 {
		c.Audio.Frequency = DefaultFrequency
	}
	if c.Audio.Spacing == 0 {
		c.Audio.Spacing = DefaultSpacing
	}
}

func (c *Config) Validate() error {
	switch c.Audio.Backend {
	case BackendMiniaudio, BackendPortaudio, BackendNone:
	default:
		return fmt.Errorf("unknown audio backend %q", c.Audio.Backend)
	}
	if c.Audio.Frequency < MinFrequency || c.Audio.Frequency > MaxFrequency {
		return fmt.Errorf("frequency %d out of range %d-%d", c.Audio.Frequency, MinFrequency, MaxFrequency)
	}
	if c.Audio.Spacing < MinSpacing || c.Audio.Spacing > MaxSpacing {
		return fmt.Errorf("spacing %d out of range %d-%d", c.Audio.Spacing, MinSpacing, MaxSpacing)
	}
	return nil
}

// Overlay copies every non-empty setting of override into c, typically the
// values given as command line flags.
func (c *Config) Overlay(override Config) error {
	opt := copier.Option{IgnoreEmpty: true}

	if override.Port != "" {
		c.Port = override.Port
	}
	if err := copier.CopyWithOption(&c.Audio, &override.Audio, opt); err != nil {
		return fmt.Errorf("failed to overlay audio settings: %w", err)
	}
	if err := copier.CopyWithOption(&c.Relay, &override.Relay, opt); err != nil {
		return fmt.Errorf("failed to overlay relay settings: %w", err)
	}
	if err := copier.CopyWithOption(&c.Session, &override.Session, opt); err != nil {
		return fmt.Errorf("failed to overlay session settings: %w", err)
	}

	return c.Validate()
}

// Save saves the configuration to disk
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Path returns the config file path
func (c *Config) Path() string {
	return c.configPath
}
