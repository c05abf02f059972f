// Package config loads and saves asm10's TOML configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config holds every user-overridable assembler setting. Defaults match
// the bounds fixed by spec section 6.
type Config struct {
	Assembler struct {
		MaxMemoryWords int `toml:"max_memory_words"`
		MaxLineLength  int `toml:"max_line_length"`
		MaxLabelLength int `toml:"max_label_length"`
		ImmediateMin   int `toml:"immediate_min"`
		ImmediateMax   int `toml:"immediate_max"`
	} `toml:"assembler"`

	Output struct {
		Directory       string `toml:"directory"`
		EmitExpanded    bool   `toml:"emit_expanded"`
		KeepOnError     bool   `toml:"keep_on_error"`
	} `toml:"output"`

	Diagnostics struct {
		ColorOutput   bool `toml:"color_output"`
		SourceContext int  `toml:"source_context"`
	} `toml:"diagnostics"`
}

// DefaultConfig returns a Config populated with the spec's fixed bounds.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Assembler.MaxMemoryWords = 256
	cfg.Assembler.MaxLineLength = 80
	cfg.Assembler.MaxLabelLength = 30
	cfg.Assembler.ImmediateMin = -128
	cfg.Assembler.ImmediateMax = 127

	cfg.Output.Directory = "."
	cfg.Output.EmitExpanded = true
	cfg.Output.KeepOnError = false

	cfg.Diagnostics.ColorOutput = true
	cfg.Diagnostics.SourceContext = 2

	return cfg
}

// GetConfigPath returns the platform-specific config file path.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "asm10")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "asm10")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// Load loads configuration from the default config file, falling back to
// defaults if it does not exist.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from the specified file.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to the specified file.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
