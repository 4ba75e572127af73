package testbed

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/hedra/engine/core"
)

// Config drives the testbed scenario. All fields have working defaults so
// the demo runs without a file present.
type Config struct {
	Name     string `toml:"name"`
	LogLevel string `toml:"log_level"`

	// Grid size in faces, not vertices.
	Rows int `toml:"rows"`
	Cols int `toml:"cols"`

	// Run the full structural sweep after every stage.
	ValidateEachStage bool `toml:"validate_each_stage"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:              "Hedra Testbed",
		LogLevel:          "info",
		Rows:              8,
		Cols:              8,
		ValidateEachStage: true,
	}
}

// LoadConfig reads a TOML config from path, falling back to the defaults
// when the file does not exist.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		core.LogWarn("config %s not found, using defaults", path)
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if cfg.Rows < 2 || cfg.Cols < 2 {
		return nil, fmt.Errorf("grid must be at least 2x2, got %dx%d", cfg.Rows, cfg.Cols)
	}
	return cfg, nil
}

func (c *Config) logLevel() core.LogLevel {
	switch c.LogLevel {
	case "debug":
		return core.DebugLevel
	case "warn":
		return core.WarnLevel
	case "error":
		return core.ErrorLevel
	default:
		return core.InfoLevel
	}
}
