// Package config resolves the service configuration from built-in defaults,
// an optional YAML file, and the process environment, in that order.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DefaultPort is the port the service listens on when nothing overrides it.
const DefaultPort = 8000

// Config holds the runtime settings for the service.
type Config struct {
	// Port is the TCP port the HTTP server binds to.
	Port int `yaml:"port"`
	// ScratchDir is the root under which per-request scratch directories
	// are created.
	ScratchDir string `yaml:"scratch_dir"`
	// SkipToolCheck disables the startup probe for yt-dlp and ffmpeg.
	SkipToolCheck bool `yaml:"skip_tool_check"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:       DefaultPort,
		ScratchDir: os.TempDir(),
	}
}

// Load resolves the effective configuration. The YAML file at path is applied
// over the defaults when path is non-empty, then the PORT, SCRATCH_DIR and
// SKIP_TOOL_CHECK environment variables are applied over both.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid PORT value %q: %w", v, err)
		}
		cfg.Port = port
	}
	if v := os.Getenv("SCRATCH_DIR"); v != "" {
		cfg.ScratchDir = v
	}
	if v := os.Getenv("SKIP_TOOL_CHECK"); v != "" {
		skip, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid SKIP_TOOL_CHECK value %q: %w", v, err)
		}
		cfg.SkipToolCheck = skip
	}

	if cfg.ScratchDir == "" {
		cfg.ScratchDir = os.TempDir()
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate checks that the resolved settings can actually serve. Callers that
// layer further overrides on top of Load's result run it again afterwards.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.ScratchDir == "" {
		return fmt.Errorf("scratch directory not set")
	}
	return nil
}

// Addr returns the listen address for the configured port.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
