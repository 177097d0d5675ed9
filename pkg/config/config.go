// Package config loads tool configuration: defaults, then
// ~/.fcman/config.yaml (validated against the embedded schema), then
// FCMAN_* environment variables, then an optional project-level
// .fcman.toml next to the working directory.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/fulmenhq/fcman/pkg/safeio"
)

// Config holds all configuration for fcman
type Config struct {
	// ToleranceSeconds is the mtime comparison window for drift checks.
	ToleranceSeconds int64 `mapstructure:"tolerance_seconds" toml:"tolerance_seconds"`

	// ChecksumBufferMiB bounds memory during content hashing.
	ChecksumBufferMiB int `mapstructure:"checksum_buffer_mib" toml:"checksum_buffer_mib"`

	// Backups is the number of rotated manifest backups kept (0-9).
	Backups int `mapstructure:"backups" toml:"backups"`

	// ManifestName is the manifest filename searched for.
	ManifestName string `mapstructure:"manifest_name" toml:"manifest_name"`

	// ExportDir overrides where export/backup files are written.
	ExportDir string `mapstructure:"export_dir" toml:"export_dir"`
}

var defaultConfig = Config{
	ToleranceSeconds:  2,
	ChecksumBufferMiB: 4,
	Backups:           5,
	ManifestName:      "fcman.xml",
}

// Default returns the built-in configuration.
func Default() Config {
	return defaultConfig
}

// Load resolves the effective configuration for the given working
// directory.
func Load(workDir string) (Config, error) {
	cfg := defaultConfig

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if homeDir, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(homeDir, ".fcman"))
	}
	v.SetEnvPrefix("FCMAN")
	v.AutomaticEnv()

	v.SetDefault("tolerance_seconds", cfg.ToleranceSeconds)
	v.SetDefault("checksum_buffer_mib", cfg.ChecksumBufferMiB)
	v.SetDefault("backups", cfg.Backups)
	v.SetDefault("manifest_name", cfg.ManifestName)
	v.SetDefault("export_dir", cfg.ExportDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
	} else if file := v.ConfigFileUsed(); file != "" {
		data, err := os.ReadFile(file) // #nosec G304 -- path resolved by viper from known locations
		if err == nil {
			if err := ValidateConfig(data); err != nil {
				return cfg, fmt.Errorf("config %s: %w", file, err)
			}
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}

	if err := applyProjectOverride(&cfg, workDir); err != nil {
		return cfg, err
	}

	if err := validateValues(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyProjectOverride merges .fcman.toml from the working directory.
func applyProjectOverride(cfg *Config, workDir string) error {
	path := filepath.Join(workDir, ".fcman.toml")
	data, err := os.ReadFile(path) // #nosec G304 -- fixed name under the working directory
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func validateValues(cfg Config) error {
	if cfg.ToleranceSeconds < 0 {
		return errors.New("tolerance_seconds must not be negative")
	}
	if cfg.ChecksumBufferMiB < 1 {
		return errors.New("checksum_buffer_mib must be at least 1")
	}
	if cfg.Backups < 0 || cfg.Backups > 9 {
		return errors.New("backups must be between 0 and 9")
	}
	if cfg.ManifestName == "" {
		return errors.New("manifest_name must not be empty")
	}
	// Config files are often shared; a manifest name that walks out of
	// the tree is never legitimate there.
	if _, err := safeio.CleanUserPath(cfg.ManifestName); err != nil {
		return fmt.Errorf("manifest_name: %w", err)
	}
	return nil
}

// ChecksumBufferBytes returns the hashing buffer size in bytes.
func (c Config) ChecksumBufferBytes() int {
	return c.ChecksumBufferMiB * 1024 * 1024
}
