// Package config loads and persists manifold settings. Precedence follows
// the usual hierarchy: built-in defaults, then the settings file, then
// MANIFOLD_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

// Config holds all configuration for manifold
type Config struct {
	Forge    ForgeConfig    `mapstructure:"forge" toml:"forge"`
	Manifest ManifestConfig `mapstructure:"manifest" toml:"manifest"`
	Download DownloadConfig `mapstructure:"download" toml:"download"`
}

// ForgeConfig identifies the manifest repository pull requests target.
type ForgeConfig struct {
	Owner         string `mapstructure:"owner" toml:"owner"`
	Repo          string `mapstructure:"repo" toml:"repo"`
	DefaultBranch string `mapstructure:"default_branch" toml:"default_branch"`
	SubmitViaFork bool   `mapstructure:"submit_via_fork" toml:"submit_via_fork"`
}

// ManifestConfig holds serialization options.
type ManifestConfig struct {
	Format string `mapstructure:"format" toml:"format"` // "yaml" or "json"
	Root   string `mapstructure:"root" toml:"root"`     // repository-relative manifest root
}

// DownloadConfig bounds installer downloads.
type DownloadConfig struct {
	MaxSizeMB      int `mapstructure:"max_size_mb" toml:"max_size_mb"`
	TimeoutSeconds int `mapstructure:"timeout_seconds" toml:"timeout_seconds"`
}

var defaultConfig = Config{
	Forge: ForgeConfig{
		Owner:         "microsoft",
		Repo:          "winget-pkgs",
		DefaultBranch: "master",
		SubmitViaFork: true,
	},
	Manifest: ManifestConfig{
		Format: "yaml",
		Root:   "manifests",
	},
	Download: DownloadConfig{
		MaxSizeMB:      2048,
		TimeoutSeconds: 300,
	},
}

// Default returns a copy of the built-in defaults.
func Default() Config {
	return defaultConfig
}

// Dir returns the manifold settings directory.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config directory: %w", err)
	}
	return filepath.Join(base, "manifold"), nil
}

// FilePath returns the settings file path.
func FilePath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads settings through viper: defaults, then the settings file when
// present, then MANIFOLD_* environment variables.
func Load() (Config, error) {
	v := viper.New()
	v.SetDefault("forge.owner", defaultConfig.Forge.Owner)
	v.SetDefault("forge.repo", defaultConfig.Forge.Repo)
	v.SetDefault("forge.default_branch", defaultConfig.Forge.DefaultBranch)
	v.SetDefault("forge.submit_via_fork", defaultConfig.Forge.SubmitViaFork)
	v.SetDefault("manifest.format", defaultConfig.Manifest.Format)
	v.SetDefault("manifest.root", defaultConfig.Manifest.Root)
	v.SetDefault("download.max_size_mb", defaultConfig.Download.MaxSizeMB)
	v.SetDefault("download.timeout_seconds", defaultConfig.Download.TimeoutSeconds)

	v.SetEnvPrefix("MANIFOLD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if dir, err := Dir(); err == nil {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("reading settings file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding settings: %w", err)
	}
	return cfg, nil
}

// Save writes the settings file, creating the directory if needed.
func Save(cfg Config) (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("creating settings directory: %w", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("encoding settings: %w", err)
	}
	header := []byte("# manifold settings. Environment variables (MANIFOLD_*) take precedence.\n")
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, append(header, data...), 0o600); err != nil {
		return "", fmt.Errorf("writing settings file: %w", err)
	}
	return path, nil
}
