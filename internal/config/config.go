// Package config loads cvpack tool settings from cvpack.yaml, CVPACK_* environment variables and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name
	AppName = "cvpack"
	// ConfigFileName is the config file name without extension
	ConfigFileName = "cvpack"
	// EnvPrefix prefixes environment overrides, e.g. CVPACK_CMAKE_JOBS
	EnvPrefix = "CVPACK"
)

// Config holds tool-level settings. Target settings live in profiles.
type Config struct {
	RecipesDir  string         `mapstructure:"recipes_dir"`
	ProfilesDir string         `mapstructure:"profiles_dir"`
	DepsDir     string         `mapstructure:"deps_dir"`
	BuildRoot   string         `mapstructure:"build_root"`
	OutputDir   string         `mapstructure:"output_dir"`
	CMake       CMakeConfig    `mapstructure:"cmake"`
	Archive     ArchiveConfig  `mapstructure:"archive"`
	Signing     SigningConfig  `mapstructure:"signing"`
	Security    SecurityConfig `mapstructure:"security"`
	Log         LogConfig      `mapstructure:"log"`
}

// CMakeConfig selects the cmake binary and how it is driven
type CMakeConfig struct {
	Binary         string `mapstructure:"binary"`
	Generator      string `mapstructure:"generator"`
	Jobs           int    `mapstructure:"jobs"`
	TimeoutMinutes int    `mapstructure:"timeout_minutes"` // 0 means no timeout
}

// ArchiveConfig controls package archives
type ArchiveConfig struct {
	Format string `mapstructure:"format"`
}

// SigningConfig points at an OpenPGP private key for detached signatures
type SigningConfig struct {
	KeyFile    string `mapstructure:"key_file"`
	Passphrase string `mapstructure:"passphrase"`
}

// SecurityConfig toggles checksum, SBOM and provenance files
type SecurityConfig struct {
	Artifacts bool `mapstructure:"artifacts"`
}

// LogConfig configures the logger
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the configuration used when nothing is set
func DefaultConfig() *Config {
	return &Config{
		RecipesDir:  "recipes",
		ProfilesDir: "profiles",
		DepsDir:     "deps",
		BuildRoot:   ".cvpack",
		OutputDir:   "dist",
		CMake: CMakeConfig{
			Binary:         "cmake",
			Generator:      "",
			Jobs:           0,
			TimeoutMinutes: 120,
		},
		Archive:  ArchiveConfig{Format: "tar.gz"},
		Security: SecurityConfig{Artifacts: true},
		Log:      LogConfig{Level: "info"},
	}
}

// Load reads configuration. An explicit path must exist; otherwise cvpack.yaml is
// searched in the working directory and the user config directory, and its absence is not an error.
func Load(path string) (*Config, string, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("recipes_dir", defaults.RecipesDir)
	v.SetDefault("profiles_dir", defaults.ProfilesDir)
	v.SetDefault("deps_dir", defaults.DepsDir)
	v.SetDefault("build_root", defaults.BuildRoot)
	v.SetDefault("output_dir", defaults.OutputDir)
	v.SetDefault("cmake.binary", defaults.CMake.Binary)
	v.SetDefault("cmake.generator", defaults.CMake.Generator)
	v.SetDefault("cmake.jobs", defaults.CMake.Jobs)
	v.SetDefault("cmake.timeout_minutes", defaults.CMake.TimeoutMinutes)
	v.SetDefault("archive.format", defaults.Archive.Format)
	v.SetDefault("signing.key_file", defaults.Signing.KeyFile)
	v.SetDefault("signing.passphrase", defaults.Signing.Passphrase)
	v.SetDefault("security.artifacts", defaults.Security.Artifacts)
	v.SetDefault("log.level", defaults.Log.Level)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, "", fmt.Errorf("config file not found: %s", path)
		}
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(ConfigFileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, AppName))
		}
	}

	resolved := ""
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, "", fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		resolved = v.ConfigFileUsed()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}

	return &cfg, resolved, nil
}

// Validate checks values viper cannot type-check
func (c *Config) Validate() error {
	if c.CMake.Jobs < 0 {
		return fmt.Errorf("cmake.jobs must not be negative, got %d", c.CMake.Jobs)
	}
	if c.CMake.TimeoutMinutes < 0 {
		return fmt.Errorf("cmake.timeout_minutes must not be negative, got %d", c.CMake.TimeoutMinutes)
	}
	switch c.Archive.Format {
	case "tar.gz", "tar.xz":
	default:
		return fmt.Errorf("archive.format must be tar.gz or tar.xz, got %q", c.Archive.Format)
	}
	return nil
}
