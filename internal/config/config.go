// =============================================================================
// HealthKit Export Converter - Configuration Module
// =============================================================================
//
// This module is responsible for loading and validating the converter
// configuration. The configuration is an explicit object passed into the
// converter; nothing below the CLI layer reads the environment.
//
// CONFIGURATION SOURCES (later sources win):
//   1. Defaults (applyDefaults)
//   2. Optional YAML file (--config)
//   3. .env file in the working directory (godotenv, loaded by the CLI)
//   4. Environment variables and flags (bound through viper by the CLI)
//
// DERIVED PATHS:
//   Export:  <data_dir>/apple_health_export/export.xml
//   Output:  <data_dir>/apple_health_export/health_records.csv
//            (unless output_path is set)
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/healthkit-to-csv/internal/types"
	"github.com/ginjaninja78/healthkit-to-csv/pkg/utils"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DataDirEnv is the environment variable holding the base data directory.
	DataDirEnv = "DATA"

	// ExportDirName is the directory the Health app export unpacks into.
	ExportDirName = "apple_health_export"

	// ExportFileName is the XML file inside ExportDirName.
	ExportFileName = "export.xml"

	// DefaultOutputFileName is the CSV written next to the export when no
	// output path is configured.
	DefaultOutputFileName = "health_records.csv"

	// DotEnvFile is the dotenv file loaded from the working directory.
	DotEnvFile = ".env"
)

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the converter configuration.
type Config struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// DataDir is the base directory containing apple_health_export/.
	// Usually provided through the DATA environment variable.
	DataDir string `yaml:"data_dir"`

	// OutputPath is where the cleaned CSV is written.
	// Default: <data_dir>/apple_health_export/health_records.csv
	OutputPath string `yaml:"output_path"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat selects the log handler.
	// Valid values: "console", "json"
	// Default: "console"
	LogFormat string `yaml:"log_format"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// ShowProgress draws a progress bar on stderr while the export is read.
	// Default: false
	ShowProgress bool `yaml:"show_progress"`

	// NormalizeCategoryTypes also strips HKCategoryTypeIdentifier from the
	// type column. By default only Quantity types are cleaned and Category
	// types keep their prefix in the output.
	// Default: false
	NormalizeCategoryTypes bool `yaml:"normalize_category_types"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Load loads the configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the configuration file. An empty path skips
//     the file and returns the defaults.
//
// RETURNS:
//   - A pointer to the Config with defaults applied. It is not validated;
//     call Validate once every source has been applied.
//   - An error if the file cannot be read or parsed.
func Load(configPath string) (*Config, error) {
	var config Config

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyDefaults(&config)

	return &config, nil
}

// LoadDotEnv loads variables from a dotenv file into the process
// environment. Variables already set are not overridden. A missing file is
// not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(config *Config) {
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.LogFormat == "" {
		config.LogFormat = "console"
	}
}

// =============================================================================
// DERIVED PATHS
// =============================================================================

// ExportPath returns <data_dir>/apple_health_export/export.xml.
func (c *Config) ExportPath() string {
	return filepath.Join(c.DataDir, ExportDirName, ExportFileName)
}

// OutputFile returns the configured output path, or the default location
// next to the export.
func (c *Config) OutputFile() string {
	if c.OutputPath != "" {
		return c.OutputPath
	}
	return filepath.Join(c.DataDir, ExportDirName, DefaultOutputFileName)
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks that the configuration can drive a run.
//
// RETURNS:
//   - types.ErrMissingConfig if the data directory is not set.
//   - types.ErrInvalidConfig if the export file does not exist or a logging
//     option has an unknown value.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("%w: data directory not set (set %s or data_dir)", types.ErrMissingConfig, DataDirEnv)
	}

	if !utils.FileExists(c.ExportPath()) {
		return fmt.Errorf("%w: export file not found: %s", types.ErrInvalidConfig, c.ExportPath())
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", types.ErrInvalidConfig, c.LogLevel)
	}

	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("%w: unknown log format %q", types.ErrInvalidConfig, c.LogFormat)
	}

	return nil
}
