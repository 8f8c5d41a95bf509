// =============================================================================
// HealthKit Export Converter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (hkconvert)
//   ├── processCmd (hkconvert process)
//   ├── typesCmd   (hkconvert types)
//   └── versionCmd (hkconvert version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --log-level, --log-format, ...)
//   2. Loading .env and binding flags/environment through viper
//   3. Building the validated config.Config and the logger
//
// =============================================================================

package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ginjaninja78/healthkit-to-csv/internal/config"
	"github.com/ginjaninja78/healthkit-to-csv/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the optional YAML configuration file.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// Viper keys.
const (
	keyDataDir      = "data_dir"
	keyLogLevel     = "log_level"
	keyLogFormat    = "log_format"
	keyShowProgress = "show_progress"
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "hkconvert",
	Short: "HealthKit Export Converter - Turn an Apple Health export into a clean CSV",
	Long: `HealthKit Export Converter reads the export.xml produced by the Apple
Health app, cleans the record type identifiers and writes the records to a
CSV file.

The export is looked up at $DATA/apple_health_export/export.xml. DATA can be
set in the environment, in a .env file in the working directory, or as
data_dir in the configuration file.

Example Usage:
  hkconvert process                    # Convert the export to CSV
  hkconvert types --category Quantity  # List the Quantity types in the export
  hkconvert version                    # Show version information`,

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: initConfig,

	Run: func(cmd *cobra.Command, args []string) {
		// If no subcommand is provided, print the help message.
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init sets up the global flags and binds them to viper.
func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"Path to an optional YAML configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)

	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().Bool("progress", false, "show a progress bar while reading the export")

	_ = viper.BindPFlag(keyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag(keyLogFormat, rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag(keyShowProgress, rootCmd.PersistentFlags().Lookup("progress"))
}

// initConfig loads .env and binds environment variables. It runs before
// every subcommand.
func initConfig(_ *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(config.DotEnvFile); err != nil {
		return err
	}

	viper.SetEnvPrefix("HKCONVERT")
	viper.AutomaticEnv()

	// The base directory keeps its historical, unprefixed name.
	if err := viper.BindEnv(keyDataDir, config.DataDirEnv); err != nil {
		return fmt.Errorf("failed to bind %s: %w", config.DataDirEnv, err)
	}

	return nil
}

// =============================================================================
// RUNTIME CONSTRUCTION
// =============================================================================

// loadRuntime builds the validated configuration and the logger used by
// the subcommands.
func loadRuntime() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}

	overlayViper(cfg)

	if verbose {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger, err := logging.Setup(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to setup logging: %w", err)
	}

	return cfg, logger, nil
}

// overlayViper copies the values set through flags or the environment on
// top of the file configuration.
func overlayViper(cfg *config.Config) {
	if viper.IsSet(keyDataDir) {
		cfg.DataDir = viper.GetString(keyDataDir)
	}
	if viper.IsSet(keyLogLevel) {
		cfg.LogLevel = viper.GetString(keyLogLevel)
	}
	if viper.IsSet(keyLogFormat) {
		cfg.LogFormat = viper.GetString(keyLogFormat)
	}
	if viper.IsSet(keyShowProgress) {
		cfg.ShowProgress = viper.GetBool(keyShowProgress)
	}
}
