// =============================================================================
// Invoice Form Gate - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI and the setup shared
// by every subcommand: configuration, logging and the notification catalog.
//
// COBRA CLI STRUCTURE:
//   rootCmd (formgate)
//   ├── validateCmd (formgate validate <form>...)
//   ├── extractCmd  (formgate extract <form>)
//   ├── processCmd  (formgate process)
//   ├── schemaCmd   (formgate schema)
//   └── versionCmd  (formgate version)
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/invoice-form-gate/internal/config"
	"github.com/ginjaninja78/invoice-form-gate/internal/i18n"
	"github.com/ginjaninja78/invoice-form-gate/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// locale overrides the configured notification language.
var locale string

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "formgate",
	Short: "Invoice Form Gate - validate invoice forms and extract their payload",
	Long: `Invoice Form Gate checks invoice form state before it is saved and reduces
valid forms to the minimal invoice payload.

A form is rejected with exactly one warning describing the first rule it
breaks. Optional sections (due date, currency, discount, tax, note) are only
checked and only extracted when the form's required-fields settings say so.

Example Usage:
  formgate validate form.json           # Check a form, print the warning if any
  formgate extract form.yaml -f xml     # Print the payload of a valid form
  formgate process                      # Run the gate over the input directory
  formgate process --config ./my.yaml   # Use a custom configuration file`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the CLI. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		config.DefaultPath,
		"Path to the main configuration file",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
	rootCmd.PersistentFlags().StringVar(
		&locale,
		"locale",
		"",
		"Notification language (overrides the configured locale)",
	)
}

// =============================================================================
// SHARED SETUP
// =============================================================================

// env is what every command needs to run.
type env struct {
	config  *config.MainConfig
	logger  *zap.Logger
	catalog *i18n.Catalog
	close   func()
}

// setup loads the configuration and builds the logger and catalog. The
// caller must call close.
func setup() (*env, error) {
	cfg, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if locale != "" {
		cfg.Locale = locale
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	logger, closeLogger, err := logging.New(level, cfg.LogFile)
	if err != nil {
		return nil, err
	}

	catalog, err := i18n.New(cfg.Locale, cfg.LocalesDir)
	if err != nil {
		closeLogger()
		return nil, err
	}

	logger.Debug("config.loaded",
		zap.String("path", cfgFile),
		zap.String("locale", catalog.Locale()),
		zap.String("output_format", cfg.OutputFormat),
	)
	return &env{config: cfg, logger: logger, catalog: catalog, close: closeLogger}, nil
}
