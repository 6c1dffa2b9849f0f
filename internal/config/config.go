// =============================================================================
// Invoice Form Gate - Configuration Module
// =============================================================================
//
// This module loads the application configuration (config.yaml). Every
// setting has a built-in default, so single-form commands work without any
// configuration file at all.
//
// LOADING ORDER:
//   1. Built-in defaults (Default)
//   2. Values from the YAML file, overriding the defaults key by key
//   3. Defaults re-applied to keys explicitly set to an empty value
//   4. Validation
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file looked up when --config is not given.
const DefaultPath = "config.yaml"

// Supported payload output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatXML  = "xml"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned by the batch processor for forms.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir receives payloads, the summary log and the XLSX report.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir receives processed forms.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// OutputArchiveDir receives copies of written payloads.
	// Default: "./output_archive"
	OutputArchiveDir string `yaml:"output_archive_dir"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogFile is an optional JSON log file. Console logging always goes to
	// stderr.
	LogFile string `yaml:"log_file"`

	// LogLevel is one of debug, info, warn, error.
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputNameFormat names payload files. Placeholders: {original},
	// {uuid}, {timestamp}, {date}, {time}. The extension follows
	// OutputFormat.
	// Default: "{original}_{uuid}"
	OutputNameFormat string `yaml:"output_name_format"`

	// OutputFormat is the payload encoding: json, yaml or xml.
	// Default: "json"
	OutputFormat string `yaml:"output_format"`

	// XLSXReport makes the batch processor write report_<timestamp>.xlsx.
	// Default: true
	XLSXReport bool `yaml:"xlsx_report"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency bounds the number of forms processed at once.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// ContinueOnError keeps the batch going after a form fails.
	// Default: true
	ContinueOnError bool `yaml:"continue_on_error"`

	// ArchiveOnSuccess moves accepted forms and copies their payloads to the
	// archive directories.
	// Default: true
	ArchiveOnSuccess bool `yaml:"archive_on_success"`

	// SchemaCheck runs the JSON Schema shape check before decoding a form.
	// Default: true
	SchemaCheck bool `yaml:"schema_check"`

	// UseSavedSettings falls back to savedSettings.required_fields when a
	// form carries no settings.required_fields.
	// Default: false
	UseSavedSettings bool `yaml:"use_saved_settings"`

	// =========================================================================
	// NOTIFICATION SETTINGS
	// =========================================================================

	// Locale selects the notification language.
	// Default: "en"
	Locale string `yaml:"locale"`

	// LocalesDir holds extra YAML catalogs merged over the embedded ones.
	LocalesDir string `yaml:"locales_dir"`
}

// Default returns the built-in configuration.
func Default() *MainConfig {
	config := &MainConfig{
		XLSXReport:       true,
		ContinueOnError:  true,
		ArchiveOnSuccess: true,
		SchemaCheck:      true,
	}
	applyMainConfigDefaults(config)
	return config
}

// =============================================================================
// CONFIGURATION LOADING
// =============================================================================

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be read, parsed or validated.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return parseMainConfig(data)
}

// LoadOrDefault loads configPath. When configPath is the default path and
// the file does not exist, the built-in defaults are returned instead; an
// explicitly named file must exist.
func LoadOrDefault(configPath string) (*MainConfig, error) {
	if configPath == "" {
		configPath = DefaultPath
	}
	config, err := LoadMainConfig(configPath)
	if err != nil && configPath == DefaultPath && errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return config, err
}

func parseMainConfig(data []byte) (*MainConfig, error) {
	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyMainConfigDefaults(config)

	if err := validateMainConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// applyMainConfigDefaults sets default values for any unset string or
// numeric option.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.OutputArchiveDir == "" {
		config.OutputArchiveDir = "./output_archive"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.OutputNameFormat == "" {
		config.OutputNameFormat = "{original}_{uuid}"
	}
	if config.OutputFormat == "" {
		config.OutputFormat = FormatJSON
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 4
	}
	if config.Locale == "" {
		config.Locale = "en"
	}
}

// validateMainConfig rejects values no component can work with.
func validateMainConfig(config *MainConfig) error {
	config.OutputFormat = strings.ToLower(config.OutputFormat)
	switch config.OutputFormat {
	case FormatJSON, FormatYAML, FormatXML:
	default:
		return fmt.Errorf("output_format: unsupported format %q (use json, yaml or xml)", config.OutputFormat)
	}

	switch strings.ToLower(config.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level: unsupported level %q", config.LogLevel)
	}

	if config.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency: must be at least 1, got %d", config.MaxConcurrency)
	}

	if !strings.Contains(config.OutputNameFormat, "{uuid}") &&
		!strings.Contains(config.OutputNameFormat, "{original}") &&
		!strings.Contains(config.OutputNameFormat, "{timestamp}") {
		return fmt.Errorf("output_name_format: %q must contain {uuid}, {original} or {timestamp}", config.OutputNameFormat)
	}

	return nil
}
