package config

import (
	"fmt"
	"os"
	"strconv"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FORMGATE_"

// ApplyEnv overrides config with FORMGATE_* environment variables and
// validates the result. Unset variables leave the value alone.
//
//	FORMGATE_LOCALE, FORMGATE_LOCALES_DIR, FORMGATE_LOG_LEVEL,
//	FORMGATE_OUTPUT_FORMAT, FORMGATE_SCHEMA_CHECK,
//	FORMGATE_USE_SAVED_SETTINGS
func ApplyEnv(config *MainConfig) error {
	strs := map[string]*string{
		"LOCALE":        &config.Locale,
		"LOCALES_DIR":   &config.LocalesDir,
		"LOG_LEVEL":     &config.LogLevel,
		"OUTPUT_FORMAT": &config.OutputFormat,
	}
	for k, dst := range strs {
		if v := get(k); v != "" {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"SCHEMA_CHECK":       &config.SchemaCheck,
		"USE_SAVED_SETTINGS": &config.UseSavedSettings,
	}
	for k, dst := range bools {
		v := get(k)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, k, err)
		}
		*dst = b
	}

	if err := validateMainConfig(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func get(k string) string {
	return os.Getenv(EnvPrefix + k)
}
