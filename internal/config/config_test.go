package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	c := Default()
	if c.OutputFormat != FormatJSON || c.MaxConcurrency != 4 || c.Locale != "en" {
		t.Fatalf("unexpected defaults %+v", c)
	}
	if !c.SchemaCheck || !c.ContinueOnError || !c.XLSXReport || !c.ArchiveOnSuccess {
		t.Fatalf("boolean defaults should be on: %+v", c)
	}
	if c.UseSavedSettings {
		t.Fatalf("use_saved_settings should default to false")
	}
	if c.OutputNameFormat != "{original}_{uuid}" {
		t.Fatalf("unexpected name format %q", c.OutputNameFormat)
	}
}

func TestLoadMainConfigOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
input_dir: /data/in
output_format: XML
max_concurrency: 8
schema_check: false
locale: fr
`)
	c, err := LoadMainConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.InputDir != "/data/in" || c.OutputDir != "./output" {
		t.Fatalf("unexpected dirs %q %q", c.InputDir, c.OutputDir)
	}
	if c.OutputFormat != FormatXML {
		t.Fatalf("format should be normalized, got %q", c.OutputFormat)
	}
	if c.MaxConcurrency != 8 || c.SchemaCheck || c.Locale != "fr" {
		t.Fatalf("unexpected values %+v", c)
	}
	if !c.ContinueOnError {
		t.Fatalf("unset booleans should keep their defaults")
	}
}

func TestLoadMainConfigRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"format":      "output_format: pdf\n",
		"level":       "log_level: loud\n",
		"concurrency": "max_concurrency: -1\n",
		"name":        "output_name_format: invoice\n",
		"yaml":        "input_dir: [\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadMainConfig(writeConfig(t, body)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}

	c, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("missing default config should fall back: %v", err)
	}
	if c.OutputFormat != FormatJSON {
		t.Fatalf("expected defaults, got %+v", c)
	}

	if _, err := LoadOrDefault("missing.yaml"); err == nil {
		t.Fatalf("explicit missing config should be an error")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("FORMGATE_LOCALE", "fr")
	t.Setenv("FORMGATE_SCHEMA_CHECK", "false")
	t.Setenv("FORMGATE_USE_SAVED_SETTINGS", "1")

	c := Default()
	if err := ApplyEnv(c); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if c.Locale != "fr" || c.SchemaCheck || !c.UseSavedSettings {
		t.Fatalf("unexpected config %+v", c)
	}
}

func TestApplyEnvRejectsBadValues(t *testing.T) {
	t.Setenv("FORMGATE_SCHEMA_CHECK", "sometimes")
	if err := ApplyEnv(Default()); err == nil {
		t.Fatalf("expected error for bad boolean")
	}

	t.Setenv("FORMGATE_SCHEMA_CHECK", "")
	t.Setenv("FORMGATE_OUTPUT_FORMAT", "pdf")
	if err := ApplyEnv(Default()); err == nil {
		t.Fatalf("expected error for bad format")
	}
}
