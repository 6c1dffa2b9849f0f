// =============================================================================
// Invoice Form Gate - String Lookup
// =============================================================================
//
// This package resolves message keys to localized strings. Catalogs are YAML
// files of nested maps; nesting is flattened into colon-joined keys, so
//
//	dialog:
//	  validation:
//	    tax:
//	      amount:
//	        title: Tax amount required
//
// is looked up as "dialog:validation:tax:amount:title".
//
// CATALOG SOURCES:
//   1. Embedded catalogs (locales/*.yaml) shipped with the binary.
//   2. Optional catalogs from a directory, merged over the embedded ones.
//
// LOOKUP ORDER:
//   active locale -> default locale -> the key itself
//
// =============================================================================

package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultLocale is used when a key is missing from the active locale.
const DefaultLocale = "en"

//go:embed locales/*.yaml
var embedded embed.FS

// Translator resolves a message key to text.
type Translator interface {
	T(key string) string
}

// Catalog holds every loaded locale and the active one.
type Catalog struct {
	locale   string
	messages map[string]map[string]string
}

// New loads the embedded catalogs plus any catalogs found in dirs and
// activates locale. An unknown locale is an error.
func New(locale string, dirs ...string) (*Catalog, error) {
	c := &Catalog{messages: make(map[string]map[string]string)}

	if err := c.loadFS(embedded, "locales"); err != nil {
		return nil, fmt.Errorf("failed to load embedded catalogs: %w", err)
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := c.LoadDir(dir); err != nil {
			return nil, err
		}
	}

	if locale == "" {
		locale = DefaultLocale
	}
	if _, ok := c.messages[locale]; !ok {
		return nil, fmt.Errorf("unsupported locale %q (available: %s)", locale, strings.Join(c.Locales(), ", "))
	}
	c.locale = locale
	return c, nil
}

// MustNew is New for callers that only use the embedded catalogs.
func MustNew(locale string) *Catalog {
	c, err := New(locale)
	if err != nil {
		panic(err)
	}
	return c
}

// T returns the text for key.
func (c *Catalog) T(key string) string {
	if msg, ok := c.messages[c.locale][key]; ok {
		return msg
	}
	if msg, ok := c.messages[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// Locale returns the active locale.
func (c *Catalog) Locale() string {
	return c.locale
}

// Locales returns the loaded locale names, sorted.
func (c *Catalog) Locales() []string {
	out := make([]string, 0, len(c.messages))
	for l := range c.messages {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// LoadDir merges every *.yaml / *.yml catalog in dir. The file name without
// extension is the locale ("fr.yaml" -> "fr"). Keys already present are
// overwritten.
func (c *Catalog) LoadDir(dir string) error {
	return c.loadFS(os.DirFS(dir), ".")
}

func (c *Catalog) loadFS(fsys fs.FS, root string) error {
	files, err := fs.Glob(fsys, filepath.ToSlash(filepath.Join(root, "*.yaml")))
	if err != nil {
		return fmt.Errorf("failed to list catalogs: %w", err)
	}
	ymlFiles, err := fs.Glob(fsys, filepath.ToSlash(filepath.Join(root, "*.yml")))
	if err != nil {
		return fmt.Errorf("failed to list catalogs: %w", err)
	}
	files = append(files, ymlFiles...)

	for _, file := range files {
		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return fmt.Errorf("failed to read catalog %s: %w", file, err)
		}
		locale := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		if err := c.merge(locale, data); err != nil {
			return fmt.Errorf("failed to parse catalog %s: %w", file, err)
		}
	}
	return nil
}

func (c *Catalog) merge(locale string, data []byte) error {
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return err
	}
	msgs, ok := c.messages[locale]
	if !ok {
		msgs = make(map[string]string)
		c.messages[locale] = msgs
	}
	flatten("", tree, msgs)
	return nil
}

// flatten walks a nested map and writes leaf values under colon-joined keys.
func flatten(prefix string, node map[string]any, out map[string]string) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + ":" + k
		}
		switch child := v.(type) {
		case map[string]any:
			flatten(key, child, out)
		case nil:
			// empty leaf
		default:
			out[key] = fmt.Sprint(child)
		}
	}
}
