// Package i18n loads the dashboard translation catalogs.
package i18n

import (
	"embed"
	"fmt"
	"io/ioutil"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/track87/chaos-mesh-archive/sdk/bykind"
)

// DefaultLocale is used when no locale is configured.
const DefaultLocale = "en"

//go:embed locales/*.yaml
var locales embed.FS

// Catalog holds flattened translation keys such as "newE.target.pod.title".
type Catalog struct {
	Locale   string
	messages map[string]string
}

// Locales lists the built-in locales.
func Locales() []string {
	entries, err := locales.ReadDir("locales")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		names = append(names, name[:len(name)-len(".yaml")])
	}
	sort.Strings(names)
	return names
}

// Load returns the built-in catalog of locale.
func Load(locale string) (*Catalog, error) {
	if locale == "" {
		locale = DefaultLocale
	}
	data, err := locales.ReadFile("locales/" + locale + ".yaml")
	if err != nil {
		return nil, errors.Errorf("unknown locale %q", locale)
	}
	return Parse(locale, data)
}

// LoadFile reads a catalog from a YAML file on disk.
func LoadFile(locale, path string) (*Catalog, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read catalog")
	}
	return Parse(locale, data)
}

// Parse decodes a nested YAML document into a catalog.
func Parse(locale string, data []byte) (*Catalog, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "parse catalog %s", locale)
	}
	c := &Catalog{Locale: locale, messages: map[string]string{}}
	if err := flatten("", doc, c.messages); err != nil {
		return nil, errors.Wrapf(err, "parse catalog %s", locale)
	}
	return c, nil
}

func flatten(prefix string, node map[string]interface{}, out map[string]string) error {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]interface{}:
			if err := flatten(key, val, out); err != nil {
				return err
			}
		case map[interface{}]interface{}:
			nested := make(map[string]interface{}, len(val))
			for nk, nv := range val {
				nested[fmt.Sprint(nk)] = nv
			}
			if err := flatten(key, nested, out); err != nil {
				return err
			}
		case []interface{}:
			return errors.Errorf("key %s: lists are not supported", key)
		case string:
			out[key] = val
		case nil:
		default:
			out[key] = fmt.Sprint(val)
		}
	}
	return nil
}

// Merge overlays other onto c; keys in other win.
func (c *Catalog) Merge(other *Catalog) {
	if other == nil {
		return
	}
	for k, v := range other.messages {
		c.messages[k] = v
	}
}

// Lookup returns the message for key.
func (c *Catalog) Lookup(key string) (string, bool) {
	msg, ok := c.messages[key]
	return msg, ok
}

// T translates key, falling back to the key itself.
func (c *Catalog) T(key string) string {
	if msg, ok := c.messages[key]; ok {
		return msg
	}
	return key
}

// Translator adapts the catalog to bykind.Translator.
func (c *Catalog) Translator() bykind.Translator {
	return c.T
}

// Keys returns every key in the catalog, sorted.
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.messages))
	for k := range c.messages {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
