// Package config loads archivectl settings.
package config

import (
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/track87/chaos-mesh-archive/sdk"
	"github.com/track87/chaos-mesh-archive/sdk/bykind"
	"github.com/track87/chaos-mesh-archive/sdk/i18n"
	"github.com/track87/chaos-mesh-archive/sdk/kind"
)

const (
	// DefaultNamespace is the namespace experiments are listed in.
	DefaultNamespace = sdk.DefaultNamespace

	// DefaultLogMode is the zap preset used by the CLI.
	DefaultLogMode = "production"
)

// Config is the root configuration.
type Config struct {
	Locale    string      `yaml:"locale"`
	Catalog   string      `yaml:"catalog"`
	Namespace string      `yaml:"namespace"`
	IconSize  bykind.Size `yaml:"icon_size"`
	LogMode   string      `yaml:"log_mode"`
	// Icons overrides icon assets by kind.
	Icons map[string]string `yaml:"icons"`
}

// Override adjusts a loaded configuration before it is validated, e.g. from
// command line flags.
type Override func(*Config)

// WithLogMode overrides log_mode when mode is not empty.
func WithLogMode(mode string) Override {
	return func(c *Config) {
		if mode != "" {
			c.LogMode = mode
		}
	}
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads the configuration file at path, applies overrides and
// validates the result. An empty path starts from Default.
func Load(path string, overrides ...Override) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := ioutil.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "reading config file")
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrap(err, "parsing config file")
		}
	}

	for _, override := range overrides {
		override(&cfg)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Locale == "" {
		c.Locale = i18n.DefaultLocale
	}
	if c.Namespace == "" {
		c.Namespace = DefaultNamespace
	}
	if c.IconSize == "" {
		c.IconSize = bykind.DefaultSize
	}
	if c.LogMode == "" {
		c.LogMode = DefaultLogMode
	}
}

// Validate rejects unknown icon sizes and log modes.
func (c *Config) Validate() error {
	if _, err := bykind.ParseSize(string(c.IconSize)); err != nil {
		return errors.Wrap(err, "icon_size")
	}
	switch c.LogMode {
	case "development", "production":
	default:
		return errors.Errorf("log_mode: unknown mode %q", c.LogMode)
	}
	return nil
}

// Translator loads the configured catalog: the built-in locale overlaid by
// the catalog file, or the catalog file alone for locales with no built-in.
func (c *Config) Translator() (bykind.Translator, error) {
	catalog, err := i18n.Load(c.Locale)
	if err != nil && c.Catalog == "" {
		return nil, err
	}
	if c.Catalog != "" {
		overlay, ferr := i18n.LoadFile(c.Locale, c.Catalog)
		if ferr != nil {
			return nil, ferr
		}
		if err != nil {
			return overlay.Translator(), nil
		}
		catalog.Merge(overlay)
	}
	return catalog.Translator(), nil
}

// Resolver builds the kind resolver with the configured translator and icon
// overrides.
func (c *Config) Resolver() (*bykind.Resolver, error) {
	t, err := c.Translator()
	if err != nil {
		return nil, err
	}
	if len(c.Icons) == 0 {
		return bykind.NewResolver(t)
	}

	base, err := bykind.NewResolver(t)
	if err != nil {
		return nil, err
	}
	overrides := make(map[kind.Kind]bykind.Entry, len(c.Icons))
	for name, asset := range c.Icons {
		k, ok := kind.Parse(name)
		if !ok {
			return nil, errors.Errorf("icons: unknown kind %q", name)
		}
		label, _ := base.Label(k)
		overrides[k] = bykind.Entry{Asset: asset, Key: label.Key}
	}
	return bykind.NewResolver(t, bykind.WithEntries(overrides))
}
