// Package config loads cloudx settings from the embedded defaults and an
// optional user file.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/cloudx/internal/keymap"
	"github.com/oakwood-commons/cloudx/internal/resource"
	"github.com/oakwood-commons/cloudx/internal/session"
	"github.com/oakwood-commons/cloudx/pkg/loader"
)

//go:embed default_config.yaml
var embeddedDefaultConfig []byte

// Filter modes accepted by ui.filter_mode.
const (
	FilterSubstring = "substring"
	FilterFuzzy     = "fuzzy"
	FilterGlob      = "glob"
)

// AppConfig holds application metadata.
type AppConfig struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
}

// UIConfig holds interactive settings.
type UIConfig struct {
	PageSize   int              `yaml:"page_size"`
	FilterMode string           `yaml:"filter_mode"`
	NoColor    bool             `yaml:"no_color"`
	Keymap     keymap.Overrides `yaml:"keymap"`
}

// FetchConfig tunes data loading.
type FetchConfig struct {
	MaxItems     int           `yaml:"max_items"`
	PageSize     int           `yaml:"page_size"`
	PollInterval time.Duration `yaml:"poll_interval"`
	Timeout      time.Duration `yaml:"timeout"`
	Fixture      string        `yaml:"fixture"`
	WatchFixture bool          `yaml:"watch_fixture"`
}

// ProbeConfig configures the region latency probe.
type ProbeConfig struct {
	Timeout    time.Duration     `yaml:"timeout"`
	AutoSelect bool              `yaml:"auto_select"`
	Endpoints  map[string]string `yaml:"endpoints"`
}

// SessionConfig configures session persistence.
type SessionConfig struct {
	File      string `yaml:"file"`
	MaxClosed int    `yaml:"max_closed"`
	Restore   string `yaml:"restore"`
}

// Config is the merged configuration.
type Config struct {
	App      AppConfig          `yaml:"app"`
	UI       UIConfig           `yaml:"ui"`
	Fetch    FetchConfig        `yaml:"fetch"`
	Probe    ProbeConfig        `yaml:"probe"`
	Session  SessionConfig      `yaml:"session"`
	Services []resource.Service `yaml:"services"`

	// Source is the user file merged over the defaults, if any.
	Source string `yaml:"-"`
}

// DefaultYAML returns a copy of the embedded default config.
func DefaultYAML() []byte {
	return append([]byte(nil), embeddedDefaultConfig...)
}

// Default parses the embedded defaults.
func Default() (Config, error) {
	var cfg Config
	if len(embeddedDefaultConfig) == 0 {
		return cfg, errors.New("embedded default config is empty")
	}
	if err := yaml.Unmarshal(embeddedDefaultConfig, &cfg); err != nil {
		return cfg, fmt.Errorf("decode default config: %w", err)
	}
	return cfg, nil
}

// Load merges the user config over the defaults. An explicit path must
// exist; otherwise cloudx/config.yaml or cloudx/config.toml is searched in
// the XDG config directories and a missing file is not an error. Fields
// present in the user file replace defaults; maps merge key by key.
func Load(path string) (Config, error) {
	cfg, err := Default()
	if err != nil {
		return cfg, err
	}
	if path == "" {
		path = discover()
		if path == "" {
			return cfg, cfg.Validate()
		}
	}

	if err := loader.ReadFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg.Source = path
	return cfg, cfg.Validate()
}

func discover() string {
	for _, name := range []string{"config.yaml", "config.yml", "config.toml"} {
		if p, err := xdg.SearchConfigFile(filepath.Join("cloudx", name)); err == nil {
			return p
		}
	}
	return ""
}

// DefaultPath returns where a user config is created by default.
func DefaultPath() (string, error) {
	return xdg.ConfigFile(filepath.Join("cloudx", "config.yaml"))
}

// Validate checks value ranges and references.
func (c Config) Validate() error {
	switch c.UI.FilterMode {
	case FilterSubstring, FilterFuzzy, FilterGlob:
	default:
		return fmt.Errorf("ui.filter_mode: unknown mode %q", c.UI.FilterMode)
	}
	if c.UI.PageSize <= 0 {
		return fmt.Errorf("ui.page_size must be positive, got %d", c.UI.PageSize)
	}
	if c.Fetch.MaxItems < 0 || c.Fetch.PageSize < 0 {
		return errors.New("fetch.max_items and fetch.page_size must be non-negative")
	}
	if c.Fetch.PollInterval <= 0 {
		return fmt.Errorf("fetch.poll_interval must be positive, got %s", c.Fetch.PollInterval)
	}
	if _, err := keymap.New(c.UI.Keymap); err != nil {
		return fmt.Errorf("ui.keymap: %w", err)
	}
	if _, err := c.Catalog(); err != nil {
		return fmt.Errorf("services: %w", err)
	}
	return nil
}

// Dispatcher builds the key dispatcher with the configured overrides.
func (c Config) Dispatcher() (*keymap.Dispatcher, error) {
	return keymap.New(c.UI.Keymap)
}

// Catalog merges configured services over the built-in catalog. A
// configured service without max_items inherits fetch.max_items.
func (c Config) Catalog() (*resource.Catalog, error) {
	merged, err := resource.DefaultCatalog().Merge(c.Services)
	if err != nil {
		return nil, err
	}
	if c.Fetch.MaxItems == 0 && c.Fetch.PageSize == 0 {
		return merged, nil
	}
	services := merged.Services()
	for i := range services {
		if services[i].MaxItems == 0 {
			services[i].MaxItems = c.Fetch.MaxItems
		}
		if services[i].PageSize == 0 {
			services[i].PageSize = c.Fetch.PageSize
		}
	}
	return resource.NewCatalog(services...)
}

// SessionFile resolves the session store path.
func (c Config) SessionFile() (string, error) {
	if c.Session.File != "" {
		return c.Session.File, nil
	}
	return session.DefaultPath()
}

// Marshal renders the merged config as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
