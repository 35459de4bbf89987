package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	xdgAppName = "taskboard"
	configFile = "config.json"
	envPrefix  = "TASKBOARD"

	SourceGviz = "gviz"
	SourceAPI  = "api"

	defaultPageSize = 10
	defaultTimeout  = 15 * time.Second
)

// Tab is one worksheet of the spreadsheet, addressed by its gid.
type Tab struct {
	Name string `json:"name"`
	GID  string `json:"gid"`
}

// Duration reads and writes as a Go duration string such as "15s".
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"15s\": %w", err)
	}
	return d.Decode(s)
}

// Decode lets envconfig parse the same format.
func (d *Duration) Decode(s string) error {
	if s == "" {
		d.Duration = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("failed to parse duration '%s': %w", s, err)
	}
	d.Duration = v
	return nil
}

type Config struct {
	SheetID  string   `json:"sheet_id" split_words:"true"`
	Tabs     []Tab    `json:"tabs" ignored:"true"`
	PageSize int      `json:"page_size" split_words:"true"`
	Source   string   `json:"source" split_words:"true"`
	APIKey   string   `json:"api_key,omitempty" split_words:"true"`
	LogLevel string   `json:"log_level" split_words:"true"`
	Timeout  Duration `json:"timeout" split_words:"true"`
}

// Default is the configuration used before anything is saved.
func Default() *Config {
	return &Config{
		Tabs:     []Tab{},
		PageSize: defaultPageSize,
		Source:   SourceGviz,
		LogLevel: "info",
		Timeout:  Duration{defaultTimeout},
	}
}

func GetConfigPath() (string, error) {
	xdgHome, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(xdgHome, ".config", xdgAppName, configFile), nil
}

// Load reads the default config file and applies TASKBOARD_* overrides.
func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads path (a missing file means defaults) and applies
// environment overrides on top.
func LoadFrom(path string) (*Config, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}
	cfg.fillDefaults()
	return cfg, nil
}

// LoadFile reads only the file. Use it before Save so environment
// overrides never end up on disk.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := json.NewDecoder(f).Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config: %w", err)
		}
	case !os.IsNotExist(err):
		return nil, err
	}
	cfg.fillDefaults()
	return cfg, nil
}

func (c *Config) fillDefaults() {
	if c.PageSize < 1 {
		c.PageSize = defaultPageSize
	}
	if c.Source == "" {
		c.Source = SourceGviz
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Tabs == nil {
		c.Tabs = []Tab{}
	}
}

func Save(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(path, cfg)
}

func SaveTo(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file for writing: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(cfg)
}

// Validate checks what a fetch needs.
func (c *Config) Validate() error {
	if c.SheetID == "" {
		return fmt.Errorf("no sheet configured; run 'taskboard config set --sheet-id <id>' or set %s_SHEET_ID", envPrefix)
	}
	if len(c.Tabs) == 0 {
		return fmt.Errorf("no tabs configured; run 'taskboard config set --tab <name>=<gid>'")
	}
	switch c.Source {
	case SourceGviz:
	case SourceAPI:
		if c.APIKey == "" {
			return fmt.Errorf("source %q needs an API key", SourceAPI)
		}
	default:
		return fmt.Errorf("unknown source %q (want %s or %s)", c.Source, SourceGviz, SourceAPI)
	}
	return nil
}

// FindTab matches a tab by name or gid. An empty query returns the first tab.
func (c *Config) FindTab(query string) (Tab, error) {
	if len(c.Tabs) == 0 {
		return Tab{}, fmt.Errorf("no tabs configured")
	}
	if query == "" {
		return c.Tabs[0], nil
	}
	for _, t := range c.Tabs {
		if t.Name == query || t.GID == query {
			return t, nil
		}
	}
	return Tab{}, fmt.Errorf("tab '%s' not found", query)
}

// SetTab adds a tab or renames/replaces the one with the same gid.
func (c *Config) SetTab(tab Tab) {
	for i, t := range c.Tabs {
		if t.GID == tab.GID {
			c.Tabs[i] = tab
			return
		}
	}
	c.Tabs = append(c.Tabs, tab)
}

// ParseTab reads "name=gid".
func ParseTab(s string) (Tab, error) {
	name, gid, ok := strings.Cut(s, "=")
	name, gid = strings.TrimSpace(name), strings.TrimSpace(gid)
	if !ok || name == "" || gid == "" {
		return Tab{}, fmt.Errorf("tab must look like name=gid, got '%s'", s)
	}
	return Tab{Name: name, GID: gid}, nil
}
