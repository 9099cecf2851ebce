package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config mirrors the YAML schema. Minimal validation occurs in Validate();
// ValidateDetailed reports every problem with a suggestion.
type Config struct {
	Version int       `yaml:"version"`
	General General   `yaml:"general"`
	Loader  Loader    `yaml:"loader"`
	Filters Filters   `yaml:"filters"`
	Logging Logging   `yaml:"logging"`
	Metrics Metrics   `yaml:"metrics"`
	UI      UIOptions `yaml:"ui"`
}

type General struct {
	// FlashpointPath is the Flashpoint install root; Data/flashpoint.sqlite and
	// Data/Images live below it.
	FlashpointPath string `yaml:"flashpoint_path"`
	// Database overrides the catalog path derived from FlashpointPath.
	Database    string `yaml:"database"`
	ImageServer string `yaml:"image_server"`
	CLIFpPath   string `yaml:"clifp_path"`
}

type Loader struct {
	PageSize       int    `yaml:"page_size"`
	DefaultLibrary string `yaml:"default_library"` // arcade | theatre
}

type Filters struct {
	Path string `yaml:"path"` // filters.json or a .yml/.yaml equivalent
}

type Logging struct {
	Level  string  `yaml:"level"`  // debug|info|warn|error
	Format string  `yaml:"format"` // human|json
	File   LogFile `yaml:"file"`
}

type LogFile struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type Metrics struct {
	PrometheusTextfile PromTextfile `yaml:"prometheus_textfile"`
}

type PromTextfile struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type UIOptions struct {
	// RefreshHz controls how often the browser repaints while a load is running.
	// 0 means 10; values above 30 are clamped.
	RefreshHz int `yaml:"refresh_hz"`
}

const (
	DefaultPageSize    = 500
	DefaultLibrary     = "arcade"
	DefaultImageServer = "https://infinity.flashpointarchive.org/Flashpoint"
)

// Libraries lists the library names the catalog knows about.
var Libraries = []string{"arcade", "theatre"}

// Default returns a config usable without a file on disk.
func Default() *Config {
	c := &Config{
		Version: 1,
		General: General{FlashpointPath: "~/Flashpoint", ImageServer: DefaultImageServer},
		Loader:  Loader{PageSize: DefaultPageSize, DefaultLibrary: DefaultLibrary},
		Filters: Filters{Path: "filters.json"},
		Logging: Logging{Level: "info", Format: "human"},
	}
	_ = c.expandPaths()
	return c
}

// DefaultPath resolves $WUMBO_CONFIG or ~/.config/wumbo/config.yml.
func DefaultPath() string {
	if env := os.Getenv("WUMBO_CONFIG"); env != "" {
		return env
	}
	h, err := os.UserHomeDir()
	if err != nil || h == "" {
		return ""
	}
	return filepath.Join(h, ".config", "wumbo", "config.yml")
}

// Load reads, parses, expands, and validates a YAML config file.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}
	expanded, err := expandTilde(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(expanded)
	if err != nil {
		return nil, err
	}
	// Expand ${ENV} placeholders before unmarshalling
	b = []byte(os.ExpandEnv(string(b)))
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	c.applyDefaults()
	if err := c.expandPaths(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Loader.PageSize == 0 {
		c.Loader.PageSize = DefaultPageSize
	}
	if c.Loader.DefaultLibrary == "" {
		c.Loader.DefaultLibrary = DefaultLibrary
	}
	if c.General.ImageServer == "" {
		c.General.ImageServer = DefaultImageServer
	}
}

func (c *Config) expandPaths() error {
	var err error
	if c.General.FlashpointPath, err = expandTilde(c.General.FlashpointPath); err != nil {
		return err
	}
	if c.General.Database, err = expandTilde(c.General.Database); err != nil {
		return err
	}
	if c.General.CLIFpPath, err = expandTilde(c.General.CLIFpPath); err != nil {
		return err
	}
	if c.Filters.Path, err = expandTilde(c.Filters.Path); err != nil {
		return err
	}
	if c.Logging.File.Path, err = expandTilde(c.Logging.File.Path); err != nil {
		return err
	}
	if c.Metrics.PrometheusTextfile.Path, err = expandTilde(c.Metrics.PrometheusTextfile.Path); err != nil {
		return err
	}
	return nil
}

// DatabasePath is general.database, or <flashpoint_path>/Data/flashpoint.sqlite.
func (c *Config) DatabasePath() string {
	if c.General.Database != "" {
		return c.General.Database
	}
	if c.General.FlashpointPath == "" {
		return ""
	}
	return filepath.Join(c.General.FlashpointPath, "Data", "flashpoint.sqlite")
}

func (c *Config) Validate() error {
	if c.Version != 1 {
		return fmt.Errorf("unsupported config version: %d", c.Version)
	}
	if c.DatabasePath() == "" {
		return errors.New("general.flashpoint_path or general.database is required")
	}
	if c.Loader.PageSize < 1 {
		return fmt.Errorf("loader.page_size must be >= 1")
	}
	if !IsLibrary(c.Loader.DefaultLibrary) {
		return fmt.Errorf("loader.default_library invalid: %s", c.Loader.DefaultLibrary)
	}
	lvl := stringsLower(c.Logging.Level)
	switch lvl {
	case "", "debug", "info", "warn", "error":
		// ok
	default:
		return fmt.Errorf("logging.level invalid: %s", c.Logging.Level)
	}
	fmtStr := stringsLower(c.Logging.Format)
	switch fmtStr {
	case "", "human", "json":
		// ok
	default:
		return fmt.Errorf("logging.format invalid: %s", c.Logging.Format)
	}
	if c.UI.RefreshHz < 0 {
		return fmt.Errorf("ui.refresh_hz must be >= 0")
	}
	return nil
}

// IsLibrary reports whether name is one of Libraries.
func IsLibrary(name string) bool {
	for _, l := range Libraries {
		if l == name {
			return true
		}
	}
	return false
}

func expandTilde(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	if p[0] != '~' {
		return p, nil
	}
	h, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if p == "~" {
		return h, nil
	}
	return filepath.Join(h, p[2:]), nil
}

func stringsLower(s string) string {
	b := []byte(s)
	for i := range b {
		if 'A' <= b[i] && b[i] <= 'Z' {
			b[i] = b[i] + 32
		}
	}
	return string(b)
}
