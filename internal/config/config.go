package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/macro2718/starcat/internal/catalog"
	"github.com/macro2718/starcat/internal/lookup"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is looked up in the working directory when no --config
// flag is given.
const DefaultConfigFile = "starcat.yaml"

// FieldNames maps the record keys starcat reads and rewrites.
type FieldNames struct {
	Name         string `yaml:"name"`
	RA           string `yaml:"ra"`
	Dec          string `yaml:"dec"`
	Magnitude    string `yaml:"magnitude"`
	SpectralType string `yaml:"sp_type"`
}

// Requested selects the optional catalog columns.
type Requested struct {
	Magnitude    bool `yaml:"magnitude"`
	SpectralType bool `yaml:"spectral_type"`
}

// SIMBAD configures the SIMBAD TAP client.
type SIMBAD struct {
	BaseURL       string        `yaml:"base_url"`
	Timeout       time.Duration `yaml:"timeout"`
	RatePerSecond float64       `yaml:"rate_per_second"`
	Requested     Requested     `yaml:"requested"`
}

// Cache configures the SQLite lookup cache.
type Cache struct {
	Enabled bool          `yaml:"enabled"`
	Path    string        `yaml:"path,omitempty"` // empty selects DefaultCachePath
	TTL     time.Duration `yaml:"ttl"`
}

// Config is the in-memory representation of starcat.yaml.
type Config struct {
	CatalogPath string        `yaml:"catalog_path"`
	MissingPath string        `yaml:"missing_path"`
	Fields      FieldNames    `yaml:"fields"`
	Indent      string        `yaml:"indent"`
	Provider    string        `yaml:"provider"`
	TablePath   string        `yaml:"table_path,omitempty"`
	SIMBAD      SIMBAD        `yaml:"simbad"`
	Cache       Cache         `yaml:"cache"`
	LockDir     string        `yaml:"lock_dir,omitempty"` // empty selects the user cache dir
	LockTimeout time.Duration `yaml:"lock_timeout"`
	LogLevel    string        `yaml:"log_level,omitempty"`
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand ~: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}

// DefaultCachePath returns the per-user lookup cache location.
func DefaultCachePath() string {
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "starcat", "lookups.db")
	}
	return filepath.Join("~", ".starcat", "lookups.db")
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		CatalogPath: filepath.Join("data", "stars.js"),
		MissingPath: "missing-stars.txt",
		Fields: FieldNames{
			Name:         "nameSIMBAD",
			RA:           "ra",
			Dec:          "dec",
			Magnitude:    "magnitude",
			SpectralType: "sp_type",
		},
		Indent:   catalog.DefaultStyle.Indent,
		Provider: "simbad",
		SIMBAD: SIMBAD{
			BaseURL:       lookup.DefaultSIMBADURL,
			Timeout:       30 * time.Second,
			RatePerSecond: 5,
			Requested:     Requested{Magnitude: true, SpectralType: true},
		},
		Cache: Cache{
			Enabled: true,
			Path:    DefaultCachePath(),
			TTL:     30 * 24 * time.Hour,
		},
		LockTimeout: 10 * time.Second,
	}
}

// Load reads the config at path over DefaultConfig and applies environment
// overrides. An empty path means DefaultConfigFile, which may be absent.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}

	env, err := Environment(DotEnvFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(env); err != nil {
		return nil, err
	}
	if cfg.Cache.Path == "" {
		cfg.Cache.Path = DefaultCachePath()
	}
	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save marshals cfg and writes it to path.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config %s: %w", path, err)
	}
	return nil
}

// Validate checks values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	if c.CatalogPath == "" {
		return errors.New("catalog_path is empty")
	}
	if c.Fields.Name == "" || c.Fields.RA == "" || c.Fields.Dec == "" {
		return errors.New("fields.name, fields.ra and fields.dec are required")
	}
	if strings.TrimSpace(c.Indent) != "" {
		return fmt.Errorf("indent must be whitespace, got %q", c.Indent)
	}
	switch c.Provider {
	case "simbad":
	case "table":
		if c.TablePath == "" {
			return errors.New("provider table needs table_path")
		}
	default:
		return fmt.Errorf("unsupported provider %q", c.Provider)
	}
	if c.SIMBAD.RatePerSecond < 0 {
		return errors.New("simbad.rate_per_second must not be negative")
	}
	return nil
}

// Style returns the record layout.
func (c *Config) Style() catalog.Style {
	return catalog.Style{Indent: c.Indent}
}

// LookupConfig converts c to the lookup package's configuration.
func (c *Config) LookupConfig() *lookup.Config {
	return &lookup.Config{
		Provider:      c.Provider,
		BaseURL:       c.SIMBAD.BaseURL,
		Timeout:       c.SIMBAD.Timeout,
		RatePerSecond: c.SIMBAD.RatePerSecond,
		TablePath:     c.TablePath,
		Fields: lookup.Fields{
			Magnitude:    c.SIMBAD.Requested.Magnitude,
			SpectralType: c.SIMBAD.Requested.SpectralType,
		},
		CacheEnabled: c.Cache.Enabled,
		CachePath:    c.Cache.Path,
		CacheTTL:     c.Cache.TTL,
	}
}

func (c *Config) expandPaths() error {
	for _, p := range []*string{&c.CatalogPath, &c.MissingPath, &c.TablePath, &c.Cache.Path, &c.LockDir} {
		v, err := ExpandPath(*p)
		if err != nil {
			return err
		}
		*p = v
	}
	return nil
}
