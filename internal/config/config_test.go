package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test in an empty directory with no STARCAT_* variables.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, k := range knownEnv {
		t.Setenv(k, "")
	}
	return dir
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("data", "stars.js"), cfg.CatalogPath)
	assert.Equal(t, "missing-stars.txt", cfg.MissingPath)
	assert.Equal(t, "nameSIMBAD", cfg.Fields.Name)
	assert.Equal(t, "    ", cfg.Indent)
	assert.True(t, cfg.SIMBAD.Requested.Magnitude)
	assert.True(t, cfg.Cache.Enabled)
}

func TestLoad_ExplicitMissingFileIsError(t *testing.T) {
	dir := isolate(t)
	_, err := Load(filepath.Join(dir, "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_FileOverridesDefaultsAndEnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	body := "" +
		"catalog_path: catalog/stars.js\n" +
		"fields:\n" +
		"  name: simbadName\n" +
		"simbad:\n" +
		"  timeout: 5s\n" +
		"  requested:\n" +
		"    spectral_type: false\n" +
		"cache:\n" +
		"  enabled: false\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(body), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, DotEnvFile), []byte(EnvMissing+"=unresolved.txt\n"), 0o600))
	t.Setenv(EnvTimeout, "7s")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "catalog/stars.js", cfg.CatalogPath)
	assert.Equal(t, "unresolved.txt", cfg.MissingPath)
	assert.Equal(t, "simbadName", cfg.Fields.Name)
	assert.Equal(t, "ra", cfg.Fields.RA, "unset keys keep defaults")
	assert.Equal(t, 7*time.Second, cfg.SIMBAD.Timeout)
	assert.True(t, cfg.SIMBAD.Requested.Magnitude)
	assert.False(t, cfg.SIMBAD.Requested.SpectralType)
	assert.False(t, cfg.Cache.Enabled)

	lc := cfg.LookupConfig()
	assert.False(t, lc.CacheEnabled)
	assert.False(t, lc.Fields.SpectralType)
	assert.Equal(t, 7*time.Second, lc.Timeout)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := isolate(t)
	p := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(p, []byte("catalog_path: [unclosed\n"), 0o644))
	_, err := Load(p)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty catalog", func(c *Config) { c.CatalogPath = "" }},
		{"empty name field", func(c *Config) { c.Fields.Name = "" }},
		{"non-space indent", func(c *Config) { c.Indent = "\t-" }},
		{"unknown provider", func(c *Config) { c.Provider = "ned" }},
		{"table without path", func(c *Config) { c.Provider = "table" }},
		{"negative rate", func(c *Config) { c.SIMBAD.RatePerSecond = -1 }},
	}
	for _, c := range cases {
		cfg := DefaultConfig()
		c.mutate(cfg)
		assert.Errorf(t, cfg.Validate(), c.name)
	}
	assert.NoError(t, DefaultConfig().Validate())
}

func TestSaveRoundTrip(t *testing.T) {
	isolate(t)
	p := filepath.Join(t.TempDir(), "starcat.yaml")
	cfg := DefaultConfig()
	cfg.CatalogPath = "elsewhere/stars.js"
	require.NoError(t, Save(cfg, p))

	got, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "elsewhere/stars.js", got.CatalogPath)
	assert.Equal(t, cfg.SIMBAD, got.SIMBAD)
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	got, err := ExpandPath("~/x/y")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "x", "y"), got)

	got, err = ExpandPath("rel/path")
	require.NoError(t, err)
	assert.Equal(t, "rel/path", got)
}

func TestLoad_EmptyCachePathUsesDefault(t *testing.T) {
	isolate(t)
	p := filepath.Join(t.TempDir(), "starcat.yaml")
	cfg := DefaultConfig()
	cfg.Cache.Path = ""
	require.NoError(t, Save(cfg, p))

	got, err := Load(p)
	require.NoError(t, err)
	want, err := ExpandPath(DefaultCachePath())
	require.NoError(t, err)
	assert.Equal(t, want, got.Cache.Path)
}
