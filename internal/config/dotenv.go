package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DotEnvFile is read from the working directory when present.
const DotEnvFile = ".env"

// Environment variables recognised by starcat.
const (
	EnvCatalog   = "STARCAT_CATALOG"
	EnvMissing   = "STARCAT_MISSING"
	EnvSIMBADURL = "STARCAT_SIMBAD_URL"
	EnvTimeout   = "STARCAT_TIMEOUT"
	EnvCachePath = "STARCAT_CACHE_PATH"
	EnvNoCache   = "STARCAT_NO_CACHE"
	EnvLogLevel  = "STARCAT_LOG_LEVEL"
)

var knownEnv = []string{EnvCatalog, EnvMissing, EnvSIMBADURL, EnvTimeout, EnvCachePath, EnvNoCache, EnvLogLevel}

// LoadDotEnv reads path with godotenv. A missing file yields an empty map.
func LoadDotEnv(path string) (map[string]string, error) {
	m, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("cannot read dotenv file %s: %w", path, err)
	}
	return m, nil
}

// Environment returns the effective STARCAT_* values, using process
// environment variables first and falling back to the dotenv file.
func Environment(dotenvPath string) (map[string]string, error) {
	dotenv, err := LoadDotEnv(dotenvPath)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(knownEnv))
	for _, k := range knownEnv {
		if v := os.Getenv(k); v != "" {
			out[k] = v
		} else if v := dotenv[k]; v != "" {
			out[k] = v
		}
	}
	return out, nil
}

func (c *Config) applyEnv(env map[string]string) error {
	if v := strings.TrimSpace(env[EnvCatalog]); v != "" {
		c.CatalogPath = v
	}
	if v := strings.TrimSpace(env[EnvMissing]); v != "" {
		c.MissingPath = v
	}
	if v := strings.TrimSpace(env[EnvSIMBADURL]); v != "" {
		c.SIMBAD.BaseURL = v
	}
	if v := strings.TrimSpace(env[EnvTimeout]); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvTimeout, err)
		}
		c.SIMBAD.Timeout = d
	}
	if v := strings.TrimSpace(env[EnvCachePath]); v != "" {
		c.Cache.Path = v
	}
	if v := strings.TrimSpace(env[EnvNoCache]); v != "" {
		off, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvNoCache, err)
		}
		if off {
			c.Cache.Enabled = false
		}
	}
	if v := strings.TrimSpace(env[EnvLogLevel]); v != "" {
		c.LogLevel = v
	}
	return nil
}
