package lookup

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Config contains the resolved lookup configuration.
type Config struct {
	Provider      string // "simbad" or "table"
	BaseURL       string
	Timeout       time.Duration
	RatePerSecond float64
	TablePath     string
	Fields        Fields

	CacheEnabled bool
	CachePath    string
	CacheTTL     time.Duration
}

// NewFromConfig returns a lookup provider, wrapped in a Cache when enabled.
// The returned close function releases the cache and is never nil.
func NewFromConfig(cfg *Config, log *zap.Logger) (Lookup, func() error, error) {
	noop := func() error { return nil }
	if cfg == nil {
		return nil, noop, fmt.Errorf("lookup config is nil")
	}
	if log == nil {
		log = zap.NewNop()
	}

	var base Lookup
	switch cfg.Provider {
	case "", "simbad":
		base = NewSIMBAD(SIMBADOptions{
			BaseURL:       cfg.BaseURL,
			Timeout:       cfg.Timeout,
			RatePerSecond: cfg.RatePerSecond,
			Fields:        cfg.Fields,
			Logger:        log,
		})
	case "table":
		if cfg.TablePath == "" {
			return nil, noop, fmt.Errorf("table provider needs a table path")
		}
		t, err := LoadTable(cfg.TablePath, cfg.Fields)
		if err != nil {
			return nil, noop, err
		}
		log.Debug("loaded lookup table", zap.String("path", cfg.TablePath), zap.Int("rows", t.Len()))
		// Tables are never cached.
		return t, noop, nil
	default:
		return nil, noop, fmt.Errorf("unsupported lookup provider: %s", cfg.Provider)
	}

	if !cfg.CacheEnabled {
		return base, noop, nil
	}
	c, err := OpenCache(base, CacheOptions{
		Path:   cfg.CachePath,
		TTL:    cfg.CacheTTL,
		Fields: cfg.Fields,
		Logger: log,
	})
	if err != nil {
		return nil, noop, err
	}
	return c, c.Close, nil
}
