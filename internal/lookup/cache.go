package lookup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // SQLite driver
)

const cacheSchema = `
CREATE TABLE IF NOT EXISTS lookups (
	name       TEXT    NOT NULL,
	fields     TEXT    NOT NULL,
	ra         TEXT    NOT NULL DEFAULT '',
	dec        TEXT    NOT NULL DEFAULT '',
	magnitude  TEXT    NOT NULL DEFAULT '',
	sp_type    TEXT    NOT NULL DEFAULT '',
	found      INTEGER NOT NULL,
	fetched_at INTEGER NOT NULL,
	PRIMARY KEY (name, fields)
)`

// CacheOptions configures a Cache.
type CacheOptions struct {
	Path   string
	TTL    time.Duration // <= 0 keeps entries forever
	Fields Fields
	Logger *zap.Logger
}

// Cache stores lookup outcomes, including misses, in SQLite and only asks
// the wrapped Lookup for names that are absent or older than the TTL.
// Errors other than ErrNotFound are never cached.
type Cache struct {
	db     *sql.DB
	next   Lookup
	ttl    time.Duration
	fields string
	log    *zap.Logger
	now    func() time.Time
}

// OpenCache opens (creating if needed) the cache database at opts.Path.
// next may be nil for a cache that is only purged.
func OpenCache(next Lookup, opts CacheOptions) (*Cache, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("cache path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	db, err := sql.Open("sqlite", opts.Path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening cache %s: %w", opts.Path, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(cacheSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{
		db:     db,
		next:   next,
		ttl:    opts.TTL,
		fields: opts.Fields.key(),
		log:    log.Named("cache"),
		now:    time.Now,
	}, nil
}

// Close closes the database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Lookup implements Lookup.
func (c *Cache) Lookup(ctx context.Context, name string) (Result, error) {
	name = NormalizeName(name)

	res, found, ok, err := c.get(ctx, name)
	if err != nil {
		c.log.Warn("cache read failed", zap.String("name", name), zap.Error(err))
	} else if ok {
		c.log.Debug("hit", zap.String("name", name), zap.Bool("found", found))
		if !found {
			return Result{}, ErrNotFound
		}
		return res, nil
	}

	res, err = c.next.Lookup(ctx, name)
	switch {
	case err == nil:
		found = true
	case errors.Is(err, ErrNotFound):
		found = false
	default:
		return Result{}, err
	}
	if perr := c.put(ctx, name, res, found); perr != nil {
		c.log.Warn("cache write failed", zap.String("name", name), zap.Error(perr))
	}
	return res, err
}

// Purge removes every cached entry.
func (c *Cache) Purge(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM lookups`)
	return err
}

// CacheStats summarises the cache contents across all field selections.
type CacheStats struct {
	Entries int
	Misses  int // cached negative results
	Oldest  time.Time
	Newest  time.Time
}

// Stats reports how many lookups the cache holds.
func (c *Cache) Stats(ctx context.Context) (CacheStats, error) {
	var (
		st             CacheStats
		oldest, newest sql.NullInt64
	)
	row := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(found = 0), 0), MIN(fetched_at), MAX(fetched_at) FROM lookups`)
	if err := row.Scan(&st.Entries, &st.Misses, &oldest, &newest); err != nil {
		return CacheStats{}, fmt.Errorf("reading cache stats: %w", err)
	}
	if oldest.Valid {
		st.Oldest = time.Unix(oldest.Int64, 0)
	}
	if newest.Valid {
		st.Newest = time.Unix(newest.Int64, 0)
	}
	return st, nil
}

func (c *Cache) get(ctx context.Context, name string) (res Result, found, ok bool, err error) {
	var (
		foundInt  int
		fetchedAt int64
	)
	row := c.db.QueryRowContext(ctx,
		`SELECT ra, dec, magnitude, sp_type, found, fetched_at FROM lookups WHERE name = ? AND fields = ?`,
		name, c.fields)
	err = row.Scan(&res.RA, &res.Dec, &res.Magnitude, &res.SpectralType, &foundInt, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Result{}, false, false, nil
	}
	if err != nil {
		return Result{}, false, false, err
	}
	if c.ttl > 0 && c.now().Sub(time.Unix(fetchedAt, 0)) > c.ttl {
		return Result{}, false, false, nil
	}
	return res, foundInt != 0, true, nil
}

func (c *Cache) put(ctx context.Context, name string, res Result, found bool) error {
	foundInt := 0
	if found {
		foundInt = 1
	}
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO lookups (name, fields, ra, dec, magnitude, sp_type, found, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (name, fields) DO UPDATE SET
		   ra = excluded.ra, dec = excluded.dec, magnitude = excluded.magnitude,
		   sp_type = excluded.sp_type, found = excluded.found, fetched_at = excluded.fetched_at`,
		name, c.fields, res.RA, res.Dec, res.Magnitude, res.SpectralType, foundInt, c.now().Unix())
	return err
}
