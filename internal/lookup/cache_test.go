package lookup

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingLookup struct {
	calls map[string]int
	rows  map[string]Result
	err   error
}

func (c *countingLookup) Lookup(_ context.Context, name string) (Result, error) {
	if c.calls == nil {
		c.calls = map[string]int{}
	}
	c.calls[name]++
	if c.err != nil {
		return Result{}, c.err
	}
	r, ok := c.rows[name]
	if !ok {
		return Result{}, ErrNotFound
	}
	return r, nil
}

func openTestCache(t *testing.T, next Lookup, ttl time.Duration) *Cache {
	t.Helper()
	c, err := OpenCache(next, CacheOptions{
		Path:   filepath.Join(t.TempDir(), "nested", "lookups.db"),
		TTL:    ttl,
		Fields: AllFields,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCache_HitAndNegativeHit(t *testing.T) {
	next := &countingLookup{rows: map[string]Result{
		"Vega": {RA: "279.23", Dec: "38.78", Magnitude: "0.03", SpectralType: "A0Va"},
	}}
	c := openTestCache(t, next, 0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := c.Lookup(ctx, "Vega")
		require.NoError(t, err)
		assert.Equal(t, "A0Va", res.SpectralType)

		_, err = c.Lookup(ctx, "Nobody")
		assert.True(t, errors.Is(err, ErrNotFound))
	}
	assert.Equal(t, 1, next.calls["Vega"])
	assert.Equal(t, 1, next.calls["Nobody"])
}

func TestCache_Expiry(t *testing.T) {
	next := &countingLookup{rows: map[string]Result{"Vega": {RA: "1", Dec: "2"}}}
	c := openTestCache(t, next, time.Hour)
	now := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := c.Lookup(ctx, "Vega")
	require.NoError(t, err)
	now = now.Add(30 * time.Minute)
	_, err = c.Lookup(ctx, "Vega")
	require.NoError(t, err)
	assert.Equal(t, 1, next.calls["Vega"])

	now = now.Add(2 * time.Hour)
	_, err = c.Lookup(ctx, "Vega")
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls["Vega"])
}

func TestCache_TransportErrorsNotCached(t *testing.T) {
	boom := errors.New("connection reset")
	next := &countingLookup{err: boom}
	c := openTestCache(t, next, 0)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := c.Lookup(ctx, "Vega")
		assert.True(t, errors.Is(err, boom))
	}
	assert.Equal(t, 2, next.calls["Vega"])
}

func TestCache_Purge(t *testing.T) {
	next := &countingLookup{rows: map[string]Result{"Vega": {RA: "1", Dec: "2"}}}
	c := openTestCache(t, next, 0)
	ctx := context.Background()

	_, _ = c.Lookup(ctx, "Vega")
	require.NoError(t, c.Purge(ctx))
	_, _ = c.Lookup(ctx, "Vega")
	assert.Equal(t, 2, next.calls["Vega"])
}

func TestOpenCache_EmptyPath(t *testing.T) {
	_, err := OpenCache(&countingLookup{}, CacheOptions{})
	assert.Error(t, err)
}

func TestCache_Stats(t *testing.T) {
	next := &countingLookup{rows: map[string]Result{"Vega": {RA: "1", Dec: "2"}}}
	c := openTestCache(t, next, 0)
	now := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	st, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, CacheStats{}, st)

	_, _ = c.Lookup(ctx, "Vega")
	now = now.Add(time.Minute)
	_, _ = c.Lookup(ctx, "Nobody")

	st, err = c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Entries)
	assert.Equal(t, 1, st.Misses)
	assert.Equal(t, int64(1_700_000_000), st.Oldest.Unix())
	assert.Equal(t, int64(1_700_000_060), st.Newest.Unix())
}
