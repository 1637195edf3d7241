package updater

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/macro2718/starcat/internal/fsutil"
	"github.com/macro2718/starcat/internal/lookup"
	"go.uber.org/zap"
)

// RunConfig describes one file-level update.
type RunConfig struct {
	CatalogPath string
	// MissingPath receives unresolved names, one per line. Empty disables
	// the side file.
	MissingPath string
	// LockDir holds the run lock; empty selects fsutil.LockDir. Nothing is
	// created next to the catalog.
	LockDir     string
	LockTimeout time.Duration
	DryRun      bool
	Lookup      lookup.Lookup
	Options     Options
}

// Report is the outcome of Run.
type Report struct {
	Result
	Changed        bool // catalog content differs from what was read
	Written        bool // catalog was rewritten on disk
	MissingWritten bool
	MissingRemoved bool
}

// Run rewrites the catalog at cfg.CatalogPath in place. The catalog is locked
// for the duration of the run, read in full before anything is written, and
// replaced atomically. Nothing on disk changes when an error is returned
// before the catalog write.
func Run(ctx context.Context, cfg RunConfig) (Report, error) {
	if cfg.Lookup == nil {
		return Report{}, fmt.Errorf("no lookup configured")
	}
	log := cfg.Options.Logger
	if log == nil {
		log = zap.NewNop()
	}
	timeout := cfg.LockTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	lockDir := cfg.LockDir
	if lockDir == "" {
		d, err := fsutil.LockDir()
		if err != nil {
			return Report{}, err
		}
		lockDir = d
	}
	lockPath, err := fsutil.LockPath(lockDir, cfg.CatalogPath)
	if err != nil {
		return Report{}, err
	}
	unlock, err := fsutil.Lock(lockPath, timeout)
	if err != nil {
		return Report{}, err
	}
	defer unlock()

	data, err := os.ReadFile(cfg.CatalogPath)
	if err != nil {
		return Report{}, fmt.Errorf("cannot read catalog %s: %w", cfg.CatalogPath, err)
	}
	text := string(data)

	res, err := UpdateDocument(ctx, text, cfg.Lookup, cfg.Options)
	if err != nil {
		return Report{}, fmt.Errorf("%s: %w", cfg.CatalogPath, err)
	}
	rep := Report{Result: res, Changed: res.Text != text}
	log.Debug("catalog processed",
		zap.String("path", cfg.CatalogPath),
		zap.Int("records", res.Records),
		zap.Int("updated", res.Updated),
		zap.Int("skipped", res.Skipped),
		zap.Int("unresolved", len(res.Unresolved)),
		zap.Bool("changed", rep.Changed))

	if cfg.DryRun {
		return rep, nil
	}

	if rep.Changed {
		if err := fsutil.WriteFileAtomic(cfg.CatalogPath, []byte(res.Text), 0o644); err != nil {
			return rep, err
		}
		rep.Written = true
	}

	if cfg.MissingPath == "" {
		return rep, nil
	}
	if len(res.Unresolved) > 0 {
		body := strings.Join(res.Unresolved, "\n") + "\n"
		if err := fsutil.WriteFileAtomic(cfg.MissingPath, []byte(body), 0o644); err != nil {
			return rep, fmt.Errorf("cannot write missing-star list: %w", err)
		}
		rep.MissingWritten = true
		return rep, nil
	}
	if fsutil.Exists(cfg.MissingPath) {
		if err := fsutil.RemoveFile(cfg.MissingPath); err != nil {
			return rep, fmt.Errorf("cannot remove stale missing-star list: %w", err)
		}
		rep.MissingRemoved = true
	}
	return rep, nil
}
