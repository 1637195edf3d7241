package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/macro2718/starcat/internal/catalog"
	"github.com/macro2718/starcat/internal/fsutil"
	"github.com/macro2718/starcat/internal/lookup"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the catalog, missing-star list and cache state",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := mustConfig()
	if err != nil {
		return err
	}

	printSection("Catalog")
	if info, err := os.Stat(cfg.CatalogPath); err != nil {
		printErr("", fmt.Sprintf("cannot stat %s: %v", cfg.CatalogPath, err))
	} else {
		data, err := os.ReadFile(cfg.CatalogPath)
		if err != nil {
			return fmt.Errorf("cannot read catalog %s: %w", cfg.CatalogPath, err)
		}
		if _, records, err := catalog.Parse(string(data)); err != nil {
			printErr("", fmt.Sprintf("%s: %v", cfg.CatalogPath, err))
		} else {
			printOK("", fmt.Sprintf("%s: %d record(s), modified %s",
				cfg.CatalogPath, len(records), info.ModTime().Format(time.DateTime)))
		}
	}

	printSection("Missing stars")
	names, err := readMissing(cfg.MissingPath)
	switch {
	case err != nil:
		printErr("", err.Error())
	case names == nil:
		printOK("", "every star resolved on the last update")
	default:
		for _, n := range names {
			printMiss(n, "")
		}
		printInfo("", fmt.Sprintf("%d name(s) in %s", len(names), cfg.MissingPath))
	}

	printSection("Lookup")
	if cfg.Provider == "table" {
		printInfo("", fmt.Sprintf("offline table: %s", cfg.TablePath))
	} else {
		printInfo("", fmt.Sprintf("SIMBAD: %s (%.4g req/s)", cfg.SIMBAD.BaseURL, cfg.SIMBAD.RatePerSecond))
	}
	switch {
	case !cfg.Cache.Enabled:
		printSkip("", "cache disabled")
	case !fsutil.Exists(cfg.Cache.Path):
		printSkip("", fmt.Sprintf("no cache yet at %s", cfg.Cache.Path))
	default:
		c, err := lookup.OpenCache(nil, lookup.CacheOptions{Path: cfg.Cache.Path, Logger: logger})
		if err != nil {
			return err
		}
		defer c.Close()
		st, err := c.Stats(cmd.Context())
		if err != nil {
			return err
		}
		msg := fmt.Sprintf("%s: %d entr(ies), %d negative", cfg.Cache.Path, st.Entries, st.Misses)
		if st.Entries > 0 {
			msg += fmt.Sprintf(", newest %s", st.Newest.Format(time.DateTime))
		}
		printOK("", msg)
	}
	return nil
}

// readMissing returns the names in the missing-star list, or nil when the
// file does not exist.
func readMissing(path string) ([]string, error) {
	if path == "" || !fsutil.Exists(path) {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", path, err)
	}
	defer f.Close()

	names := []string{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			names = append(names, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	return names, nil
}
