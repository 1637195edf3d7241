package cmd

import (
	"fmt"

	"github.com/macro2718/starcat/internal/fsutil"
	"github.com/macro2718/starcat/internal/lookup"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the SIMBAD lookup cache",
}

var cachePathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the cache database location",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := mustConfig()
		if err != nil {
			return err
		}
		fmt.Println(cfg.Cache.Path)
		return nil
	},
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete every cached lookup",
	Args:  cobra.NoArgs,
	RunE:  runCachePurge,
}

func init() {
	cacheCmd.AddCommand(cachePathCmd, cachePurgeCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCachePurge(cmd *cobra.Command, _ []string) error {
	cfg, err := mustConfig()
	if err != nil {
		return err
	}
	printSection("starcat cache purge")
	if !fsutil.Exists(cfg.Cache.Path) {
		printSkip("", fmt.Sprintf("no cache at %s", cfg.Cache.Path))
		return nil
	}

	c, err := lookup.OpenCache(nil, lookup.CacheOptions{Path: cfg.Cache.Path, Logger: logger})
	if err != nil {
		return err
	}
	defer c.Close()
	if err := c.Purge(cmd.Context()); err != nil {
		return err
	}
	printOK("", fmt.Sprintf("Purged %s", cfg.Cache.Path))
	return nil
}
