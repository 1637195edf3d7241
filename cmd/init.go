package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/macro2718/starcat/internal/config"
	"github.com/macro2718/starcat/internal/fsutil"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default starcat.yaml",
	Long: `Write starcat.yaml with the default settings into the current directory
(or the path given by --config). An existing file is left alone unless
--force is given.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationNoConfig: "true"},
	RunE:        runInit,
}

var flagInitForce bool

func init() {
	initCmd.Flags().BoolVar(&flagInitForce, "force", false, "Overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}

func runInit(_ *cobra.Command, _ []string) error {
	path := cfgFile
	if path == "" {
		path = config.DefaultConfigFile
	}
	path, err := config.ExpandPath(path)
	if err != nil {
		return err
	}

	printSection("starcat init")

	if fsutil.Exists(path) && !flagInitForce {
		printSkip("", fmt.Sprintf("Config already exists: %s", path))
		return nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("cannot create %s: %w", dir, err)
		}
	}

	cfg := config.DefaultConfig()
	// Keep the portable form in the file; Load expands it per user.
	cfg.Cache.Path = ""
	if err := config.Save(cfg, path); err != nil {
		return err
	}
	printOK("", fmt.Sprintf("Config written: %s", path))

	if !fsutil.Exists(cfg.CatalogPath) {
		printWarn("", fmt.Sprintf("catalog %s not found; set catalog_path before running update", cfg.CatalogPath))
	}
	return nil
}
