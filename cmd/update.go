package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/macro2718/starcat/internal/config"
	"github.com/macro2718/starcat/internal/lookup"
	"github.com/macro2718/starcat/internal/updater"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// updateFlags holds flag values for the `starcat update` command.
type updateFlags struct {
	catalog string
	missing string
	dryRun  bool
	offline string
	noCache bool
	timeout time.Duration
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Refresh ra, dec, magnitude and sp_type from SIMBAD",
	Long: `Look up every record's nameSIMBAD and rewrite its coordinates in decimal
degrees. Names SIMBAD cannot resolve are listed in the missing-star file;
the file is removed once every name resolves.

  starcat update                       Query SIMBAD (cached)
  starcat update --offline table.yaml  Use a local lookup table instead
  starcat update --dry-run             Report what would change`,
	Args: cobra.NoArgs,
	RunE: runUpdate,
}

func init() {
	var f updateFlags
	updateCmd.Flags().StringVar(&f.catalog, "catalog", "", "Catalog file (overrides catalog_path)")
	updateCmd.Flags().StringVar(&f.missing, "missing", "", "Missing-star list (overrides missing_path)")
	updateCmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Resolve every star but do not write any file")
	updateCmd.Flags().StringVar(&f.offline, "offline", "", "Resolve names from a YAML lookup table instead of SIMBAD")
	updateCmd.Flags().BoolVar(&f.noCache, "no-cache", false, "Bypass the lookup cache")
	updateCmd.Flags().DurationVar(&f.timeout, "timeout", 0, "Overall timeout for the run (0 = none)")
	updateCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		cmd.SetContext(context.WithValue(cmd.Context(), updateFlagsKey{}, f))
		return nil
	}
	rootCmd.AddCommand(updateCmd)
}

type updateFlagsKey struct{}

// runUpdate implements the `starcat update` command.
func runUpdate(cmd *cobra.Command, _ []string) error {
	f, ok := cmd.Context().Value(updateFlagsKey{}).(updateFlags)
	if !ok {
		return fmt.Errorf("internal error: update flags not initialized")
	}
	cfg, err := mustConfig()
	if err != nil {
		return err
	}
	applyUpdateFlags(cfg, f)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	lk, closeLookup, err := lookup.NewFromConfig(cfg.LookupConfig(), logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeLookup(); err != nil {
			logger.Warn("cannot close lookup cache", zap.Error(err))
		}
	}()

	printSection("starcat update")
	printInfo("", fmt.Sprintf("catalog: %s", cfg.CatalogPath))
	if cfg.Provider == "table" {
		printInfo("", fmt.Sprintf("lookup table: %s", cfg.TablePath))
	} else {
		printInfo("", fmt.Sprintf("SIMBAD: %s", cfg.SIMBAD.BaseURL))
	}

	rep, err := updater.Run(ctx, updater.RunConfig{
		CatalogPath: cfg.CatalogPath,
		MissingPath: cfg.MissingPath,
		LockDir:     cfg.LockDir,
		LockTimeout: cfg.LockTimeout,
		DryRun:      f.dryRun,
		Lookup:      lk,
		Options:     updaterOptions(cfg),
	})
	if err != nil {
		return err
	}

	fmt.Println()
	printOK("", fmt.Sprintf("Updated %d of %d star(s)", rep.Updated, rep.Records))
	if rep.Skipped > 0 {
		printSkip("", fmt.Sprintf("Skipped %d record(s) without a %s", rep.Skipped, cfg.Fields.Name))
	}
	if n := len(rep.Unresolved); n > 0 {
		for _, name := range rep.Unresolved {
			printMiss(name, "not found")
		}
		if f.dryRun {
			printWarn("", fmt.Sprintf("Missing data for %d star(s)", n))
		} else {
			printWarn("", fmt.Sprintf("Missing data for %d star(s), see %s", n, cfg.MissingPath))
		}
	} else if rep.MissingRemoved {
		printInfo("", fmt.Sprintf("Removed stale %s", cfg.MissingPath))
	}

	switch {
	case f.dryRun && rep.Changed:
		printInfo("", fmt.Sprintf("Dry run: %s would be rewritten", cfg.CatalogPath))
	case f.dryRun:
		printInfo("", fmt.Sprintf("Dry run: %s is already up to date", cfg.CatalogPath))
	case rep.Written:
		printOK("", fmt.Sprintf("Completed rewriting %s", cfg.CatalogPath))
	default:
		printOK("", fmt.Sprintf("%s is already up to date", cfg.CatalogPath))
	}
	return nil
}

// applyUpdateFlags lets command-line flags win over starcat.yaml.
func applyUpdateFlags(cfg *config.Config, f updateFlags) {
	if f.catalog != "" {
		cfg.CatalogPath = f.catalog
	}
	if f.missing != "" {
		cfg.MissingPath = f.missing
	}
	if f.offline != "" {
		cfg.Provider = "table"
		cfg.TablePath = f.offline
	}
	if f.noCache {
		cfg.Cache.Enabled = false
	}
}

// updaterOptions maps the config's field names and layout onto the updater.
func updaterOptions(cfg *config.Config) updater.Options {
	style := cfg.Style()
	return updater.Options{
		Fields: updater.FieldNames{
			Name:         cfg.Fields.Name,
			RA:           cfg.Fields.RA,
			Dec:          cfg.Fields.Dec,
			Magnitude:    cfg.Fields.Magnitude,
			SpectralType: cfg.Fields.SpectralType,
		},
		Style:  &style,
		Logger: logger,
	}
}
