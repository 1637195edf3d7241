package cmd

import (
	"fmt"
	"os"

	"github.com/macro2718/starcat/internal/fsutil"
	"github.com/macro2718/starcat/internal/updater"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [catalog]",
	Short: "Validate the catalog without contacting SIMBAD",
	Long: `Parse the catalog and report anything an update would skip or refuse:
records without a name, repeated keys, non-decimal coordinates and
formatting that an update would change. Run this before committing edits
to the catalog.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(_ *cobra.Command, args []string) error {
	cfg, err := mustConfig()
	if err != nil {
		return err
	}
	path := cfg.CatalogPath
	if len(args) == 1 {
		path = args[0]
	}

	printSection("starcat check")
	fmt.Println()

	// ── Catalog file ──────────────────────────────────────────────────────────
	fmt.Println("[ Catalog ]")
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read catalog %s: %w", path, err)
	}
	rep, err := updater.Check(string(data), updaterOptions(cfg))
	if err != nil {
		printErr("", err.Error())
		return fmt.Errorf("%s cannot be parsed", path)
	}
	printOK("", fmt.Sprintf("%s: %d record(s), %d named", path, rep.Records, rep.Named))
	fmt.Println()

	// ── Record problems ───────────────────────────────────────────────────────
	fmt.Println("[ Records ]")
	for _, is := range rep.Unnamed {
		printSkip(issueName(is), fmt.Sprintf("no %s, update will skip it", cfg.Fields.Name))
	}
	for _, is := range rep.Duplicates {
		printWarn(issueName(is), is.Detail)
	}
	for _, is := range rep.BadCoords {
		printWarn(issueName(is), is.Detail)
	}
	if len(rep.Unnamed)+len(rep.Duplicates)+len(rep.BadCoords) == 0 {
		printOK("", "no problems found")
	}
	fmt.Println()

	// ── Layout ────────────────────────────────────────────────────────────────
	fmt.Println("[ Layout ]")
	if rep.Canonical {
		printOK("", "already in canonical layout")
	} else {
		printInfo("", "an update will reformat whitespace or commas")
	}
	if fsutil.Exists(cfg.MissingPath) {
		printMiss("", fmt.Sprintf("%s exists from an earlier run", cfg.MissingPath))
	}
	fmt.Println()

	fmt.Println("===================")
	if !rep.OK() {
		fmt.Fprintln(os.Stderr, "✗  One or more checks failed. See details above.")
		return fmt.Errorf("check found issues")
	}
	fmt.Println("✓  Catalog is ready for update.")
	return nil
}

// issueName labels an issue with its record number and, when known, its name.
func issueName(is updater.Issue) string {
	if is.Label == "" {
		return fmt.Sprintf("#%d", is.Index)
	}
	return fmt.Sprintf("#%d %s", is.Index, is.Label)
}
