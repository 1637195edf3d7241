package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/macro2718/starcat/internal/coord"
	"github.com/macro2718/starcat/internal/lookup"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type lookupFlags struct {
	offline string
	noCache bool
}

type lookupFlagsKey struct{}

var lookupCmd = &cobra.Command{
	Use:   "lookup NAME...",
	Short: "Resolve star names and print what an update would write",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runLookup,
}

func init() {
	var f lookupFlags
	lookupCmd.Flags().StringVar(&f.offline, "offline", "", "Resolve names from a YAML lookup table instead of SIMBAD")
	lookupCmd.Flags().BoolVar(&f.noCache, "no-cache", false, "Bypass the lookup cache")
	lookupCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		cmd.SetContext(context.WithValue(cmd.Context(), lookupFlagsKey{}, f))
		return nil
	}
	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	f, ok := cmd.Context().Value(lookupFlagsKey{}).(lookupFlags)
	if !ok {
		return fmt.Errorf("internal error: lookup flags not initialized")
	}
	cfg, err := mustConfig()
	if err != nil {
		return err
	}
	applyUpdateFlags(cfg, updateFlags{offline: f.offline, noCache: f.noCache})

	lk, closeLookup, err := lookup.NewFromConfig(cfg.LookupConfig(), logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeLookup(); err != nil {
			logger.Warn("cannot close lookup cache", zap.Error(err))
		}
	}()

	var missing int
	for _, name := range args {
		printSection(name)
		res, err := lk.Lookup(cmd.Context(), lookup.NormalizeName(name))
		if err == nil && !res.HasPosition() {
			err = lookup.ErrNotFound
		}
		if err != nil {
			if errors.Is(err, lookup.ErrNotFound) {
				printMiss("", "not found")
			} else {
				printErr("", err.Error())
			}
			missing++
			continue
		}
		for _, line := range describeResult(res) {
			printOK("", line)
		}
	}
	if missing > 0 {
		return fmt.Errorf("%d of %d name(s) could not be resolved", missing, len(args))
	}
	return nil
}

// describeResult formats raw and normalized values for display.
func describeResult(res lookup.Result) []string {
	out := []string{
		axisLine("ra", res.RA, coord.RightAscension),
		axisLine("dec", res.Dec, coord.Declination),
	}
	if res.Magnitude != "" {
		out = append(out, fmt.Sprintf("%-10s %s", "magnitude", res.Magnitude))
	}
	if res.SpectralType != "" {
		out = append(out, fmt.Sprintf("%-10s %s", "sp_type", res.SpectralType))
	}
	return out
}

func axisLine(label, raw string, axis coord.Axis) string {
	deg, err := coord.Normalize(raw, axis)
	if err != nil {
		return fmt.Sprintf("%-10s %q (%v)", label, raw, err)
	}
	return fmt.Sprintf("%-10s %s  →  %s°", label, raw, strconv.FormatFloat(deg, 'f', 6, 64))
}
