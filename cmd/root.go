package cmd

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/macro2718/starcat/internal/config"
	"github.com/macro2718/starcat/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// annotationNoConfig marks commands that run without loading starcat.yaml.
const annotationNoConfig = "starcat/no-config"

var (
	cfgFile string
	verbose bool

	// appConfig and logger are set by the root PersistentPreRunE.
	appConfig *config.Config
	logger    = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:           "starcat",
	Short:         "starcat: refresh star catalog positions from SIMBAD",
	SilenceUsage:  true, // don't print usage on operational errors
	SilenceErrors: true, // Execute prints them with the ✗ icon
	Long: `starcat keeps a hand-written star catalog (data/stars.js) in step with
the SIMBAD astronomical database. It rewrites each star's ra, dec, magnitude
and sp_type fields and leaves the rest of the file as it was.`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if cmd.Annotations[annotationNoConfig] == "true" {
			return nil
		}
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		appConfig = cfg

		l, err := logging.New(cfg.LogLevel, verbose)
		if err != nil {
			return err
		}
		logger = l.With(zap.String("run_id", uuid.NewString()), zap.String("cmd", cmd.Name()))
		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./"+config.DefaultConfigFile+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// Execute is called by main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printErr("", err.Error())
		os.Exit(1)
	}
}

// mustConfig returns the loaded config or an error if a command forgot to run
// the root pre-run hook.
func mustConfig() (*config.Config, error) {
	if appConfig == nil {
		return nil, fmt.Errorf("internal error: config not loaded")
	}
	return appConfig, nil
}
