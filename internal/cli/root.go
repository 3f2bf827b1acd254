// Package cli implements the scanoutliers command line interface.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"scanoutliers/pkg/config"
)

// envPrefix prefixes environment overrides, e.g. SCANOUTLIERS_DETECTION_METRIC
const envPrefix = "SCANOUTLIERS"

// app carries the state shared by the commands of one invocation
type app struct {
	v      *viper.Viper
	log    *slog.Logger
	errOut io.Writer
}

// NewRootCommand builds the scanoutliers command tree. Each call returns an
// independent tree with its own viper instance.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}
	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:   "scanoutliers",
		Short: "Flag outlier volumes in 4D fMRI scans",
		Long: `scanoutliers reduces a 4D functional MRI image to one measure per frame
(dvars or SPM global) and flags the frames whose measure lies outside the
interquartile range band.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.errOut = cmd.ErrOrStderr()
			a.log = newLogger(a.errOut, a.v.GetBool("output.verbose"))
		},
	}

	rootCmd.PersistentFlags().String("config", "", "path to a YAML configuration file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	a.v.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	a.v.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(newDetectCommand(a))
	rootCmd.AddCommand(newValidateCommand(a))
	rootCmd.AddCommand(newConfigCommand(a))

	return rootCmd
}

// Execute runs the command tree and exits the process with a non-zero
// status code on failure.
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
		os.Exit(1)
	}
}

// newLogger creates the text logger used by the commands
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadConfig reads the configuration file and applies flag and environment
// overrides. Precedence: flag, environment, file, defaults.
func (a *app) loadConfig() (*config.Config, error) {
	path := a.v.GetString("config")
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	if a.v.IsSet("detection.metric") {
		cfg.Detection.Metric = a.v.GetString("detection.metric")
	}
	if a.v.IsSet("detection.proportion") {
		cfg.Detection.Proportion = a.v.GetFloat64("detection.proportion")
	}
	if a.v.IsSet("processing.numCores") {
		cfg.Processing.NumCores = a.v.GetInt("processing.numCores")
	}
	if a.v.IsSet("output.verbose") {
		cfg.Output.Verbose = a.v.GetBool("output.verbose")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// The file may enable verbose output the flags did not
	if cfg.Output.Verbose && a.errOut != nil {
		a.log = newLogger(a.errOut, true)
	}
	if a.log != nil {
		a.log.Debug("configuration loaded",
			"file", path,
			"metric", cfg.Detection.Metric,
			"proportion", cfg.Detection.Proportion,
			"cores", cfg.Processing.NumCores)
	}
	return cfg, nil
}
