package main

import (
	"fmt"
	"os"

	"gauge-tracker/internal/config"
	"gauge-tracker/internal/decay"
	"gauge-tracker/internal/gauge"
	"gauge-tracker/internal/logging"

	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	logFormat  string

	// Set by the persistent pre-run before any subcommand executes.
	profile *config.Profile
)

var rootCmd = &cobra.Command{
	Use:   "gaugetool",
	Short: "Gauge reader and decay projector",
	Long: "gaugetool reads circular health gauges out of screenshots and projects, " +
		"from reading histories, when each tracked object will reach zero.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to gauge profile YAML (defaults built in)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides profile)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text or json (overrides profile)")

	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(synthCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(rankCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads the profile and stores the logger in the command context.
func setup(cmd *cobra.Command) error {
	p := config.Default()
	if configPath != "" {
		var err error
		if p, err = config.Load(configPath); err != nil {
			return err
		}
	}

	level, format := p.Log.Level, p.Log.Format
	if logLevel != "" {
		level = logLevel
	}
	if logFormat != "" {
		format = logFormat
	}
	l, err := logging.New(level, format, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	profile = p
	cmd.SetContext(logging.NewContext(cmd.Context(), l))
	return nil
}

// newReader builds a gauge reader from the active profile, applying
// optional mode and resolution overrides. Zero steps keeps the profile's.
func newReader(mode string, steps int) (*gauge.Reader, error) {
	cfg := profile.ReaderConfig()
	if mode != "" {
		m, err := gauge.ParseMode(mode)
		if err != nil {
			return nil, err
		}
		cfg = cfg.WithMode(m)
	}
	if steps != 0 {
		cfg = cfg.WithResolution(steps)
	}
	return gauge.NewReader(cfg)
}

// newProjector builds a projector from the active profile, applying an
// optional strategy override.
func newProjector(strategy string) (*decay.Projector, error) {
	if strategy == "" {
		strategy = profile.Projection.Strategy
	}
	s, err := decay.ParseStrategy(strategy, profile.Cycle())
	if err != nil {
		return nil, err
	}
	return decay.NewProjector(s), nil
}
