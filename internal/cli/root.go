package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/synheart/synheart-bpsim/internal/config"
	"github.com/synheart/synheart-bpsim/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "bpsim",
	Short: "bpsim - blood-pressure measurement simulator and outlier filter",
	Long: `bpsim learns a patient's blood-pressure profile from a historical diary,
simulates daily home measurements with injected out-of-range and missing
readings, and evaluates causal outlier rules against them.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&globalOpts.ConfigPath, "config", "c", "", "Config file (default: ./bpsim.yaml when present)")
	rootCmd.PersistentFlags().StringVarP(&globalOpts.Format, "format", "f", globalOpts.Format, "Output format: json|ndjson|table")
	rootCmd.PersistentFlags().StringVar(&globalOpts.LogLevel, "log-level", "", "Log level: debug|info|warn|error")
	rootCmd.PersistentFlags().StringVar(&globalOpts.LogFormat, "log-format", "", "Log format: console|json")

	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(filterCmd)
	rootCmd.AddCommand(streamCmd)
	rootCmd.AddCommand(scenariosCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(versionCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(globalOpts.ConfigPath)
	if err != nil {
		return err
	}

	if globalOpts.LogLevel != "" {
		cfg.Log.Level = globalOpts.LogLevel
	}
	if globalOpts.LogFormat != "" {
		cfg.Log.Format = globalOpts.LogFormat
	}

	log, err = logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	return nil
}
