package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/FluidXR/questwatch/internal/config"
	"github.com/FluidXR/questwatch/internal/logger"
)

// Version of QuestWatch.
const Version = "0.1.0"

var (
	verbose   bool
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:     "questwatch",
	Short:   "Watch Meta Quest headsets and other ADB devices come and go",
	Version: Version,
	Long: `QuestWatch keeps a tracking connection to the ADB server and reports
devices as they connect, disconnect or change state. Transitions are
recorded locally and can be published to NATS.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logCfg := cfg.Log
		if verbose {
			logCfg.Debug = true
		}
		closer, err := logger.Init(logCfg)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		logCloser = closer
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},
}

// requireDeps returns a PersistentPreRunE that checks for external dependencies
// and prompts to nickname any new devices.
func requireDeps() func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := rootCmd.PersistentPreRunE(cmd, args); err != nil {
			return err
		}
		if err := checkDeps(); err != nil {
			return err
		}
		checkNewDevices(cmd.Context())
		return nil
	}
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}
