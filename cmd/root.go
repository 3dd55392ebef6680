// Package cmd implements the flowstate command-line interface.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zjrosen/flowstate/internal/config"
	"github.com/zjrosen/flowstate/internal/log"
)

var (
	cfgFile string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:   "flowstate",
	Short: "Workflow completeness engine and task dispatcher",
	Long: `flowstate derives workflow lifecycle status from the completeness of each
workflow's step graph and dispatches cross-service notification tasks over a
message broker.

A workflow is initialized once its category and sub-category are set, it has
at least one step, every step has an owning role, and every transition
touching those steps names a source, a destination, and an action. Anything
less keeps the workflow in draft.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}

		if debug, _ := cmd.Flags().GetBool("debug"); cmd.Flags().Changed("debug") {
			cfg.Log.Debug = debug
		}

		if cfg.Log.File != "" {
			return log.Init(cfg.Log.File, cfg.Log.Debug)
		}
		log.InitWriter(os.Stderr, cfg.Log.Debug)
		return nil
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.flowstate/config.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
}
