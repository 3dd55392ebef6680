package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/flowstate/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long:  `Create a commented default configuration at ~/.flowstate/config.yaml (or the path given with --config).`,
	// Config loading in the root PersistentPreRunE is skipped: init exists
	// precisely when there is no config yet.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE:              runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		path = config.DefaultConfigPath()
	}

	if err := config.WriteDefaultConfig(path); err != nil {
		return err
	}

	fmt.Printf("Wrote default config to %s\n", path)
	return nil
}
