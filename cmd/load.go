package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/flowstate/internal/definitions"
)

var loadCmd = &cobra.Command{
	Use:   "load [dir]",
	Short: "Load workflow definitions from a directory",
	Long: `Apply every YAML workflow definition in the directory to the graph store
and reconcile each workflow's status. Defaults to the configured
definitions.dir when no directory is given. Bad files are skipped with a
warning.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLoad,
}

func init() {
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	dir := cfg.Definitions.Dir
	if len(args) == 1 {
		dir = args[0]
	}
	if dir == "" {
		return fmt.Errorf("no definitions directory: pass one or set definitions.dir")
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing: %w", err)
	}
	defer func() { _ = a.Close(ctx) }()

	n, err := definitions.LoadDir(ctx, a.svc, dir)
	if err != nil {
		return err
	}

	fmt.Printf("Loaded %d definition(s) from %s\n", n, dir)
	return nil
}
