package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zjrosen/flowstate/internal/definitions"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a definitions directory and keep statuses reconciled",
	Long: `Load workflow definitions from the directory, then watch it for changes.
Every change batch reloads the directory and re-reconciles the affected
workflows. Runs until interrupted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := cfg.Definitions.Dir
	if len(args) == 1 {
		dir = args[0]
	}
	if dir == "" {
		return fmt.Errorf("no definitions directory: pass one or set definitions.dir")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing: %w", err)
	}
	defer func() { _ = a.Close(context.Background()) }()

	n, err := definitions.LoadDir(ctx, a.svc, dir)
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %d definition(s), watching %s\n", n, dir)

	watcher := definitions.NewWatcher(a.svc, dir, cfg.Definitions.Debounce)
	if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
