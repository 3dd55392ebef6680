package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile <workflow-id>",
	Short: "Recompute and persist one workflow's status",
	Long: `Re-evaluate the completeness of a workflow's step graph and persist the
derived status if it changed. Prints the status transition, or the current
status when nothing changed.`,
	Args: cobra.ExactArgs(1),
	RunE: runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	workflowID := args[0]

	a, err := newApp(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing: %w", err)
	}
	defer func() { _ = a.Close(ctx) }()

	change, err := a.svc.Reconcile(ctx, workflowID)
	if err != nil {
		return err
	}

	if change == nil {
		w, err := a.svc.Workflow(ctx, workflowID)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %s (unchanged)\n", workflowID, w.Status)
		return nil
	}

	fmt.Printf("%s: %s -> %s\n", workflowID, change.OldStatus, change.NewStatus)
	return nil
}
