package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/flowstate/internal/workflow/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List workflows grouped by lifecycle status",
	Long:  `Display all workflows in the graph store, grouped into initialized and draft.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing: %w", err)
	}
	defer func() { _ = a.Close(ctx) }()

	workflows, err := a.svc.Workflows(ctx)
	if err != nil {
		return fmt.Errorf("listing workflows: %w", err)
	}

	var initialized, draft []domain.Workflow
	for _, w := range workflows {
		if w.Status == domain.StatusInitialized {
			initialized = append(initialized, w)
		} else {
			draft = append(draft, w)
		}
	}

	fmt.Println("Initialized Workflows:")
	printWorkflows(initialized)

	fmt.Println()

	fmt.Println("Draft Workflows:")
	printWorkflows(draft)

	return nil
}

func printWorkflows(workflows []domain.Workflow) {
	if len(workflows) == 0 {
		fmt.Println("  (none)")
		return
	}
	maxLen := maxIDLen(workflows)
	for _, w := range workflows {
		category := w.Category
		if category == "" {
			category = "-"
		}
		subCategory := w.SubCategory
		if subCategory == "" {
			subCategory = "-"
		}
		fmt.Printf("  %-*s  %s / %s\n", maxLen, w.ID, category, subCategory)
	}
}

// maxIDLen returns the length of the longest workflow ID in the slice.
func maxIDLen(workflows []domain.Workflow) int {
	maxLen := 0
	for _, w := range workflows {
		if len(w.ID) > maxLen {
			maxLen = len(w.ID)
		}
	}
	return maxLen
}
