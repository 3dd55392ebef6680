// Package repository defines the storage surface for workflow process graphs
// and provides the in-memory and caching implementations. The SQLite
// implementation lives in internal/infrastructure/sqlite.
package repository

import (
	"context"

	"github.com/zjrosen/flowstate/internal/workflow/domain"
)

// GraphRepository is the persistence boundary for workflows, steps, and
// transitions. The evaluator is agnostic to how graph data is fetched;
// implementations may serve from a query, a cache, or a snapshot.
type GraphRepository interface {
	// LoadWorkflow returns the workflow record, or a
	// *domain.WorkflowNotFoundError if it does not exist.
	LoadWorkflow(ctx context.Context, workflowID string) (domain.Workflow, error)

	// ListWorkflows returns all workflows ordered by ID.
	ListWorkflows(ctx context.Context) ([]domain.Workflow, error)

	// LoadGraph returns all steps and transitions belonging to a workflow.
	// A workflow with no graph yields empty slices, not an error.
	LoadGraph(ctx context.Context, workflowID string) ([]domain.Step, []domain.StepTransition, error)

	// SaveWorkflow inserts or updates a workflow record.
	SaveWorkflow(ctx context.Context, w domain.Workflow) error

	// UpdateStatus persists only the status field of a workflow, leaving all
	// other fields untouched. Returns *domain.WorkflowNotFoundError if the
	// workflow does not exist.
	UpdateStatus(ctx context.Context, workflowID string, status domain.Status) error

	// SaveStep inserts or updates a step.
	SaveStep(ctx context.Context, s domain.Step) error

	// DeleteStep removes a step. Returns *domain.StepNotFoundError if the
	// step does not exist.
	DeleteStep(ctx context.Context, stepID string) error

	// SaveTransition inserts or updates a step transition.
	SaveTransition(ctx context.Context, t domain.StepTransition) error

	// DeleteTransition removes a transition. Returns
	// *domain.TransitionNotFoundError if the transition does not exist.
	DeleteTransition(ctx context.Context, transitionID string) error
}
