package engine

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/flowstate/internal/log"
	"github.com/zjrosen/flowstate/internal/workflow/domain"
)

// GraphSource is the read/write surface the Reconciler needs from a graph
// store. It is a narrow view of repository.GraphRepository.
type GraphSource interface {
	// LoadWorkflow returns the workflow record, or a
	// *domain.WorkflowNotFoundError if it does not exist.
	LoadWorkflow(ctx context.Context, workflowID string) (domain.Workflow, error)

	// LoadGraph returns all steps and transitions belonging to a workflow.
	LoadGraph(ctx context.Context, workflowID string) ([]domain.Step, []domain.StepTransition, error)

	// UpdateStatus persists only the status field of a workflow.
	// Other workflow fields must not be touched.
	UpdateStatus(ctx context.Context, workflowID string, status domain.Status) error
}

// Reconciler derives a workflow's lifecycle status from its process graph and
// persists the status when it changed. Reconcile is idempotent: repeated calls
// with unchanged inputs write nothing after the first.
//
// Concurrent reconciliations of the same workflow are not coordinated here;
// the store's field-level last-write-wins semantics on the single status
// column make racing identical evaluations harmless, and reconciliation is
// re-invoked on every graph mutation so status converges.
type Reconciler struct {
	source GraphSource
	tracer trace.Tracer
}

// NewReconciler creates a Reconciler reading and writing through source.
func NewReconciler(source GraphSource) *Reconciler {
	return &Reconciler{
		source: source,
		tracer: otel.Tracer("flowstate/engine"),
	}
}

// Reconcile recomputes the status of a workflow and persists it iff it
// differs from the stored status. Returns the change record when a write
// happened, nil when status was already current. Store failures are returned
// to the caller; evaluation itself never fails, it degrades to draft.
func (r *Reconciler) Reconcile(ctx context.Context, workflowID string) (*domain.StatusChange, error) {
	ctx, span := r.tracer.Start(ctx, "Reconcile",
		trace.WithAttributes(attribute.String("workflow.id", workflowID)))
	defer span.End()

	wf, err := r.source.LoadWorkflow(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to load workflow: %w", err)
	}

	steps, transitions, err := r.source.LoadGraph(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to load workflow graph: %w", err)
	}

	newStatus := StatusFor(wf, steps, transitions)
	span.SetAttributes(
		attribute.String("workflow.status.old", wf.Status.String()),
		attribute.String("workflow.status.new", newStatus.String()),
	)

	if newStatus == wf.Status {
		log.Debug(log.CatEngine, "Status unchanged", "workflow", workflowID, "status", wf.Status)
		return nil, nil
	}

	if err := r.source.UpdateStatus(ctx, workflowID, newStatus); err != nil {
		return nil, fmt.Errorf("failed to update workflow status: %w", err)
	}

	log.Info(log.CatEngine, "Workflow status changed",
		"workflow", workflowID,
		"old", wf.Status,
		"new", newStatus)

	return &domain.StatusChange{
		WorkflowID: workflowID,
		OldStatus:  wf.Status,
		NewStatus:  newStatus,
	}, nil
}
