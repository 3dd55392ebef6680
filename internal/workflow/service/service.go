// Package service is the mutation boundary for workflow process graphs.
// Every create, update, or delete of a step or transition goes through the
// Service, which re-reconciles the owning workflow's status in the same
// logical operation. Nothing in this repository mutates graph data behind
// the Service's back.
package service

import (
	"context"
	"fmt"

	"github.com/zjrosen/flowstate/internal/dispatch"
	"github.com/zjrosen/flowstate/internal/log"
	"github.com/zjrosen/flowstate/internal/workflow/domain"
	"github.com/zjrosen/flowstate/internal/workflow/engine"
	"github.com/zjrosen/flowstate/internal/workflow/events"
	"github.com/zjrosen/flowstate/internal/workflow/repository"
)

// DefaultQueue is the broker queue assignment notifications are sent to.
const DefaultQueue = "default"

// DefaultAssignmentTask is the fully-qualified name of the remote task that
// creates an assignment notification. The consumer resolves it independently.
const DefaultAssignmentTask = "notifications.tasks.create_assignment_notification"

// Config holds dispatch settings for the Service.
type Config struct {
	// Queue is the broker queue for notifications. Empty means DefaultQueue.
	Queue string
	// AssignmentTask is the remote task name for assignment notifications.
	// Empty means DefaultAssignmentTask.
	AssignmentTask string
}

// Service coordinates graph mutations, status reconciliation, notification
// dispatch, and event publication.
type Service struct {
	repo       repository.GraphRepository
	reconciler *engine.Reconciler
	dispatcher dispatch.Dispatcher
	broker     *events.Broker
	queue      string
	task       string
}

// New creates a Service over the given repository and dispatcher.
// The dispatcher carries its own broker connection config; there is no
// process-global broker reference.
func New(repo repository.GraphRepository, dispatcher dispatch.Dispatcher, cfg Config) *Service {
	queue := cfg.Queue
	if queue == "" {
		queue = DefaultQueue
	}
	task := cfg.AssignmentTask
	if task == "" {
		task = DefaultAssignmentTask
	}
	return &Service{
		repo:       repo,
		reconciler: engine.NewReconciler(repo),
		dispatcher: dispatcher,
		broker:     events.NewBroker(),
		queue:      queue,
		task:       task,
	}
}

// Broker returns the event broker for subscriptions.
func (s *Service) Broker() *events.Broker {
	return s.broker
}

// Workflow returns a workflow record.
func (s *Service) Workflow(ctx context.Context, workflowID string) (domain.Workflow, error) {
	return s.repo.LoadWorkflow(ctx, workflowID)
}

// Workflows returns all workflow records.
func (s *Service) Workflows(ctx context.Context) ([]domain.Workflow, error) {
	return s.repo.ListWorkflows(ctx)
}

// Graph returns the steps and transitions of a workflow.
func (s *Service) Graph(ctx context.Context, workflowID string) ([]domain.Step, []domain.StepTransition, error) {
	return s.repo.LoadGraph(ctx, workflowID)
}

// SaveWorkflow inserts or updates a workflow record and reconciles its status.
// New workflows start in draft; the stored status field of w is ignored and
// recomputed from the graph.
func (s *Service) SaveWorkflow(ctx context.Context, w domain.Workflow) (*domain.StatusChange, error) {
	if w.Status == "" {
		w.Status = domain.StatusDraft
	}
	if existing, err := s.repo.LoadWorkflow(ctx, w.ID); err == nil {
		// Status is owned by the reconciler, not the caller.
		w.Status = existing.Status
	}
	if err := s.repo.SaveWorkflow(ctx, w); err != nil {
		return nil, fmt.Errorf("failed to save workflow: %w", err)
	}
	s.broker.Publish(events.NewEvent(events.EventWorkflowSaved, w.ID))
	return s.reconcile(ctx, w.ID)
}

// SaveStep inserts or updates a step and reconciles the owning workflow.
func (s *Service) SaveStep(ctx context.Context, step domain.Step) (*domain.StatusChange, error) {
	if err := s.repo.SaveStep(ctx, step); err != nil {
		return nil, fmt.Errorf("failed to save step: %w", err)
	}
	s.broker.Publish(events.NewEvent(events.EventStepSaved, step.WorkflowID).WithStep(step.ID))
	return s.reconcile(ctx, step.WorkflowID)
}

// DeleteStep removes a step and reconciles the owning workflow.
func (s *Service) DeleteStep(ctx context.Context, workflowID, stepID string) (*domain.StatusChange, error) {
	if err := s.repo.DeleteStep(ctx, stepID); err != nil {
		return nil, err
	}
	s.broker.Publish(events.NewEvent(events.EventStepDeleted, workflowID).WithStep(stepID))
	return s.reconcile(ctx, workflowID)
}

// SaveTransition inserts or updates a transition and reconciles the owning
// workflow.
func (s *Service) SaveTransition(ctx context.Context, t domain.StepTransition) (*domain.StatusChange, error) {
	if err := s.repo.SaveTransition(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to save transition: %w", err)
	}
	s.broker.Publish(events.NewEvent(events.EventTransitionSaved, t.WorkflowID).WithTransition(t.ID))
	return s.reconcile(ctx, t.WorkflowID)
}

// DeleteTransition removes a transition and reconciles the owning workflow.
func (s *Service) DeleteTransition(ctx context.Context, workflowID, transitionID string) (*domain.StatusChange, error) {
	if err := s.repo.DeleteTransition(ctx, transitionID); err != nil {
		return nil, err
	}
	s.broker.Publish(events.NewEvent(events.EventTransitionDeleted, workflowID).WithTransition(transitionID))
	return s.reconcile(ctx, workflowID)
}

// AssignRole sets the owning role of a step, reconciles the workflow, and
// dispatches an assignment notification for the new owner. Reconciliation
// always runs to completion first: a dispatch failure is returned alongside
// the (already persisted) status change and never rolls it back.
func (s *Service) AssignRole(ctx context.Context, workflowID, stepID, role, ticketRef string) (*domain.StatusChange, error) {
	_, step, err := s.loadStep(ctx, workflowID, stepID)
	if err != nil {
		return nil, err
	}
	step.Role = role
	if err := s.repo.SaveStep(ctx, step); err != nil {
		return nil, fmt.Errorf("failed to save step: %w", err)
	}
	s.broker.Publish(events.NewEvent(events.EventStepSaved, workflowID).WithStep(stepID))

	change, err := s.reconcile(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if role == "" {
		return change, nil
	}
	return change, s.NotifyAssignment(ctx, workflowID, role, ticketRef, stepID)
}

// NotifyAssignment sends a create-assignment-notification task for the given
// user and step. Fire-and-forget: the returned *dispatch.DispatchError is the
// only signal of failure, and no retry is attempted.
func (s *Service) NotifyAssignment(ctx context.Context, workflowID, userID, ticketRef, stepID string) error {
	handle, err := s.dispatcher.Dispatch(ctx, s.queue, s.task, []any{userID, ticketRef, stepID}, nil)
	if err != nil {
		log.ErrorErr(log.CatDispatch, "Assignment notification dispatch failed", err,
			"workflow", workflowID, "step", stepID, "user", userID)
		s.broker.Publish(events.NewEvent(events.EventDispatchFailed, workflowID).
			WithStep(stepID).
			WithDispatch(s.queue, s.task, "").
			WithError(err))
		return err
	}

	s.broker.Publish(events.NewEvent(events.EventDispatchSent, workflowID).
		WithStep(stepID).
		WithDispatch(s.queue, s.task, string(handle)))
	return nil
}

// Reconcile recomputes and persists the status of a workflow, publishing a
// status-changed event when a write happened.
func (s *Service) Reconcile(ctx context.Context, workflowID string) (*domain.StatusChange, error) {
	return s.reconcile(ctx, workflowID)
}

func (s *Service) reconcile(ctx context.Context, workflowID string) (*domain.StatusChange, error) {
	change, err := s.reconciler.Reconcile(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	if change != nil {
		s.broker.Publish(events.NewEvent(events.EventWorkflowStatusChanged, workflowID).WithChange(change))
	}
	return change, nil
}

func (s *Service) loadStep(ctx context.Context, workflowID, stepID string) (domain.Workflow, domain.Step, error) {
	w, err := s.repo.LoadWorkflow(ctx, workflowID)
	if err != nil {
		return domain.Workflow{}, domain.Step{}, err
	}
	steps, _, err := s.repo.LoadGraph(ctx, workflowID)
	if err != nil {
		return domain.Workflow{}, domain.Step{}, fmt.Errorf("failed to load workflow graph: %w", err)
	}
	for _, st := range steps {
		if st.ID == stepID {
			return w, st, nil
		}
	}
	return domain.Workflow{}, domain.Step{}, &domain.StepNotFoundError{ID: stepID}
}
