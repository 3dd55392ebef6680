package repository

import (
	"context"
	"slices"
	"sync"

	"github.com/zjrosen/flowstate/internal/workflow/domain"
)

// MemoryGraphRepository is an in-memory implementation of GraphRepository.
// Safe for concurrent use. Insertion order is preserved per workflow so
// LoadGraph results are deterministic.
type MemoryGraphRepository struct {
	mu          sync.RWMutex
	workflows   map[string]domain.Workflow
	steps       map[string]domain.Step
	transitions map[string]domain.StepTransition

	// Insertion-order indexes per workflow
	stepOrder       map[string][]string // workflowID -> step IDs
	transitionOrder map[string][]string // workflowID -> transition IDs

	workflowOrder []string
}

// NewMemoryGraphRepository creates a new in-memory graph repository.
func NewMemoryGraphRepository() *MemoryGraphRepository {
	return &MemoryGraphRepository{
		workflows:       make(map[string]domain.Workflow),
		steps:           make(map[string]domain.Step),
		transitions:     make(map[string]domain.StepTransition),
		stepOrder:       make(map[string][]string),
		transitionOrder: make(map[string][]string),
	}
}

// Ensure MemoryGraphRepository implements GraphRepository.
var _ GraphRepository = (*MemoryGraphRepository)(nil)

// LoadWorkflow returns the workflow record.
func (r *MemoryGraphRepository) LoadWorkflow(_ context.Context, workflowID string) (domain.Workflow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.workflows[workflowID]
	if !ok {
		return domain.Workflow{}, &domain.WorkflowNotFoundError{ID: workflowID}
	}
	return w, nil
}

// ListWorkflows returns all workflows in insertion order.
func (r *MemoryGraphRepository) ListWorkflows(_ context.Context) ([]domain.Workflow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Workflow, 0, len(r.workflowOrder))
	for _, id := range r.workflowOrder {
		result = append(result, r.workflows[id])
	}
	return result, nil
}

// LoadGraph returns the steps and transitions of a workflow in insertion order.
func (r *MemoryGraphRepository) LoadGraph(_ context.Context, workflowID string) ([]domain.Step, []domain.StepTransition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	steps := make([]domain.Step, 0, len(r.stepOrder[workflowID]))
	for _, id := range r.stepOrder[workflowID] {
		steps = append(steps, r.steps[id])
	}

	transitions := make([]domain.StepTransition, 0, len(r.transitionOrder[workflowID]))
	for _, id := range r.transitionOrder[workflowID] {
		transitions = append(transitions, r.transitions[id])
	}

	return steps, transitions, nil
}

// SaveWorkflow inserts or updates a workflow.
func (r *MemoryGraphRepository) SaveWorkflow(_ context.Context, w domain.Workflow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.workflows[w.ID]; !exists {
		r.workflowOrder = append(r.workflowOrder, w.ID)
	}
	r.workflows[w.ID] = w
	return nil
}

// UpdateStatus updates only the status field of a workflow.
func (r *MemoryGraphRepository) UpdateStatus(_ context.Context, workflowID string, status domain.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.workflows[workflowID]
	if !ok {
		return &domain.WorkflowNotFoundError{ID: workflowID}
	}
	w.Status = status
	r.workflows[workflowID] = w
	return nil
}

// SaveStep inserts or updates a step.
func (r *MemoryGraphRepository) SaveStep(_ context.Context, s domain.Step) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, exists := r.steps[s.ID]; exists {
		// Re-homing a step to another workflow moves its index entry.
		if prev.WorkflowID != s.WorkflowID {
			r.stepOrder[prev.WorkflowID] = removeID(r.stepOrder[prev.WorkflowID], s.ID)
			r.stepOrder[s.WorkflowID] = append(r.stepOrder[s.WorkflowID], s.ID)
		}
	} else {
		r.stepOrder[s.WorkflowID] = append(r.stepOrder[s.WorkflowID], s.ID)
	}
	r.steps[s.ID] = s
	return nil
}

// DeleteStep removes a step.
func (r *MemoryGraphRepository) DeleteStep(_ context.Context, stepID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.steps[stepID]
	if !ok {
		return &domain.StepNotFoundError{ID: stepID}
	}
	delete(r.steps, stepID)
	r.stepOrder[s.WorkflowID] = removeID(r.stepOrder[s.WorkflowID], stepID)
	return nil
}

// SaveTransition inserts or updates a step transition.
func (r *MemoryGraphRepository) SaveTransition(_ context.Context, t domain.StepTransition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, exists := r.transitions[t.ID]; exists {
		if prev.WorkflowID != t.WorkflowID {
			r.transitionOrder[prev.WorkflowID] = removeID(r.transitionOrder[prev.WorkflowID], t.ID)
			r.transitionOrder[t.WorkflowID] = append(r.transitionOrder[t.WorkflowID], t.ID)
		}
	} else {
		r.transitionOrder[t.WorkflowID] = append(r.transitionOrder[t.WorkflowID], t.ID)
	}
	r.transitions[t.ID] = t
	return nil
}

// DeleteTransition removes a transition.
func (r *MemoryGraphRepository) DeleteTransition(_ context.Context, transitionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.transitions[transitionID]
	if !ok {
		return &domain.TransitionNotFoundError{ID: transitionID}
	}
	delete(r.transitions, transitionID)
	r.transitionOrder[t.WorkflowID] = removeID(r.transitionOrder[t.WorkflowID], transitionID)
	return nil
}

// Reset clears all stored data. Test helper.
func (r *MemoryGraphRepository) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.workflows = make(map[string]domain.Workflow)
	r.steps = make(map[string]domain.Step)
	r.transitions = make(map[string]domain.StepTransition)
	r.stepOrder = make(map[string][]string)
	r.transitionOrder = make(map[string][]string)
	r.workflowOrder = nil
}

func removeID(ids []string, id string) []string {
	i := slices.Index(ids, id)
	if i < 0 {
		return ids
	}
	return slices.Delete(ids, i, i+1)
}
