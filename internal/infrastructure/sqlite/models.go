package sqlite

import (
	"github.com/zjrosen/flowstate/internal/workflow/domain"
)

// WorkflowModel represents the database row for the workflows table.
// Nullable columns map to pointers; time values are Unix timestamps.
type WorkflowModel struct {
	ID          string
	Category    *string // nullable
	SubCategory *string // nullable
	Status      string
	CreatedAt   int64
	UpdatedAt   int64
}

// StepModel represents the database row for the steps table.
type StepModel struct {
	ID         string
	WorkflowID string
	Role       *string // nullable
	CreatedAt  int64
	UpdatedAt  int64
}

// TransitionModel represents the database row for the step_transitions table.
type TransitionModel struct {
	ID         string
	WorkflowID string
	FromStep   *string // nullable
	ToStep     *string // nullable
	Action     *string // nullable
	CreatedAt  int64
	UpdatedAt  int64
}

// toWorkflowModel converts a domain Workflow to a database WorkflowModel.
// Timestamps are filled in by the repository.
func toWorkflowModel(w domain.Workflow) *WorkflowModel {
	m := &WorkflowModel{
		ID:     w.ID,
		Status: string(w.Status),
	}
	m.Category = nullable(w.Category)
	m.SubCategory = nullable(w.SubCategory)
	return m
}

// toDomain converts a database WorkflowModel to a domain Workflow.
func (m *WorkflowModel) toDomain() domain.Workflow {
	return domain.Workflow{
		ID:          m.ID,
		Category:    deref(m.Category),
		SubCategory: deref(m.SubCategory),
		Status:      domain.Status(m.Status),
	}
}

// toStepModel converts a domain Step to a database StepModel.
func toStepModel(s domain.Step) *StepModel {
	return &StepModel{
		ID:         s.ID,
		WorkflowID: s.WorkflowID,
		Role:       nullable(s.Role),
	}
}

// toDomain converts a database StepModel to a domain Step.
func (m *StepModel) toDomain() domain.Step {
	return domain.Step{
		ID:         m.ID,
		WorkflowID: m.WorkflowID,
		Role:       deref(m.Role),
	}
}

// toTransitionModel converts a domain StepTransition to a database TransitionModel.
func toTransitionModel(t domain.StepTransition) *TransitionModel {
	return &TransitionModel{
		ID:         t.ID,
		WorkflowID: t.WorkflowID,
		FromStep:   nullable(t.FromStep),
		ToStep:     nullable(t.ToStep),
		Action:     nullable(t.Action),
	}
}

// toDomain converts a database TransitionModel to a domain StepTransition.
func (m *TransitionModel) toDomain() domain.StepTransition {
	return domain.StepTransition{
		ID:         m.ID,
		WorkflowID: m.WorkflowID,
		FromStep:   deref(m.FromStep),
		ToStep:     deref(m.ToStep),
		Action:     deref(m.Action),
	}
}

// nullable maps an empty string to NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// deref maps NULL back to an empty string.
func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
