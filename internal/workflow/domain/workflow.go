// Package domain defines the workflow process graph: workflows, their steps,
// and the directed transitions between steps. These are plain value types;
// persistence and evaluation live elsewhere.
package domain

// Status is the lifecycle state of a workflow.
type Status string

const (
	// StatusDraft means the process graph is not yet fully specified.
	StatusDraft Status = "draft"
	// StatusInitialized means the process graph is fully specified and usable:
	// category and sub-category are set, at least one step exists, and every
	// step is complete.
	StatusInitialized Status = "initialized"
)

// String returns the string representation of the Status.
func (s Status) String() string {
	return string(s)
}

// Workflow is a configured business process composed of steps and transitions.
type Workflow struct {
	// ID uniquely identifies the workflow.
	ID string

	// Category and SubCategory classify the process (e.g. "IT" / "Hardware").
	// Both must be set before the workflow can leave draft.
	Category    string
	SubCategory string

	// Status is the persisted lifecycle state. It is derived from the graph
	// by the engine and written back only through partial status updates.
	Status Status
}

// Step is a node in a workflow's process graph, owned by a role.
type Step struct {
	// ID uniquely identifies the step.
	ID string

	// WorkflowID is the owning workflow. A step belongs to exactly one workflow.
	WorkflowID string

	// Role references the role responsible for the step.
	// Empty means unassigned; an unassigned step is never complete.
	Role string
}

// HasRole reports whether the step has an owning role assigned.
func (s Step) HasRole() bool {
	return s.Role != ""
}

// StepTransition is a directed edge between two steps, triggered by a named
// action. Any of the three references may be empty: an edge with only one
// side set represents a terminal or entry edge and is never complete.
type StepTransition struct {
	// ID uniquely identifies the transition.
	ID string

	// WorkflowID is the workflow whose graph this edge belongs to.
	WorkflowID string

	// FromStep and ToStep reference step IDs. Empty means unset.
	FromStep string
	ToStep   string

	// Action references the action that triggers the transition. Empty means unset.
	Action string
}

// Touches reports whether the transition is incident to the given step,
// as either source or destination.
func (t StepTransition) Touches(stepID string) bool {
	return t.FromStep == stepID || t.ToStep == stepID
}

// StatusChange records a workflow status transition produced by reconciliation.
type StatusChange struct {
	WorkflowID string
	OldStatus  Status
	NewStatus  Status
}
