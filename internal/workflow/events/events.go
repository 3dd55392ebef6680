// Package events provides event types and an in-process broker for workflow
// graph mutations and status changes.
package events

import (
	"slices"
	"time"

	"github.com/zjrosen/flowstate/internal/workflow/domain"
)

// EventType categorizes workflow events.
type EventType string

const (
	// Workflow lifecycle events
	EventWorkflowSaved         EventType = "workflow.saved"
	EventWorkflowStatusChanged EventType = "workflow.status_changed"

	// Graph mutation events
	EventStepSaved         EventType = "step.saved"
	EventStepDeleted       EventType = "step.deleted"
	EventTransitionSaved   EventType = "transition.saved"
	EventTransitionDeleted EventType = "transition.deleted"

	// Dispatch events
	EventDispatchSent   EventType = "dispatch.sent"
	EventDispatchFailed EventType = "dispatch.failed"
)

// Event is the envelope for all workflow events.
type Event struct {
	// Type identifies the kind of event.
	Type EventType
	// Timestamp when the event occurred.
	Timestamp time.Time

	// WorkflowID is the workflow the event belongs to (always present).
	WorkflowID string

	// Optional correlation IDs (present for graph mutation events)
	StepID       string
	TransitionID string

	// Change is set for status-changed events.
	Change *domain.StatusChange

	// Dispatch context (present for dispatch events)
	Queue  string
	Task   string
	Handle string
	Err    string
}

// NewEvent creates a new event with the current timestamp.
func NewEvent(eventType EventType, workflowID string) Event {
	return Event{
		Type:       eventType,
		Timestamp:  time.Now(),
		WorkflowID: workflowID,
	}
}

// WithStep adds step context to the event.
func (e Event) WithStep(stepID string) Event {
	e.StepID = stepID
	return e
}

// WithTransition adds transition context to the event.
func (e Event) WithTransition(transitionID string) Event {
	e.TransitionID = transitionID
	return e
}

// WithChange attaches a status change record to the event.
func (e Event) WithChange(change *domain.StatusChange) Event {
	e.Change = change
	return e
}

// WithDispatch adds dispatch context to the event.
func (e Event) WithDispatch(queue, task, handle string) Event {
	e.Queue = queue
	e.Task = task
	e.Handle = handle
	return e
}

// WithError attaches an error message to the event.
func (e Event) WithError(err error) Event {
	if err != nil {
		e.Err = err.Error()
	}
	return e
}

// IsGraphMutation returns true if the event type is a graph mutation event.
func (t EventType) IsGraphMutation() bool {
	switch t {
	case EventStepSaved,
		EventStepDeleted,
		EventTransitionSaved,
		EventTransitionDeleted:
		return true
	default:
		return false
	}
}

// IsDispatchEvent returns true if the event type is a dispatch event.
func (t EventType) IsDispatchEvent() bool {
	return t == EventDispatchSent || t == EventDispatchFailed
}

// String returns the string representation of the EventType.
func (t EventType) String() string {
	return string(t)
}

// Filter defines criteria for filtering events in subscriptions. All criteria
// are AND'd together; an empty filter matches all events.
type Filter struct {
	// Types limits events to these specific types. If empty, all types are allowed.
	Types []EventType

	// WorkflowIDs limits events to these specific workflows. If empty, all workflows are allowed.
	WorkflowIDs []string
}

// Matches returns true if the event matches the filter criteria.
func (f *Filter) Matches(event Event) bool {
	if len(f.Types) > 0 && !slices.Contains(f.Types, event.Type) {
		return false
	}
	if len(f.WorkflowIDs) > 0 && !slices.Contains(f.WorkflowIDs, event.WorkflowID) {
		return false
	}
	return true
}

// IsEmpty returns true if the filter has no criteria set.
func (f *Filter) IsEmpty() bool {
	return len(f.Types) == 0 && len(f.WorkflowIDs) == 0
}
