// Package engine computes workflow lifecycle status from the process graph.
// The completeness predicates are pure functions over externally supplied
// graph data; the Reconciler compares computed status against persisted
// status and writes back only when they differ.
package engine

import "github.com/zjrosen/flowstate/internal/workflow/domain"

// TransitionComplete reports whether a transition is fully specified:
// source step, destination step, and action are all set. Nothing else is
// validated; in particular no cycle or type checking is performed.
// An edge with only one side set is a terminal or entry edge and is
// never complete.
func TransitionComplete(t domain.StepTransition) bool {
	return t.FromStep != "" && t.ToStep != "" && t.Action != ""
}

// IncidentTransitions returns the transitions touching the given step as
// either source or destination, preserving input order.
func IncidentTransitions(stepID string, transitions []domain.StepTransition) []domain.StepTransition {
	var incident []domain.StepTransition
	for _, t := range transitions {
		if t.Touches(stepID) {
			incident = append(incident, t)
		}
	}
	return incident
}

// StepComplete reports whether a step is fully specified: it has an owning
// role, participates in at least one transition, and every transition
// touching it is itself complete.
//
// The existence check is deliberate policy, not an accident of iteration:
// a step with zero incident transitions is incomplete regardless of role,
// so an orphan (or intentionally terminal, zero-edge) step keeps its
// workflow in draft.
func StepComplete(s domain.Step, transitions []domain.StepTransition) bool {
	if !s.HasRole() {
		return false
	}

	incident := IncidentTransitions(s.ID, transitions)
	if len(incident) == 0 {
		return false
	}
	for _, t := range incident {
		if !TransitionComplete(t) {
			return false
		}
	}
	return true
}

// WorkflowComplete reports whether a workflow's process graph is fully
// specified: category and sub-category are set, at least one step exists,
// and every step is complete.
//
// The non-empty step check mirrors the one in StepComplete: an empty step
// set means incomplete, never vacuously complete.
func WorkflowComplete(w domain.Workflow, steps []domain.Step, transitions []domain.StepTransition) bool {
	if w.Category == "" || w.SubCategory == "" {
		return false
	}
	if len(steps) == 0 {
		return false
	}
	for _, s := range steps {
		if !StepComplete(s, transitions) {
			return false
		}
	}
	return true
}

// StatusFor derives the lifecycle status implied by the current graph.
func StatusFor(w domain.Workflow, steps []domain.Step, transitions []domain.StepTransition) domain.Status {
	if WorkflowComplete(w, steps, transitions) {
		return domain.StatusInitialized
	}
	return domain.StatusDraft
}
