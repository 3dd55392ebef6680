package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/zjrosen/flowstate/internal/workflow/domain"
)

func TestTransitionComplete(t *testing.T) {
	t.Run("complete when from, to, and action are all set", func(t *testing.T) {
		tr := domain.StepTransition{ID: "t1", FromStep: "s1", ToStep: "s2", Action: "approve"}
		assert.True(t, TransitionComplete(tr))
	})

	t.Run("incomplete when from is missing", func(t *testing.T) {
		tr := domain.StepTransition{ID: "t1", ToStep: "s2", Action: "approve"}
		assert.False(t, TransitionComplete(tr))
	})

	t.Run("incomplete when to is missing", func(t *testing.T) {
		tr := domain.StepTransition{ID: "t1", FromStep: "s1", Action: "approve"}
		assert.False(t, TransitionComplete(tr))
	})

	t.Run("incomplete when action is missing", func(t *testing.T) {
		tr := domain.StepTransition{ID: "t1", FromStep: "s1", ToStep: "s2"}
		assert.False(t, TransitionComplete(tr))
	})

	t.Run("incomplete when fully empty", func(t *testing.T) {
		assert.False(t, TransitionComplete(domain.StepTransition{ID: "t1"}))
	})
}

func TestIncidentTransitions(t *testing.T) {
	transitions := []domain.StepTransition{
		{ID: "t1", FromStep: "s1", ToStep: "s2", Action: "a"},
		{ID: "t2", FromStep: "s2", ToStep: "s3", Action: "b"},
		{ID: "t3", FromStep: "s3", ToStep: "s1", Action: "c"},
	}

	t.Run("includes edges where step is source or destination", func(t *testing.T) {
		incident := IncidentTransitions("s2", transitions)
		assert.Len(t, incident, 2)
		assert.Equal(t, "t1", incident[0].ID)
		assert.Equal(t, "t2", incident[1].ID)
	})

	t.Run("empty for a step with no edges", func(t *testing.T) {
		assert.Empty(t, IncidentTransitions("s99", transitions))
	})

	t.Run("self-loop counts once", func(t *testing.T) {
		loop := []domain.StepTransition{{ID: "t1", FromStep: "s1", ToStep: "s1", Action: "retry"}}
		assert.Len(t, IncidentTransitions("s1", loop), 1)
	})
}

func TestStepComplete(t *testing.T) {
	step := domain.Step{ID: "s1", WorkflowID: "w1", Role: "approver"}
	complete := domain.StepTransition{ID: "t1", FromStep: "s1", ToStep: "s2", Action: "approve"}
	partial := domain.StepTransition{ID: "t2", FromStep: "s1", Action: "reject"}

	t.Run("complete with role and one complete incident transition", func(t *testing.T) {
		assert.True(t, StepComplete(step, []domain.StepTransition{complete}))
	})

	t.Run("incomplete without a role", func(t *testing.T) {
		unowned := domain.Step{ID: "s1", WorkflowID: "w1"}
		assert.False(t, StepComplete(unowned, []domain.StepTransition{complete}))
	})

	t.Run("incomplete with zero incident transitions", func(t *testing.T) {
		// An orphan step is incomplete even with a role: participation in
		// the graph is required, not vacuously true.
		assert.False(t, StepComplete(step, nil))
		assert.False(t, StepComplete(step, []domain.StepTransition{
			{ID: "t9", FromStep: "x", ToStep: "y", Action: "z"},
		}))
	})

	t.Run("incomplete when any incident transition is partial", func(t *testing.T) {
		assert.False(t, StepComplete(step, []domain.StepTransition{complete, partial}))
	})

	t.Run("non-incident partial transitions are ignored", func(t *testing.T) {
		elsewhere := domain.StepTransition{ID: "t3", FromStep: "s8", ToStep: "s9"}
		assert.True(t, StepComplete(step, []domain.StepTransition{complete, elsewhere}))
	})
}

func TestWorkflowComplete(t *testing.T) {
	wf := domain.Workflow{ID: "w1", Category: "IT", SubCategory: "Hardware"}
	steps := []domain.Step{
		{ID: "s1", WorkflowID: "w1", Role: "requester"},
		{ID: "s2", WorkflowID: "w1", Role: "approver"},
	}
	transitions := []domain.StepTransition{
		{ID: "t1", WorkflowID: "w1", FromStep: "s1", ToStep: "s2", Action: "submit"},
	}

	t.Run("complete when classified with a fully specified graph", func(t *testing.T) {
		assert.True(t, WorkflowComplete(wf, steps, transitions))
	})

	t.Run("incomplete without category", func(t *testing.T) {
		w := domain.Workflow{ID: "w1", SubCategory: "Hardware"}
		assert.False(t, WorkflowComplete(w, steps, transitions))
	})

	t.Run("incomplete without sub-category", func(t *testing.T) {
		w := domain.Workflow{ID: "w1", Category: "IT"}
		assert.False(t, WorkflowComplete(w, steps, transitions))
	})

	t.Run("incomplete with zero steps", func(t *testing.T) {
		// A classified workflow with an empty graph stays draft; an empty
		// step set is never vacuously complete.
		assert.False(t, WorkflowComplete(wf, nil, nil))
	})

	t.Run("incomplete when any step is incomplete", func(t *testing.T) {
		withOrphan := append([]domain.Step{}, steps...)
		withOrphan = append(withOrphan, domain.Step{ID: "s3", WorkflowID: "w1", Role: "auditor"})
		assert.False(t, WorkflowComplete(wf, withOrphan, transitions))
	})

	t.Run("incomplete when a step lacks a role", func(t *testing.T) {
		unowned := []domain.Step{
			{ID: "s1", WorkflowID: "w1"},
			{ID: "s2", WorkflowID: "w1", Role: "approver"},
		}
		assert.False(t, WorkflowComplete(wf, unowned, transitions))
	})

	t.Run("incomplete when an incident transition is partial", func(t *testing.T) {
		partial := []domain.StepTransition{
			{ID: "t1", WorkflowID: "w1", FromStep: "s1", ToStep: "s2", Action: "submit"},
			{ID: "t2", WorkflowID: "w1", FromStep: "s2", Action: "close"},
		}
		assert.False(t, WorkflowComplete(wf, steps, partial))
	})
}

func TestStatusFor(t *testing.T) {
	wf := domain.Workflow{ID: "w1", Category: "IT", SubCategory: "Hardware"}
	steps := []domain.Step{{ID: "s1", WorkflowID: "w1", Role: "approver"}}
	transitions := []domain.StepTransition{
		{ID: "t1", WorkflowID: "w1", FromStep: "s1", ToStep: "s1", Action: "loop"},
	}

	t.Run("initialized for a complete graph", func(t *testing.T) {
		assert.Equal(t, domain.StatusInitialized, StatusFor(wf, steps, transitions))
	})

	t.Run("draft for an incomplete graph", func(t *testing.T) {
		assert.Equal(t, domain.StatusDraft, StatusFor(wf, steps, nil))
	})
}

// ============================================================================
// Property-Based Tests for Completeness Invariants
// ============================================================================

// genTransition draws a transition whose from/to/action fields are
// independently empty or set.
func genTransition(t *rapid.T, label string) domain.StepTransition {
	field := func(name string, values ...string) string {
		opts := append([]string{""}, values...)
		return rapid.SampledFrom(opts).Draw(t, label+"."+name)
	}
	return domain.StepTransition{
		ID:       label,
		FromStep: field("from", "s1", "s2", "s3"),
		ToStep:   field("to", "s1", "s2", "s3"),
		Action:   field("action", "approve", "reject"),
	}
}

// TestProperty_TransitionCompleteIffAllFieldsSet verifies the transition
// predicate is exactly the conjunction of the three field checks.
func TestProperty_TransitionCompleteIffAllFieldsSet(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tr := genTransition(t, "tr")
		want := tr.FromStep != "" && tr.ToStep != "" && tr.Action != ""
		if TransitionComplete(tr) != want {
			t.Errorf("TransitionComplete(%+v) = %v, want %v", tr, !want, want)
		}
	})
}

// TestProperty_StepWithoutEdgesNeverComplete verifies the existence guard:
// no role assignment can make a zero-edge step complete.
func TestProperty_StepWithoutEdgesNeverComplete(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		role := rapid.SampledFrom([]string{"", "approver", "requester"}).Draw(t, "role")
		step := domain.Step{ID: "lonely", WorkflowID: "w1", Role: role}

		n := rapid.IntRange(0, 5).Draw(t, "n")
		transitions := make([]domain.StepTransition, 0, n)
		for i := 0; i < n; i++ {
			tr := genTransition(t, fmt.Sprintf("tr-%d", i))
			// None of the edges touch the step under test.
			if tr.Touches(step.ID) {
				continue
			}
			transitions = append(transitions, tr)
		}

		if StepComplete(step, transitions) {
			t.Errorf("step with zero incident transitions reported complete (role=%q)", role)
		}
	})
}

// TestProperty_WorkflowWithoutStepsNeverComplete verifies a classified
// workflow with an empty step set always evaluates to draft.
func TestProperty_WorkflowWithoutStepsNeverComplete(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		wf := domain.Workflow{
			ID:          "w1",
			Category:    rapid.SampledFrom([]string{"", "IT", "HR"}).Draw(t, "category"),
			SubCategory: rapid.SampledFrom([]string{"", "Hardware", "Leave"}).Draw(t, "subcategory"),
		}

		n := rapid.IntRange(0, 4).Draw(t, "n")
		transitions := make([]domain.StepTransition, 0, n)
		for i := 0; i < n; i++ {
			transitions = append(transitions, genTransition(t, fmt.Sprintf("tr-%d", i)))
		}

		if WorkflowComplete(wf, nil, transitions) {
			t.Errorf("workflow with zero steps reported complete (%+v)", wf)
		}
		if StatusFor(wf, nil, transitions) != domain.StatusDraft {
			t.Errorf("workflow with zero steps not draft")
		}
	})
}

// TestProperty_AnyIncompleteStepKeepsWorkflowDraft verifies one incomplete
// step is sufficient to hold the whole workflow in draft.
func TestProperty_AnyIncompleteStepKeepsWorkflowDraft(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		wf := domain.Workflow{ID: "w1", Category: "IT", SubCategory: "Hardware"}

		n := rapid.IntRange(1, 4).Draw(t, "n")
		steps := make([]domain.Step, 0, n+1)
		transitions := make([]domain.StepTransition, 0, n)
		for i := 0; i < n; i++ {
			id := fmt.Sprintf("s%d", i)
			steps = append(steps, domain.Step{ID: id, WorkflowID: "w1", Role: "owner"})
			transitions = append(transitions, domain.StepTransition{
				ID:       fmt.Sprintf("t%d", i),
				FromStep: id,
				ToStep:   id,
				Action:   "loop",
			})
		}
		// One step with no role and no edges.
		steps = append(steps, domain.Step{ID: "broken", WorkflowID: "w1"})

		if WorkflowComplete(wf, steps, transitions) {
			t.Errorf("workflow with an incomplete step reported complete")
		}
	})
}
