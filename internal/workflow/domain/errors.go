package domain

import "fmt"

// WorkflowNotFoundError indicates that a workflow with the specified ID
// could not be found in the repository.
type WorkflowNotFoundError struct {
	ID string
}

// Error implements the error interface.
func (e *WorkflowNotFoundError) Error() string {
	return fmt.Sprintf("workflow not found: id=%q", e.ID)
}

// StepNotFoundError indicates that a step with the specified ID could not be
// found in the repository.
type StepNotFoundError struct {
	ID string
}

// Error implements the error interface.
func (e *StepNotFoundError) Error() string {
	return fmt.Sprintf("step not found: id=%q", e.ID)
}

// TransitionNotFoundError indicates that a step transition with the specified
// ID could not be found in the repository.
type TransitionNotFoundError struct {
	ID string
}

// Error implements the error interface.
func (e *TransitionNotFoundError) Error() string {
	return fmt.Sprintf("step transition not found: id=%q", e.ID)
}
