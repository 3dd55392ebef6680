// Package dispatch sends cross-service task messages to named broker queues.
// Dispatch is strictly fire-and-forget: one enqueue attempt, no delivery
// acknowledgement beyond the broker's own guarantees, and no built-in retry.
// Any retry or ack semantics must be layered by the caller.
package dispatch

import (
	"context"
	"fmt"
)

// TaskHandle is the opaque identifier assigned to an enqueued task message.
// It carries no guarantee that the remote side ever executes the task.
type TaskHandle string

// Envelope is the message body handed to a broker queue. The remote consumer
// resolves Task by its fully-qualified name independently; no schema is
// validated at the producer.
type Envelope struct {
	ID     string         `json:"id"`
	Task   string         `json:"task"`
	Args   []any          `json:"args"`
	Kwargs map[string]any `json:"kwargs"`
}

// Dispatcher enqueues one task message onto a named broker queue.
// Implementations must be safe for concurrent use.
type Dispatcher interface {
	// Dispatch sends a message identifying the remote task by name, with
	// positional args (identities and references serialized as primitives)
	// and keyword args (may be nil). Returns the assigned handle, or a
	// *DispatchError if the broker is unreachable or rejects the message.
	Dispatch(ctx context.Context, queue, task string, args []any, kwargs map[string]any) (TaskHandle, error)
}

// DispatchError indicates the broker was unreachable or rejected a message.
// It is surfaced to the caller, never swallowed, and no automatic retry is
// attempted.
type DispatchError struct {
	Queue string
	Task  string
	Err   error
}

// Error implements the error interface.
func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch to queue %q failed for task %q: %v", e.Queue, e.Task, e.Err)
}

// Unwrap returns the underlying cause.
func (e *DispatchError) Unwrap() error {
	return e.Err
}
