package dispatch

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// SentMessage records one envelope accepted by the MemoryDispatcher.
type SentMessage struct {
	Queue    string
	Envelope Envelope
}

// MemoryDispatcher is an in-process Dispatcher that records envelopes instead
// of publishing them. Used by tests and by the in-memory mode. A failure can
// be injected with Fail to simulate an unreachable broker.
type MemoryDispatcher struct {
	mu   sync.RWMutex
	sent []SentMessage
	fail error
}

// NewMemoryDispatcher creates an empty in-process dispatcher.
func NewMemoryDispatcher() *MemoryDispatcher {
	return &MemoryDispatcher{}
}

// Ensure MemoryDispatcher implements Dispatcher.
var _ Dispatcher = (*MemoryDispatcher)(nil)

// Dispatch records the envelope and returns a fresh handle, or the injected
// failure wrapped in *DispatchError.
func (d *MemoryDispatcher) Dispatch(_ context.Context, queue, task string, args []any, kwargs map[string]any) (TaskHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.fail != nil {
		return "", &DispatchError{Queue: queue, Task: task, Err: d.fail}
	}

	if kwargs == nil {
		kwargs = map[string]any{}
	}
	if args == nil {
		args = []any{}
	}

	env := Envelope{
		ID:     uuid.NewString(),
		Task:   task,
		Args:   args,
		Kwargs: kwargs,
	}
	d.sent = append(d.sent, SentMessage{Queue: queue, Envelope: env})
	return TaskHandle(env.ID), nil
}

// Fail makes all subsequent Dispatch calls return a *DispatchError wrapping
// err. Pass nil to restore normal behavior.
func (d *MemoryDispatcher) Fail(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fail = err
}

// Sent returns a copy of all recorded messages in dispatch order.
func (d *MemoryDispatcher) Sent() []SentMessage {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]SentMessage, len(d.sent))
	copy(out, d.sent)
	return out
}

// Reset clears recorded messages and any injected failure. Test helper.
func (d *MemoryDispatcher) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = nil
	d.fail = nil
}
