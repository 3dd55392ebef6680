package definitions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/flowstate/internal/workflow/domain"
)

func TestWatcher_Run(t *testing.T) {
	t.Run("reloads after a definition file changes", func(t *testing.T) {
		svc := newTestService()
		dir := t.TempDir()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		w := NewWatcher(svc, dir, 50*time.Millisecond)
		done := make(chan error, 1)
		go func() { done <- w.Run(ctx) }()

		// Give the watcher a moment to register before writing.
		time.Sleep(100 * time.Millisecond)
		writeDefinition(t, dir, "onboarding.yaml", completeDefinition)

		require.Eventually(t, func() bool {
			w, err := svc.Workflow(context.Background(), "onboarding")
			return err == nil && w.Status == domain.StatusInitialized
		}, 5*time.Second, 25*time.Millisecond, "definition was never loaded")

		cancel()
		select {
		case err := <-done:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(2 * time.Second):
			t.Fatal("watcher did not stop on context cancellation")
		}
	})

	t.Run("non-definition files are ignored", func(t *testing.T) {
		svc := newTestService()
		dir := t.TempDir()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		w := NewWatcher(svc, dir, 50*time.Millisecond)
		go func() { _ = w.Run(ctx) }()

		time.Sleep(100 * time.Millisecond)
		writeDefinition(t, dir, "scratch.txt", "not yaml")

		time.Sleep(300 * time.Millisecond)
		all, err := svc.Workflows(context.Background())
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("missing directory errors immediately", func(t *testing.T) {
		svc := newTestService()
		w := NewWatcher(svc, "/nonexistent/definitions", 50*time.Millisecond)
		assert.Error(t, w.Run(context.Background()))
	})

	t.Run("non-positive debounce falls back to one second", func(t *testing.T) {
		w := NewWatcher(newTestService(), t.TempDir(), 0)
		assert.Equal(t, time.Second, w.debounce)
	})
}
