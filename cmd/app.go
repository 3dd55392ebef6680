package cmd

import (
	"context"
	"errors"

	"github.com/zjrosen/flowstate/internal/config"
	"github.com/zjrosen/flowstate/internal/dispatch"
	"github.com/zjrosen/flowstate/internal/infrastructure/sqlite"
	"github.com/zjrosen/flowstate/internal/telemetry"
	"github.com/zjrosen/flowstate/internal/workflow/repository"
	"github.com/zjrosen/flowstate/internal/workflow/service"
)

// app bundles the wired service with everything that needs closing on exit.
type app struct {
	svc     *service.Service
	closers []func(context.Context) error
}

// newApp builds the service graph from config: store (sqlite or memory,
// optionally snapshot-cached), dispatcher (AMQP or in-process), telemetry.
func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	a := &app{}

	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, shutdownTelemetry)

	var repo repository.GraphRepository
	if cfg.DB.Path != "" {
		db, err := sqlite.NewDB(cfg.DB.Path)
		if err != nil {
			_ = a.Close(ctx)
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return db.Close() })
		repo = db.GraphRepository()
	} else {
		repo = repository.NewMemoryGraphRepository()
	}
	if cfg.DB.CacheTTL > 0 {
		repo = repository.NewCachedGraphRepository(repo, cfg.DB.CacheTTL)
	}

	var dispatcher dispatch.Dispatcher
	if cfg.Dispatch.URL != "" {
		amqpDispatcher, err := dispatch.NewAMQPDispatcher(dispatch.AMQPConfig{
			URL:     cfg.Dispatch.URL,
			Timeout: cfg.Dispatch.Timeout,
		})
		if err != nil {
			_ = a.Close(ctx)
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return amqpDispatcher.Close() })
		dispatcher = amqpDispatcher
	} else {
		dispatcher = dispatch.NewMemoryDispatcher()
	}

	a.svc = service.New(repo, dispatcher, service.Config{
		Queue:          cfg.Dispatch.Queue,
		AssignmentTask: cfg.Dispatch.Task,
	})
	return a, nil
}

// Close shuts down everything newApp opened, in reverse order.
func (a *app) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
