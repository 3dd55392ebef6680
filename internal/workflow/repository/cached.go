package repository

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/zjrosen/flowstate/internal/workflow/domain"
)

// graphSnapshot is the cached result of LoadGraph for one workflow.
type graphSnapshot struct {
	steps       []domain.Step
	transitions []domain.StepTransition
}

// CachedGraphRepository decorates a GraphRepository with a TTL cache of
// LoadGraph snapshots. Every mutation through this repository invalidates the
// owning workflow's snapshot, so reads after a write always see fresh data.
// Mutations performed behind this decorator's back are only visible after the
// TTL expires.
type CachedGraphRepository struct {
	inner GraphRepository
	cache *gocache.Cache
}

// NewCachedGraphRepository wraps inner with a snapshot cache using the given
// TTL. Expired entries are purged at twice the TTL.
func NewCachedGraphRepository(inner GraphRepository, ttl time.Duration) *CachedGraphRepository {
	return &CachedGraphRepository{
		inner: inner,
		cache: gocache.New(ttl, 2*ttl),
	}
}

// Ensure CachedGraphRepository implements GraphRepository.
var _ GraphRepository = (*CachedGraphRepository)(nil)

// LoadWorkflow delegates to the inner repository. Workflow records are not
// cached: the status column is the reconciler's write target and must always
// be read fresh.
func (r *CachedGraphRepository) LoadWorkflow(ctx context.Context, workflowID string) (domain.Workflow, error) {
	return r.inner.LoadWorkflow(ctx, workflowID)
}

// ListWorkflows delegates to the inner repository.
func (r *CachedGraphRepository) ListWorkflows(ctx context.Context) ([]domain.Workflow, error) {
	return r.inner.ListWorkflows(ctx)
}

// LoadGraph returns the cached snapshot for the workflow, loading and caching
// it on a miss.
func (r *CachedGraphRepository) LoadGraph(ctx context.Context, workflowID string) ([]domain.Step, []domain.StepTransition, error) {
	if v, ok := r.cache.Get(workflowID); ok {
		snap := v.(graphSnapshot)
		return snap.steps, snap.transitions, nil
	}

	steps, transitions, err := r.inner.LoadGraph(ctx, workflowID)
	if err != nil {
		return nil, nil, err
	}

	r.cache.Set(workflowID, graphSnapshot{steps: steps, transitions: transitions}, gocache.DefaultExpiration)
	return steps, transitions, nil
}

// SaveWorkflow delegates and invalidates the workflow's snapshot.
func (r *CachedGraphRepository) SaveWorkflow(ctx context.Context, w domain.Workflow) error {
	if err := r.inner.SaveWorkflow(ctx, w); err != nil {
		return err
	}
	r.cache.Delete(w.ID)
	return nil
}

// UpdateStatus delegates to the inner repository. The status column is not
// part of the graph snapshot, so no invalidation is needed.
func (r *CachedGraphRepository) UpdateStatus(ctx context.Context, workflowID string, status domain.Status) error {
	return r.inner.UpdateStatus(ctx, workflowID, status)
}

// SaveStep delegates and invalidates the owning workflow's snapshot.
func (r *CachedGraphRepository) SaveStep(ctx context.Context, s domain.Step) error {
	if err := r.inner.SaveStep(ctx, s); err != nil {
		return err
	}
	r.cache.Delete(s.WorkflowID)
	return nil
}

// DeleteStep delegates and flushes the cache. The step's owning workflow is
// unknown at this layer, so all snapshots are dropped.
func (r *CachedGraphRepository) DeleteStep(ctx context.Context, stepID string) error {
	if err := r.inner.DeleteStep(ctx, stepID); err != nil {
		return err
	}
	r.cache.Flush()
	return nil
}

// SaveTransition delegates and invalidates the owning workflow's snapshot.
func (r *CachedGraphRepository) SaveTransition(ctx context.Context, t domain.StepTransition) error {
	if err := r.inner.SaveTransition(ctx, t); err != nil {
		return err
	}
	r.cache.Delete(t.WorkflowID)
	return nil
}

// DeleteTransition delegates and flushes the cache, mirroring DeleteStep.
func (r *CachedGraphRepository) DeleteTransition(ctx context.Context, transitionID string) error {
	if err := r.inner.DeleteTransition(ctx, transitionID); err != nil {
		return err
	}
	r.cache.Flush()
	return nil
}
