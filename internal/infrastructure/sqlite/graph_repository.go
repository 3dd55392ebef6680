package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/zjrosen/flowstate/internal/workflow/domain"
	"github.com/zjrosen/flowstate/internal/workflow/repository"
)

// graphRepository implements repository.GraphRepository using SQLite.
type graphRepository struct {
	db *sql.DB
}

// newGraphRepository creates a new graphRepository instance.
func newGraphRepository(db *sql.DB) *graphRepository {
	return &graphRepository{db: db}
}

// Ensure graphRepository implements repository.GraphRepository.
var _ repository.GraphRepository = (*graphRepository)(nil)

// LoadWorkflow retrieves a workflow by ID.
// Returns WorkflowNotFoundError if no matching workflow exists.
func (r *graphRepository) LoadWorkflow(ctx context.Context, workflowID string) (domain.Workflow, error) {
	var model WorkflowModel
	err := r.db.QueryRowContext(ctx,
		`SELECT id, category, sub_category, status, created_at, updated_at
		 FROM workflows
		 WHERE id = ?`,
		workflowID,
	).Scan(&model.ID, &model.Category, &model.SubCategory, &model.Status, &model.CreatedAt, &model.UpdatedAt)

	if err == sql.ErrNoRows {
		return domain.Workflow{}, &domain.WorkflowNotFoundError{ID: workflowID}
	}
	if err != nil {
		return domain.Workflow{}, fmt.Errorf("failed to load workflow: %w", err)
	}
	return model.toDomain(), nil
}

// ListWorkflows retrieves all workflows ordered by ID.
func (r *graphRepository) ListWorkflows(ctx context.Context) ([]domain.Workflow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, category, sub_category, status, created_at, updated_at
		 FROM workflows
		 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var workflows []domain.Workflow
	for rows.Next() {
		var model WorkflowModel
		if err := rows.Scan(&model.ID, &model.Category, &model.SubCategory, &model.Status, &model.CreatedAt, &model.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan workflow row: %w", err)
		}
		workflows = append(workflows, model.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating workflow rows: %w", err)
	}
	return workflows, nil
}

// LoadGraph retrieves all steps and transitions belonging to a workflow,
// ordered by creation time so evaluation order is stable.
func (r *graphRepository) LoadGraph(ctx context.Context, workflowID string) ([]domain.Step, []domain.StepTransition, error) {
	stepRows, err := r.db.QueryContext(ctx,
		`SELECT id, workflow_id, role, created_at, updated_at
		 FROM steps
		 WHERE workflow_id = ?
		 ORDER BY created_at, id`,
		workflowID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load steps: %w", err)
	}
	defer func() { _ = stepRows.Close() }()

	steps := make([]domain.Step, 0)
	for stepRows.Next() {
		var model StepModel
		if err := stepRows.Scan(&model.ID, &model.WorkflowID, &model.Role, &model.CreatedAt, &model.UpdatedAt); err != nil {
			return nil, nil, fmt.Errorf("failed to scan step row: %w", err)
		}
		steps = append(steps, model.toDomain())
	}
	if err := stepRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating step rows: %w", err)
	}

	transitionRows, err := r.db.QueryContext(ctx,
		`SELECT id, workflow_id, from_step, to_step, action, created_at, updated_at
		 FROM step_transitions
		 WHERE workflow_id = ?
		 ORDER BY created_at, id`,
		workflowID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load transitions: %w", err)
	}
	defer func() { _ = transitionRows.Close() }()

	transitions := make([]domain.StepTransition, 0)
	for transitionRows.Next() {
		var model TransitionModel
		if err := transitionRows.Scan(&model.ID, &model.WorkflowID, &model.FromStep, &model.ToStep, &model.Action, &model.CreatedAt, &model.UpdatedAt); err != nil {
			return nil, nil, fmt.Errorf("failed to scan transition row: %w", err)
		}
		transitions = append(transitions, model.toDomain())
	}
	if err := transitionRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating transition rows: %w", err)
	}

	return steps, transitions, nil
}

// SaveWorkflow inserts or updates a workflow record.
func (r *graphRepository) SaveWorkflow(ctx context.Context, w domain.Workflow) error {
	model := toWorkflowModel(w)
	now := time.Now().Unix()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO workflows (id, category, sub_category, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   category = excluded.category,
		   sub_category = excluded.sub_category,
		   status = excluded.status,
		   updated_at = excluded.updated_at`,
		model.ID, model.Category, model.SubCategory, model.Status, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save workflow: %w", err)
	}
	return nil
}

// UpdateStatus updates only the status column of a workflow.
// Returns WorkflowNotFoundError if no matching workflow exists.
func (r *graphRepository) UpdateStatus(ctx context.Context, workflowID string, status domain.Status) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE workflows SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().Unix(), workflowID,
	)
	if err != nil {
		return fmt.Errorf("failed to update workflow status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return &domain.WorkflowNotFoundError{ID: workflowID}
	}
	return nil
}

// SaveStep inserts or updates a step.
func (r *graphRepository) SaveStep(ctx context.Context, s domain.Step) error {
	model := toStepModel(s)
	now := time.Now().Unix()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO steps (id, workflow_id, role, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   workflow_id = excluded.workflow_id,
		   role = excluded.role,
		   updated_at = excluded.updated_at`,
		model.ID, model.WorkflowID, model.Role, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save step: %w", err)
	}
	return nil
}

// DeleteStep removes a step.
// Returns StepNotFoundError if no matching step exists.
func (r *graphRepository) DeleteStep(ctx context.Context, stepID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM steps WHERE id = ?`, stepID)
	if err != nil {
		return fmt.Errorf("failed to delete step: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return &domain.StepNotFoundError{ID: stepID}
	}
	return nil
}

// SaveTransition inserts or updates a step transition.
func (r *graphRepository) SaveTransition(ctx context.Context, t domain.StepTransition) error {
	model := toTransitionModel(t)
	now := time.Now().Unix()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO step_transitions (id, workflow_id, from_step, to_step, action, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   workflow_id = excluded.workflow_id,
		   from_step = excluded.from_step,
		   to_step = excluded.to_step,
		   action = excluded.action,
		   updated_at = excluded.updated_at`,
		model.ID, model.WorkflowID, model.FromStep, model.ToStep, model.Action, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save transition: %w", err)
	}
	return nil
}

// DeleteTransition removes a transition.
// Returns TransitionNotFoundError if no matching transition exists.
func (r *graphRepository) DeleteTransition(ctx context.Context, transitionID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM step_transitions WHERE id = ?`, transitionID)
	if err != nil {
		return fmt.Errorf("failed to delete transition: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return &domain.TransitionNotFoundError{ID: transitionID}
	}
	return nil
}
