package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"climate-dashboard/internal/models"
	"climate-dashboard/pkg/database"
	"climate-dashboard/pkg/logging"
)

// RunRepository provides data access for archived simulation runs
type RunRepository interface {
	CreateRun(ctx context.Context, run *models.Run) error
	GetRun(ctx context.Context, id string) (*models.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]*models.Run, int, error)
	HealthCheck(ctx context.Context) error
}

// RunFilter defines filters for listing runs
type RunFilter struct {
	Kind   *models.RunKind
	Limit  int
	Offset int
}

// runRepository implements RunRepository on PostgreSQL
type runRepository struct {
	db     *database.PostgresDB
	logger *logging.StructuredLogger
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *database.PostgresDB, logger *logging.StructuredLogger) RunRepository {
	return &runRepository{
		db:     db,
		logger: logger,
	}
}

const runColumns = `id, kind, seed, year, policy, hemisphere, item_count, payload, created_at`

// CreateRun inserts an archived run
func (r *runRepository) CreateRun(ctx context.Context, run *models.Run) error {
	query := `
		INSERT INTO simulation_runs (` + runColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, "insert_run", query,
		run.ID,
		run.Kind,
		run.Seed,
		run.Year,
		run.Policy,
		run.Hemisphere,
		run.ItemCount,
		run.Payload,
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	r.logger.Debug(ctx, "[REPO_CREATE_RUN] Run archived", logging.Fields{
		"run_id":     run.ID,
		"kind":       run.Kind,
		"item_count": run.ItemCount,
	})

	return nil
}

// GetRun retrieves an archived run by ID
func (r *runRepository) GetRun(ctx context.Context, id string) (*models.Run, error) {
	query := `SELECT ` + runColumns + ` FROM simulation_runs WHERE id = $1`

	var run models.Run
	err := r.db.GetContext(ctx, "get_run", &run, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{
			Resource: "simulation_run",
			ID:       id,
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return &run, nil
}

// ListRuns retrieves archived runs, newest first, with pagination
func (r *runRepository) ListRuns(ctx context.Context, filter RunFilter) ([]*models.Run, int, error) {
	query := `SELECT ` + runColumns + ` FROM simulation_runs WHERE 1=1`
	args := []interface{}{}
	argNum := 1

	if filter.Kind != nil {
		query += fmt.Sprintf(" AND kind = $%d", argNum)
		args = append(args, *filter.Kind)
		argNum++
	}

	countQuery := "SELECT COUNT(*) FROM (" + query + ") AS count_query"
	var totalCount int
	if err := r.db.GetContext(ctx, "count_runs", &totalCount, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count runs: %w", err)
	}

	query += " ORDER BY created_at DESC, id"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filter.Limit)
		argNum++
	}
	query += fmt.Sprintf(" OFFSET $%d", argNum)
	args = append(args, filter.Offset)

	var runs []*models.Run
	if err := r.db.SelectContext(ctx, "list_runs", &runs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list runs: %w", err)
	}

	return runs, totalCount, nil
}

// HealthCheck performs a repository health check
func (r *runRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func (e *NotFoundError) IsTransient() bool {
	return false
}
