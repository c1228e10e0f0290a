package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/devnexus/devnexus/internal/model"
	"github.com/devnexus/devnexus/internal/store"
)

const pipelineColumns = `
	id, name, project_id, project_name, type, status,
	last_run_date, last_run_status, last_run_result, url
`

const runColumns = `
	id, pipeline_id, name, status, result, start_time, finish_time,
	triggered_by, source_branch, source_version
`

func scanPipeline(row pgx.Row) (*model.Pipeline, error) {
	var p model.Pipeline
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.ProjectID,
		&p.ProjectName,
		&p.Type,
		&p.Status,
		&p.LastRunDate,
		&p.LastRunStatus,
		&p.LastRunResult,
		&p.URL,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanRun(row pgx.Row) (*model.PipelineRun, error) {
	var run model.PipelineRun
	err := row.Scan(
		&run.ID,
		&run.PipelineID,
		&run.Name,
		&run.Status,
		&run.Result,
		&run.StartTime,
		&run.FinishTime,
		&run.TriggeredBy,
		&run.SourceBranch,
		&run.SourceVersion,
	)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ListPipelines retrieves pipelines, optionally filtered by project.
func (r *Repository) ListPipelines(ctx context.Context, projectID string) ([]*model.Pipeline, error) {
	query := `SELECT ` + pipelineColumns + ` FROM pipelines`
	var args []any
	if projectID != "" {
		query += ` WHERE project_id = $1`
		args = append(args, projectID)
	}
	query += ` ORDER BY id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list pipelines: %w", err)
	}
	defer rows.Close()

	var pipelines []*model.Pipeline
	for rows.Next() {
		p, err := scanPipeline(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pipeline: %w", err)
		}
		pipelines = append(pipelines, p)
	}
	return pipelines, rows.Err()
}

// GetPipeline retrieves a pipeline with its recent runs, newest first.
func (r *Repository) GetPipeline(ctx context.Context, id string) (*model.Pipeline, error) {
	query := `SELECT ` + pipelineColumns + ` FROM pipelines WHERE id = $1`

	p, err := scanPipeline(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrPipelineNotFound
		}
		return nil, fmt.Errorf("failed to get pipeline: %w", err)
	}

	runs, err := r.listRuns(ctx, id)
	if err != nil {
		return nil, err
	}
	p.RecentRuns = runs
	return p, nil
}

func (r *Repository) listRuns(ctx context.Context, pipelineID string) ([]*model.PipelineRun, error) {
	query := `SELECT ` + runColumns + ` FROM pipeline_runs WHERE pipeline_id = $1 ORDER BY start_time DESC`

	rows, err := r.pool.Query(ctx, query, pipelineID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pipeline runs: %w", err)
	}
	defer rows.Close()

	var runs []*model.PipelineRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pipeline run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ListPipelineRuns retrieves the runs of one pipeline, newest first.
// The pipeline must exist.
func (r *Repository) ListPipelineRuns(ctx context.Context, pipelineID string) ([]*model.PipelineRun, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM pipelines WHERE id = $1)`, pipelineID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check pipeline: %w", err)
	}
	if !exists {
		return nil, store.ErrPipelineNotFound
	}
	return r.listRuns(ctx, pipelineID)
}

// ListAllPipelineRuns retrieves every run across all pipelines.
func (r *Repository) ListAllPipelineRuns(ctx context.Context) ([]*model.PipelineRun, error) {
	query := `SELECT ` + runColumns + ` FROM pipeline_runs ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pipeline runs: %w", err)
	}
	defer rows.Close()

	var runs []*model.PipelineRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pipeline run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetPipelineRun retrieves one run by ID.
func (r *Repository) GetPipelineRun(ctx context.Context, runID string) (*model.PipelineRun, error) {
	query := `SELECT ` + runColumns + ` FROM pipeline_runs WHERE id = $1`

	run, err := scanRun(r.pool.QueryRow(ctx, query, runID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to get pipeline run: %w", err)
	}
	return run, nil
}

// CreatePipelineRun inserts a new run. The referenced pipeline must
// exist; the foreign key enforces it.
func (r *Repository) CreatePipelineRun(ctx context.Context, run *model.PipelineRun) error {
	query := `
		INSERT INTO pipeline_runs (` + runColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		run.ID,
		run.PipelineID,
		run.Name,
		run.Status,
		run.Result,
		run.StartTime,
		run.FinishTime,
		run.TriggeredBy,
		run.SourceBranch,
		run.SourceVersion,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrPipelineNotFound
		}
		return fmt.Errorf("failed to create pipeline run: %w", err)
	}
	return nil
}
