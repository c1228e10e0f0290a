package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/devnexus/devnexus/internal/model"
	"github.com/devnexus/devnexus/internal/store"
)

const projectColumns = `
	id, name, description, url, state, visibility, last_update_time,
	team_id, team_name, team_description,
	repository_count, pipeline_count, work_item_count
`

func scanProject(row pgx.Row) (*model.Project, error) {
	var p model.Project
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.URL,
		&p.State,
		&p.Visibility,
		&p.LastUpdateTime,
		&p.DefaultTeam.ID,
		&p.DefaultTeam.Name,
		&p.DefaultTeam.Description,
		&p.RepositoryCount,
		&p.PipelineCount,
		&p.WorkItemCount,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProjects retrieves all projects.
func (r *Repository) ListProjects(ctx context.Context) ([]*model.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// GetProject retrieves a project by ID.
func (r *Repository) GetProject(ctx context.Context, id string) (*model.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`

	p, err := scanProject(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}
