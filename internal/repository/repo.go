package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/devnexus/devnexus/internal/model"
	"github.com/devnexus/devnexus/internal/store"
)

const repoColumns = `
	id, name, project_id, project_name, url, default_branch, type,
	is_fork, created_date, last_updated_date,
	commit_count, branch_count, pull_request_count
`

func scanRepo(row pgx.Row) (*model.Repo, error) {
	var repo model.Repo
	err := row.Scan(
		&repo.ID,
		&repo.Name,
		&repo.ProjectID,
		&repo.ProjectName,
		&repo.URL,
		&repo.DefaultBranch,
		&repo.Type,
		&repo.IsFork,
		&repo.CreatedDate,
		&repo.LastUpdatedDate,
		&repo.CommitCount,
		&repo.BranchCount,
		&repo.PullRequestCount,
	)
	if err != nil {
		return nil, err
	}
	return &repo, nil
}

// ListRepos retrieves repositories, optionally filtered by project.
func (r *Repository) ListRepos(ctx context.Context, projectID string) ([]*model.Repo, error) {
	query := `SELECT ` + repoColumns + ` FROM repositories`
	var args []any
	if projectID != "" {
		query += ` WHERE project_id = $1`
		args = append(args, projectID)
	}
	query += ` ORDER BY id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories: %w", err)
	}
	defer rows.Close()

	var repos []*model.Repo
	for rows.Next() {
		repo, err := scanRepo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan repository: %w", err)
		}
		repos = append(repos, repo)
	}
	return repos, rows.Err()
}

// GetRepo retrieves a repository by ID.
func (r *Repository) GetRepo(ctx context.Context, id string) (*model.Repo, error) {
	query := `SELECT ` + repoColumns + ` FROM repositories WHERE id = $1`

	repo, err := scanRepo(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrRepoNotFound
		}
		return nil, fmt.Errorf("failed to get repository: %w", err)
	}
	return repo, nil
}
