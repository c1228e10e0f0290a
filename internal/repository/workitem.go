package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/devnexus/devnexus/internal/model"
	"github.com/devnexus/devnexus/internal/store"
)

const workItemColumns = `
	id, title, description, type, state, priority, assigned_to,
	created_date, changed_date, project_id, project_name,
	area_path, iteration_path, tags
`

func scanWorkItem(row pgx.Row) (*model.WorkItem, error) {
	var w model.WorkItem
	var tags []string
	err := row.Scan(
		&w.ID,
		&w.Title,
		&w.Description,
		&w.Type,
		&w.State,
		&w.Priority,
		&w.AssignedTo,
		&w.CreatedDate,
		&w.ChangedDate,
		&w.ProjectID,
		&w.ProjectName,
		&w.AreaPath,
		&w.IterationPath,
		pq.Array(&tags),
	)
	if err != nil {
		return nil, err
	}
	w.Tags = tags
	return &w, nil
}

// ListWorkItems retrieves work items matching the filter.
func (r *Repository) ListWorkItems(ctx context.Context, filter store.WorkItemFilter) ([]*model.WorkItem, error) {
	query := `SELECT ` + workItemColumns + ` FROM work_items`

	var conditions []string
	var args []any
	if filter.ProjectID != "" {
		args = append(args, filter.ProjectID)
		conditions = append(conditions, fmt.Sprintf("project_id = $%d", len(args)))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)))
	}
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list work items: %w", err)
	}
	defer rows.Close()

	var items []*model.WorkItem
	for rows.Next() {
		w, err := scanWorkItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan work item: %w", err)
		}
		items = append(items, w)
	}
	return items, rows.Err()
}

// GetWorkItem retrieves a work item by ID.
func (r *Repository) GetWorkItem(ctx context.Context, id string) (*model.WorkItem, error) {
	query := `SELECT ` + workItemColumns + ` FROM work_items WHERE id = $1`

	w, err := scanWorkItem(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrWorkItemNotFound
		}
		return nil, fmt.Errorf("failed to get work item: %w", err)
	}
	return w, nil
}

// CreateWorkItem inserts a new work item.
func (r *Repository) CreateWorkItem(ctx context.Context, item *model.WorkItem) error {
	query := `
		INSERT INTO work_items (` + workItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.pool.Exec(ctx, query,
		item.ID,
		item.Title,
		item.Description,
		item.Type,
		item.State,
		item.Priority,
		item.AssignedTo,
		item.CreatedDate,
		item.ChangedDate,
		item.ProjectID,
		item.ProjectName,
		item.AreaPath,
		item.IterationPath,
		pq.Array(item.Tags),
	)
	if err != nil {
		return fmt.Errorf("failed to create work item: %w", err)
	}
	return nil
}

// UpdateWorkItem rewrites the mutable fields of an existing item.
func (r *Repository) UpdateWorkItem(ctx context.Context, item *model.WorkItem) error {
	query := `
		UPDATE work_items
		SET title = $2, description = $3, type = $4, state = $5,
		    priority = $6, assigned_to = $7, changed_date = $8, tags = $9
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		item.ID,
		item.Title,
		item.Description,
		item.Type,
		item.State,
		item.Priority,
		item.AssignedTo,
		item.ChangedDate,
		pq.Array(item.Tags),
	)
	if err != nil {
		return fmt.Errorf("failed to update work item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrWorkItemNotFound
	}
	return nil
}

// DeleteWorkItem removes a work item by ID.
func (r *Repository) DeleteWorkItem(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM work_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete work item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrWorkItemNotFound
	}
	return nil
}

// isForeignKeyViolation checks if the error is a PostgreSQL foreign key
// constraint violation (error code 23503).
func isForeignKeyViolation(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "23503") || strings.Contains(err.Error(), "foreign key"))
}
