// Package testutil holds helpers shared by integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/devnexus/devnexus/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 715715

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetSchema drops every table and reapplies scripts/schema.sql.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	drop := `DROP TABLE IF EXISTS pipeline_runs, work_items, repositories, pipelines, projects, users CASCADE`
	if _, err := pool.Exec(ctx, drop); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}

	root, err := ProjectRoot()
	if err != nil {
		return err
	}
	schemaSQL, err := os.ReadFile(filepath.Join(root, "scripts", "schema.sql"))
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	if _, err := pool.Exec(ctx, string(schemaSQL)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the repository root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestProject creates a project with sensible defaults.
func NewTestProject(t testing.TB, id string) *model.Project {
	t.Helper()
	return &model.Project{
		ID:             id,
		Name:           "Project " + id,
		State:          "Active",
		Visibility:     "Private",
		LastUpdateTime: time.Now().UTC(),
	}
}

// NewTestPipeline creates a pipeline attached to a project.
func NewTestPipeline(t testing.TB, id, projectID string) *model.Pipeline {
	t.Helper()
	return &model.Pipeline{
		ID:          id,
		Name:        "Pipeline " + id,
		ProjectID:   projectID,
		Type:        "Build",
		Status:      "Enabled",
		LastRunDate: time.Now().UTC(),
	}
}

// NewTestRun creates a completed pipeline run.
func NewTestRun(t testing.TB, id, pipelineID string) *model.PipelineRun {
	t.Helper()
	start := time.Now().UTC().Add(-10 * time.Minute)
	finish := start.Add(5 * time.Minute)
	return &model.PipelineRun{
		ID:            id,
		PipelineID:    pipelineID,
		Name:          "Run " + id,
		Status:        model.RunStatusCompleted,
		Result:        model.RunResultSucceeded,
		StartTime:     start,
		FinishTime:    &finish,
		TriggeredBy:   "test-user",
		SourceBranch:  "main",
		SourceVersion: "abc123",
	}
}

// NewTestWorkItem creates an active work item in a project.
func NewTestWorkItem(t testing.TB, id, projectID string) *model.WorkItem {
	t.Helper()
	return &model.WorkItem{
		ID:          id,
		Title:       "Work item " + id,
		Type:        "Task",
		State:       model.WorkItemStateActive,
		Priority:    "2",
		ProjectID:   projectID,
		CreatedDate: time.Now().UTC(),
	}
}

// UniqueID generates a unique identifier for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
