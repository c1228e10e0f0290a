// Package store defines the entity store contract shared by the Postgres
// and in-memory implementations.
package store

import (
	"context"
	"errors"

	"github.com/devnexus/devnexus/internal/model"
)

// Not-found sentinels. Store I/O failures are returned wrapped; callers
// distinguish absence from transport errors with errors.Is.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrProjectNotFound  = errors.New("project not found")
	ErrPipelineNotFound = errors.New("pipeline not found")
	ErrRunNotFound      = errors.New("pipeline run not found")
	ErrWorkItemNotFound = errors.New("work item not found")
	ErrRepoNotFound     = errors.New("repository not found")
)

// WorkItemFilter narrows work item listings. Zero values mean no filter.
type WorkItemFilter struct {
	ProjectID string
	Type      string
}

// Store is the persistence boundary for the application. Aggregations read
// entity collections without snapshot isolation, so results under
// concurrent writes may be weakly consistent; that is acceptable for a
// dashboard and deliberately not papered over here.
type Store interface {
	// Users
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	UpdateUserLastLogin(ctx context.Context, id string) error
	ListUsers(ctx context.Context) ([]*model.User, error)

	// Projects
	ListProjects(ctx context.Context) ([]*model.Project, error)
	GetProject(ctx context.Context, id string) (*model.Project, error)

	// Pipelines and runs. An empty projectID lists all pipelines.
	ListPipelines(ctx context.Context, projectID string) ([]*model.Pipeline, error)
	GetPipeline(ctx context.Context, id string) (*model.Pipeline, error)
	ListPipelineRuns(ctx context.Context, pipelineID string) ([]*model.PipelineRun, error)
	ListAllPipelineRuns(ctx context.Context) ([]*model.PipelineRun, error)
	GetPipelineRun(ctx context.Context, runID string) (*model.PipelineRun, error)
	CreatePipelineRun(ctx context.Context, run *model.PipelineRun) error

	// Work items
	ListWorkItems(ctx context.Context, filter WorkItemFilter) ([]*model.WorkItem, error)
	GetWorkItem(ctx context.Context, id string) (*model.WorkItem, error)
	CreateWorkItem(ctx context.Context, item *model.WorkItem) error
	UpdateWorkItem(ctx context.Context, item *model.WorkItem) error
	DeleteWorkItem(ctx context.Context, id string) error

	// Repositories. An empty projectID lists all repositories.
	ListRepos(ctx context.Context, projectID string) ([]*model.Repo, error)
	GetRepo(ctx context.Context, id string) (*model.Repo, error)
}
