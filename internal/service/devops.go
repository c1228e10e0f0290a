// Package service orchestrates reads and writes over the entity store
// and fans out update notifications for mutating operations.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/devnexus/devnexus/internal/metrics"
	"github.com/devnexus/devnexus/internal/model"
	"github.com/devnexus/devnexus/internal/notify"
	"github.com/devnexus/devnexus/internal/store"
)

// DevOps exposes project, pipeline, work item, and repository
// operations.
type DevOps struct {
	store      store.Store
	dispatcher *notify.Dispatcher
	logger     *slog.Logger
	metrics    metrics.Recorder
	now        func() time.Time
}

// NewDevOps creates the orchestration service.
func NewDevOps(st store.Store, dispatcher *notify.Dispatcher, logger *slog.Logger, rec metrics.Recorder) *DevOps {
	if rec == nil {
		rec = metrics.NewNoop()
	}
	return &DevOps{
		store:      st,
		dispatcher: dispatcher,
		logger:     logger.With("component", "service.devops"),
		metrics:    rec,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// ListProjects returns all projects.
func (s *DevOps) ListProjects(ctx context.Context) ([]*model.Project, error) {
	return s.store.ListProjects(ctx)
}

// GetProject returns one project by id.
func (s *DevOps) GetProject(ctx context.Context, id string) (*model.Project, error) {
	return s.store.GetProject(ctx, id)
}

// ListPipelines returns pipelines, optionally filtered to one project.
func (s *DevOps) ListPipelines(ctx context.Context, projectID string) ([]*model.Pipeline, error) {
	return s.store.ListPipelines(ctx, projectID)
}

// GetPipeline returns one pipeline with its recent runs.
func (s *DevOps) GetPipeline(ctx context.Context, id string) (*model.Pipeline, error) {
	return s.store.GetPipeline(ctx, id)
}

// ListPipelineRuns returns the runs of one pipeline, newest first.
func (s *DevOps) ListPipelineRuns(ctx context.Context, pipelineID string) ([]*model.PipelineRun, error) {
	return s.store.ListPipelineRuns(ctx, pipelineID)
}

// GetPipelineRun returns one run by id.
func (s *DevOps) GetPipelineRun(ctx context.Context, runID string) (*model.PipelineRun, error) {
	return s.store.GetPipelineRun(ctx, runID)
}

// TriggerPipelineRun records a new in-flight run for the pipeline and
// notifies its watchers. The run starts in Running status with an
// Unknown result; a notification failure never fails the trigger.
func (s *DevOps) TriggerPipelineRun(ctx context.Context, pipelineID string, triggeredBy string) (*model.PipelineRun, error) {
	if _, err := s.store.GetPipeline(ctx, pipelineID); err != nil {
		return nil, err
	}

	if triggeredBy == "" {
		triggeredBy = "Local User"
	}

	now := s.now()
	run := &model.PipelineRun{
		ID:            fmt.Sprintf("run-%s", ulid.Make()),
		PipelineID:    pipelineID,
		Name:          fmt.Sprintf("Manual Run - %s", now.Format("2006-01-02 15:04")),
		Status:        model.RunStatusRunning,
		Result:        model.RunResultUnknown,
		StartTime:     now,
		TriggeredBy:   triggeredBy,
		SourceBranch:  "main",
		SourceVersion: "local",
	}

	if err := s.store.CreatePipelineRun(ctx, run); err != nil {
		return nil, fmt.Errorf("create pipeline run: %w", err)
	}

	s.metrics.IncPipelineRunTriggered()
	s.logger.Info("pipeline run triggered",
		"pipeline_id", pipelineID,
		"run_id", run.ID,
		"triggered_by", triggeredBy,
	)
	s.dispatcher.SendPipelineStatusUpdate(ctx, pipelineID, run.Status, "", run.ID)

	return run, nil
}

// ListWorkItems returns work items matching the filter.
func (s *DevOps) ListWorkItems(ctx context.Context, filter store.WorkItemFilter) ([]*model.WorkItem, error) {
	return s.store.ListWorkItems(ctx, filter)
}

// GetWorkItem returns one work item by id.
func (s *DevOps) GetWorkItem(ctx context.Context, id string) (*model.WorkItem, error) {
	return s.store.GetWorkItem(ctx, id)
}

// CreateWorkItem stores a new work item and notifies watchers. The
// caller's id and creation date are overwritten.
func (s *DevOps) CreateWorkItem(ctx context.Context, item *model.WorkItem) (*model.WorkItem, error) {
	item.ID = fmt.Sprintf("wi-%s", ulid.Make())
	item.CreatedDate = s.now()
	item.ChangedDate = nil

	if err := s.store.CreateWorkItem(ctx, item); err != nil {
		return nil, fmt.Errorf("create work item: %w", err)
	}

	s.metrics.IncWorkItemCreated()
	s.dispatcher.SendWorkItemStatusUpdate(ctx, item.ID, item.Title, notify.WorkItemCreated, "", "")

	return item, nil
}

// UpdateWorkItem applies mutable fields onto an existing item and
// notifies watchers. A state transition is reported as a status change;
// any other edit as a plain update.
func (s *DevOps) UpdateWorkItem(ctx context.Context, id string, updated *model.WorkItem) (*model.WorkItem, error) {
	existing, err := s.store.GetWorkItem(ctx, id)
	if err != nil {
		return nil, err
	}

	oldState := existing.State

	existing.Title = updated.Title
	existing.Description = updated.Description
	existing.Type = updated.Type
	existing.State = updated.State
	existing.Priority = updated.Priority
	existing.AssignedTo = updated.AssignedTo
	existing.Tags = updated.Tags
	changed := s.now()
	existing.ChangedDate = &changed

	if err := s.store.UpdateWorkItem(ctx, existing); err != nil {
		return nil, fmt.Errorf("update work item: %w", err)
	}

	s.metrics.IncWorkItemUpdated()
	if oldState != existing.State {
		s.dispatcher.SendWorkItemStatusUpdate(ctx, id, existing.Title, notify.WorkItemStatusChanged, oldState, existing.State)
	} else {
		s.dispatcher.SendWorkItemStatusUpdate(ctx, id, existing.Title, notify.WorkItemUpdated, "", "")
	}

	return existing, nil
}

// DeleteWorkItem removes a work item and notifies watchers.
func (s *DevOps) DeleteWorkItem(ctx context.Context, id string) error {
	item, err := s.store.GetWorkItem(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteWorkItem(ctx, id); err != nil {
		return err
	}

	s.metrics.IncWorkItemDeleted()
	s.dispatcher.SendWorkItemStatusUpdate(ctx, id, item.Title, notify.WorkItemDeleted, "", "")

	return nil
}

// ListRepos returns repositories, optionally filtered to one project.
func (s *DevOps) ListRepos(ctx context.Context, projectID string) ([]*model.Repo, error) {
	return s.store.ListRepos(ctx, projectID)
}

// GetRepo returns one repository by id.
func (s *DevOps) GetRepo(ctx context.Context, id string) (*model.Repo, error) {
	return s.store.GetRepo(ctx, id)
}

// ListBranches returns the known branches of a repository. Branch
// listing is not backed by a real source host yet, so the result is the
// default branch plus placeholder branches.
func (s *DevOps) ListBranches(ctx context.Context, repoID string) ([]string, error) {
	repo, err := s.store.GetRepo(ctx, repoID)
	if err != nil {
		return nil, err
	}
	return []string{repo.DefaultBranch, "develop", "feature/new-feature"}, nil
}

// ListCommits returns recent commits of a repository branch. Commit
// listing is not backed by a real source host yet, so the result is a
// fixed placeholder log.
func (s *DevOps) ListCommits(ctx context.Context, repoID, branch string) ([]string, error) {
	if _, err := s.store.GetRepo(ctx, repoID); err != nil {
		return nil, err
	}
	return []string{
		"abc1234 - Initial commit",
		"def5678 - Add authentication system",
		"ghi9012 - Implement dashboard UI",
		"jkl3456 - Add pipeline monitoring",
		"mno7890 - Update documentation",
	}, nil
}
