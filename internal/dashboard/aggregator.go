// Package dashboard computes ephemeral metric snapshots over the entity
// store. Nothing here is persisted; every call recomputes from current
// state, so concurrent writes may land between reads within one snapshot.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/devnexus/devnexus/internal/metrics"
	"github.com/devnexus/devnexus/internal/model"
	"github.com/devnexus/devnexus/internal/store"
)

// Aggregator computes dashboard metrics on demand.
type Aggregator struct {
	store   store.Store
	logger  *slog.Logger
	metrics metrics.Recorder
	now     func() time.Time
}

// New creates an Aggregator over the given store.
func New(st store.Store, logger *slog.Logger, rec metrics.Recorder) *Aggregator {
	if rec == nil {
		rec = metrics.NewNoop()
	}
	return &Aggregator{
		store:   st,
		logger:  logger,
		metrics: rec,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Overview returns system-wide counts across all entity collections.
func (a *Aggregator) Overview(ctx context.Context) (*model.DashboardMetrics, error) {
	started := time.Now()
	defer func() { a.metrics.ObserveAggregationDuration(time.Since(started)) }()

	projects, err := a.store.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	pipelines, err := a.store.ListPipelines(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list pipelines: %w", err)
	}
	runs, err := a.store.ListAllPipelineRuns(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pipeline runs: %w", err)
	}
	workItems, err := a.store.ListWorkItems(ctx, store.WorkItemFilter{})
	if err != nil {
		return nil, fmt.Errorf("list work items: %w", err)
	}
	repos, err := a.store.ListRepos(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list repos: %w", err)
	}
	users, err := a.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	m := &model.DashboardMetrics{
		TotalProjects:     len(projects),
		TotalPipelines:    len(pipelines),
		TotalWorkItems:    len(workItems),
		TotalRepositories: len(repos),
		LastUpdated:       a.now(),
	}
	for _, p := range projects {
		if p.IsActive() {
			m.ActiveProjects++
		}
	}
	for _, r := range runs {
		if r.Result == model.RunResultFailed {
			m.FailedPipelineRuns++
		}
	}
	for _, w := range workItems {
		if w.State == model.WorkItemStateActive {
			m.OpenWorkItems++
		}
	}
	for _, u := range users {
		if u.IsActive {
			m.ActiveUsers++
		}
	}
	return m, nil
}

// ProjectStats summarizes a single project. Returns
// store.ErrProjectNotFound for unknown projects.
func (a *Aggregator) ProjectStats(ctx context.Context, projectID string) (*model.ProjectMetrics, error) {
	project, err := a.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	pipelines, err := a.store.ListPipelines(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list pipelines: %w", err)
	}
	repos, err := a.store.ListRepos(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list repos: %w", err)
	}
	workItems, err := a.store.ListWorkItems(ctx, store.WorkItemFilter{ProjectID: projectID})
	if err != nil {
		return nil, fmt.Errorf("list work items: %w", err)
	}

	m := &model.ProjectMetrics{
		ProjectID:           projectID,
		ProjectName:         project.Name,
		PipelineCount:       len(pipelines),
		RepositoryCount:     len(repos),
		WorkItemCount:       len(workItems),
		PipelineSuccessRate: a.projectSuccessRate(ctx, pipelines),
		LastActivity:        a.now(),
	}
	for _, w := range workItems {
		switch w.State {
		case model.WorkItemStateActive:
			m.ActiveWorkItems++
		case model.WorkItemStateClosed:
			m.CompletedWorkItems++
		}
	}
	return m, nil
}

// projectSuccessRate computes the percentage of succeeded runs across a
// project's pipelines. Any failure reading runs degrades to 0 rather
// than failing the whole project summary.
func (a *Aggregator) projectSuccessRate(ctx context.Context, pipelines []*model.Pipeline) float64 {
	if len(pipelines) == 0 {
		return 0
	}
	ids := make(map[string]struct{}, len(pipelines))
	for _, p := range pipelines {
		ids[p.ID] = struct{}{}
	}

	runs, err := a.store.ListAllPipelineRuns(ctx)
	if err != nil {
		a.logger.Warn("success rate degraded to zero", slog.String("error", err.Error()))
		return 0
	}

	var total, succeeded int
	for _, r := range runs {
		if _, ok := ids[r.PipelineID]; !ok {
			continue
		}
		total++
		if r.Result == model.RunResultSucceeded {
			succeeded++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(succeeded) / float64(total) * 100
}

// PipelineStats summarizes run outcomes per pipeline, optionally
// filtered to one project. Pipelines with no runs report a zero success
// rate, zero average duration, and a last-run time of now.
func (a *Aggregator) PipelineStats(ctx context.Context, projectID string) ([]model.PipelineMetrics, error) {
	pipelines, err := a.store.ListPipelines(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list pipelines: %w", err)
	}
	allRuns, err := a.store.ListAllPipelineRuns(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pipeline runs: %w", err)
	}

	byPipeline := make(map[string][]*model.PipelineRun)
	for _, r := range allRuns {
		byPipeline[r.PipelineID] = append(byPipeline[r.PipelineID], r)
	}

	now := a.now()
	out := make([]model.PipelineMetrics, 0, len(pipelines))
	for _, p := range pipelines {
		runs := byPipeline[p.ID]
		m := model.PipelineMetrics{
			PipelineID:   p.ID,
			PipelineName: p.Name,
			TotalRuns:    len(runs),
			LastRun:      now,
		}

		var totalDuration time.Duration
		for _, r := range runs {
			switch r.Result {
			case model.RunResultSucceeded:
				m.SuccessfulRuns++
			case model.RunResultFailed:
				m.FailedRuns++
			case model.RunResultCancelled:
				m.CancelledRuns++
			}
			totalDuration += r.Duration(now)
		}
		if len(runs) > 0 {
			m.SuccessRate = float64(m.SuccessfulRuns) / float64(len(runs)) * 100
			m.AverageDuration = totalDuration / time.Duration(len(runs))
			m.LastRun = latestStart(runs)
		}
		out = append(out, m)
	}
	return out, nil
}

func latestStart(runs []*model.PipelineRun) time.Time {
	latest := runs[0].StartTime
	for _, r := range runs[1:] {
		if r.StartTime.After(latest) {
			latest = r.StartTime
		}
	}
	return latest
}

// RecentActivity merges the newest work item changes and pipeline runs
// into a single feed. Each source feed contributes at most count/2
// entries before the merge, so the result can be shorter than count
// even when more source events exist.
func (a *Aggregator) RecentActivity(ctx context.Context, count int) ([]model.RecentActivity, error) {
	workItems, err := a.store.ListWorkItems(ctx, store.WorkItemFilter{})
	if err != nil {
		return nil, fmt.Errorf("list work items: %w", err)
	}
	runs, err := a.store.ListAllPipelineRuns(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pipeline runs: %w", err)
	}
	pipelines, err := a.store.ListPipelines(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list pipelines: %w", err)
	}
	pipelineByID := make(map[string]*model.Pipeline, len(pipelines))
	for _, p := range pipelines {
		pipelineByID[p.ID] = p
	}

	perFeed := count / 2

	sort.Slice(workItems, func(i, j int) bool {
		return workItems[i].LastChanged().After(workItems[j].LastChanged())
	})
	if len(workItems) > perFeed {
		workItems = workItems[:perFeed]
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartTime.After(runs[j].StartTime)
	})
	if len(runs) > perFeed {
		runs = runs[:perFeed]
	}

	activities := make([]model.RecentActivity, 0, len(workItems)+len(runs))
	for _, w := range workItems {
		activities = append(activities, model.RecentActivity{
			ID:          w.ID,
			Type:        model.ActivityTypeWorkItem,
			Title:       w.Title,
			Description: fmt.Sprintf("Work item %s", w.State),
			User:        w.AssignedTo,
			Timestamp:   w.LastChanged(),
			ProjectID:   w.ProjectID,
			ProjectName: w.ProjectName,
			Status:      w.State,
			URL:         fmt.Sprintf("#/workitems/%s", w.ID),
		})
	}
	for _, r := range runs {
		projectID, projectName := "unknown", "Unknown"
		if p, ok := pipelineByID[r.PipelineID]; ok {
			projectID, projectName = p.ProjectID, p.ProjectName
		}
		activities = append(activities, model.RecentActivity{
			ID:          r.ID,
			Type:        model.ActivityTypePipelineRun,
			Title:       r.Name,
			Description: fmt.Sprintf("Pipeline run %s", r.Result),
			User:        r.TriggeredBy,
			Timestamp:   r.StartTime,
			ProjectID:   projectID,
			ProjectName: projectName,
			Status:      r.Status,
			URL:         fmt.Sprintf("#/pipelines/%s", r.ID),
		})
	}

	sort.Slice(activities, func(i, j int) bool {
		return activities[i].Timestamp.After(activities[j].Timestamp)
	})
	if len(activities) > count {
		activities = activities[:count]
	}
	return activities, nil
}

// ProjectSummary aggregates project counts for the overview card.
func (a *Aggregator) ProjectSummary(ctx context.Context) (*model.ProjectSummary, error) {
	projects, err := a.store.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	summary := &model.ProjectSummary{
		TotalProjects:        len(projects),
		ProjectsByVisibility: make(map[string]int),
	}
	for _, p := range projects {
		if p.IsActive() {
			summary.ActiveProjects++
		}
		summary.ProjectsByVisibility[p.Visibility]++
	}

	sorted := make([]*model.Project, len(projects))
	copy(sorted, projects)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].LastUpdateTime.After(sorted[j].LastUpdateTime)
	})
	if len(sorted) > 5 {
		sorted = sorted[:5]
	}
	summary.RecentProjects = make([]model.ProjectDigest, 0, len(sorted))
	for _, p := range sorted {
		summary.RecentProjects = append(summary.RecentProjects, model.ProjectDigest{
			ID:             p.ID,
			Name:           p.Name,
			State:          p.State,
			LastUpdateTime: p.LastUpdateTime,
		})
	}
	return summary, nil
}
