package model

import "time"

// DashboardMetrics is an ephemeral snapshot of system-wide counts.
// Recomputed on every request, never persisted.
type DashboardMetrics struct {
	TotalProjects      int       `json:"total_projects"`
	ActiveProjects     int       `json:"active_projects"`
	TotalPipelines     int       `json:"total_pipelines"`
	FailedPipelineRuns int       `json:"failed_pipeline_runs"`
	TotalWorkItems     int       `json:"total_work_items"`
	OpenWorkItems      int       `json:"open_work_items"`
	TotalRepositories  int       `json:"total_repositories"`
	ActiveUsers        int       `json:"active_users"`
	LastUpdated        time.Time `json:"last_updated"`
}

// ProjectMetrics summarizes a single project.
type ProjectMetrics struct {
	ProjectID           string    `json:"project_id"`
	ProjectName         string    `json:"project_name"`
	PipelineCount       int       `json:"pipeline_count"`
	RepositoryCount     int       `json:"repository_count"`
	WorkItemCount       int       `json:"work_item_count"`
	ActiveWorkItems     int       `json:"active_work_items"`
	CompletedWorkItems  int       `json:"completed_work_items"`
	PipelineSuccessRate float64   `json:"pipeline_success_rate"`
	LastActivity        time.Time `json:"last_activity"`
}

// PipelineMetrics summarizes run outcomes for a single pipeline.
type PipelineMetrics struct {
	PipelineID      string        `json:"pipeline_id"`
	PipelineName    string        `json:"pipeline_name"`
	TotalRuns       int           `json:"total_runs"`
	SuccessfulRuns  int           `json:"successful_runs"`
	FailedRuns      int           `json:"failed_runs"`
	CancelledRuns   int           `json:"cancelled_runs"`
	SuccessRate     float64       `json:"success_rate"`
	AverageDuration time.Duration `json:"average_duration"`
	LastRun         time.Time     `json:"last_run"`
}

// Activity feed entry types.
const (
	ActivityTypeWorkItem    = "WorkItem"
	ActivityTypePipelineRun = "PipelineRun"
)

// RecentActivity is a single entry in the merged activity feed.
type RecentActivity struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	User        string    `json:"user"`
	Timestamp   time.Time `json:"timestamp"`
	ProjectID   string    `json:"project_id"`
	ProjectName string    `json:"project_name"`
	Status      string    `json:"status"`
	URL         string    `json:"url"`
}

// ProjectSummary aggregates project counts for the dashboard overview card.
type ProjectSummary struct {
	TotalProjects        int             `json:"total_projects"`
	ActiveProjects       int             `json:"active_projects"`
	ProjectsByVisibility map[string]int  `json:"projects_by_visibility"`
	RecentProjects       []ProjectDigest `json:"recent_projects"`
}

// ProjectDigest is the shortened project form used in summaries.
type ProjectDigest struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	State          string    `json:"state"`
	LastUpdateTime time.Time `json:"last_update_time"`
}
