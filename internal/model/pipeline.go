package model

import "time"

// Pipeline run result constants.
const (
	RunResultSucceeded = "Succeeded"
	RunResultFailed    = "Failed"
	RunResultCancelled = "Cancelled"
	RunResultUnknown   = "Unknown"
)

// Pipeline run status constants.
const (
	RunStatusRunning   = "Running"
	RunStatusCompleted = "Completed"
)

// Pipeline represents a build or release pipeline owned by a project.
type Pipeline struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	ProjectID     string         `json:"project_id"`
	ProjectName   string         `json:"project_name"`
	Type          string         `json:"type"`
	Status        string         `json:"status"`
	LastRunDate   time.Time      `json:"last_run_date"`
	LastRunStatus string         `json:"last_run_status"`
	LastRunResult string         `json:"last_run_result"`
	URL           string         `json:"url"`
	RecentRuns    []*PipelineRun `json:"recent_runs,omitempty"`
}

// PipelineRun is a single execution of a pipeline.
// PipelineID is an explicit foreign key; runs never outlive their pipeline.
type PipelineRun struct {
	ID            string     `json:"id"`
	PipelineID    string     `json:"pipeline_id"`
	Name          string     `json:"name"`
	Status        string     `json:"status"`
	Result        string     `json:"result"`
	StartTime     time.Time  `json:"start_time"`
	FinishTime    *time.Time `json:"finish_time,omitempty"`
	TriggeredBy   string     `json:"triggered_by"`
	SourceBranch  string     `json:"source_branch"`
	SourceVersion string     `json:"source_version"`
}

// Duration returns elapsed run time, using now for runs still in flight.
func (r *PipelineRun) Duration(now time.Time) time.Duration {
	finish := now
	if r.FinishTime != nil {
		finish = *r.FinishTime
	}
	return finish.Sub(r.StartTime)
}
