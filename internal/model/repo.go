package model

import "time"

// Repo represents a source repository referenced by a project.
type Repo struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	ProjectID        string    `json:"project_id"`
	ProjectName      string    `json:"project_name"`
	URL              string    `json:"url"`
	DefaultBranch    string    `json:"default_branch"`
	Type             string    `json:"type"`
	IsFork           bool      `json:"is_fork"`
	CreatedDate      time.Time `json:"created_date"`
	LastUpdatedDate  time.Time `json:"last_updated_date"`
	CommitCount      int       `json:"commit_count"`
	BranchCount      int       `json:"branch_count"`
	PullRequestCount int       `json:"pull_request_count"`
}
