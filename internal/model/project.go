package model

import "time"

// Project state constants.
const (
	ProjectStateActive  = "Active"
	ProjectStateDeleted = "Deleted"
)

// Project represents a DevOps project.
type Project struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	URL             string    `json:"url"`
	State           string    `json:"state"`
	Visibility      string    `json:"visibility"`
	LastUpdateTime  time.Time `json:"last_update_time"`
	DefaultTeam     Team      `json:"default_team"`
	RepositoryCount int       `json:"repository_count"`
	PipelineCount   int       `json:"pipeline_count"`
	WorkItemCount   int       `json:"work_item_count"`
}

// IsActive reports whether the project is in the active state.
func (p *Project) IsActive() bool {
	return p.State == ProjectStateActive
}

// Team is the default team attached to a project.
type Team struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
