package model

import "time"

// Work item state constants.
const (
	WorkItemStateActive = "Active"
	WorkItemStateClosed = "Closed"
)

// WorkItem represents a tracked unit of work within a project.
type WorkItem struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Type          string     `json:"type"`
	State         string     `json:"state"`
	Priority      string     `json:"priority"`
	AssignedTo    string     `json:"assigned_to"`
	CreatedDate   time.Time  `json:"created_date"`
	ChangedDate   *time.Time `json:"changed_date,omitempty"`
	ProjectID     string     `json:"project_id"`
	ProjectName   string     `json:"project_name"`
	AreaPath      string     `json:"area_path"`
	IterationPath string     `json:"iteration_path"`
	Tags          []string   `json:"tags,omitempty"`
}

// LastChanged returns the change timestamp, falling back to creation time.
func (w *WorkItem) LastChanged() time.Time {
	if w.ChangedDate != nil {
		return *w.ChangedDate
	}
	return w.CreatedDate
}
