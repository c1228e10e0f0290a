package dto

import "github.com/devnexus/devnexus/internal/model"

// WorkItemRequest is the create/update payload for a work item.
type WorkItemRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	State       string   `json:"state"`
	Priority    string   `json:"priority"`
	AssignedTo  string   `json:"assigned_to"`
	ProjectID   string   `json:"project_id"`
	ProjectName string   `json:"project_name"`
	Tags        []string `json:"tags"`
}

// Validate returns field-level problems with the request. The project
// reference is only required on create; updates keep the item where it
// is.
func (r WorkItemRequest) Validate(requireProject bool) []string {
	var errs []string
	if r.Title == "" {
		errs = append(errs, "title is required")
	}
	if requireProject && r.ProjectID == "" {
		errs = append(errs, "project_id is required")
	}
	return errs
}

// ToModel converts the request into a work item entity.
func (r WorkItemRequest) ToModel() *model.WorkItem {
	state := r.State
	if state == "" {
		state = model.WorkItemStateActive
	}
	return &model.WorkItem{
		Title:       r.Title,
		Description: r.Description,
		Type:        r.Type,
		State:       state,
		Priority:    r.Priority,
		AssignedTo:  r.AssignedTo,
		ProjectID:   r.ProjectID,
		ProjectName: r.ProjectName,
		Tags:        r.Tags,
	}
}

// TriggerRunRequest is the pipeline trigger payload. Parameters are
// accepted for forward compatibility but not interpreted yet.
type TriggerRunRequest struct {
	Parameters map[string]string `json:"parameters,omitempty"`
}
