// Package notify fans out real-time update messages to interested
// subscribers. Delivery is best effort: transport failures are logged
// and dropped, never surfaced to the triggering operation.
package notify

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Notification severity levels.
const (
	TypeInfo     = "Info"
	TypeSuccess  = "Success"
	TypeWarning  = "Warning"
	TypeError    = "Error"
	TypePipeline = "Pipeline"
	TypeWorkItem = "WorkItem"
	TypeProject  = "Project"
	TypeSystem   = "System"
)

// Notification priority levels.
const (
	PriorityLow      = "Low"
	PriorityNormal   = "Normal"
	PriorityHigh     = "High"
	PriorityCritical = "Critical"
)

// Work item update kinds.
const (
	WorkItemCreated         = "Created"
	WorkItemUpdated         = "Updated"
	WorkItemDeleted         = "Deleted"
	WorkItemAssigned        = "Assigned"
	WorkItemUnassigned      = "Unassigned"
	WorkItemStatusChanged   = "StatusChanged"
	WorkItemPriorityChanged = "PriorityChanged"
)

// UserMessage is a direct notification to a single user.
type UserMessage struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Priority  string    `json:"priority"`
	UserID    string    `json:"user_id,omitempty"`
	ActionURL string    `json:"action_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ProjectMessage announces a change within a project.
type ProjectMessage struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Message   string    `json:"message"`
	UserID    string    `json:"user_id,omitempty"`
	UserName  string    `json:"user_name,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// PipelineMessage announces a pipeline run state change.
type PipelineMessage struct {
	ID           string    `json:"id"`
	PipelineID   string    `json:"pipeline_id"`
	PipelineName string    `json:"pipeline_name,omitempty"`
	Status       string    `json:"status"`
	Result       string    `json:"result,omitempty"`
	BuildNumber  string    `json:"build_number,omitempty"`
	UserID       string    `json:"user_id,omitempty"`
	UserName     string    `json:"user_name,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// WorkItemMessage announces a work item change.
type WorkItemMessage struct {
	ID            string    `json:"id"`
	WorkItemID    string    `json:"work_item_id"`
	WorkItemTitle string    `json:"work_item_title"`
	Message       string    `json:"message"`
	Type          string    `json:"type"`
	UserID        string    `json:"user_id,omitempty"`
	UserName      string    `json:"user_name,omitempty"`
	OldValue      string    `json:"old_value,omitempty"`
	NewValue      string    `json:"new_value,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// GlobalMessage is broadcast to every connected client.
type GlobalMessage struct {
	ID                     string    `json:"id"`
	Title                  string    `json:"title"`
	Message                string    `json:"message"`
	Type                   string    `json:"type"`
	Priority               string    `json:"priority"`
	ActionURL              string    `json:"action_url,omitempty"`
	RequiresAcknowledgment bool      `json:"requires_acknowledgment,omitempty"`
	Timestamp              time.Time `json:"timestamp"`
}

func newMessageID() string {
	return ulid.Make().String()
}

// workItemUpdateText renders the human-readable line for a work item
// update kind.
func workItemUpdateText(updateType, oldValue, newValue string) string {
	switch updateType {
	case WorkItemCreated:
		return "Work item created"
	case WorkItemDeleted:
		return "Work item deleted"
	case WorkItemAssigned:
		return "Work item assigned to " + newValue
	case WorkItemUnassigned:
		return "Work item unassigned"
	case WorkItemStatusChanged:
		return "Status changed from " + oldValue + " to " + newValue
	case WorkItemPriorityChanged:
		return "Priority changed from " + oldValue + " to " + newValue
	default:
		return "Work item updated"
	}
}
