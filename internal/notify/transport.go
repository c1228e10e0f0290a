package notify

import (
	"context"
	"fmt"
)

// Subscriber channel names. These mirror the group names clients join.
const (
	GlobalChannel = "Global"
)

// UserChannel returns the channel a single user's clients subscribe to.
func UserChannel(userID string) string {
	return fmt.Sprintf("User_%s", userID)
}

// ProjectChannel returns the channel for one project's watchers.
func ProjectChannel(projectID string) string {
	return fmt.Sprintf("Project_%s", projectID)
}

// PipelineChannel returns the channel for one pipeline's watchers.
func PipelineChannel(pipelineID string) string {
	return fmt.Sprintf("Pipeline_%s", pipelineID)
}

// WorkItemChannel returns the channel for one work item's watchers.
func WorkItemChannel(workItemID string) string {
	return fmt.Sprintf("WorkItem_%s", workItemID)
}

// Transport delivers a serialized message to every subscriber of a
// channel.
type Transport interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// NoopTransport drops every message. Used when no broker is configured.
type NoopTransport struct{}

// NewNoopTransport creates a transport that discards all messages.
func NewNoopTransport() *NoopTransport {
	return &NoopTransport{}
}

// Publish implements Transport.
func (*NoopTransport) Publish(context.Context, string, []byte) error {
	return nil
}
