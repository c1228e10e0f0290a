package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/devnexus/devnexus/internal/metrics"
)

// PublishTimeout bounds a single transport publish.
const PublishTimeout = 2 * time.Second

// Dispatcher builds and publishes update messages. All Send methods are
// fire-and-forget: a transport failure is logged and counted, and the
// caller never sees an error.
type Dispatcher struct {
	transport Transport
	logger    *slog.Logger
	metrics   metrics.Recorder
	now       func() time.Time
}

// NewDispatcher creates a Dispatcher over the given transport.
func NewDispatcher(transport Transport, logger *slog.Logger, rec metrics.Recorder) *Dispatcher {
	if rec == nil {
		rec = metrics.NewNoop()
	}
	return &Dispatcher{
		transport: transport,
		logger:    logger.With("component", "notify.dispatcher"),
		metrics:   rec,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// publish serializes and delivers one message, swallowing failures.
func (d *Dispatcher) publish(ctx context.Context, channel string, msg any) {
	payload, err := json.Marshal(msg)
	if err != nil {
		d.logger.Warn("failed to encode notification",
			"channel", channel,
			"error", err,
		)
		d.metrics.IncNotificationPublished("dropped")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, PublishTimeout)
	defer cancel()

	if err := d.transport.Publish(ctx, channel, payload); err != nil {
		d.logger.Warn("failed to publish notification",
			"channel", channel,
			"error", err,
		)
		d.metrics.IncNotificationPublished("dropped")
		return
	}

	d.logger.Debug("notification published", "channel", channel)
	d.metrics.IncNotificationPublished("success")
}

// SendUserNotification delivers a message to a single user's channel.
func (d *Dispatcher) SendUserNotification(ctx context.Context, userID string, msg UserMessage) {
	if msg.ID == "" {
		msg.ID = newMessageID()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = d.now()
	}
	msg.UserID = userID
	d.publish(ctx, UserChannel(userID), msg)
}

// SendProjectUpdate delivers a message to a project's watchers.
func (d *Dispatcher) SendProjectUpdate(ctx context.Context, projectID string, msg ProjectMessage) {
	if msg.ID == "" {
		msg.ID = newMessageID()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = d.now()
	}
	msg.ProjectID = projectID
	d.publish(ctx, ProjectChannel(projectID), msg)
}

// SendPipelineUpdate delivers a message to a pipeline's watchers.
func (d *Dispatcher) SendPipelineUpdate(ctx context.Context, pipelineID string, msg PipelineMessage) {
	if msg.ID == "" {
		msg.ID = newMessageID()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = d.now()
	}
	msg.PipelineID = pipelineID
	d.publish(ctx, PipelineChannel(pipelineID), msg)
}

// SendWorkItemUpdate delivers a message to a work item's watchers.
func (d *Dispatcher) SendWorkItemUpdate(ctx context.Context, workItemID string, msg WorkItemMessage) {
	if msg.ID == "" {
		msg.ID = newMessageID()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = d.now()
	}
	msg.WorkItemID = workItemID
	d.publish(ctx, WorkItemChannel(workItemID), msg)
}

// SendGlobalNotification broadcasts a message to every client.
func (d *Dispatcher) SendGlobalNotification(ctx context.Context, msg GlobalMessage) {
	if msg.ID == "" {
		msg.ID = newMessageID()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = d.now()
	}
	d.publish(ctx, GlobalChannel, msg)
}

// SendPipelineStatusUpdate is a convenience wrapper that builds the
// pipeline message from its parts.
func (d *Dispatcher) SendPipelineStatusUpdate(ctx context.Context, pipelineID, status, result, buildNumber string) {
	d.SendPipelineUpdate(ctx, pipelineID, PipelineMessage{
		Status:      status,
		Result:      result,
		BuildNumber: buildNumber,
	})
}

// SendWorkItemStatusUpdate is a convenience wrapper that renders the
// update text for the given change kind.
func (d *Dispatcher) SendWorkItemStatusUpdate(ctx context.Context, workItemID, title, updateType, oldValue, newValue string) {
	d.SendWorkItemUpdate(ctx, workItemID, WorkItemMessage{
		WorkItemTitle: title,
		Type:          updateType,
		Message:       workItemUpdateText(updateType, oldValue, newValue),
		OldValue:      oldValue,
		NewValue:      newValue,
	})
}
