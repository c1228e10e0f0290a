package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncLoginSuccess is a no-op.
func (n *NoopRecorder) IncLoginSuccess() {}

// IncLoginFailure is a no-op.
func (n *NoopRecorder) IncLoginFailure() {}

// IncTokenRejected is a no-op.
func (n *NoopRecorder) IncTokenRejected() {}

// IncPipelineRunTriggered is a no-op.
func (n *NoopRecorder) IncPipelineRunTriggered() {}

// IncWorkItemCreated is a no-op.
func (n *NoopRecorder) IncWorkItemCreated() {}

// IncWorkItemUpdated is a no-op.
func (n *NoopRecorder) IncWorkItemUpdated() {}

// IncWorkItemDeleted is a no-op.
func (n *NoopRecorder) IncWorkItemDeleted() {}

// IncNotificationPublished is a no-op.
func (n *NoopRecorder) IncNotificationPublished(status string) {}

// ObserveAggregationDuration is a no-op.
func (n *NoopRecorder) ObserveAggregationDuration(duration time.Duration) {}
