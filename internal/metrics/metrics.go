// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Authentication metrics
	IncLoginSuccess()
	IncLoginFailure()
	IncTokenRejected()

	// Domain mutation metrics
	IncPipelineRunTriggered()
	IncWorkItemCreated()
	IncWorkItemUpdated()
	IncWorkItemDeleted()

	// Notification metrics
	IncNotificationPublished(status string) // status: "success" or "dropped"

	// Aggregation metrics
	ObserveAggregationDuration(duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
