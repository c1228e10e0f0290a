package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	LoginSuccesses           uint64
	LoginFailures            uint64
	TokensRejected           uint64
	PipelineRunsTriggered    uint64
	WorkItemsCreated         uint64
	WorkItemsUpdated         uint64
	WorkItemsDeleted         uint64
	NotificationsPublished   uint64
	NotificationsDropped     uint64
	AggregationCount         uint64
	AggregationTotalNs       int64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	loginSuccesses         uint64
	loginFailures          uint64
	tokensRejected         uint64
	pipelineRunsTriggered  uint64
	workItemsCreated       uint64
	workItemsUpdated       uint64
	workItemsDeleted       uint64
	notificationsPublished uint64
	notificationsDropped   uint64
	aggregationCount       uint64
	aggregationTotalNs     int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		LoginSuccesses:         atomic.LoadUint64(&m.loginSuccesses),
		LoginFailures:          atomic.LoadUint64(&m.loginFailures),
		TokensRejected:         atomic.LoadUint64(&m.tokensRejected),
		PipelineRunsTriggered:  atomic.LoadUint64(&m.pipelineRunsTriggered),
		WorkItemsCreated:       atomic.LoadUint64(&m.workItemsCreated),
		WorkItemsUpdated:       atomic.LoadUint64(&m.workItemsUpdated),
		WorkItemsDeleted:       atomic.LoadUint64(&m.workItemsDeleted),
		NotificationsPublished: atomic.LoadUint64(&m.notificationsPublished),
		NotificationsDropped:   atomic.LoadUint64(&m.notificationsDropped),
		AggregationCount:       atomic.LoadUint64(&m.aggregationCount),
		AggregationTotalNs:     atomic.LoadInt64(&m.aggregationTotalNs),
	}
}

// IncLoginSuccess increments the successful login counter.
func (m *InMemoryRecorder) IncLoginSuccess() {
	atomic.AddUint64(&m.loginSuccesses, 1)
}

// IncLoginFailure increments the failed login counter.
func (m *InMemoryRecorder) IncLoginFailure() {
	atomic.AddUint64(&m.loginFailures, 1)
}

// IncTokenRejected increments the rejected token counter.
func (m *InMemoryRecorder) IncTokenRejected() {
	atomic.AddUint64(&m.tokensRejected, 1)
}

// IncPipelineRunTriggered increments the triggered run counter.
func (m *InMemoryRecorder) IncPipelineRunTriggered() {
	atomic.AddUint64(&m.pipelineRunsTriggered, 1)
}

// IncWorkItemCreated increments the work item creation counter.
func (m *InMemoryRecorder) IncWorkItemCreated() {
	atomic.AddUint64(&m.workItemsCreated, 1)
}

// IncWorkItemUpdated increments the work item update counter.
func (m *InMemoryRecorder) IncWorkItemUpdated() {
	atomic.AddUint64(&m.workItemsUpdated, 1)
}

// IncWorkItemDeleted increments the work item deletion counter.
func (m *InMemoryRecorder) IncWorkItemDeleted() {
	atomic.AddUint64(&m.workItemsDeleted, 1)
}

// IncNotificationPublished increments the publish counter by outcome.
func (m *InMemoryRecorder) IncNotificationPublished(status string) {
	if status == "success" {
		atomic.AddUint64(&m.notificationsPublished, 1)
		return
	}
	atomic.AddUint64(&m.notificationsDropped, 1)
}

// ObserveAggregationDuration records one aggregation pass.
func (m *InMemoryRecorder) ObserveAggregationDuration(duration time.Duration) {
	atomic.AddUint64(&m.aggregationCount, 1)
	atomic.AddInt64(&m.aggregationTotalNs, duration.Nanoseconds())
}
