package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/devnexus/devnexus/internal/dashboard"
	"github.com/devnexus/devnexus/internal/memstore"
	"github.com/devnexus/devnexus/internal/model"
)

func newDashboardHandler(t *testing.T) *DashboardHandler {
	t.Helper()
	st := memstore.New()
	st.AddProject(&model.Project{ID: "p1", Name: "Alpha", State: model.ProjectStateActive})
	st.AddPipeline(&model.Pipeline{ID: "pl1", Name: "CI", ProjectID: "p1"})
	st.AddWorkItem(&model.WorkItem{
		ID: "w1", Title: "Item", State: model.WorkItemStateActive,
		ProjectID: "p1", CreatedDate: time.Now().UTC(),
	})
	agg := dashboard.New(st, discardLogger(), nil)
	return NewDashboardHandler(agg, discardLogger())
}

func TestDashboardMetrics(t *testing.T) {
	t.Parallel()

	h := newDashboardHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/metrics", nil)
	rec := httptest.NewRecorder()
	h.Metrics(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	resp := decodeEnvelope(t, rec.Body)
	data, ok := resp.Data.(map[string]any)
	if !ok {
		t.Fatalf("Data is %T", resp.Data)
	}
	if data["total_projects"] != float64(1) {
		t.Errorf("total_projects = %v, want 1", data["total_projects"])
	}
}

func TestRecentActivity_CountValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		query      string
		wantStatus int
	}{
		{"default", "", http.StatusOK},
		{"explicit valid", "?count=5", http.StatusOK},
		{"upper bound", "?count=100", http.StatusOK},
		{"zero", "?count=0", http.StatusBadRequest},
		{"negative", "?count=-3", http.StatusBadRequest},
		{"too large", "?count=101", http.StatusBadRequest},
		{"not a number", "?count=lots", http.StatusBadRequest},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newDashboardHandler(t)
			req := httptest.NewRequest(http.MethodGet, "/api/dashboard/recent-activity"+tt.query, nil)
			rec := httptest.NewRecorder()
			h.RecentActivity(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusBadRequest {
				resp := decodeEnvelope(t, rec.Body)
				if resp.Message != "Count must be between 1 and 100" {
					t.Errorf("message = %q", resp.Message)
				}
			}
		})
	}
}

func TestPipelineMetricsEndpoint(t *testing.T) {
	t.Parallel()

	h := newDashboardHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/pipeline-metrics?projectId=p1", nil)
	rec := httptest.NewRecorder()
	h.PipelineMetrics(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	resp := decodeEnvelope(t, rec.Body)
	list, ok := resp.Data.([]any)
	if !ok {
		t.Fatalf("Data is %T", resp.Data)
	}
	if len(list) != 1 {
		t.Errorf("pipelines = %d, want 1", len(list))
	}
}

func TestProjectSummaryEndpoint(t *testing.T) {
	t.Parallel()

	h := newDashboardHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/project-summary", nil)
	rec := httptest.NewRecorder()
	h.ProjectSummary(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
