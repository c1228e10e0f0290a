package dashboard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/devnexus/devnexus/internal/memstore"
	"github.com/devnexus/devnexus/internal/model"
	"github.com/devnexus/devnexus/internal/store"
)

func testAggregator(t *testing.T, st store.Store) *Aggregator {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(st, logger, nil)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func ptrTime(t time.Time) *time.Time { return &t }

func TestOverview_Counts(t *testing.T) {
	t.Parallel()

	st := memstore.New()
	st.AddProject(&model.Project{ID: "p1", State: model.ProjectStateActive})
	st.AddProject(&model.Project{ID: "p2", State: model.ProjectStateDeleted})
	st.AddPipeline(&model.Pipeline{ID: "pl1", ProjectID: "p1"})
	st.AddPipelineRun(&model.PipelineRun{ID: "r1", PipelineID: "pl1", Result: model.RunResultFailed})
	st.AddPipelineRun(&model.PipelineRun{ID: "r2", PipelineID: "pl1", Result: model.RunResultSucceeded})
	st.AddWorkItem(&model.WorkItem{ID: "w1", State: model.WorkItemStateActive})
	st.AddWorkItem(&model.WorkItem{ID: "w2", State: model.WorkItemStateClosed})
	st.AddRepo(&model.Repo{ID: "g1", ProjectID: "p1"})
	st.AddUser(&model.User{ID: "u1", IsActive: true})
	st.AddUser(&model.User{ID: "u2", IsActive: false})

	agg := testAggregator(t, st)
	got, err := agg.Overview(context.Background())
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}

	if got.TotalProjects != 2 || got.ActiveProjects != 1 {
		t.Errorf("projects: got total=%d active=%d, want 2/1", got.TotalProjects, got.ActiveProjects)
	}
	if got.TotalPipelines != 1 {
		t.Errorf("TotalPipelines = %d, want 1", got.TotalPipelines)
	}
	if got.FailedPipelineRuns != 1 {
		t.Errorf("FailedPipelineRuns = %d, want 1", got.FailedPipelineRuns)
	}
	if got.TotalWorkItems != 2 || got.OpenWorkItems != 1 {
		t.Errorf("work items: got total=%d open=%d, want 2/1", got.TotalWorkItems, got.OpenWorkItems)
	}
	if got.TotalRepositories != 1 {
		t.Errorf("TotalRepositories = %d, want 1", got.TotalRepositories)
	}
	if got.ActiveUsers != 1 {
		t.Errorf("ActiveUsers = %d, want 1", got.ActiveUsers)
	}
	if got.LastUpdated.IsZero() {
		t.Error("LastUpdated is zero")
	}
}

func TestOverview_IdempotentWithoutWrites(t *testing.T) {
	t.Parallel()

	st := memstore.New()
	st.AddProject(&model.Project{ID: "p1", State: model.ProjectStateActive})

	agg := testAggregator(t, st)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	agg.now = fixedClock(now)

	first, err := agg.Overview(context.Background())
	if err != nil {
		t.Fatalf("first Overview: %v", err)
	}
	second, err := agg.Overview(context.Background())
	if err != nil {
		t.Fatalf("second Overview: %v", err)
	}
	if *first != *second {
		t.Errorf("snapshots differ without writes: %+v vs %+v", first, second)
	}
}

func TestProjectStats(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("unknown project", func(t *testing.T) {
		t.Parallel()
		agg := testAggregator(t, memstore.New())
		_, err := agg.ProjectStats(context.Background(), "nope")
		if !errors.Is(err, store.ErrProjectNotFound) {
			t.Errorf("err = %v, want ErrProjectNotFound", err)
		}
	})

	t.Run("zero pipelines gives zero success rate", func(t *testing.T) {
		t.Parallel()
		st := memstore.New()
		st.AddProject(&model.Project{ID: "p1", Name: "Empty", State: model.ProjectStateActive})
		agg := testAggregator(t, st)

		got, err := agg.ProjectStats(context.Background(), "p1")
		if err != nil {
			t.Fatalf("ProjectStats: %v", err)
		}
		if got.PipelineSuccessRate != 0 {
			t.Errorf("PipelineSuccessRate = %v, want 0", got.PipelineSuccessRate)
		}
	})

	t.Run("success rate over project runs only", func(t *testing.T) {
		t.Parallel()
		st := memstore.New()
		st.AddProject(&model.Project{ID: "p1", Name: "Alpha", State: model.ProjectStateActive})
		st.AddProject(&model.Project{ID: "p2", Name: "Beta", State: model.ProjectStateActive})
		st.AddPipeline(&model.Pipeline{ID: "pl1", ProjectID: "p1"})
		st.AddPipeline(&model.Pipeline{ID: "pl2", ProjectID: "p2"})
		st.AddPipelineRun(&model.PipelineRun{ID: "r1", PipelineID: "pl1", Result: model.RunResultSucceeded, StartTime: base})
		st.AddPipelineRun(&model.PipelineRun{ID: "r2", PipelineID: "pl1", Result: model.RunResultFailed, StartTime: base})
		// Other project's runs must not count.
		st.AddPipelineRun(&model.PipelineRun{ID: "r3", PipelineID: "pl2", Result: model.RunResultFailed, StartTime: base})

		agg := testAggregator(t, st)
		got, err := agg.ProjectStats(context.Background(), "p1")
		if err != nil {
			t.Fatalf("ProjectStats: %v", err)
		}
		if got.PipelineSuccessRate != 50 {
			t.Errorf("PipelineSuccessRate = %v, want 50", got.PipelineSuccessRate)
		}
	})

	t.Run("work item state counts", func(t *testing.T) {
		t.Parallel()
		st := memstore.New()
		st.AddProject(&model.Project{ID: "p1", Name: "Alpha", State: model.ProjectStateActive})
		st.AddWorkItem(&model.WorkItem{ID: "w1", ProjectID: "p1", State: model.WorkItemStateActive})
		st.AddWorkItem(&model.WorkItem{ID: "w2", ProjectID: "p1", State: model.WorkItemStateClosed})
		st.AddWorkItem(&model.WorkItem{ID: "w3", ProjectID: "p1", State: "Resolved"})

		agg := testAggregator(t, st)
		got, err := agg.ProjectStats(context.Background(), "p1")
		if err != nil {
			t.Fatalf("ProjectStats: %v", err)
		}
		if got.WorkItemCount != 3 || got.ActiveWorkItems != 1 || got.CompletedWorkItems != 1 {
			t.Errorf("got total=%d active=%d completed=%d, want 3/1/1",
				got.WorkItemCount, got.ActiveWorkItems, got.CompletedWorkItems)
		}
	})
}

func TestPipelineStats(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("no runs", func(t *testing.T) {
		t.Parallel()
		st := memstore.New()
		st.AddProject(&model.Project{ID: "p1", State: model.ProjectStateActive})
		st.AddPipeline(&model.Pipeline{ID: "pl1", Name: "CI", ProjectID: "p1"})

		agg := testAggregator(t, st)
		agg.now = fixedClock(now)

		got, err := agg.PipelineStats(context.Background(), "")
		if err != nil {
			t.Fatalf("PipelineStats: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("len = %d, want 1", len(got))
		}
		m := got[0]
		if m.TotalRuns != 0 || m.SuccessRate != 0 || m.AverageDuration != 0 {
			t.Errorf("zero-run pipeline: %+v", m)
		}
		if !m.LastRun.Equal(now) {
			t.Errorf("LastRun = %v, want %v", m.LastRun, now)
		}
	})

	t.Run("averages and last run", func(t *testing.T) {
		t.Parallel()
		st := memstore.New()
		st.AddProject(&model.Project{ID: "p1", State: model.ProjectStateActive})
		st.AddPipeline(&model.Pipeline{ID: "pl1", Name: "CI", ProjectID: "p1"})

		older := now.Add(-2 * time.Hour)
		newer := now.Add(-1 * time.Hour)
		st.AddPipelineRun(&model.PipelineRun{
			ID: "r1", PipelineID: "pl1", Result: model.RunResultSucceeded,
			StartTime: older, FinishTime: ptrTime(older.Add(10 * time.Minute)),
		})
		st.AddPipelineRun(&model.PipelineRun{
			ID: "r2", PipelineID: "pl1", Result: model.RunResultFailed,
			StartTime: newer, FinishTime: ptrTime(newer.Add(20 * time.Minute)),
		})

		agg := testAggregator(t, st)
		agg.now = fixedClock(now)

		got, err := agg.PipelineStats(context.Background(), "p1")
		if err != nil {
			t.Fatalf("PipelineStats: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("len = %d, want 1", len(got))
		}
		m := got[0]
		if m.TotalRuns != 2 || m.SuccessfulRuns != 1 || m.FailedRuns != 1 {
			t.Errorf("run counts: %+v", m)
		}
		if m.SuccessRate != 50 {
			t.Errorf("SuccessRate = %v, want 50", m.SuccessRate)
		}
		if m.AverageDuration != 15*time.Minute {
			t.Errorf("AverageDuration = %v, want 15m", m.AverageDuration)
		}
		if !m.LastRun.Equal(newer) {
			t.Errorf("LastRun = %v, want %v", m.LastRun, newer)
		}
	})

	t.Run("in-flight run clamps to now", func(t *testing.T) {
		t.Parallel()
		st := memstore.New()
		st.AddProject(&model.Project{ID: "p1", State: model.ProjectStateActive})
		st.AddPipeline(&model.Pipeline{ID: "pl1", Name: "CI", ProjectID: "p1"})
		st.AddPipelineRun(&model.PipelineRun{
			ID: "r1", PipelineID: "pl1", Status: model.RunStatusRunning,
			Result: model.RunResultUnknown, StartTime: now.Add(-30 * time.Minute),
		})

		agg := testAggregator(t, st)
		agg.now = fixedClock(now)

		got, err := agg.PipelineStats(context.Background(), "p1")
		if err != nil {
			t.Fatalf("PipelineStats: %v", err)
		}
		if got[0].AverageDuration != 30*time.Minute {
			t.Errorf("AverageDuration = %v, want 30m", got[0].AverageDuration)
		}
	})
}

func TestRecentActivity(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	newStore := func() *memstore.Store {
		st := memstore.New()
		st.AddProject(&model.Project{ID: "p1", Name: "Alpha", State: model.ProjectStateActive})
		st.AddPipeline(&model.Pipeline{ID: "pl1", Name: "CI", ProjectID: "p1", ProjectName: "Alpha"})
		for i, age := range []time.Duration{1, 2, 3} {
			changed := now.Add(-age * time.Hour)
			st.AddWorkItem(&model.WorkItem{
				ID:          "w" + string(rune('1'+i)),
				Title:       "Item",
				State:       model.WorkItemStateActive,
				ProjectID:   "p1",
				ProjectName: "Alpha",
				CreatedDate: changed.Add(-time.Hour),
				ChangedDate: &changed,
			})
		}
		st.AddPipelineRun(&model.PipelineRun{
			ID: "r1", PipelineID: "pl1", Name: "CI #1",
			Status: model.RunStatusCompleted, Result: model.RunResultSucceeded,
			StartTime: now.Add(-90 * time.Minute),
		})
		return st
	}

	t.Run("merges both feeds sorted descending", func(t *testing.T) {
		t.Parallel()
		agg := testAggregator(t, newStore())

		got, err := agg.RecentActivity(context.Background(), 10)
		if err != nil {
			t.Fatalf("RecentActivity: %v", err)
		}
		if len(got) != 4 {
			t.Fatalf("len = %d, want 4", len(got))
		}
		for i := 1; i < len(got); i++ {
			if got[i].Timestamp.After(got[i-1].Timestamp) {
				t.Errorf("feed not sorted at %d: %v after %v", i, got[i].Timestamp, got[i-1].Timestamp)
			}
		}
		var runs int
		for _, a := range got {
			if a.Type == model.ActivityTypePipelineRun {
				runs++
				if a.ProjectID != "p1" || a.ProjectName != "Alpha" {
					t.Errorf("run project not resolved: %+v", a)
				}
			}
		}
		if runs != 1 {
			t.Errorf("run entries = %d, want 1", runs)
		}
	})

	t.Run("each feed capped at half the count", func(t *testing.T) {
		t.Parallel()
		agg := testAggregator(t, newStore())

		got, err := agg.RecentActivity(context.Background(), 2)
		if err != nil {
			t.Fatalf("RecentActivity: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("len = %d, want 2", len(got))
		}
		// Newest of each feed: the 1h-old work item and the 90m-old run.
		if got[0].Type != model.ActivityTypeWorkItem || got[1].Type != model.ActivityTypePipelineRun {
			t.Errorf("unexpected feed mix: %s, %s", got[0].Type, got[1].Type)
		}
	})
}

func TestProjectSummary(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	st := memstore.New()
	for i := 0; i < 7; i++ {
		state := model.ProjectStateActive
		if i == 6 {
			state = model.ProjectStateDeleted
		}
		visibility := "Private"
		if i%2 == 0 {
			visibility = "Public"
		}
		st.AddProject(&model.Project{
			ID:             "p" + string(rune('1'+i)),
			Name:           "Project",
			State:          state,
			Visibility:     visibility,
			LastUpdateTime: now.Add(-time.Duration(i) * time.Hour),
		})
	}

	agg := testAggregator(t, st)
	got, err := agg.ProjectSummary(context.Background())
	if err != nil {
		t.Fatalf("ProjectSummary: %v", err)
	}

	if got.TotalProjects != 7 || got.ActiveProjects != 6 {
		t.Errorf("got total=%d active=%d, want 7/6", got.TotalProjects, got.ActiveProjects)
	}
	if got.ProjectsByVisibility["Public"] != 4 || got.ProjectsByVisibility["Private"] != 3 {
		t.Errorf("visibility groups: %v", got.ProjectsByVisibility)
	}
	if len(got.RecentProjects) != 5 {
		t.Fatalf("RecentProjects len = %d, want 5", len(got.RecentProjects))
	}
	if got.RecentProjects[0].ID != "p1" {
		t.Errorf("newest project = %s, want p1", got.RecentProjects[0].ID)
	}
}
