package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/devnexus/devnexus/internal/memstore"
	"github.com/devnexus/devnexus/internal/model"
	"github.com/devnexus/devnexus/internal/notify"
	"github.com/devnexus/devnexus/internal/service"
)

func newWorkItemHandler(t *testing.T) *WorkItemHandler {
	t.Helper()
	st := memstore.New()
	st.AddProject(&model.Project{ID: "p1", Name: "Alpha", State: model.ProjectStateActive})
	st.AddWorkItem(&model.WorkItem{
		ID: "w1", Title: "Existing", State: model.WorkItemStateActive,
		ProjectID: "p1", CreatedDate: time.Now().UTC(),
	})
	dispatcher := notify.NewDispatcher(notify.NewNoopTransport(), discardLogger(), nil)
	svc := service.NewDevOps(st, dispatcher, discardLogger(), nil)
	return NewWorkItemHandler(svc, discardLogger())
}

// withURLParam builds a request with a chi route parameter set.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestWorkItemCreate(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		h := newWorkItemHandler(t)
		req := httptest.NewRequest(http.MethodPost, "/api/workitems",
			strings.NewReader(`{"title":"New item","project_id":"p1","type":"Bug"}`))
		rec := httptest.NewRecorder()
		h.Create(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201; body: %s", rec.Code, rec.Body.String())
		}
		resp := decodeEnvelope(t, rec.Body)
		data := resp.Data.(map[string]any)
		id, _ := data["id"].(string)
		if !strings.HasPrefix(id, "wi-") {
			t.Errorf("id = %q, want wi- prefix", id)
		}
		if data["state"] != model.WorkItemStateActive {
			t.Errorf("state = %v, want Active default", data["state"])
		}
	})

	t.Run("missing title and project", func(t *testing.T) {
		t.Parallel()
		h := newWorkItemHandler(t)
		req := httptest.NewRequest(http.MethodPost, "/api/workitems", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		h.Create(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		resp := decodeEnvelope(t, rec.Body)
		if len(resp.Errors) != 2 {
			t.Errorf("errors = %v, want two entries", resp.Errors)
		}
	})
}

func TestWorkItemUpdateAndDelete(t *testing.T) {
	t.Parallel()

	t.Run("update unknown item", func(t *testing.T) {
		t.Parallel()
		h := newWorkItemHandler(t)
		req := httptest.NewRequest(http.MethodPut, "/api/workitems/nope",
			strings.NewReader(`{"title":"x"}`))
		rec := httptest.NewRecorder()
		h.Update(rec, withURLParam(req, "id", "nope"))

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("update existing", func(t *testing.T) {
		t.Parallel()
		h := newWorkItemHandler(t)
		req := httptest.NewRequest(http.MethodPut, "/api/workitems/w1",
			strings.NewReader(`{"title":"Existing","state":"Closed"}`))
		rec := httptest.NewRecorder()
		h.Update(rec, withURLParam(req, "id", "w1"))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
		}
		resp := decodeEnvelope(t, rec.Body)
		if resp.Data.(map[string]any)["state"] != model.WorkItemStateClosed {
			t.Errorf("state not updated: %+v", resp.Data)
		}
	})

	t.Run("delete then get", func(t *testing.T) {
		t.Parallel()
		h := newWorkItemHandler(t)

		req := httptest.NewRequest(http.MethodDelete, "/api/workitems/w1", nil)
		rec := httptest.NewRecorder()
		h.Delete(rec, withURLParam(req, "id", "w1"))
		if rec.Code != http.StatusOK {
			t.Fatalf("delete status = %d, want 200", rec.Code)
		}

		req = httptest.NewRequest(http.MethodGet, "/api/workitems/w1", nil)
		rec = httptest.NewRecorder()
		h.Get(rec, withURLParam(req, "id", "w1"))
		if rec.Code != http.StatusNotFound {
			t.Errorf("get after delete = %d, want 404", rec.Code)
		}
	})
}
