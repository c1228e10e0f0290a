//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

// The smoke test expects a running server seeded with the development
// account, i.e. started without DATABASE_URL. Point DEVNEXUS_BASE_URL
// at it if it is not on localhost:8080.
const (
	devUsername = "developer"
	devPassword = "password123"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []string        `json:"errors"`
}

func TestE2ESmoke(t *testing.T) {
	baseURL := envOrDefault("DEVNEXUS_BASE_URL", "http://localhost:8080")

	waitForHealthy(t, baseURL)

	token := login(t, baseURL)

	t.Run("unauthenticated requests are rejected", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, baseURL+"/api/dashboard/metrics", "", nil)
		if resp.status != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", resp.status)
		}
	})

	t.Run("dashboard metrics", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, baseURL+"/api/dashboard/metrics", token, nil)
		if resp.status != http.StatusOK {
			t.Fatalf("status = %d, body %s", resp.status, resp.raw)
		}
		var metrics struct {
			TotalProjects int `json:"total_projects"`
		}
		mustUnmarshal(t, resp.env.Data, &metrics)
		if metrics.TotalProjects < 1 {
			t.Errorf("total_projects = %d, want at least 1", metrics.TotalProjects)
		}
	})

	t.Run("trigger pipeline run", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, baseURL+"/api/pipelines/pipe-001/run", token, map[string]any{})
		if resp.status != http.StatusCreated {
			t.Fatalf("status = %d, body %s", resp.status, resp.raw)
		}
		var run struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		}
		mustUnmarshal(t, resp.env.Data, &run)
		if !strings.HasPrefix(run.ID, "run-") {
			t.Errorf("run id = %q, want run- prefix", run.ID)
		}
		if run.Status != "Running" {
			t.Errorf("status = %q, want Running", run.Status)
		}

		get := doJSON(t, http.MethodGet, baseURL+"/api/pipelines/pipe-001/runs/"+run.ID, token, nil)
		if get.status != http.StatusOK {
			t.Errorf("fetch run status = %d", get.status)
		}
	})

	t.Run("work item lifecycle with role gate", func(t *testing.T) {
		create := doJSON(t, http.MethodPost, baseURL+"/api/workitems", token, map[string]any{
			"title":      "e2e smoke item",
			"project_id": "proj-001",
			"type":       "Task",
		})
		if create.status != http.StatusCreated {
			t.Fatalf("create status = %d, body %s", create.status, create.raw)
		}
		var item struct {
			ID string `json:"id"`
		}
		mustUnmarshal(t, create.env.Data, &item)

		update := doJSON(t, http.MethodPut, baseURL+"/api/workitems/"+item.ID, token, map[string]any{
			"title":      "e2e smoke item",
			"project_id": "proj-001",
			"state":      "Closed",
		})
		if update.status != http.StatusOK {
			t.Errorf("update status = %d, body %s", update.status, update.raw)
		}

		// The seeded account is a Developer; deletion needs Admin.
		del := doJSON(t, http.MethodDelete, baseURL+"/api/workitems/"+item.ID, token, nil)
		if del.status != http.StatusForbidden {
			t.Errorf("delete status = %d, want 403", del.status)
		}
	})

	t.Run("dashboard health view", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, baseURL+"/api/dashboard/health", token, nil)
		if resp.status != http.StatusOK {
			t.Fatalf("status = %d, body %s", resp.status, resp.raw)
		}
		var health struct {
			Status string `json:"status"`
		}
		mustUnmarshal(t, resp.env.Data, &health)
		if health.Status == "" {
			t.Error("expected a status value")
		}
	})

	t.Run("token refresh and profile", func(t *testing.T) {
		refresh := doJSON(t, http.MethodPost, baseURL+"/api/auth/refresh", token, nil)
		if refresh.status != http.StatusOK {
			t.Fatalf("refresh status = %d, body %s", refresh.status, refresh.raw)
		}

		profile := doJSON(t, http.MethodGet, baseURL+"/api/auth/profile", token, nil)
		if profile.status != http.StatusOK {
			t.Fatalf("profile status = %d", profile.status)
		}
		var user struct {
			Username string `json:"username"`
		}
		mustUnmarshal(t, profile.env.Data, &user)
		if user.Username != devUsername {
			t.Errorf("username = %q, want %q", user.Username, devUsername)
		}
	})
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func waitForHealthy(t *testing.T, baseURL string) {
	t.Helper()
	deadline := time.Now().Add(15 * time.Second)
	for {
		resp, err := http.Get(baseURL + "/healthz")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		if time.Now().After(deadline) {
			t.Fatalf("server at %s not healthy: %v", baseURL, err)
		}
		time.Sleep(500 * time.Millisecond)
	}
}

func login(t *testing.T, baseURL string) string {
	t.Helper()
	resp := doJSON(t, http.MethodPost, baseURL+"/api/auth/login", "", map[string]any{
		"username": devUsername,
		"password": devPassword,
	})
	if resp.status != http.StatusOK {
		t.Fatalf("login status = %d, body %s", resp.status, resp.raw)
	}
	var data struct {
		Token string `json:"token"`
	}
	mustUnmarshal(t, resp.env.Data, &data)
	if data.Token == "" {
		t.Fatal("login returned no token")
	}
	return data.Token
}

type apiResponse struct {
	status int
	env    envelope
	raw    string
}

func doJSON(t *testing.T, method, url, token string, body any) apiResponse {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	out := apiResponse{status: resp.StatusCode, raw: string(raw)}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out.env); err != nil {
			t.Fatalf("decode envelope from %s %s: %v (%s)", method, url, err, raw)
		}
	}
	return out
}

func mustUnmarshal(t *testing.T, raw json.RawMessage, v any) {
	t.Helper()
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("decode data: %v (%s)", err, raw)
	}
}
