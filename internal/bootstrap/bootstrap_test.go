package bootstrap_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"detox/internal/bootstrap"
	"detox/internal/platform/config"
)

type fixedClock struct{ at time.Time }

func (f fixedClock) Now() time.Time { return f.at }

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	t.Setenv("DETOX_REDIS_ADDR", "")
	cfg, err := config.New(t.TempDir())
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	app, err := bootstrap.New(context.Background(), cfg, bootstrap.Options{
		LogOutput: io.Discard,
		Clock:     fixedClock{at: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)},
	})
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	srv := httptest.NewServer(app.HTTP())
	t.Cleanup(func() {
		srv.Close()
		_ = app.Close()
	})
	return srv
}

func do(t *testing.T, method, url, body string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	out := map[string]any{}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 && raw[0] == '{' {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("decode %s: %v", raw, err)
		}
	}
	return resp.StatusCode, out
}

func TestHTTPLogFlowCreditsWeek(t *testing.T) {
	srv := newServer(t)

	status, _ := do(t, http.MethodPost, srv.URL+"/users", `{"username":"alice","baseline_minutes":300}`)
	if status != http.StatusCreated {
		t.Fatalf("register status %d", status)
	}
	status, _ = do(t, http.MethodPost, srv.URL+"/users", `{"username":"alice"}`)
	if status != http.StatusConflict {
		t.Fatalf("duplicate register status %d", status)
	}

	var last map[string]any
	for day := 1; day <= 7; day++ {
		body := `{"date":"2026-03-0` + string(rune('0'+day)) + `","total":200,"youtube":60,"instagram":30}`
		status, last = do(t, http.MethodPost, srv.URL+"/users/alice/logs", body)
		if status != http.StatusOK {
			t.Fatalf("log day %d status %d", day, status)
		}
	}
	// C1, C2 and C4 pass every day; C1 completes on day 7.
	if got := last["points_awarded"]; got != float64(25) {
		t.Fatalf("expected 25 points on day 7, got %v", got)
	}

	status, profile := do(t, http.MethodGet, srv.URL+"/users/alice", "")
	if status != http.StatusOK || profile["points"] != float64(25) {
		t.Fatalf("profile status %d body %v", status, profile)
	}

	status, board := do(t, http.MethodGet, srv.URL+"/users/alice/challenges?date=2026-03-07", "")
	if status != http.StatusOK {
		t.Fatalf("board status %d", status)
	}
	if _, ok := board["challenges"]; !ok {
		t.Fatalf("board missing challenges: %v", board)
	}
}

func TestHTTPErrorMapping(t *testing.T) {
	srv := newServer(t)

	status, _ := do(t, http.MethodGet, srv.URL+"/users/nobody", "")
	if status != http.StatusNotFound {
		t.Fatalf("unknown user status %d", status)
	}
	status, _ = do(t, http.MethodPost, srv.URL+"/users/nobody/logs", `{"total":-5}`)
	if status != http.StatusBadRequest {
		t.Fatalf("negative total status %d", status)
	}
	status, _ = do(t, http.MethodPost, srv.URL+"/users/nobody/scans", `{"tokens":["no","durations"]}`)
	if status != http.StatusOK {
		t.Fatalf("empty scan status %d", status)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newServer(t)

	status, body := do(t, http.MethodGet, srv.URL+"/health", "")
	if status != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("health status %d body %v", status, body)
	}
	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(raw), "detox_") {
		t.Fatalf("metrics status %d body %s", resp.StatusCode, raw)
	}
}
