package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rarescolibaba/timethread/internal/category"
	"github.com/rarescolibaba/timethread/internal/config"
	"github.com/rarescolibaba/timethread/internal/monitor"
	"github.com/rarescolibaba/timethread/internal/proc"
	"github.com/rarescolibaba/timethread/internal/store"
	"github.com/rarescolibaba/timethread/internal/uptime"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

type staticSource struct {
	infos []proc.Info
}

func (s staticSource) Processes() ([]proc.Info, error) {
	return s.infos, nil
}

func newTestServer(t *testing.T) (*Server, *monitor.Monitor) {
	t.Helper()

	log := testLogger()
	st, err := store.New(t.TempDir(), log)
	if err != nil {
		t.Fatal(err)
	}

	src := staticSource{infos: []proc.Info{
		{PID: 100, Name: "chrome", WindowTitle: "Google Chrome", SessionID: 1, StartTime: time.Now().Add(-time.Hour)},
	}}
	m := monitor.New(src, category.NewClassifier(), st, uptime.NewProbe(log), monitor.Options{}, log)

	return New(config.Default(), m, st, uptime.NewProbe(log), log, "test"), m
}

func (s *Server) serve(t *testing.T, method, target string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	s, _ := newTestServer(t)

	rec := s.serve(t, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "ok" {
		t.Errorf("expected ok status, got %q", resp.Status)
	}
}

func TestHandleInfo(t *testing.T) {
	s, _ := newTestServer(t)

	rec := s.serve(t, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp InfoResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Name != "timethread" || resp.Version != "test" {
		t.Errorf("unexpected info response: %+v", resp)
	}
}

func TestHandleProcesses(t *testing.T) {
	s, m := newTestServer(t)
	m.Poll()

	rec := s.serve(t, http.MethodGet, "/processes", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp []ProcessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp) != 1 {
		t.Fatalf("expected 1 process, got %d", len(resp))
	}
	if resp[0].DisplayName != "Google Chrome" {
		t.Errorf("unexpected display name %q", resp[0].DisplayName)
	}
	if resp[0].Category != "Entertainment" {
		t.Errorf("unexpected category %q", resp[0].Category)
	}
	if resp[0].TimeTodaySeconds <= 0 {
		t.Error("expected positive time today")
	}
}

func TestHandleHistory(t *testing.T) {
	s, _ := newTestServer(t)

	rec := s.serve(t, http.MethodGet, "/history?process=chrome&days=3", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp SeriesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Points) != 3 {
		t.Errorf("expected 3 points, got %d", len(resp.Points))
	}
}

func TestHandleHistory_MissingProcess(t *testing.T) {
	s, _ := newTestServer(t)

	rec := s.serve(t, http.MethodGet, "/history?days=3", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandleHistory_BadDays(t *testing.T) {
	s, _ := newTestServer(t)

	rec := s.serve(t, http.MethodGet, "/history?process=chrome&days=nope", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandleCategoryTime(t *testing.T) {
	s, _ := newTestServer(t)

	rec := s.serve(t, http.MethodGet, "/categories/time?category=Coding", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp SeriesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Points) != 7 { // default window
		t.Errorf("expected 7 points, got %d", len(resp.Points))
	}
}

func TestHandleUptime(t *testing.T) {
	s, _ := newTestServer(t)

	rec := s.serve(t, http.MethodGet, "/uptime", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp UptimeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.UptimeSeconds < 0 {
		t.Error("expected non-negative uptime")
	}
}

func TestHandleSetCategory(t *testing.T) {
	s, m := newTestServer(t)
	m.Poll()

	rec := s.serve(t, http.MethodPost, "/categories", `{"pattern":"chrome","category":"Work"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	for _, p := range m.Snapshot() {
		if p.Category != "Work" {
			t.Errorf("expected category Work after override, got %q", p.Category)
		}
	}
}

func TestHandleSetCategory_BadBody(t *testing.T) {
	s, _ := newTestServer(t)

	rec := s.serve(t, http.MethodPost, "/categories", `{`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}

	rec = s.serve(t, http.MethodPost, "/categories", `{"pattern":""}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty fields, got %d", rec.Code)
	}
}
