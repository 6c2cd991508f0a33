package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rarescolibaba/timethread/internal/monitor"
	"github.com/rarescolibaba/timethread/internal/store"
	"github.com/rarescolibaba/timethread/internal/uptime"
)

type InfoResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// ProcessResponse is the wire form of one tracked process snapshot.
type ProcessResponse struct {
	PID              int32               `json:"pid"`
	DisplayName      string              `json:"display_name"`
	Executable       string              `json:"executable"`
	Category         string              `json:"category"`
	StartTime        time.Time           `json:"start_time"`
	TimeTodaySeconds float64             `json:"time_today_seconds"`
	History          []monitor.DaySample `json:"history"`
}

type SeriesResponse struct {
	Points []store.DatePoint `json:"points"`
}

type UptimeResponse struct {
	LastBootTime  *time.Time `json:"last_boot_time,omitempty"`
	UptimeSeconds float64    `json:"uptime_seconds"`
}

type SetCategoryRequest struct {
	Pattern  string `json:"pattern"`
	Category string `json:"category"`
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	s.writeJSON(w, http.StatusOK, InfoResponse{
		Name:    "timethread",
		Version: s.version,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleProcesses(w http.ResponseWriter, r *http.Request) {
	snapshot := s.monitor.Snapshot()

	resp := make([]ProcessResponse, 0, len(snapshot))
	for _, p := range snapshot {
		resp = append(resp, ProcessResponse{
			PID:              p.PID,
			DisplayName:      p.DisplayName,
			Executable:       p.Executable,
			Category:         p.Category,
			StartTime:        p.StartTime,
			TimeTodaySeconds: p.TimeToday.Seconds(),
			History:          p.History,
		})
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("process")
	if name == "" {
		http.Error(w, "missing process parameter", http.StatusBadRequest)
		return
	}
	days, ok := s.daysParam(w, r)
	if !ok {
		return
	}

	points, err := s.store.HistoricalDataForProcess(name, days)
	if err != nil {
		s.serverError(w, "history query failed", err)
		return
	}

	s.writeJSON(w, http.StatusOK, SeriesResponse{Points: points})
}

func (s *Server) handleCategoryTime(w http.ResponseWriter, r *http.Request) {
	cat := r.URL.Query().Get("category")
	if cat == "" {
		http.Error(w, "missing category parameter", http.StatusBadRequest)
		return
	}
	days, ok := s.daysParam(w, r)
	if !ok {
		return
	}

	points, err := s.store.TotalActiveTimeForCategory(cat, days)
	if err != nil {
		s.serverError(w, "category query failed", err)
		return
	}

	s.writeJSON(w, http.StatusOK, SeriesResponse{Points: points})
}

func (s *Server) handleTotalUsage(w http.ResponseWriter, r *http.Request) {
	days, ok := s.daysParam(w, r)
	if !ok {
		return
	}

	points, err := s.store.TotalUsage(days)
	if err != nil {
		s.serverError(w, "usage query failed", err)
		return
	}

	s.writeJSON(w, http.StatusOK, SeriesResponse{Points: points})
}

func (s *Server) handleOnTime(w http.ResponseWriter, r *http.Request) {
	days, ok := s.daysParam(w, r)
	if !ok {
		return
	}

	points, err := s.store.PersistedDailyOnTime(days)
	if err != nil {
		s.serverError(w, "on-time query failed", err)
		return
	}

	s.writeJSON(w, http.StatusOK, SeriesResponse{Points: points})
}

func (s *Server) handleUptime(w http.ResponseWriter, r *http.Request) {
	lastBoot := s.probe.LastBootTime()

	resp := UptimeResponse{
		UptimeSeconds: uptime.SystemUptime(lastBoot).Seconds(),
	}
	if !lastBoot.IsZero() {
		resp.LastBootTime = &lastBoot
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetCategory(w http.ResponseWriter, r *http.Request) {
	var req SetCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Pattern == "" || req.Category == "" {
		http.Error(w, "pattern and category are required", http.StatusBadRequest)
		return
	}

	s.monitor.SetCategory(req.Pattern, req.Category)
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// daysParam parses the trailing-window size, defaulting to 7 days.
func (s *Server) daysParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return 7, true
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 1 || days > 3650 {
		http.Error(w, "days must be between 1 and 3650", http.StatusBadRequest)
		return 0, false
	}
	return days, true
}

func (s *Server) serverError(w http.ResponseWriter, msg string, err error) {
	s.logger.Error(msg, "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}
