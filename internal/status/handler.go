package status

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shahmeerahmad1435/tracker-app/internal/config"
	"github.com/shahmeerahmad1435/tracker-app/internal/reporter"
	"github.com/shahmeerahmad1435/tracker-app/internal/session"
	"github.com/shahmeerahmad1435/tracker-app/internal/usage"
)

// ServiceInfo reports whether one background service is running.
type ServiceInfo struct {
	Name    string `json:"name"`
	Running bool   `json:"running"`
}

// RunningReporter is any service that can say whether it is active.
type RunningReporter interface {
	IsRunning() bool
}

// StatusResponse is the payload of /api/status.
type StatusResponse struct {
	State       string        `json:"state"`
	UserName    string        `json:"user_name,omitempty"`
	CheckInTime string        `json:"check_in_time,omitempty"`
	Services    []ServiceInfo `json:"services"`
	Pending     []usage.Entry `json:"pending_usage"`
	Uptime      string        `json:"uptime"`
	Version     string        `json:"version"`
}

// Handler serves the status API routes
type Handler struct {
	config   *config.Config
	session  *session.Manager
	usage    *usage.Tracker
	services map[string]RunningReporter
	reporter *reporter.Reporter
	started  time.Time
	version  string
}

func NewHandler(cfg *config.Config, sess *session.Manager, tracker *usage.Tracker, services map[string]RunningReporter, rep *reporter.Reporter, version string) *Handler {
	return &Handler{
		config:   cfg,
		session:  sess,
		usage:    tracker,
		services: services,
		reporter: rep,
		started:  time.Now(),
		version:  version,
	}
}

func (h *Handler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/status", h.handleStatus)
	mux.HandleFunc("/api/report", h.handleReport)
	mux.HandleFunc("/api/history", h.handleHistory)

	mux.HandleFunc("/health", h.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	services := make([]ServiceInfo, 0, len(h.services)+1)
	services = append(services, ServiceInfo{Name: "usage", Running: h.usage.IsRunning()})
	for name, svc := range h.services {
		services = append(services, ServiceInfo{Name: name, Running: svc.IsRunning()})
	}

	respondJSON(w, StatusResponse{
		State:       h.session.State().String(),
		UserName:    h.session.UserName(),
		CheckInTime: h.session.CheckInTime(),
		Services:    services,
		Pending:     h.usage.Snapshot(),
		Uptime:      time.Since(h.started).Round(time.Second).String(),
		Version:     h.version,
	})
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if h.reporter == nil {
		http.Error(w, "Local history disabled", http.StatusServiceUnavailable)
		return
	}

	periodType := r.URL.Query().Get("period")
	if periodType == "" {
		periodType = "day"
	}

	report, err := h.reporter.GenerateReport(periodType)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to generate report: %v", err), http.StatusInternalServerError)
		return
	}

	respondJSON(w, report)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if h.reporter == nil {
		http.Error(w, "Local history disabled", http.StatusServiceUnavailable)
		return
	}

	periodType := r.URL.Query().Get("period")
	if periodType == "" {
		periodType = "day"
	}

	records, err := h.reporter.History(periodType)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to read history: %v", err), http.StatusInternalServerError)
		return
	}

	respondJSON(w, records)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, fmt.Sprintf("Failed to encode response: %v", err), http.StatusInternalServerError)
	}
}
