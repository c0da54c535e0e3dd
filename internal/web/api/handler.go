package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/patrickspencer/timetable/internal/config"
	"github.com/patrickspencer/timetable/internal/realtime"
	"github.com/patrickspencer/timetable/internal/scheduler"
	"github.com/patrickspencer/timetable/internal/store"
)

// API holds dependencies for all API handlers.
type API struct {
	Store       store.FiringStore
	Events      *realtime.Broker
	GetConfig   func() *config.Config
	Schedules   func() []*config.Schedule
	Describe    func(name string) (string, bool)
	NextRun     func(name string) (scheduler.RunInfo, bool)
	Occurrences func(name string, from time.Time, count int) ([]time.Time, error)
	TriggerRun  func(name string) (*store.Firing, error)
}

// RegisterRoutes registers all API routes on the given ServeMux.
func (a *API) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/schedules/", a.routeSchedules)
	mux.HandleFunc("/api/v1/schedules", a.handleListSchedules)
	mux.HandleFunc("/api/v1/firings/", a.routeFirings)
	mux.HandleFunc("/api/v1/firings", a.handleListFirings)
	mux.HandleFunc("/api/v1/events", a.handleEvents)
	mux.HandleFunc("/api/v1/config", a.handleConfig)
	mux.HandleFunc("/api/v1/health", a.handleHealth)
	mux.HandleFunc("/api/v1/stats", a.handleStats)
}

// routeSchedules dispatches /api/v1/schedules/{name}[/action] requests.
func (a *API) routeSchedules(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/schedules/")
	parts := strings.SplitN(path, "/", 2)
	name := parts[0]
	if name == "" {
		a.handleListSchedules(w, r)
		return
	}

	action := ""
	if len(parts) > 1 {
		action = parts[1]
	}

	switch {
	case action == "run" && r.Method == http.MethodPost:
		a.handleTriggerRun(w, r, name)
	case action == "occurrences" && r.Method == http.MethodGet:
		a.handleOccurrences(w, r, name)
	case action == "" && r.Method == http.MethodGet:
		a.handleGetSchedule(w, r, name)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

// routeFirings dispatches /api/v1/firings/{id} requests.
func (a *API) routeFirings(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/firings/")
	if id == "" {
		a.handleListFirings(w, r)
		return
	}
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	a.handleGetFiring(w, r, id)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error("failed to write JSON response", "err", err)
	}
}
