package api

import (
	"net/http"

	"github.com/charmbracelet/log"
)

func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if a.GetConfig == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "config provider unavailable"})
		return
	}

	cfg := a.GetConfig()
	if cfg == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "config unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, cfg)
}

type statsResponse struct {
	TotalSchedules   int `json:"total_schedules"`
	EnabledSchedules int `json:"enabled_schedules"`
	TotalFirings     int `json:"total_firings"`
	ManualFirings    int `json:"manual_firings"`
}

func (a *API) handleStats(w http.ResponseWriter, r *http.Request) {
	schedules := a.Schedules()

	totalSchedules := len(schedules)
	var enabledSchedules int
	for _, s := range schedules {
		if s.IsEnabled() {
			enabledSchedules++
		}
	}

	var totalFirings, manualFirings int
	for _, s := range schedules {
		stats, err := a.Store.GetScheduleStats(r.Context(), s.Name)
		if err != nil {
			log.Error("failed to get schedule stats", "schedule", s.Name, "err", err)
			continue
		}
		totalFirings += stats.TotalFirings
		manualFirings += stats.Manual
	}

	writeJSON(w, http.StatusOK, statsResponse{
		TotalSchedules:   totalSchedules,
		EnabledSchedules: enabledSchedules,
		TotalFirings:     totalFirings,
		ManualFirings:    manualFirings,
	})
}
