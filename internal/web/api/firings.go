package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/patrickspencer/timetable/internal/store"
)

type firingResponse struct {
	ID            string    `json:"id"`
	ScheduleName  string    `json:"schedule_name"`
	IntervalStart time.Time `json:"interval_start"`
	IntervalEnd   time.Time `json:"interval_end"`
	RunAfter      time.Time `json:"run_after"`
	FiredAt       time.Time `json:"fired_at"`
	Trigger       string    `json:"trigger"`
	CreatedAt     time.Time `json:"created_at"`
}

func firingToResponse(f *store.Firing) firingResponse {
	return firingResponse{
		ID:            f.ID,
		ScheduleName:  f.ScheduleName,
		IntervalStart: f.IntervalStart,
		IntervalEnd:   f.IntervalEnd,
		RunAfter:      f.RunAfter,
		FiredAt:       f.FiredAt,
		Trigger:       f.Trigger,
		CreatedAt:     f.CreatedAt,
	}
}

func (a *API) handleListFirings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	q := r.URL.Query()
	opts := store.ListOpts{
		ScheduleName: q.Get("schedule"),
		Limit:        50,
	}

	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			opts.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			opts.Offset = n
		}
	}

	firings, err := a.Store.ListFirings(r.Context(), opts)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list firings"})
		return
	}

	result := make([]firingResponse, 0, len(firings))
	for _, f := range firings {
		result = append(result, firingToResponse(f))
	}

	writeJSON(w, http.StatusOK, result)
}

func (a *API) handleGetFiring(w http.ResponseWriter, r *http.Request, id string) {
	f, err := a.Store.GetFiring(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get firing"})
		return
	}
	if f == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "firing not found"})
		return
	}

	writeJSON(w, http.StatusOK, firingToResponse(f))
}
