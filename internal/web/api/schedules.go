package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/patrickspencer/timetable/internal/config"
	"github.com/patrickspencer/timetable/internal/realtime"
)

type scheduleResponse struct {
	Name          string             `json:"name"`
	Enabled       bool               `json:"enabled"`
	Catchup       bool               `json:"catchup"`
	TimeZone      string             `json:"timezone,omitempty"`
	Spec          string             `json:"schedule,omitempty"`
	Rule          *config.RuleConfig `json:"rule,omitempty"`
	Description   string             `json:"description,omitempty"`
	Earliest      string             `json:"earliest,omitempty"`
	Latest        string             `json:"latest,omitempty"`
	NextRunAfter  *time.Time         `json:"next_run_after,omitempty"`
	IntervalStart *time.Time         `json:"next_interval_start,omitempty"`
	IntervalEnd   *time.Time         `json:"next_interval_end,omitempty"`
}

func (a *API) scheduleToResponse(s *config.Schedule) scheduleResponse {
	resp := scheduleResponse{
		Name:     s.Name,
		Enabled:  s.IsEnabled(),
		Catchup:  s.Catchup,
		TimeZone: s.TimeZone,
		Spec:     s.Spec,
		Rule:     s.Rule,
		Earliest: s.Earliest,
		Latest:   s.Latest,
	}
	if a.Describe != nil {
		if desc, ok := a.Describe(s.Name); ok {
			resp.Description = desc
		}
	}
	if a.NextRun != nil {
		if run, ok := a.NextRun(s.Name); ok {
			after, start, end := run.RunAfter, run.Interval.Start, run.Interval.End
			resp.NextRunAfter = &after
			resp.IntervalStart = &start
			resp.IntervalEnd = &end
		}
	}
	return resp
}

func (a *API) findSchedule(name string) *config.Schedule {
	for _, s := range a.Schedules() {
		if s.Name == name {
			return s
		}
	}
	return nil
}

func (a *API) handleListSchedules(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	schedules := a.Schedules()
	result := make([]scheduleResponse, 0, len(schedules))
	for _, s := range schedules {
		result = append(result, a.scheduleToResponse(s))
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *API) handleGetSchedule(w http.ResponseWriter, _ *http.Request, name string) {
	s := a.findSchedule(name)
	if s == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "schedule not found"})
		return
	}
	writeJSON(w, http.StatusOK, a.scheduleToResponse(s))
}

type occurrencesResponse struct {
	Schedule    string      `json:"schedule"`
	From        time.Time   `json:"from"`
	Occurrences []time.Time `json:"occurrences"`
}

func (a *API) handleOccurrences(w http.ResponseWriter, r *http.Request, name string) {
	if a.Occurrences == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "occurrence preview unavailable"})
		return
	}
	if a.findSchedule(name) == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "schedule not found"})
		return
	}

	q := r.URL.Query()
	count := 10
	if v := q.Get("count"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			count = n
		}
	}
	from := time.Now().UTC()
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "from must be RFC3339"})
			return
		}
		from = t
	}

	occs, err := a.Occurrences(name, from, count)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to compute occurrences"})
		return
	}
	if occs == nil {
		occs = []time.Time{}
	}
	writeJSON(w, http.StatusOK, occurrencesResponse{Schedule: name, From: from, Occurrences: occs})
}

func (a *API) handleTriggerRun(w http.ResponseWriter, _ *http.Request, name string) {
	if a.TriggerRun == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "manual trigger unavailable"})
		return
	}
	if a.findSchedule(name) == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "schedule not found"})
		return
	}

	firing, err := a.TriggerRun(name)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if firing == nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "schedule has no interval to run"})
		return
	}

	a.emitEvent(realtime.Event{
		Type:          "firing",
		Schedule:      name,
		FiringID:      firing.ID,
		IntervalStart: &firing.IntervalStart,
		IntervalEnd:   &firing.IntervalEnd,
		Trigger:       "manual",
	})
	writeJSON(w, http.StatusAccepted, firingToResponse(firing))
}
