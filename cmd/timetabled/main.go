package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/patrickspencer/timetable/internal/config"
	"github.com/patrickspencer/timetable/internal/realtime"
	"github.com/patrickspencer/timetable/internal/scheduler"
	"github.com/patrickspencer/timetable/internal/store"
	"github.com/patrickspencer/timetable/internal/web"
	"github.com/patrickspencer/timetable/internal/web/api"
	"github.com/patrickspencer/timetable/pkg/timetable"
)

// runtimeSchedule pairs a schedule definition with its built recurrence.
// rule is nil for raw crontab specs, which go through robfig/cron instead.
type runtimeSchedule struct {
	def  *config.Schedule
	rule *timetable.Rule
	tt   scheduler.Timetable
}

func main() {
	// Check for subcommands before flag parsing.
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "preview":
			os.Exit(runPreview(os.Args[2:]))
		}
	}

	configPath := flag.String("config", "timetabled.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}

	// Ensure data and schedule directories exist.
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatal("failed to create data directory", "dir", cfg.DataDir, "err", err)
	}
	if err := os.MkdirAll(cfg.SchedulesDir, 0755); err != nil {
		log.Fatal("failed to create schedules directory", "dir", cfg.SchedulesDir, "err", err)
	}

	// Open SQLite store.
	dbPath := filepath.Join(cfg.DataDir, "timetabled.db")
	st, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		log.Fatal("failed to open store", "err", err)
	}
	defer st.Close()
	log.Info("store opened", "path", dbPath)

	events := realtime.NewBroker()

	// Schedule registry protected by mutex for hot reloads.
	reg := newRegistry()

	// fire records a scheduled firing and broadcasts it to SSE clients.
	fire := func(name string, run scheduler.RunInfo) {
		firedAt := time.Now().UTC()
		f := &store.Firing{
			ScheduleName:  name,
			IntervalStart: run.Interval.Start,
			IntervalEnd:   run.Interval.End,
			RunAfter:      run.RunAfter,
			FiredAt:       firedAt,
			Trigger:       "schedule",
		}
		if err := st.RecordFiring(context.Background(), f); err != nil {
			log.Error("failed to record firing", "schedule", name, "err", err)
			return
		}
		log.Info("schedule fired",
			"schedule", name,
			"interval_start", run.Interval.Start.Format(time.RFC3339),
			"interval_end", run.Interval.End.Format(time.RFC3339))
		events.Publish(realtime.Event{
			Type:          "firing",
			Schedule:      name,
			FiringID:      f.ID,
			IntervalStart: &f.IntervalStart,
			IntervalEnd:   &f.IntervalEnd,
			Trigger:       "schedule",
		})
	}

	sched := scheduler.NewScheduler(fire)

	// applySchedule queues a schedule, resuming from its last recorded
	// scheduled firing so restarts never re-fire or skip an interval.
	applySchedule := func(rs *runtimeSchedule) {
		name := rs.def.Name
		sched.RemoveSchedule(name)
		if !rs.def.IsEnabled() {
			log.Info("schedule disabled", "schedule", name)
			return
		}

		var prev *timetable.Interval
		if last, err := st.LastFiring(context.Background(), name); err != nil {
			log.Error("failed to read last firing", "schedule", name, "err", err)
		} else if last != nil {
			prev = &timetable.Interval{Start: last.IntervalStart, End: last.IntervalEnd}
		}

		if next := sched.AddSchedule(name, rs.tt, prev); next != nil {
			log.Info("schedule queued",
				"schedule", name,
				"next_run", next.RunAfter.Format(time.RFC3339))
		} else {
			log.Info("schedule has nothing further to run", "schedule", name)
		}
	}

	loadAll := func() {
		defs, err := config.LoadSchedules(cfg.SchedulesDir)
		if err != nil {
			log.Error("failed to load schedules", "dir", cfg.SchedulesDir, "err", err)
			return
		}
		added, updated, removed := reg.replace(defs, cfg.DefaultTimeZone)
		for _, name := range removed {
			sched.RemoveSchedule(name)
			log.Info("schedule removed", "schedule", name)
			events.Publish(realtime.Event{Type: "schedule", Schedule: name, Action: "removed"})
		}
		for _, name := range added {
			if rs, ok := reg.get(name); ok {
				applySchedule(rs)
				events.Publish(realtime.Event{Type: "schedule", Schedule: name, Action: "added"})
			}
		}
		for _, name := range updated {
			if rs, ok := reg.get(name); ok {
				applySchedule(rs)
				events.Publish(realtime.Event{Type: "schedule", Schedule: name, Action: "updated"})
			}
		}
	}

	loadAll()
	log.Info("schedules loaded", "count", reg.len())
	sched.Start()

	// Watch the schedules directory and reload on changes, debounced so a
	// burst of editor writes triggers a single reload.
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Error("failed to create schedule watcher", "err", err)
	} else {
		defer watcher.Close()
		if err := watcher.Add(cfg.SchedulesDir); err != nil {
			log.Error("failed to watch schedules directory", "dir", cfg.SchedulesDir, "err", err)
		} else {
			go watchSchedules(watcher, loadAll)
		}
	}

	triggerRun := func(name string) (*store.Firing, error) {
		rs, ok := reg.get(name)
		if !ok {
			return nil, fmt.Errorf("schedule not found: %s", name)
		}

		now := time.Now().UTC()
		var iv *timetable.Interval
		if rs.rule != nil {
			var err error
			iv, err = rs.rule.ManualInterval(now)
			if err != nil {
				return nil, err
			}
			if iv == nil {
				return nil, nil
			}
		} else {
			// Raw crontab specs carry no data interval of their own; a
			// manual run covers the trigger instant.
			iv = &timetable.Interval{Start: now, End: now}
		}

		f := &store.Firing{
			ScheduleName:  name,
			IntervalStart: iv.Start,
			IntervalEnd:   iv.End,
			RunAfter:      now,
			FiredAt:       now,
			Trigger:       "manual",
		}
		if err := st.RecordFiring(context.Background(), f); err != nil {
			return nil, err
		}
		log.Info("manual run recorded", "schedule", name, "firing", f.ID)
		return f, nil
	}

	describe := func(name string) (string, bool) {
		rs, ok := reg.get(name)
		if !ok {
			return "", false
		}
		if rs.rule != nil {
			return rs.rule.Description(), true
		}
		return "crontab " + rs.def.Spec, true
	}

	occurrences := func(name string, from time.Time, count int) ([]time.Time, error) {
		rs, ok := reg.get(name)
		if !ok {
			return nil, fmt.Errorf("schedule not found: %s", name)
		}
		return nextOccurrences(rs, from, count)
	}

	getConfigSnapshot := func() *config.Config {
		cp := *cfg
		return &cp
	}

	a := &api.API{
		Store:       st,
		Events:      events,
		GetConfig:   getConfigSnapshot,
		Schedules:   reg.list,
		Describe:    describe,
		NextRun:     sched.NextRun,
		Occurrences: occurrences,
		TriggerRun:  triggerRun,
	}
	srv := web.NewServer(cfg.Listen, a)

	// Graceful shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server error", "err", err)
		}
	}()

	log.Info("timetabled started", "listen", cfg.Listen)

	<-sigCh
	log.Info("shutting down")

	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown error", "err", err)
	}

	log.Info("timetabled stopped")
}

// watchSchedules reloads schedule definitions when files under the watched
// directory change. Events are debounced for 250ms.
func watchSchedules(watcher *fsnotify.Watcher, reload func()) {
	var timer *time.Timer
	debounce := func() {
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(250*time.Millisecond, func() {
			log.Info("schedule files changed, reloading")
			reload()
		})
	}

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove|fsnotify.Chmod) != 0 {
				debounce()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Error("schedule watcher error", "err", err)
		}
	}
}

// buildRuntime validates and builds a schedule definition, filling in the
// daemon's default timezone when the file leaves it unset.
func buildRuntime(def *config.Schedule, defaultTZ string) (*runtimeSchedule, error) {
	if def.TimeZone == "" {
		def.TimeZone = defaultTZ
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}

	rs := &runtimeSchedule{def: def}
	if def.Rule != nil {
		rule, err := def.BuildRule()
		if err != nil {
			return nil, err
		}
		res, err := def.Restriction()
		if err != nil {
			return nil, err
		}
		rs.rule = rule
		rs.tt = &scheduler.RuleTimetable{Rule: rule, Restriction: res}
		return rs, nil
	}

	tt, err := scheduler.NewSpecTimetable(def.Spec)
	if err != nil {
		return nil, err
	}
	rs.tt = tt
	return rs, nil
}

// nextOccurrences previews upcoming occurrence instants for a schedule.
// Rule schedules compute them directly; raw spec schedules step the
// timetable forward one interval at a time.
func nextOccurrences(rs *runtimeSchedule, from time.Time, count int) ([]time.Time, error) {
	if rs.rule != nil {
		return rs.rule.Occurrences(from, count)
	}

	occs := make([]time.Time, 0, count)
	var prev *timetable.Interval
	for len(occs) < count {
		run := rs.tt.Next(prev, from)
		if run == nil {
			break
		}
		occs = append(occs, run.RunAfter)
		iv := run.Interval
		prev = &iv
	}
	return occs, nil
}

// registry is the mutex-protected set of live schedules.
type registry struct {
	mu        sync.RWMutex
	schedules map[string]*runtimeSchedule
}

func newRegistry() *registry {
	return &registry{schedules: make(map[string]*runtimeSchedule)}
}

func (r *registry) get(name string) (*runtimeSchedule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rs, ok := r.schedules[name]
	return rs, ok
}

func (r *registry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.schedules)
}

func (r *registry) list() []*config.Schedule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*config.Schedule, 0, len(r.schedules))
	for _, rs := range r.schedules {
		cp := *rs.def
		if rs.def.Enabled != nil {
			v := *rs.def.Enabled
			cp.Enabled = &v
		}
		result = append(result, &cp)
	}
	return result
}

// replace swaps in a freshly loaded set of definitions, returning the names
// of added, materially changed, and removed schedules. Invalid definitions
// are logged and skipped; a valid schedule already running is kept as-is
// rather than dropped.
func (r *registry) replace(defs []*config.Schedule, defaultTZ string) (added, updated, removed []string) {
	incoming := make(map[string]*runtimeSchedule, len(defs))
	for _, def := range defs {
		rs, err := buildRuntime(def, defaultTZ)
		if err != nil {
			log.Error("invalid schedule definition, skipping", "file", def.FilePath, "err", err)
			continue
		}
		if _, dup := incoming[def.Name]; dup {
			log.Error("duplicate schedule name, skipping", "schedule", def.Name, "file", def.FilePath)
			continue
		}
		incoming[def.Name] = rs
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for name, rs := range incoming {
		old, exists := r.schedules[name]
		switch {
		case !exists:
			added = append(added, name)
		case !sameDefinition(old.def, rs.def):
			updated = append(updated, name)
		}
		r.schedules[name] = rs
	}
	for name := range r.schedules {
		if _, ok := incoming[name]; !ok {
			removed = append(removed, name)
			delete(r.schedules, name)
		}
	}
	return added, updated, removed
}

// sameDefinition compares two schedule definitions by their serialized form.
func sameDefinition(a, b *config.Schedule) bool {
	ya, err := config.MarshalScheduleYAML(a)
	if err != nil {
		return false
	}
	yb, err := config.MarshalScheduleYAML(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ya, yb)
}
