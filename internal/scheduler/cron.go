package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"

	"github.com/patrickspencer/timetable/pkg/timetable"
)

// cronParser supports standard 5-field cron expressions and descriptors like @hourly.
var cronParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// RuleTimetable drives the scheduler from a structured recurrence rule.
type RuleTimetable struct {
	Rule        *timetable.Rule
	Restriction timetable.Restriction
}

// Next computes the next run via the rule engine. Exhausted or out-of-bounds
// searches yield nil, ending the schedule.
func (t *RuleTimetable) Next(prev *timetable.Interval, now time.Time) *RunInfo {
	iv, err := t.Rule.NextInterval(prev, t.Restriction, now)
	if err != nil || iv == nil {
		return nil
	}
	return &RunInfo{Interval: *iv, RunAfter: t.Rule.RunAfter(iv)}
}

// specTimetable adapts a raw crontab spec or descriptor. Missed occurrences
// are never backfilled; the search always resumes from now.
type specTimetable struct {
	sched cron.Schedule
}

// NewSpecTimetable parses a raw crontab expression or @-descriptor.
func NewSpecTimetable(expr string) (Timetable, error) {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return nil, err
	}
	return &specTimetable{sched: sched}, nil
}

func (t *specTimetable) Next(prev *timetable.Interval, now time.Time) *RunInfo {
	after := now
	if prev != nil && prev.End.After(after) {
		after = prev.End
	}
	occ := t.sched.Next(after)
	if occ.IsZero() {
		return nil
	}
	start := occ
	if prev != nil {
		start = prev.End
	}
	return &RunInfo{
		Interval: timetable.Interval{Start: start, End: occ},
		RunAfter: occ,
	}
}
