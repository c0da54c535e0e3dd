package timetable

import (
	"strconv"
	"strings"
	"time"
)

// maxCronSearchYears bounds the field-wise search in each direction. An
// expression that cannot match within this window (day-of-month 31 in
// February only, say) yields ErrNoMatch instead of looping forever.
const maxCronSearchYears = 8

type cronBounds struct {
	name     string
	min, max int
}

var (
	minuteBounds = cronBounds{"minute", 0, 59}
	hourBounds   = cronBounds{"hour", 0, 23}
	domBounds    = cronBounds{"day-of-month", 1, 31}
	monthBounds  = cronBounds{"month", 1, 12}
	dowBounds    = cronBounds{"day-of-week", 0, 7}
)

// CronFieldSet is the parsed form of a standard 5-field cron expression:
// one admissible-value bitset per field, derived once at rule construction
// and immutable afterwards. Day-of-week follows the crontab convention,
// 0 (or 7) meaning Sunday.
type CronFieldSet struct {
	expr   string
	minute uint64
	hour   uint64
	dom    uint64
	month  uint64
	dow    uint64

	// Bare "*" in the day fields switches the day match from union to
	// pass-through, per the crontab day-of-month/day-of-week rule.
	domStar bool
	dowStar bool
}

// String returns the original expression.
func (f *CronFieldSet) String() string { return f.expr }

// parseCron parses a 5-field cron expression (minute, hour, day-of-month,
// month, day-of-week) supporting "*", lists, ranges, and step values.
func parseCron(expr string) (*CronFieldSet, error) {
	fields := strings.Fields(strings.TrimSpace(expr))
	if len(fields) != 5 {
		return nil, configErr("CronExpression", "expr", "expected 5 fields, got %d in %q", len(fields), expr)
	}

	f := &CronFieldSet{expr: expr}
	var err error
	if f.minute, _, err = parseCronField(fields[0], minuteBounds); err != nil {
		return nil, err
	}
	if f.hour, _, err = parseCronField(fields[1], hourBounds); err != nil {
		return nil, err
	}
	if f.dom, f.domStar, err = parseCronField(fields[2], domBounds); err != nil {
		return nil, err
	}
	if f.month, _, err = parseCronField(fields[3], monthBounds); err != nil {
		return nil, err
	}
	if f.dow, f.dowStar, err = parseCronField(fields[4], dowBounds); err != nil {
		return nil, err
	}

	// Crontab allows 7 for Sunday; fold it onto 0.
	if f.dow&(1<<7) != 0 {
		f.dow |= 1
		f.dow &^= 1 << 7
	}
	return f, nil
}

// parseCronField parses one comma-separated field into a bitset. The star
// result reports whether the field was a bare "*".
func parseCronField(field string, b cronBounds) (bits uint64, star bool, err error) {
	for _, part := range strings.Split(field, ",") {
		rangeExpr, stepExpr, hasStep := strings.Cut(part, "/")

		step := 1
		if hasStep {
			step, err = strconv.Atoi(stepExpr)
			if err != nil || step < 1 {
				return 0, false, configErr("CronExpression", b.name, "bad step in %q", part)
			}
		}

		lo, hi := b.min, b.max
		switch {
		case rangeExpr == "*":
			if !hasStep && part == field {
				star = true
			}
		case strings.Contains(rangeExpr, "-"):
			loExpr, hiExpr, _ := strings.Cut(rangeExpr, "-")
			if lo, err = strconv.Atoi(loExpr); err != nil {
				return 0, false, configErr("CronExpression", b.name, "bad range in %q", part)
			}
			if hi, err = strconv.Atoi(hiExpr); err != nil {
				return 0, false, configErr("CronExpression", b.name, "bad range in %q", part)
			}
		default:
			if lo, err = strconv.Atoi(rangeExpr); err != nil {
				return 0, false, configErr("CronExpression", b.name, "bad value %q", part)
			}
			if hasStep {
				hi = b.max // "N/step" runs from N to the field maximum
			} else {
				hi = lo
			}
		}

		if lo < b.min || hi > b.max || lo > hi {
			return 0, false, configErr("CronExpression", b.name, "%q out of range %d-%d", part, b.min, b.max)
		}
		for v := lo; v <= hi; v += step {
			bits |= 1 << uint(v)
		}
	}
	return bits, star, nil
}

func bitSet(set uint64, v int) bool { return set&(1<<uint(v)) != 0 }

// dayMatches applies the crontab day rule: when both day fields are
// restricted a date matches if either matches; a bare "*" in one field
// defers entirely to the other.
func (f *CronFieldSet) dayMatches(year int, month time.Month, day int) bool {
	domOK := bitSet(f.dom, day)
	dowOK := bitSet(f.dow, int(time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Weekday()))
	switch {
	case f.domStar && f.dowStar:
		return true
	case f.domStar:
		return dowOK
	case f.dowStar:
		return domOK
	default:
		return domOK || dowOK
	}
}

// bumpMinute advances the wall clock by one minute, cascading into hour and
// day overflow.
func bumpMinute(l LocalDateTime) LocalDateTime {
	l.Minute++
	if l.Minute > 59 {
		l.Minute = 0
		l.Hour++
		if l.Hour > 23 {
			l.Hour = 0
			l = addDays(l, 1)
		}
	}
	return l
}

// dropMinute is bumpMinute's mirror for the backward search.
func dropMinute(l LocalDateTime) LocalDateTime {
	l.Minute--
	if l.Minute < 0 {
		l.Minute = 59
		l.Hour--
		if l.Hour < 0 {
			l.Hour = 23
			l = addDays(l, -1)
		}
	}
	return l
}

// next returns the first matching instant strictly after the reference. The
// search walks wall-clock fields coarsest-first in the rule's zone, advancing
// the first non-matching field and resetting everything finer, so sparse
// expressions (a yearly pattern, say) never degrade into a minute scan.
func (f *CronFieldSet) next(after time.Time, loc *time.Location) (time.Time, error) {
	t := after.In(loc).Truncate(time.Minute).Add(time.Minute)
	l := LocalDateTime{Year: t.Year(), Month: t.Month(), Day: t.Day(), Hour: t.Hour(), Minute: t.Minute()}
	limit := l.Year + maxCronSearchYears

	for l.Year <= limit {
		if !bitSet(f.month, int(l.Month)) {
			l.Month++
			l.Day, l.Hour, l.Minute = 1, 0, 0
			if l.Month > time.December {
				l.Month = time.January
				l.Year++
			}
			continue
		}
		if !f.dayMatches(l.Year, l.Month, l.Day) {
			l.Hour, l.Minute = 0, 0
			l = addDays(l, 1)
			continue
		}
		if !bitSet(f.hour, l.Hour) {
			l.Minute = 0
			l.Hour++
			if l.Hour > 23 {
				l.Hour = 0
				l = addDays(l, 1)
			}
			continue
		}
		if !bitSet(f.minute, l.Minute) {
			l = bumpMinute(l)
			continue
		}
		// A fall-back fold can resolve a matching wall time at or before
		// the reference; keep walking in that case.
		if inst := ToInstant(l, loc); inst.After(after) {
			return inst, nil
		}
		l = bumpMinute(l)
	}
	return time.Time{}, ErrNoMatch
}

// prev returns the last matching instant strictly before the reference.
func (f *CronFieldSet) prev(before time.Time, loc *time.Location) (time.Time, error) {
	t := before.In(loc).Truncate(time.Minute)
	l := LocalDateTime{Year: t.Year(), Month: t.Month(), Day: t.Day(), Hour: t.Hour(), Minute: t.Minute()}
	limit := l.Year - maxCronSearchYears

	for l.Year >= limit {
		if !bitSet(f.month, int(l.Month)) {
			l.Month--
			if l.Month < time.January {
				l.Month = time.December
				l.Year--
			}
			l.Day = LastDayOfMonth(l.Year, l.Month)
			l.Hour, l.Minute = 23, 59
			continue
		}
		if !f.dayMatches(l.Year, l.Month, l.Day) {
			l.Hour, l.Minute = 23, 59
			l = addDays(l, -1)
			continue
		}
		if !bitSet(f.hour, l.Hour) {
			l.Minute = 59
			l.Hour--
			if l.Hour < 0 {
				l.Hour = 23
				l = addDays(l, -1)
			}
			continue
		}
		if !bitSet(f.minute, l.Minute) {
			l = dropMinute(l)
			continue
		}
		if inst := ToInstant(l, loc); inst.Before(before) {
			return inst, nil
		}
		l = dropMinute(l)
	}
	return time.Time{}, ErrNoMatch
}
