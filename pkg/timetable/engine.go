package timetable

import (
	"errors"
	"time"
)

// NextInterval computes the next execution interval for the rule.
//
// With a previous interval the search continues strictly after its start for
// calendar rules (the previous start is the previous occurrence) and strictly
// after its end for cron rules (whose intervals span occurrence to
// occurrence). Without one, the search starts at r.Earliest when set, with
// the bound itself eligible, otherwise at now. When r.Catchup is false the
// search never looks behind now, so missed occurrences are skipped rather
// than backfilled.
//
// A nil interval with a nil error means the schedule has nothing further to
// run: the next occurrence falls past r.Latest, or the bounded search window
// is exhausted.
func (r *Rule) NextInterval(prev *Interval, res Restriction, now time.Time) (*Interval, error) {
	var after time.Time
	if prev != nil {
		after = prev.Start
		if r.kind == KindCronExpression {
			after = prev.End
		}
	} else if res.Earliest != nil {
		// Occurrences exactly at the earliest bound are eligible.
		after = res.Earliest.Add(-time.Nanosecond)
	} else {
		after = now
	}
	if !res.Catchup && now.After(after) {
		after = now
	}

	occ, err := r.ComputeNext(after)
	if errors.Is(err, ErrNoMatch) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if res.Latest != nil && occ.After(*res.Latest) {
		return nil, nil
	}
	return r.interval(occ), nil
}

// ManualInterval returns the interval a manually triggered run at runAfter
// covers: the one anchored at the most recent occurrence at or before
// runAfter. Nil when no occurrence exists within the search window.
func (r *Rule) ManualInterval(runAfter time.Time) (*Interval, error) {
	occ, err := r.ComputePrevious(runAfter.Add(time.Nanosecond))
	if errors.Is(err, ErrNoMatch) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.interval(occ), nil
}

// Occurrences returns the next count occurrences strictly after from. The
// slice is shorter than count when the search window is exhausted first.
func (r *Rule) Occurrences(from time.Time, count int) ([]time.Time, error) {
	occs := make([]time.Time, 0, count)
	ref := from
	for len(occs) < count {
		occ, err := r.ComputeNext(ref)
		if errors.Is(err, ErrNoMatch) {
			break
		}
		if err != nil {
			return nil, err
		}
		occs = append(occs, occ)
		ref = occ
	}
	return occs, nil
}

// RunAfter returns the instant a run covering the interval becomes due: the
// occurrence that produced it. Cron intervals end at their occurrence; every
// other kind starts at it.
func (r *Rule) RunAfter(iv *Interval) time.Time {
	if r.kind == KindCronExpression {
		return iv.End
	}
	return iv.Start
}

// interval packages an occurrence into the window it covers. Point-in-time
// rules get a fixed default window, stride rules span one stride, and cron
// intervals run from the previous occurrence to this one.
func (r *Rule) interval(occ time.Time) *Interval {
	switch r.kind {
	case KindCronExpression:
		if start, err := r.cron.prev(occ, r.loc); err == nil {
			return &Interval{Start: start, End: occ}
		}
		return &Interval{Start: occ, End: occ}
	case KindEveryNInterval:
		return &Interval{Start: occ, End: occ.Add(r.every)}
	case KindEveryNDays:
		end := ToInstant(addDays(ToLocal(occ, r.loc), r.intervalDays), r.loc)
		return &Interval{Start: occ, End: end}
	default:
		return &Interval{Start: occ, End: occ.Add(defaultWindow)}
	}
}
