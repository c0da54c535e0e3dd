package timetable

import (
	"strings"
	"time"
)

// ToInstant resolves a naive local date/time in the given zone to an
// absolute instant. DST edge cases follow a fixed policy so every rule
// variant resolves identically: a wall time inside a spring-forward gap maps
// to the instant immediately after the gap, and an ambiguous fall-back wall
// time maps to the earlier of the two candidate instants.
func ToInstant(l LocalDateTime, loc *time.Location) time.Time {
	t := time.Date(l.Year, l.Month, l.Day, l.Hour, l.Minute, 0, 0, loc)
	if sameWall(t, l) {
		// The wall time exists but may be ambiguous during a fall-back
		// overlap. An instant one shift earlier showing the same wall
		// clock means t is the later candidate; prefer the earlier one.
		for _, shift := range []time.Duration{time.Hour, 30 * time.Minute} {
			if alt := t.Add(-shift); sameWall(alt, l) {
				return alt
			}
		}
		return t
	}
	// The wall time fell in a spring-forward gap and time.Date normalized
	// it past the transition. Back up to the first instant after the gap.
	return gapEnd(t)
}

// ToLocal is the inverse of ToInstant: the wall-clock representation of an
// instant in the given zone.
func ToLocal(t time.Time, loc *time.Location) LocalDateTime {
	t = t.In(loc)
	return LocalDateTime{Year: t.Year(), Month: t.Month(), Day: t.Day(), Hour: t.Hour(), Minute: t.Minute()}
}

func sameWall(t time.Time, l LocalDateTime) bool {
	return t.Year() == l.Year && t.Month() == l.Month && t.Day() == l.Day &&
		t.Hour() == l.Hour && t.Minute() == l.Minute
}

// gapEnd returns the transition instant ending the DST gap that t was
// normalized across. t carries the post-transition offset; binary-search the
// offset change below it. Real-world gaps never exceed two hours, so three
// hours of look-back always brackets the transition.
func gapEnd(t time.Time) time.Time {
	_, off := t.Zone()
	lo, hi := t.Add(-3*time.Hour), t
	if _, o := lo.Zone(); o == off {
		return t
	}
	for hi.Sub(lo) > time.Second {
		mid := lo.Add(hi.Sub(lo) / 2)
		if _, o := mid.Zone(); o == off {
			hi = mid
		} else {
			lo = mid
		}
	}
	// Transitions land on whole seconds; snap down if the offset holds.
	if snapped := hi.Truncate(time.Second); !snapped.Equal(hi) {
		if _, o := snapped.Zone(); o == off {
			hi = snapped
		}
	}
	return hi
}

// loadLocation validates and resolves a zone name, applying the package
// default for an empty name.
func loadLocation(rule, tz string) (*time.Location, string, error) {
	tz = strings.TrimSpace(tz)
	if tz == "" {
		tz = DefaultTimeZone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, "", configErr(rule, "timezone", "unknown zone %q", tz)
	}
	return loc, tz, nil
}
