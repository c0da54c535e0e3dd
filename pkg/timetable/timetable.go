package timetable

import (
	"fmt"
	"time"
)

// DefaultTimeZone is the zone used when a rule is constructed with an empty
// timezone name.
const DefaultTimeZone = "America/New_York"

// defaultWindow is the interval length recorded for point-in-time rules.
// Stride rules use their stride instead, and cron rules span from the
// previous occurrence to the current one.
const defaultWindow = time.Hour

// LocalDateTime is a calendar date plus time of day with no zone attached.
// Rule strategies produce these before zone resolution.
type LocalDateTime struct {
	Year   int
	Month  time.Month
	Day    int
	Hour   int
	Minute int
}

// Interval is one scheduled execution window, start ≤ end.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Restriction bounds the search for the next interval. Earliest and Latest
// are inclusive; a nil bound is unbounded. When Catchup is false the search
// never yields intervals behind the supplied "now".
type Restriction struct {
	Earliest *time.Time
	Latest   *time.Time
	Catchup  bool
}

// ConfigurationError reports an out-of-domain rule parameter. It is returned
// by rule constructors only; once a rule exists its computations cannot fail
// on configuration.
type ConfigurationError struct {
	Rule   string
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: invalid %s: %s", e.Rule, e.Field, e.Reason)
}

func configErr(rule, field, format string, args ...any) error {
	return &ConfigurationError{Rule: rule, Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ErrNoMatch is returned by ComputeNext/ComputePrevious when the bounded
// search window is exhausted without a match (an impossible cron expression,
// for example). The engine surfaces it as "no next interval", never as a
// fatal condition.
var ErrNoMatch = fmt.Errorf("timetable: no matching occurrence within search window")
