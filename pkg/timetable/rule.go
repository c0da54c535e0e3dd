package timetable

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Kind tags the closed set of recurrence patterns.
type Kind int

const (
	KindMonthlyLastDay Kind = iota
	KindMonthlyOnDay
	KindMonthlyMultipleDays
	KindQuarterlyFirstDay
	KindQuarterlyLastDay
	KindYearlyFirstDay
	KindMonthlyWeekdayOccurrence
	KindYearlyWeekdayOccurrence
	KindWeeklyOnDay
	KindBiweeklyOnDay
	KindSemiMonthly
	KindEveryNDays
	KindBusinessDayOfMonth
	KindMonthlyLastDayExceptWeekend
	KindEveryNInterval
	KindCronExpression
)

var kindNames = [...]string{
	"MonthlyLastDay",
	"MonthlyOnDay",
	"MonthlyMultipleDays",
	"QuarterlyFirstDay",
	"QuarterlyLastDay",
	"YearlyFirstDay",
	"MonthlyWeekdayOccurrence",
	"YearlyWeekdayOccurrence",
	"WeeklyOnDay",
	"BiweeklyOnDay",
	"SemiMonthly",
	"EveryNDays",
	"BusinessDayOfMonth",
	"MonthlyLastDayExceptWeekend",
	"EveryNInterval",
	"CronExpression",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// maxMonthScan bounds the month-by-month search. Every month-based variant
// fires at least once a year, so this is a safety net against a logic bug,
// not a reachable condition for valid rules.
const maxMonthScan = 800

// Rule is one configured recurrence pattern. Construct it with the New*
// functions; a Rule is immutable afterwards and safe for concurrent use.
type Rule struct {
	kind   Kind
	tz     string
	loc    *time.Location
	hour   int
	minute int

	day     int
	days    []int
	weekday Weekday
	n       int
	month   time.Month

	anchor        LocalDateTime // biweekly and every-n-days phase reference
	anchorInstant time.Time     // every-n-interval phase reference
	intervalDays  int
	every         time.Duration

	cron *CronFieldSet
}

// Kind returns the rule's pattern tag.
func (r *Rule) Kind() Kind { return r.kind }

// TimeZone returns the rule's resolved IANA zone name.
func (r *Rule) TimeZone() string { return r.tz }

// Location returns the rule's resolved zone.
func (r *Rule) Location() *time.Location { return r.loc }

func newRule(kind Kind, hour, minute int, tz string) (*Rule, error) {
	if hour < 0 || hour > 23 {
		return nil, configErr(kind.String(), "hour", "%d not in 0-23", hour)
	}
	if minute < 0 || minute > 59 {
		return nil, configErr(kind.String(), "minute", "%d not in 0-59", minute)
	}
	loc, tz, err := loadLocation(kind.String(), tz)
	if err != nil {
		return nil, err
	}
	return &Rule{kind: kind, hour: hour, minute: minute, tz: tz, loc: loc}, nil
}

func parseAnchorDate(rule, s string) (LocalDateTime, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return LocalDateTime{}, configErr(rule, "anchor", "%q is not an ISO date (2006-01-02)", s)
	}
	return LocalDateTime{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// NewMonthlyLastDay fires on the last calendar day of each month.
func NewMonthlyLastDay(hour, minute int, tz string) (*Rule, error) {
	return newRule(KindMonthlyLastDay, hour, minute, tz)
}

// NewMonthlyOnDay fires on a fixed day number each month. Months without the
// day (day 31 in February) are skipped.
func NewMonthlyOnDay(day, hour, minute int, tz string) (*Rule, error) {
	if day < 1 || day > 31 {
		return nil, configErr(KindMonthlyOnDay.String(), "day", "%d not in 1-31", day)
	}
	r, err := newRule(KindMonthlyOnDay, hour, minute, tz)
	if err != nil {
		return nil, err
	}
	r.day = day
	return r, nil
}

// NewMonthlyMultipleDays fires on every day in a set of day numbers each
// month. Days the month lacks are skipped individually.
func NewMonthlyMultipleDays(days []int, hour, minute int, tz string) (*Rule, error) {
	if len(days) == 0 {
		return nil, configErr(KindMonthlyMultipleDays.String(), "days", "empty set")
	}
	seen := make(map[int]bool, len(days))
	sorted := make([]int, 0, len(days))
	for _, d := range days {
		if d < 1 || d > 31 {
			return nil, configErr(KindMonthlyMultipleDays.String(), "days", "%d not in 1-31", d)
		}
		if !seen[d] {
			seen[d] = true
			sorted = append(sorted, d)
		}
	}
	sort.Ints(sorted)
	r, err := newRule(KindMonthlyMultipleDays, hour, minute, tz)
	if err != nil {
		return nil, err
	}
	r.days = sorted
	return r, nil
}

// NewQuarterlyFirstDay fires on the first day of each calendar quarter.
func NewQuarterlyFirstDay(hour, minute int, tz string) (*Rule, error) {
	return newRule(KindQuarterlyFirstDay, hour, minute, tz)
}

// NewQuarterlyLastDay fires on the last day of each calendar quarter.
func NewQuarterlyLastDay(hour, minute int, tz string) (*Rule, error) {
	return newRule(KindQuarterlyLastDay, hour, minute, tz)
}

// NewYearlyFirstDay fires on January 1 each year.
func NewYearlyFirstDay(hour, minute int, tz string) (*Rule, error) {
	return newRule(KindYearlyFirstDay, hour, minute, tz)
}

func validateNth(rule string, n, max int) error {
	if n == -1 || (n >= 1 && n <= max) {
		return nil
	}
	return configErr(rule, "n", "%d not -1 or 1-%d", n, max)
}

// NewMonthlyWeekdayOccurrence fires on the n-th occurrence of a weekday each
// month; n == -1 selects the last occurrence. Months without an n-th
// occurrence are skipped.
func NewMonthlyWeekdayOccurrence(weekday Weekday, n, hour, minute int, tz string) (*Rule, error) {
	if weekday < Monday || weekday > Sunday {
		return nil, configErr(KindMonthlyWeekdayOccurrence.String(), "weekday", "%d not in 0-6", int(weekday))
	}
	if err := validateNth(KindMonthlyWeekdayOccurrence.String(), n, 5); err != nil {
		return nil, err
	}
	r, err := newRule(KindMonthlyWeekdayOccurrence, hour, minute, tz)
	if err != nil {
		return nil, err
	}
	r.weekday, r.n = weekday, n
	return r, nil
}

// NewYearlyWeekdayOccurrence fires on the n-th occurrence of a weekday
// within a fixed month each year; n == -1 selects the last occurrence.
func NewYearlyWeekdayOccurrence(month time.Month, weekday Weekday, n, hour, minute int, tz string) (*Rule, error) {
	if month < time.January || month > time.December {
		return nil, configErr(KindYearlyWeekdayOccurrence.String(), "month", "%d not in 1-12", int(month))
	}
	if weekday < Monday || weekday > Sunday {
		return nil, configErr(KindYearlyWeekdayOccurrence.String(), "weekday", "%d not in 0-6", int(weekday))
	}
	if err := validateNth(KindYearlyWeekdayOccurrence.String(), n, 5); err != nil {
		return nil, err
	}
	r, err := newRule(KindYearlyWeekdayOccurrence, hour, minute, tz)
	if err != nil {
		return nil, err
	}
	r.month, r.weekday, r.n = month, weekday, n
	return r, nil
}

// NewWeeklyOnDay fires on a fixed weekday every week.
func NewWeeklyOnDay(weekday Weekday, hour, minute int, tz string) (*Rule, error) {
	if weekday < Monday || weekday > Sunday {
		return nil, configErr(KindWeeklyOnDay.String(), "weekday", "%d not in 0-6", int(weekday))
	}
	r, err := newRule(KindWeeklyOnDay, hour, minute, tz)
	if err != nil {
		return nil, err
	}
	r.weekday = weekday
	return r, nil
}

// NewBiweeklyOnDay fires on a fixed weekday every second week. The anchor
// date (ISO, 2006-01-02) pins which alternate week fires; it is required so
// the phase stays reproducible across restarts. An anchor that is not on the
// target weekday is advanced to the first such weekday on or after it.
func NewBiweeklyOnDay(weekday Weekday, anchorDate string, hour, minute int, tz string) (*Rule, error) {
	if weekday < Monday || weekday > Sunday {
		return nil, configErr(KindBiweeklyOnDay.String(), "weekday", "%d not in 0-6", int(weekday))
	}
	r, err := newRule(KindBiweeklyOnDay, hour, minute, tz)
	if err != nil {
		return nil, err
	}
	anchor, err := parseAnchorDate(KindBiweeklyOnDay.String(), anchorDate)
	if err != nil {
		return nil, err
	}
	anchor.Hour, anchor.Minute = hour, minute
	shift := (int(weekday) - int(weekdayOf(anchor.Year, anchor.Month, anchor.Day)) + 7) % 7
	r.weekday = weekday
	r.anchor = addDays(anchor, shift)
	return r, nil
}

// NewSemiMonthly fires on the 15th and the last day of each month.
func NewSemiMonthly(hour, minute int, tz string) (*Rule, error) {
	return newRule(KindSemiMonthly, hour, minute, tz)
}

// NewEveryNDays fires every intervalDays calendar days from the anchor date
// (ISO, 2006-01-02). The stride counts wall-clock days in the rule's zone, so
// the firing keeps its local time of day across DST transitions.
func NewEveryNDays(intervalDays int, anchorDate string, hour, minute int, tz string) (*Rule, error) {
	if intervalDays < 1 {
		return nil, configErr(KindEveryNDays.String(), "interval_days", "%d not positive", intervalDays)
	}
	r, err := newRule(KindEveryNDays, hour, minute, tz)
	if err != nil {
		return nil, err
	}
	anchor, err := parseAnchorDate(KindEveryNDays.String(), anchorDate)
	if err != nil {
		return nil, err
	}
	anchor.Hour, anchor.Minute = hour, minute
	r.anchor = anchor
	r.intervalDays = intervalDays
	return r, nil
}

// NewBusinessDayOfMonth fires on the n-th business day (Monday-Friday, no
// holiday calendar) of each month; n == -1 selects the last business day.
func NewBusinessDayOfMonth(n, hour, minute int, tz string) (*Rule, error) {
	// A month has at most 23 business days.
	if err := validateNth(KindBusinessDayOfMonth.String(), n, 23); err != nil {
		return nil, err
	}
	r, err := newRule(KindBusinessDayOfMonth, hour, minute, tz)
	if err != nil {
		return nil, err
	}
	r.n = n
	return r, nil
}

// NewMonthlyLastDayExceptWeekend fires on the last day of each month, moved
// back to the preceding Friday when it falls on a weekend.
func NewMonthlyLastDayExceptWeekend(hour, minute int, tz string) (*Rule, error) {
	return newRule(KindMonthlyLastDayExceptWeekend, hour, minute, tz)
}

// NewEveryNInterval fires at a fixed stride from an anchor instant. Exactly
// one of hours or minutes must be positive. The stride operates on absolute
// instants, so occurrences stay evenly spaced across DST shifts; the zone
// only affects how occurrences are displayed.
func NewEveryNInterval(hours, minutes int, anchor time.Time, tz string) (*Rule, error) {
	name := KindEveryNInterval.String()
	switch {
	case hours > 0 && minutes > 0:
		return nil, configErr(name, "interval", "interval_hours and interval_minutes are mutually exclusive")
	case hours < 0:
		return nil, configErr(name, "interval_hours", "%d not positive", hours)
	case minutes < 0:
		return nil, configErr(name, "interval_minutes", "%d not positive", minutes)
	case hours == 0 && minutes == 0:
		return nil, configErr(name, "interval", "one of interval_hours or interval_minutes is required")
	}
	if anchor.IsZero() {
		return nil, configErr(name, "anchor", "anchor instant is required")
	}
	loc, tz, err := loadLocation(name, tz)
	if err != nil {
		return nil, err
	}
	every := time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute
	return &Rule{
		kind:          KindEveryNInterval,
		tz:            tz,
		loc:           loc,
		anchorInstant: anchor.Truncate(time.Minute),
		every:         every,
	}, nil
}

// NewCronExpression fires per a standard 5-field cron expression evaluated
// in the given zone. The expression is parsed and validated here; the parsed
// field set is cached for the rule's lifetime.
func NewCronExpression(expr, tz string) (*Rule, error) {
	cron, err := parseCron(expr)
	if err != nil {
		return nil, err
	}
	loc, tz, err := loadLocation(KindCronExpression.String(), tz)
	if err != nil {
		return nil, err
	}
	return &Rule{kind: KindCronExpression, tz: tz, loc: loc, cron: cron}, nil
}

// ComputeNext returns the first occurrence strictly after the reference
// instant. ErrNoMatch means the bounded search window was exhausted.
func (r *Rule) ComputeNext(after time.Time) (time.Time, error) {
	switch r.kind {
	case KindWeeklyOnDay:
		return r.nextWeekly(after, 7, LocalDateTime{})
	case KindBiweeklyOnDay:
		return r.nextWeekly(after, 14, r.anchor)
	case KindEveryNDays:
		return r.nextEveryNDays(after)
	case KindEveryNInterval:
		return r.nextEveryNInterval(after), nil
	case KindCronExpression:
		return r.cron.next(after, r.loc)
	default:
		return r.nextMonthScan(after)
	}
}

// ComputePrevious returns the last occurrence strictly before the reference
// instant. ErrNoMatch means the bounded search window was exhausted.
func (r *Rule) ComputePrevious(before time.Time) (time.Time, error) {
	switch r.kind {
	case KindWeeklyOnDay:
		return r.prevWeekly(before, 7, LocalDateTime{})
	case KindBiweeklyOnDay:
		return r.prevWeekly(before, 14, r.anchor)
	case KindEveryNDays:
		return r.prevEveryNDays(before)
	case KindEveryNInterval:
		return r.prevEveryNInterval(before), nil
	case KindCronExpression:
		return r.cron.prev(before, r.loc)
	default:
		return r.prevMonthScan(before)
	}
}

// daysInMonth returns the matching day numbers of the month for the
// month-based variants, ascending. An empty result means the month is
// skipped, which is a normal search advancement, never an error.
func (r *Rule) daysInMonth(year int, month time.Month) []int {
	switch r.kind {
	case KindMonthlyLastDay:
		return []int{LastDayOfMonth(year, month)}
	case KindMonthlyOnDay:
		if r.day <= LastDayOfMonth(year, month) {
			return []int{r.day}
		}
		return nil
	case KindMonthlyMultipleDays:
		last := LastDayOfMonth(year, month)
		var days []int
		for _, d := range r.days {
			if d <= last {
				days = append(days, d)
			}
		}
		return days
	case KindQuarterlyFirstDay:
		if month == quarterFirstMonth(month) {
			return []int{1}
		}
		return nil
	case KindQuarterlyLastDay:
		if month == quarterFirstMonth(month)+2 {
			return []int{LastDayOfMonth(year, month)}
		}
		return nil
	case KindYearlyFirstDay:
		if month == time.January {
			return []int{1}
		}
		return nil
	case KindMonthlyWeekdayOccurrence:
		if day, ok := NthWeekdayOfMonth(year, month, r.weekday, r.n); ok {
			return []int{day}
		}
		return nil
	case KindYearlyWeekdayOccurrence:
		if month != r.month {
			return nil
		}
		if day, ok := NthWeekdayOfMonth(year, month, r.weekday, r.n); ok {
			return []int{day}
		}
		return nil
	case KindSemiMonthly:
		return []int{15, LastDayOfMonth(year, month)}
	case KindBusinessDayOfMonth:
		if day, ok := NthBusinessDayOfMonth(year, month, r.n); ok {
			return []int{day}
		}
		return nil
	case KindMonthlyLastDayExceptWeekend:
		day := LastDayOfMonth(year, month)
		for !IsBusinessDay(weekdayOf(year, month, day)) {
			day--
		}
		return []int{day}
	default:
		return nil
	}
}

func (r *Rule) nextMonthScan(after time.Time) (time.Time, error) {
	lt := after.In(r.loc)
	year, month := lt.Year(), lt.Month()
	for i := 0; i < maxMonthScan; i++ {
		for _, day := range r.daysInMonth(year, month) {
			l := LocalDateTime{Year: year, Month: month, Day: day, Hour: r.hour, Minute: r.minute}
			if inst := ToInstant(l, r.loc); inst.After(after) {
				return inst, nil
			}
		}
		month++
		if month > time.December {
			month = time.January
			year++
		}
	}
	return time.Time{}, ErrNoMatch
}

func (r *Rule) prevMonthScan(before time.Time) (time.Time, error) {
	lt := before.In(r.loc)
	year, month := lt.Year(), lt.Month()
	for i := 0; i < maxMonthScan; i++ {
		days := r.daysInMonth(year, month)
		for j := len(days) - 1; j >= 0; j-- {
			l := LocalDateTime{Year: year, Month: month, Day: days[j], Hour: r.hour, Minute: r.minute}
			if inst := ToInstant(l, r.loc); inst.Before(before) {
				return inst, nil
			}
		}
		month--
		if month < time.January {
			month = time.December
			year--
		}
	}
	return time.Time{}, ErrNoMatch
}

// nextWeekly covers the weekly and biweekly variants: stride is 7 or 14
// days, and a 14-day stride aligns its phase to the anchor.
func (r *Rule) nextWeekly(after time.Time, stride int, anchor LocalDateTime) (time.Time, error) {
	lt := after.In(r.loc)
	cand := LocalDateTime{Year: lt.Year(), Month: lt.Month(), Day: lt.Day(), Hour: r.hour, Minute: r.minute}
	shift := (int(r.weekday) - int(weekdayOf(cand.Year, cand.Month, cand.Day)) + 7) % 7
	cand = addDays(cand, shift)
	if stride == 14 && daysBetween(anchor, cand)%14 != 0 {
		cand = addDays(cand, 7)
	}
	for i := 0; i < 3; i++ {
		if inst := ToInstant(cand, r.loc); inst.After(after) {
			return inst, nil
		}
		cand = addDays(cand, stride)
	}
	return time.Time{}, ErrNoMatch
}

func (r *Rule) prevWeekly(before time.Time, stride int, anchor LocalDateTime) (time.Time, error) {
	lt := before.In(r.loc)
	cand := LocalDateTime{Year: lt.Year(), Month: lt.Month(), Day: lt.Day(), Hour: r.hour, Minute: r.minute}
	shift := (int(weekdayOf(cand.Year, cand.Month, cand.Day)) - int(r.weekday) + 7) % 7
	cand = addDays(cand, -shift)
	if stride == 14 && daysBetween(anchor, cand)%14 != 0 {
		cand = addDays(cand, -7)
	}
	for i := 0; i < 3; i++ {
		if inst := ToInstant(cand, r.loc); inst.Before(before) {
			return inst, nil
		}
		cand = addDays(cand, -stride)
	}
	return time.Time{}, ErrNoMatch
}

func (r *Rule) nextEveryNDays(after time.Time) (time.Time, error) {
	lt := after.In(r.loc)
	cur := LocalDateTime{Year: lt.Year(), Month: lt.Month(), Day: lt.Day(), Hour: r.hour, Minute: r.minute}
	cand := addDays(r.anchor, floorDiv(daysBetween(r.anchor, cur), r.intervalDays)*r.intervalDays)
	for i := 0; i < 3; i++ {
		if inst := ToInstant(cand, r.loc); inst.After(after) {
			return inst, nil
		}
		cand = addDays(cand, r.intervalDays)
	}
	return time.Time{}, ErrNoMatch
}

func (r *Rule) prevEveryNDays(before time.Time) (time.Time, error) {
	lt := before.In(r.loc)
	cur := LocalDateTime{Year: lt.Year(), Month: lt.Month(), Day: lt.Day(), Hour: r.hour, Minute: r.minute}
	// Start one stride past the reference day and walk back.
	cand := addDays(r.anchor, (floorDiv(daysBetween(r.anchor, cur), r.intervalDays)+1)*r.intervalDays)
	for i := 0; i < 3; i++ {
		if inst := ToInstant(cand, r.loc); inst.Before(before) {
			return inst, nil
		}
		cand = addDays(cand, -r.intervalDays)
	}
	return time.Time{}, ErrNoMatch
}

func (r *Rule) nextEveryNInterval(after time.Time) time.Time {
	k := floorDurDiv(after.Sub(r.anchorInstant), r.every)
	cand := r.anchorInstant.Add(time.Duration(k) * r.every)
	for !cand.After(after) {
		cand = cand.Add(r.every)
	}
	return cand
}

func (r *Rule) prevEveryNInterval(before time.Time) time.Time {
	k := floorDurDiv(before.Sub(r.anchorInstant), r.every) + 1
	cand := r.anchorInstant.Add(time.Duration(k) * r.every)
	for !cand.Before(before) {
		cand = cand.Add(-r.every)
	}
	return cand
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func floorDurDiv(a, b time.Duration) int64 {
	q := a / b
	if a%b != 0 && a < 0 {
		q--
	}
	return int64(q)
}

func ordinal(n int) string {
	if n == -1 {
		return "last"
	}
	switch n {
	case 1:
		return "1st"
	case 2:
		return "2nd"
	case 3:
		return "3rd"
	default:
		return fmt.Sprintf("%dth", n)
	}
}

func (r *Rule) clock() string {
	return fmt.Sprintf("%02d:%02d", r.hour, r.minute)
}

// Description returns a human-readable summary of the rule.
func (r *Rule) Description() string {
	switch r.kind {
	case KindMonthlyLastDay:
		return fmt.Sprintf("last day of each month at %s %s", r.clock(), r.tz)
	case KindMonthlyOnDay:
		return fmt.Sprintf("day %d of each month at %s %s", r.day, r.clock(), r.tz)
	case KindMonthlyMultipleDays:
		parts := make([]string, len(r.days))
		for i, d := range r.days {
			parts[i] = fmt.Sprintf("%d", d)
		}
		return fmt.Sprintf("days %s of each month at %s %s", strings.Join(parts, ", "), r.clock(), r.tz)
	case KindQuarterlyFirstDay:
		return fmt.Sprintf("first day of each quarter at %s %s", r.clock(), r.tz)
	case KindQuarterlyLastDay:
		return fmt.Sprintf("last day of each quarter at %s %s", r.clock(), r.tz)
	case KindYearlyFirstDay:
		return fmt.Sprintf("January 1 each year at %s %s", r.clock(), r.tz)
	case KindMonthlyWeekdayOccurrence:
		return fmt.Sprintf("%s %s of each month at %s %s", ordinal(r.n), r.weekday, r.clock(), r.tz)
	case KindYearlyWeekdayOccurrence:
		return fmt.Sprintf("%s %s of %s each year at %s %s", ordinal(r.n), r.weekday, r.month, r.clock(), r.tz)
	case KindWeeklyOnDay:
		return fmt.Sprintf("every %s at %s %s", r.weekday, r.clock(), r.tz)
	case KindBiweeklyOnDay:
		return fmt.Sprintf("every other %s from %04d-%02d-%02d at %s %s",
			r.weekday, r.anchor.Year, r.anchor.Month, r.anchor.Day, r.clock(), r.tz)
	case KindSemiMonthly:
		return fmt.Sprintf("the 15th and last day of each month at %s %s", r.clock(), r.tz)
	case KindEveryNDays:
		return fmt.Sprintf("every %d days from %04d-%02d-%02d at %s %s",
			r.intervalDays, r.anchor.Year, r.anchor.Month, r.anchor.Day, r.clock(), r.tz)
	case KindBusinessDayOfMonth:
		return fmt.Sprintf("%s business day of each month at %s %s", ordinal(r.n), r.clock(), r.tz)
	case KindMonthlyLastDayExceptWeekend:
		return fmt.Sprintf("last day of each month, weekends rolled back to Friday, at %s %s", r.clock(), r.tz)
	case KindEveryNInterval:
		return fmt.Sprintf("every %s from %s", r.every, r.anchorInstant.Format(time.RFC3339))
	case KindCronExpression:
		return fmt.Sprintf("cron %q in %s", r.cron.expr, r.tz)
	default:
		return r.kind.String()
	}
}
