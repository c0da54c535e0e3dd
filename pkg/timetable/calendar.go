package timetable

import "time"

// Weekday numbers days 0=Monday through 6=Sunday.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [7]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

func (w Weekday) String() string {
	if w < Monday || w > Sunday {
		return "Weekday(?)"
	}
	return weekdayNames[w]
}

// fromGoWeekday converts Go's Sunday=0 numbering to Monday=0.
func fromGoWeekday(w time.Weekday) Weekday {
	return Weekday((int(w) + 6) % 7)
}

// weekdayOf returns the Monday=0 weekday of a calendar date.
func weekdayOf(year int, month time.Month, day int) Weekday {
	return fromGoWeekday(time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Weekday())
}

// LastDayOfMonth returns the number of days in the given month, 28-31,
// following Gregorian leap-year rules.
func LastDayOfMonth(year int, month time.Month) int {
	// Day zero of the following month normalizes to the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// NthWeekdayOfMonth returns the day number of the n-th occurrence of weekday
// in the month. n counts from 1; n == -1 selects the last occurrence. The
// second result is false when the month has no n-th occurrence, which
// callers treat as "no match this month" and advance the search.
func NthWeekdayOfMonth(year int, month time.Month, weekday Weekday, n int) (int, bool) {
	last := LastDayOfMonth(year, month)
	if n == -1 {
		for day := last; day >= 1; day-- {
			if weekdayOf(year, month, day) == weekday {
				return day, true
			}
		}
		return 0, false
	}
	if n < 1 {
		return 0, false
	}
	count := 0
	for day := 1; day <= last; day++ {
		if weekdayOf(year, month, day) == weekday {
			count++
			if count == n {
				return day, true
			}
		}
	}
	return 0, false
}

// IsBusinessDay reports whether the weekday is Monday through Friday. No
// holiday calendar is consulted.
func IsBusinessDay(w Weekday) bool {
	return w >= Monday && w <= Friday
}

// NthBusinessDayOfMonth returns the day number of the n-th business day of
// the month, skipping Saturdays and Sundays. n counts from 1; n == -1 counts
// backward from the end of the month. The second result is false when the
// month has fewer than n business days.
func NthBusinessDayOfMonth(year int, month time.Month, n int) (int, bool) {
	last := LastDayOfMonth(year, month)
	if n == -1 {
		for day := last; day >= 1; day-- {
			if IsBusinessDay(weekdayOf(year, month, day)) {
				return day, true
			}
		}
		return 0, false
	}
	if n < 1 {
		return 0, false
	}
	count := 0
	for day := 1; day <= last; day++ {
		if IsBusinessDay(weekdayOf(year, month, day)) {
			count++
			if count == n {
				return day, true
			}
		}
	}
	return 0, false
}

// QuarterBounds returns the first and last calendar day of a fixed calendar
// quarter (1: Jan-Mar, 2: Apr-Jun, 3: Jul-Sep, 4: Oct-Dec).
func QuarterBounds(year, quarter int) (first, last LocalDateTime) {
	firstMonth := time.Month((quarter-1)*3 + 1)
	lastMonth := firstMonth + 2
	first = LocalDateTime{Year: year, Month: firstMonth, Day: 1}
	last = LocalDateTime{Year: year, Month: lastMonth, Day: LastDayOfMonth(year, lastMonth)}
	return first, last
}

// quarterFirstMonth returns the first month of the quarter containing month.
func quarterFirstMonth(month time.Month) time.Month {
	return time.Month((int(month-1)/3)*3 + 1)
}

// addDays shifts a local date by n calendar days, keeping the time of day.
func addDays(l LocalDateTime, n int) LocalDateTime {
	d := time.Date(l.Year, l.Month, l.Day+n, 0, 0, 0, 0, time.UTC)
	return LocalDateTime{Year: d.Year(), Month: d.Month(), Day: d.Day(), Hour: l.Hour, Minute: l.Minute}
}

// daysBetween returns the number of calendar days from a to b, ignoring the
// time of day. Negative when b is before a.
func daysBetween(a, b LocalDateTime) int {
	ua := time.Date(a.Year, a.Month, a.Day, 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year, b.Month, b.Day, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua) / (24 * time.Hour))
}
