package timetable

import (
	"errors"
	"testing"
	"time"
)

func TestConstructorValidation(t *testing.T) {
	t.Parallel()

	anchor := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name  string
		build func() (*Rule, error)
	}{
		{"day zero", func() (*Rule, error) { return NewMonthlyOnDay(0, 9, 0, "UTC") }},
		{"day 32", func() (*Rule, error) { return NewMonthlyOnDay(32, 9, 0, "UTC") }},
		{"hour 24", func() (*Rule, error) { return NewMonthlyOnDay(5, 24, 0, "UTC") }},
		{"minute 60", func() (*Rule, error) { return NewMonthlyOnDay(5, 9, 60, "UTC") }},
		{"bad zone", func() (*Rule, error) { return NewMonthlyOnDay(5, 9, 0, "Mars/Olympus") }},
		{"empty day set", func() (*Rule, error) { return NewMonthlyMultipleDays(nil, 9, 0, "UTC") }},
		{"day set out of range", func() (*Rule, error) { return NewMonthlyMultipleDays([]int{1, 40}, 9, 0, "UTC") }},
		{"weekday 7", func() (*Rule, error) { return NewWeeklyOnDay(Weekday(7), 9, 0, "UTC") }},
		{"nth zero", func() (*Rule, error) { return NewMonthlyWeekdayOccurrence(Monday, 0, 9, 0, "UTC") }},
		{"nth six", func() (*Rule, error) { return NewMonthlyWeekdayOccurrence(Monday, 6, 9, 0, "UTC") }},
		{"month 13", func() (*Rule, error) { return NewYearlyWeekdayOccurrence(time.Month(13), Monday, 1, 9, 0, "UTC") }},
		{"bad anchor date", func() (*Rule, error) { return NewBiweeklyOnDay(Monday, "01/02/2024", 9, 0, "UTC") }},
		{"zero stride", func() (*Rule, error) { return NewEveryNDays(0, "2024-01-01", 9, 0, "UTC") }},
		{"business nth zero", func() (*Rule, error) { return NewBusinessDayOfMonth(0, 9, 0, "UTC") }},
		{"business nth 24", func() (*Rule, error) { return NewBusinessDayOfMonth(24, 9, 0, "UTC") }},
		{"both interval units", func() (*Rule, error) { return NewEveryNInterval(1, 30, anchor, "UTC") }},
		{"no interval units", func() (*Rule, error) { return NewEveryNInterval(0, 0, anchor, "UTC") }},
		{"negative interval", func() (*Rule, error) { return NewEveryNInterval(-1, 0, anchor, "UTC") }},
		{"zero anchor instant", func() (*Rule, error) { return NewEveryNInterval(0, 45, time.Time{}, "UTC") }},
		{"cron too few fields", func() (*Rule, error) { return NewCronExpression("* * *", "UTC") }},
		{"cron bad field", func() (*Rule, error) { return NewCronExpression("61 * * * *", "UTC") }},
	}
	for _, c := range cases {
		_, err := c.build()
		var cfgErr *ConfigurationError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("%s: expected ConfigurationError, got %v", c.name, err)
		}
	}
}

func TestDefaultTimeZoneApplied(t *testing.T) {
	t.Parallel()

	r, err := NewWeeklyOnDay(Monday, 9, 0, "")
	if err != nil {
		t.Fatalf("NewWeeklyOnDay: %v", err)
	}
	if r.TimeZone() != DefaultTimeZone {
		t.Fatalf("expected %q, got %q", DefaultTimeZone, r.TimeZone())
	}
}

func TestMonthlyLastDay(t *testing.T) {
	t.Parallel()

	r, err := NewMonthlyLastDay(9, 0, "UTC")
	if err != nil {
		t.Fatalf("NewMonthlyLastDay: %v", err)
	}
	got, err := r.ComputeNext(time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ComputeNext: %v", err)
	}
	if want := time.Date(2024, time.February, 29, 9, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestMonthlyOnDay31SkipsShortMonths(t *testing.T) {
	t.Parallel()

	r, err := NewMonthlyOnDay(31, 9, 0, "UTC")
	if err != nil {
		t.Fatalf("NewMonthlyOnDay: %v", err)
	}
	jan31 := time.Date(2024, time.January, 31, 9, 0, 0, 0, time.UTC)
	got, err := r.ComputeNext(jan31)
	if err != nil {
		t.Fatalf("ComputeNext: %v", err)
	}
	// February and its 29 days are skipped entirely.
	if want := time.Date(2024, time.March, 31, 9, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}

	prev, err := r.ComputePrevious(got)
	if err != nil {
		t.Fatalf("ComputePrevious: %v", err)
	}
	if !prev.Equal(jan31) {
		t.Fatalf("expected %s, got %s", jan31, prev)
	}
}

func TestMonthlyMultipleDaysSkipsMissingDays(t *testing.T) {
	t.Parallel()

	r, err := NewMonthlyMultipleDays([]int{10, 31, 20}, 9, 0, "UTC")
	if err != nil {
		t.Fatalf("NewMonthlyMultipleDays: %v", err)
	}
	got, err := r.ComputeNext(time.Date(2024, time.February, 20, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ComputeNext: %v", err)
	}
	// February has no 31st, so the next match is March 10.
	if want := time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestQuarterlyRules(t *testing.T) {
	t.Parallel()

	first, err := NewQuarterlyFirstDay(0, 0, "UTC")
	if err != nil {
		t.Fatalf("NewQuarterlyFirstDay: %v", err)
	}
	got, err := first.ComputeNext(time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ComputeNext: %v", err)
	}
	if want := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}

	last, err := NewQuarterlyLastDay(0, 0, "UTC")
	if err != nil {
		t.Fatalf("NewQuarterlyLastDay: %v", err)
	}
	got, err = last.ComputeNext(time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ComputeNext: %v", err)
	}
	if want := time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestYearlyFirstDay(t *testing.T) {
	t.Parallel()

	r, err := NewYearlyFirstDay(6, 30, "UTC")
	if err != nil {
		t.Fatalf("NewYearlyFirstDay: %v", err)
	}
	got, err := r.ComputeNext(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ComputeNext: %v", err)
	}
	if want := time.Date(2025, time.January, 1, 6, 30, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestMonthlyWeekdayOccurrenceSecondMonday(t *testing.T) {
	t.Parallel()

	// January 2024 has Mondays on 1, 8, 15, 22, 29; the 2nd is the 8th.
	r, err := NewMonthlyWeekdayOccurrence(Monday, 2, 9, 0, "UTC")
	if err != nil {
		t.Fatalf("NewMonthlyWeekdayOccurrence: %v", err)
	}
	got, err := r.ComputeNext(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ComputeNext: %v", err)
	}
	if want := time.Date(2024, time.January, 8, 9, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestMonthlyWeekdayOccurrenceFifthSkipsShortMonths(t *testing.T) {
	t.Parallel()

	// January 2024 has a 5th Monday (the 29th); February does not, so the
	// search lands on April 29 (April's 5th Monday).
	r, err := NewMonthlyWeekdayOccurrence(Monday, 5, 9, 0, "UTC")
	if err != nil {
		t.Fatalf("NewMonthlyWeekdayOccurrence: %v", err)
	}
	got, err := r.ComputeNext(time.Date(2024, time.January, 29, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ComputeNext: %v", err)
	}
	if want := time.Date(2024, time.April, 29, 9, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestYearlyWeekdayOccurrence(t *testing.T) {
	t.Parallel()

	// 4th Thursday of November 2024 is the 28th.
	r, err := NewYearlyWeekdayOccurrence(time.November, Thursday, 4, 12, 0, "UTC")
	if err != nil {
		t.Fatalf("NewYearlyWeekdayOccurrence: %v", err)
	}
	got, err := r.ComputeNext(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ComputeNext: %v", err)
	}
	if want := time.Date(2024, time.November, 28, 12, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestWeeklyOnDay(t *testing.T) {
	t.Parallel()

	r, err := NewWeeklyOnDay(Monday, 8, 0, "UTC")
	if err != nil {
		t.Fatalf("NewWeeklyOnDay: %v", err)
	}
	// 2024-01-03 is a Wednesday.
	got, err := r.ComputeNext(time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ComputeNext: %v", err)
	}
	if want := time.Date(2024, time.January, 8, 8, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}

	// Same weekday, earlier in the day: fires later today.
	got, err = r.ComputeNext(time.Date(2024, time.January, 8, 7, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ComputeNext: %v", err)
	}
	if want := time.Date(2024, time.January, 8, 8, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestBiweeklyOnDayPhase(t *testing.T) {
	t.Parallel()

	// Anchored at Monday 2024-01-01: occurrences on Jan 1, 15, 29, Feb 12.
	r, err := NewBiweeklyOnDay(Monday, "2024-01-01", 9, 0, "UTC")
	if err != nil {
		t.Fatalf("NewBiweeklyOnDay: %v", err)
	}
	got, err := r.ComputeNext(time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ComputeNext: %v", err)
	}
	if want := time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}

	got, err = r.ComputeNext(got)
	if err != nil {
		t.Fatalf("ComputeNext: %v", err)
	}
	if want := time.Date(2024, time.January, 29, 9, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}

	prev, err := r.ComputePrevious(time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ComputePrevious: %v", err)
	}
	if want := time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC); !prev.Equal(want) {
		t.Fatalf("expected %s, got %s", want, prev)
	}
}

func TestBiweeklyAnchorSnapsToWeekday(t *testing.T) {
	t.Parallel()

	// 2024-01-03 is a Wednesday; the Monday anchor snaps forward to Jan 8,
	// so occurrences run Jan 8, 22, Feb 5.
	r, err := NewBiweeklyOnDay(Monday, "2024-01-03", 9, 0, "UTC")
	if err != nil {
		t.Fatalf("NewBiweeklyOnDay: %v", err)
	}
	got, err := r.ComputeNext(time.Date(2024, time.January, 9, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ComputeNext: %v", err)
	}
	if want := time.Date(2024, time.January, 22, 9, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestSemiMonthly(t *testing.T) {
	t.Parallel()

	r, err := NewSemiMonthly(9, 0, "UTC")
	if err != nil {
		t.Fatalf("NewSemiMonthly: %v", err)
	}
	got, err := r.ComputeNext(time.Date(2023, time.February, 15, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ComputeNext: %v", err)
	}
	if want := time.Date(2023, time.February, 28, 9, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
	got, err = r.ComputeNext(got)
	if err != nil {
		t.Fatalf("ComputeNext: %v", err)
	}
	if want := time.Date(2023, time.March, 15, 9, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestEveryNDaysStride(t *testing.T) {
	t.Parallel()

	r, err := NewEveryNDays(3, "2024-01-01", 6, 0, "UTC")
	if err != nil {
		t.Fatalf("NewEveryNDays: %v", err)
	}
	got, err := r.ComputeNext(time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ComputeNext: %v", err)
	}
	if want := time.Date(2024, time.January, 4, 6, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}

	// Before the anchor the phase still derives from it.
	got, err = r.ComputeNext(time.Date(2023, time.December, 25, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ComputeNext: %v", err)
	}
	if want := time.Date(2023, time.December, 26, 6, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestEveryNDaysKeepsLocalTimeAcrossDST(t *testing.T) {
	t.Parallel()

	// The stride counts wall-clock days: the 09:00 firing stays 09:00 local
	// across the New York spring-forward on 2024-03-10.
	ny := mustLoadLocation(t, "America/New_York")
	r, err := NewEveryNDays(3, "2024-03-07", 9, 0, "America/New_York")
	if err != nil {
		t.Fatalf("NewEveryNDays: %v", err)
	}
	before := time.Date(2024, time.March, 7, 9, 0, 0, 0, ny)
	got, err := r.ComputeNext(before)
	if err != nil {
		t.Fatalf("ComputeNext: %v", err)
	}
	want := time.Date(2024, time.March, 10, 9, 0, 0, 0, ny)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got.In(ny))
	}
	// One wall-clock hour evaporated in the gap.
	if d := got.Sub(before); d != 71*time.Hour {
		t.Fatalf("expected 71h between firings, got %s", d)
	}
}

func TestBusinessDayOfMonth(t *testing.T) {
	t.Parallel()

	// May 2025 ends on a Saturday; the last business day is Friday the 30th.
	last, err := NewBusinessDayOfMonth(-1, 17, 0, "UTC")
	if err != nil {
		t.Fatalf("NewBusinessDayOfMonth: %v", err)
	}
	got, err := last.ComputeNext(time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ComputeNext: %v", err)
	}
	if want := time.Date(2025, time.May, 30, 17, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}

	third, err := NewBusinessDayOfMonth(3, 9, 0, "UTC")
	if err != nil {
		t.Fatalf("NewBusinessDayOfMonth: %v", err)
	}
	// June 2024 starts on a Saturday; business days run 3, 4, 5, ...
	got, err = third.ComputeNext(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ComputeNext: %v", err)
	}
	if want := time.Date(2024, time.June, 5, 9, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestMonthlyLastDayExceptWeekend(t *testing.T) {
	t.Parallel()

	// August 2025 ends on a Sunday; the firing rolls back to Friday the 29th.
	r, err := NewMonthlyLastDayExceptWeekend(9, 0, "UTC")
	if err != nil {
		t.Fatalf("NewMonthlyLastDayExceptWeekend: %v", err)
	}
	got, err := r.ComputeNext(time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ComputeNext: %v", err)
	}
	if want := time.Date(2025, time.August, 29, 9, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}

	// September 2025 ends on a Tuesday; no adjustment.
	got, err = r.ComputeNext(got)
	if err != nil {
		t.Fatalf("ComputeNext: %v", err)
	}
	if want := time.Date(2025, time.September, 30, 9, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestEveryNIntervalExactSpacingAcrossDST(t *testing.T) {
	t.Parallel()

	// The stride operates on absolute instants: occurrences stay exactly
	// 45 minutes apart through the New York spring-forward.
	anchor := time.Date(2024, time.March, 10, 5, 30, 0, 0, time.UTC)
	r, err := NewEveryNInterval(0, 45, anchor, "America/New_York")
	if err != nil {
		t.Fatalf("NewEveryNInterval: %v", err)
	}
	ref := anchor
	for i := 0; i < 10; i++ {
		next, err := r.ComputeNext(ref)
		if err != nil {
			t.Fatalf("ComputeNext: %v", err)
		}
		if d := next.Sub(ref); d != 45*time.Minute {
			t.Fatalf("step %d: expected 45m spacing, got %s", i, d)
		}
		ref = next
	}
}

func TestEveryNIntervalBeforeAnchor(t *testing.T) {
	t.Parallel()

	anchor := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	r, err := NewEveryNInterval(2, 0, anchor, "UTC")
	if err != nil {
		t.Fatalf("NewEveryNInterval: %v", err)
	}
	got, err := r.ComputeNext(anchor.Add(-3 * time.Hour))
	if err != nil {
		t.Fatalf("ComputeNext: %v", err)
	}
	if want := anchor.Add(-2 * time.Hour); !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestComputeNextStrictAndMonotonic(t *testing.T) {
	t.Parallel()

	anchor := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	rules := map[string]func() (*Rule, error){
		"MonthlyLastDay":     func() (*Rule, error) { return NewMonthlyLastDay(9, 0, "UTC") },
		"SemiMonthly":        func() (*Rule, error) { return NewSemiMonthly(9, 0, "UTC") },
		"WeeklyOnDay":        func() (*Rule, error) { return NewWeeklyOnDay(Thursday, 9, 0, "America/New_York") },
		"BiweeklyOnDay":      func() (*Rule, error) { return NewBiweeklyOnDay(Friday, "2024-01-05", 9, 0, "UTC") },
		"EveryNDays":         func() (*Rule, error) { return NewEveryNDays(5, "2024-01-01", 9, 0, "America/New_York") },
		"EveryNInterval":     func() (*Rule, error) { return NewEveryNInterval(0, 45, anchor, "UTC") },
		"BusinessDayOfMonth": func() (*Rule, error) { return NewBusinessDayOfMonth(-1, 9, 0, "UTC") },
		"CronExpression":     func() (*Rule, error) { return NewCronExpression("30 6 * * 1-5", "America/New_York") },
	}
	for name, build := range rules {
		r, err := build()
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		ref := time.Date(2024, time.February, 14, 3, 17, 0, 0, time.UTC)
		for i := 0; i < 30; i++ {
			next, err := r.ComputeNext(ref)
			if err != nil {
				t.Fatalf("%s: ComputeNext: %v", name, err)
			}
			if !next.After(ref) {
				t.Fatalf("%s: step %d not strictly increasing: %s then %s", name, i, ref, next)
			}
			ref = next
		}
	}
}

func TestRoundTripAdjacency(t *testing.T) {
	t.Parallel()

	// For an instant that is itself an occurrence, previous-of-next and
	// next-of-previous both come back to it without skipping.
	cases := []struct {
		name  string
		build func() (*Rule, error)
		occ   time.Time
	}{
		{
			"MonthlyOnDay",
			func() (*Rule, error) { return NewMonthlyOnDay(15, 9, 0, "UTC") },
			time.Date(2024, time.May, 15, 9, 0, 0, 0, time.UTC),
		},
		{
			"WeeklyOnDay",
			func() (*Rule, error) { return NewWeeklyOnDay(Monday, 8, 0, "UTC") },
			time.Date(2024, time.January, 8, 8, 0, 0, 0, time.UTC),
		},
		{
			"EveryNDays",
			func() (*Rule, error) { return NewEveryNDays(3, "2024-01-01", 6, 0, "UTC") },
			time.Date(2024, time.January, 7, 6, 0, 0, 0, time.UTC),
		},
		{
			"CronExpression",
			func() (*Rule, error) { return NewCronExpression("0 9 15 * *", "UTC") },
			time.Date(2024, time.April, 15, 9, 0, 0, 0, time.UTC),
		},
		{
			"EveryNInterval",
			func() (*Rule, error) {
				return NewEveryNInterval(0, 45, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), "UTC")
			},
			time.Date(2024, time.January, 1, 1, 30, 0, 0, time.UTC),
		},
	}
	for _, c := range cases {
		r, err := c.build()
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		next, err := r.ComputeNext(c.occ)
		if err != nil {
			t.Fatalf("%s: ComputeNext: %v", c.name, err)
		}
		if !next.After(c.occ) {
			t.Fatalf("%s: next not strictly after occurrence", c.name)
		}
		back, err := r.ComputePrevious(next)
		if err != nil {
			t.Fatalf("%s: ComputePrevious: %v", c.name, err)
		}
		if !back.Equal(c.occ) {
			t.Fatalf("%s: previous(next(t)) skipped: expected %s, got %s", c.name, c.occ, back)
		}

		prev, err := r.ComputePrevious(c.occ)
		if err != nil {
			t.Fatalf("%s: ComputePrevious: %v", c.name, err)
		}
		if !prev.Before(c.occ) {
			t.Fatalf("%s: previous not strictly before occurrence", c.name)
		}
		forward, err := r.ComputeNext(prev)
		if err != nil {
			t.Fatalf("%s: ComputeNext: %v", c.name, err)
		}
		if !forward.Equal(c.occ) {
			t.Fatalf("%s: next(previous(t)) skipped: expected %s, got %s", c.name, c.occ, forward)
		}
	}
}

func TestRuleDSTGapResolution(t *testing.T) {
	t.Parallel()

	// A weekly 02:30 firing lands in the New York gap on Sunday 2024-03-10
	// and resolves to the instant just after it.
	r, err := NewWeeklyOnDay(Sunday, 2, 30, "America/New_York")
	if err != nil {
		t.Fatalf("NewWeeklyOnDay: %v", err)
	}
	got, err := r.ComputeNext(time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ComputeNext: %v", err)
	}
	if want := time.Date(2024, time.March, 10, 7, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestRuleDSTOverlapResolution(t *testing.T) {
	t.Parallel()

	// A weekly 01:30 firing on Sunday 2024-11-03 is ambiguous and resolves
	// to the earlier instant (EDT).
	r, err := NewWeeklyOnDay(Sunday, 1, 30, "America/New_York")
	if err != nil {
		t.Fatalf("NewWeeklyOnDay: %v", err)
	}
	got, err := r.ComputeNext(time.Date(2024, time.November, 2, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ComputeNext: %v", err)
	}
	if want := time.Date(2024, time.November, 3, 5, 30, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestDescriptions(t *testing.T) {
	t.Parallel()

	r, err := NewMonthlyWeekdayOccurrence(Monday, 2, 9, 0, "UTC")
	if err != nil {
		t.Fatalf("NewMonthlyWeekdayOccurrence: %v", err)
	}
	if got, want := r.Description(), "2nd Monday of each month at 09:00 UTC"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	r, err = NewBusinessDayOfMonth(-1, 17, 30, "UTC")
	if err != nil {
		t.Fatalf("NewBusinessDayOfMonth: %v", err)
	}
	if got, want := r.Description(), "last business day of each month at 17:30 UTC"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
