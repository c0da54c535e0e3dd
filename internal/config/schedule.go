package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/patrickspencer/timetable/pkg/timetable"
)

// RuleConfig is the structured recurrence block of a schedule file. Kind
// selects the variant; the remaining fields are read per kind and validated
// by the core constructors.
type RuleConfig struct {
	Kind            string `yaml:"kind" json:"kind"`
	Day             int    `yaml:"day" json:"day,omitempty"`
	Days            []int  `yaml:"days" json:"days,omitempty"`
	Weekday         int    `yaml:"weekday" json:"weekday,omitempty"`
	N               int    `yaml:"n" json:"n,omitempty"`
	Month           int    `yaml:"month" json:"month,omitempty"`
	Hour            int    `yaml:"hour" json:"hour"`
	Minute          int    `yaml:"minute" json:"minute"`
	Anchor          string `yaml:"anchor" json:"anchor,omitempty"`
	AnchorInstant   string `yaml:"anchor_instant" json:"anchor_instant,omitempty"`
	IntervalDays    int    `yaml:"interval_days" json:"interval_days,omitempty"`
	IntervalHours   int    `yaml:"interval_hours" json:"interval_hours,omitempty"`
	IntervalMinutes int    `yaml:"interval_minutes" json:"interval_minutes,omitempty"`
	Expr            string `yaml:"expr" json:"expr,omitempty"`
}

// Schedule is the definition of a single schedule parsed from a YAML file.
// Exactly one of Rule (structured recurrence) or Spec (raw crontab string or
// descriptor like @hourly) must be set.
type Schedule struct {
	Name     string      `yaml:"name" json:"name"`
	TimeZone string      `yaml:"timezone" json:"timezone,omitempty"`
	Catchup  bool        `yaml:"catchup" json:"catchup"`
	Enabled  *bool       `yaml:"enabled" json:"enabled,omitempty"`
	Earliest string      `yaml:"earliest" json:"earliest,omitempty"`
	Latest   string      `yaml:"latest" json:"latest,omitempty"`
	Rule     *RuleConfig `yaml:"rule" json:"rule,omitempty"`
	Spec     string      `yaml:"schedule" json:"schedule,omitempty"`
	FilePath string      `yaml:"-" json:"-"`
}

// IsEnabled returns whether the schedule is enabled. Defaults to true if not set.
func (s *Schedule) IsEnabled() bool {
	if s.Enabled == nil {
		return true
	}
	return *s.Enabled
}

// Validate checks the parts the core constructors do not see.
func (s *Schedule) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("schedule has no name")
	}
	hasRule := s.Rule != nil
	hasSpec := strings.TrimSpace(s.Spec) != ""
	if hasRule == hasSpec {
		return fmt.Errorf("schedule %q: exactly one of rule or schedule is required", s.Name)
	}
	if _, err := s.Restriction(); err != nil {
		return err
	}
	if hasRule {
		_, err := s.BuildRule()
		return err
	}
	return nil
}

// Restriction parses the earliest/latest bounds into the core's form.
func (s *Schedule) Restriction() (timetable.Restriction, error) {
	res := timetable.Restriction{Catchup: s.Catchup}
	if strings.TrimSpace(s.Earliest) != "" {
		t, err := time.Parse(time.RFC3339, s.Earliest)
		if err != nil {
			return res, fmt.Errorf("schedule %q: bad earliest %q: %w", s.Name, s.Earliest, err)
		}
		res.Earliest = &t
	}
	if strings.TrimSpace(s.Latest) != "" {
		t, err := time.Parse(time.RFC3339, s.Latest)
		if err != nil {
			return res, fmt.Errorf("schedule %q: bad latest %q: %w", s.Name, s.Latest, err)
		}
		res.Latest = &t
	}
	return res, nil
}

// BuildRule constructs the core rule for a structured recurrence block.
// Returns an error when the schedule uses a raw spec instead.
func (s *Schedule) BuildRule() (*timetable.Rule, error) {
	if s.Rule == nil {
		return nil, fmt.Errorf("schedule %q has no rule block", s.Name)
	}
	r := s.Rule
	tz := s.TimeZone
	switch strings.ToLower(strings.TrimSpace(r.Kind)) {
	case "monthly_last_day":
		return timetable.NewMonthlyLastDay(r.Hour, r.Minute, tz)
	case "monthly_on_day":
		return timetable.NewMonthlyOnDay(r.Day, r.Hour, r.Minute, tz)
	case "monthly_multiple_days":
		return timetable.NewMonthlyMultipleDays(r.Days, r.Hour, r.Minute, tz)
	case "quarterly_first_day":
		return timetable.NewQuarterlyFirstDay(r.Hour, r.Minute, tz)
	case "quarterly_last_day":
		return timetable.NewQuarterlyLastDay(r.Hour, r.Minute, tz)
	case "yearly_first_day":
		return timetable.NewYearlyFirstDay(r.Hour, r.Minute, tz)
	case "monthly_weekday_occurrence":
		return timetable.NewMonthlyWeekdayOccurrence(timetable.Weekday(r.Weekday), r.N, r.Hour, r.Minute, tz)
	case "yearly_weekday_occurrence":
		return timetable.NewYearlyWeekdayOccurrence(time.Month(r.Month), timetable.Weekday(r.Weekday), r.N, r.Hour, r.Minute, tz)
	case "weekly_on_day":
		return timetable.NewWeeklyOnDay(timetable.Weekday(r.Weekday), r.Hour, r.Minute, tz)
	case "biweekly_on_day":
		return timetable.NewBiweeklyOnDay(timetable.Weekday(r.Weekday), r.Anchor, r.Hour, r.Minute, tz)
	case "semi_monthly":
		return timetable.NewSemiMonthly(r.Hour, r.Minute, tz)
	case "every_n_days":
		return timetable.NewEveryNDays(r.IntervalDays, r.Anchor, r.Hour, r.Minute, tz)
	case "business_day_of_month":
		return timetable.NewBusinessDayOfMonth(r.N, r.Hour, r.Minute, tz)
	case "monthly_last_day_except_weekend":
		return timetable.NewMonthlyLastDayExceptWeekend(r.Hour, r.Minute, tz)
	case "every_n_interval":
		anchor, err := time.Parse(time.RFC3339, r.AnchorInstant)
		if err != nil {
			return nil, fmt.Errorf("schedule %q: bad anchor_instant %q: %w", s.Name, r.AnchorInstant, err)
		}
		return timetable.NewEveryNInterval(r.IntervalHours, r.IntervalMinutes, anchor, tz)
	case "cron":
		return timetable.NewCronExpression(r.Expr, tz)
	default:
		return nil, fmt.Errorf("schedule %q: unknown rule kind %q", s.Name, r.Kind)
	}
}

// ParseScheduleYAML parses a single schedule YAML payload.
func ParseScheduleYAML(data []byte) (*Schedule, error) {
	var sched Schedule
	if err := yaml.Unmarshal(data, &sched); err != nil {
		return nil, err
	}
	return &sched, nil
}

// MarshalScheduleYAML serializes a schedule to YAML.
func MarshalScheduleYAML(sched *Schedule) ([]byte, error) {
	return yaml.Marshal(sched)
}

// SaveSchedule writes a single schedule definition file.
func SaveSchedule(path string, sched *Schedule) error {
	data, err := MarshalScheduleYAML(sched)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	sched.FilePath = path
	return nil
}

// LoadSchedules reads all *.yaml files from dir, parses each into a
// Schedule, and returns the collected schedules.
func LoadSchedules(dir string) ([]*Schedule, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var schedules []*Schedule
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") {
			continue
		}

		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}

		sched, err := ParseScheduleYAML(data)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}

		sched.FilePath = path
		schedules = append(schedules, sched)
	}

	return schedules, nil
}
