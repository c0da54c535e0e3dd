// Package timetable computes the next and previous occurrences of a family
// of recurrence rules: monthly/quarterly/yearly anchors, nth-weekday
// occurrences, business-day offsets, fixed strides, and 5-field cron
// expressions.
//
// # Rules
//
// A Rule is built once by its constructor (NewMonthlyOnDay, NewWeeklyOnDay,
// NewCronExpression, ...) and is immutable afterwards. Invalid parameters are
// rejected at construction with a *ConfigurationError; computation never
// fails on configuration. A Rule is safe for concurrent use: every
// computation is a pure function of the rule and the reference instant.
//
// # Occurrences and intervals
//
// ComputeNext returns the first occurrence strictly after the reference
// instant, ComputePrevious the last one strictly before it. NextInterval
// packages occurrences into (start, end) intervals the way a scheduling host
// records run history, honoring earliest/latest bounds and the catchup flag.
//
// # Timezones
//
// Rules carry an IANA zone name. Local wall times are resolved with a fixed
// DST policy: a wall time inside a spring-forward gap maps to the instant
// immediately after the gap, and an ambiguous fall-back wall time maps to
// the earlier of the two candidate instants.
//
// Weekdays are numbered 0=Monday through 6=Sunday everywhere in this
// package, except inside cron expressions, which keep the crontab convention
// of 0 (or 7) meaning Sunday.
package timetable
