package store

import (
	"context"
	"time"
)

// Firing represents one recorded schedule firing and the interval it covers.
type Firing struct {
	ID            string
	ScheduleName  string
	IntervalStart time.Time
	IntervalEnd   time.Time
	RunAfter      time.Time
	FiredAt       time.Time
	Trigger       string // "schedule", "manual"
	CreatedAt     time.Time
}

// ListOpts controls filtering and pagination for firing queries.
type ListOpts struct {
	ScheduleName string
	Limit        int
	Offset       int
}

// ScheduleStats holds aggregate statistics for a schedule.
type ScheduleStats struct {
	TotalFirings int
	Scheduled    int
	Manual       int
	LastFiredAt  *time.Time
}

// FiringStore is the interface for persisting and querying schedule firings.
type FiringStore interface {
	RecordFiring(ctx context.Context, f *Firing) error
	GetFiring(ctx context.Context, id string) (*Firing, error)
	ListFirings(ctx context.Context, opts ListOpts) ([]*Firing, error)
	LastFiring(ctx context.Context, scheduleName string) (*Firing, error)
	GetScheduleStats(ctx context.Context, scheduleName string) (*ScheduleStats, error)
}
