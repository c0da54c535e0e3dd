package scheduler

import (
	"container/heap"
	"sync"
	"time"

	"github.com/patrickspencer/timetable/pkg/timetable"
)

// RunInfo pairs the interval a firing covers with the instant it becomes due.
type RunInfo struct {
	Interval timetable.Interval
	RunAfter time.Time
}

// Timetable produces the next run relative to the previously fired interval.
// A nil result means the schedule has nothing further to run.
type Timetable interface {
	Next(prev *timetable.Interval, now time.Time) *RunInfo
}

// entry represents a scheduled timetable in the heap.
type entry struct {
	name string
	tt   Timetable
	next RunInfo
}

// entryHeap is a min-heap of entries ordered by RunAfter (earliest first).
type entryHeap []entry

func (h entryHeap) Len() int           { return len(h) }
func (h entryHeap) Less(i, j int) bool { return h[i].next.RunAfter.Before(h[j].next.RunAfter) }
func (h entryHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *entryHeap) Push(x any)        { *h = append(*h, x.(entry)) }
func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// Scheduler manages schedule firings using a min-heap and a single timer
// goroutine.
type Scheduler struct {
	mu    sync.Mutex
	heap  entryHeap
	timer *time.Timer
	done  chan struct{}
	wg    sync.WaitGroup
	fire  func(name string, run RunInfo)
	reset chan struct{} // signals the goroutine to re-read the timer
}

// NewScheduler creates a Scheduler that calls fire when a schedule is due.
func NewScheduler(fire func(name string, run RunInfo)) *Scheduler {
	return &Scheduler{
		fire:  fire,
		done:  make(chan struct{}),
		reset: make(chan struct{}, 1),
	}
}

// AddSchedule adds a schedule, seeding the search from the last fired
// interval (nil for a fresh schedule). An existing schedule with the same
// name is replaced. Schedules with nothing further to run are not queued.
// Returns the computed first run, or nil.
func (s *Scheduler) AddSchedule(name string, tt Timetable, prev *timetable.Interval) *RunInfo {
	next := tt.Next(prev, time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLockedByName(name)
	if next == nil {
		s.resetTimerLocked()
		return nil
	}
	heap.Push(&s.heap, entry{name: name, tt: tt, next: *next})
	s.resetTimerLocked()
	return next
}

// RemoveSchedule removes a schedule by name.
func (s *Scheduler) RemoveSchedule(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLockedByName(name)
	s.resetTimerLocked()
}

// removeLockedByName removes the first entry matching name. Caller must hold s.mu.
func (s *Scheduler) removeLockedByName(name string) {
	for i, e := range s.heap {
		if e.name == name {
			heap.Remove(&s.heap, i)
			return
		}
	}
}

// NextRun returns the pending run for the named schedule.
func (s *Scheduler) NextRun(name string) (RunInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.heap {
		if e.name == name {
			return e.next, true
		}
	}
	return RunInfo{}, false
}

// Len returns the number of queued schedules.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.heap.Len()
}

// Start launches the scheduler goroutine.
func (s *Scheduler) Start() {
	s.mu.Lock()
	// Create a stopped timer; it will be set properly by resetTimerLocked.
	s.timer = time.NewTimer(0)
	if !s.timer.Stop() {
		<-s.timer.C
	}
	s.resetTimerLocked()
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run()
}

// Stop signals the scheduler goroutine to exit and waits for it.
func (s *Scheduler) Stop() {
	close(s.done)
	s.wg.Wait()
}

// run is the main scheduler loop.
func (s *Scheduler) run() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			s.mu.Lock()
			s.timer.Stop()
			s.mu.Unlock()
			return
		case <-s.reset:
			// Timer was reset externally (AddSchedule/RemoveSchedule); loop
			// back to wait on the updated timer.
			continue
		case <-s.timer.C:
			s.mu.Lock()
			if s.heap.Len() == 0 {
				s.mu.Unlock()
				continue
			}

			now := time.Now()
			e := s.heap[0]

			if e.next.RunAfter.After(now) {
				// Spurious wake; reset and wait again.
				s.resetTimerLocked()
				s.mu.Unlock()
				continue
			}

			// Pop the entry, fire the callback, advance, and re-push unless
			// the schedule has ended.
			heap.Pop(&s.heap)
			run := e.next
			prev := run.Interval
			if next := e.tt.Next(&prev, now); next != nil {
				e.next = *next
				heap.Push(&s.heap, e)
			}
			s.resetTimerLocked()
			s.mu.Unlock()

			s.fire(e.name, run)
		}
	}
}

// resetTimerLocked resets the timer to fire at the earliest entry's RunAfter.
// Caller must hold s.mu. Safe to call before Start (timer may be nil).
func (s *Scheduler) resetTimerLocked() {
	if s.timer == nil {
		return
	}
	s.timer.Stop()
	if s.heap.Len() == 0 {
		return
	}
	d := time.Until(s.heap[0].next.RunAfter)
	if d < 0 {
		d = 0
	}
	s.timer.Reset(d)

	// Non-blocking send to wake the goroutine so it re-selects on the new timer.
	select {
	case s.reset <- struct{}{}:
	default:
	}
}
