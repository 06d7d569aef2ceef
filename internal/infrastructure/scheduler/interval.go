package scheduler

import (
	"context"
	"sync"
	"time"

	"LunaroNews/internal/ports"
)

// IntervalScheduler runs a job immediately and then on a fixed interval.
// Ticks that arrive while a job is still running are dropped.
type IntervalScheduler struct {
	interval time.Duration
	location *time.Location

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

var _ ports.Scheduler = (*IntervalScheduler)(nil)

// NewIntervalScheduler builds a scheduler; trigger times are reported in loc.
func NewIntervalScheduler(interval time.Duration, loc *time.Location) *IntervalScheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &IntervalScheduler{interval: interval, location: loc}
}

// Start begins ticking. A non-positive interval disables the scheduler.
func (s *IntervalScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil || s.interval <= 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return nil
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	s.stop, s.done = stop, done

	go func() {
		defer close(done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		job(time.Now().In(s.location))
		for {
			select {
			case t := <-ticker.C:
				job(t.In(s.location))
			case <-ctx.Done():
				return
			case <-stop:
				return
			}
		}
	}()

	return nil
}

// Stop halts the ticker goroutine and waits for a running job to finish
// or ctx to expire.
func (s *IntervalScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()

	if stop == nil {
		return nil
	}
	close(stop)

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
