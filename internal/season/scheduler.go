package season

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// Scheduler refreshes the catalog on a fixed interval until stopped.
type Scheduler struct {
	svc      *Service
	interval time.Duration
	timeout  time.Duration

	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
	started atomic.Bool
}

// DefaultRefreshInterval applies when NewScheduler is given a non-positive interval.
const DefaultRefreshInterval = 6 * time.Hour

func NewScheduler(svc *Service, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Scheduler{
		svc:      svc,
		interval: interval,
		timeout:  10 * time.Minute,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs one refresh when the catalog is empty and then one per tick.
func (s *Scheduler) Start(ctx context.Context) {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer close(s.done)

		if n, err := s.svc.repo.Count(ctx, FeedNow); err == nil && n == 0 {
			s.refresh(ctx)
		}

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.refresh(ctx)
			case <-s.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop ends the loop and waits for an in-flight refresh to return.
func (s *Scheduler) Stop() {
	s.once.Do(func() { close(s.stop) })
	if s.started.Load() {
		<-s.done
	}
}

func (s *Scheduler) refresh(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	go func() {
		select {
		case <-s.stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	if _, err := s.svc.Refresh(ctx); err != nil {
		log.Printf("[season] scheduled refresh failed err=%v", err)
	}
}
