// Package worker runs batches of independent tasks against rate-limited
// upstreams. Starts are spaced by a token bucket and at most Concurrency tasks
// are in flight. A failing task is logged and counted, the batch carries on.
package worker

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// DefaultInterval is the spacing the public metadata API tolerates.
const DefaultInterval = 1300 * time.Millisecond

// Task processes item i of the batch.
type Task func(ctx context.Context, i int) error

type Runner struct {
	// Interval is the minimum time between two task starts. Zero disables
	// spacing.
	Interval time.Duration
	// Concurrency caps tasks in flight; values below one mean one.
	Concurrency int
	Clock       Clock
	// Name tags log lines.
	Name string
}

func New(name string, interval time.Duration, concurrency int) *Runner {
	return &Runner{Name: name, Interval: interval, Concurrency: concurrency, Clock: RealClock{}}
}

type TaskError struct {
	Index int
	Err   error
}

func (e TaskError) Error() string {
	return fmt.Sprintf("task %d: %v", e.Index, e.Err)
}

func (e TaskError) Unwrap() error { return e.Err }

type Report struct {
	Total      int         `json:"total"`
	Dispatched int         `json:"dispatched"`
	Succeeded  int         `json:"succeeded"`
	Failed     int         `json:"failed"`
	Errors     []TaskError `json:"-"`
}

// Run dispatches tasks 0..n-1 and waits for all started tasks to finish. The
// returned error is only ever the context error when the batch was cut short.
func (r *Runner) Run(ctx context.Context, n int, task Task) (Report, error) {
	clock := r.Clock
	if clock == nil {
		clock = RealClock{}
	}
	limit := rate.Inf
	if r.Interval > 0 {
		limit = rate.Every(r.Interval)
	}
	limiter := rate.NewLimiter(limit, 1)

	// A slot is taken before the limiter is consulted, so a task waiting
	// for a slot never holds a reservation that matures meanwhile.
	slots := make(chan struct{}, max(r.Concurrency, 1))
	var g errgroup.Group

	var (
		mu  sync.Mutex
		rep = Report{Total: n}
	)

	var runErr error
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		select {
		case slots <- struct{}{}:
		case <-ctx.Done():
			runErr = ctx.Err()
		}
		if runErr != nil {
			break
		}

		now := clock.Now()
		res := limiter.ReserveN(now, 1)
		if d := res.DelayFrom(now); d > 0 {
			if err := clock.Sleep(ctx, d); err != nil {
				res.Cancel()
				<-slots
				runErr = err
				break
			}
		}
		if err := ctx.Err(); err != nil {
			<-slots
			runErr = err
			break
		}

		rep.Dispatched++
		g.Go(func() error {
			defer func() { <-slots }()
			err := task(ctx, i)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				rep.Failed++
				rep.Errors = append(rep.Errors, TaskError{Index: i, Err: err})
				log.Printf("[worker] task failed runner=%s index=%d err=%v", r.Name, i, err)
				return nil
			}
			rep.Succeeded++
			return nil
		})
	}
	_ = g.Wait()

	log.Printf("[worker] batch done runner=%s total=%d dispatched=%d succeeded=%d failed=%d", r.Name, rep.Total, rep.Dispatched, rep.Succeeded, rep.Failed)
	return rep, runErr
}
