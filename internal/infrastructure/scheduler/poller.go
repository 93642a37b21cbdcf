package scheduler

import (
	"context"
	"sync"
	"time"

	"CreatorProfiler/internal/ports"
)

// DefaultInterval is used when no positive poll interval is configured.
const DefaultInterval = time.Minute

// Poller fires the job immediately and then on every interval tick.
type Poller struct {
	interval time.Duration
	location *time.Location

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

var _ ports.Scheduler = (*Poller)(nil)

// NewPoller builds a poller. Trigger times are reported in loc (UTC when nil).
func NewPoller(interval time.Duration, loc *time.Location) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Poller{interval: interval, location: loc}
}

// Start begins ticking. Calling it on a running poller is a no-op.
func (p *Poller) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stop != nil {
		return nil
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	p.stop, p.done = stop, done

	go func() {
		defer close(done)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		job(time.Now().In(p.location))
		for {
			select {
			case t := <-ticker.C:
				job(t.In(p.location))
			case <-ctx.Done():
				return
			case <-stop:
				return
			}
		}
	}()

	return nil
}

// Stop halts the ticker goroutine and waits for the current job to return.
func (p *Poller) Stop(ctx context.Context) error {
	p.mu.Lock()
	stop, done := p.stop, p.done
	p.stop, p.done = nil, nil
	p.mu.Unlock()

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
