package syncer

import (
	"context"
	"time"
)

// Pacer spaces consecutive remote writes. The orchestrator calls Wait before
// every write after the first; swapping the implementation (e.g. for a token
// bucket) does not touch the orchestrator's control flow.
type Pacer interface {
	Wait(ctx context.Context)
}

// IntervalPacer enforces a fixed minimum spacing between calls. The remote
// API allows roughly three writes per second per credential, so the default
// interval stays just above that.
type IntervalPacer struct {
	Interval time.Duration
	last     time.Time
}

func NewIntervalPacer(interval time.Duration) *IntervalPacer {
	return &IntervalPacer{Interval: interval}
}

func (p *IntervalPacer) Wait(ctx context.Context) {
	if !p.last.IsZero() {
		if remaining := p.Interval - time.Since(p.last); remaining > 0 {
			select {
			case <-time.After(remaining):
			case <-ctx.Done():
			}
		}
	}
	p.last = time.Now()
}
