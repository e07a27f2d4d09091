package ingest

import (
	"context"
	"time"
)

// Pacer is an interval gate between successive enrichment lookups, the sole
// form of backpressure against the geoportal. Kept as its own type so the
// pacing policy can change without touching lookup call sites.
type Pacer struct {
	interval time.Duration
	last     time.Time
}

func NewPacer(interval time.Duration) *Pacer {
	return &Pacer{interval: interval}
}

// Wait blocks until at least one interval has passed since the previous
// call. The first call never blocks.
func (p *Pacer) Wait(ctx context.Context) error {
	if !p.last.IsZero() {
		remaining := p.interval - time.Since(p.last)
		if remaining > 0 {
			select {
			case <-time.After(remaining):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	p.last = time.Now()
	return nil
}
