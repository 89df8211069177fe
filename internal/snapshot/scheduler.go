// internal/snapshot/scheduler.go
package snapshot

import (
	"context"
	"time"
)

// Start runs a snapshot immediately and then once per interval until ctx
// is cancelled. A failed run is logged and the next one still happens.
// Runs never overlap.
func (p *Pipeline) Start(ctx context.Context, interval time.Duration) {
	p.logger.Info("Starting snapshot scheduler", "interval", interval.String())
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.runScheduled(ctx) // Initial run

	for {
		select {
		case <-ticker.C:
			p.runScheduled(ctx)
		case <-ctx.Done():
			p.logger.Info("Snapshot scheduler shutting down", "reason", ctx.Err())
			return
		}
	}
}

func (p *Pipeline) runScheduled(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := p.Run(ctx); err != nil {
		p.logger.Error("Snapshot run failed", "error", err)
	}
}
