package feed

import (
	"context"
	"time"

	"github.com/mkarlsson/surebet/internal/logging"
)

// FetchOptions constrain what a collector pulls per run.
type FetchOptions struct {
	Sports  []string
	Regions []string
	Markets []string
}

// Collector is implemented by provider-specific clients. Each is responsible
// for fetching and normalizing its provider's payload into Events.
type Collector interface {
	Name() string
	Fetch(ctx context.Context, opts FetchOptions) ([]Event, error)
}

// RunLoop polls the collector on the given interval and hands each batch to
// handleFn. Fetch and handler errors are logged and the loop continues;
// upstream rate limiting belongs inside the collector's HTTP client.
func RunLoop(ctx context.Context, collector Collector, opts FetchOptions, interval time.Duration, handleFn func(context.Context, []Event) error) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		events, err := collector.Fetch(ctx, opts)
		if err != nil {
			logging.Errorf("[%s] fetch failed: %v", collector.Name(), err)
		} else if handleFn != nil && len(events) > 0 {
			if err := handleFn(ctx, events); err != nil {
				logging.Errorf("[%s] handler error: %v", collector.Name(), err)
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
