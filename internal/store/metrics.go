package store

import (
	"context"
	"time"

	"github.com/confsched/companion/internal/metrics"
)

func observeStorage(ctx context.Context, operation string) func() {
	start := time.Now()
	return func() {
		metrics.ObserveStorageLatency(ctx, operation, start)
	}
}
