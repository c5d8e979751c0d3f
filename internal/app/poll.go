package app

import (
	"context"
	"sync"
	"time"
)

// poll calls fetch now and on every tick until ctx is done. Each call gets
// a strictly increasing sequence number and runs on its own goroutine, so a
// slow response never delays the next tick; stores drop results stamped
// older than what they already show.
func poll(ctx context.Context, interval time.Duration, fetch func(ctx context.Context, seq uint64)) {
	var (
		wg  sync.WaitGroup
		seq uint64
	)
	tick := func() {
		seq++
		wg.Add(1)
		go func(seq uint64) {
			defer wg.Done()
			fetch(ctx, seq)
		}(seq)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer wg.Wait()

	tick()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick()
		}
	}
}
