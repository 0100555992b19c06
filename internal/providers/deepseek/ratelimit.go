package deepseek

import (
	"context"
	"sync"
	"time"
)

// acquirePollInterval is how long a caller waits between slot checks while
// the window is full. Backpressure, not rejection: calls block, none drop.
const acquirePollInterval = time.Second

// slidingWindow admits at most limit calls per window. One instance is
// shared by every caller of a Client so concurrent workers draw from the
// same provider quota.
type slidingWindow struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	stamps []time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func newSlidingWindow(limit int) *slidingWindow {
	return &slidingWindow{
		limit:  limit,
		window: time.Minute,
		now:    time.Now,
		sleep:  sleepContext,
	}
}

// Acquire blocks until a slot frees or the context ends.
func (w *slidingWindow) Acquire(ctx context.Context) error {
	for {
		if w.tryAcquire() {
			return nil
		}
		if err := w.sleep(ctx, acquirePollInterval); err != nil {
			return err
		}
	}
}

func (w *slidingWindow) tryAcquire() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	cutoff := now.Add(-w.window)
	kept := w.stamps[:0]
	for _, t := range w.stamps {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	w.stamps = kept

	if len(w.stamps) >= w.limit {
		return false
	}
	w.stamps = append(w.stamps, now)
	return true
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
