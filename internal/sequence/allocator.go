// Package sequence issues monotonically increasing integers from named
// counters persisted in the document store.
package sequence

import (
	"context"
	"sync"

	"restoq/queue-service/internal/models"
	"restoq/queue-service/internal/store"
)

// Allocator funnels every read-modify-write of a counter through one
// mutex. The backing store has no atomic increment, so without this
// serialization two concurrent bookings could be issued the same number.
type Allocator struct {
	mu       sync.Mutex
	counters store.CounterStore
}

func NewAllocator(counters store.CounterStore) *Allocator {
	return &Allocator{counters: counters}
}

// Next returns the next value in the named sequence, starting at 1 when
// the counter is absent, and persists the new value before returning.
func (a *Allocator) Next(ctx context.Context, name string) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	counter, found, err := a.counters.GetCounter(ctx, name)
	if err != nil {
		return 0, err
	}

	seq := 1
	if found {
		seq = counter.Seq + 1
	}
	if err := a.counters.PutCounter(ctx, models.Counter{Name: name, Seq: seq}); err != nil {
		return 0, err
	}
	return seq, nil
}

// Reset deletes the counter so the next allocation restarts at 1. It holds
// the same mutex as Next so a concurrent allocation cannot interleave with
// the reset and resurrect a stale value.
func (a *Allocator) Reset(ctx context.Context, name string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.counters.DeleteCounter(ctx, name)
}
