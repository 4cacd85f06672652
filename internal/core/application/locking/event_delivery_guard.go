// Package locking serialises saga steps per order.
package locking

import (
	"context"
	"sync"
)

// EventDeliveryGuard is an in-process, per-key mutual exclusion. Keys are
// order ids; holding one key never blocks another, and no caller ever holds
// two keys at once. Idle keys are dropped so the map does not grow with the
// number of orders ever seen.
type EventDeliveryGuard struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	token chan struct{}
	refs  int
}

func NewEventDeliveryGuard() *EventDeliveryGuard {
	return &EventDeliveryGuard{slots: make(map[string]*slot)}
}

// Lock waits until key is free or ctx is done.
func (g *EventDeliveryGuard) Lock(ctx context.Context, key string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := g.acquireSlot(key)

	select {
	case s.token <- struct{}{}:
	case <-ctx.Done():
		g.releaseSlot(key, s)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.token
			g.releaseSlot(key, s)
		})
	}, nil
}

// ActiveKeys returns the number of keys currently held or waited on.
func (g *EventDeliveryGuard) ActiveKeys() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.slots)
}

func (g *EventDeliveryGuard) acquireSlot(key string) *slot {
	g.mu.Lock()
	defer g.mu.Unlock()

	s, ok := g.slots[key]
	if !ok {
		s = &slot{token: make(chan struct{}, 1)}
		g.slots[key] = s
	}
	s.refs++
	return s
}

func (g *EventDeliveryGuard) releaseSlot(key string, s *slot) {
	g.mu.Lock()
	defer g.mu.Unlock()

	s.refs--
	if s.refs == 0 {
		delete(g.slots, key)
	}
}
