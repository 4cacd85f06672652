package locking

import (
	"context"

	"beerorder/internal/core/ports"
)

// LayeredGuard takes a process-local lock before a shared one, so that
// concurrent deliveries inside one instance queue locally instead of polling
// the shared store.
type LayeredGuard struct {
	local  ports.DeliveryGuard
	shared ports.DeliveryGuard
}

func NewLayeredGuard(local, shared ports.DeliveryGuard) *LayeredGuard {
	return &LayeredGuard{local: local, shared: shared}
}

func (g *LayeredGuard) Lock(ctx context.Context, key string) (func(), error) {
	unlockLocal, err := g.local.Lock(ctx, key)
	if err != nil {
		return nil, err
	}

	unlockShared, err := g.shared.Lock(ctx, key)
	if err != nil {
		unlockLocal()
		return nil, err
	}

	return func() {
		unlockShared()
		unlockLocal()
	}, nil
}
