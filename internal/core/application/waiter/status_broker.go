package waiter

import (
	"sync"

	"beerorder/internal/core/domain/model/kernel"
	"beerorder/internal/core/domain/model/order"
)

const subscriptionBuffer = 4

// StatusBroker fans committed status changes out to waiters in this process.
// The orchestrator publishes after each commit; the postgres listener
// publishes changes committed by other instances.
type StatusBroker struct {
	mu   sync.Mutex
	subs map[kernel.UUID]map[chan order.Status]struct{}
}

func NewStatusBroker() *StatusBroker {
	return &StatusBroker{subs: make(map[kernel.UUID]map[chan order.Status]struct{})}
}

// Subscribe returns a channel of statuses committed for orderID from now on.
// Delivery is best effort: a slow subscriber misses updates rather than
// blocking the publisher. The returned function closes the channel.
func (b *StatusBroker) Subscribe(orderID kernel.UUID) (<-chan order.Status, func()) {
	ch := make(chan order.Status, subscriptionBuffer)

	b.mu.Lock()
	set, ok := b.subs[orderID]
	if !ok {
		set = make(map[chan order.Status]struct{})
		b.subs[orderID] = set
	}
	set[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(set, ch)
			if len(set) == 0 {
				delete(b.subs, orderID)
			}
			close(ch)
		})
	}
}

func (b *StatusBroker) Publish(orderID kernel.UUID, status order.Status) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subs[orderID] {
		select {
		case ch <- status:
		default:
		}
	}
}

// Subscribers returns the number of orders with at least one subscriber.
func (b *StatusBroker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
