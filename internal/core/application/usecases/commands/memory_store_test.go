package commands_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"beerorder/internal/core/application/usecases/commands"
	"beerorder/internal/core/domain/model/kernel"
	"beerorder/internal/core/domain/model/order"
	"beerorder/internal/core/domain/model/outbox"
	"beerorder/internal/core/ports"
	"beerorder/internal/pkg/errs"
)

var errNoTransaction = errors.New("no transaction in progress")

type lineRecord struct {
	id        kernel.UUID
	upc       string
	ordered   int
	allocated int
}

type orderRecord struct {
	id          kernel.UUID
	customerID  kernel.UUID
	customerRef string
	status      order.Status
	lines       []lineRecord
}

func recordOf(o *order.Order) orderRecord {
	rec := orderRecord{
		id:          o.ID(),
		customerID:  o.CustomerID(),
		customerRef: o.CustomerRef(),
		status:      o.Status(),
	}
	for _, l := range o.Lines() {
		rec.lines = append(rec.lines, lineRecord{id: l.ID(), upc: l.UPC(), ordered: l.QuantityOrdered(), allocated: l.QuantityAllocated()})
	}
	return rec
}

func (r orderRecord) restore() (*order.Order, error) {
	lines := make([]*order.Line, 0, len(r.lines))
	for _, l := range r.lines {
		line, err := order.RestoreLine(l.id, l.upc, l.ordered, l.allocated)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return order.RestoreOrder(r.id, r.customerID, r.customerRef, r.status, lines)
}

func copyMessage(m *outbox.Message) *outbox.Message {
	c, err := outbox.RestoreMessage(m.ID(), m.OrderID(), m.CommandType(), m.Destination(), slices.Clone(m.Payload()),
		m.Status(), m.Attempts(), m.LastError(), m.CreatedAt(), m.DispatchedAt())
	if err != nil {
		panic(err)
	}
	return c
}

// memoryStore is a transactional in-memory stand-in for postgres: writes made
// inside a unit of work become visible to others only on commit.
type memoryStore struct {
	mu     sync.Mutex
	orders map[kernel.UUID]orderRecord
	outbox map[kernel.UUID]*outbox.Message

	failOutboxAdd error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		orders: make(map[kernel.UUID]orderRecord),
		outbox: make(map[kernel.UUID]*outbox.Message),
	}
}

func (s *memoryStore) Create() commands.OrderUoW {
	return &memoryUoW{store: s}
}

func (s *memoryStore) GetStatus(_ context.Context, id kernel.UUID) (order.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.orders[id]
	if !ok {
		return order.Unknown, errs.NewObjectNotFoundError("order", id.String())
	}
	return rec.status, nil
}

func (s *memoryStore) seed(o *order.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID()] = recordOf(o)
}

func (s *memoryStore) order(id kernel.UUID) *order.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, err := s.orders[id].restore()
	if err != nil {
		panic(err)
	}
	return o
}

func (s *memoryStore) messages(orderID kernel.UUID) []*outbox.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*outbox.Message
	for _, m := range s.outbox {
		if m.OrderID().IsEqual(orderID) {
			out = append(out, copyMessage(m))
		}
	}
	slices.SortFunc(out, func(a, b *outbox.Message) int { return a.CreatedAt().Compare(b.CreatedAt()) })
	return out
}

type memoryUoW struct {
	store *memoryStore
	inTx  bool

	orderWrites  map[kernel.UUID]orderRecord
	outboxWrites map[kernel.UUID]*outbox.Message
}

func (u *memoryUoW) Begin(_ context.Context) error {
	if u.inTx {
		return nil
	}
	u.inTx = true
	u.orderWrites = make(map[kernel.UUID]orderRecord)
	u.outboxWrites = make(map[kernel.UUID]*outbox.Message)
	return nil
}

func (u *memoryUoW) Commit(_ context.Context) error {
	if !u.inTx {
		return errNoTransaction
	}
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	for id, rec := range u.orderWrites {
		u.store.orders[id] = rec
	}
	for id, m := range u.outboxWrites {
		u.store.outbox[id] = m
	}
	u.inTx = false
	return nil
}

func (u *memoryUoW) Rollback(_ context.Context) error {
	if !u.inTx {
		return errNoTransaction
	}
	u.inTx = false
	u.orderWrites, u.outboxWrites = nil, nil
	return nil
}

func (u *memoryUoW) OrderRepository() ports.OrderRepository {
	return memoryOrderRepository{uow: u}
}

func (u *memoryUoW) OutboxRepository() ports.OutboxRepository {
	return memoryOutboxRepository{uow: u}
}

type memoryOrderRepository struct{ uow *memoryUoW }

func (r memoryOrderRepository) Add(_ context.Context, o *order.Order) error {
	s := r.uow.store
	s.mu.Lock()
	_, exists := s.orders[o.ID()]
	s.mu.Unlock()
	if exists {
		return errors.New("duplicate key")
	}
	return r.write(recordOf(o))
}

func (r memoryOrderRepository) Update(_ context.Context, o *order.Order) error {
	s := r.uow.store
	s.mu.Lock()
	_, exists := s.orders[o.ID()]
	s.mu.Unlock()
	if !exists {
		return errs.NewObjectNotFoundError("order", o.ID().String())
	}
	return r.write(recordOf(o))
}

func (r memoryOrderRepository) write(rec orderRecord) error {
	if r.uow.inTx {
		r.uow.orderWrites[rec.id] = rec
		return nil
	}
	r.uow.store.mu.Lock()
	defer r.uow.store.mu.Unlock()
	r.uow.store.orders[rec.id] = rec
	return nil
}

func (r memoryOrderRepository) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	if r.uow.inTx {
		if rec, ok := r.uow.orderWrites[id]; ok {
			return rec.restore()
		}
	}
	s := r.uow.store
	s.mu.Lock()
	rec, ok := s.orders[id]
	s.mu.Unlock()
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	return rec.restore()
}

func (r memoryOrderRepository) GetStatus(ctx context.Context, id kernel.UUID) (order.Status, error) {
	return r.uow.store.GetStatus(ctx, id)
}

type memoryOutboxRepository struct{ uow *memoryUoW }

func (r memoryOutboxRepository) Add(_ context.Context, m *outbox.Message) error {
	if err := r.uow.store.failOutboxAdd; err != nil {
		return err
	}
	return r.write(m)
}

func (r memoryOutboxRepository) Update(_ context.Context, m *outbox.Message) error {
	return r.write(m)
}

func (r memoryOutboxRepository) write(m *outbox.Message) error {
	if r.uow.inTx {
		r.uow.outboxWrites[m.ID()] = copyMessage(m)
		return nil
	}
	r.uow.store.mu.Lock()
	defer r.uow.store.mu.Unlock()
	r.uow.store.outbox[m.ID()] = copyMessage(m)
	return nil
}

func (r memoryOutboxRepository) Get(_ context.Context, id kernel.UUID) (*outbox.Message, error) {
	r.uow.store.mu.Lock()
	defer r.uow.store.mu.Unlock()
	m, ok := r.uow.store.outbox[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("outbox message", id.String())
	}
	return copyMessage(m), nil
}

func (r memoryOutboxRepository) ListPending(_ context.Context, createdBefore time.Time, limit int) ([]*outbox.Message, error) {
	r.uow.store.mu.Lock()
	defer r.uow.store.mu.Unlock()
	var out []*outbox.Message
	for _, m := range r.uow.store.outbox {
		if !m.IsDispatched() && m.CreatedAt().Before(createdBefore) && len(out) < limit {
			out = append(out, copyMessage(m))
		}
	}
	return out, nil
}

// recordingPublisher captures every command handed to the command channel.
type recordingPublisher struct {
	mu       sync.Mutex
	sent     []*outbox.Message
	failWith error
}

func (p *recordingPublisher) Publish(_ context.Context, m *outbox.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failWith != nil {
		return p.failWith
	}
	p.sent = append(p.sent, copyMessage(m))
	return nil
}

func (p *recordingPublisher) commandsFor(orderID kernel.UUID) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var types []string
	for _, m := range p.sent {
		if m.OrderID().IsEqual(orderID) {
			types = append(types, m.CommandType())
		}
	}
	return types
}

// statusTrail records every committed status per order, in commit order.
type statusTrail struct {
	mu     sync.Mutex
	trails map[kernel.UUID][]order.Status
	next   commands.StatusPublisher
}

func (s *statusTrail) Publish(id kernel.UUID, status order.Status) {
	s.mu.Lock()
	if s.trails == nil {
		s.trails = make(map[kernel.UUID][]order.Status)
	}
	s.trails[id] = append(s.trails[id], status)
	s.mu.Unlock()
	s.next.Publish(id, status)
}

func (s *statusTrail) of(id kernel.UUID) []order.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.trails[id])
}
