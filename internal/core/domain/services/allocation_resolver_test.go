package services_test

import (
	"testing"

	"beerorder/internal/core/domain/model/kernel"
	"beerorder/internal/core/domain/model/order"
	"beerorder/internal/core/domain/services"
	"beerorder/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrder(t *testing.T, quantities ...int) *order.Order {
	t.Helper()
	lines := make([]*order.Line, 0, len(quantities))
	for _, q := range quantities {
		line, err := order.NewLine(kernel.NewUUID(), "0631234200036", q)
		require.NoError(t, err)
		lines = append(lines, line)
	}
	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), "", lines)
	require.NoError(t, err)
	return o
}

func full(o *order.Order) []order.LineAllocation {
	out := make([]order.LineAllocation, 0, len(o.Lines()))
	for _, l := range o.Lines() {
		out = append(out, order.LineAllocation{LineID: l.ID(), QuantityAllocated: l.QuantityOrdered()})
	}
	return out
}

func TestAllocationResolver_Resolve(t *testing.T) {
	resolver := services.NewAllocationResolver()

	t.Run("should succeed when every line is covered", func(t *testing.T) {
		o := newOrder(t, 3, 2)

		event, err := resolver.Resolve(o, full(o), false, false)

		require.NoError(t, err)
		assert.Equal(t, order.AllocationSuccess, event)
	})

	t.Run("should wait for inventory when a line stays short", func(t *testing.T) {
		o := newOrder(t, 3)
		short := []order.LineAllocation{{LineID: o.Lines()[0].ID(), QuantityAllocated: 2}}

		event, err := resolver.Resolve(o, short, false, false)

		require.NoError(t, err)
		assert.Equal(t, order.AllocationNoInventory, event)
	})

	t.Run("should wait for inventory when the reply says so", func(t *testing.T) {
		o := newOrder(t, 3)

		event, err := resolver.Resolve(o, full(o), false, true)

		require.NoError(t, err)
		assert.Equal(t, order.AllocationNoInventory, event)
	})

	t.Run("should fail on an allocation error whatever the quantities", func(t *testing.T) {
		o := newOrder(t, 3)

		event, err := resolver.Resolve(o, full(o), true, true)

		require.NoError(t, err)
		assert.Equal(t, order.AllocationFailed, event)
	})

	t.Run("should reject quantities above the ordered amount", func(t *testing.T) {
		o := newOrder(t, 3)
		over := []order.LineAllocation{{LineID: o.Lines()[0].ID(), QuantityAllocated: 4}}

		_, err := resolver.Resolve(o, over, false, false)

		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("should ignore lines the order does not have", func(t *testing.T) {
		o := newOrder(t, 1)
		allocations := append(full(o), order.LineAllocation{LineID: kernel.NewUUID(), QuantityAllocated: 5})

		event, err := resolver.Resolve(o, allocations, false, false)

		require.NoError(t, err)
		assert.Equal(t, order.AllocationSuccess, event)
	})

	t.Run("should reject an order that was not constructed", func(t *testing.T) {
		_, err := resolver.Resolve(&order.Order{}, nil, false, false)

		require.Error(t, err)
	})
}
