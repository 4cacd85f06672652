package queries_test

import (
	"testing"
	"time"

	"beerorder/internal/core/application/usecases/queries"
	"beerorder/internal/core/domain/model/kernel"
	"beerorder/internal/core/domain/model/order"
	"beerorder/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGetOrderQuery(t *testing.T) {
	id := kernel.NewUUID()
	query, err := queries.NewGetOrderQuery(id)
	require.NoError(t, err)
	require.NoError(t, query.Validate())
	assert.Equal(t, id, query.OrderID())

	_, err = queries.NewGetOrderQuery(kernel.UUID{})
	require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)

	require.ErrorIs(t, queries.GetOrderQuery{}.Validate(), queries.ErrGetOrderQueryIsNotConstructed)
}

func TestNewListOrdersQuery(t *testing.T) {
	t.Run("should default the limit", func(t *testing.T) {
		query, err := queries.NewListOrdersQuery(order.Unknown, 0)
		require.NoError(t, err)
		assert.Equal(t, queries.DefaultListLimit, query.Limit())
		assert.Equal(t, order.Unknown, query.Status())
	})

	t.Run("should keep a status filter", func(t *testing.T) {
		query, err := queries.NewListOrdersQuery(order.Allocated, 10)
		require.NoError(t, err)
		assert.Equal(t, order.Allocated, query.Status())
	})

	t.Run("should reject limits out of range", func(t *testing.T) {
		_, err := queries.NewListOrdersQuery(order.Unknown, queries.MaxListLimit+1)
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
		_, err = queries.NewListOrdersQuery(order.Unknown, -1)
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("should fail validation for zero value", func(t *testing.T) {
		require.ErrorIs(t, queries.ListOrdersQuery{}.Validate(), queries.ErrListOrdersQueryIsNotConstructed)
	})
}

func TestNewGetStaleOrdersQuery(t *testing.T) {
	cutoff := time.Now()

	_, err := queries.NewGetStaleOrdersQuery(cutoff, 10, order.New)
	require.NoError(t, err)

	_, err = queries.NewGetStaleOrdersQuery(time.Time{}, 10, order.New)
	require.ErrorIs(t, err, errs.ErrValueIsRequired)

	_, err = queries.NewGetStaleOrdersQuery(cutoff, 10)
	require.ErrorIs(t, err, errs.ErrValueIsRequired)

	_, err = queries.NewGetStaleOrdersQuery(cutoff, 0, order.New)
	require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)

	require.ErrorIs(t, queries.GetStaleOrdersQuery{}.Validate(), queries.ErrGetStaleOrdersQueryIsNotConstructed)
}
