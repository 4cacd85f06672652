package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"beerorder/internal/core/domain/model/kernel"
	"beerorder/internal/core/domain/model/order"
	"beerorder/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectNotFoundError(t *testing.T) {
	t.Run("should name the missing order", func(t *testing.T) {
		id := kernel.NewUUID()

		err := errs.NewObjectNotFoundError("order", id.String())

		assert.Equal(t, "object not found: order "+id.String(), err.Error())
		assert.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("should stay classifiable when wrapped by a caller", func(t *testing.T) {
		wrapped := fmt.Errorf("load order: %w", errs.NewObjectNotFoundError("outbox message", "m-1"))

		var notFound *errs.ObjectNotFoundError
		require.ErrorAs(t, wrapped, &notFound)
		assert.Equal(t, "outbox message", notFound.ParamName)
		assert.ErrorIs(t, wrapped, errs.ErrObjectNotFound)
		assert.NotErrorIs(t, wrapped, errs.ErrValueIsInvalid)
	})

	t.Run("should keep the message on one line", func(t *testing.T) {
		err := errs.NewObjectNotFoundError("order", "a\nb")

		assert.Equal(t, "object not found: order a b", err.Error())
	})
}

func TestValueIsOutOfRangeError(t *testing.T) {
	t.Run("should report the bounds", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeError("limit", 0, 1, 1000)

		assert.Equal(t, "value is out of range: limit is 0, min value is 1, max value is 1000", err.Error())
		assert.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("should be raised for an allocation above the ordered quantity", func(t *testing.T) {
		line, err := order.NewLine(kernel.NewUUID(), "0631234200036", 3)
		require.NoError(t, err)
		o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), "ref", []*order.Line{line})
		require.NoError(t, err)

		err = o.Allocate([]order.LineAllocation{{LineID: line.ID(), QuantityAllocated: 4}})

		var outOfRange *errs.ValueIsOutOfRangeError
		require.ErrorAs(t, err, &outOfRange)
		assert.Equal(t, "quantity allocated", outOfRange.ParamName)
		assert.Equal(t, 4, outOfRange.Value)
		assert.Equal(t, 3, outOfRange.Max)
	})
}

func TestValueIsInvalidError(t *testing.T) {
	t.Run("should format without a cause", func(t *testing.T) {
		err := errs.NewValueIsInvalidError("quantity ordered")

		assert.Equal(t, "value is invalid: quantity ordered", err.Error())
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should include the cause but unwrap to the sentinel", func(t *testing.T) {
		err := errs.NewValueIsInvalidErrorWithCause("event", errors.New("ALLOCATE_ORDER is not a result event"))

		assert.Equal(t, "value is invalid: event (cause: ALLOCATE_ORDER is not a result event)", err.Error())
		assert.Equal(t, errs.ErrValueIsInvalid, err.Unwrap())
	})
}

func TestValueIsRequiredError(t *testing.T) {
	t.Run("should format without a cause", func(t *testing.T) {
		err := errs.NewValueIsRequiredError("order lines")

		assert.Equal(t, "value is required: order lines", err.Error())
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("should be raised for an order without lines", func(t *testing.T) {
		_, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), "ref", nil)

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("should include the cause", func(t *testing.T) {
		err := errs.NewValueIsRequiredErrorWithCause("customer id", kernel.ErrUUIDIsNotConstructed)

		assert.Contains(t, err.Error(), "value is required: customer id (cause: ")
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}
