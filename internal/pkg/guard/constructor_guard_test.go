package guard_test

import (
	"errors"
	"testing"
	"time"

	"beerorder/internal/core/application/usecases/commands"
	"beerorder/internal/core/domain/model/kernel"
	"beerorder/internal/pkg/guard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorGuard_Validate(t *testing.T) {
	errNotBuilt := errors.New("command must be created via its constructor")

	t.Run("should pass once constructed", func(t *testing.T) {
		g := guard.NewConstructorGuard()

		require.NoError(t, g.Validate(errNotBuilt))
		require.NoError(t, g.Validate(nil))
	})

	t.Run("should return the supplied error for a zero value", func(t *testing.T) {
		var g guard.ConstructorGuard

		require.ErrorIs(t, g.Validate(errNotBuilt), errNotBuilt)
	})

	t.Run("should fall back to the default error", func(t *testing.T) {
		var g guard.ConstructorGuard

		require.ErrorIs(t, g.Validate(nil), guard.ErrDefaultConstructorGuard)
	})

	t.Run("should survive copies of the owning value", func(t *testing.T) {
		cmd, err := commands.NewCancelOrderCommand(kernel.NewUUID())
		require.NoError(t, err)

		byValue := func(c commands.CancelOrderCommand) error { return c.Validate() }

		require.NoError(t, byValue(cmd))
	})
}

func TestConstructorGuard_Commands(t *testing.T) {
	t.Run("should reject command literals that skipped their constructor", func(t *testing.T) {
		cases := []struct {
			name string
			err  error
			want error
		}{
			{"cancel", commands.CancelOrderCommand{}.Validate(), commands.ErrCancelOrderCommandIsNotConstructed},
			{"pick up", commands.PickUpOrderCommand{}.Validate(), commands.ErrPickUpOrderCommandIsNotConstructed},
			{"validation result", commands.ValidationResultCommand{}.Validate(), commands.ErrValidationResultCommandIsNotConstructed},
			{"allocation result", commands.AllocationResultCommand{}.Validate(), commands.ErrAllocationResultCommandIsNotConstructed},
			{"create order", commands.CreateOrderCommand{}.Validate(), commands.ErrCreateOrderCommandIsNotConstructed},
			{"relay outbox", commands.RelayOutboxCommand{}.Validate(), commands.ErrRelayOutboxCommandIsNotConstructed},
			{"redrive stale orders", commands.RedriveStaleOrdersCommand{}.Validate(), commands.ErrRedriveStaleOrdersCommandIsNotConstructed},
		}
		for _, tc := range cases {
			assert.ErrorIsf(t, tc.err, tc.want, "%s command", tc.name)
		}
	})

	t.Run("should accept commands built by their constructors", func(t *testing.T) {
		validation, err := commands.NewValidationResultCommand(kernel.NewUUID(), true)
		require.NoError(t, err)
		relay, err := commands.NewRelayOutboxCommand(time.Now(), 10)
		require.NoError(t, err)

		assert.NoError(t, validation.Validate())
		assert.NoError(t, relay.Validate())
	})
}
