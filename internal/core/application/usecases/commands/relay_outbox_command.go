package commands

import (
	"errors"
	"time"

	"beerorder/internal/pkg/errs"
	"beerorder/internal/pkg/guard"
)

var ErrRelayOutboxCommandIsNotConstructed = errors.New(
	"RelayOutboxCommand must be created via NewRelayOutboxCommand constructor",
)

// RelayOutboxCommand resends pending outbox messages created before a
// cut-off. The cut-off keeps the relay away from messages whose first send
// is still in flight.
//
// Example:
//
//	cmd, err := NewRelayOutboxCommand(time.Now().Add(-10*time.Second), 100)
//	if err != nil {
//	    return err
//	}
//	sent, err := handler.Handle(ctx, cmd)
type RelayOutboxCommand struct {
	createdBefore time.Time
	batchSize     int

	guard guard.ConstructorGuard
}

func NewRelayOutboxCommand(createdBefore time.Time, batchSize int) (RelayOutboxCommand, error) {
	if createdBefore.IsZero() {
		return RelayOutboxCommand{}, errs.NewValueIsRequiredError("createdBefore")
	}
	if batchSize < 1 {
		return RelayOutboxCommand{}, errs.NewValueIsOutOfRangeError("batchSize", batchSize, 1, "unbounded")
	}

	return RelayOutboxCommand{
		createdBefore: createdBefore,
		batchSize:     batchSize,
		guard:         guard.NewConstructorGuard(),
	}, nil
}

func (c RelayOutboxCommand) Validate() error {
	return c.guard.Validate(ErrRelayOutboxCommandIsNotConstructed)
}

func (c RelayOutboxCommand) CreatedBefore() time.Time {
	return c.createdBefore
}

func (c RelayOutboxCommand) BatchSize() int {
	return c.batchSize
}
