package commands

import (
	"errors"
	"time"

	"beerorder/internal/pkg/errs"
	"beerorder/internal/pkg/guard"
)

var ErrRedriveStaleOrdersCommandIsNotConstructed = errors.New(
	"RedriveStaleOrdersCommand must be created via NewRedriveStaleOrdersCommand constructor",
)

// RedriveStaleOrdersCommand sweeps orders that stopped moving. Orders left
// at NEW or VALIDATED before redriveBefore get their missed step repeated;
// orders still waiting on a downstream reply since before pendingBefore are
// reported.
type RedriveStaleOrdersCommand struct {
	redriveBefore time.Time
	pendingBefore time.Time
	batchSize     int

	guard guard.ConstructorGuard
}

func NewRedriveStaleOrdersCommand(redriveBefore, pendingBefore time.Time, batchSize int) (RedriveStaleOrdersCommand, error) {
	if redriveBefore.IsZero() {
		return RedriveStaleOrdersCommand{}, errs.NewValueIsRequiredError("redriveBefore")
	}
	if pendingBefore.IsZero() {
		return RedriveStaleOrdersCommand{}, errs.NewValueIsRequiredError("pendingBefore")
	}
	if batchSize < 1 {
		return RedriveStaleOrdersCommand{}, errs.NewValueIsOutOfRangeError("batchSize", batchSize, 1, "unbounded")
	}

	return RedriveStaleOrdersCommand{
		redriveBefore: redriveBefore,
		pendingBefore: pendingBefore,
		batchSize:     batchSize,
		guard:         guard.NewConstructorGuard(),
	}, nil
}

func (c RedriveStaleOrdersCommand) Validate() error {
	return c.guard.Validate(ErrRedriveStaleOrdersCommandIsNotConstructed)
}
