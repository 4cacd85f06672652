package kafka

import (
	"encoding/json"
	"fmt"

	"beerorder/internal/core/application/usecases/commands"
	"beerorder/internal/core/domain/model/kernel"
	"beerorder/internal/core/domain/model/order"
)

// ValidateOrderResult is the reply of the validation service.
type ValidateOrderResult struct {
	OrderID string `json:"orderId"`
	IsValid bool   `json:"isValid"`
}

type AllocatedLine struct {
	LineID            string `json:"lineId"`
	QuantityAllocated int    `json:"quantityAllocated"`
}

// AllocateOrderResult is the reply of the allocation service.
type AllocateOrderResult struct {
	OrderID          string          `json:"orderId"`
	Lines            []AllocatedLine `json:"lines"`
	AllocationError  bool            `json:"allocationError"`
	PendingInventory bool            `json:"pendingInventory"`
}

func decodeValidationResult(value []byte) (commands.ValidationResultCommand, error) {
	var result ValidateOrderResult
	if err := json.Unmarshal(value, &result); err != nil {
		return commands.ValidationResultCommand{}, fmt.Errorf("decode validation result: %w", err)
	}

	orderID, err := kernel.UUIDFromString(result.OrderID)
	if err != nil {
		return commands.ValidationResultCommand{}, err
	}

	return commands.NewValidationResultCommand(orderID, result.IsValid)
}

func decodeAllocationResult(value []byte) (commands.AllocationResultCommand, error) {
	var result AllocateOrderResult
	if err := json.Unmarshal(value, &result); err != nil {
		return commands.AllocationResultCommand{}, fmt.Errorf("decode allocation result: %w", err)
	}

	orderID, err := kernel.UUIDFromString(result.OrderID)
	if err != nil {
		return commands.AllocationResultCommand{}, err
	}

	allocations := make([]order.LineAllocation, 0, len(result.Lines))
	for _, l := range result.Lines {
		lineID, lineErr := kernel.UUIDFromString(l.LineID)
		if lineErr != nil {
			return commands.AllocationResultCommand{}, fmt.Errorf("line %q: %w", l.LineID, lineErr)
		}
		allocations = append(allocations, order.LineAllocation{LineID: lineID, QuantityAllocated: l.QuantityAllocated})
	}

	return commands.NewAllocationResultCommand(orderID, allocations, result.AllocationError, result.PendingInventory)
}
