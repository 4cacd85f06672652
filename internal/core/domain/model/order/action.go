package order

// Action is the side effect attached to a transition. ActionNone means the
// transition only changes state.
type Action int

const (
	ActionNone Action = iota
	// ActionValidateOrder sends ValidateOrderCommand to the validation service.
	ActionValidateOrder
	// ActionValidationFailure is the compensating hook for a rejected order.
	// Nothing is sent downstream; the dispatcher records it in the log.
	ActionValidationFailure
	// ActionAllocateOrder sends AllocateOrderCommand to the allocation service.
	ActionAllocateOrder
	// ActionAllocationFailure sends AllocationFailureNotice.
	ActionAllocationFailure
	// ActionDeallocateOrder sends DeallocateOrderCommand to release inventory.
	ActionDeallocateOrder
)

var actionNames = map[Action]string{
	ActionNone:              "NONE",
	ActionValidateOrder:     "VALIDATE_ORDER",
	ActionValidationFailure: "VALIDATION_FAILURE",
	ActionAllocateOrder:     "ALLOCATE_ORDER",
	ActionAllocationFailure: "ALLOCATION_FAILURE",
	ActionDeallocateOrder:   "DEALLOCATE_ORDER",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "UNKNOWN_ACTION"
}
