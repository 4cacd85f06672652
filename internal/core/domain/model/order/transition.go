package order

import (
	"errors"
	"fmt"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
)

// ErrInvalidTransition is wrapped by every InvalidTransitionError.
var ErrInvalidTransition = errors.New("invalid transition")

// InvalidTransitionError is returned by Fire when the table has no edge for
// (From, Event).
type InvalidTransitionError struct {
	From  Status
	Event Event
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: event %s is not accepted in state %s", ErrInvalidTransition, e.Event, e.From)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// Transition is one edge of the saga.
type Transition struct {
	From   Status
	Event  Event
	To     Status
	Action Action
}

type transitionKey struct {
	from  Status
	event Event
}

var transitions = []Transition{
	{From: New, Event: ValidateOrder, To: ValidationPending, Action: ActionValidateOrder},
	{From: ValidationPending, Event: ValidationSuccess, To: Validated},
	{From: ValidationPending, Event: ValidationFailed, To: ValidationException, Action: ActionValidationFailure},
	{From: ValidationPending, Event: CancelOrder, To: Cancelled},
	{From: Validated, Event: AllocateOrder, To: AllocationPending, Action: ActionAllocateOrder},
	{From: Validated, Event: CancelOrder, To: Cancelled},
	{From: AllocationPending, Event: AllocationSuccess, To: Allocated},
	{From: AllocationPending, Event: AllocationFailed, To: AllocationException, Action: ActionAllocationFailure},
	{From: AllocationPending, Event: AllocationNoInventory, To: PendingInventory},
	{From: AllocationPending, Event: CancelOrder, To: Cancelled},
	{From: Allocated, Event: BeerOrderPickedUp, To: PickedUp},
	{From: Allocated, Event: CancelOrder, To: Cancelled, Action: ActionDeallocateOrder},
}

var (
	transitionTable = indexTransitions(transitions)

	terminalStatuses = mapset.NewSet(PickedUp, Cancelled, ValidationException, AllocationException)

	cancelableStatuses = sourcesOf(transitions, CancelOrder)
)

func init() {
	if err := ValidateTransitionTable(transitions); err != nil {
		panic(err)
	}
}

// Fire looks up the edge for (from, event). It is pure: the caller decides
// whether to persist the returned target state and run its action.
func Fire(from Status, event Event) (Transition, error) {
	t, ok := transitionTable[transitionKey{from: from, event: event}]
	if !ok {
		return Transition{}, &InvalidTransitionError{From: from, Event: event}
	}
	return t, nil
}

// Transitions returns a copy of the table.
func Transitions() []Transition {
	return slices.Clone(transitions)
}

// ValidateTransitionTable checks a table for the properties the saga relies on:
// known states and events only, one edge per (state, event), no edge out of a
// terminal state and every state reachable from NEW.
func ValidateTransitionTable(table []Transition) error {
	seen := make(map[transitionKey]struct{}, len(table))
	var problems []error

	for _, t := range table {
		if err := errors.Join(t.From.Validate(), t.To.Validate(), t.Event.Validate()); err != nil {
			problems = append(problems, fmt.Errorf("edge %s --%s--> %s: %w", t.From, t.Event, t.To, err))
			continue
		}

		key := transitionKey{from: t.From, event: t.Event}
		if _, dup := seen[key]; dup {
			problems = append(problems, fmt.Errorf("duplicate edge for %s on %s", t.From, t.Event))
		}
		seen[key] = struct{}{}

		if terminalStatuses.Contains(t.From) {
			problems = append(problems, fmt.Errorf("terminal state %s has outgoing edge on %s", t.From, t.Event))
		}
	}

	reachable := reachableFrom(New, table)
	for _, s := range AllStatuses() {
		if !reachable.Contains(s) {
			problems = append(problems, fmt.Errorf("state %s is unreachable from %s", s, New))
		}
	}

	return errors.Join(problems...)
}

func indexTransitions(table []Transition) map[transitionKey]Transition {
	index := make(map[transitionKey]Transition, len(table))
	for _, t := range table {
		index[transitionKey{from: t.From, event: t.Event}] = t
	}
	return index
}

func sourcesOf(table []Transition, event Event) mapset.Set[Status] {
	sources := mapset.NewSet[Status]()
	for _, t := range table {
		if t.Event == event {
			sources.Add(t.From)
		}
	}
	return sources
}

func reachableFrom(start Status, table []Transition) mapset.Set[Status] {
	visited := mapset.NewSet(start)
	queue := []Status{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, t := range table {
			if t.From == current && visited.Add(t.To) {
				queue = append(queue, t.To)
			}
		}
	}
	return visited
}
