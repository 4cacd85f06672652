// Package services provides domain services that decide business outcomes
// spanning an order and the data reported about it by other services. It
// implements rules that don't naturally belong to the order aggregate alone.
//
// The package includes:
//   - AllocationResolver: turns an allocation reply into the saga event it stands for
//
// Domain services hold no state and perform no I/O; the application layer
// loads the aggregate, asks the service and fires the resulting event.
package services
