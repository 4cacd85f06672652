// Package order contains the Order aggregate and the beer order saga it runs.
//
// The saga is a static transition table keyed by (Status, Event). Fire is a
// pure lookup over that table and Order.Apply is the only way an order changes
// status. The table is checked once at package initialisation; a malformed
// table panics before the service accepts any traffic.
//
// Terminal states are PICKED_UP, CANCELLED, VALIDATION_EXCEPTION and
// ALLOCATION_EXCEPTION. PENDING_INVENTORY has no outgoing edge either; it waits
// for inventory replenishment, which this service does not drive.
package order
