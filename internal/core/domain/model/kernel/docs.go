// Package kernel holds the value objects shared by every aggregate of the beer
// order service. Today that is only UUID, the identifier type used for orders,
// order lines, customers and outbox messages.
package kernel
