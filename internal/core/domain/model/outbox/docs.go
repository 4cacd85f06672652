// Package outbox models commands that must reach a downstream service after
// the order transition that produced them has been committed.
package outbox
