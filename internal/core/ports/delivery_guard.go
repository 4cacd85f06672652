package ports

import "context"

// DeliveryGuard serialises saga steps that target the same key (an order id).
// Lock blocks until the key is free or ctx is done; the returned function
// releases the key and is safe to call more than once.
type DeliveryGuard interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}
