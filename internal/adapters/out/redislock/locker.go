// Package redislock implements the order delivery guard across service
// instances with a redis lease per order.
package redislock

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"beerorder/internal/core/domain/model/kernel"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultTTL           = 30 * time.Second
	DefaultRetryInterval = 25 * time.Millisecond
	DefaultPrefix        = "beer-order:lock:"

	releaseTimeout = 2 * time.Second
)

// releaseScript deletes the lease only while it still carries our token, so
// an expired lease taken over by another holder is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type Option func(*Locker)

func WithTTL(ttl time.Duration) Option {
	return func(l *Locker) { l.ttl = ttl }
}

func WithRetryInterval(interval time.Duration) Option {
	return func(l *Locker) { l.retryInterval = interval }
}

func WithPrefix(prefix string) Option {
	return func(l *Locker) { l.prefix = prefix }
}

// Locker implements ports.DeliveryGuard. A lease expires after its TTL even
// if the holder crashes; the TTL must exceed the longest saga step.
type Locker struct {
	client        redis.UniversalClient
	ttl           time.Duration
	retryInterval time.Duration
	prefix        string
	logger        *slog.Logger
}

func NewLocker(client redis.UniversalClient, logger *slog.Logger, opts ...Option) *Locker {
	l := &Locker{
		client:        client,
		ttl:           DefaultTTL,
		retryInterval: DefaultRetryInterval,
		prefix:        DefaultPrefix,
		logger:        logger.With("component", "redis_locker"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Lock polls SET NX until the lease is taken or ctx is done.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	name := l.prefix + key
	token := kernel.NewUUID().String()

	ticker := time.NewTicker(l.retryInterval)
	defer ticker.Stop()

	for {
		acquired, err := l.client.SetNX(ctx, name, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lease %s: %w", name, err)
		}
		if acquired {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			releaseCtx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
			defer cancel()
			if err := releaseScript.Run(releaseCtx, l.client, []string{name}, token).Err(); err != nil {
				l.logger.Warn("Lease release failed, it expires on its own",
					"key", name,
					"error", err,
				)
			}
		})
	}, nil
}
