// Package pgnotify turns postgres status notifications into in-process
// status announcements, so a waiter on one instance sees commits made by
// another.
package pgnotify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"beerorder/internal/core/domain/model/kernel"
	"beerorder/internal/core/domain/model/order"

	"github.com/lib/pq"
)

const (
	minReconnectInterval = 100 * time.Millisecond
	maxReconnectInterval = 10 * time.Second
	pingInterval         = time.Minute
)

type StatusPublisher interface {
	Publish(orderID kernel.UUID, status order.Status)
}

type StatusListener struct {
	dsn       string
	channel   string
	publisher StatusPublisher
	logger    *slog.Logger
}

func NewStatusListener(dsn, channel string, publisher StatusPublisher, logger *slog.Logger) *StatusListener {
	return &StatusListener{
		dsn:       dsn,
		channel:   channel,
		publisher: publisher,
		logger:    logger.With("component", "status_listener"),
	}
}

// Run listens until ctx is done. Notifications lost while reconnecting are
// not replayed; waiters fall back to polling.
func (l *StatusListener) Run(ctx context.Context) error {
	listener := pq.NewListener(l.dsn, minReconnectInterval, maxReconnectInterval,
		func(event pq.ListenerEventType, err error) {
			if err != nil {
				l.logger.Warn("Listener connection event", "event", int(event), "error", err)
			}
		})
	defer listener.Close()

	if err := listener.Listen(l.channel); err != nil {
		return fmt.Errorf("listen on %s: %w", l.channel, err)
	}
	l.logger.Info("Listening for status notifications", "channel", l.channel)

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-listener.Notify:
			// nil after a reconnect
			if n == nil {
				continue
			}
			l.handle(n.Extra)
		case <-ticker.C:
			if err := listener.Ping(); err != nil {
				l.logger.Warn("Listener ping failed", "error", err)
			}
		}
	}
}

func (l *StatusListener) handle(payload string) {
	orderID, status, err := ParsePayload(payload)
	if err != nil {
		l.logger.Warn("Malformed status notification", "payload", payload, "error", err)
		return
	}
	l.publisher.Publish(orderID, status)
}

// ParsePayload splits an "<order id>:<status name>" notification.
func ParsePayload(payload string) (kernel.UUID, order.Status, error) {
	rawID, rawStatus, ok := strings.Cut(payload, ":")
	if !ok {
		return kernel.UUID{}, order.Unknown, fmt.Errorf("missing separator in %q", payload)
	}

	orderID, err := kernel.UUIDFromString(rawID)
	if err != nil {
		return kernel.UUID{}, order.Unknown, err
	}

	status, err := order.ParseStatus(rawStatus)
	if err != nil {
		return kernel.UUID{}, order.Unknown, err
	}

	return orderID, status, nil
}
