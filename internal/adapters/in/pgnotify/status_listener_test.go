package pgnotify_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"beerorder/internal/adapters/in/pgnotify"
	"beerorder/internal/adapters/out/postgres/migrations"
	"beerorder/internal/adapters/out/postgres/orderrepo"
	"beerorder/internal/core/domain/model/kernel"
	"beerorder/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestParsePayload(t *testing.T) {
	id := kernel.NewUUID()

	t.Run("should split id and status", func(t *testing.T) {
		gotID, status, err := pgnotify.ParsePayload(id.String() + ":ALLOCATED")
		require.NoError(t, err)
		assert.Equal(t, id, gotID)
		assert.Equal(t, order.Allocated, status)
	})

	t.Run("should reject malformed payloads", func(t *testing.T) {
		for _, payload := range []string{"", id.String(), "nope:ALLOCATED", id.String() + ":SHIPPED"} {
			_, _, err := pgnotify.ParsePayload(payload)
			assert.Errorf(t, err, "payload %q", payload)
		}
	})
}

type capturingPublisher struct {
	mu   sync.Mutex
	seen map[kernel.UUID]order.Status
}

func (p *capturingPublisher) Publish(id kernel.UUID, status order.Status) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen[id] = status
}

func (p *capturingPublisher) status(id kernel.UUID) order.Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.seen[id]
}

func TestStatusListener_ReceivesCommittedUpdates(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	db, err := gorm.Open(postgresdriver.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, migrations.Up(sqlDB))

	publisher := &capturingPublisher{seen: make(map[kernel.UUID]order.Status)}
	listener := pgnotify.NewStatusListener(dsn, orderrepo.StatusChannel, publisher, slog.New(slog.NewTextHandler(io.Discard, nil)))

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- listener.Run(runCtx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	line, err := order.NewLine(kernel.NewUUID(), "0631234200036", 1)
	require.NoError(t, err)
	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), "", []*order.Line{line})
	require.NoError(t, err)

	repo := orderrepo.NewGormOrderRepository(db)
	require.NoError(t, repo.Add(ctx, o))

	// Listen is asynchronous to Run; keep updating until one notification lands.
	_, err = o.Apply(order.ValidateOrder)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		if updateErr := repo.Update(ctx, o); updateErr != nil {
			return false
		}
		return publisher.status(o.ID()) == order.ValidationPending
	}, 10*time.Second, 100*time.Millisecond)
}
