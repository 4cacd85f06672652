package cmd

import (
	"errors"
	"log/slog"

	httpin "beerorder/internal/adapters/in/http"
	kafkain "beerorder/internal/adapters/in/kafka"
	"beerorder/internal/adapters/in/pgnotify"
	kafkaout "beerorder/internal/adapters/out/kafka"
	"beerorder/internal/adapters/out/postgres"
	"beerorder/internal/adapters/out/postgres/orderrepo"
	"beerorder/internal/adapters/out/redislock"
	"beerorder/internal/core/application/dispatch"
	"beerorder/internal/core/application/locking"
	"beerorder/internal/core/application/usecases/commands"
	"beerorder/internal/core/application/usecases/queries"
	"beerorder/internal/core/application/waiter"
	"beerorder/internal/core/ports"
	"beerorder/internal/jobs"
	"beerorder/internal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CompositionRoot owns the long-lived collaborators of the service. The
// orchestrator and everything it depends on are built once, so the HTTP
// server, the Kafka consumer and the jobs share one guard and one broker.
type CompositionRoot struct {
	cfg        Config
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	logger     *slog.Logger

	registry  *prometheus.Registry
	recorder  *metrics.Recorder
	broker    *waiter.StatusBroker
	publisher *kafkaout.CommandPublisher
	redis     *redis.Client

	orchestrator *commands.OrderOrchestrator
	dispatcher   *dispatch.ActionDispatcher
}

func NewCompositionRoot(cfg Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	recorder, err := metrics.NewRecorder(registry)
	if err != nil {
		return nil, err
	}

	c := &CompositionRoot{
		cfg:        cfg,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		logger:     logger,
		registry:   registry,
		recorder:   recorder,
		broker:     waiter.NewStatusBroker(),
		publisher:  kafkaout.NewCommandPublisher(cfg.KafkaBrokers...),
	}

	c.dispatcher = dispatch.NewActionDispatcher(c.publisher, dispatch.Topics{
		ValidateOrder:     cfg.KafkaValidateOrderTopic,
		AllocateOrder:     cfg.KafkaAllocateOrderTopic,
		AllocationFailure: cfg.KafkaAllocationFailedTopic,
		DeallocateOrder:   cfg.KafkaDeallocateOrderTopic,
	}, recorder, logger)

	consistency := waiter.NewConsistencyWaiter(orderrepo.NewGormOrderRepository(gormDB), logger,
		waiter.WithBroker(c.broker),
		waiter.WithInterval(cfg.WaitInterval),
		waiter.WithAttempts(cfg.WaitAttempts),
		waiter.WithMetrics(recorder),
	)

	c.orchestrator = commands.NewOrderOrchestrator(
		c.orderUoWFactory(), c.deliveryGuard(), c.dispatcher, consistency, c.broker, recorder, logger,
	)

	return c, nil
}

func (c *CompositionRoot) Registry() *prometheus.Registry {
	return c.registry
}

func (c *CompositionRoot) OrderOrchestrator() *commands.OrderOrchestrator {
	return c.orchestrator
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListOrdersQueryHandler() queries.ListOrdersQueryHandler {
	return queries.NewListOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateRelayOutboxCommandHandler() commands.RelayOutboxCommandHandler {
	return commands.NewRelayOutboxCommandHandler(c.orderUoWFactory(), c.dispatcher, c.logger)
}

func (c *CompositionRoot) CreateRedriveStaleOrdersCommandHandler() commands.RedriveStaleOrdersCommandHandler {
	return commands.NewRedriveStaleOrdersCommandHandler(
		queries.NewGetStaleOrdersQueryHandler(c.gormDB), c.orchestrator, c.recorder, c.logger,
	)
}

func (c *CompositionRoot) CreateHTTPServer() *httpin.Server {
	return httpin.NewServer(
		c.orchestrator,
		c.CreateGetOrderQueryHandler(),
		c.CreateListOrdersQueryHandler(),
		c.logger,
	)
}

func (c *CompositionRoot) CreateResultConsumer() *kafkain.ResultConsumer {
	return kafkain.NewResultConsumer(kafkain.Config{
		Brokers:               c.cfg.KafkaBrokers,
		GroupID:               c.cfg.KafkaConsumerGroup,
		ValidationResultTopic: c.cfg.KafkaValidationResultTopic,
		AllocationResultTopic: c.cfg.KafkaAllocationResultTopic,
		Concurrency:           c.cfg.ConsumerConcurrency,
	}, c.orchestrator, c.logger)
}

func (c *CompositionRoot) CreateStatusListener() *pgnotify.StatusListener {
	return pgnotify.NewStatusListener(c.cfg.DSN(), orderrepo.StatusChannel, c.broker, c.logger)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		c.CreateRelayOutboxCommandHandler(),
		c.CreateRedriveStaleOrdersCommandHandler(),
		jobs.Config{
			RelayInterval:  c.cfg.OutboxRelayInterval,
			RelayDelay:     c.cfg.OutboxRelayDelay,
			SweepInterval:  c.cfg.StaleSweepInterval,
			RedriveAfter:   c.cfg.RedriveAfter,
			PendingTimeout: c.cfg.PendingTimeout,
			BatchSize:      c.cfg.JobBatchSize,
		},
		c.logger,
	)
}

// Close releases the connections opened by the root.
func (c *CompositionRoot) Close() error {
	err := c.publisher.Close()
	if c.redis != nil {
		err = errors.Join(err, c.redis.Close())
	}
	return err
}

func (c *CompositionRoot) deliveryGuard() ports.DeliveryGuard {
	local := locking.NewEventDeliveryGuard()
	if c.cfg.GuardBackend != GuardBackendRedis {
		return local
	}

	c.redis = redis.NewClient(&redis.Options{Addr: c.cfg.RedisAddr})
	return locking.NewLayeredGuard(local, redislock.NewLocker(c.redis, c.logger, redislock.WithTTL(c.cfg.RedisLockTTL)))
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}
