package jobs

import (
	"context"
	"log/slog"
	"time"

	"beerorder/internal/core/application/usecases/commands"
	"beerorder/internal/pkg/errs"

	"github.com/robfig/cron/v3"
)

type StaleOrderRedriver interface {
	Handle(ctx context.Context, cmd commands.RedriveStaleOrdersCommand) (int, error)
}

// StaleOrderJob sweeps orders that stopped moving: NEW and VALIDATED orders
// older than redriveAfter are pushed forward again, orders still waiting on
// a reply after pendingTimeout are reported.
type StaleOrderJob struct {
	redriver       StaleOrderRedriver
	interval       time.Duration
	redriveAfter   time.Duration
	pendingTimeout time.Duration
	batchSize      int
	now            func() time.Time
	cron           *cron.Cron
	logger         *slog.Logger
}

func NewStaleOrderJob(
	redriver StaleOrderRedriver,
	interval, redriveAfter, pendingTimeout time.Duration,
	batchSize int,
	logger *slog.Logger,
) *StaleOrderJob {
	return &StaleOrderJob{
		redriver:       redriver,
		interval:       interval,
		redriveAfter:   redriveAfter,
		pendingTimeout: pendingTimeout,
		batchSize:      batchSize,
		now:            time.Now,
		cron:           cron.New(cron.WithSeconds()),
		logger:         logger.With("component", "stale_order_job"),
	}
}

func (j *StaleOrderJob) Start() error {
	if j.interval <= 0 {
		return errs.NewValueIsOutOfRangeError("sweepInterval", j.interval, time.Second, "unbounded")
	}

	_, err := j.cron.AddFunc(everySpec(j.interval), func() {
		j.run(context.Background())
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Stale order job started", "interval", j.interval.String())
	return nil
}

func (j *StaleOrderJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Stale order job stopped")
}

func (j *StaleOrderJob) run(ctx context.Context) {
	now := j.now()
	cmd, err := commands.NewRedriveStaleOrdersCommand(now.Add(-j.redriveAfter), now.Add(-j.pendingTimeout), j.batchSize)
	if err != nil {
		j.logger.ErrorContext(ctx, "Stale order sweep misconfigured", "error", err)
		return
	}

	if _, err = j.redriver.Handle(ctx, cmd); err != nil {
		j.logger.ErrorContext(ctx, "Stale order job failed", "error", err)
	}
}
