package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"beerorder/internal/core/application/usecases/commands"
	"beerorder/internal/pkg/errs"

	"github.com/robfig/cron/v3"
)

type OutboxRelayer interface {
	Handle(ctx context.Context, cmd commands.RelayOutboxCommand) (int, error)
}

// OutboxRelayJob resends outbox messages whose dispatch failed. Messages
// younger than delay are skipped so the relay does not race the
// orchestrator's own post-commit dispatch.
type OutboxRelayJob struct {
	relayer   OutboxRelayer
	interval  time.Duration
	delay     time.Duration
	batchSize int
	now       func() time.Time
	cron      *cron.Cron
	logger    *slog.Logger
}

func NewOutboxRelayJob(
	relayer OutboxRelayer,
	interval, delay time.Duration,
	batchSize int,
	logger *slog.Logger,
) *OutboxRelayJob {
	return &OutboxRelayJob{
		relayer:   relayer,
		interval:  interval,
		delay:     delay,
		batchSize: batchSize,
		now:       time.Now,
		cron:      cron.New(cron.WithSeconds()),
		logger:    logger.With("component", "outbox_relay_job"),
	}
}

// Start schedules the relay every interval.
func (j *OutboxRelayJob) Start() error {
	if j.interval <= 0 {
		return errs.NewValueIsOutOfRangeError("relayInterval", j.interval, time.Second, "unbounded")
	}

	_, err := j.cron.AddFunc(everySpec(j.interval), func() {
		j.run(context.Background())
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Outbox relay job started", "interval", j.interval.String())
	return nil
}

// Stop waits for a running relay to finish.
func (j *OutboxRelayJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Outbox relay job stopped")
}

func (j *OutboxRelayJob) run(ctx context.Context) {
	cmd, err := commands.NewRelayOutboxCommand(j.now().Add(-j.delay), j.batchSize)
	if err != nil {
		j.logger.ErrorContext(ctx, "Outbox relay misconfigured", "error", err)
		return
	}

	if _, err = j.relayer.Handle(ctx, cmd); err != nil {
		j.logger.ErrorContext(ctx, "Outbox relay job failed", "error", err)
	}
}

func everySpec(interval time.Duration) string {
	return fmt.Sprintf("@every %s", interval)
}
