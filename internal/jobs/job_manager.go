package jobs

import (
	"fmt"
	"log/slog"
	"time"
)

// Config holds the schedules of the background jobs.
type Config struct {
	RelayInterval  time.Duration
	RelayDelay     time.Duration
	SweepInterval  time.Duration
	RedriveAfter   time.Duration
	PendingTimeout time.Duration
	BatchSize      int
}

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	outboxRelayJob *OutboxRelayJob
	staleOrderJob  *StaleOrderJob
}

// NewJobManager creates a new job manager with all required jobs.
func NewJobManager(
	relayer OutboxRelayer,
	redriver StaleOrderRedriver,
	cfg Config,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		outboxRelayJob: NewOutboxRelayJob(relayer, cfg.RelayInterval, cfg.RelayDelay, cfg.BatchSize, logger),
		staleOrderJob: NewStaleOrderJob(
			redriver, cfg.SweepInterval, cfg.RedriveAfter, cfg.PendingTimeout, cfg.BatchSize, logger,
		),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.outboxRelayJob.Start(); err != nil {
		return fmt.Errorf("failed to start outbox relay job: %w", err)
	}

	if err := jm.staleOrderJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.outboxRelayJob.Stop()
		return fmt.Errorf("failed to start stale order job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.staleOrderJob.Stop()
	jm.outboxRelayJob.Stop()
}
