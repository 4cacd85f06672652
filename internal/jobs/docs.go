// Package jobs provides scheduled background tasks for the order saga.
//
// Jobs are cron-based (github.com/robfig/cron/v3) and only call command
// handlers, so every state change still goes through the orchestrator and its
// per-order guard.
//
// # Available Jobs
//
// 1. OutboxRelayJob - resends commands whose dispatch failed after the
// transition committed
// 2. StaleOrderJob - re-drives NEW and VALIDATED orders that stopped moving and
// reports orders left waiting on a reply
//
// # Usage
//
//	jobManager := jobs.NewJobManager(relayHandler, redriveHandler, jobs.Config{
//		RelayInterval:  5 * time.Second,
//		RelayDelay:     10 * time.Second,
//		SweepInterval:  time.Minute,
//		RedriveAfter:   time.Minute,
//		PendingTimeout: 15 * time.Minute,
//		BatchSize:      100,
//	}, logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// - Handler errors are logged; the next tick retries
// - Failed job starts will stop any already running jobs
package jobs
