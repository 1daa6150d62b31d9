// Package jobs provides scheduled background tasks for the order flow system.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle periodic operations.
//
// # Available Jobs
//
// 1. DispatchJob - Runs every 30 seconds to match the approved dispatch
// backlog against available couriers within the configured radius.
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	jobManager := jobs.NewJobManager(dispatchHandler, radiusKm, logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	defer jobManager.StopAll()
//
// # Error Handling
//
// Cycles that scan an empty backlog are the normal idle state and are not
// logged. Store failures are logged and the cycle is retried on the next
// tick; they never stop the scheduler.
package jobs
