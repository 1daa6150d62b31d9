package jobs

import (
	"context"
	"log/slog"

	"orderflow/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// DispatchJob runs the dispatch cycle on a schedule, matching the approved
// dispatch backlog against the available courier pool.
type DispatchJob struct {
	handler  commands.RunDispatchCycleCommandHandler
	radiusKm float64
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewDispatchJob creates a new job that runs the dispatch cycle every
// 30 seconds with the configured matching radius.
func NewDispatchJob(
	handler commands.RunDispatchCycleCommandHandler,
	radiusKm float64,
	logger *slog.Logger,
) *DispatchJob {
	return &DispatchJob{
		handler:  handler,
		radiusKm: radiusKm,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With("component", "dispatch_job"),
	}
}

// Start begins the dispatch job.
func (j *DispatchJob) Start() error {
	_, err := j.cron.AddFunc("*/30 * * * * *", func() {
		ctx := context.Background()

		cmd, err := commands.NewRunDispatchCycleCommand(j.radiusKm)
		if err != nil {
			j.logger.ErrorContext(ctx, "Dispatch job misconfigured", "error", err)
			return
		}

		result, err := j.handler.Handle(ctx, cmd)
		if err != nil {
			j.logger.ErrorContext(ctx, "Dispatch cycle failed", "error", err)
			return
		}

		// An empty backlog is the normal idle state, not worth a log line.
		if result.Scanned > 0 {
			j.logger.InfoContext(ctx, "Dispatch cycle completed",
				"scanned", result.Scanned,
				"assigned", result.Assigned,
			)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Dispatch job started (running every 30 seconds)")
	return nil
}

// Stop stops the dispatch job.
func (j *DispatchJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Dispatch job stopped")
}
