package worker

import (
	"context"
	"time"

	"github.com/mcbagz/edSIS/internal/config"
	"github.com/mcbagz/edSIS/internal/logger"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ScheduleWorker runs a full sync every configured interval.
type ScheduleWorker struct {
	cfg       *config.Config
	newRunner RunnerFactory
	timer     *time.Timer
	log       zerolog.Logger
}

func NewScheduleWorker(cfg *config.Config, newRunner RunnerFactory) *ScheduleWorker {
	return &ScheduleWorker{
		cfg:       cfg,
		newRunner: newRunner,
		log:       logger.Get(),
	}
}

func (w *ScheduleWorker) Start(ctx context.Context) error {
	interval := w.cfg.Workers.Schedule.Interval
	w.log.Info().Dur("interval", interval).Msg("Starting schedule worker")

	if w.cfg.Workers.Schedule.RunOnStart {
		w.log.Info().Msg("Running initial sync on startup")
		w.syncOnce(ctx)
	}

	// The interval is measured from the end of one run to the start of the
	// next, so a slow run never overlaps the following one.
	w.timer = time.NewTimer(interval)
	w.log.Info().Time("next_run", time.Now().Add(interval)).Msg("Scheduled next sync")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Schedule worker context cancelled")
			return ctx.Err()
		case <-w.timer.C:
			w.log.Info().Msg("Starting scheduled sync")
			w.syncOnce(ctx)

			w.log.Info().Time("next_run", time.Now().Add(interval)).Msg("Scheduled next sync")
			w.timer.Reset(interval)
		}
	}
}

func (w *ScheduleWorker) Stop() {
	w.log.Info().Msg("Stopping schedule worker")
	if w.timer != nil {
		w.timer.Stop()
	}
}

// syncOnce logs failures instead of returning them so one bad run never
// stops the schedule.
func (w *ScheduleWorker) syncOnce(ctx context.Context) {
	runner, err := w.newRunner("")
	if err != nil {
		w.log.Error().Err(err).Msg("Failed to build pipeline")
		return
	}

	summary, err := runner.RunWithID(ctx, uuid.NewString())
	if err != nil {
		w.log.Error().Err(err).Msg("Scheduled sync aborted")
		return
	}
	w.log.Info().
		Str("run_id", summary.RunID).
		Int("schools", summary.Schools.Succeeded).
		Int("students", summary.Students.Succeeded).
		Msg("Scheduled sync completed")
}
