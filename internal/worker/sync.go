package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mcbagz/edSIS/internal/logger"
	"github.com/mcbagz/edSIS/internal/model"
	"github.com/mcbagz/edSIS/internal/queue"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SyncWorker runs queued sync jobs one after another. Runs are never
// overlapped: Ed-Fi uploads must stay strictly ordered.
type SyncWorker struct {
	consumer  *queue.Consumer
	newRunner RunnerFactory
	log       zerolog.Logger
}

func NewSyncWorker(consumer *queue.Consumer, newRunner RunnerFactory) *SyncWorker {
	return &SyncWorker{
		consumer:  consumer,
		newRunner: newRunner,
		log:       logger.Get(),
	}
}

func (w *SyncWorker) Start(ctx context.Context) error {
	w.log.Info().Msg("Starting sync worker")
	return w.consumer.ConsumeSyncQueue(ctx, w.handleMessage)
}

func (w *SyncWorker) Stop() {
	w.log.Info().Msg("Stopping sync worker")
}

func (w *SyncWorker) handleMessage(ctx context.Context, data []byte) error {
	var job model.SyncJob
	if err := json.Unmarshal(data, &job); err != nil {
		w.log.Error().Err(err).Msg("Failed to unmarshal sync job")
		return err
	}
	if job.RunID == "" {
		job.RunID = uuid.NewString()
	}

	log := w.log.With().Str("run_id", job.RunID).Str("source", job.Source).Logger()
	log.Info().Time("requested_at", job.RequestedAt).Msg("Processing sync job")

	runner, err := w.newRunner(job.Source)
	if err != nil {
		log.Error().Err(err).Msg("Failed to build pipeline")
		return fmt.Errorf("run %s: %w", job.RunID, err)
	}

	summary, err := runner.RunWithID(ctx, job.RunID)
	if err != nil {
		return fmt.Errorf("run %s aborted: %w", job.RunID, err)
	}

	log.Info().
		Str("state", string(summary.State)).
		Int("schools_failed", summary.Schools.Failed).
		Int("students_failed", summary.Students.Failed).
		Msg("Sync job finished")
	return nil
}
