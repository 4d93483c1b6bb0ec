package db

import (
	"context"

	"github.com/mcbagz/edSIS/internal/model"
)

// Recorder writes pipeline progress into the run ledger.
type Recorder struct {
	repo Repository
}

func NewRecorder(repo Repository) *Recorder {
	return &Recorder{repo: repo}
}

func (r *Recorder) StartRun(ctx context.Context, s *model.RunSummary) error {
	return r.repo.CreateRun(ctx, s.RunID, s.Source, s.State, s.StartedAt)
}

func (r *Recorder) UpdateState(ctx context.Context, runID string, state model.RunState) error {
	return r.repo.UpdateRunState(ctx, runID, state)
}

func (r *Recorder) RecordOutcome(ctx context.Context, o model.RecordOutcome) error {
	return r.repo.RecordOutcome(ctx, o)
}

func (r *Recorder) FinishRun(ctx context.Context, s *model.RunSummary) error {
	return r.repo.FinishRun(ctx, s)
}
