package pipeline

import (
	"context"

	"github.com/mcbagz/edSIS/internal/model"
)

// Recorder persists run progress. Recorder errors are logged by the
// orchestrator and never fail a run.
type Recorder interface {
	StartRun(ctx context.Context, summary *model.RunSummary) error
	UpdateState(ctx context.Context, runID string, state model.RunState) error
	RecordOutcome(ctx context.Context, outcome model.RecordOutcome) error
	FinishRun(ctx context.Context, summary *model.RunSummary) error
}

type NopRecorder struct{}

func (NopRecorder) StartRun(context.Context, *model.RunSummary) error { return nil }
func (NopRecorder) UpdateState(context.Context, string, model.RunState) error { return nil }
func (NopRecorder) RecordOutcome(context.Context, model.RecordOutcome) error { return nil }
func (NopRecorder) FinishRun(context.Context, *model.RunSummary) error { return nil }
