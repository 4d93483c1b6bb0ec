package worker

import (
	"context"

	"github.com/mcbagz/edSIS/internal/model"
)

// Runner executes one sync run. *pipeline.Orchestrator satisfies it.
type Runner interface {
	RunWithID(ctx context.Context, runID string) (*model.RunSummary, error)
}

// RunnerFactory builds a runner for the requested extraction source. An
// empty source means the configured default.
type RunnerFactory func(source string) (Runner, error)
