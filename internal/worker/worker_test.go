package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mcbagz/edSIS/internal/config"
	"github.com/mcbagz/edSIS/internal/logger"
	"github.com/mcbagz/edSIS/internal/model"
)

type fakeRunner struct {
	mu     sync.Mutex
	runIDs []string
	err    error
}

func (f *fakeRunner) RunWithID(_ context.Context, runID string) (*model.RunSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runIDs = append(f.runIDs, runID)
	state := model.RunStateDone
	if f.err != nil {
		state = model.RunStateAborted
	}
	return &model.RunSummary{RunID: runID, State: state}, f.err
}

func (f *fakeRunner) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.runIDs)
}

func TestSyncWorkerHandleMessage(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	var sources []string
	w := &SyncWorker{
		newRunner: func(source string) (Runner, error) {
			sources = append(sources, source)
			return runner, nil
		},
		log: logger.Get(),
	}

	if err := w.handleMessage(context.Background(), []byte(`{"run_id":"run-1","source":"file"}`)); err != nil {
		t.Fatalf("handleMessage failed: %v", err)
	}
	if runner.runIDs[0] != "run-1" || sources[0] != "file" {
		t.Errorf("Expected run-1 from file, got %v %v", runner.runIDs, sources)
	}

	if err := w.handleMessage(context.Background(), []byte(`{}`)); err != nil {
		t.Fatalf("handleMessage failed: %v", err)
	}
	if runner.runIDs[1] == "" {
		t.Error("Expected a generated run id for a job without one")
	}

	if err := w.handleMessage(context.Background(), []byte(`not json`)); err == nil {
		t.Error("Expected malformed job to fail")
	}
}

func TestSyncWorkerReportsAbort(t *testing.T) {
	t.Parallel()

	cause := errors.New("authentication failed")
	w := &SyncWorker{
		newRunner: func(string) (Runner, error) { return &fakeRunner{err: cause}, nil },
		log:       logger.Get(),
	}
	if err := w.handleMessage(context.Background(), []byte(`{"run_id":"run-2"}`)); !errors.Is(err, cause) {
		t.Errorf("Expected abort to reach the consumer for dead-lettering, got %v", err)
	}

	w.newRunner = func(string) (Runner, error) { return nil, errors.New("bad source") }
	if err := w.handleMessage(context.Background(), []byte(`{"run_id":"run-3","source":"ldap"}`)); err == nil {
		t.Error("Expected factory failure to be returned")
	}
}

func TestScheduleWorkerRunsOnInterval(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Workers.Schedule.Interval = 10 * time.Millisecond
	cfg.Workers.Schedule.RunOnStart = true

	runner := &fakeRunner{err: errors.New("SIS down")}
	w := NewScheduleWorker(cfg, func(string) (Runner, error) { return runner, nil })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	deadline := time.After(2 * time.Second)
	for runner.calls() < 3 {
		select {
		case <-deadline:
			t.Fatalf("Expected at least 3 runs despite failures, got %d", runner.calls())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	w.Stop()
}
