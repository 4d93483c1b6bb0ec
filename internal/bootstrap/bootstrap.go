// Package bootstrap assembles the sync pipeline from configuration for the
// binaries.
package bootstrap

import (
	"fmt"

	"github.com/mcbagz/edSIS/internal/auth"
	"github.com/mcbagz/edSIS/internal/config"
	"github.com/mcbagz/edSIS/internal/extract"
	"github.com/mcbagz/edSIS/internal/httpclient"
	"github.com/mcbagz/edSIS/internal/loader"
	"github.com/mcbagz/edSIS/internal/mapper"
	"github.com/mcbagz/edSIS/internal/pipeline"
	"github.com/mcbagz/edSIS/internal/storage"
	"github.com/mcbagz/edSIS/internal/worker"
)

// NewPipeline builds a fresh orchestrator with its own token cache. rec may
// be nil, in which case outcomes are only logged.
func NewPipeline(cfg *config.Config, rec pipeline.Recorder) (*pipeline.Orchestrator, error) {
	store, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	source, err := extract.NewSource(cfg, store)
	if err != nil {
		return nil, err
	}

	orch := pipeline.New(
		auth.NewProvider(cfg),
		source,
		mapper.New(mapper.OptionsFromConfig(cfg.Mapping)),
		loader.New(cfg, httpclient.New(cfg.EdFi.Timeout, cfg.EdFi.InsecureSkipVerify)),
	)
	if rec != nil {
		orch.Recorder = rec
	}
	return orch, nil
}

// RunnerFactory returns a factory that builds one pipeline per job. A job may
// name its own source; the configuration is copied so jobs never share it.
func RunnerFactory(cfg *config.Config, rec pipeline.Recorder) worker.RunnerFactory {
	return func(source string) (worker.Runner, error) {
		jobCfg := *cfg
		if source != "" {
			jobCfg.Extract.Source = source
		}
		if err := jobCfg.Validate(); err != nil {
			return nil, err
		}
		return NewPipeline(&jobCfg, rec)
	}
}
