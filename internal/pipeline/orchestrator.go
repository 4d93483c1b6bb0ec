package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mcbagz/edSIS/internal/extract"
	"github.com/mcbagz/edSIS/internal/logger"
	"github.com/mcbagz/edSIS/internal/mapper"
	"github.com/mcbagz/edSIS/internal/model"
	"github.com/mcbagz/edSIS/pkg/errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Authenticator interface {
	Acquire(ctx context.Context, system model.System) (model.Credential, error)
}

type Uploader interface {
	Upload(ctx context.Context, cred model.Credential, resourceType model.EntityType, key string, resource model.EdFiResource) model.UploadResult
}

// Orchestrator drives one sync run at a time: authenticate, then for each
// entity type in model.EntityOrder extract the whole collection and push it
// through the mapper and loader record by record. It is not safe for
// concurrent runs.
type Orchestrator struct {
	auth   Authenticator
	source extract.Source
	mapper *mapper.Mapper
	loader Uploader

	// Recorder receives run and per-record outcomes. Defaults to NopRecorder.
	Recorder Recorder
	// OnTransition, if set, is called after every state change.
	OnTransition func(runID string, from, to model.RunState)

	state model.RunState
	now   func() time.Time
	log   zerolog.Logger
}

func New(auth Authenticator, source extract.Source, m *mapper.Mapper, loader Uploader) *Orchestrator {
	return &Orchestrator{
		auth:     auth,
		source:   source,
		mapper:   m,
		loader:   loader,
		Recorder: NopRecorder{},
		state:    model.RunStateIdle,
		now:      time.Now,
		log:      logger.Get(),
	}
}

func (o *Orchestrator) State() model.RunState {
	return o.state
}

// Run executes a full sync under a fresh run id.
func (o *Orchestrator) Run(ctx context.Context) (*model.RunSummary, error) {
	return o.RunWithID(ctx, uuid.NewString())
}

// RunWithID executes a full sync. Authentication and extraction failures
// abort the run and are returned alongside the summary; per-record failures
// are only counted.
func (o *Orchestrator) RunWithID(ctx context.Context, runID string) (*model.RunSummary, error) {
	summary := &model.RunSummary{
		RunID:     runID,
		Source:    o.source.Name(),
		State:     model.RunStateIdle,
		StartedAt: o.now(),
	}
	o.state = model.RunStateIdle

	log := o.log.With().Str("run_id", runID).Str("source", summary.Source).Logger()
	log.Info().Msg("Starting sync run")

	if err := o.Recorder.StartRun(ctx, summary); err != nil {
		log.Warn().Err(err).Msg("Failed to record run start")
	}

	for _, p := range o.mapper.Placeholders() {
		log.Info().Str("resource", string(p.Resource)).Str("field", p.Field).Interface("value", p.Value).
			Msg("Writing synthetic placeholder")
	}

	o.transition(ctx, summary, model.RunStateAuthenticating)
	creds, err := o.authenticate(ctx, o.source.NeedsSIS(), true)
	if err != nil {
		return o.abort(ctx, summary, log, err)
	}

	for _, entity := range model.EntityOrder {
		o.transition(ctx, summary, extractingState(entity))
		coll, err := o.source.Fetch(ctx, creds, entity)
		if err != nil {
			return o.abort(ctx, summary, log, err)
		}

		o.transition(ctx, summary, loadingState(entity))
		o.load(ctx, log, runID, creds.EdFi, coll, summary.For(entity))
	}

	o.transition(ctx, summary, model.RunStateDone)
	summary.FinishedAt = o.now()
	if err := o.Recorder.FinishRun(ctx, summary); err != nil {
		log.Warn().Err(err).Msg("Failed to record run finish")
	}

	log.Info().
		Int("schools_succeeded", summary.Schools.Succeeded).
		Int("schools_failed", summary.Schools.Failed).
		Int("students_succeeded", summary.Students.Succeeded).
		Int("students_failed", summary.Students.Failed).
		Dur("duration", summary.FinishedAt.Sub(summary.StartedAt)).
		Msg("Sync run completed")

	return summary, nil
}

// Fetch authenticates against the SIS (when the source needs it) and
// extracts every entity without touching Ed-Fi. Paired with a snapshotting
// source this produces the files a later file-source run replays.
func (o *Orchestrator) Fetch(ctx context.Context) (map[model.EntityType]int, error) {
	creds, err := o.authenticate(ctx, o.source.NeedsSIS(), false)
	if err != nil {
		return nil, err
	}

	counts := make(map[model.EntityType]int, len(model.EntityOrder))
	for _, entity := range model.EntityOrder {
		coll, err := o.source.Fetch(ctx, creds, entity)
		if err != nil {
			return counts, err
		}
		counts[entity] = coll.Len()
		o.log.Info().Str("entity", string(entity)).Int("count", coll.Len()).Msg("Fetched collection")
	}
	return counts, nil
}

// authenticate acquires every token the run needs before any record is read,
// so a bad Ed-Fi secret never costs an SIS extraction.
func (o *Orchestrator) authenticate(ctx context.Context, sis, edfi bool) (model.Credentials, error) {
	var creds model.Credentials
	var err error

	if sis {
		if creds.SIS, err = o.auth.Acquire(ctx, model.SystemSIS); err != nil {
			return creds, err
		}
	}
	if edfi {
		if creds.EdFi, err = o.auth.Acquire(ctx, model.SystemEdFi); err != nil {
			return creds, err
		}
	}
	return creds, nil
}

func (o *Orchestrator) load(ctx context.Context, log zerolog.Logger, runID string, cred model.Credential, coll *extract.Collection, counts *model.EntitySummary) {
	entity := coll.Entity
	log.Info().Str("entity", string(entity)).Int("count", coll.Len()).Msg("Loading collection")

	for i, raw := range coll.Records {
		counts.Attempted++
		outcome := model.RecordOutcome{RunID: runID, Entity: entity}

		key, resource, err := o.mapRecord(entity, i, raw)
		outcome.Key = key
		if err == nil {
			result := o.loader.Upload(ctx, cred, entity, key, resource)
			outcome.StatusCode = result.StatusCode
			err = result.Err
		}

		if err != nil {
			counts.Failed++
			outcome.Status = model.RecordStatusFailed
			msg := err.Error()
			outcome.ErrorMessage = &msg
			log.Warn().Err(err).
				Str("entity", string(entity)).
				Str("key", key).
				Int("status", outcome.StatusCode).
				Msg("Record failed")
		} else {
			counts.Succeeded++
			outcome.Status = model.RecordStatusSucceeded
			log.Debug().Str("entity", string(entity)).Str("key", key).Msg("Record loaded")
		}

		if rerr := o.Recorder.RecordOutcome(ctx, outcome); rerr != nil {
			log.Warn().Err(rerr).Str("key", key).Msg("Failed to record outcome")
		}
	}

	log.Info().
		Str("entity", string(entity)).
		Int("success", counts.Succeeded).
		Int("failed", counts.Failed).
		Int("total", counts.Attempted).
		Msg("Collection loaded")
}

// mapRecord decodes and maps one raw record. Records that do not decode are
// keyed by their position since they have no readable natural key.
func (o *Orchestrator) mapRecord(entity model.EntityType, index int, raw json.RawMessage) (string, model.EdFiResource, error) {
	positional := fmt.Sprintf("#%d", index+1)

	switch entity {
	case model.EntitySchools:
		var school model.SisSchool
		if err := json.Unmarshal(raw, &school); err != nil {
			return positional, nil, &errors.MappingError{Entity: string(entity), Key: positional, Err: err}
		}
		key := school.NaturalKey()
		if key == "" {
			key = positional
		}
		res, err := o.mapper.MapSchool(school)
		return key, res, err

	case model.EntityStudents:
		var student model.SisStudent
		if err := json.Unmarshal(raw, &student); err != nil {
			return positional, nil, &errors.MappingError{Entity: string(entity), Key: positional, Err: err}
		}
		key := student.NaturalKey()
		if key == "" {
			key = positional
		}
		res, err := o.mapper.MapStudent(student)
		return key, res, err
	}

	return positional, nil, &errors.MappingError{Entity: string(entity), Key: positional, Err: fmt.Errorf("unsupported entity")}
}

func (o *Orchestrator) abort(ctx context.Context, summary *model.RunSummary, log zerolog.Logger, err error) (*model.RunSummary, error) {
	from := o.state
	o.transition(ctx, summary, model.RunStateAborted)
	summary.Error = err.Error()
	summary.FinishedAt = o.now()

	if rerr := o.Recorder.FinishRun(ctx, summary); rerr != nil {
		log.Warn().Err(rerr).Msg("Failed to record run abort")
	}

	log.Error().Err(err).Str("state", string(from)).Msg("Sync run aborted")
	return summary, err
}

func (o *Orchestrator) transition(ctx context.Context, summary *model.RunSummary, to model.RunState) {
	from := o.state
	o.state = to
	summary.State = to

	o.log.Debug().Str("run_id", summary.RunID).Str("from", string(from)).Str("to", string(to)).Msg("State transition")

	if err := o.Recorder.UpdateState(ctx, summary.RunID, to); err != nil {
		o.log.Warn().Err(err).Str("run_id", summary.RunID).Msg("Failed to record state")
	}
	if o.OnTransition != nil {
		o.OnTransition(summary.RunID, from, to)
	}
}

func extractingState(entity model.EntityType) model.RunState {
	if entity == model.EntityStudents {
		return model.RunStateExtractingStudents
	}
	return model.RunStateExtractingSchools
}

func loadingState(entity model.EntityType) model.RunState {
	if entity == model.EntityStudents {
		return model.RunStateMappingAndLoadingStudents
	}
	return model.RunStateMappingAndLoadingSchools
}
