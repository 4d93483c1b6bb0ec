package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/mcbagz/edSIS/internal/config"
	"github.com/mcbagz/edSIS/internal/logger"
	"github.com/mcbagz/edSIS/internal/model"
	apperrors "github.com/mcbagz/edSIS/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RunStore is the part of the run ledger the API needs.
type RunStore interface {
	CreateRun(ctx context.Context, runID, source string, state model.RunState, startedAt time.Time) error
	GetRunStatus(ctx context.Context, runID string) (*model.RunStatus, error)
}

type JobQueue interface {
	EnqueueSyncJob(ctx context.Context, job model.SyncJob) error
}

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Handler struct {
	runs   RunStore
	queue  JobQueue
	checks map[string]HealthCheck
	cfg    *config.Config
	log    zerolog.Logger
}

func NewHandler(
	runs RunStore,
	queue JobQueue,
	checks map[string]HealthCheck,
	cfg *config.Config,
) *Handler {
	return &Handler{
		runs:   runs,
		queue:  queue,
		checks: checks,
		cfg:    cfg,
		log:    logger.Get(),
	}
}

// TriggerSync queues a run. The body is optional; an empty source means the
// configured default.
func (h *Handler) TriggerSync(c *gin.Context) {
	var req model.SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	switch req.Source {
	case "", config.SourceAPI, config.SourceFile, config.SourceXLSX:
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Unknown source",
			"source":  req.Source,
			"allowed": []string{config.SourceAPI, config.SourceFile, config.SourceXLSX},
		})
		return
	}

	source := req.Source
	if source == "" {
		source = h.cfg.Extract.Source
	}

	job := model.SyncJob{
		RunID:       uuid.NewString(),
		Source:      source,
		RequestedAt: time.Now().UTC(),
	}

	ctx := c.Request.Context()
	if err := h.runs.CreateRun(ctx, job.RunID, job.Source, model.RunStateQueued, time.Time{}); err != nil {
		h.log.Error().Err(err).Str("run_id", job.RunID).Msg("Failed to record queued run")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := h.queue.EnqueueSyncJob(ctx, job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue sync job")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue sync job"})
		return
	}

	h.log.Info().Str("run_id", job.RunID).Str("source", job.Source).Msg("Sync job enqueued")

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Sync job queued successfully",
		"job":     job,
	})
}

func (h *Handler) GetRunStatus(c *gin.Context) {
	runID := c.Param("run_id")
	if _, err := uuid.Parse(runID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid run ID"})
		return
	}

	status, err := h.runs.GetRunStatus(c.Request.Context(), runID)
	if errors.Is(err, apperrors.ErrRunNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("run_id", runID).Msg("Failed to get run status")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, status)
}

func (h *Handler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	code := http.StatusOK
	health := "healthy"
	deps := gin.H{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			deps[name] = err.Error()
			code = http.StatusServiceUnavailable
			health = "unhealthy"
			continue
		}
		deps[name] = "ok"
	}

	c.JSON(code, gin.H{
		"status":       health,
		"service":      h.cfg.App.Name,
		"version":      h.cfg.App.Version,
		"dependencies": deps,
	})
}
