package job

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"researchequals-backend/internal/domains/publication/service"
	"researchequals-backend/internal/shared"
	"researchequals-backend/pkg/logger"
)

// Handler processes the deferred index-maintenance tasks.
type Handler struct {
	publishService *service.PublishService
}

func NewHandler(publishService *service.PublishService) *Handler {
	return &Handler{publishService: publishService}
}

// HandleIndexResync re-pushes one module's search projection. Enqueued
// when the inline index sync after publication failed.
func (h *Handler) HandleIndexResync(ctx context.Context, t *asynq.Task) error {
	var payload shared.IndexResyncPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal resync payload: %v: %w", err, asynq.SkipRetry)
	}

	logger.Info("Processing index resync", map[string]interface{}{
		"module_id": payload.ModuleID,
	})

	if err := h.publishService.ResyncIndex(ctx, payload.ModuleID); err != nil {
		logger.Error("Index resync failed", err)
		return err
	}
	return nil
}

// HandleIndexReconcile sweeps recently published modules back into the
// index. Scheduled periodically as a safety net for missed resyncs.
func (h *Handler) HandleIndexReconcile(ctx context.Context, t *asynq.Task) error {
	payload := shared.IndexReconcilePayload{WindowHours: 24, Limit: 500}
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("failed to unmarshal reconcile payload: %v: %w", err, asynq.SkipRetry)
		}
	}

	window := time.Duration(payload.WindowHours) * time.Hour
	return h.publishService.ReconcileIndex(ctx, window, payload.Limit)
}
