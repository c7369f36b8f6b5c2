package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"soundminer/internal/logging"
	"soundminer/internal/queue"
	"soundminer/internal/services"
)

func (m *Manager) processItem(ctx context.Context, logger *slog.Logger, item *queue.Item, index, total int) error {
	stg, ok := m.stageByStart[item.Status]
	if !ok {
		logger.Warn("no stage configured for status", logging.String("status", string(item.Status)))
		return fmt.Errorf("no stage for status %q", item.Status)
	}

	requestID := uuid.NewString()
	stageCtx := services.WithRequestID(services.WithStage(services.WithItemID(ctx, item.ID), stg.name), requestID)
	stageLogger := logging.WithContext(stageCtx, logger)

	if stg.handler == nil {
		err := errors.New("stage handler unavailable")
		m.handleStageFailure(stageCtx, stg.name, item, err, index, total)
		return err
	}

	item.Status = stg.processingStatus
	item.ErrorMessage = ""
	if err := m.store.Update(stageCtx, item); err != nil {
		m.setLastError(err)
		return fmt.Errorf("persist processing transition: %w", err)
	}
	m.emitProgress(item, index, total, stg.name, fmt.Sprintf("%s started", stg.name))

	stageStart := time.Now()
	stageLogger.Info("stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("processing_status", string(stg.processingStatus)),
		logging.String("url", strings.TrimSpace(item.SourceURL)),
	)

	if err := stg.handler.Prepare(stageCtx, item); err != nil {
		m.handleStageFailure(stageCtx, stg.name, item, err, index, total)
		return err
	}
	if err := m.store.Update(stageCtx, item); err != nil {
		m.setLastError(err)
		return fmt.Errorf("persist stage preparation: %w", err)
	}

	if err := stg.handler.Execute(stageCtx, item); err != nil {
		if errors.Is(err, context.Canceled) {
			stageLogger.Debug("stage interrupted by shutdown")
			return err
		}
		m.handleStageFailure(stageCtx, stg.name, item, err, index, total)
		return err
	}

	if item.Status == stg.processingStatus || item.Status == "" {
		item.Status = stg.doneStatus
	}
	if err := m.store.Update(stageCtx, item); err != nil {
		m.setLastError(err)
		return fmt.Errorf("persist stage result: %w", err)
	}

	stageLogger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("next_status", string(item.Status)),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)
	m.emitProgress(item, index, total, stg.name, strings.TrimSpace(item.ProgressMessage))
	return nil
}
