package workflow

import (
	"context"
	"errors"
	"strings"
	"time"

	"soundminer/internal/logging"
	"soundminer/internal/notifications"
	"soundminer/internal/queue"
	"soundminer/internal/report"
	"soundminer/internal/services"
)

// handleStageFailure marks the item failed, records the failure in the batch
// error log, writes the item's failure report, and notifies. Every failed URL
// gets exactly one error log line and one report.
func (m *Manager) handleStageFailure(ctx context.Context, stageName string, item *queue.Item, stageErr error, index, total int) {
	logger := logging.WithContext(ctx, m.logger)
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.With(logging.String("component", "workflow-manager"))

	reason := services.FailureReason(stageErr)
	item.SetFailed(reason)
	item.Status = services.FailureStatus(stageErr)

	logger.Error("stage failed",
		logging.String("stage", stageName),
		logging.String("url", item.SourceURL),
		logging.Error(stageErr),
		logging.Alert("stage_failure"),
		logging.String(logging.FieldEventType, "stage_failure"),
	)

	if m.errorLog != nil {
		if err := m.errorLog.Append(item.SourceURL, stageName, reason); err != nil {
			logger.Warn("failed to append error log", logging.Error(err))
		}
	}

	if dir := strings.TrimSpace(item.StagingDir); dir != "" && strings.TrimSpace(item.ReportFile) == "" {
		if path, err := report.Write(item, dir, time.Now()); err != nil {
			logger.Warn("failed to write failure report", logging.Error(err))
		} else {
			item.ReportFile = path
		}
	}

	if err := m.store.Update(ctx, item); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("shutdown in progress, could not persist stage failure")
		} else {
			logger.Error("failed to persist stage failure", logging.Error(err))
		}
	}
	m.setLastError(stageErr)
	m.emitProgress(item, index, total, stageName, "failed: "+reason)

	if m.notifier != nil {
		if err := m.notifier.Publish(ctx, notifications.EventItemFailed, notifications.Payload{
			"url":   item.SourceURL,
			"error": reason,
		}); err != nil {
			logger.Warn("failure notification failed", logging.Error(err))
		}
	}
}
