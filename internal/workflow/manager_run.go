package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"soundminer/internal/logging"
	"soundminer/internal/notifications"
	"soundminer/internal/queue"
)

// Run drains the queue: every item sitting at a stage boundary is advanced
// until the queue holds only terminal items or ctx is cancelled. Items are
// processed one at a time so the provider tiers never see bursts.
func (m *Manager) Run(ctx context.Context) (Summary, error) {
	logger := m.logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.With(logging.String("component", "workflow-manager"))

	start := time.Now()
	total, err := m.store.Count(ctx, m.startStatuses...)
	if err != nil {
		return Summary{}, fmt.Errorf("count pending items: %w", err)
	}
	pendingOnly, err := m.store.Count(ctx, queue.StatusPending)
	if err != nil {
		return Summary{}, fmt.Errorf("count pending items: %w", err)
	}

	summary := Summary{Total: total}
	if total == 0 {
		logger.Info("queue empty, nothing to process")
		return summary, nil
	}

	logger.Info("batch started",
		logging.Int("items", total),
		logging.String(logging.FieldEventType, "batch_start"),
	)
	if m.notifier != nil {
		if err := m.notifier.Publish(ctx, notifications.EventBatchStarted, notifications.Payload{
			"count": fmt.Sprintf("%d", pendingOnly),
		}); err != nil {
			logger.Warn("batch start notification failed", logging.Error(err))
		}
	}

	index := 0
	for {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		item, err := m.store.NextForStatuses(ctx, m.startStatuses...)
		if err != nil {
			m.setLastError(err)
			return summary, fmt.Errorf("fetch next item: %w", err)
		}
		if item == nil {
			break
		}

		if item.Status == queue.StatusPending {
			index++
		}
		if err := m.processItem(ctx, logger, item, index, total); err != nil {
			if errors.Is(err, context.Canceled) {
				return summary, err
			}
			// Item-level failures are recorded on the item; the batch goes on.
		}

		switch item.Status {
		case queue.StatusCompleted:
			summary.Completed++
		case queue.StatusFailed:
			summary.Failed++
		}
	}

	summary.Duration = time.Since(start)
	logger.Info("batch completed",
		logging.Int("completed", summary.Completed),
		logging.Int("failed", summary.Failed),
		logging.Duration("duration", summary.Duration),
		logging.String(logging.FieldEventType, "batch_complete"),
	)
	if m.notifier != nil {
		if err := m.notifier.Publish(ctx, notifications.EventBatchCompleted, notifications.Payload{
			"processed": fmt.Sprintf("%d", summary.Completed),
			"failed":    fmt.Sprintf("%d", summary.Failed),
			"duration":  summary.Duration.Round(time.Second).String(),
		}); err != nil {
			logger.Warn("batch completion notification failed", logging.Error(err))
		}
	}
	return summary, nil
}

func (m *Manager) emitProgress(item *queue.Item, index, total int, stageName, message string) {
	if m.progress == nil {
		return
	}
	m.progress(Progress{
		Index:   index,
		Total:   total,
		ItemID:  item.ID,
		URL:     item.SourceURL,
		Stage:   stageName,
		Message: message,
	})
}
