// Package organizer moves finished items into the library and finalizes the
// queue record.
package organizer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"soundminer/internal/config"
	"soundminer/internal/fileutil"
	"soundminer/internal/logging"
	"soundminer/internal/notifications"
	"soundminer/internal/queue"
	"soundminer/internal/report"
	"soundminer/internal/services"
	"soundminer/internal/stage"
	"soundminer/internal/textutil"
)

// Organizer is the stage handler that assembles each item's final folder.
type Organizer struct {
	store    *queue.Store
	cfg      *config.Config
	logger   *slog.Logger
	notifier notifications.Service
	now      func() time.Time
}

// NewOrganizer constructs the organization handler.
func NewOrganizer(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Organizer {
	return NewOrganizerWithNotifier(cfg, store, logger, notifications.NewService(cfg))
}

// NewOrganizerWithNotifier allows injecting the notifier (used in tests).
func NewOrganizerWithNotifier(cfg *config.Config, store *queue.Store, logger *slog.Logger, notifier notifications.Service) *Organizer {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "organizer"))
	}
	return &Organizer{store: store, cfg: cfg, logger: stageLogger, notifier: notifier, now: time.Now}
}

func (o *Organizer) Prepare(ctx context.Context, item *queue.Item) error {
	item.SetProgress("Organizing", "Assembling final folder", 0)
	item.ErrorMessage = ""
	return nil
}

func (o *Organizer) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, o.logger)

	finalDir, err := o.allocateFinalDir(item)
	if err != nil {
		return err
	}

	if src := strings.TrimSpace(item.ReferenceFile); src != "" {
		dest := filepath.Join(finalDir, "reference"+filepath.Ext(src))
		if err := fileutil.MoveFile(src, dest); err != nil {
			return services.Wrap(services.ErrIO, "organize", "move reference",
				"Failed to move reference clip into library", err)
		}
		item.ReferenceFile = dest
	}

	if src := strings.TrimSpace(item.MasterFile); src != "" {
		dest := filepath.Join(finalDir, "master"+filepath.Ext(src))
		if err := fileutil.MoveFile(src, dest); err != nil {
			return services.Wrap(services.ErrIO, "organize", "move master",
				"Failed to move master track into library", err)
		}
		item.MasterFile = dest
	}

	item.FinalDir = finalDir
	reportPath, err := report.Write(item, finalDir, o.now())
	if err != nil {
		return services.Wrap(services.ErrIO, "organize", "write report",
			"Failed to write identification report", err)
	}
	item.ReportFile = reportPath

	if dir := strings.TrimSpace(item.StagingDir); dir != "" {
		if err := os.RemoveAll(dir); err != nil {
			logger.Warn("failed to remove staging directory", logging.Error(err))
		}
	}

	item.Status = queue.StatusCompleted
	item.SetProgressComplete("Completed", "Organized into "+filepath.Base(finalDir))
	logger.Info("item organized",
		logging.String("final_dir", finalDir),
		logging.String("report_file", reportPath),
	)

	if o.notifier != nil {
		if err := o.notifier.Publish(ctx, notifications.EventItemCompleted, notifications.Payload{
			"label":    item.WinningLabel,
			"finalDir": finalDir,
		}); err != nil {
			logger.Warn("completion notification failed", logging.Error(err))
		}
	}
	return nil
}

// HealthCheck verifies the library directory is configured.
func (o *Organizer) HealthCheck(ctx context.Context) stage.Health {
	const name = "organizer"
	if o.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if strings.TrimSpace(o.cfg.Paths.LibraryDir) == "" {
		return stage.Unhealthy(name, "library directory not configured")
	}
	return stage.Healthy(name)
}

// allocateFinalDir creates the next NNN_Label folder in the library.
func (o *Organizer) allocateFinalDir(item *queue.Item) (string, error) {
	libraryDir := strings.TrimSpace(o.cfg.Paths.LibraryDir)
	if err := os.MkdirAll(libraryDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "organize", "ensure library dir",
			"Failed to create library directory; set library_dir to a writable location", err)
	}

	label := strings.Join(strings.Fields(textutil.SanitizeFileName(item.WinningLabel)), "_")
	if label == "" {
		label = fmt.Sprintf("Unknown_%d", o.now().UnixNano())
	}

	seq, err := nextSequence(libraryDir)
	if err != nil {
		return "", services.Wrap(services.ErrIO, "organize", "scan library",
			"Failed to inspect library directory", err)
	}

	finalDir := fileutil.UniquePath(filepath.Join(libraryDir, fmt.Sprintf("%03d_%s", seq, label)))
	if err := os.MkdirAll(finalDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrIO, "organize", "create final dir",
			"Failed to create final directory", err)
	}
	return finalDir, nil
}

// nextSequence scans existing NNN_ prefixes and returns max+1, starting at 1.
func nextSequence(libraryDir string) (int, error) {
	entries, err := os.ReadDir(libraryDir)
	if err != nil {
		return 0, err
	}
	max := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		idx := strings.IndexByte(name, '_')
		if idx <= 0 {
			continue
		}
		n, err := strconv.Atoi(name[:idx])
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max + 1, nil
}
