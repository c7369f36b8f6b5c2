package resolve

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"log/slog"

	"soundminer/internal/config"
	"soundminer/internal/identify"
	"soundminer/internal/logging"
	"soundminer/internal/queue"
	"soundminer/internal/services"
	"soundminer/internal/services/ytdlp"
	"soundminer/internal/stage"
	"soundminer/internal/textutil"
)

// Resolver is the stage handler that hunts down the master track.
type Resolver struct {
	store   *queue.Store
	cfg     *config.Config
	logger  *slog.Logger
	catalog Catalog
	tagger  func(path, artist, title string) error
}

// NewResolver constructs the resolution handler using default dependencies.
func NewResolver(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Resolver {
	var catalog Catalog
	if client, err := ytdlp.New(cfg.Acquisition.YtDlpBinary, cfg.Acquisition.TimeoutSeconds); err == nil {
		catalog = NewYtDlpCatalog(client)
	} else if logger != nil {
		logger.Warn("catalog unavailable", logging.Error(err))
	}
	return NewResolverWithCatalog(cfg, store, logger, catalog)
}

// NewResolverWithCatalog allows injecting the catalog (used in tests).
func NewResolverWithCatalog(cfg *config.Config, store *queue.Store, logger *slog.Logger, catalog Catalog) *Resolver {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "resolver"))
	}
	return &Resolver{store: store, cfg: cfg, logger: stageLogger, catalog: catalog, tagger: TagMaster}
}

func (r *Resolver) Prepare(ctx context.Context, item *queue.Item) error {
	item.SetProgress("Resolving", "Searching for master track", 0)
	item.ErrorMessage = ""
	return nil
}

func (r *Resolver) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, r.logger)

	if !eligible(item.Verdict) || strings.TrimSpace(item.WinningLabel) == "" {
		item.MasterOutcome = queue.MasterOutcomeSkipped
		item.SetProgressComplete("Resolved", "Master resolution skipped: verdict "+item.Verdict)
		logger.Info("master resolution skipped", logging.String("verdict", item.Verdict))
		return nil
	}
	if r.catalog == nil {
		return services.Wrap(services.ErrConfiguration, "resolve", "check catalog",
			"No catalog backend available; check the yt-dlp binary path", nil)
	}

	query := item.WinningLabel
	if qualifier := strings.TrimSpace(r.cfg.Master.QueryQualifier); qualifier != "" {
		query = query + " " + qualifier
	}

	candidates, err := r.catalog.Search(ctx, query, r.cfg.Master.SearchLimit)
	if err != nil {
		return services.Wrap(services.ErrProvider, "resolve", "catalog search",
			"Master track search failed", err)
	}

	minSec := float64(r.cfg.Master.MinSeconds)
	maxSec := float64(r.cfg.Master.MaxSeconds)
	selected, ok := SelectCandidate(candidates, minSec, maxSec)
	if !ok {
		item.MasterOutcome = queue.MasterOutcomeNotFound
		item.SetProgressComplete("Resolved", fmt.Sprintf("No candidate inside %d-%ds window", r.cfg.Master.MinSeconds, r.cfg.Master.MaxSeconds))
		logger.Info("no master candidate in duration window",
			logging.String("query", query),
			logging.Int("candidates", len(candidates)),
		)
		return nil
	}

	masterPath := filepath.Join(item.StagingDir, "master.mp3")
	if err := r.catalog.Download(ctx, selected.ID, masterPath); err != nil {
		return services.Wrap(services.ErrProvider, "resolve", "download master",
			"Master track download failed", err)
	}

	artist, title := textutil.SplitLabel(item.WinningLabel)
	if err := r.tagger(masterPath, artist, title); err != nil {
		logger.Warn("master tagging failed", logging.Error(err))
	}

	item.MasterOutcome = queue.MasterOutcomeFound
	item.MasterFile = masterPath
	item.SetProgressComplete("Resolved", "Master track downloaded")
	logger.Info("master track resolved",
		logging.String("candidate", selected.Title),
		logging.Float64("duration", selected.Duration),
		logging.String("master_file", masterPath),
	)
	return nil
}

// HealthCheck verifies resolution dependencies.
func (r *Resolver) HealthCheck(ctx context.Context) stage.Health {
	const name = "resolver"
	if r.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if r.cfg.Master.MinSeconds >= r.cfg.Master.MaxSeconds {
		return stage.Unhealthy(name, "duration window is empty")
	}
	if r.catalog == nil {
		return stage.Unhealthy(name, "catalog unavailable")
	}
	return stage.Healthy(name)
}

// eligible reports whether a verdict is trustworthy enough to spend a master
// download on. Conflicts and unidentified clips never are.
func eligible(verdict string) bool {
	switch verdict {
	case identify.VerdictPlatinum, identify.VerdictConfirmed, identify.VerdictGold, identify.VerdictSingleSource:
		return true
	default:
		return false
	}
}
