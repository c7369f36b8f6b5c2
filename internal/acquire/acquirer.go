package acquire

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"soundminer/internal/config"
	"soundminer/internal/logging"
	"soundminer/internal/queue"
	"soundminer/internal/services"
	"soundminer/internal/services/cobalt"
	"soundminer/internal/services/tikwm"
	"soundminer/internal/services/ytdlp"
	"soundminer/internal/stage"
	"soundminer/internal/staging"
)

// Acquirer is the stage handler that downloads the reference clip for an item.
type Acquirer struct {
	store  *queue.Store
	cfg    *config.Config
	logger *slog.Logger
	chain  *Chain
}

// NewAcquirer constructs the acquisition handler with the default tier chain.
func NewAcquirer(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Acquirer {
	var providers []Provider

	providers = append(providers, NewTikwmProvider(
		tikwm.New(cfg.Acquisition.TikwmBaseURL, cfg.Acquisition.TimeoutSeconds),
	))

	if cobaltClient, err := cobalt.New(cfg.Acquisition.CobaltBaseURL, cfg.Acquisition.TimeoutSeconds); err == nil {
		providers = append(providers, NewCobaltProvider(cobaltClient))
	} else if logger != nil {
		logger.Warn("cobalt tier unavailable", logging.Error(err))
	}

	if ytdlpClient, err := ytdlp.New(cfg.Acquisition.YtDlpBinary, cfg.Acquisition.TimeoutSeconds, nativeClientOptions(cfg)...); err == nil {
		providers = append(providers, NewNativeProvider(ytdlpClient, cfg.Acquisition.NativeSlots))
	} else if logger != nil {
		logger.Warn("native tier unavailable", logging.Error(err))
	}

	return NewAcquirerWithChain(cfg, store, logger, NewChain(logger, providers...))
}

// nativeClientOptions carries the configured cautious-strategy delay into the
// yt-dlp client.
func nativeClientOptions(cfg *config.Config) []ytdlp.Option {
	return []ytdlp.Option{
		ytdlp.WithCautiousDelay(time.Duration(cfg.Acquisition.CautiousDelaySeconds) * time.Second),
	}
}

// NewAcquirerWithChain allows injecting the chain (used in tests).
func NewAcquirerWithChain(cfg *config.Config, store *queue.Store, logger *slog.Logger, chain *Chain) *Acquirer {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "acquirer"))
	}
	return &Acquirer{store: store, cfg: cfg, logger: stageLogger, chain: chain}
}

func (a *Acquirer) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, a.logger)
	item.SetProgress("Acquiring", "Starting acquisition", 0)
	item.ErrorMessage = ""

	dir, err := staging.ItemDir(a.cfg.Paths.StagingDir, item.ID)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "acquire", "prepare staging",
			"Failed to create staging directory; set staging_dir to a writable location", err)
	}
	item.StagingDir = dir
	logger.Info("starting acquisition", logging.String("url", item.SourceURL))
	return nil
}

func (a *Acquirer) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, a.logger)

	result, err := a.chain.Acquire(ctx, Request{URL: item.SourceURL, DestDir: item.StagingDir})
	if err != nil {
		return err
	}

	item.ReferenceFile = result.FilePath
	item.Container = result.Container
	if result.Metadata.Present() {
		encoded, err := json.Marshal(result.Metadata)
		if err != nil {
			return services.Wrap(services.ErrIO, "acquire", "encode metadata",
				"Failed to serialize platform metadata", err)
		}
		item.MetadataJSON = string(encoded)
	}
	item.SetProgressComplete("Acquired", "Reference clip downloaded via "+result.Provider)

	logger.Info("acquisition completed",
		logging.String("provider", result.Provider),
		logging.String("reference_file", result.FilePath),
		logging.String("container", result.Container),
	)
	return nil
}

// HealthCheck verifies the acquisition chain has at least one usable tier.
func (a *Acquirer) HealthCheck(ctx context.Context) stage.Health {
	const name = "acquirer"
	if a.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if strings.TrimSpace(a.cfg.Paths.StagingDir) == "" {
		return stage.Unhealthy(name, "staging directory not configured")
	}
	if a.chain == nil || len(a.chain.providers) == 0 {
		return stage.Unhealthy(name, "no acquisition providers configured")
	}
	return stage.Healthy(name)
}
