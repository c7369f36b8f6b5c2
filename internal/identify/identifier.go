package identify

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"log/slog"

	"soundminer/internal/acquire"
	"soundminer/internal/config"
	"soundminer/internal/logging"
	"soundminer/internal/notifications"
	"soundminer/internal/queue"
	"soundminer/internal/services"
	"soundminer/internal/services/acoustid"
	"soundminer/internal/services/ffmpeg"
	"soundminer/internal/services/shazam"
	"soundminer/internal/stage"
	"soundminer/internal/textutil"
)

// Identifier is the stage handler that recognizes the reference clip and
// fuses the evidence into a verdict.
type Identifier struct {
	store      *queue.Store
	cfg        *config.Config
	logger     *slog.Logger
	normalizer ffmpeg.Normalizer
	sources    []Source
	engine     *Engine
	notifier   notifications.Service
}

// NewIdentifier constructs the identification handler using default dependencies.
func NewIdentifier(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Identifier {
	normalizer, err := ffmpeg.New(cfg.Recognition.FFmpegBinary, cfg.Recognition.SampleRate, cfg.Recognition.TimeoutSeconds)
	if err != nil && logger != nil {
		logger.Warn("ffmpeg client unavailable", logging.Error(err))
	}

	var sources []Source
	if cfg.Recognition.ShazamEnabled {
		if client, err := shazam.New(cfg.Recognition.ShazamBaseURL, cfg.Recognition.TimeoutSeconds); err == nil {
			sources = append(sources, NewShazamSource(client))
		} else if logger != nil {
			logger.Warn("shazam source unavailable", logging.Error(err))
		}
	}
	if cfg.Recognition.AcoustIDEnabled {
		client, err := acoustid.New(cfg.Recognition.AcoustIDBaseURL, cfg.Recognition.AcoustIDAPIKey, cfg.Recognition.FpcalcBinary, cfg.Recognition.TimeoutSeconds)
		if err == nil {
			sources = append(sources, NewAcoustIDSource(client))
		} else if logger != nil {
			logger.Warn("acoustid source unavailable", logging.Error(err))
		}
	}

	var scorer textutil.Scorer = textutil.TokenSetScorer{}
	if cfg.Consensus.ExactMatchOnly {
		scorer = textutil.ExactScorer{}
	}
	engine := NewEngine(scorer, cfg.Consensus.AgreeThreshold)

	var n ffmpeg.Normalizer
	if normalizer != nil {
		n = normalizer
	}
	return NewIdentifierWithDependencies(cfg, store, logger, n, sources, engine, notifications.NewService(cfg))
}

// NewIdentifierWithDependencies allows injecting all collaborators (used in tests).
func NewIdentifierWithDependencies(
	cfg *config.Config,
	store *queue.Store,
	logger *slog.Logger,
	normalizer ffmpeg.Normalizer,
	sources []Source,
	engine *Engine,
	notifier notifications.Service,
) *Identifier {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "identifier"))
	}
	if engine == nil {
		engine = NewEngine(nil, 0)
	}
	return &Identifier{
		store:      store,
		cfg:        cfg,
		logger:     stageLogger,
		normalizer: normalizer,
		sources:    sources,
		engine:     engine,
		notifier:   notifier,
	}
}

func (i *Identifier) Prepare(ctx context.Context, item *queue.Item) error {
	item.SetProgress("Identifying", "Collecting identification signals", 0)
	item.ErrorMessage = ""
	if strings.TrimSpace(item.ReferenceFile) == "" {
		return services.Wrap(services.ErrValidation, "identify", "check reference",
			"Item has no reference file; acquisition must run first", nil)
	}
	return nil
}

func (i *Identifier) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, i.logger)

	signals := make([]Signal, 0, len(i.sources)+1)

	if len(i.sources) > 0 {
		audioPath, cleanup, err := i.normalizedAudio(ctx, logger, item)
		if err != nil {
			return err
		}
		defer cleanup()
		signals = append(signals, i.collectFingerprints(ctx, audioPath)...)
	}

	signals = append(signals, i.platformSignal(item))

	outcome := i.engine.Evaluate(signals)

	encodedSignals, err := json.Marshal(signals)
	if err != nil {
		return services.Wrap(services.ErrIO, "identify", "encode signals",
			"Failed to serialize identification signals", err)
	}
	item.SignalsJSON = string(encodedSignals)

	if len(outcome.Pairs) > 0 {
		encodedPairs, err := json.Marshal(outcome.Pairs)
		if err != nil {
			return services.Wrap(services.ErrIO, "identify", "encode pair scores",
				"Failed to serialize consensus scores", err)
		}
		item.PairScoresJSON = string(encodedPairs)
	}

	item.Verdict = outcome.Verdict
	item.WinningLabel = outcome.WinningLabel
	item.SetProgressComplete("Identified", "Verdict: "+outcome.Verdict)

	logger.Info("identification completed",
		logging.String("verdict", outcome.Verdict),
		logging.String("winning_label", outcome.WinningLabel),
		logging.Int("signals", len(signals)),
	)

	if i.notifier != nil && outcome.WinningLabel != "" {
		if err := i.notifier.Publish(ctx, notifications.EventIdentificationComplete, notifications.Payload{
			"label":   outcome.WinningLabel,
			"verdict": outcome.Verdict,
		}); err != nil {
			logger.Warn("identification notification failed", logging.Error(err))
		}
	}
	return nil
}

// HealthCheck verifies recognition dependencies.
func (i *Identifier) HealthCheck(ctx context.Context) stage.Health {
	const name = "identifier"
	if i.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if len(i.sources) > 0 && i.normalizer == nil {
		return stage.Unhealthy(name, "ffmpeg normalizer unavailable")
	}
	if i.engine == nil {
		return stage.Unhealthy(name, "consensus engine unavailable")
	}
	return stage.Healthy(name)
}

// normalizedAudio produces the fingerprint-ready WAV and a cleanup func that
// removes it. The temp file never outlives the stage. A failed normalization
// degrades to the raw reference file rather than failing the item.
func (i *Identifier) normalizedAudio(ctx context.Context, logger *slog.Logger, item *queue.Item) (string, func(), error) {
	if i.normalizer == nil {
		return "", nil, services.Wrap(services.ErrConfiguration, "identify", "normalize audio",
			"ffmpeg is required for fingerprint recognition; install it or disable fingerprint sources", nil)
	}
	outputPath := filepath.Join(item.StagingDir, "normalized.wav")
	if err := i.normalizer.Normalize(ctx, item.ReferenceFile, outputPath); err != nil {
		logger.Warn("audio normalization failed, fingerprinting the raw clip",
			logging.String("reference_file", item.ReferenceFile),
			logging.Error(err),
		)
		return item.ReferenceFile, func() {}, nil
	}
	cleanup := func() { _ = os.Remove(outputPath) }
	return outputPath, cleanup, nil
}

// collectFingerprints runs every fingerprint source concurrently. A source
// error downgrades to an absent signal; it never fails the stage.
func (i *Identifier) collectFingerprints(ctx context.Context, audioPath string) []Signal {
	logger := logging.WithContext(ctx, i.logger)

	results := make([]Signal, len(i.sources))
	var wg sync.WaitGroup
	for idx, source := range i.sources {
		wg.Add(1)
		go func(idx int, source Source) {
			defer wg.Done()
			signal, err := source.Collect(ctx, audioPath)
			if err != nil {
				logger.Warn("signal source failed",
					logging.String("source", source.Name()),
					logging.Error(err),
				)
				signal = absentSignal(source.Name(), source.Kind())
			}
			results[idx] = signal
		}(idx, source)
	}
	wg.Wait()
	return results
}

// platformSignal decodes the acquisition metadata into the lowest-priority
// signal. Items acquired without metadata yield an absent signal.
func (i *Identifier) platformSignal(item *queue.Item) Signal {
	const name = "platform"
	raw := strings.TrimSpace(item.MetadataJSON)
	if raw == "" {
		return absentSignal(name, KindMetadata)
	}
	var meta acquire.PlatformMetadata
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return absentSignal(name, KindMetadata)
	}
	return presentSignal(name, KindMetadata, meta.Title, meta.Author)
}
