// Package workflow drives queue items through the pipeline stages.
package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"soundminer/internal/config"
	"soundminer/internal/notifications"
	"soundminer/internal/queue"
	"soundminer/internal/report"
	"soundminer/internal/stage"
)

// StageSet bundles the concrete workflow handlers the manager orchestrates.
type StageSet struct {
	Acquirer   stage.Handler
	Identifier stage.Handler
	Resolver   stage.Handler
	Organizer  stage.Handler
}

type pipelineStage struct {
	name             string
	handler          stage.Handler
	startStatus      queue.Status
	processingStatus queue.Status
	doneStatus       queue.Status
}

// Progress is one batch progress event.
type Progress struct {
	Index   int
	Total   int
	ItemID  int64
	URL     string
	Stage   string
	Message string
}

// ProgressFunc receives progress events during a batch run.
type ProgressFunc func(Progress)

// Summary describes a finished batch run.
type Summary struct {
	Total     int
	Completed int
	Failed    int
	Duration  time.Duration
}

// Manager coordinates queue processing through the configured stages.
type Manager struct {
	cfg      *config.Config
	store    *queue.Store
	logger   *slog.Logger
	notifier notifications.Service
	errorLog *report.ErrorLog
	progress ProgressFunc

	stages        []pipelineStage
	stageByStart  map[queue.Status]pipelineStage
	startStatuses []queue.Status

	mu      sync.Mutex
	lastErr error
}

// Option configures optional manager behavior.
type Option func(*Manager)

// WithNotifier overrides the default notification service.
func WithNotifier(notifier notifications.Service) Option {
	return func(m *Manager) {
		if notifier != nil {
			m.notifier = notifier
		}
	}
}

// WithProgress registers a progress event callback.
func WithProgress(fn ProgressFunc) Option {
	return func(m *Manager) {
		m.progress = fn
	}
}

// WithErrorLog overrides the default error log location.
func WithErrorLog(log *report.ErrorLog) Option {
	return func(m *Manager) {
		if log != nil {
			m.errorLog = log
		}
	}
}

// NewManager constructs a workflow manager over the given stage set.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger, stages StageSet, opts ...Option) *Manager {
	m := &Manager{
		cfg:      cfg,
		store:    store,
		logger:   logger,
		notifier: notifications.NewService(cfg),
		errorLog: report.NewErrorLog(cfg.Paths.LogDir),
	}
	m.stages = []pipelineStage{
		{name: "acquire", handler: stages.Acquirer, startStatus: queue.StatusPending, processingStatus: queue.StatusAcquiring, doneStatus: queue.StatusAcquired},
		{name: "identify", handler: stages.Identifier, startStatus: queue.StatusAcquired, processingStatus: queue.StatusIdentifying, doneStatus: queue.StatusIdentified},
		{name: "resolve", handler: stages.Resolver, startStatus: queue.StatusIdentified, processingStatus: queue.StatusResolving, doneStatus: queue.StatusResolved},
		{name: "organize", handler: stages.Organizer, startStatus: queue.StatusResolved, processingStatus: queue.StatusOrganizing, doneStatus: queue.StatusCompleted},
	}
	m.stageByStart = make(map[queue.Status]pipelineStage, len(m.stages))
	m.startStatuses = make([]queue.Status, 0, len(m.stages))
	for _, stg := range m.stages {
		m.stageByStart[stg.startStatus] = stg
		m.startStatuses = append(m.startStatuses, stg.startStatus)
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// HealthChecks runs every stage handler's health check.
func (m *Manager) HealthChecks(ctx context.Context) []stage.Health {
	results := make([]stage.Health, 0, len(m.stages))
	for _, stg := range m.stages {
		if stg.handler == nil {
			results = append(results, stage.Unhealthy(stg.name, "handler unavailable"))
			continue
		}
		results = append(results, stg.handler.HealthCheck(ctx))
	}
	return results
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastErr = err
}

// LastError returns the most recent non-fatal manager error.
func (m *Manager) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}
