package acquire

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"soundminer/internal/logging"
	"soundminer/internal/services"
)

// Chain walks the provider tiers in order until one yields a reference clip.
// A tier that does not match the URL is skipped without counting as a
// failure; later tiers are never consulted once a tier succeeds.
type Chain struct {
	providers []Provider
	logger    *slog.Logger
}

// NewChain builds an acquisition chain over the given tier order.
func NewChain(logger *slog.Logger, providers ...Provider) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{providers: providers, logger: logger.With(logging.String("component", "acquire-chain"))}
}

// Acquire attempts each matching tier in order and returns the first success.
// When every tier fails the returned error aggregates each tier's failure and
// carries the provider marker.
func (c *Chain) Acquire(ctx context.Context, req Request) (Result, error) {
	logger := logging.WithContext(ctx, c.logger)

	var attempts []error
	for _, provider := range c.providers {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if !provider.Matches(req.URL) {
			continue
		}

		logger.Info("attempting acquisition tier",
			logging.String("provider", provider.Name()),
			logging.String("url", req.URL),
		)
		result, err := provider.Acquire(ctx, req)
		if err != nil {
			logger.Warn("acquisition tier failed",
				logging.String("provider", provider.Name()),
				logging.Error(err),
			)
			attempts = append(attempts, fmt.Errorf("%s: %w", provider.Name(), err))
			continue
		}

		logger.Info("acquisition tier succeeded",
			logging.String("provider", provider.Name()),
			logging.String("file", result.FilePath),
		)
		return result, nil
	}

	if len(attempts) == 0 {
		return Result{}, services.Wrap(services.ErrValidation, "acquire", "match providers",
			"No acquisition tier supports this URL", nil)
	}
	return Result{}, services.Wrap(services.ErrProvider, "acquire", "exhaust chain",
		"Every acquisition tier failed", errors.Join(attempts...))
}
