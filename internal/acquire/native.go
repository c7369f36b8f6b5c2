package acquire

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"soundminer/internal/services/ytdlp"
)

// NativeExtractor is the subset of the yt-dlp client the provider uses.
type NativeExtractor interface {
	Acquire(ctx context.Context, url, destDir string, strategy ytdlp.Strategy) (string, ytdlp.Metadata, error)
}

// NativeProvider is tier three: direct extraction with yt-dlp. It escalates
// through client identity strategies and bounds concurrent extractor runs so a
// burst of fallbacks cannot trip platform rate limits.
type NativeProvider struct {
	client     NativeExtractor
	strategies []ytdlp.Strategy
	slots      chan struct{}
}

// NewNativeProvider constructs the tier-three provider with maxSlots bounding
// concurrent extractor invocations.
func NewNativeProvider(client NativeExtractor, maxSlots int) *NativeProvider {
	if maxSlots <= 0 {
		maxSlots = 1
	}
	return &NativeProvider{
		client:     client,
		strategies: ytdlp.Strategies,
		slots:      make(chan struct{}, maxSlots),
	}
}

func (p *NativeProvider) Name() string { return "native" }

func (p *NativeProvider) Matches(string) bool { return true }

func (p *NativeProvider) Acquire(ctx context.Context, req Request) (Result, error) {
	select {
	case p.slots <- struct{}{}:
		defer func() { <-p.slots }()
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}

	var errs []error
	for _, strategy := range p.strategies {
		path, meta, err := p.client.Acquire(ctx, req.URL, req.DestDir, strategy)
		if err != nil {
			if ctx.Err() != nil {
				return Result{}, ctx.Err()
			}
			errs = append(errs, fmt.Errorf("strategy %s: %w", strategy, err))
			continue
		}
		return Result{
			FilePath:  path,
			Container: strings.TrimPrefix(filepath.Ext(path), "."),
			Provider:  p.Name(),
			Metadata:  extractorMetadata(meta),
		}, nil
	}
	return Result{}, fmt.Errorf("all strategies exhausted: %w", errors.Join(errs...))
}

// extractorMetadata maps yt-dlp output onto the platform signal, preferring
// the explicit track/artist fields when the extractor populated them.
func extractorMetadata(meta ytdlp.Metadata) PlatformMetadata {
	title := strings.TrimSpace(meta.Track)
	if title == "" {
		title = strings.TrimSpace(meta.Title)
	}
	author := strings.TrimSpace(meta.Artist)
	if author == "" {
		author = strings.TrimSpace(meta.Uploader)
	}
	return PlatformMetadata{
		Source:   "native",
		Title:    title,
		Author:   author,
		Duration: meta.Duration,
	}
}
