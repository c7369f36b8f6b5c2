package acquire

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"soundminer/internal/services/tikwm"
)

// TikwmResolver is the subset of the tikwm client the provider uses.
type TikwmResolver interface {
	Resolve(ctx context.Context, clipURL string) (tikwm.Resolution, error)
	Download(ctx context.Context, res tikwm.Resolution, destDir string) (string, error)
}

// TikwmProvider is tier one: the TikWM relay. It only handles TikTok URLs.
type TikwmProvider struct {
	client TikwmResolver
}

// NewTikwmProvider constructs the tier-one provider.
func NewTikwmProvider(client TikwmResolver) *TikwmProvider {
	return &TikwmProvider{client: client}
}

func (p *TikwmProvider) Name() string { return "tikwm" }

func (p *TikwmProvider) Matches(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	return host == "tiktok.com" || strings.HasSuffix(host, ".tiktok.com")
}

func (p *TikwmProvider) Acquire(ctx context.Context, req Request) (Result, error) {
	res, err := p.client.Resolve(ctx, req.URL)
	if err != nil {
		return Result{}, fmt.Errorf("resolve: %w", err)
	}
	path, err := p.client.Download(ctx, res, req.DestDir)
	if err != nil {
		return Result{}, fmt.Errorf("download: %w", err)
	}
	return Result{
		FilePath:  path,
		Container: strings.TrimPrefix(filepath.Ext(path), "."),
		Provider:  p.Name(),
		Metadata: PlatformMetadata{
			Source:   p.Name(),
			Title:    res.MusicTitle,
			Author:   res.MusicOwner,
			Duration: res.Duration,
		},
	}, nil
}
