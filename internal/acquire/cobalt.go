package acquire

import (
	"context"
	"path/filepath"
	"strings"
)

// CobaltDownloader is the subset of the cobalt client the provider uses.
type CobaltDownloader interface {
	Acquire(ctx context.Context, clipURL, destDir string) (string, error)
}

// CobaltProvider is tier two: a generic Cobalt relay that handles any
// supported platform URL. It yields media only, never metadata.
type CobaltProvider struct {
	client CobaltDownloader
}

// NewCobaltProvider constructs the tier-two provider.
func NewCobaltProvider(client CobaltDownloader) *CobaltProvider {
	return &CobaltProvider{client: client}
}

func (p *CobaltProvider) Name() string { return "cobalt" }

func (p *CobaltProvider) Matches(string) bool { return true }

func (p *CobaltProvider) Acquire(ctx context.Context, req Request) (Result, error) {
	path, err := p.client.Acquire(ctx, req.URL, req.DestDir)
	if err != nil {
		return Result{}, err
	}
	return Result{
		FilePath:  path,
		Container: strings.TrimPrefix(filepath.Ext(path), "."),
		Provider:  p.Name(),
	}, nil
}
