// Package resolve locates and downloads the high-fidelity master track for an
// identified clip.
package resolve

import (
	"context"

	"soundminer/internal/services/ytdlp"
)

// Candidate is one catalog search hit.
type Candidate struct {
	ID       string
	Title    string
	Duration float64
}

// Catalog searches for and downloads master tracks.
type Catalog interface {
	Search(ctx context.Context, query string, limit int) ([]Candidate, error)
	Download(ctx context.Context, candidateID, destPath string) error
}

// YtDlpCatalog backs the catalog with the yt-dlp search surface.
type YtDlpCatalog struct {
	client *ytdlp.Client
}

// NewYtDlpCatalog wraps an existing yt-dlp client.
func NewYtDlpCatalog(client *ytdlp.Client) *YtDlpCatalog {
	return &YtDlpCatalog{client: client}
}

func (c *YtDlpCatalog) Search(ctx context.Context, query string, limit int) ([]Candidate, error) {
	results, err := c.client.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	candidates := make([]Candidate, 0, len(results))
	for _, res := range results {
		candidates = append(candidates, Candidate{
			ID:       res.ID,
			Title:    res.Title,
			Duration: res.Duration,
		})
	}
	return candidates, nil
}

func (c *YtDlpCatalog) Download(ctx context.Context, candidateID, destPath string) error {
	return c.client.DownloadAudio(ctx, candidateID, destPath)
}

// SelectCandidate returns the first candidate whose duration falls strictly
// inside the (minSeconds, maxSeconds) window, preserving search ranking. The
// bounds themselves are rejected so shorts and full mixes never slip through.
func SelectCandidate(candidates []Candidate, minSeconds, maxSeconds float64) (Candidate, bool) {
	for _, cand := range candidates {
		if cand.Duration > minSeconds && cand.Duration < maxSeconds {
			return cand, true
		}
	}
	return Candidate{}, false
}
