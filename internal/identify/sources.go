package identify

import (
	"context"

	"soundminer/internal/services/acoustid"
	"soundminer/internal/services/shazam"
)

// ShazamSource adapts the Shazam client into a fingerprint signal source.
type ShazamSource struct {
	client *shazam.Client
}

// NewShazamSource wraps an existing Shazam client.
func NewShazamSource(client *shazam.Client) *ShazamSource {
	return &ShazamSource{client: client}
}

func (s *ShazamSource) Name() string { return "shazam" }
func (s *ShazamSource) Kind() Kind   { return KindFingerprint }

func (s *ShazamSource) Collect(ctx context.Context, audioPath string) (Signal, error) {
	match, err := s.client.Recognize(ctx, audioPath)
	if err != nil {
		return absentSignal(s.Name(), s.Kind()), err
	}
	if !match.Found {
		return absentSignal(s.Name(), s.Kind()), nil
	}
	return presentSignal(s.Name(), s.Kind(), match.Title, match.Artist), nil
}

// AcoustIDSource adapts the AcoustID client into a fingerprint signal source.
type AcoustIDSource struct {
	client *acoustid.Client
}

// NewAcoustIDSource wraps an existing AcoustID client.
func NewAcoustIDSource(client *acoustid.Client) *AcoustIDSource {
	return &AcoustIDSource{client: client}
}

func (s *AcoustIDSource) Name() string { return "acoustid" }
func (s *AcoustIDSource) Kind() Kind   { return KindFingerprint }

func (s *AcoustIDSource) Collect(ctx context.Context, audioPath string) (Signal, error) {
	match, err := s.client.Recognize(ctx, audioPath)
	if err != nil {
		return absentSignal(s.Name(), s.Kind()), err
	}
	if !match.Found {
		return absentSignal(s.Name(), s.Kind()), nil
	}
	return presentSignal(s.Name(), s.Kind(), match.Title, match.Artist), nil
}
