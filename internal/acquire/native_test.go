package acquire_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"soundminer/internal/acquire"
	"soundminer/internal/services/ytdlp"
)

type stubExtractor struct {
	strategies []ytdlp.Strategy
	failUntil  int
	meta       ytdlp.Metadata
}

func (s *stubExtractor) Acquire(ctx context.Context, url, destDir string, strategy ytdlp.Strategy) (string, ytdlp.Metadata, error) {
	s.strategies = append(s.strategies, strategy)
	if len(s.strategies) <= s.failUntil {
		return "", ytdlp.Metadata{}, errors.New("blocked")
	}
	return destDir + "/reference.mp4", s.meta, nil
}

func TestNativeEscalatesThroughStrategies(t *testing.T) {
	extractor := &stubExtractor{
		failUntil: 2,
		meta:      ytdlp.Metadata{Title: "clip", Uploader: "someone"},
	}
	provider := acquire.NewNativeProvider(extractor, 1)

	result, err := provider.Acquire(context.Background(), acquire.Request{
		URL:     "https://youtu.be/abc",
		DestDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	want := []ytdlp.Strategy{ytdlp.StrategyWeb, ytdlp.StrategyAndroid, ytdlp.StrategyCautious}
	if len(extractor.strategies) != len(want) {
		t.Fatalf("strategies = %v", extractor.strategies)
	}
	for i, strategy := range want {
		if extractor.strategies[i] != strategy {
			t.Fatalf("strategies[%d] = %q, want %q", i, extractor.strategies[i], strategy)
		}
	}
	if result.Container != "mp4" || result.Provider != "native" {
		t.Fatalf("result = %+v", result)
	}
}

func TestNativeStopsAtFirstWorkingStrategy(t *testing.T) {
	extractor := &stubExtractor{meta: ytdlp.Metadata{Track: "One More Time", Artist: "Daft Punk", Title: "ignored", Uploader: "ignored"}}
	provider := acquire.NewNativeProvider(extractor, 1)

	result, err := provider.Acquire(context.Background(), acquire.Request{
		URL:     "https://youtu.be/abc",
		DestDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if len(extractor.strategies) != 1 || extractor.strategies[0] != ytdlp.StrategyWeb {
		t.Fatalf("strategies = %v", extractor.strategies)
	}
	if result.Metadata.Title != "One More Time" || result.Metadata.Author != "Daft Punk" {
		t.Fatalf("metadata should prefer track/artist fields: %+v", result.Metadata)
	}
}

func TestNativeReportsAllStrategyFailures(t *testing.T) {
	extractor := &stubExtractor{failUntil: 99}
	provider := acquire.NewNativeProvider(extractor, 1)

	_, err := provider.Acquire(context.Background(), acquire.Request{
		URL:     "https://youtu.be/abc",
		DestDir: t.TempDir(),
	})
	if err == nil {
		t.Fatal("expected failure when every strategy is blocked")
	}
	for _, strategy := range []string{"web", "android", "cautious"} {
		if !strings.Contains(err.Error(), "strategy "+strategy) {
			t.Fatalf("error missing strategy %s: %v", strategy, err)
		}
	}
}
