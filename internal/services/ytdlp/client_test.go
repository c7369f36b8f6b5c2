package ytdlp_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"soundminer/internal/services/ytdlp"
)

type stubExecutor struct {
	args   []string
	stdout []string
	err    error
	onRun  func(args []string)
}

func (s *stubExecutor) Run(ctx context.Context, binary string, args []string, onStdout func(string)) error {
	s.args = args
	if s.onRun != nil {
		s.onRun(args)
	}
	if onStdout != nil {
		for _, line := range s.stdout {
			onStdout(line)
		}
	}
	return s.err
}

func hasArgPair(args []string, flag, value string) bool {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag && args[i+1] == value {
			return true
		}
	}
	return false
}

func TestAcquireParsesExtractorMetadata(t *testing.T) {
	destDir := t.TempDir()
	executor := &stubExecutor{
		stdout: []string{`{"id": "abc", "title": "clip", "uploader": "someone", "artist": "Daft Punk", "track": "One More Time", "duration": 32.5, "ext": "mp4"}`},
		onRun: func(args []string) {
			if err := os.WriteFile(filepath.Join(destDir, "reference.mp4"), []byte("video"), 0o644); err != nil {
				t.Fatalf("write reference: %v", err)
			}
		},
	}
	client, err := ytdlp.New("yt-dlp", 10, ytdlp.WithExecutor(executor))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	path, meta, err := client.Acquire(context.Background(), "https://youtu.be/abc", destDir, ytdlp.StrategyWeb)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if filepath.Base(path) != "reference.mp4" {
		t.Fatalf("path = %q", path)
	}
	if meta.Artist != "Daft Punk" || meta.Track != "One More Time" {
		t.Fatalf("metadata = %+v", meta)
	}
	if !hasArgPair(executor.args, "-f", "best") {
		t.Fatalf("args = %v", executor.args)
	}
	if executor.args[len(executor.args)-1] != "https://youtu.be/abc" {
		t.Fatalf("url not last arg: %v", executor.args)
	}
}

func TestAcquireStrategyArguments(t *testing.T) {
	cases := []struct {
		strategy ytdlp.Strategy
		flag     string
		value    string
	}{
		{ytdlp.StrategyAndroid, "--extractor-args", "youtube:player_client=android"},
		{ytdlp.StrategyCautious, "--sleep-requests", "2"},
	}
	for _, tc := range cases {
		destDir := t.TempDir()
		executor := &stubExecutor{onRun: func(args []string) {
			if err := os.WriteFile(filepath.Join(destDir, "reference.mp4"), []byte("video"), 0o644); err != nil {
				t.Fatalf("write reference: %v", err)
			}
		}}
		client, err := ytdlp.New("yt-dlp", 10,
			ytdlp.WithExecutor(executor),
			ytdlp.WithCautiousDelay(0),
		)
		if err != nil {
			t.Fatalf("New: %v", err)
		}

		if _, _, err := client.Acquire(context.Background(), "https://youtu.be/abc", destDir, tc.strategy); err != nil {
			t.Fatalf("Acquire(%s): %v", tc.strategy, err)
		}
		if !hasArgPair(executor.args, tc.flag, tc.value) {
			t.Fatalf("strategy %s args = %v", tc.strategy, executor.args)
		}
	}
}

func TestAcquireCautiousPresentsBrowserUserAgent(t *testing.T) {
	destDir := t.TempDir()
	executor := &stubExecutor{onRun: func(args []string) {
		if err := os.WriteFile(filepath.Join(destDir, "reference.mp4"), []byte("video"), 0o644); err != nil {
			t.Fatalf("write reference: %v", err)
		}
	}}
	client, err := ytdlp.New("yt-dlp", 10,
		ytdlp.WithExecutor(executor),
		ytdlp.WithCautiousDelay(0),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, _, err := client.Acquire(context.Background(), "https://youtu.be/abc", destDir, ytdlp.StrategyCautious); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	agent := ""
	for i := 0; i < len(executor.args)-1; i++ {
		if executor.args[i] == "--user-agent" {
			agent = executor.args[i+1]
		}
	}
	if !strings.HasPrefix(agent, "Mozilla/5.0") {
		t.Fatalf("cautious user agent = %q, args = %v", agent, executor.args)
	}
}

func TestAcquireCleansPartialsOnFailure(t *testing.T) {
	destDir := t.TempDir()
	executor := &stubExecutor{
		err: errors.New("exit status 1"),
		onRun: func(args []string) {
			if err := os.WriteFile(filepath.Join(destDir, "reference.mp4.part"), []byte("partial"), 0o644); err != nil {
				t.Fatalf("write partial: %v", err)
			}
		},
	}
	client, err := ytdlp.New("yt-dlp", 10, ytdlp.WithExecutor(executor))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, _, err := client.Acquire(context.Background(), "https://youtu.be/abc", destDir, ytdlp.StrategyWeb); err == nil {
		t.Fatal("expected acquire failure")
	}
	if _, err := os.Stat(filepath.Join(destDir, "reference.mp4.part")); !os.IsNotExist(err) {
		t.Fatalf("partial file not removed: %v", err)
	}
}

func TestSearchParsesFlatResults(t *testing.T) {
	executor := &stubExecutor{stdout: []string{
		`{"id": "a1", "title": "One More Time (Official Audio)", "duration": 320, "url": "https://youtu.be/a1"}`,
		``,
		`{"id": "b2", "title": "One More Time Live", "duration": 612, "url": "https://youtu.be/b2"}`,
	}}
	client, err := ytdlp.New("yt-dlp", 10, ytdlp.WithExecutor(executor))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	results, err := client.Search(context.Background(), "Daft Punk One More Time official audio", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %+v", results)
	}
	if results[0].ID != "a1" || results[1].Duration != 612 {
		t.Fatalf("results = %+v", results)
	}

	found := false
	for _, arg := range executor.args {
		if strings.HasPrefix(arg, "ytsearch5:") {
			found = true
		}
	}
	if !found {
		t.Fatalf("search args = %v", executor.args)
	}
}

func TestDownloadAudioVerifiesOutput(t *testing.T) {
	destPath := filepath.Join(t.TempDir(), "master.mp3")
	executor := &stubExecutor{onRun: func(args []string) {
		if err := os.WriteFile(destPath, []byte("audio"), 0o644); err != nil {
			t.Fatalf("write audio: %v", err)
		}
	}}
	client, err := ytdlp.New("yt-dlp", 10, ytdlp.WithExecutor(executor))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := client.DownloadAudio(context.Background(), "a1", destPath); err != nil {
		t.Fatalf("DownloadAudio: %v", err)
	}
	if !hasArgPair(executor.args, "--audio-format", "mp3") || !hasArgPair(executor.args, "--audio-quality", "320K") {
		t.Fatalf("args = %v", executor.args)
	}

	missing := filepath.Join(t.TempDir(), "master.mp3")
	silent, err := ytdlp.New("yt-dlp", 10, ytdlp.WithExecutor(&stubExecutor{}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := silent.DownloadAudio(context.Background(), "a1", missing); err == nil {
		t.Fatal("expected error when no output produced")
	}
}
