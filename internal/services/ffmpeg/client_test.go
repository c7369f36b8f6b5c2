package ffmpeg_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"soundminer/internal/services/ffmpeg"
)

type stubExecutor struct {
	binary string
	args   []string
	stderr []string
	err    error
	onRun  func(args []string)
}

func (s *stubExecutor) Run(ctx context.Context, binary string, args []string, onStderr func(string)) error {
	s.binary = binary
	s.args = args
	for _, line := range s.stderr {
		onStderr(line)
	}
	if s.onRun != nil {
		s.onRun(args)
	}
	return s.err
}

func TestNormalizeArguments(t *testing.T) {
	output := filepath.Join(t.TempDir(), "normalized.wav")
	executor := &stubExecutor{onRun: func(args []string) {
		if err := os.WriteFile(output, []byte("wav"), 0o644); err != nil {
			t.Fatalf("write output: %v", err)
		}
	}}
	client, err := ffmpeg.New("ffmpeg", 44100, 10, ffmpeg.WithExecutor(executor))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := client.Normalize(context.Background(), "/staging/item-1/reference.mp4", output); err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	want := []string{
		"-y",
		"-i", "/staging/item-1/reference.mp4",
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "44100",
		"-ac", "1",
		"-map_metadata", "-1",
		output,
	}
	if len(executor.args) != len(want) {
		t.Fatalf("args = %v", executor.args)
	}
	for i, arg := range want {
		if executor.args[i] != arg {
			t.Fatalf("args[%d] = %q, want %q", i, executor.args[i], arg)
		}
	}
}

func TestNormalizeIncludesStderrDetail(t *testing.T) {
	output := filepath.Join(t.TempDir(), "normalized.wav")
	executor := &stubExecutor{
		stderr: []string{"Input #0", "Invalid data found when processing input"},
		err:    errors.New("exit status 1"),
	}
	client, err := ffmpeg.New("ffmpeg", 0, 10, ffmpeg.WithExecutor(executor))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	err = client.Normalize(context.Background(), "/staging/in.mp4", output)
	if err == nil || !strings.Contains(err.Error(), "Invalid data found") {
		t.Fatalf("expected stderr detail in error, got %v", err)
	}
}

func TestNormalizeRejectsEmptyOutput(t *testing.T) {
	output := filepath.Join(t.TempDir(), "normalized.wav")
	executor := &stubExecutor{onRun: func(args []string) {
		if err := os.WriteFile(output, nil, 0o644); err != nil {
			t.Fatalf("write output: %v", err)
		}
	}}
	client, err := ffmpeg.New("ffmpeg", 44100, 10, ffmpeg.WithExecutor(executor))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := client.Normalize(context.Background(), "/staging/in.mp4", output); err == nil {
		t.Fatal("expected error for empty output file")
	}
	if _, statErr := os.Stat(output); !os.IsNotExist(statErr) {
		t.Fatalf("empty output not removed: %v", statErr)
	}
}

func TestNewRequiresBinary(t *testing.T) {
	if _, err := ffmpeg.New("  ", 44100, 10); err == nil {
		t.Fatal("expected error for empty binary")
	}
}
