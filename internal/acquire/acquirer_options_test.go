package acquire

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"soundminer/internal/services/ytdlp"
	"soundminer/internal/testsupport"
)

type immediateExecutor struct {
	destDir string
}

func (e immediateExecutor) Run(ctx context.Context, binary string, args []string, onStdout func(string)) error {
	return os.WriteFile(filepath.Join(e.destDir, "reference.mp4"), []byte("video"), 0o644)
}

func TestNativeClientOptionsHonorConfiguredCautiousDelay(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Acquisition.CautiousDelaySeconds = 0

	destDir := t.TempDir()
	opts := append(nativeClientOptions(cfg), ytdlp.WithExecutor(immediateExecutor{destDir: destDir}))
	client, err := ytdlp.New("yt-dlp", 10, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	start := time.Now()
	if _, _, err := client.Acquire(ctx, "https://youtu.be/abc", destDir, ytdlp.StrategyCautious); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("cautious acquisition waited %s despite a zero configured delay", elapsed)
	}
}
