// Package ffmpeg wraps the ffmpeg CLI for audio normalization.
package ffmpeg

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// Normalizer converts an acquired clip into fingerprint-ready audio.
type Normalizer interface {
	Normalize(ctx context.Context, inputPath, outputPath string) error
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onStderr func(string)) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps ffmpeg CLI interactions.
type Client struct {
	binary     string
	sampleRate int
	timeout    time.Duration
	exec       Executor
}

// New constructs an ffmpeg client.
func New(binary string, sampleRate, timeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("ffmpeg binary required")
	}
	if sampleRate <= 0 {
		sampleRate = 44100
	}
	client := &Client{
		binary:     binary,
		sampleRate: sampleRate,
		timeout:    time.Duration(timeoutSeconds) * time.Second,
		exec:       commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Normalize strips the video stream and resamples the audio into mono 16-bit
// PCM WAV with all container metadata removed. Fingerprinting services expect
// this shape regardless of what the provider delivered.
func (c *Client) Normalize(ctx context.Context, inputPath, outputPath string) error {
	if strings.TrimSpace(inputPath) == "" {
		return errors.New("input path required")
	}
	if strings.TrimSpace(outputPath) == "" {
		return errors.New("output path required")
	}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := []string{
		"-y",
		"-i", inputPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", fmt.Sprintf("%d", c.sampleRate),
		"-ac", "1",
		"-map_metadata", "-1",
		outputPath,
	}

	var lastLine string
	if err := c.exec.Run(runCtx, c.binary, args, func(line string) {
		if strings.TrimSpace(line) != "" {
			lastLine = line
		}
	}); err != nil {
		_ = os.Remove(outputPath)
		if lastLine != "" {
			return fmt.Errorf("ffmpeg normalize: %w (%s)", err, strings.TrimSpace(lastLine))
		}
		return fmt.Errorf("ffmpeg normalize: %w", err)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return fmt.Errorf("ffmpeg produced no output: %w", err)
	}
	if info.Size() == 0 {
		_ = os.Remove(outputPath)
		return errors.New("ffmpeg produced empty output")
	}
	return nil
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onStderr func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stderr)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			if onStderr != nil {
				onStderr(scanner.Text())
			}
		}
	}()
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		return err
	}
	return nil
}
