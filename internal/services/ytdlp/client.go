// Package ytdlp wraps the yt-dlp CLI for native extraction, catalog search,
// and high-bitrate audio downloads.
package ytdlp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Strategy selects the client identity yt-dlp presents to the platform.
type Strategy string

const (
	// StrategyWeb uses the default web client identity.
	StrategyWeb Strategy = "web"
	// StrategyAndroid impersonates the Android app client.
	StrategyAndroid Strategy = "android"
	// StrategyCautious is the web identity with rate-limit friendly pacing.
	StrategyCautious Strategy = "cautious"
)

// Strategies is the escalation order the acquisition chain walks through.
var Strategies = []Strategy{StrategyWeb, StrategyAndroid, StrategyCautious}

// Metadata is the subset of extractor output the pipeline consumes.
type Metadata struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Uploader string  `json:"uploader"`
	Artist   string  `json:"artist"`
	Track    string  `json:"track"`
	Duration float64 `json:"duration"`
	Ext      string  `json:"ext"`
	URL      string  `json:"webpage_url"`
}

// SearchResult is one catalog search candidate.
type SearchResult struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
	URL      string  `json:"url"`
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onStdout func(string)) error
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

// WithCautiousDelay overrides the pre-request delay used by the cautious strategy.
func WithCautiousDelay(d time.Duration) Option {
	return func(c *Client) {
		c.cautiousDelay = d
	}
}

// Client wraps yt-dlp CLI interactions.
type Client struct {
	binary        string
	timeout       time.Duration
	cautiousDelay time.Duration
	exec          Executor
}

// New constructs a yt-dlp client.
func New(binary string, timeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("yt-dlp binary required")
	}
	client := &Client{
		binary:        binary,
		timeout:       time.Duration(timeoutSeconds) * time.Second,
		cautiousDelay: 5 * time.Second,
		exec:          commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Acquire downloads the clip at url into destDir using the given client
// identity strategy. It returns the downloaded file path and the extractor
// metadata written alongside it.
func (c *Client) Acquire(ctx context.Context, url, destDir string, strategy Strategy) (string, Metadata, error) {
	var meta Metadata
	if strings.TrimSpace(url) == "" {
		return "", meta, errors.New("url required")
	}
	if strings.TrimSpace(destDir) == "" {
		return "", meta, errors.New("destination directory required")
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", meta, fmt.Errorf("create destination: %w", err)
	}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if strategy == StrategyCautious && c.cautiousDelay > 0 {
		select {
		case <-time.After(c.cautiousDelay):
		case <-runCtx.Done():
			return "", meta, runCtx.Err()
		}
	}

	template := filepath.Join(destDir, "reference.%(ext)s")
	args := []string{
		"--no-playlist",
		"--no-warnings",
		"--print-json",
		"-f", "best",
		"-o", template,
	}
	args = append(args, strategyArgs(strategy)...)
	args = append(args, url)

	var payload strings.Builder
	if err := c.exec.Run(runCtx, c.binary, args, func(line string) {
		payload.WriteString(line)
	}); err != nil {
		removePartials(destDir)
		return "", meta, fmt.Errorf("yt-dlp acquire: %w", err)
	}

	raw := strings.TrimSpace(payload.String())
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &meta); err != nil {
			return "", meta, fmt.Errorf("yt-dlp metadata: %w", err)
		}
	}

	path, err := locateReference(destDir)
	if err != nil {
		return "", meta, err
	}
	return path, meta, nil
}

// Search runs a catalog search and returns up to limit flat candidates in
// result order.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("query required")
	}
	if limit <= 0 {
		limit = 5
	}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := []string{
		"--dump-json",
		"--flat-playlist",
		"--no-warnings",
		fmt.Sprintf("ytsearch%d:%s", limit, query),
	}

	var results []SearchResult
	var parseErr error
	if err := c.exec.Run(runCtx, c.binary, args, func(line string) {
		line = strings.TrimSpace(line)
		if line == "" || parseErr != nil {
			return
		}
		var res SearchResult
		if err := json.Unmarshal([]byte(line), &res); err != nil {
			parseErr = fmt.Errorf("yt-dlp search result: %w", err)
			return
		}
		results = append(results, res)
	}); err != nil {
		return nil, fmt.Errorf("yt-dlp search: %w", err)
	}
	if parseErr != nil {
		return nil, parseErr
	}
	return results, nil
}

// DownloadAudio fetches the given video as a 320kbps MP3 at destPath.
func (c *Client) DownloadAudio(ctx context.Context, videoID, destPath string) error {
	if strings.TrimSpace(videoID) == "" {
		return errors.New("video id required")
	}
	if strings.TrimSpace(destPath) == "" {
		return errors.New("destination path required")
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	template := strings.TrimSuffix(destPath, filepath.Ext(destPath)) + ".%(ext)s"
	args := []string{
		"--no-playlist",
		"--no-warnings",
		"-x",
		"--audio-format", "mp3",
		"--audio-quality", "320K",
		"-o", template,
		videoID,
	}

	if err := c.exec.Run(runCtx, c.binary, args, nil); err != nil {
		removePartials(filepath.Dir(destPath))
		return fmt.Errorf("yt-dlp download audio: %w", err)
	}
	if _, err := os.Stat(destPath); err != nil {
		return fmt.Errorf("yt-dlp produced no audio output: %w", err)
	}
	return nil
}

// cautiousUserAgents is the desktop-browser pool the cautious strategy draws
// from, so repeat attempts do not present the same client identity.
var cautiousUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
}

func strategyArgs(strategy Strategy) []string {
	switch strategy {
	case StrategyAndroid:
		return []string{"--extractor-args", "youtube:player_client=android"}
	case StrategyCautious:
		agent := cautiousUserAgents[rand.Intn(len(cautiousUserAgents))]
		return []string{"--sleep-requests", "2", "--user-agent", agent}
	default:
		return nil
	}
}

// locateReference finds the downloaded reference.* file in destDir.
func locateReference(destDir string) (string, error) {
	entries, err := os.ReadDir(destDir)
	if err != nil {
		return "", fmt.Errorf("inspect download outputs: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".part") || strings.HasSuffix(name, ".ytdl") {
			continue
		}
		if strings.HasPrefix(name, "reference.") {
			return filepath.Join(destDir, name), nil
		}
	}
	return "", errors.New("yt-dlp produced no output file")
}

// removePartials deletes leftover partial downloads so a failed attempt never
// leaves truncated media behind.
func removePartials(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".part") || strings.HasSuffix(name, ".ytdl") {
			_ = os.Remove(filepath.Join(dir, name))
		}
	}
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onStdout func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	var stderrTail strings.Builder
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		for scanner.Scan() {
			if onStdout != nil {
				onStdout(scanner.Text())
			}
		}
	}()
	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stderr)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line != "" {
				stderrTail.Reset()
				stderrTail.WriteString(line)
			}
		}
	}()
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		if tail := stderrTail.String(); tail != "" {
			return fmt.Errorf("%w (%s)", err, tail)
		}
		return err
	}
	return nil
}
