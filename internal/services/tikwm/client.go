// Package tikwm wraps the TikWM relay API, the first acquisition tier for
// TikTok URLs.
package tikwm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const defaultBaseURL = "https://www.tikwm.com/api/"

// Resolution is the relay's answer for a single clip.
type Resolution struct {
	PlayURL    string
	MusicURL   string
	MusicTitle string
	MusicOwner string
	Duration   float64
	PhotoPost  bool
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// Client talks to the TikWM relay.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New constructs a TikWM client.
func New(baseURL string, timeoutSeconds int, opts ...Option) *Client {
	base := strings.TrimSpace(baseURL)
	if base == "" {
		base = defaultBaseURL
	}
	timeout := 30 * time.Second
	if timeoutSeconds > 0 {
		timeout = time.Duration(timeoutSeconds) * time.Second
	}
	client := &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type apiResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		Play      string   `json:"play"`
		Music     string   `json:"music"`
		Images    []string `json:"images"`
		Duration  float64  `json:"duration"`
		MusicInfo struct {
			Title  string `json:"title"`
			Author string `json:"author"`
		} `json:"music_info"`
	} `json:"data"`
}

// Resolve asks the relay for download URLs and sound metadata for clipURL.
func (c *Client) Resolve(ctx context.Context, clipURL string) (Resolution, error) {
	var res Resolution
	if strings.TrimSpace(clipURL) == "" {
		return res, errors.New("clip url required")
	}

	form := url.Values{}
	form.Set("url", clipURL)
	form.Set("hd", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return res, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return res, fmt.Errorf("tikwm request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return res, fmt.Errorf("tikwm request: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return res, fmt.Errorf("tikwm response: %w", err)
	}
	if payload.Code != 0 {
		return res, fmt.Errorf("tikwm rejected url: code %d: %s", payload.Code, strings.TrimSpace(payload.Msg))
	}

	res.PlayURL = strings.TrimSpace(payload.Data.Play)
	res.MusicURL = strings.TrimSpace(payload.Data.Music)
	res.MusicTitle = strings.TrimSpace(payload.Data.MusicInfo.Title)
	res.MusicOwner = strings.TrimSpace(payload.Data.MusicInfo.Author)
	res.Duration = payload.Data.Duration
	res.PhotoPost = len(payload.Data.Images) > 0
	return res, nil
}

// Download fetches a resolved media URL into destDir. Photo posts carry no
// video stream, and some video posts come back without a play URL; both fall
// back to the sound MP3.
func (c *Client) Download(ctx context.Context, res Resolution, destDir string) (string, error) {
	mediaURL := res.PlayURL
	ext := ".mp4"
	if res.PhotoPost || mediaURL == "" {
		mediaURL = res.MusicURL
		ext = ".mp3"
	}
	if mediaURL == "" {
		return "", errors.New("tikwm resolution has no media url")
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create destination: %w", err)
	}
	destPath := filepath.Join(destDir, "reference"+ext)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("tikwm download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("tikwm download: http %d", resp.StatusCode)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("create output: %w", err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		_ = os.Remove(destPath)
		return "", fmt.Errorf("write output: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(destPath)
		return "", fmt.Errorf("close output: %w", err)
	}
	return destPath, nil
}
