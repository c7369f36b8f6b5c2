// Package cobalt wraps a Cobalt relay instance, the second acquisition tier.
package cobalt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

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

// Client talks to a Cobalt relay.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New constructs a Cobalt client.
func New(baseURL string, timeoutSeconds int, opts ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return nil, errors.New("cobalt base url required")
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
	return client, nil
}

type apiRequest struct {
	URL     string `json:"url"`
	VCodec  string `json:"vCodec"`
	AFormat string `json:"aFormat"`
}

type apiResponse struct {
	Status string `json:"status"`
	URL    string `json:"url"`
	Text   string `json:"text"`
}

// Acquire resolves and downloads the clip at clipURL into destDir.
func (c *Client) Acquire(ctx context.Context, clipURL, destDir string) (string, error) {
	if strings.TrimSpace(clipURL) == "" {
		return "", errors.New("clip url required")
	}

	body, err := json.Marshal(apiRequest{URL: clipURL, VCodec: "h264", AFormat: "mp3"})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/json", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("cobalt request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("cobalt request: http %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var payload apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("cobalt response: %w", err)
	}
	switch payload.Status {
	case "stream", "redirect", "success", "tunnel":
	default:
		return "", fmt.Errorf("cobalt rejected url: status %q: %s", payload.Status, strings.TrimSpace(payload.Text))
	}
	if strings.TrimSpace(payload.URL) == "" {
		return "", errors.New("cobalt response missing media url")
	}

	return c.download(ctx, payload.URL, destDir)
}

func (c *Client) download(ctx context.Context, mediaURL, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create destination: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("cobalt download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("cobalt download: http %d", resp.StatusCode)
	}

	destPath := filepath.Join(destDir, "reference"+mediaExt(resp.Header.Get("Content-Type")))
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

func mediaExt(contentType string) string {
	switch {
	case strings.Contains(contentType, "audio/mpeg"):
		return ".mp3"
	case strings.Contains(contentType, "audio/mp4"), strings.Contains(contentType, "audio/m4a"):
		return ".m4a"
	case strings.Contains(contentType, "webm"):
		return ".webm"
	default:
		return ".mp4"
	}
}
