// Package shazam wraps an HTTP recognition endpoint with Shazam result
// semantics.
package shazam

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Match is the outcome of one recognition attempt. Found is false when the
// service answered but matched nothing.
type Match struct {
	Found  bool
	Title  string
	Artist string
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

// Client talks to the recognition endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New constructs a Shazam recognition client.
func New(baseURL string, timeoutSeconds int, opts ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return nil, errors.New("shazam base url required")
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

type apiResponse struct {
	Track struct {
		Title    string `json:"title"`
		Subtitle string `json:"subtitle"`
	} `json:"track"`
}

// Recognize submits the normalized audio at audioPath and returns the match.
func (c *Client) Recognize(ctx context.Context, audioPath string) (Match, error) {
	var match Match

	file, err := os.Open(audioPath)
	if err != nil {
		return match, fmt.Errorf("open audio: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return match, fmt.Errorf("build upload: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return match, fmt.Errorf("read audio: %w", err)
	}
	if err := writer.Close(); err != nil {
		return match, fmt.Errorf("finalize upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/recognize", &body)
	if err != nil {
		return match, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return match, fmt.Errorf("shazam request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return match, fmt.Errorf("shazam request: http %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var payload apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return match, fmt.Errorf("shazam response: %w", err)
	}

	title := strings.TrimSpace(payload.Track.Title)
	artist := strings.TrimSpace(payload.Track.Subtitle)
	if title == "" {
		return match, nil
	}
	match.Found = true
	match.Title = title
	match.Artist = artist
	return match, nil
}
