// Package acoustid wraps chromaprint fingerprinting (fpcalc) and the AcoustID
// lookup API.
package acoustid

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.acoustid.org"

// Match is the outcome of one lookup. Found is false when the service
// answered but no recording cleared the score floor.
type Match struct {
	Found  bool
	Title  string
	Artist string
	Score  float64
}

// Fingerprint is the chromaprint digest of a normalized audio file.
type Fingerprint struct {
	Duration float64 `json:"duration"`
	Value    string  `json:"fingerprint"`
}

// Executor abstracts fpcalc execution for testability.
type Executor interface {
	Output(ctx context.Context, binary string, args []string) ([]byte, error)
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

// WithExecutor injects a custom fpcalc executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client runs fpcalc and queries the AcoustID web service.
type Client struct {
	baseURL      string
	apiKey       string
	fpcalcBinary string
	httpClient   *http.Client
	exec         Executor
}

// minLookupScore is the floor below which a lookup result is treated as no match.
const minLookupScore = 0.5

// New constructs an AcoustID client.
func New(baseURL, apiKey, fpcalcBinary string, timeoutSeconds int, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("acoustid api key required")
	}
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	binary := strings.TrimSpace(fpcalcBinary)
	if binary == "" {
		binary = "fpcalc"
	}
	timeout := 30 * time.Second
	if timeoutSeconds > 0 {
		timeout = time.Duration(timeoutSeconds) * time.Second
	}
	client := &Client{
		baseURL:      base,
		apiKey:       strings.TrimSpace(apiKey),
		fpcalcBinary: binary,
		httpClient:   &http.Client{Timeout: timeout},
		exec:         commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// FingerprintFile runs fpcalc over the normalized audio at audioPath.
func (c *Client) FingerprintFile(ctx context.Context, audioPath string) (Fingerprint, error) {
	var fp Fingerprint
	out, err := c.exec.Output(ctx, c.fpcalcBinary, []string{"-json", audioPath})
	if err != nil {
		return fp, fmt.Errorf("fpcalc: %w", err)
	}
	if err := json.Unmarshal(out, &fp); err != nil {
		return fp, fmt.Errorf("fpcalc output: %w", err)
	}
	if fp.Value == "" {
		return fp, errors.New("fpcalc produced empty fingerprint")
	}
	return fp, nil
}

type lookupResponse struct {
	Status string `json:"status"`
	Error  struct {
		Message string `json:"message"`
	} `json:"error"`
	Results []struct {
		Score      float64 `json:"score"`
		Recordings []struct {
			Title   string `json:"title"`
			Artists []struct {
				Name string `json:"name"`
			} `json:"artists"`
		} `json:"recordings"`
	} `json:"results"`
}

// Lookup queries AcoustID with the fingerprint and returns the best scoring
// recording.
func (c *Client) Lookup(ctx context.Context, fp Fingerprint) (Match, error) {
	var match Match

	form := url.Values{}
	form.Set("client", c.apiKey)
	form.Set("meta", "recordings")
	form.Set("duration", strconv.Itoa(int(fp.Duration)))
	form.Set("fingerprint", fp.Value)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/lookup", strings.NewReader(form.Encode()))
	if err != nil {
		return match, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return match, fmt.Errorf("acoustid request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return match, fmt.Errorf("acoustid request: http %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var payload lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return match, fmt.Errorf("acoustid response: %w", err)
	}
	if payload.Status != "ok" {
		return match, fmt.Errorf("acoustid lookup failed: %s", payload.Error.Message)
	}

	for _, result := range payload.Results {
		if result.Score < minLookupScore || result.Score < match.Score {
			continue
		}
		for _, rec := range result.Recordings {
			title := strings.TrimSpace(rec.Title)
			if title == "" {
				continue
			}
			match.Found = true
			match.Score = result.Score
			match.Title = title
			if len(rec.Artists) > 0 {
				match.Artist = strings.TrimSpace(rec.Artists[0].Name)
			}
			break
		}
	}
	return match, nil
}

// Recognize fingerprints the file and resolves it through one lookup.
func (c *Client) Recognize(ctx context.Context, audioPath string) (Match, error) {
	fp, err := c.FingerprintFile(ctx, audioPath)
	if err != nil {
		return Match{}, err
	}
	return c.Lookup(ctx, fp)
}

type commandExecutor struct{}

func (commandExecutor) Output(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("%w (%s)", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, err
	}
	return out, nil
}
