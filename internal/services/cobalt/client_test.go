package cobalt_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"soundminer/internal/services/cobalt"
)

func TestAcquireStreamResponse(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/json":
			if r.Method != http.MethodPost {
				t.Errorf("method = %s", r.Method)
			}
			var req struct {
				URL     string `json:"url"`
				VCodec  string `json:"vCodec"`
				AFormat string `json:"aFormat"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode request: %v", err)
			}
			if req.VCodec != "h264" || req.AFormat != "mp3" {
				t.Errorf("request codecs = %q / %q", req.VCodec, req.AFormat)
			}
			json.NewEncoder(w).Encode(map[string]string{
				"status": "stream",
				"url":    server.URL + "/media",
			})
		case "/media":
			w.Header().Set("Content-Type", "audio/mpeg")
			w.Write([]byte("mp3-bytes"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client, err := cobalt.New(server.URL, 5)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	destDir := t.TempDir()
	path, err := client.Acquire(context.Background(), "https://www.instagram.com/reel/abc/", destDir)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if filepath.Base(path) != "reference.mp3" {
		t.Fatalf("output file = %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != "mp3-bytes" {
		t.Fatalf("output contents = %q", data)
	}
}

func TestAcquireRejectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"status": "error",
			"text":   "unsupported service",
		})
	}))
	defer server.Close()

	client, err := cobalt.New(server.URL, 5)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = client.Acquire(context.Background(), "https://example.com/clip", t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "unsupported service") {
		t.Fatalf("expected rejection error, got %v", err)
	}
}

func TestAcquireMissingMediaURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "tunnel"})
	}))
	defer server.Close()

	client, err := cobalt.New(server.URL, 5)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := client.Acquire(context.Background(), "https://example.com/clip", t.TempDir()); err == nil {
		t.Fatal("expected error for missing media url")
	}
}

func TestNewRequiresBaseURL(t *testing.T) {
	if _, err := cobalt.New("  ", 5); err == nil {
		t.Fatal("expected error for empty base url")
	}
}
