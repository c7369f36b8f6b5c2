package notifications_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"soundminer/internal/notifications"
	"soundminer/internal/testsupport"
)

type capturedRequest struct {
	title    string
	tags     string
	priority string
	body     string
}

func newCaptureServer(t *testing.T) (*httptest.Server, func() []capturedRequest) {
	t.Helper()
	var mu sync.Mutex
	var captured []capturedRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		captured = append(captured, capturedRequest{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		})
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))

	return server, func() []capturedRequest {
		mu.Lock()
		defer mu.Unlock()
		cp := make([]capturedRequest, len(captured))
		copy(cp, captured)
		return cp
	}
}

func TestPublishItemFailed(t *testing.T) {
	server, requests := newCaptureServer(t)
	defer server.Close()

	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = server.URL

	svc := notifications.NewService(cfg)
	err := svc.Publish(context.Background(), notifications.EventItemFailed, notifications.Payload{
		"url":   "https://youtu.be/abc",
		"error": "all providers exhausted",
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	got := requests()
	if len(got) != 1 {
		t.Fatalf("captured %d requests, want 1", len(got))
	}
	if got[0].title != "Soundminer - Item Failed" {
		t.Fatalf("title = %q", got[0].title)
	}
	if got[0].priority != "high" {
		t.Fatalf("priority = %q", got[0].priority)
	}
	if !strings.Contains(got[0].body, "all providers exhausted") {
		t.Fatalf("body = %q", got[0].body)
	}
}

func TestPublishRespectsEventToggles(t *testing.T) {
	server, requests := newCaptureServer(t)
	defer server.Close()

	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Items = false

	svc := notifications.NewService(cfg)
	err := svc.Publish(context.Background(), notifications.EventItemCompleted, notifications.Payload{
		"label": "Daft Punk - One More Time",
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if got := requests(); len(got) != 0 {
		t.Fatalf("disabled event published %d requests", len(got))
	}
}

func TestPublishBatchCompleted(t *testing.T) {
	server, requests := newCaptureServer(t)
	defer server.Close()

	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = server.URL

	svc := notifications.NewService(cfg)
	err := svc.Publish(context.Background(), notifications.EventBatchCompleted, notifications.Payload{
		"processed": "4",
		"failed":    "1",
		"duration":  "2m10s",
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	got := requests()
	if len(got) != 1 {
		t.Fatalf("captured %d requests, want 1", len(got))
	}
	if got[0].body != "Processed 4, failed 1 in 2m10s" {
		t.Fatalf("body = %q", got[0].body)
	}
	if !strings.Contains(got[0].tags, "batch") {
		t.Fatalf("tags = %q", got[0].tags)
	}
}

func TestNoopServiceWithoutTopic(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	svc := notifications.NewService(cfg)
	err := svc.Publish(context.Background(), notifications.EventBatchStarted, notifications.Payload{"count": "3"})
	if err != nil {
		t.Fatalf("noop Publish: %v", err)
	}
}
