package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"soundminer/internal/config"
)

const userAgent = "Soundminer-Go/0.1.0"

// Event enumerates the workflow milestones that can be published.
type Event string

const (
	EventBatchStarted           Event = "batch_started"
	EventBatchCompleted         Event = "batch_completed"
	EventItemCompleted          Event = "item_completed"
	EventItemFailed             Event = "item_failed"
	EventIdentificationComplete Event = "identification_complete"
)

// Payload carries event-specific fields for message formatting.
type Payload map[string]string

// Service defines the notification surface exposed to workflow components.
type Service interface {
	Publish(ctx context.Context, event Event, data Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:   topic,
		client:     &http.Client{Timeout: timeout},
		sendItems:  cfg.Notifications.Items,
		sendBatch:  cfg.Notifications.Batch,
		sendErrors: cfg.Notifications.Errors,
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint   string
	client     *http.Client
	sendItems  bool
	sendBatch  bool
	sendErrors bool
}

func (n *ntfyService) Publish(ctx context.Context, event Event, data Payload) error {
	msg, enabled := n.format(event, data)
	if !enabled {
		return nil
	}
	return n.send(ctx, msg)
}

func (n *ntfyService) format(event Event, data Payload) (message, bool) {
	get := func(key string) string { return strings.TrimSpace(data[key]) }

	switch event {
	case EventBatchStarted:
		return message{
			title: "Soundminer - Batch Started",
			body:  fmt.Sprintf("Processing %s URLs", get("count")),
			tags:  []string{"soundminer", "batch", "started"},
		}, n.sendBatch
	case EventBatchCompleted:
		return message{
			title:    "Soundminer - Batch Complete",
			body:     fmt.Sprintf("Processed %s, failed %s in %s", get("processed"), get("failed"), get("duration")),
			tags:     []string{"soundminer", "batch", "completed"},
			priority: "high",
		}, n.sendBatch
	case EventItemCompleted:
		body := fmt.Sprintf("Completed: %s", get("label"))
		if file := get("finalDir"); file != "" {
			body = fmt.Sprintf("%s\nFolder: %s", body, file)
		}
		return message{
			title: "Soundminer - Item Complete",
			body:  body,
			tags:  []string{"soundminer", "item", "completed"},
		}, n.sendItems
	case EventItemFailed:
		return message{
			title:    "Soundminer - Item Failed",
			body:     fmt.Sprintf("Failed %s: %s", get("url"), get("error")),
			tags:     []string{"soundminer", "error", "alert"},
			priority: "high",
		}, n.sendErrors
	case EventIdentificationComplete:
		return message{
			title: "Soundminer - Identified",
			body:  fmt.Sprintf("Identified: %s (%s)", get("label"), get("verdict")),
			tags:  []string{"soundminer", "identify", "completed"},
		}, n.sendItems
	default:
		return message{}, false
	}
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if msg.title != "" {
		req.Header.Set("Title", msg.title)
	}
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" {
		req.Header.Set("Priority", msg.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification rejected: http %d", resp.StatusCode)
	}
	return nil
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
