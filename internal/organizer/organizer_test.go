package organizer_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"soundminer/internal/logging"
	"soundminer/internal/notifications"
	"soundminer/internal/organizer"
	"soundminer/internal/queue"
	"soundminer/internal/report"
	"soundminer/internal/staging"
	"soundminer/internal/testsupport"
)

type recordingNotifier struct {
	events []notifications.Event
}

func (r *recordingNotifier) Publish(_ context.Context, event notifications.Event, _ notifications.Payload) error {
	r.events = append(r.events, event)
	return nil
}

func TestExecuteAssemblesFinalFolder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	notifier := &recordingNotifier{}
	handler := organizer.NewOrganizerWithNotifier(cfg, store, logging.NewNop(), notifier)
	ctx := context.Background()

	item, err := store.NewURL(ctx, "https://www.tiktok.com/@user/video/1")
	if err != nil {
		t.Fatalf("NewURL: %v", err)
	}
	item.Status = queue.StatusResolved
	stagingDir, err := staging.ItemDir(cfg.Paths.StagingDir, item.ID)
	if err != nil {
		t.Fatalf("staging dir: %v", err)
	}
	item.StagingDir = stagingDir
	item.WinningLabel = "Daft Punk - One More Time"
	item.Verdict = "confirmed"
	item.MasterOutcome = queue.MasterOutcomeFound
	testsupport.WriteFile(t, filepath.Join(item.StagingDir, "reference.mp4"), "video")
	testsupport.WriteFile(t, filepath.Join(item.StagingDir, "master.mp3"), "audio")
	item.ReferenceFile = filepath.Join(item.StagingDir, "reference.mp4")
	item.MasterFile = filepath.Join(item.StagingDir, "master.mp3")

	if err := handler.Execute(ctx, item); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	wantDir := filepath.Join(cfg.Paths.LibraryDir, "001_Daft_Punk_-_One_More_Time")
	if item.FinalDir != wantDir {
		t.Fatalf("final dir = %q, want %q", item.FinalDir, wantDir)
	}
	for _, name := range []string{"reference.mp4", "master.mp3", report.FileName} {
		if _, err := os.Stat(filepath.Join(wantDir, name)); err != nil {
			t.Errorf("missing %s in final dir: %v", name, err)
		}
	}
	if item.Status != queue.StatusCompleted {
		t.Fatalf("status = %q", item.Status)
	}
	if _, err := os.Stat(item.StagingDir); !os.IsNotExist(err) {
		t.Fatalf("staging dir not removed: %v", err)
	}
	if len(notifier.events) != 1 || notifier.events[0] != notifications.EventItemCompleted {
		t.Fatalf("notifications = %v", notifier.events)
	}
}

func TestExecuteSequenceNumbering(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	handler := organizer.NewOrganizerWithNotifier(cfg, store, logging.NewNop(), nil)
	ctx := context.Background()

	for _, existing := range []string{"001_First", "007_Seventh", "notes"} {
		if err := os.MkdirAll(filepath.Join(cfg.Paths.LibraryDir, existing), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}

	item, err := store.NewURL(ctx, "https://youtu.be/abc")
	if err != nil {
		t.Fatalf("NewURL: %v", err)
	}
	item.Status = queue.StatusResolved
	item.WinningLabel = "Eighth Track"

	if err := handler.Execute(ctx, item); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := filepath.Base(item.FinalDir); got != "008_Eighth_Track" {
		t.Fatalf("final dir = %q", got)
	}
}

func TestExecuteUnknownLabelPlaceholder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	handler := organizer.NewOrganizerWithNotifier(cfg, store, logging.NewNop(), nil)
	ctx := context.Background()

	item, err := store.NewURL(ctx, "https://youtu.be/mystery")
	if err != nil {
		t.Fatalf("NewURL: %v", err)
	}
	item.Status = queue.StatusResolved
	item.Verdict = "unidentified"

	if err := handler.Execute(ctx, item); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	base := filepath.Base(item.FinalDir)
	if !strings.HasPrefix(base, "001_Unknown_") {
		t.Fatalf("final dir = %q", base)
	}
	if _, err := os.Stat(filepath.Join(item.FinalDir, report.FileName)); err != nil {
		t.Fatalf("report missing: %v", err)
	}
}

func TestHealthCheckRequiresLibraryDir(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Paths.LibraryDir = ""
	store := testsupport.MustOpenStore(t, cfg)
	handler := organizer.NewOrganizerWithNotifier(cfg, store, logging.NewNop(), nil)

	if health := handler.HealthCheck(context.Background()); health.Ready {
		t.Fatal("expected unhealthy without library dir")
	}
}
