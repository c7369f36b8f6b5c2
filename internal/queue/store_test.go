package queue_test

import (
	"context"
	"errors"
	"testing"

	"soundminer/internal/queue"
	"soundminer/internal/testsupport"
)

func TestNewURLAndFetch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item, err := store.NewURL(ctx, "https://www.tiktok.com/@user/video/1")
	if err != nil {
		t.Fatalf("NewURL: %v", err)
	}
	if item.ID == 0 {
		t.Fatal("expected assigned ID")
	}
	if item.Status != queue.StatusPending {
		t.Fatalf("status = %q, want %q", item.Status, queue.StatusPending)
	}

	fetched, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched == nil || fetched.SourceURL != item.SourceURL {
		t.Fatalf("unexpected fetched item: %+v", fetched)
	}
}

func TestNewURLRejectsDuplicates(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	const url = "https://www.tiktok.com/@user/video/2"
	if _, err := store.NewURL(ctx, url); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	_, err := store.NewURL(ctx, url)
	if !errors.Is(err, queue.ErrDuplicateURL) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestUpdatePersistsPipelineFields(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item, err := store.NewURL(ctx, "https://youtu.be/abc")
	if err != nil {
		t.Fatalf("NewURL: %v", err)
	}

	item.Status = queue.StatusIdentified
	item.Verdict = "confirmed"
	item.WinningLabel = "Daft Punk - One More Time"
	item.MasterOutcome = queue.MasterOutcomeFound
	item.MasterFile = "/tmp/master.mp3"
	item.SetProgressComplete("Identified", "done")
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	fetched, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.Verdict != "confirmed" || fetched.WinningLabel != "Daft Punk - One More Time" {
		t.Fatalf("verdict fields not persisted: %+v", fetched)
	}
	if fetched.MasterOutcome != queue.MasterOutcomeFound || fetched.MasterFile != "/tmp/master.mp3" {
		t.Fatalf("master fields not persisted: %+v", fetched)
	}
	if fetched.ProgressPercent != 100 {
		t.Fatalf("progress percent = %v", fetched.ProgressPercent)
	}
}

func TestNextForStatusesReturnsOldestMatching(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first, err := store.NewURL(ctx, "https://youtu.be/first")
	if err != nil {
		t.Fatalf("NewURL: %v", err)
	}
	if _, err := store.NewURL(ctx, "https://youtu.be/second"); err != nil {
		t.Fatalf("NewURL: %v", err)
	}

	next, err := store.NextForStatuses(ctx, queue.StatusPending)
	if err != nil {
		t.Fatalf("NextForStatuses: %v", err)
	}
	if next == nil || next.ID != first.ID {
		t.Fatalf("expected oldest pending item, got %+v", next)
	}

	if next, err := store.NextForStatuses(ctx, queue.StatusCompleted); err != nil || next != nil {
		t.Fatalf("expected no completed items, got %+v err=%v", next, err)
	}
}

func TestRetryFailedResetsItems(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item, err := store.NewURL(ctx, "https://youtu.be/fails")
	if err != nil {
		t.Fatalf("NewURL: %v", err)
	}
	item.SetFailed("provider failure")
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	reset, err := store.RetryFailed(ctx)
	if err != nil {
		t.Fatalf("RetryFailed: %v", err)
	}
	if reset != 1 {
		t.Fatalf("reset = %d, want 1", reset)
	}

	fetched, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.Status != queue.StatusPending {
		t.Fatalf("status after retry = %q", fetched.Status)
	}
	if fetched.ErrorMessage != "" {
		t.Fatalf("error message should be cleared, got %q", fetched.ErrorMessage)
	}
}

func TestClearCompletedLeavesOthers(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	done, err := store.NewURL(ctx, "https://youtu.be/done")
	if err != nil {
		t.Fatalf("NewURL: %v", err)
	}
	done.Status = queue.StatusCompleted
	if err := store.Update(ctx, done); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if _, err := store.NewURL(ctx, "https://youtu.be/pending"); err != nil {
		t.Fatalf("NewURL: %v", err)
	}

	removed, err := store.ClearCompleted(ctx)
	if err != nil {
		t.Fatalf("ClearCompleted: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}

	count, err := store.Count(ctx, queue.StatusPending)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Fatalf("pending count = %d, want 1", count)
	}
}

func TestParseStatus(t *testing.T) {
	if status, ok := queue.ParseStatus(" Pending "); !ok || status != queue.StatusPending {
		t.Fatalf("ParseStatus pending = (%q, %v)", status, ok)
	}
	if _, ok := queue.ParseStatus("bogus"); ok {
		t.Fatal("bogus status should not parse")
	}
}
