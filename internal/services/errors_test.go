package services_test

import (
	"errors"
	"testing"

	"soundminer/internal/queue"
	"soundminer/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("connection refused")
	err := services.Wrap(services.ErrProvider, "acquire", "tikwm", "Relay unreachable", base)

	if !errors.Is(err, services.ErrProvider) {
		t.Fatalf("marker lost: %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("cause lost: %v", err)
	}
	want := "provider failure: acquire: tikwm: Relay unreachable: connection refused"
	if err.Error() != want {
		t.Fatalf("message = %q, want %q", err.Error(), want)
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := services.Wrap(services.ErrValidation, "acquire", "", "No provider matched the URL", nil)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("marker lost: %v", err)
	}
	want := "validation error: acquire: No provider matched the URL"
	if err.Error() != want {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", errors.New("boom"))
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
}

func TestFailureStatus(t *testing.T) {
	err := services.Wrap(services.ErrIO, "organize", "move", "disk full", nil)
	if got := services.FailureStatus(err); got != queue.StatusFailed {
		t.Fatalf("FailureStatus = %q", got)
	}
}

func TestFailureReason(t *testing.T) {
	if got := services.FailureReason(nil); got != "" {
		t.Fatalf("FailureReason(nil) = %q", got)
	}
	err := services.Wrap(services.ErrTimeout, "identify", "shazam", "deadline exceeded", nil)
	if got := services.FailureReason(err); got != err.Error() {
		t.Fatalf("FailureReason = %q", got)
	}
}
