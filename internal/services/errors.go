package services

import (
	"errors"
	"fmt"
	"strings"

	"soundminer/internal/queue"
)

var (
	// ErrProvider marks acquisition channel failures: transport errors, opaque
	// relay responses, extractor exits. Recoverable by falling through the chain.
	ErrProvider = errors.New("provider failure")
	// ErrRecognition marks a signal source that found nothing. Treated as absent
	// evidence downstream, never as a stage failure.
	ErrRecognition = errors.New("recognition failure")
	// ErrNotFound marks exhausted lookups (no master candidate in range).
	ErrNotFound = errors.New("not found")
	// ErrValidation marks invalid input or item state.
	ErrValidation = errors.New("validation error")
	// ErrConfiguration marks unusable configuration.
	ErrConfiguration = errors.New("configuration error")
	// ErrIO marks staging/output filesystem failures. Fails the item, not the batch.
	ErrIO = errors.New("io failure")
	// ErrTimeout marks an exceeded per-call deadline.
	ErrTimeout = errors.New("timeout")
	// ErrTransient marks failures with no better classification.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later status classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// FailureStatus maps a stage error to the queue status the workflow manager
// should persist after the stage fails. Every mapping lands on failed today;
// the indirection keeps the classification point in one place.
func FailureStatus(err error) queue.Status {
	_ = err
	return queue.StatusFailed
}

// FailureReason extracts a concise human-readable reason from a stage error
// for progress events and the batch error log.
func FailureReason(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		return "failed without error detail"
	}
	return msg
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
