package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ErrorLogName is the append-only failure log kept next to the queue database.
const ErrorLogName = "error_log.txt"

// ErrorLog appends one line per failed URL so a batch can be re-run from its
// failures without trawling structured logs.
type ErrorLog struct {
	mu   sync.Mutex
	path string
}

// NewErrorLog creates an error log rooted in logDir.
func NewErrorLog(logDir string) *ErrorLog {
	return &ErrorLog{path: filepath.Join(logDir, ErrorLogName)}
}

// Path returns the log file location.
func (l *ErrorLog) Path() string { return l.path }

// Append records one failure. Lines are "timestamp | url | stage | reason".
func (l *ErrorLog) Append(url, stage, reason string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open error log: %w", err)
	}
	defer file.Close()

	line := fmt.Sprintf("%s | %s | %s | %s\n",
		time.Now().UTC().Format(time.RFC3339),
		strings.TrimSpace(url),
		strings.TrimSpace(stage),
		sanitizeReason(reason),
	)
	if _, err := file.WriteString(line); err != nil {
		return fmt.Errorf("append error log: %w", err)
	}
	return nil
}

// sanitizeReason keeps each entry on a single line.
func sanitizeReason(reason string) string {
	reason = strings.TrimSpace(reason)
	reason = strings.ReplaceAll(reason, "\n", " ")
	reason = strings.ReplaceAll(reason, "\r", " ")
	if reason == "" {
		return "unknown failure"
	}
	return reason
}
