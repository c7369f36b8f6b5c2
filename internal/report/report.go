// Package report renders per-item identification reports and maintains the
// batch error log.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"soundminer/internal/identify"
	"soundminer/internal/queue"
)

// FileName is the report file written into each item's final folder.
const FileName = "REPORT.txt"

// Render produces the human-readable identification report for an item.
func Render(item *queue.Item, generatedAt time.Time) string {
	var b strings.Builder

	b.WriteString("SOUNDMINER IDENTIFICATION REPORT\n")
	b.WriteString("================================\n\n")
	fmt.Fprintf(&b, "Generated:  %s\n", generatedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Source URL: %s\n", item.SourceURL)
	fmt.Fprintf(&b, "Status:     %s\n", item.Status)
	b.WriteString("\n")

	b.WriteString("Signals\n")
	b.WriteString("-------\n")
	signals := decodeSignals(item.SignalsJSON)
	if len(signals) == 0 {
		b.WriteString("  (none collected)\n")
	}
	for _, sig := range signals {
		if !sig.Present {
			fmt.Fprintf(&b, "  %-10s [%s] no match\n", sig.Source, sig.Kind)
			continue
		}
		fmt.Fprintf(&b, "  %-10s [%s] %s\n", sig.Source, sig.Kind, sig.Label())
	}
	b.WriteString("\n")

	pairs := decodePairs(item.PairScoresJSON)
	if len(pairs) > 0 {
		b.WriteString("Consensus\n")
		b.WriteString("---------\n")
		for _, pair := range pairs {
			mark := "DISAGREE"
			if pair.Agree {
				mark = "AGREE"
			}
			fmt.Fprintf(&b, "  %s vs %s: %d (%s)\n", pair.A, pair.B, pair.Score, mark)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Verdict:    %s\n", displayValue(item.Verdict))
	fmt.Fprintf(&b, "Identity:   %s\n", displayValue(item.WinningLabel))
	b.WriteString("\n")

	b.WriteString("Master Track\n")
	b.WriteString("------------\n")
	switch item.MasterOutcome {
	case queue.MasterOutcomeFound:
		fmt.Fprintf(&b, "  Downloaded: %s\n", filepath.Base(item.MasterFile))
	case queue.MasterOutcomeNotFound:
		b.WriteString("  No candidate matched the duration window\n")
	case queue.MasterOutcomeSkipped:
		b.WriteString("  Skipped: verdict not trustworthy enough\n")
	default:
		b.WriteString("  Not attempted\n")
	}

	if msg := strings.TrimSpace(item.ErrorMessage); msg != "" {
		b.WriteString("\nError\n")
		b.WriteString("-----\n")
		fmt.Fprintf(&b, "  %s\n", msg)
	}

	return b.String()
}

// Write renders the report into dir and returns the report path.
func Write(item *queue.Item, dir string, generatedAt time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(Render(item, generatedAt)), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

func decodeSignals(raw string) []identify.Signal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var signals []identify.Signal
	if err := json.Unmarshal([]byte(raw), &signals); err != nil {
		return nil
	}
	return signals
}

func decodePairs(raw string) []identify.PairScore {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var pairs []identify.PairScore
	if err := json.Unmarshal([]byte(raw), &pairs); err != nil {
		return nil
	}
	return pairs
}

func displayValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "(none)"
	}
	return value
}
