package identify

import (
	"fmt"
	"time"

	"soundminer/internal/textutil"
)

// Verdict classifies how strongly the present signals agree.
const (
	VerdictUnidentified = "unidentified"
	VerdictSingleSource = "single_source"
	VerdictConfirmed    = "confirmed"
	VerdictPlatinum     = "platinum"
	VerdictGold         = "gold"
	VerdictConflict     = "conflict"
)

// PairScore records one pairwise comparison between present signals.
type PairScore struct {
	A     string `json:"a"`
	B     string `json:"b"`
	Score int    `json:"score"`
	Agree bool   `json:"agree"`
}

// Outcome is the fused identification result.
type Outcome struct {
	Verdict      string
	WinningLabel string
	Pairs        []PairScore
}

// Engine fuses signals into a verdict using fuzzy label comparison.
type Engine struct {
	scorer    textutil.Scorer
	threshold int
}

// NewEngine constructs a consensus engine. Two labels agree when their score
// strictly exceeds threshold.
func NewEngine(scorer textutil.Scorer, threshold int) *Engine {
	if scorer == nil {
		scorer = textutil.TokenSetScorer{}
	}
	if threshold <= 0 || threshold > 100 {
		threshold = 80
	}
	return &Engine{scorer: scorer, threshold: threshold}
}

// Evaluate fuses the given signals. Signal order encodes conflict priority:
// earlier signals win ties, so callers list fingerprint sources before
// platform metadata.
func (e *Engine) Evaluate(signals []Signal) Outcome {
	present := make([]Signal, 0, len(signals))
	for _, sig := range signals {
		if sig.Present && sig.Label() != "" {
			present = append(present, sig)
		}
	}

	switch len(present) {
	case 0:
		// The placeholder keeps output folder names distinct across runs.
		return Outcome{
			Verdict:      VerdictUnidentified,
			WinningLabel: fmt.Sprintf("Unknown_%d", time.Now().UnixNano()),
		}
	case 1:
		return Outcome{Verdict: VerdictSingleSource, WinningLabel: present[0].Label()}
	}

	pairs := make([]PairScore, 0, len(present)*(len(present)-1)/2)
	agree := make(map[int]map[int]bool, len(present))
	for i := range present {
		agree[i] = make(map[int]bool)
	}
	allAgree := true
	anyAgree := false
	for i := 0; i < len(present); i++ {
		for j := i + 1; j < len(present); j++ {
			score := e.scorer.Score(present[i].Label(), present[j].Label())
			agreed := score > e.threshold
			pairs = append(pairs, PairScore{
				A:     present[i].Source,
				B:     present[j].Source,
				Score: score,
				Agree: agreed,
			})
			agree[i][j] = agreed
			agree[j][i] = agreed
			if agreed {
				anyAgree = true
			} else {
				allAgree = false
			}
		}
	}

	if allAgree {
		verdict := VerdictConfirmed
		if len(present) >= 3 {
			verdict = VerdictPlatinum
		}
		return Outcome{Verdict: verdict, WinningLabel: present[0].Label(), Pairs: pairs}
	}

	if anyAgree {
		// Partial agreement: the winner is the highest-priority signal that
		// agrees with at least one other.
		winner := present[0]
		for i, sig := range present {
			agreed := false
			for _, ok := range agree[i] {
				if ok {
					agreed = true
					break
				}
			}
			if agreed {
				winner = sig
				break
			}
		}
		return Outcome{Verdict: VerdictGold, WinningLabel: winner.Label(), Pairs: pairs}
	}

	// Total disagreement: fall back on source priority alone.
	return Outcome{Verdict: VerdictConflict, WinningLabel: present[0].Label(), Pairs: pairs}
}
