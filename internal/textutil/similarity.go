package textutil

import (
	"regexp"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
)

// Scorer computes a 0-100 similarity score between two labels. Implementations
// must be symmetric: Score(a, b) == Score(b, a).
type Scorer interface {
	Score(a, b string) int
}

// TokenSetScorer is the production scorer: a token-set comparison in the style
// of fuzzy token_set_ratio. Both labels are tokenized case-insensitively; the
// shared-token core and each side's remainder are rendered back into strings
// and the best Levenshtein-based similarity among the three pairings wins, so
// reordered words and subset labels still score high.
type TokenSetScorer struct{}

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

func (TokenSetScorer) Score(a, b string) int {
	tokensA := tokenSet(a)
	tokensB := tokenSet(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	var shared, onlyA, onlyB []string
	for token := range tokensA {
		if _, ok := tokensB[token]; ok {
			shared = append(shared, token)
		} else {
			onlyA = append(onlyA, token)
		}
	}
	for token := range tokensB {
		if _, ok := tokensA[token]; !ok {
			onlyB = append(onlyB, token)
		}
	}
	sort.Strings(shared)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	core := strings.Join(shared, " ")
	combinedA := strings.TrimSpace(core + " " + strings.Join(onlyA, " "))
	combinedB := strings.TrimSpace(core + " " + strings.Join(onlyB, " "))

	best := ratio(core, combinedA)
	if s := ratio(core, combinedB); s > best {
		best = s
	}
	if s := ratio(combinedA, combinedB); s > best {
		best = s
	}
	return best
}

// ExactScorer is the trivial fallback: 100 on case-insensitive equality of the
// cleaned labels, 0 otherwise.
type ExactScorer struct{}

func (ExactScorer) Score(a, b string) int {
	if strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b)) && strings.TrimSpace(a) != "" {
		return 100
	}
	return 0
}

func tokenSet(value string) map[string]struct{} {
	tokens := tokenPattern.FindAllString(strings.ToLower(value), -1)
	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		set[token] = struct{}{}
	}
	return set
}

func ratio(a, b string) int {
	if a == "" && b == "" {
		return 0
	}
	if a == b {
		return 100
	}
	sim, err := edlib.StringsSimilarity(a, b, edlib.Levenshtein)
	if err != nil {
		return 0
	}
	return int(sim*100 + 0.5)
}
