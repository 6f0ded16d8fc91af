package pipeline

import (
	"context"

	"github.com/pagedesk/pagedesk-api/internal/textnorm"
)

const (
	// shingleSize is the token-window length used for similarity comparison
	shingleSize = 3

	// similarityThreshold marks a candidate as too similar when its overlap
	// score against any stored entry reaches it
	similarityThreshold = 0.35

	// maxGenerationAttempts bounds the regeneration loop (1 initial + 2 retries)
	maxGenerationAttempts = 3
)

// Guard detects near-duplicate generated texts against the per-account
// corpus. It is best-effort: store failures never fail a request.
type Guard struct {
	corpus CorpusStore
}

func NewGuard(corpus CorpusStore) *Guard {
	return &Guard{corpus: corpus}
}

// Shingles returns the set of contiguous 3-token windows of the normalized
// text. Texts shorter than 3 tokens have no shingles.
func Shingles(text string) map[string]struct{} {
	tokens := textnorm.Tokens(text)
	shingles := make(map[string]struct{})
	for i := 0; i+shingleSize <= len(tokens); i++ {
		key := tokens[i]
		for _, tok := range tokens[i+1 : i+shingleSize] {
			key += " " + tok
		}
		shingles[key] = struct{}{}
	}
	return shingles
}

// SimilarityScore is |intersection| / min(|a|, |b|); 0 when either side has
// no shingles.
func SimilarityScore(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}

	shared := 0
	for key := range small {
		if _, ok := large[key]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(small))
}

// IsTooSimilar reports whether candidate scores at or above the threshold
// against any stored entry for the account.
func (g *Guard) IsTooSimilar(ctx context.Context, accountID, candidate string) (bool, error) {
	entries, err := g.corpus.List(ctx, accountID)
	if err != nil {
		return false, err
	}

	candidateShingles := Shingles(candidate)
	for _, entry := range entries {
		if SimilarityScore(candidateShingles, Shingles(entry)) >= similarityThreshold {
			return true, nil
		}
	}
	return false, nil
}

// Remember appends text to the account's corpus; the store enforces the
// entry bound with oldest-first eviction.
func (g *Guard) Remember(ctx context.Context, accountID, text string) error {
	return g.corpus.Append(ctx, accountID, text)
}
