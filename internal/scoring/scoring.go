// Package scoring measures how well a generated summary tracks its source:
// an embedding-based cosine similarity plus a token-overlap relevance score.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"pls-engine/internal/embeddings"
)

// ErrMismatchedBatch is returned when a pairwise batch has unequal
// reference and candidate lengths.
var ErrMismatchedBatch = errors.New("reference and candidate batches must have equal length")

// Alignment is the semantic comparison of a candidate text against its
// reference. Similarity is a cosine in [-1,1]; Relevance is an overlap F1
// in [0,1].
type Alignment struct {
	Similarity float64 `json:"similarity"`
	Relevance  float64 `json:"relevance"`
}

// Scorer computes alignment scores through an embedding collaborator.
type Scorer struct {
	embedder embeddings.Embedder
}

func New(embedder embeddings.Embedder) *Scorer {
	return &Scorer{embedder: embedder}
}

// Align encodes both texts in a single batch and scores the candidate by
// cosine similarity, clamped to [-1,1] so float rounding never leaks out of
// range. The relevance score is computed locally and cannot fail.
func (s *Scorer) Align(ctx context.Context, reference, candidate string) (Alignment, error) {
	vectors, err := s.embedder.EmbedBatch(ctx, []string{reference, candidate})
	if err != nil {
		return Alignment{}, fmt.Errorf("embed: %w", err)
	}
	if len(vectors) != 2 {
		return Alignment{}, fmt.Errorf("embed: expected 2 vectors, got %d", len(vectors))
	}
	return Alignment{
		Similarity: embeddings.CosineSimilarity(vectors[0], vectors[1]),
		Relevance:  overlapF1(reference, candidate),
	}, nil
}

// AlignBatch scores corresponding pairs. Mismatched batch lengths are an
// invalid argument, not a degraded score.
func (s *Scorer) AlignBatch(ctx context.Context, references, candidates []string) ([]Alignment, error) {
	if len(references) != len(candidates) {
		return nil, fmt.Errorf("%w: %d references, %d candidates", ErrMismatchedBatch, len(references), len(candidates))
	}
	out := make([]Alignment, len(references))
	for i := range references {
		a, err := s.Align(ctx, references[i], candidates[i])
		if err != nil {
			return nil, err
		}
		out[i] = a
	}
	return out, nil
}

var tokenRe = regexp.MustCompile(`[a-z0-9']+`)

// overlapF1 is a precision/recall/F1-style relevance score over lowercased
// token sets: precision against the candidate, recall against the reference.
func overlapF1(reference, candidate string) float64 {
	refTokens := tokenSet(reference)
	candTokens := tokenSet(candidate)
	if len(refTokens) == 0 || len(candTokens) == 0 {
		return 0
	}

	var overlap int
	for tok := range candTokens {
		if _, ok := refTokens[tok]; ok {
			overlap++
		}
	}
	if overlap == 0 {
		return 0
	}
	precision := float64(overlap) / float64(len(candTokens))
	recall := float64(overlap) / float64(len(refTokens))
	return 2 * precision * recall / (precision + recall)
}

func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range tokenRe.FindAllString(strings.ToLower(text), -1) {
		set[tok] = struct{}{}
	}
	return set
}
