package scoring

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/mock"

	"pls-engine/internal/embeddings"
)

func TestAlignIdenticalVectors(t *testing.T) {
	emb := new(embeddings.MockEmbedder)
	emb.On("EmbedBatch", mock.Anything, []string{"the study", "the study"}).
		Return([]embeddings.Vector{{3, 4}, {3, 4}}, nil)

	s := New(emb)
	a, err := s.Align(context.Background(), "the study", "the study")
	if err != nil {
		t.Fatalf("Align: %v", err)
	}
	if a.Similarity > 1 || a.Similarity < -1 {
		t.Errorf("similarity %v outside [-1,1]", a.Similarity)
	}
	if math.Abs(a.Similarity-1) > 1e-6 {
		t.Errorf("similarity = %v, want 1", a.Similarity)
	}
	if math.Abs(a.Relevance-1) > 1e-6 {
		t.Errorf("relevance = %v, want 1", a.Relevance)
	}
}

// Normalizing float32 vectors rounds, so an unclamped dot product of two
// identical embeddings can drift above 1. The clamp keeps it in range.
func TestAlignSimilarityNeverExceedsOne(t *testing.T) {
	emb := new(embeddings.MockEmbedder)
	emb.On("EmbedBatch", mock.Anything, mock.Anything).
		Return([]embeddings.Vector{{0.1, 0.2, 0.3, 0.7}, {0.1, 0.2, 0.3, 0.7}}, nil)

	s := New(emb)
	a, err := s.Align(context.Background(), "same text", "same text")
	if err != nil {
		t.Fatalf("Align: %v", err)
	}
	if a.Similarity > 1 {
		t.Errorf("similarity = %.17f, want <= 1", a.Similarity)
	}
}

func TestAlignOppositeVectorsClamped(t *testing.T) {
	emb := new(embeddings.MockEmbedder)
	emb.On("EmbedBatch", mock.Anything, mock.Anything).
		Return([]embeddings.Vector{{1, 0}, {-1, 0}}, nil)

	s := New(emb)
	a, err := s.Align(context.Background(), "alpha beta", "gamma delta")
	if err != nil {
		t.Fatalf("Align: %v", err)
	}
	if a.Similarity < -1 || a.Similarity > 1 {
		t.Errorf("similarity %v outside [-1,1]", a.Similarity)
	}
	if math.Abs(a.Similarity+1) > 1e-6 {
		t.Errorf("similarity = %v, want -1", a.Similarity)
	}
	if a.Relevance != 0 {
		t.Errorf("relevance = %v, want 0 for disjoint tokens", a.Relevance)
	}
}

func TestAlignEmbedderFailure(t *testing.T) {
	emb := new(embeddings.MockEmbedder)
	emb.On("EmbedBatch", mock.Anything, mock.Anything).
		Return(nil, errors.New("embedding model not loaded"))

	s := New(emb)
	if _, err := s.Align(context.Background(), "a", "b"); err == nil {
		t.Fatal("expected error when embedder fails")
	}
}

func TestAlignBatchMismatchedLengths(t *testing.T) {
	s := New(new(embeddings.MockEmbedder))
	_, err := s.AlignBatch(context.Background(), []string{"a", "b"}, []string{"c"})
	if !errors.Is(err, ErrMismatchedBatch) {
		t.Fatalf("err = %v, want ErrMismatchedBatch", err)
	}
}

func TestOverlapF1(t *testing.T) {
	tests := []struct {
		name      string
		ref, cand string
		want      float64
	}{
		{name: "identical", ref: "one two three", cand: "one two three", want: 1},
		{name: "disjoint", ref: "one two", cand: "three four", want: 0},
		{name: "empty candidate", ref: "one", cand: "", want: 0},
		{name: "empty reference", ref: "", cand: "one", want: 0},
		{name: "case insensitive", ref: "Trial Results", cand: "trial results", want: 1},
		// candidate {one} vs reference {one two}: p=1, r=0.5, f1=2/3
		{name: "partial overlap", ref: "one two", cand: "one", want: 2.0 / 3.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := overlapF1(tt.ref, tt.cand)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("overlapF1(%q, %q) = %v, want %v", tt.ref, tt.cand, got, tt.want)
			}
		})
	}
}
