package embeddings

import (
	"math"
	"strings"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Vector
		expected float64
	}{
		{"identical vectors", Vector{1, 0, 0}, Vector{1, 0, 0}, 1.0},
		{"orthogonal vectors", Vector{1, 0}, Vector{0, 1}, 0.0},
		{"opposite vectors", Vector{1, 0}, Vector{-1, 0}, -1.0},
		{"empty vectors", Vector{}, Vector{}, 0.0},
		{"different length vectors", Vector{1, 2}, Vector{1, 2, 3}, 0.0},
		{"zero vector", Vector{0, 0}, Vector{1, 1}, 0.0},
		{"45 degrees", Vector{1, 0}, Vector{0.707, 0.707}, 0.707},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CosineSimilarity(tt.a, tt.b)
			if math.Abs(result-tt.expected) > 0.01 {
				t.Errorf("got %f, want %f", result, tt.expected)
			}
		})
	}
}

func TestCosineSimilarityClamped(t *testing.T) {
	// Accumulated float error can push the raw ratio past 1; the result
	// must stay inside [-1, 1].
	v := Vector{0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1}
	got := CosineSimilarity(v, v)
	if got > 1 || got < -1 {
		t.Errorf("similarity %v outside [-1,1]", got)
	}
}

func TestNormalized(t *testing.T) {
	v := Vector{3, 4}
	n := v.Normalized()
	if math.Abs(n.Norm()-1) > 1e-6 {
		t.Errorf("norm after Normalized = %v, want 1", n.Norm())
	}

	zero := Vector{0, 0}
	if got := zero.Normalized(); got.Norm() != 0 {
		t.Errorf("zero vector changed by Normalized: %v", got)
	}
}

func TestTruncate(t *testing.T) {
	short := "a b c"
	if got := truncate(short, 512); got != short {
		t.Errorf("short text modified: %q", got)
	}

	long := strings.TrimSpace(strings.Repeat("word ", 600))
	got := truncate(long, 512)
	if n := len(strings.Fields(got)); n != 512 {
		t.Errorf("truncated to %d words, want 512", n)
	}
}
