package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"pls-engine/internal/cache"
	"pls-engine/internal/classifier"
	"pls-engine/internal/embeddings"
	"pls-engine/internal/events"
	"pls-engine/internal/llm"
	"pls-engine/internal/scoring"
)

const abstract = "The randomized controlled trial assessed pharmacokinetic outcomes in elderly participants."

type fixture struct {
	cls  *classifier.MockClassifier
	gen  *llm.MockGenerator
	emb  *embeddings.MockEmbedder
	orch *Orchestrator
}

func newFixture(t *testing.T, c cache.Cache) *fixture {
	t.Helper()
	cls := new(classifier.MockClassifier)
	gen := new(llm.MockGenerator)
	emb := new(embeddings.MockEmbedder)

	gate, err := classifier.NewGate(cls, 0.5, "Technical", "PLS")
	if err != nil {
		t.Fatalf("NewGate: %v", err)
	}
	if c == nil {
		c = cache.NewNoOpCache()
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	orch := New(gate, gen, scoring.New(emb), c, events.NewNoOpPublisher(), time.Minute, log)
	return &fixture{cls: cls, gen: gen, emb: emb, orch: orch}
}

func TestRunEmptyInput(t *testing.T) {
	for _, input := range []string{"", "   ", "\t\n", "\"''\""} {
		f := newFixture(t, nil)
		_, err := f.orch.Run(context.Background(), input)
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("Run(%q) err = %v, want ErrInvalidArgument", input, err)
		}
		f.cls.AssertNotCalled(t, "Classify", mock.Anything, mock.Anything)
		f.gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
		f.emb.AssertNotCalled(t, "EmbedBatch", mock.Anything, mock.Anything)
	}
}

func TestRunAlreadySimplified(t *testing.T) {
	f := newFixture(t, nil)
	f.cls.On("Classify", mock.Anything, mock.Anything).Return(0.9, nil)

	_, err := f.orch.Run(context.Background(), "This study looked at a new medicine.")
	if !errors.Is(err, ErrAlreadySimplified) {
		t.Fatalf("err = %v, want ErrAlreadySimplified", err)
	}
	f.gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
	f.emb.AssertNotCalled(t, "EmbedBatch", mock.Anything, mock.Anything)
}

func TestRunClassifierUnavailable(t *testing.T) {
	f := newFixture(t, nil)
	f.cls.On("Classify", mock.Anything, mock.Anything).Return(0.0, errors.New("model not loaded"))

	_, err := f.orch.Run(context.Background(), abstract)
	if !errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("err = %v, want ErrModelUnavailable", err)
	}
	f.gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunGeneratorFailures(t *testing.T) {
	t.Run("collaborator error", func(t *testing.T) {
		f := newFixture(t, nil)
		f.cls.On("Classify", mock.Anything, mock.Anything).Return(0.1, nil)
		f.gen.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("timeout"))

		_, err := f.orch.Run(context.Background(), abstract)
		if !errors.Is(err, ErrModelUnavailable) {
			t.Fatalf("err = %v, want ErrModelUnavailable", err)
		}
		f.gen.AssertNumberOfCalls(t, "Generate", 1)
	})

	t.Run("completion below token floor", func(t *testing.T) {
		f := newFixture(t, nil)
		f.cls.On("Classify", mock.Anything, mock.Anything).Return(0.1, nil)
		f.gen.On("Generate", mock.Anything, mock.Anything, mock.Anything).
			Return("", fmt.Errorf("%w: got 12 tokens, want at least 500", llm.ErrShortCompletion))

		_, err := f.orch.Run(context.Background(), abstract)
		if !errors.Is(err, ErrGenerationFailed) {
			t.Fatalf("err = %v, want ErrGenerationFailed", err)
		}
		if errors.Is(err, ErrModelUnavailable) {
			t.Fatalf("err = %v, a short completion is not a model outage", err)
		}
	})

	t.Run("empty summary", func(t *testing.T) {
		f := newFixture(t, nil)
		f.cls.On("Classify", mock.Anything, mock.Anything).Return(0.1, nil)
		f.gen.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return("   ", nil)

		_, err := f.orch.Run(context.Background(), abstract)
		if !errors.Is(err, ErrGenerationFailed) {
			t.Fatalf("err = %v, want ErrGenerationFailed", err)
		}
	})
}

func TestRunSuccess(t *testing.T) {
	f := newFixture(t, nil)
	f.cls.On("Classify", mock.Anything, mock.Anything).Return(0.2, nil)
	f.gen.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return("The study looked at how a new drug helps older adults. The drug was safe.", nil)
	f.emb.On("EmbedBatch", mock.Anything, mock.Anything).
		Return([]embeddings.Vector{{1, 0}, {0.8, 0.6}}, nil)

	eval, err := f.orch.Run(context.Background(), abstract)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if eval.Status != "ok" {
		t.Errorf("status = %q, want ok", eval.Status)
	}
	if eval.PLS == "" {
		t.Error("empty generated summary")
	}
	for name, v := range map[string]float64{
		"original.CLI": eval.Scores.Original.CLI, "original.FRE": eval.Scores.Original.FRE,
		"original.GFI": eval.Scores.Original.GFI, "original.SMOG": eval.Scores.Original.SMOG,
		"original.FKGL": eval.Scores.Original.FKGL, "original.DCRS": eval.Scores.Original.DCRS,
		"generated.CLI": eval.Scores.Generated.CLI, "generated.FRE": eval.Scores.Generated.FRE,
		"generated.GFI": eval.Scores.Generated.GFI, "generated.SMOG": eval.Scores.Generated.SMOG,
		"generated.FKGL": eval.Scores.Generated.FKGL, "generated.DCRS": eval.Scores.Generated.DCRS,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("%s = %v, want finite", name, v)
		}
	}
	if eval.Scores.Alignment == nil {
		t.Fatal("expected alignment scores")
	}
	if got := eval.Scores.Alignment.Similarity; math.Abs(got-0.8) > 1e-6 {
		t.Errorf("similarity = %v, want 0.8", got)
	}
	if eval.Verdict.Label != "Technical" {
		t.Errorf("verdict label = %q, want Technical", eval.Verdict.Label)
	}
}

func TestRunScoringDegraded(t *testing.T) {
	f := newFixture(t, nil)
	f.cls.On("Classify", mock.Anything, mock.Anything).Return(0.2, nil)
	f.gen.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return("A short and plain summary of the study.", nil)
	f.emb.On("EmbedBatch", mock.Anything, mock.Anything).
		Return(nil, errors.New("embedding model not loaded"))

	eval, err := f.orch.Run(context.Background(), abstract)
	if err != nil {
		t.Fatalf("Run: %v, scoring failures must not abort the pipeline", err)
	}
	if eval.Scores.Alignment != nil {
		t.Errorf("alignment = %+v, want nil when scoring degraded", eval.Scores.Alignment)
	}
	if eval.Scores.Generated == (Scores{}.Generated) {
		t.Error("readability scores missing for generated text")
	}
}

// memoryCache is a minimal Cache for exercising the cache path.
type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memoryCache) Close() error { return nil }

func TestRunCacheHitSkipsCollaborators(t *testing.T) {
	f := newFixture(t, &memoryCache{data: make(map[string][]byte)})
	f.cls.On("Classify", mock.Anything, mock.Anything).Return(0.2, nil)
	f.gen.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return("The study looked at a new drug.", nil)
	f.emb.On("EmbedBatch", mock.Anything, mock.Anything).
		Return([]embeddings.Vector{{1, 0}, {1, 0}}, nil)

	first, err := f.orch.Run(context.Background(), abstract)
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	second, err := f.orch.Run(context.Background(), "  "+abstract+"  ")
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if first.PLS != second.PLS {
		t.Error("cached run returned a different summary")
	}
	f.cls.AssertNumberOfCalls(t, "Classify", 1)
	f.gen.AssertNumberOfCalls(t, "Generate", 1)
}
