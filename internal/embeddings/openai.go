package embeddings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/sync/semaphore"
)

const defaultEmbeddingTimeout = 30 * time.Second

// OpenAIEmbedder calls OpenAI's embeddings API in batches. Inputs longer
// than the configured sequence length are truncated, never rejected.
type OpenAIEmbedder struct {
	model     openai.EmbeddingModel
	client    *openai.Client
	maxTokens int
	sem       *semaphore.Weighted
}

// NewOpenAIEmbedder creates a new OpenAI embedder. maxTokens caps the input
// sequence length per text; the embedding models used here enforce 512.
func NewOpenAIEmbedder(apiKey string, model openai.EmbeddingModel, maxTokens int) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key required")
	}
	if model == "" {
		model = openai.EmbeddingModelTextEmbedding3Small
	}
	if maxTokens <= 0 {
		maxTokens = 512
	}
	cli := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIEmbedder{
		model:     model,
		client:    &cli,
		maxTokens: maxTokens,
		sem:       semaphore.NewWeighted(1),
	}, nil
}

func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([]Vector, error) {
	if e == nil || e.client == nil {
		return nil, fmt.Errorf("nil openai embedder")
	}
	if len(texts) == 0 {
		return nil, nil
	}
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer e.sem.Release(1)

	reqCtx, cancel := context.WithTimeout(ctx, defaultEmbeddingTimeout)
	defer cancel()

	inputs := make([]string, len(texts))
	for i, t := range texts {
		inputs[i] = truncate(t, e.maxTokens)
	}
	resp, err := e.client.Embeddings.New(reqCtx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: inputs,
		},
		Model: e.model,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings: got %d vectors for %d texts", len(resp.Data), len(texts))
	}

	vectors := make([]Vector, len(resp.Data))
	for i, d := range resp.Data {
		vec := make(Vector, len(d.Embedding))
		for j, v := range d.Embedding {
			vec[j] = float32(v)
		}
		vectors[i] = vec
	}
	return vectors, nil
}

// truncate keeps the first maxTokens whitespace-delimited words. Tokens are
// approximated by words, matching how the rest of the pipeline sizes text.
func truncate(text string, maxTokens int) string {
	words := strings.Fields(text)
	if len(words) <= maxTokens {
		return text
	}
	return strings.Join(words[:maxTokens], " ")
}
