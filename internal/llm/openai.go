package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/sync/semaphore"
)

const defaultGenerateTimeout = 120 * time.Second

// OpenAIGenerator calls the OpenAI Chat Completions API with deterministic
// decoding (temperature 0) and a bounded completion length. A weighted
// semaphore of one serializes calls: a single model context cannot run
// concurrent inference.
type OpenAIGenerator struct {
	model     openai.ChatModel
	client    *openai.Client
	minTokens int64
	maxTokens int64
	sem       *semaphore.Weighted
}

// NewOpenAIGenerator builds a generator against api.openai.com.
// minNewTokens is a floor on usable output: completions that report fewer
// tokens are rejected with ErrShortCompletion (zero disables the floor).
// maxNewTokens bounds the completion length; production summaries target
// 500-900 tokens of new output.
func NewOpenAIGenerator(apiKey string, model openai.ChatModel, minNewTokens, maxNewTokens int) (*OpenAIGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key required")
	}
	if model == "" {
		model = openai.ChatModelGPT4oMini
	}
	if minNewTokens < 0 {
		minNewTokens = 0
	}
	if maxNewTokens <= 0 {
		maxNewTokens = 900
	}
	cli := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIGenerator{
		model:     model,
		client:    &cli,
		minTokens: int64(minNewTokens),
		maxTokens: int64(maxNewTokens),
		sem:       semaphore.NewWeighted(1),
	}, nil
}

func (g *OpenAIGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	if g == nil || g.client == nil {
		return "", fmt.Errorf("nil openai generator")
	}
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer g.sem.Release(1)

	reqCtx, cancel := context.WithTimeout(ctx, defaultGenerateTimeout)
	defer cancel()

	resp, err := g.client.Chat.Completions.New(reqCtx, openai.ChatCompletionNewParams{
		Model:               g.model,
		Messages:            buildMessages(system, user),
		Temperature:         openai.Float(0),
		MaxCompletionTokens: openai.Int(g.maxTokens),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("openai: no choices returned")
	}
	if g.minTokens > 0 && resp.Usage.CompletionTokens < g.minTokens {
		return "", fmt.Errorf("%w: got %d tokens, want at least %d", ErrShortCompletion, resp.Usage.CompletionTokens, g.minTokens)
	}
	return resp.Choices[0].Message.Content, nil
}

func buildMessages(system, user string) []openai.ChatCompletionMessageParamUnion {
	return []openai.ChatCompletionMessageParamUnion{
		{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: openai.String(system),
				},
			},
		},
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfString: openai.String(user),
				},
			},
		},
	}
}
