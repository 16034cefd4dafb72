// Package pipeline sequences one evaluation request: clean the input, gate
// it through the already-simplified classifier, generate a plain language
// summary and score both texts.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"pls-engine/internal/cache"
	"pls-engine/internal/classifier"
	"pls-engine/internal/events"
	"pls-engine/internal/llm"
	"pls-engine/internal/prompt"
	"pls-engine/internal/readability"
	"pls-engine/internal/scoring"
	"pls-engine/internal/textnorm"
)

// State names one step of the request lifecycle, used for logging and
// error reporting.
type State string

const (
	StateReceived   State = "received"
	StateCleaned    State = "cleaned"
	StateClassified State = "classified"
	StateRejected   State = "rejected"
	StateGenerating State = "generating"
	StateGenerated  State = "generated"
	StateScored     State = "scored"
	StateCompleted  State = "completed"
	StateErrored    State = "errored"
)

// Scores bundles every measure computed for one run. Alignment is nil when
// similarity scoring degraded.
type Scores struct {
	Original  readability.Scores `json:"original"`
	Generated readability.Scores `json:"generated"`
	Alignment *scoring.Alignment `json:"alignment,omitempty"`
}

// Evaluation is the terminal artifact of one pipeline run.
type Evaluation struct {
	Status  string             `json:"status"`
	PLS     string             `json:"pls"`
	Scores  Scores             `json:"scores"`
	Verdict classifier.Verdict `json:"-"`
}

// Orchestrator runs the evaluation state machine. It is safe for
// concurrent use: all mutable state lives in the per-request run.
type Orchestrator struct {
	gate      *classifier.Gate
	generator llm.Generator
	scorer    *scoring.Scorer
	cache     cache.Cache
	events    events.Publisher
	cacheTTL  time.Duration
	log       *slog.Logger
}

// New wires an orchestrator. cache and publisher may be the no-op
// implementations; gate, generator and scorer are required.
func New(gate *classifier.Gate, generator llm.Generator, scorer *scoring.Scorer, c cache.Cache, pub events.Publisher, cacheTTL time.Duration, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		gate:      gate,
		generator: generator,
		scorer:    scorer,
		cache:     c,
		events:    pub,
		cacheTTL:  cacheTTL,
		log:       log,
	}
}

// Run executes one request: Received -> Cleaned -> Classified ->
// {Rejected | Generating} -> Generated -> Scored -> Completed. Every
// failure is translated to one of the package error kinds.
func (o *Orchestrator) Run(ctx context.Context, rawText string) (*Evaluation, error) {
	runID := uuid.New()
	log := o.log.With("run_id", runID)
	state := StateReceived

	if strings.TrimSpace(rawText) == "" {
		return nil, fmt.Errorf("%w: input text cannot be empty", ErrInvalidArgument)
	}

	cleaned := textnorm.Clean(rawText)
	state = StateCleaned
	if cleaned == "" {
		return nil, fmt.Errorf("%w: input text cannot be empty", ErrInvalidArgument)
	}

	key := cache.Key(cleaned)
	if cached := o.lookupCache(ctx, log, key); cached != nil {
		log.Info("evaluation served from cache", "state", StateCompleted)
		return cached, nil
	}

	verdict, err := o.gate.Decide(ctx, cleaned)
	if err != nil {
		log.Error("classification failed", "state", state, "err", err)
		return nil, fmt.Errorf("%w: classifier: %v", ErrModelUnavailable, err)
	}
	state = StateClassified
	log.Info("text classified", "state", state, "label", verdict.Label, "probability", verdict.Probability)
	if verdict.Label == o.gate.PLSLabel() {
		state = StateRejected
		return nil, fmt.Errorf("%w (probability %.3f)", ErrAlreadySimplified, verdict.Probability)
	}

	state = StateGenerating
	pls, err := o.generator.Generate(ctx, prompt.System, prompt.Render(cleaned))
	if err != nil {
		log.Error("generation failed", "state", state, "err", err)
		if errors.Is(err, llm.ErrShortCompletion) {
			return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
		}
		return nil, fmt.Errorf("%w: generator: %v", ErrModelUnavailable, err)
	}
	if strings.TrimSpace(pls) == "" {
		log.Error("generator returned empty summary", "state", state)
		return nil, fmt.Errorf("%w: empty summary", ErrGenerationFailed)
	}
	state = StateGenerated

	result := &Evaluation{
		Status:  "ok",
		PLS:     pls,
		Verdict: verdict,
		Scores: Scores{
			Original:  readability.Measure(cleaned),
			Generated: readability.Measure(pls),
		},
	}
	if alignment, err := o.scorer.Align(ctx, cleaned, pls); err != nil {
		// Scoring failures are non-fatal: degrade to zero and keep going.
		log.Warn("similarity scoring degraded", "state", StateScored, "err", err)
	} else {
		result.Scores.Alignment = &alignment
	}
	state = StateScored

	o.storeCache(ctx, log, key, result)
	o.publish(ctx, log, runID, result)

	state = StateCompleted
	log.Info("evaluation completed", "state", state, "pls_words", len(strings.Fields(pls)))
	return result, nil
}

func (o *Orchestrator) lookupCache(ctx context.Context, log *slog.Logger, key string) *Evaluation {
	data, err := o.cache.Get(ctx, key)
	if err != nil {
		log.Warn("cache lookup failed", "err", err)
		return nil
	}
	if data == nil {
		return nil
	}
	var eval Evaluation
	if err := json.Unmarshal(data, &eval); err != nil {
		log.Warn("failed to decode cached evaluation", "err", err)
		return nil
	}
	return &eval
}

func (o *Orchestrator) storeCache(ctx context.Context, log *slog.Logger, key string, eval *Evaluation) {
	data, err := json.Marshal(eval)
	if err != nil {
		log.Warn("failed to encode evaluation for cache", "err", err)
		return
	}
	if err := o.cache.Set(ctx, key, data, o.cacheTTL); err != nil {
		log.Warn("failed to cache evaluation", "err", err)
	}
}

type evaluatedPayload struct {
	RunID   uuid.UUID          `json:"run_id"`
	Verdict classifier.Verdict `json:"verdict"`
	Scores  Scores             `json:"scores"`
}

func (o *Orchestrator) publish(ctx context.Context, log *slog.Logger, runID uuid.UUID, eval *Evaluation) {
	payload, err := json.Marshal(evaluatedPayload{
		RunID:   runID,
		Verdict: eval.Verdict,
		Scores:  eval.Scores,
	})
	if err != nil {
		log.Warn("failed to encode event payload", "err", err)
		return
	}
	event := events.Event{ID: runID, Type: events.TypeEvaluated, Payload: payload}
	if err := events.PublishWithRetry(ctx, o.events, event, 3, 200*time.Millisecond); err != nil {
		log.Warn("failed to publish evaluation event", "err", err)
	}
}
