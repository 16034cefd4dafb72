package classifier

import (
	"context"
	"fmt"
)

// Gate applies the calibrated decision threshold on top of a Classifier.
// The threshold and label map are loaded once from deployment configuration.
type Gate struct {
	cls       Classifier
	threshold float64
	labels    [2]string // index 0: technical, index 1: plain language
}

// NewGate builds a gate. threshold must lie in (0,1).
func NewGate(cls Classifier, threshold float64, technicalLabel, plsLabel string) (*Gate, error) {
	if cls == nil {
		return nil, fmt.Errorf("classifier required")
	}
	if threshold <= 0 || threshold >= 1 {
		return nil, fmt.Errorf("threshold must be in (0,1), got %v", threshold)
	}
	if technicalLabel == "" || plsLabel == "" {
		return nil, fmt.Errorf("both labels required")
	}
	return &Gate{cls: cls, threshold: threshold, labels: [2]string{technicalLabel, plsLabel}}, nil
}

// Decide classifies text and applies the threshold policy: probability
// strictly above the threshold maps to the class-1 label, everything else
// (ties included) to the class-0 label.
func (g *Gate) Decide(ctx context.Context, text string) (Verdict, error) {
	p, err := g.cls.Classify(ctx, text)
	if err != nil {
		return Verdict{}, fmt.Errorf("classify: %w", err)
	}
	v := Verdict{Probability: p, Label: g.labels[0]}
	if p > g.threshold {
		v.Label = g.labels[1]
	}
	return v, nil
}

// PLSLabel reports the label assigned to already-simplified text.
func (g *Gate) PLSLabel() string { return g.labels[1] }
