package classifier

import "context"

// Classifier returns the probability that text is already plain language
// (class 1 of the binary technical-vs-PLS model).
type Classifier interface {
	Classify(ctx context.Context, text string) (float64, error)
}

// Verdict is the gate's decision for one text.
type Verdict struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}
