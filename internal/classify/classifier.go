package classify

import (
	"context"

	"github.com/remitlab/reclaim/internal/model"
)

// Classifier resolves ambiguous denial reasons that the exact-match rule
// tables cannot decide. The default implementation is a static lookup table;
// a model-backed implementation can be substituted without touching the
// gate or score logic.
type Classifier interface {
	// Name returns the provider name
	Name() string

	// Classify returns an eligibility reading for a lowercased, trimmed
	// denial reason
	Classify(ctx context.Context, reason string) (model.ReasonAnalysis, error)
}

// ManualReview is the defined low-confidence outcome for reasons no
// classifier can decide. It is part of normal output, not a failure path.
func ManualReview(reason string) model.ReasonAnalysis {
	return model.ReasonAnalysis{
		Eligible:   false,
		Confidence: 0.5,
		Reason:     "LLM classified: Unknown reason \"" + reason + "\" - manual review needed",
	}
}
