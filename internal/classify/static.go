package classify

import (
	"context"

	"github.com/remitlab/reclaim/internal/model"
)

// StaticClassifier answers from a fixed lookup table. It stands in for a
// future model call and is the default provider.
type StaticClassifier struct {
	table map[string]model.ReasonAnalysis
}

// NewStaticClassifier creates a classifier backed by the given table,
// keyed by lowercased reason text
func NewStaticClassifier(table map[string]model.ReasonAnalysis) *StaticClassifier {
	// Copy so later config mutation cannot leak into the engine
	owned := make(map[string]model.ReasonAnalysis, len(table))
	for k, v := range table {
		owned[k] = v
	}
	return &StaticClassifier{table: owned}
}

// Name returns the provider name
func (c *StaticClassifier) Name() string {
	return "static"
}

// Classify looks the reason up in the table. Unknown reasons get the
// manual-review verdict.
func (c *StaticClassifier) Classify(_ context.Context, reason string) (model.ReasonAnalysis, error) {
	if analysis, ok := c.table[reason]; ok {
		return analysis, nil
	}
	return ManualReview(reason), nil
}
