package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/remitlab/reclaim/internal/classify"
	"github.com/remitlab/reclaim/internal/model"
)

// normalize lowercases and trims reason text for table lookups
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// AnalyzeDenialReason classifies a denial reason through the layered rule
// tiers, first match wins: no reason, retryable set, non-retryable set,
// ambiguous set (delegated to the classifier), then the keyword heuristic.
func (e *Engine) AnalyzeDenialReason(ctx context.Context, denialReason string) model.ReasonAnalysis {
	trimmed := strings.TrimSpace(denialReason)
	if trimmed == "" || strings.EqualFold(trimmed, "none") {
		return model.ReasonAnalysis{
			Eligible:   false,
			Confidence: 1.0,
			Reason:     "No denial reason provided",
		}
	}

	lower := normalize(trimmed)

	if _, ok := e.rules.retryable[lower]; ok {
		return model.ReasonAnalysis{
			Eligible:   true,
			Confidence: 0.9,
			Reason:     fmt.Sprintf("Retryable reason: %s", trimmed),
		}
	}

	if _, ok := e.rules.nonRetryable[lower]; ok {
		return model.ReasonAnalysis{
			Eligible:   false,
			Confidence: 0.9,
			Reason:     fmt.Sprintf("Non-retryable reason: %s", trimmed),
		}
	}

	if _, ok := e.rules.ambiguous[lower]; ok {
		analysis, err := e.classifier.Classify(ctx, lower)
		if err != nil {
			// Provider trouble is not a claim problem: degrade to the
			// manual-review verdict instead of failing the record
			return classify.ManualReview(lower)
		}
		return analysis
	}

	return e.inferFromKeywords(lower)
}

// inferFromKeywords counts positive versus negative keyword hits as
// case-insensitive substring matches. A strict majority decides at 0.7
// confidence; ties (including zero hits) go to manual review.
func (e *Engine) inferFromKeywords(lower string) model.ReasonAnalysis {
	positive := 0
	for _, kw := range e.rules.positive {
		if strings.Contains(lower, kw) {
			positive++
		}
	}
	negative := 0
	for _, kw := range e.rules.negative {
		if strings.Contains(lower, kw) {
			negative++
		}
	}

	switch {
	case positive > negative:
		return model.ReasonAnalysis{
			Eligible:   true,
			Confidence: 0.7,
			Reason:     fmt.Sprintf("Inferable logic: Positive keywords detected in %q", lower),
		}
	case negative > positive:
		return model.ReasonAnalysis{
			Eligible:   false,
			Confidence: 0.7,
			Reason:     fmt.Sprintf("Inferable logic: Negative keywords detected in %q", lower),
		}
	default:
		return model.ReasonAnalysis{
			Eligible:   false,
			Confidence: 0.5,
			Reason:     fmt.Sprintf("Ambiguous case: %q - manual review recommended", lower),
		}
	}
}
