// Package engine decides resubmission eligibility for denied claims.
// All decisions are deterministic given (claim, reference date); the only
// deliberate exception is the score's recency bonus, which reads wall-clock
// time (see CalculateEligibilityScore).
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/remitlab/reclaim/internal/classify"
	"github.com/remitlab/reclaim/internal/model"
)

// Engine evaluates claims against the configured rule tables. Rule data is
// compiled into lookup sets at construction and never mutated afterwards.
type Engine struct {
	rules         ruleSet
	scoring       model.ScoringConfig
	minAgeDays    int
	referenceDate time.Time
	classifier    classify.Classifier
	now           func() time.Time
}

// ruleSet holds the compiled, lowercased vocabularies
type ruleSet struct {
	retryable    map[string]struct{}
	nonRetryable map[string]struct{}
	ambiguous    map[string]struct{}
	highSuccess  map[string]struct{}
	positive     []string
	negative     []string
}

// Option customizes engine construction
type Option func(*Engine)

// WithClock overrides the wall-clock source used by the recency bonus
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New compiles the configured rules into an engine. The classifier resolves
// reasons in the ambiguous set.
func New(cfg *model.Config, classifier classify.Classifier, opts ...Option) *Engine {
	e := &Engine{
		rules: ruleSet{
			retryable:    toSet(cfg.Rules.Retryable),
			nonRetryable: toSet(cfg.Rules.NonRetryable),
			ambiguous:    toSet(cfg.Rules.Ambiguous),
			highSuccess:  toSet(cfg.Rules.HighSuccessProcedures),
			positive:     lowered(cfg.Rules.PositiveKeywords),
			negative:     lowered(cfg.Rules.NegativeKeywords),
		},
		scoring:       cfg.Scoring,
		minAgeDays:    cfg.Eligibility.MinAgeDays,
		referenceDate: cfg.Eligibility.ParsedReferenceDate(),
		classifier:    classifier,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ReferenceDate returns the configured default cutoff for the recency gate
func (e *Engine) ReferenceDate() time.Time {
	return e.referenceDate
}

// Evaluate annotates a claim in place: score, verdict, and business rule
// flags all derive from a single denial-reason analysis so they can never
// disagree. Claims must not be mutated again after this call.
func (e *Engine) Evaluate(ctx context.Context, claim *model.Claim, referenceDate time.Time) model.EligibilityCheck {
	analysis := e.AnalyzeDenialReason(ctx, claim.DenialReason)

	claim.EligibilityScore = e.CalculateEligibilityScore(claim, analysis)

	check := e.CheckResubmissionEligibility(claim, analysis, referenceDate)
	claim.ResubmissionEligible = check.Eligible
	claim.BusinessRuleFlags = appendRuleFlags(claim.BusinessRuleFlags, check)

	return check
}

// appendRuleFlags adds one flag per failing check, in check order, then the
// denial-reason explanation regardless of outcome. Duplicates are kept.
func appendRuleFlags(flags []string, check model.EligibilityCheck) []string {
	if !check.StatusDenied {
		flags = append(flags, "Claim not denied")
	}
	if !check.PatientIDPresent {
		flags = append(flags, "Missing patient ID")
	}
	if !check.OlderThanSevenDays {
		flags = append(flags, fmt.Sprintf("Claim too recent (%d days old)", check.DaysSinceSubmission))
	}
	return append(flags, check.Analysis.Reason)
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[normalize(v)] = struct{}{}
	}
	return set
}

func lowered(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = normalize(v)
	}
	return out
}
