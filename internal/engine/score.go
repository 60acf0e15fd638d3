package engine

import "github.com/remitlab/reclaim/internal/model"

// CalculateEligibilityScore computes the additive heuristic score for a
// claim from an already-computed denial-reason analysis. All terms are
// non-negative and the sum is clamped to 1.0.
//
// The recency bonus intentionally measures against wall-clock now, not the
// reference date the gate uses: the score reflects current data freshness
// while the gate stays reproducible against a fixed cutoff.
func (e *Engine) CalculateEligibilityScore(claim *model.Claim, analysis model.ReasonAnalysis) float64 {
	score := 0.0

	if analysis.Eligible {
		score += analysis.Confidence * e.scoring.ReasonWeight
	}

	if _, ok := e.rules.highSuccess[normalize(claim.ProcedureCode)]; ok {
		score += e.scoring.ProcedureBonus
	}

	if claim.HasPatientID() {
		score += e.scoring.PatientIDBonus
	}

	daysOld := daysBetween(claim.SubmittedAt, e.now())
	if daysOld <= e.scoring.RecencyWindowDays {
		score += e.scoring.RecencyBonus
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}
