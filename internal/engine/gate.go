package engine

import (
	"time"

	"github.com/remitlab/reclaim/internal/model"
)

// CheckResubmissionEligibility evaluates the hard eligibility gate: status
// must be exactly "denied", a patient identifier must be present, the claim
// must be strictly older than the configured window relative to the
// reference date, and the denial-reason analysis must say eligible. All
// four must hold.
//
// A zero referenceDate selects the configured default cutoff.
func (e *Engine) CheckResubmissionEligibility(claim *model.Claim, analysis model.ReasonAnalysis, referenceDate time.Time) model.EligibilityCheck {
	if referenceDate.IsZero() {
		referenceDate = e.referenceDate
	}

	days := daysBetween(claim.SubmittedAt, referenceDate)

	check := model.EligibilityCheck{
		StatusDenied:         claim.Status == "denied",
		PatientIDPresent:     claim.HasPatientID(),
		OlderThanSevenDays:   days > e.minAgeDays,
		DenialReasonEligible: analysis.Eligible,
		Analysis:             analysis,
		ReferenceDate:        referenceDate,
		DaysSinceSubmission:  days,
	}

	check.Eligible = check.StatusDenied &&
		check.PatientIDPresent &&
		check.OlderThanSevenDays &&
		check.DenialReasonEligible

	return check
}

// daysBetween returns whole days from `from` to `to`, truncated toward zero
func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
