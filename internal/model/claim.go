package model

import (
	"strings"
	"time"
)

// Source identifies which ingestion adapter produced a claim
type Source string

const (
	SourceEMRAlpha Source = "emr_alpha" // CSV feed
	SourceEMRBeta  Source = "emr_beta"  // JSON feed
	SourceAPI      Source = "api"       // Single-claim analysis endpoint
)

// Claim is the canonical record shape every downstream stage operates on,
// regardless of originating EMR. A claim is created once by normalization,
// annotated exactly once by the eligibility engine, then only read during
// aggregation and serialization.
type Claim struct {
	ClaimID       string    `json:"claim_id"`
	PatientID     string    `json:"patient_id"` // Empty means not provided
	ProcedureCode string    `json:"procedure_code"`
	DenialReason  string    `json:"denial_reason"` // Empty means no reason given
	SubmittedAt   time.Time `json:"submitted_at"`
	Status        string    `json:"status"` // Always lowercase
	Source        Source    `json:"source"`

	// Derived by the engine, never supplied by ingestion
	EligibilityScore     float64  `json:"eligibility_score"`
	ResubmissionEligible bool     `json:"resubmission_eligible"`
	BusinessRuleFlags    []string `json:"business_rule_flags"`
}

// HasPatientID reports whether a patient identifier is present after trimming
func (c *Claim) HasPatientID() bool {
	return strings.TrimSpace(c.PatientID) != ""
}

// ReasonAnalysis is the outcome of denial-reason classification. It is
// computed once per claim and shared between the score and the eligibility
// gate so the two can never disagree on the underlying reading.
type ReasonAnalysis struct {
	Eligible   bool    `json:"eligible"`
	Confidence float64 `json:"confidence"` // 0.0 - 1.0
	Reason     string  `json:"reason"`     // Human-readable explanation
}

// EligibilityCheck captures the per-criterion booleans behind a verdict.
// All four criteria must hold for Eligible to be true.
type EligibilityCheck struct {
	Eligible bool `json:"eligible"`

	StatusDenied         bool `json:"status_denied"`
	PatientIDPresent     bool `json:"patient_id_not_null"`
	OlderThanSevenDays   bool `json:"submitted_more_than_7_days_ago"`
	DenialReasonEligible bool `json:"denial_reason_eligible"`

	Analysis            ReasonAnalysis `json:"denial_reason_analysis"`
	ReferenceDate       time.Time      `json:"reference_date"`
	DaysSinceSubmission int            `json:"days_since_submission"`
}
