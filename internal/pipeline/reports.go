package pipeline

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/remitlab/reclaim/internal/model"
)

// CandidatesReport lists claims eligible for resubmission
type CandidatesReport struct {
	Metadata   CandidatesMetadata `json:"metadata"`
	Candidates []ClaimRecord      `json:"resubmission_candidates"`
}

// CandidatesMetadata summarizes a candidates report. EligibilityRate here
// is relative to the total claim count; the metrics report's rate is
// relative to denied claims instead.
type CandidatesMetadata struct {
	GeneratedAt          string  `json:"generated_at"`
	RunID                string  `json:"run_id"`
	TotalClaimsProcessed int     `json:"total_claims_processed"`
	EligibleClaimsCount  int     `json:"eligible_claims_count"`
	EligibilityRate      float64 `json:"eligibility_rate"`
}

// ClaimRecord is the serialized claim shape used across reports
type ClaimRecord struct {
	ClaimID           string   `json:"claim_id"`
	PatientID         string   `json:"patient_id"`
	ProcedureCode     string   `json:"procedure_code"`
	DenialReason      string   `json:"denial_reason"`
	SubmittedAt       string   `json:"submitted_at"`
	Status            string   `json:"status,omitempty"`
	Source            string   `json:"source"`
	EligibilityScore  float64  `json:"eligibility_score,omitempty"`
	BusinessRuleFlags []string `json:"business_rule_flags,omitempty"`
}

// RejectionReport groups non-eligible claims by every flag they carry; a
// claim with N flags appears under N groups
type RejectionReport struct {
	Metadata         RejectionMetadata        `json:"metadata"`
	RejectionSummary map[string]int           `json:"rejection_summary"`
	ClaimsByReason   map[string][]ClaimRecord `json:"rejected_claims_by_reason"`
}

// RejectionMetadata summarizes a rejection report
type RejectionMetadata struct {
	GeneratedAt          string  `json:"generated_at"`
	RunID                string  `json:"run_id"`
	TotalClaimsProcessed int     `json:"total_claims_processed"`
	RejectedClaimsCount  int     `json:"rejected_claims_count"`
	RejectionRate        float64 `json:"rejection_rate"`
}

// Metrics aggregates batch statistics. EligibilityRate is relative to the
// denied count, zero when nothing was denied.
type Metrics struct {
	TotalClaimsProcessed    int            `json:"total_claims_processed"`
	DeniedClaimsCount       int            `json:"denied_claims_count"`
	EligibleForResubmission int            `json:"eligible_for_resubmission"`
	EligibilityRate         float64        `json:"eligibility_rate"`
	SourceBreakdown         map[string]int `json:"source_breakdown"`
	TopDenialReasons        []CountEntry   `json:"top_denial_reasons"`
	TopProcedureCodes       []CountEntry   `json:"top_procedure_codes"`
	AverageEligibilityScore float64        `json:"average_eligibility_score"`
}

// CountEntry is a frequency-ranked value. Emitted as an ordered array so
// rank and tie order survive JSON serialization.
type CountEntry struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// BuildCandidatesReport builds the eligible-claims report
func BuildCandidatesReport(claims []model.Claim, generatedAt time.Time) CandidatesReport {
	eligible, _ := Partition(claims)

	candidates := make([]ClaimRecord, 0, len(eligible))
	for _, c := range eligible {
		candidates = append(candidates, ClaimRecord{
			ClaimID:           c.ClaimID,
			PatientID:         c.PatientID,
			ProcedureCode:     c.ProcedureCode,
			DenialReason:      c.DenialReason,
			SubmittedAt:       timestamp(c.SubmittedAt),
			Source:            string(c.Source),
			EligibilityScore:  round3(c.EligibilityScore),
			BusinessRuleFlags: c.BusinessRuleFlags,
		})
	}

	rate := 0.0
	if len(claims) > 0 {
		rate = float64(len(eligible)) / float64(len(claims))
	}

	return CandidatesReport{
		Metadata: CandidatesMetadata{
			GeneratedAt:          timestamp(generatedAt),
			RunID:                uuid.NewString(),
			TotalClaimsProcessed: len(claims),
			EligibleClaimsCount:  len(eligible),
			EligibilityRate:      rate,
		},
		Candidates: candidates,
	}
}

// BuildRejectionReport builds the grouped rejected-claims report
func BuildRejectionReport(claims []model.Claim, generatedAt time.Time) RejectionReport {
	_, rejected := Partition(claims)

	summary := make(map[string]int)
	byReason := make(map[string][]ClaimRecord)
	for _, c := range rejected {
		record := ClaimRecord{
			ClaimID:       c.ClaimID,
			PatientID:     c.PatientID,
			ProcedureCode: c.ProcedureCode,
			DenialReason:  c.DenialReason,
			SubmittedAt:   timestamp(c.SubmittedAt),
			Status:        c.Status,
			Source:        string(c.Source),
		}
		for _, flag := range c.BusinessRuleFlags {
			byReason[flag] = append(byReason[flag], record)
			summary[flag]++
		}
	}

	rate := 0.0
	if len(claims) > 0 {
		rate = float64(len(rejected)) / float64(len(claims))
	}

	return RejectionReport{
		Metadata: RejectionMetadata{
			GeneratedAt:          timestamp(generatedAt),
			RunID:                uuid.NewString(),
			TotalClaimsProcessed: len(claims),
			RejectedClaimsCount:  len(rejected),
			RejectionRate:        rate,
		},
		RejectionSummary: summary,
		ClaimsByReason:   byReason,
	}
}

// GenerateMetrics aggregates batch statistics over all processed claims
func (p *Pipeline) GenerateMetrics(claims []model.Claim) Metrics {
	metrics := Metrics{
		TotalClaimsProcessed: len(claims),
		SourceBreakdown:      make(map[string]int),
		TopDenialReasons:     []CountEntry{},
		TopProcedureCodes:    []CountEntry{},
	}
	if len(claims) == 0 {
		return metrics
	}

	reasonCounts := newCounter()
	procedureCounts := newCounter()
	scoreSum := 0.0

	for _, c := range claims {
		metrics.SourceBreakdown[string(c.Source)]++
		scoreSum += c.EligibilityScore
		procedureCounts.add(c.ProcedureCode)

		if c.Status == "denied" {
			metrics.DeniedClaimsCount++
			reason := c.DenialReason
			if reason == "" {
				reason = "Unknown"
			}
			reasonCounts.add(reason)
		}
		if c.ResubmissionEligible {
			metrics.EligibleForResubmission++
		}
	}

	if metrics.DeniedClaimsCount > 0 {
		metrics.EligibilityRate = float64(metrics.EligibleForResubmission) / float64(metrics.DeniedClaimsCount)
	}
	metrics.TopDenialReasons = reasonCounts.top(5)
	metrics.TopProcedureCodes = procedureCounts.top(5)
	metrics.AverageEligibilityScore = scoreSum / float64(len(claims))

	return metrics
}

// counter tallies values while remembering first-seen order so ties rank
// deterministically
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(value string) {
	if _, seen := c.counts[value]; !seen {
		c.order = append(c.order, value)
	}
	c.counts[value]++
}

func (c *counter) top(n int) []CountEntry {
	entries := make([]CountEntry, 0, len(c.order))
	for _, v := range c.order {
		entries = append(entries, CountEntry{Value: v, Count: c.counts[v]})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// round3 rounds scores the way reports serialize them
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
