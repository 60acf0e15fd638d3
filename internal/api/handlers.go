package api

import (
	"io"
	"math"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/remitlab/reclaim/internal/ingest"
	"github.com/remitlab/reclaim/internal/model"
	"github.com/remitlab/reclaim/internal/pipeline"
)

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Version:   Version,
	})
}

type processClaimsResponse struct {
	Metadata   pipeline.CandidatesMetadata `json:"metadata"`
	Candidates []pipeline.ClaimRecord      `json:"resubmission_candidates"`
	Metrics    pipeline.Metrics            `json:"metrics"`
}

// handleProcessClaims accepts multipart uploads of both source files and
// runs the full batch
func (h *Handler) handleProcessClaims(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart form with csv_file and json_file")
		return
	}

	csvFile, _, err := r.FormFile("csv_file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "csv_file is required")
		return
	}
	defer csvFile.Close()

	jsonFile, _, err := r.FormFile("json_file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "json_file is required")
		return
	}
	defer jsonFile.Close()

	rows, err := ingest.ParseRows(csvFile)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid CSV upload: "+err.Error())
		return
	}

	jsonData, err := io.ReadAll(jsonFile)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read json upload: "+err.Error())
		return
	}
	items, err := ingest.ParseItems(jsonData)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON upload: "+err.Error())
		return
	}

	claims := h.pipeline.ProcessClaims(r.Context(), rows, items)
	report := pipeline.BuildCandidatesReport(claims, time.Now())

	h.log.WithField("claims", len(claims)).Info("processed claims via API")
	writeJSON(w, http.StatusOK, processClaimsResponse{
		Metadata:   report.Metadata,
		Candidates: report.Candidates,
		Metrics:    h.pipeline.GenerateMetrics(claims),
	})
}

type analyzeClaimResponse struct {
	model.Claim
	EligibilityCheck model.EligibilityCheck `json:"eligibility_check"`
}

// handleAnalyzeClaim evaluates a single claim supplied as query parameters
func (h *Handler) handleAnalyzeClaim(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	claimID := strings.TrimSpace(q.Get("claim_id"))
	procedureCode := strings.TrimSpace(q.Get("procedure_code"))
	submittedAt := strings.TrimSpace(q.Get("submitted_at"))
	if claimID == "" || procedureCode == "" || submittedAt == "" {
		writeError(w, http.StatusBadRequest, "claim_id, procedure_code, and submitted_at are required")
		return
	}

	parsedDate, err := parseISODate(submittedAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format. Use ISO format (YYYY-MM-DDTHH:MM:SS)")
		return
	}

	status := strings.ToLower(strings.TrimSpace(q.Get("status")))
	if status == "" {
		status = "denied"
	}
	source := strings.TrimSpace(q.Get("source"))
	if source == "" {
		source = string(model.SourceAPI)
	}

	referenceDate := h.pipeline.Engine().ReferenceDate()
	if raw := strings.TrimSpace(q.Get("reference_date")); raw != "" {
		referenceDate, err = parseISODate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid reference_date format. Use ISO format (YYYY-MM-DD)")
			return
		}
	}

	claim := model.Claim{
		ClaimID:       claimID,
		PatientID:     strings.TrimSpace(q.Get("patient_id")),
		ProcedureCode: procedureCode,
		DenialReason:  strings.TrimSpace(q.Get("denial_reason")),
		SubmittedAt:   parsedDate,
		Status:        status,
		Source:        model.Source(source),
	}

	check := h.pipeline.Engine().Evaluate(r.Context(), &claim, referenceDate)
	claim.EligibilityScore = math.Round(claim.EligibilityScore*1000) / 1000

	h.log.WithField("claim_id", claim.ClaimID).Info("analyzed single claim")
	writeJSON(w, http.StatusOK, analyzeClaimResponse{
		Claim:            claim,
		EligibilityCheck: check,
	})
}

type metricsResponse struct {
	pipeline.Metrics
	Message string `json:"message,omitempty"`
}

// handleMetrics processes the configured sample files when both exist,
// otherwise reports a zeroed payload
func (h *Handler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	csvPath := h.cfg.Server.SampleCSV
	jsonPath := h.cfg.Server.SampleJSON

	if !fileExists(csvPath) || !fileExists(jsonPath) {
		writeJSON(w, http.StatusOK, metricsResponse{
			Metrics: pipeline.Metrics{SourceBreakdown: map[string]int{}},
			Message: "No sample data available. Upload files to generate metrics.",
		})
		return
	}

	claims, err := h.pipeline.ProcessFiles(r.Context(), csvPath, jsonPath)
	if err != nil {
		h.log.WithError(err).Error("failed to process sample files")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, metricsResponse{Metrics: h.pipeline.GenerateMetrics(claims)})
}

type businessRulesResponse struct {
	RetryableReasons      []string           `json:"retryable_reasons"`
	NonRetryableReasons   []string           `json:"non_retryable_reasons"`
	AmbiguousReasons      []string           `json:"ambiguous_reasons"`
	HighSuccessProcedures []string           `json:"high_success_procedures"`
	EligibilityCriteria   map[string]float64 `json:"eligibility_criteria"`
}

func (h *Handler) handleBusinessRules(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, businessRulesResponse{
		RetryableReasons:      h.cfg.Rules.Retryable,
		NonRetryableReasons:   h.cfg.Rules.NonRetryable,
		AmbiguousReasons:      h.cfg.Rules.Ambiguous,
		HighSuccessProcedures: h.cfg.Rules.HighSuccessProcedures,
		EligibilityCriteria: map[string]float64{
			"base_score_weight":           h.cfg.Scoring.ReasonWeight,
			"procedure_bonus":             h.cfg.Scoring.ProcedureBonus,
			"patient_id_bonus":            h.cfg.Scoring.PatientIDBonus,
			"recent_claim_bonus":          h.cfg.Scoring.RecencyBonus,
			"recent_claim_threshold_days": float64(h.cfg.Scoring.RecencyWindowDays),
		},
	})
}

// parseISODate accepts RFC3339, a bare datetime, or a bare date
func parseISODate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	var lastErr error
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
