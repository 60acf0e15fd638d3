package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/remitlab/reclaim/internal/classify"
	"github.com/remitlab/reclaim/internal/engine"
	"github.com/remitlab/reclaim/internal/logging"
	"github.com/remitlab/reclaim/internal/model"
	"github.com/remitlab/reclaim/internal/pipeline"
)

var apiNow = time.Date(2025, time.July, 30, 12, 0, 0, 0, time.UTC)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	cfg := model.DefaultConfig()
	eng := engine.New(cfg, classify.NewStaticClassifier(cfg.Rules.Classifications),
		engine.WithClock(func() time.Time { return apiNow }))
	p := pipeline.New(eng, logging.Discard())
	return NewHandler(p, cfg, logging.Discard())
}

func doRequest(t *testing.T, h *Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response: %v\nbody: %s", err, rec.Body.String())
	}
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t)

	for _, path := range []string{"/", "/health"} {
		rec := doRequest(t, h, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s: expected 200, got %d", path, rec.Code)
		}
		var body healthResponse
		decodeBody(t, rec, &body)
		if body.Status != "healthy" || body.Version != Version {
			t.Errorf("GET %s: unexpected body %+v", path, body)
		}
	}
}

func TestAnalyzeClaim(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet,
		"/analyze-claim?claim_id=C1&patient_id=P1&procedure_code=99213&denial_reason=Missing+modifier&submitted_at=2025-07-20", nil)
	rec := doRequest(t, h, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		model.Claim
		EligibilityCheck model.EligibilityCheck `json:"eligibility_check"`
	}
	decodeBody(t, rec, &body)

	if !body.ResubmissionEligible {
		t.Errorf("expected eligible claim, flags: %v", body.BusinessRuleFlags)
	}
	if body.EligibilityScore != 0.94 {
		t.Errorf("expected score 0.94, got %v", body.EligibilityScore)
	}
	if body.Status != "denied" {
		t.Errorf("expected default status denied, got %q", body.Status)
	}
	if body.Source != model.SourceAPI {
		t.Errorf("expected default source api, got %q", body.Source)
	}

	check := body.EligibilityCheck
	if !check.Eligible || !check.StatusDenied || !check.PatientIDPresent ||
		!check.OlderThanSevenDays || !check.DenialReasonEligible {
		t.Errorf("unexpected eligibility check: %+v", check)
	}
	if check.DaysSinceSubmission != 10 {
		t.Errorf("expected 10 days since submission, got %d", check.DaysSinceSubmission)
	}
}

func TestAnalyzeClaim_ReferenceDateOverride(t *testing.T) {
	h := newTestHandler(t)

	// Against 2025-07-25 the claim is only 5 days old and fails the age gate.
	req := httptest.NewRequest(http.MethodGet,
		"/analyze-claim?claim_id=C1&patient_id=P1&procedure_code=99213&denial_reason=Missing+modifier&submitted_at=2025-07-20&reference_date=2025-07-25", nil)
	rec := doRequest(t, h, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		model.Claim
		EligibilityCheck model.EligibilityCheck `json:"eligibility_check"`
	}
	decodeBody(t, rec, &body)
	if body.ResubmissionEligible {
		t.Error("expected claim to fail the age gate against the overridden reference date")
	}
	if body.EligibilityCheck.OlderThanSevenDays {
		t.Errorf("expected age criterion to fail, got %+v", body.EligibilityCheck)
	}
}

func TestAnalyzeClaim_BadRequests(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name  string
		query string
	}{
		{"missing claim_id", "procedure_code=99213&submitted_at=2025-07-20"},
		{"missing procedure_code", "claim_id=C1&submitted_at=2025-07-20"},
		{"missing submitted_at", "claim_id=C1&procedure_code=99213"},
		{"bad submitted_at", "claim_id=C1&procedure_code=99213&submitted_at=20-07-2025"},
		{"bad reference_date", "claim_id=C1&procedure_code=99213&submitted_at=2025-07-20&reference_date=yesterday"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, h, httptest.NewRequest(http.MethodGet, "/analyze-claim?"+tt.query, nil))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			var body map[string]string
			decodeBody(t, rec, &body)
			if body["detail"] == "" {
				t.Error("expected a detail message")
			}
		})
	}
}

func TestProcessClaims_Multipart(t *testing.T) {
	h := newTestHandler(t)

	csvData := "claim_id,patient_id,procedure_code,denial_reason,submitted_at,status\n" +
		"A1,P1,99213,Missing modifier,2025-07-01,denied\n" +
		"A2,P2,99214,Authorization expired,2025-07-01,denied\n"
	jsonData := `[{"id": "B1", "member": "M1", "code": "99381", "error_msg": "Incorrect NPI", "date": "2025-07-03T00:00:00", "status": "denied"}]`

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	csvPart, _ := mw.CreateFormFile("csv_file", "emr_alpha.csv")
	csvPart.Write([]byte(csvData))
	jsonPart, _ := mw.CreateFormFile("json_file", "emr_beta.json")
	jsonPart.Write([]byte(jsonData))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/process-claims", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := doRequest(t, h, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body processClaimsResponse
	decodeBody(t, rec, &body)

	if body.Metadata.TotalClaimsProcessed != 3 {
		t.Errorf("expected 3 claims processed, got %d", body.Metadata.TotalClaimsProcessed)
	}
	if len(body.Candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(body.Candidates))
	}
	if body.Candidates[0].ClaimID != "A1" || body.Candidates[1].ClaimID != "B1" {
		t.Errorf("unexpected candidates: %+v", body.Candidates)
	}
	if body.Metrics.DeniedClaimsCount != 3 || body.Metrics.EligibleForResubmission != 2 {
		t.Errorf("unexpected metrics: %+v", body.Metrics)
	}
}

func TestProcessClaims_MissingFiles(t *testing.T) {
	h := newTestHandler(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("csv_file", "emr_alpha.csv")
	part.Write([]byte("claim_id,procedure_code,submitted_at,status\n"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/process-claims", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := doRequest(t, h, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without json_file, got %d", rec.Code)
	}
}

func TestProcessClaims_InvalidJSONRoot(t *testing.T) {
	h := newTestHandler(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	csvPart, _ := mw.CreateFormFile("csv_file", "emr_alpha.csv")
	csvPart.Write([]byte("claim_id,procedure_code,submitted_at,status\n"))
	jsonPart, _ := mw.CreateFormFile("json_file", "emr_beta.json")
	jsonPart.Write([]byte(`{"id": "B1"}`))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/process-claims", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := doRequest(t, h, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-list JSON root, got %d", rec.Code)
	}
}

func TestMetrics_NoSampleData(t *testing.T) {
	h := newTestHandler(t)
	h.cfg.Server.SampleCSV = "testdata/does-not-exist.csv"
	h.cfg.Server.SampleJSON = "testdata/does-not-exist.json"

	rec := doRequest(t, h, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body metricsResponse
	decodeBody(t, rec, &body)
	if body.Message != "No sample data available. Upload files to generate metrics." {
		t.Errorf("unexpected message %q", body.Message)
	}
	if body.TotalClaimsProcessed != 0 {
		t.Errorf("expected zeroed metrics, got %+v", body.Metrics)
	}
}

func TestBusinessRules(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, httptest.NewRequest(http.MethodGet, "/business-rules", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body businessRulesResponse
	decodeBody(t, rec, &body)

	if len(body.RetryableReasons) != 3 || len(body.NonRetryableReasons) != 2 {
		t.Errorf("unexpected rule lists: %+v", body)
	}
	if body.EligibilityCriteria["base_score_weight"] != 0.6 {
		t.Errorf("unexpected criteria: %v", body.EligibilityCriteria)
	}
	if body.EligibilityCriteria["recent_claim_threshold_days"] != 30 {
		t.Errorf("unexpected recency window: %v", body.EligibilityCriteria)
	}
}
