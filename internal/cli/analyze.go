package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/remitlab/reclaim/internal/model"
)

var (
	azClaimID       string
	azPatientID     string
	azProcedureCode string
	azDenialReason  string
	azSubmittedAt   string
	azStatus        string
	azReferenceDate string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a single claim for resubmission eligibility",
	Long: `Analyze evaluates one claim against the full rule stack and prints
the annotated record with its per-check eligibility breakdown as JSON.

Example:
  reclaim analyze --claim-id A123 --procedure-code 99213 \
    --denial-reason "Missing modifier" --patient-id P001 \
    --submitted-at 2025-07-01`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&azClaimID, "claim-id", "", "claim identifier (required)")
	analyzeCmd.Flags().StringVar(&azPatientID, "patient-id", "", "patient identifier")
	analyzeCmd.Flags().StringVar(&azProcedureCode, "procedure-code", "", "procedure code (required)")
	analyzeCmd.Flags().StringVar(&azDenialReason, "denial-reason", "", "denial reason text")
	analyzeCmd.Flags().StringVar(&azSubmittedAt, "submitted-at", "", "submission date, ISO format (required)")
	analyzeCmd.Flags().StringVar(&azStatus, "status", "denied", "claim status")
	analyzeCmd.Flags().StringVar(&azReferenceDate, "reference-date", "", "recency gate cutoff (YYYY-MM-DD)")

	_ = analyzeCmd.MarkFlagRequired("claim-id")
	_ = analyzeCmd.MarkFlagRequired("procedure-code")
	_ = analyzeCmd.MarkFlagRequired("submitted-at")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if azReferenceDate != "" {
		cfg.Eligibility.ReferenceDate = azReferenceDate
	}

	log := buildLogger(cfg)
	p, err := buildPipeline(cfg, log)
	if err != nil {
		return err
	}

	submittedAt, err := parseFlexibleDate(azSubmittedAt)
	if err != nil {
		return fmt.Errorf("invalid --submitted-at: %w", err)
	}

	claim := model.Claim{
		ClaimID:       strings.TrimSpace(azClaimID),
		PatientID:     strings.TrimSpace(azPatientID),
		ProcedureCode: strings.TrimSpace(azProcedureCode),
		DenialReason:  strings.TrimSpace(azDenialReason),
		SubmittedAt:   submittedAt,
		Status:        strings.ToLower(strings.TrimSpace(azStatus)),
		Source:        model.SourceAPI,
	}

	check := p.Engine().Evaluate(context.Background(), &claim, p.Engine().ReferenceDate())

	out := struct {
		model.Claim
		EligibilityCheck model.EligibilityCheck `json:"eligibility_check"`
	}{Claim: claim, EligibilityCheck: check}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// parseFlexibleDate accepts RFC3339, a bare datetime, or a bare date
func parseFlexibleDate(raw string) (time.Time, error) {
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
