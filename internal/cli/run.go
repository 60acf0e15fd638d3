package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/remitlab/reclaim/internal/pipeline"
)

var (
	alphaPath      string
	betaPath       string
	candidatesPath string
	rejectedPath   string
	referenceDate  string
	classifierName string
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process both claim sources and write resubmission reports",
	Long: `Run ingests the EMR Alpha CSV export and the EMR Beta JSON export,
normalizes both into canonical claims, evaluates every claim against the
eligibility rules, and writes two reports:
- the resubmission candidates list
- the rejected claims grouped by failing business rule

Example:
  reclaim run --alpha emr_alpha.csv --beta emr_beta.json
  reclaim run --alpha a.csv --beta b.json --reference-date 2025-07-30
  reclaim run --alpha a.csv --beta b.json --classifier openai`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&alphaPath, "alpha", "emr_alpha.csv", "EMR Alpha CSV input path")
	runCmd.Flags().StringVar(&betaPath, "beta", "emr_beta.json", "EMR Beta JSON input path")
	runCmd.Flags().StringVar(&candidatesPath, "candidates", "", "candidates report path (default from config)")
	runCmd.Flags().StringVar(&rejectedPath, "rejected", "", "rejected-claims report path (default from config)")
	runCmd.Flags().StringVar(&referenceDate, "reference-date", "", "recency gate cutoff (YYYY-MM-DD, default from config)")
	runCmd.Flags().StringVar(&classifierName, "classifier", "", "ambiguous-reason classifier (static, openai)")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if referenceDate != "" {
		cfg.Eligibility.ReferenceDate = referenceDate
	}
	if classifierName != "" {
		cfg.Classifier.Provider = classifierName
	}
	if candidatesPath == "" {
		candidatesPath = cfg.Output.CandidatesPath
	}
	if rejectedPath == "" {
		rejectedPath = cfg.Output.RejectedPath
	}

	log := buildLogger(cfg)
	p, err := buildPipeline(cfg, log)
	if err != nil {
		return err
	}

	ctx := context.Background()
	claims, err := p.ProcessFiles(ctx, alphaPath, betaPath)
	if err != nil {
		return fmt.Errorf("pipeline failed: %w", err)
	}

	now := time.Now()
	renderer := pipeline.NewRenderer(log)
	if err := renderer.RenderJSON(pipeline.BuildCandidatesReport(claims, now), candidatesPath); err != nil {
		return fmt.Errorf("render candidates: %w", err)
	}
	if err := renderer.RenderJSON(pipeline.BuildRejectionReport(claims, now), rejectedPath); err != nil {
		return fmt.Errorf("render rejected claims: %w", err)
	}

	metrics := p.GenerateMetrics(claims)

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Claims processed:      %d\n", metrics.TotalClaimsProcessed)
	fmt.Fprintf(os.Stderr, "  Denied:                %d\n", metrics.DeniedClaimsCount)
	fmt.Fprintf(os.Stderr, "  Eligible to resubmit:  %d\n", metrics.EligibleForResubmission)
	fmt.Fprintf(os.Stderr, "  Eligibility rate:      %.1f%% of denied\n", metrics.EligibilityRate*100)
	fmt.Fprintf(os.Stderr, "  Mean score:            %.3f\n", metrics.AverageEligibilityScore)
	fmt.Fprintf(os.Stderr, "  Candidates report:     %s\n", candidatesPath)
	fmt.Fprintf(os.Stderr, "  Rejections report:     %s\n", rejectedPath)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}
