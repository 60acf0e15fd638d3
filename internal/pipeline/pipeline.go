// Package pipeline sequences ingestion, eligibility evaluation, and report
// aggregation for a single batch. Processing is deliberately synchronous:
// one ingestion pass, one scoring pass, one aggregation pass.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/remitlab/reclaim/internal/engine"
	"github.com/remitlab/reclaim/internal/ingest"
	"github.com/remitlab/reclaim/internal/model"
)

// Pipeline orchestrates the batch flow: normalize both sources, evaluate
// every claim, aggregate reports
type Pipeline struct {
	alpha  *ingest.AlphaAdapter
	beta   *ingest.BetaAdapter
	engine *engine.Engine
	log    logrus.FieldLogger
}

// New creates a pipeline around an already-constructed engine
func New(eng *engine.Engine, log logrus.FieldLogger) *Pipeline {
	return &Pipeline{
		alpha:  ingest.NewAlphaAdapter(log),
		beta:   ingest.NewBetaAdapter(log),
		engine: eng,
		log:    log,
	}
}

// Engine exposes the underlying engine for single-claim analysis callers
func (p *Pipeline) Engine() *engine.Engine {
	return p.engine
}

// ProcessFiles ingests both source files and evaluates every claim.
// Missing or malformed files are fatal; malformed rows and items have
// already been dropped by the adapters.
func (p *Pipeline) ProcessFiles(ctx context.Context, csvPath, jsonPath string) ([]model.Claim, error) {
	p.log.WithFields(logrus.Fields{
		"csv":  csvPath,
		"json": jsonPath,
	}).Info("starting claim processing pipeline")

	alphaClaims, err := p.alpha.Load(csvPath)
	if err != nil {
		return nil, fmt.Errorf("ingest %s: %w", p.alpha.Source(), err)
	}

	betaClaims, err := p.beta.Load(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("ingest %s: %w", p.beta.Source(), err)
	}

	claims := append(alphaClaims, betaClaims...)
	p.evaluateAll(ctx, claims)

	p.log.WithField("claims", len(claims)).Info("processed total claims")
	return claims, nil
}

// ProcessClaims is the pure-core entry point: it consumes already-parsed
// source shapes instead of files
func (p *Pipeline) ProcessClaims(ctx context.Context, rows []map[string]string, items []map[string]any) []model.Claim {
	claims := append(p.alpha.Normalize(rows), p.beta.Normalize(items)...)
	p.evaluateAll(ctx, claims)
	return claims
}

// evaluateAll runs the engine over every claim against the configured
// reference date. Each evaluation is independent.
func (p *Pipeline) evaluateAll(ctx context.Context, claims []model.Claim) {
	refDate := p.engine.ReferenceDate()
	for i := range claims {
		p.engine.Evaluate(ctx, &claims[i], refDate)
	}
}

// Partition splits evaluated claims into eligible and rejected sets,
// preserving order
func Partition(claims []model.Claim) (eligible, rejected []model.Claim) {
	for _, c := range claims {
		if c.ResubmissionEligible {
			eligible = append(eligible, c)
		} else {
			rejected = append(rejected, c)
		}
	}
	return eligible, rejected
}

// timestamp formats times the way all report metadata does
func timestamp(t time.Time) string {
	return t.Format(time.RFC3339)
}
