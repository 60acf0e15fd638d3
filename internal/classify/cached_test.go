package classify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/remitlab/reclaim/internal/model"
)

// countingClassifier records how many times it was asked
type countingClassifier struct {
	calls int
	err   error
}

func (c *countingClassifier) Name() string { return "counting" }

func (c *countingClassifier) Classify(_ context.Context, reason string) (model.ReasonAnalysis, error) {
	c.calls++
	if c.err != nil {
		return model.ReasonAnalysis{}, c.err
	}
	return model.ReasonAnalysis{Eligible: true, Confidence: 0.7, Reason: "classified: " + reason}, nil
}

func TestCachedClassifier_MemoizesVerdicts(t *testing.T) {
	inner := &countingClassifier{}
	c := NewCachedClassifier(inner, time.Minute)

	ctx := context.Background()
	first, err := c.Classify(ctx, "form incomplete")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := c.Classify(ctx, "form incomplete")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if inner.calls != 1 {
		t.Errorf("expected 1 inner call, got %d", inner.calls)
	}
	if first != second {
		t.Errorf("cached verdict differs: %+v vs %+v", first, second)
	}
}

func TestCachedClassifier_DistinctReasonsDistinctEntries(t *testing.T) {
	inner := &countingClassifier{}
	c := NewCachedClassifier(inner, time.Minute)

	ctx := context.Background()
	if _, err := c.Classify(ctx, "form incomplete"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Classify(ctx, "not billable"); err != nil {
		t.Fatal(err)
	}

	if inner.calls != 2 {
		t.Errorf("expected 2 inner calls, got %d", inner.calls)
	}
}

func TestCachedClassifier_DoesNotCacheErrors(t *testing.T) {
	inner := &countingClassifier{err: errors.New("provider down")}
	c := NewCachedClassifier(inner, time.Minute)

	ctx := context.Background()
	if _, err := c.Classify(ctx, "form incomplete"); err == nil {
		t.Fatal("expected error")
	}

	// Recovery: the next call must reach the provider again
	inner.err = nil
	if _, err := c.Classify(ctx, "form incomplete"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("expected 2 inner calls, got %d", inner.calls)
	}
}

func TestNewClassifier_DefaultsToStatic(t *testing.T) {
	cfg := model.DefaultConfig()

	c, err := NewClassifier(cfg.Classifier, cfg.Rules.Classifications)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Name() != "static" {
		t.Errorf("expected static provider, got %q", c.Name())
	}
}

func TestNewClassifier_UnknownProvider(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Classifier.Provider = "oracle"

	if _, err := NewClassifier(cfg.Classifier, cfg.Rules.Classifications); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
