package ingest

import (
	"testing"
	"time"

	"github.com/remitlab/reclaim/internal/logging"
	"github.com/remitlab/reclaim/internal/model"
)

func newTestBeta() *BetaAdapter {
	b := NewBetaAdapter(logging.Discard())
	b.now = func() time.Time { return ingestNow }
	return b
}

func TestParseItems_RootMustBeList(t *testing.T) {
	if _, err := ParseItems([]byte(`{"id": "B1"}`)); err == nil {
		t.Fatal("expected error for non-list root")
	}
	if _, err := ParseItems([]byte(`not json`)); err == nil {
		t.Fatal("expected error for undecodable input")
	}

	items, err := ParseItems([]byte(`[{"id": "B1"}, {"id": "B2"}]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
}

func TestBetaNormalize_FullItem(t *testing.T) {
	b := newTestBeta()

	claims := b.Normalize([]map[string]any{{
		"id":        " B1 ",
		"member":    "M100",
		"code":      "99381",
		"error_msg": "Prior auth required",
		"date":      "2025-07-10T00:00:00",
		"status":    "Denied",
	}})

	if len(claims) != 1 {
		t.Fatalf("expected 1 claim, got %d", len(claims))
	}
	c := claims[0]
	if c.ClaimID != "B1" || c.PatientID != "M100" || c.ProcedureCode != "99381" {
		t.Errorf("unexpected claim: %+v", c)
	}
	if c.Status != "denied" {
		t.Errorf("expected lowercase status, got %q", c.Status)
	}
	if c.Source != model.SourceEMRBeta {
		t.Errorf("expected source %s, got %s", model.SourceEMRBeta, c.Source)
	}
	want := time.Date(2025, time.July, 10, 0, 0, 0, 0, time.UTC)
	if !c.SubmittedAt.Equal(want) {
		t.Errorf("expected %v, got %v", want, c.SubmittedAt)
	}
}

func TestBetaNormalize_NullErrorMsgIsAbsent(t *testing.T) {
	b := newTestBeta()

	claims := b.Normalize([]map[string]any{{
		"id":        "B1",
		"member":    "M100",
		"code":      "99381",
		"error_msg": nil,
		"date":      "2025-07-10",
		"status":    "denied",
	}})

	if len(claims) != 1 {
		t.Fatalf("expected 1 claim, got %d", len(claims))
	}
	if claims[0].DenialReason != "" {
		t.Errorf("expected absent denial reason, got %q", claims[0].DenialReason)
	}
}

func TestBetaNormalize_DropsMissingRequiredFields(t *testing.T) {
	b := newTestBeta()

	claims := b.Normalize([]map[string]any{
		{"id": "", "code": "99381", "date": "2025-07-10", "status": "denied"},
		{"id": "B2", "code": "   ", "date": "2025-07-10", "status": "denied"},
		{"id": "B3", "code": "99401", "date": "2025-07-10", "status": "denied"},
		nil, // non-object entry
	})

	if len(claims) != 1 {
		t.Fatalf("expected 1 surviving claim, got %d", len(claims))
	}
	if claims[0].ClaimID != "B3" {
		t.Errorf("expected claim B3 to survive, got %q", claims[0].ClaimID)
	}
}

func TestBetaNormalize_DateFormats(t *testing.T) {
	b := newTestBeta()

	tests := []struct {
		name string
		date string
		want time.Time
	}{
		{"rfc3339", "2025-07-10T08:00:00Z", time.Date(2025, time.July, 10, 8, 0, 0, 0, time.UTC)},
		{"bare datetime", "2025-07-10T08:00:00", time.Date(2025, time.July, 10, 8, 0, 0, 0, time.UTC)},
		{"bare date", "2025-07-10", time.Date(2025, time.July, 10, 0, 0, 0, 0, time.UTC)},
		{"unparseable falls back to now", "10 Jul 2025", ingestNow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := b.Normalize([]map[string]any{{
				"id": "B1", "code": "99381", "date": tt.date, "status": "denied",
			}})
			if len(claims) != 1 {
				t.Fatalf("expected 1 claim, got %d", len(claims))
			}
			if !claims[0].SubmittedAt.Equal(tt.want) {
				t.Errorf("expected %v, got %v", tt.want, claims[0].SubmittedAt)
			}
		})
	}
}

func TestBetaLoad_MissingFileIsFatal(t *testing.T) {
	b := newTestBeta()

	if _, err := b.Load("testdata/does-not-exist.json"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
