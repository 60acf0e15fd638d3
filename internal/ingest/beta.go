package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/remitlab/reclaim/internal/model"
)

// EMR Beta exports a JSON array of objects with its own key names and ISO
// datetimes (with or without a time component).
var betaDateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// BetaAdapter normalizes EMR Beta JSON objects
type BetaAdapter struct {
	log logrus.FieldLogger
	now clock
}

// NewBetaAdapter creates the EMR Beta adapter
func NewBetaAdapter(log logrus.FieldLogger) *BetaAdapter {
	return &BetaAdapter{log: log, now: time.Now}
}

// Source returns the source tag attached to normalized claims
func (b *BetaAdapter) Source() model.Source {
	return model.SourceEMRBeta
}

// Load reads and normalizes a JSON export. A missing file, undecodable
// JSON, or a non-array root is fatal; malformed items are skipped with a
// warning.
func (b *BetaAdapter) Load(path string) ([]model.Claim, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open JSON source: %w", err)
	}

	items, err := ParseItems(data)
	if err != nil {
		return nil, fmt.Errorf("read JSON source %s: %w", path, err)
	}

	claims := b.Normalize(items)
	b.log.WithFields(logrus.Fields{
		"source": b.Source(),
		"path":   path,
		"claims": len(claims),
	}).Info("ingested JSON source")
	return claims, nil
}

// ParseItems decodes a JSON document whose root must be an array of objects
func ParseItems(data []byte) ([]map[string]any, error) {
	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decode JSON: %w", err)
	}

	list, ok := root.([]any)
	if !ok {
		return nil, fmt.Errorf("invalid JSON format: expected list")
	}

	items := make([]map[string]any, 0, len(list))
	for _, entry := range list {
		if obj, ok := entry.(map[string]any); ok {
			items = append(items, obj)
		} else {
			items = append(items, nil) // Kept so unit numbering stays aligned
		}
	}
	return items, nil
}

// Normalize converts already-parsed objects into canonical claims, dropping
// items that fail the required-field policy. Item numbering starts at 1.
func (b *BetaAdapter) Normalize(items []map[string]any) []model.Claim {
	var claims []model.Claim
	for i, item := range items {
		itemNum := i + 1
		if item == nil {
			warnDrop(b.log, string(b.Source()), itemNum, "item is not an object")
			continue
		}
		claim, ok := b.normalizeItem(item, itemNum)
		if !ok {
			continue
		}
		claims = append(claims, claim)
	}
	return claims
}

func (b *BetaAdapter) normalizeItem(item map[string]any, itemNum int) (model.Claim, bool) {
	claimID := strings.TrimSpace(stringField(item, "id"))
	procedureCode := strings.TrimSpace(stringField(item, "code"))
	if claimID == "" || procedureCode == "" {
		warnDrop(b.log, string(b.Source()), itemNum, "missing required fields (id or code)")
		return model.Claim{}, false
	}

	rawDate := stringField(item, "date")
	submittedAt, parsed := parseSubmittedAt(rawDate, betaDateLayouts, b.now)
	if !parsed {
		b.log.WithFields(logrus.Fields{
			"source": b.Source(),
			"unit":   itemNum,
			"value":  rawDate,
		}).Warn("invalid date format, assuming submitted now")
	}

	return model.Claim{
		ClaimID:       claimID,
		PatientID:     optional(stringField(item, "member")),
		ProcedureCode: procedureCode,
		DenialReason:  optional(stringField(item, "error_msg")),
		SubmittedAt:   submittedAt,
		Status:        strings.ToLower(strings.TrimSpace(stringField(item, "status"))),
		Source:        b.Source(),
	}, true
}

// stringField reads a string-typed key; missing keys and JSON nulls both
// read as empty
func stringField(item map[string]any, key string) string {
	if v, ok := item[key].(string); ok {
		return v
	}
	return ""
}
