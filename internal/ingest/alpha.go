package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/remitlab/reclaim/internal/model"
)

// EMR Alpha exports flat CSV rows with dates as YYYY-MM-DD.
var alphaDateLayouts = []string{"2006-01-02", time.RFC3339}

// AlphaAdapter normalizes EMR Alpha CSV rows
type AlphaAdapter struct {
	log logrus.FieldLogger
	now clock
}

// NewAlphaAdapter creates the EMR Alpha adapter
func NewAlphaAdapter(log logrus.FieldLogger) *AlphaAdapter {
	return &AlphaAdapter{log: log, now: time.Now}
}

// Source returns the source tag attached to normalized claims
func (a *AlphaAdapter) Source() model.Source {
	return model.SourceEMRAlpha
}

// Load reads and normalizes a CSV export. A missing or unreadable file is
// fatal; malformed rows are skipped with a warning.
func (a *AlphaAdapter) Load(path string) ([]model.Claim, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open CSV source: %w", err)
	}
	defer f.Close()

	rows, err := ParseRows(f)
	if err != nil {
		return nil, fmt.Errorf("read CSV source %s: %w", path, err)
	}

	claims := a.Normalize(rows)
	a.log.WithFields(logrus.Fields{
		"source": a.Source(),
		"path":   path,
		"claims": len(claims),
	}).Info("ingested CSV source")
	return claims, nil
}

// ParseRows decodes a CSV stream into flat key-value rows keyed by the
// header line
func ParseRows(r io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	// Ragged rows decode as-is; short rows then fail the required-field
	// policy in Normalize instead of aborting the batch
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var rows []map[string]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		row := make(map[string]string, len(header))
		for i, key := range header {
			if i < len(record) {
				row[strings.TrimSpace(key)] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Normalize converts already-parsed rows into canonical claims, dropping
// rows that fail the required-field policy. Row numbering starts at 2 to
// match the file including its header.
func (a *AlphaAdapter) Normalize(rows []map[string]string) []model.Claim {
	var claims []model.Claim
	for i, row := range rows {
		rowNum := i + 2
		claim, ok := a.normalizeRow(row, rowNum)
		if !ok {
			continue
		}
		claims = append(claims, claim)
	}
	return claims
}

func (a *AlphaAdapter) normalizeRow(row map[string]string, rowNum int) (model.Claim, bool) {
	claimID := strings.TrimSpace(row["claim_id"])
	procedureCode := strings.TrimSpace(row["procedure_code"])
	if claimID == "" || procedureCode == "" {
		warnDrop(a.log, string(a.Source()), rowNum, "missing required fields (claim_id or procedure_code)")
		return model.Claim{}, false
	}

	submittedAt, parsed := parseSubmittedAt(row["submitted_at"], alphaDateLayouts, a.now)
	if !parsed {
		a.log.WithFields(logrus.Fields{
			"source": a.Source(),
			"unit":   rowNum,
			"value":  row["submitted_at"],
		}).Warn("invalid date format, assuming submitted now")
	}

	return model.Claim{
		ClaimID:       claimID,
		PatientID:     optional(row["patient_id"]),
		ProcedureCode: procedureCode,
		DenialReason:  optional(row["denial_reason"]),
		SubmittedAt:   submittedAt,
		Status:        strings.ToLower(strings.TrimSpace(row["status"])),
		Source:        a.Source(),
	}, true
}
