// Package ingest normalizes raw EMR exports into canonical claims.
// Each source has its own adapter with source-specific field names and date
// formats; the contract is identical. Malformed units are dropped with a
// warning and never abort the batch, while unreadable files are fatal.
package ingest

import (
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// clock is injectable so date-fallback behavior is testable
type clock func() time.Time

// optional trims a string field and maps blank to absent (empty string)
func optional(s string) string {
	return strings.TrimSpace(s)
}

// parseSubmittedAt tries the source's expected layout, then one alternate
// ISO-style layout. Both failing falls back to now: lossy but non-fatal,
// so one bad row does not abort the run. The second return value reports
// whether parsing succeeded.
func parseSubmittedAt(raw string, layouts []string, now clock) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return now(), false
}

// warnDrop records a skipped unit
func warnDrop(log logrus.FieldLogger, source string, unit int, msg string) {
	log.WithFields(logrus.Fields{
		"source": source,
		"unit":   unit,
	}).Warn(msg)
}
