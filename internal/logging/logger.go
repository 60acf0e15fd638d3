// Package logging builds the structured logger injected into the pipeline,
// adapters, and API. Nothing in this repo logs through package-level state.
package logging

import (
	"io"

	"github.com/sirupsen/logrus"
)

// New creates a logger writing to out with the given level and format.
// Unknown levels fall back to info; any format other than "json" selects
// the text formatter.
func New(out io.Writer, level, format string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)

	if format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)

	return log
}

// Discard returns a logger that drops everything, for tests and pure
// library callers
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
