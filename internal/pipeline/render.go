package pipeline

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// Renderer writes report structures to disk as pretty-printed JSON
type Renderer struct {
	log logrus.FieldLogger
}

// NewRenderer creates a renderer
func NewRenderer(log logrus.FieldLogger) *Renderer {
	return &Renderer{log: log}
}

// RenderJSON writes any report shape to path
func (r *Renderer) RenderJSON(report any, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	r.log.WithField("path", path).Info("wrote report")
	return nil
}
