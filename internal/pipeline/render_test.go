package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/remitlab/reclaim/internal/logging"
)

func TestRenderJSON(t *testing.T) {
	r := NewRenderer(logging.Discard())
	path := filepath.Join(t.TempDir(), "candidates.json")

	report := BuildCandidatesReport(nil, batchNow)
	if err := r.RenderJSON(report, path); err != nil {
		t.Fatalf("render: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read rendered file: %v", err)
	}

	var decoded CandidatesReport
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("rendered file is not valid JSON: %v", err)
	}
	if decoded.Metadata.TotalClaimsProcessed != 0 {
		t.Errorf("unexpected metadata: %+v", decoded.Metadata)
	}
}

func TestRenderJSON_BadPathIsError(t *testing.T) {
	r := NewRenderer(logging.Discard())

	err := r.RenderJSON(map[string]string{}, filepath.Join(t.TempDir(), "missing", "out.json"))
	if err == nil {
		t.Fatal("expected error for unwritable path")
	}
}
