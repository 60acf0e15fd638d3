package classify

import (
	"fmt"
	"strings"

	"github.com/remitlab/reclaim/internal/model"
)

// NewClassifier creates a classifier from configuration. Every provider is
// wrapped with the memoizing cache.
func NewClassifier(cfg model.ClassifierConfig, table map[string]model.ReasonAnalysis) (Classifier, error) {
	provider := strings.ToLower(cfg.Provider)

	var inner Classifier
	switch provider {
	case "static", "":
		inner = NewStaticClassifier(table)

	case "openai":
		c, err := NewOpenAIClassifier(cfg)
		if err != nil {
			return nil, err
		}
		inner = c

	default:
		return nil, fmt.Errorf("unknown classifier provider: %s (supported: static, openai)", cfg.Provider)
	}

	return NewCachedClassifier(inner, cfg.CacheTTL), nil
}
