package classify

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/remitlab/reclaim/internal/model"
)

// CachedClassifier memoizes verdicts keyed by reason text. Denial reasons
// repeat heavily across a batch, so remote providers would otherwise pay
// one round trip per duplicate.
type CachedClassifier struct {
	inner Classifier
	cache *gocache.Cache
	ttl   time.Duration
}

// NewCachedClassifier wraps a classifier with an in-memory cache
func NewCachedClassifier(inner Classifier, ttl time.Duration) *CachedClassifier {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &CachedClassifier{
		inner: inner,
		cache: gocache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

// Name returns the wrapped provider name
func (c *CachedClassifier) Name() string {
	return c.inner.Name()
}

// Classify returns the cached verdict when present, otherwise delegates.
// Errors are never cached.
func (c *CachedClassifier) Classify(ctx context.Context, reason string) (model.ReasonAnalysis, error) {
	key := cacheKey(reason)
	if val, found := c.cache.Get(key); found {
		return val.(model.ReasonAnalysis), nil
	}

	analysis, err := c.inner.Classify(ctx, reason)
	if err != nil {
		return model.ReasonAnalysis{}, err
	}

	c.cache.Set(key, analysis, c.ttl)
	return analysis, nil
}

// cacheKey hashes the reason so arbitrary free text keys stay bounded
func cacheKey(reason string) string {
	sum := sha256.Sum256([]byte(reason))
	return "reclaim:v1:" + hex.EncodeToString(sum[:])
}
