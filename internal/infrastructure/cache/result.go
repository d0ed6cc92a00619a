package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/voice-guard/internal/domain/entities"
)

// ResultCache stores finished analyses as JSON in a Store, keyed by the
// audio digest
type ResultCache struct {
	store  Store
	logger *zap.Logger
}

// NewResultCache creates a result cache on top of store
func NewResultCache(store Store, logger *zap.Logger) *ResultCache {
	return &ResultCache{store: store, logger: logger}
}

func resultKey(digest string) string {
	return fmt.Sprintf("analysis:result:%s", digest)
}

// Get returns the cached result; store or decode failures read as a miss
func (c *ResultCache) Get(ctx context.Context, digest string) (*entities.AnalysisResult, bool) {
	raw, ok, err := c.store.Get(ctx, resultKey(digest))
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("result cache read failed", zap.String("digest", digest), zap.Error(err))
		}
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var result entities.AnalysisResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		if c.logger != nil {
			c.logger.Warn("result cache entry corrupt", zap.String("digest", digest), zap.Error(err))
		}
		return nil, false
	}
	return &result, true
}

// Set caches result for ttl
func (c *ResultCache) Set(ctx context.Context, digest string, result *entities.AnalysisResult, ttl time.Duration) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return c.store.Set(ctx, resultKey(digest), string(raw), ttl)
}
