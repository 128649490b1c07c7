package suggestion

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/alchemorsel/pantry/internal/ports/outbound"
)

const cacheKeyPrefix = "completion:"

// completionCache is a cache-aside wrapper. Cache failures are logged and
// treated as misses; a nil repository or a zero ttl disables caching.
type completionCache struct {
	repo   outbound.CacheRepository
	logger *zap.Logger
}

func newCompletionCache(repo outbound.CacheRepository, logger *zap.Logger) *completionCache {
	return &completionCache{repo: repo, logger: logger}
}

func (c *completionCache) key(provider string, req outbound.CompletionRequest) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s\x00%s\x00%s\x00%d\x00%.3f",
		provider, req.System, req.Prompt, req.MaxTokens, req.Temperature)))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

func (c *completionCache) get(ctx context.Context, key string, ttl time.Duration) (string, bool) {
	if c.repo == nil || ttl <= 0 {
		return "", false
	}
	data, err := c.repo.Get(ctx, key)
	if err != nil {
		if !stderrors.Is(err, outbound.ErrCacheMiss) {
			c.logger.Warn("Completion cache read failed", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	return string(data), true
}

func (c *completionCache) set(ctx context.Context, key, text string, ttl time.Duration) {
	if c.repo == nil || ttl <= 0 {
		return
	}
	if err := c.repo.Set(ctx, key, []byte(text), ttl); err != nil {
		c.logger.Warn("Completion cache write failed", zap.String("key", key), zap.Error(err))
	}
}
