package cache

import (
	"context"
	"log/slog"
	"strings"
)

var supportedCacheProviders = []string{"file", "redis", "postgres", "postgresql", "memory"}

// NewFromURL builds the cache store for a URL, choosing the durable backend
// by scheme and wrapping it so durable failures degrade to memory. A
// backend that cannot even be opened degrades immediately instead of
// failing: the cache layer must never block a run.
func NewFromURL(ctx context.Context, logger *slog.Logger, cacheURL string) *Fallback {
	switch parseCacheProvider(cacheURL) {
	case "redis":
		durable, err := NewRedisStore(cacheURL)
		if err != nil {
			logger.Warn("Failed to open redis cache, using in-memory store", "error", err)

			return NewFallback(nil, logger)
		}

		return NewFallback(durable, logger)
	case "postgres", "postgresql":
		durable, err := NewPostgresStore(ctx, cacheURL)
		if err != nil {
			logger.Warn("Failed to open postgres cache, using in-memory store", "error", err)

			return NewFallback(nil, logger)
		}

		return NewFallback(durable, logger)
	case "memory":
		return NewFallback(nil, logger)
	default:
		return NewFallback(NewFileStore(cacheURL), logger)
	}
}

func parseCacheProvider(cacheURL string) string {
	parts := strings.Split(cacheURL, "://")

	provider := parts[0]
	for _, supported := range supportedCacheProviders {
		if provider == supported {
			return provider
		}
	}

	return "file"
}
