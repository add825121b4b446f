package discovery

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"time"

	"github.com/turtacn/ChemSource/internal/domain/supplier"
	"github.com/turtacn/ChemSource/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemSource/pkg/errors"
)

// CachingExtractor memoizes extraction outcomes, including absence, so known
// misses are not refetched within the TTL. Fetch failures are not cached.
type CachingExtractor struct {
	inner  EvidenceExtractor
	cache  EvidenceCache
	ttl    time.Duration
	logger logging.Logger
}

// NewCachingExtractor wraps inner with cache.
func NewCachingExtractor(inner EvidenceExtractor, cache EvidenceCache, ttl time.Duration, logger logging.Logger) *CachingExtractor {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &CachingExtractor{inner: inner, cache: cache, ttl: ttl, logger: logger.Named("evidence_cache")}
}

// EvidenceKey is the cache key for an (identifier, url) pair.
func EvidenceKey(identifier, rawURL string) string {
	sum := sha1.Sum([]byte(rawURL))
	return EvidencePrefix(identifier) + hex.EncodeToString(sum[:])
}

// EvidencePrefix is the key prefix shared by every page cached for identifier.
func EvidencePrefix(identifier string) string {
	return "evidence:" + identifier + ":"
}

// Extract implements EvidenceExtractor.
func (c *CachingExtractor) Extract(ctx context.Context, rawURL, identifier string) (*supplier.EvidenceRecord, error) {
	var rec supplier.EvidenceRecord
	err := c.cache.GetOrSet(ctx, EvidenceKey(identifier, rawURL), &rec, c.ttl, func(ctx context.Context) (interface{}, error) {
		r, err := c.inner.Extract(ctx, rawURL, identifier)
		if err != nil || r == nil {
			return nil, err
		}
		return r, nil
	})

	switch {
	case err == nil:
		return &rec, nil
	case errors.IsCode(err, errors.ErrCodeCachedNull):
		return nil, nil
	case errors.IsCode(err, errors.ErrCodeCacheError), errors.IsCode(err, errors.ErrCodeSerialization):
		c.logger.Warn("evidence cache unavailable, extracting directly", logging.String("url", rawURL), logging.Err(err))
		return c.inner.Extract(ctx, rawURL, identifier)
	default:
		return nil, err
	}
}

//Personal.AI order the ending
