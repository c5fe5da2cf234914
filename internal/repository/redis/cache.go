package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sharadgup/AGI-Innovation/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const contextCachePrefix = "context:"

// ContextCache caches grounding text of context documents
type ContextCache struct {
	client *Client
	ttl    time.Duration
}

// NewContextCache creates a new context cache
func NewContextCache(client *Client, ttl time.Duration) *ContextCache {
	return &ContextCache{client: client, ttl: ttl}
}

func contextCacheKey(kind domain.ContextKind, key string) string {
	return fmt.Sprintf("%s%s:%s", contextCachePrefix, kind, key)
}

// Get returns the cached text. ok is false on a miss.
func (c *ContextCache) Get(ctx context.Context, kind domain.ContextKind, key string) (text string, ok bool, err error) {
	text, err = c.client.rdb.Get(ctx, contextCacheKey(kind, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read context cache: %w", err)
	}
	return text, true, nil
}

// Set caches text for a context document
func (c *ContextCache) Set(ctx context.Context, kind domain.ContextKind, key, text string) error {
	return c.client.rdb.Set(ctx, contextCacheKey(kind, key), text, c.ttl).Err()
}

// CachedDocuments serves context documents from Redis, loading misses from the wrapped repository.
// Cache failures fall through to the repository.
type CachedDocuments struct {
	next  domain.DocumentRepository
	cache *ContextCache
}

// NewCachedDocuments wraps a document repository with the context cache
func NewCachedDocuments(next domain.DocumentRepository, cache *ContextCache) *CachedDocuments {
	return &CachedDocuments{next: next, cache: cache}
}

func (d *CachedDocuments) ReportContext(ctx context.Context, documentationID string) (string, error) {
	return d.load(ctx, domain.KindReport, documentationID, func() (string, error) {
		return d.next.ReportContext(ctx, documentationID)
	})
}

// PDFContext caches per owner so the access check stays in force on hits
func (d *CachedDocuments) PDFContext(ctx context.Context, analysisID, userID string) (string, error) {
	return d.load(ctx, domain.KindPDF, analysisID+":"+userID, func() (string, error) {
		return d.next.PDFContext(ctx, analysisID, userID)
	})
}

func (d *CachedDocuments) load(ctx context.Context, kind domain.ContextKind, key string, fetch func() (string, error)) (string, error) {
	text, ok, err := d.cache.Get(ctx, kind, key)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("kind", string(kind)).Msg("context cache read failed")
	}
	if ok {
		return text, nil
	}

	text, err = fetch()
	if err != nil {
		return "", err
	}

	if err := d.cache.Set(ctx, kind, key, text); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("kind", string(kind)).Msg("context cache write failed")
	}
	return text, nil
}
