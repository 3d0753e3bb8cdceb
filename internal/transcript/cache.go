package transcript

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"

	"github.com/contentforge/contentforge/internal/cache"
	"github.com/contentforge/contentforge/internal/store"
	"github.com/contentforge/contentforge/pkg/models"
)

// TextCacheKey derives the cache key for a text source: the first 32 hex
// characters of the SHA-256 of the trimmed content. Identical content
// always hashes to the same key, regardless of who submits it.
func TextCacheKey(text string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(text)))
	return hex.EncodeToString(sum[:])[:32]
}

// CachingResolver memoizes YouTube and text resolutions through a Redis
// hot layer backed by the transcript_cache table. The cache is purely an
// optimization: lookups that error fall through to a fresh resolution,
// and writes are best-effort.
type CachingResolver struct {
	inner *Resolver
	store store.Store
	cache cache.Cache
	ttl   time.Duration
}

func NewCachingResolver(inner *Resolver, st store.Store, ca cache.Cache, ttl time.Duration) *CachingResolver {
	return &CachingResolver{inner: inner, store: st, cache: ca, ttl: ttl}
}

func (r *CachingResolver) ResolveYouTube(ctx context.Context, url string) (string, error) {
	videoID, err := ExtractVideoID(url)
	if err != nil {
		return "", err
	}
	return r.resolve(ctx, models.SourceTypeYouTube, videoID, func() (string, error) {
		return r.inner.ResolveYouTube(ctx, url)
	})
}

func (r *CachingResolver) ResolveText(ctx context.Context, text string) (string, error) {
	trimmed, err := r.inner.ResolveText(ctx, text)
	if err != nil {
		return "", err
	}
	// Text resolution is a pass-through, so the cache only saves the
	// bookkeeping of re-deriving word counts; it exists for parity with
	// the original system and for access statistics.
	return r.resolve(ctx, models.SourceTypeText, TextCacheKey(trimmed), func() (string, error) {
		return trimmed, nil
	})
}

// ResolveAudio is uncached: uploads are one-shot and keyed per job.
func (r *CachingResolver) ResolveAudio(ctx context.Context, data []byte, filename, mimeType string) (string, error) {
	return r.inner.ResolveAudio(ctx, data, filename, mimeType)
}

func (r *CachingResolver) resolve(ctx context.Context, sourceType, sourceID string, fresh func() (string, error)) (string, error) {
	key := cache.TranscriptKey(sourceType, sourceID)

	if val, found, err := r.cache.Get(ctx, key); err == nil && found {
		r.touch(sourceType, sourceID)
		return string(val), nil
	}

	if entry, err := r.store.GetTranscriptCache(ctx, sourceType, sourceID); err == nil {
		r.touch(sourceType, sourceID)
		if err := r.cache.Set(ctx, key, []byte(entry.Transcript), r.ttl); err != nil {
			slog.Warn("transcript hot-cache backfill failed", "key", key, "error", err)
		}
		return entry.Transcript, nil
	}

	text, err := fresh()
	if err != nil {
		return "", err
	}

	// Best-effort persistence: a cache-write failure never fails a
	// resolution that otherwise succeeded.
	if err := r.store.UpsertTranscriptCache(ctx, &models.TranscriptCacheEntry{
		SourceType: sourceType,
		SourceID:   sourceID,
		Transcript: text,
		WordCount:  WordCount(text),
	}); err != nil {
		slog.Warn("transcript cache write failed", "source_type", sourceType, "source_id", sourceID, "error", err)
	}
	if err := r.cache.Set(ctx, key, []byte(text), r.ttl); err != nil {
		slog.Warn("transcript hot-cache write failed", "key", key, "error", err)
	}

	return text, nil
}

// touch bumps access statistics without blocking the resolution path.
func (r *CachingResolver) touch(sourceType, sourceID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.store.TouchTranscriptCache(ctx, sourceType, sourceID); err != nil {
			slog.Warn("transcript cache touch failed", "source_type", sourceType, "source_id", sourceID, "error", err)
		}
	}()
}
