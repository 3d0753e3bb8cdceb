package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/contentforge/contentforge/internal/api/response"
	"github.com/contentforge/contentforge/internal/cache"
)

// CacheCleaner prunes stale transcript cache rows.
type CacheCleaner interface {
	PruneTranscriptCache(ctx context.Context, olderThan time.Duration) (int64, error)
}

// RateLimitCleaner clears rate-limit counters by key prefix.
type RateLimitCleaner interface {
	DeleteByPrefix(ctx context.Context, prefix string) (int64, error)
}

// NewCleanupHandler returns an http.HandlerFunc for
// POST /internal/v1/cron/cleanup. The two cleanups are independent:
// one failing must not block the other, and any failure yields a 500.
func NewCleanupHandler(st CacheCleaner, ca RateLimitCleaner, transcriptRetention time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var failed bool

		transcriptsPruned, err := st.PruneTranscriptCache(r.Context(), transcriptRetention)
		if err != nil {
			slog.Error("transcript cache prune failed", "error", err)
			failed = true
		}

		countersCleared, err := ca.DeleteByPrefix(r.Context(), cache.RateLimitPrefix)
		if err != nil {
			slog.Error("rate limit cleanup failed", "error", err)
			failed = true
		}

		if failed {
			response.Error(w, http.StatusInternalServerError, "CLEANUP_FAILED",
				"Cleanup failed", nil)
			return
		}

		response.JSON(w, map[string]any{
			"transcripts_pruned":    transcriptsPruned,
			"rate_counters_cleared": countersCleared,
		})
	}
}
