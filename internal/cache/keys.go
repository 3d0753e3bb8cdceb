package cache

import (
	"fmt"

	"github.com/google/uuid"
)

const RateLimitPrefix = "ratelimit:"

// JobStatusKey scopes the status entry to its owner, so a cache hit can
// be served without consulting the store for ownership.
func JobStatusKey(userID, jobID uuid.UUID) string {
	return fmt.Sprintf("job:%s:%s", userID, jobID)
}

func RateLimitKey(keyPrefix string) string {
	return RateLimitPrefix + keyPrefix
}

func TranscriptKey(sourceType, sourceID string) string {
	return fmt.Sprintf("transcript:%s:%s", sourceType, sourceID)
}
