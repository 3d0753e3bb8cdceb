package models

import "time"

// Transcript cache source types. YouTube sources are keyed by video ID,
// text sources by a content hash.
const (
	SourceTypeYouTube = "youtube"
	SourceTypeText    = "text"
)

// TranscriptCacheEntry memoizes a resolved transcript. The cache is a
// pure optimization: a miss only costs an extra external fetch.
type TranscriptCacheEntry struct {
	SourceType     string    `db:"source_type"      json:"source_type"`
	SourceID       string    `db:"source_id"        json:"source_id"`
	Transcript     string    `db:"transcript"       json:"transcript"`
	WordCount      int       `db:"word_count"       json:"word_count"`
	AccessCount    int64     `db:"access_count"     json:"access_count"`
	LastAccessedAt time.Time `db:"last_accessed_at" json:"last_accessed_at"`
	CreatedAt      time.Time `db:"created_at"       json:"created_at"`
}
