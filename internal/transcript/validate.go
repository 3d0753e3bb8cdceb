package transcript

import (
	"fmt"
	"strings"
)

const (
	// MaxTranscriptChars caps transcripts before they reach the generator.
	MaxTranscriptChars = 100_000
	// MinTranscriptTokens is the minimum whitespace-delimited token count.
	MinTranscriptTokens = 50
	// musicHeavyChars: a short transcript dominated by music tags is
	// almost certainly a music-only caption track.
	musicHeavyChars = 500
)

// Validate is the standalone transcript quality gate. It is independent
// of resolution so the worker can re-check cached entries before
// spending generation credits on them.
func Validate(text string) error {
	n := len(text)
	if n < MinTextChars {
		return fmt.Errorf("%w: %d chars (minimum %d)", ErrTranscriptUnavailable, n, MinTextChars)
	}
	if n > MaxTranscriptChars {
		return fmt.Errorf("%w: %d chars (maximum %d)", ErrTranscriptUnavailable, n, MaxTranscriptChars)
	}

	tokens := strings.Fields(text)
	if len(tokens) < MinTranscriptTokens {
		return fmt.Errorf("%w: %d tokens (minimum %d)", ErrTranscriptUnavailable, len(tokens), MinTranscriptTokens)
	}

	if n < musicHeavyChars {
		lower := strings.ToLower(text)
		musicTags := strings.Count(lower, "[music]") + strings.Count(lower, "♪")
		if musicTags >= 3 {
			return fmt.Errorf("%w: transcript is predominantly music tags", ErrTranscriptUnavailable)
		}
	}

	return nil
}

// WordCount returns the number of whitespace-delimited tokens in s.
func WordCount(s string) int {
	return len(strings.Fields(s))
}
