// Package transcript turns job inputs — YouTube URLs, uploaded audio, or
// raw text — into plain-text transcripts.
package transcript

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/contentforge/contentforge/pkg/models"
)

var (
	ErrInputTooShort         = errors.New("input text too short")
	ErrTranscriptUnavailable = errors.New("transcript unavailable")
	ErrFileTooLarge          = errors.New("audio file too large")
	ErrUnsupportedFormat     = errors.New("unsupported audio format")
	ErrInvalidYouTubeURL     = errors.New("not a valid YouTube URL")
)

const (
	// MinTextChars is the minimum accepted length for text inputs and
	// resolved caption tracks. Shorter captions usually mean the video
	// has captions disabled or is music-only.
	MinTextChars = 100
	// MinAudioTranscriptChars is the minimum accepted transcription length.
	MinAudioTranscriptChars = 50
	// MaxAudioBytes caps uploaded audio at 25 MiB.
	MaxAudioBytes = 25 << 20
)

var allowedAudioMIMEs = map[string]bool{
	"audio/mpeg":  true,
	"audio/mp3":   true,
	"audio/wav":   true,
	"audio/x-m4a": true,
	"audio/mp4":   true,
}

// Resolver produces transcripts from the three supported input types.
// Caption fetching and speech-to-text are injected so tests can fake them.
type Resolver struct {
	fetcher           CaptionFetcher
	provider          models.LLMProvider
	transcribeTimeout time.Duration
}

func NewResolver(fetcher CaptionFetcher, provider models.LLMProvider, transcribeTimeout time.Duration) *Resolver {
	return &Resolver{
		fetcher:           fetcher,
		provider:          provider,
		transcribeTimeout: transcribeTimeout,
	}
}

// ResolveYouTube fetches the caption track for a YouTube URL and joins it
// into a single whitespace-normalized transcript.
func (r *Resolver) ResolveYouTube(ctx context.Context, url string) (string, error) {
	videoID, err := ExtractVideoID(url)
	if err != nil {
		return "", err
	}

	segments, err := r.fetcher.FetchCaptions(ctx, videoID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranscriptUnavailable, err)
	}

	text := joinSegments(segments)
	if len(text) < MinTextChars {
		return "", fmt.Errorf("%w: caption track too short (%d chars)", ErrTranscriptUnavailable, len(text))
	}
	return text, nil
}

// ResolveAudio transcribes uploaded audio bytes via the LLM provider.
func (r *Resolver) ResolveAudio(ctx context.Context, data []byte, filename, mimeType string) (string, error) {
	if !allowedAudioMIMEs[mimeType] {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, mimeType)
	}
	if len(data) > MaxAudioBytes {
		return "", fmt.Errorf("%w: %d bytes (limit %d)", ErrFileTooLarge, len(data), MaxAudioBytes)
	}

	ctx, cancel := context.WithTimeout(ctx, r.transcribeTimeout)
	defer cancel()

	text, err := r.provider.Transcribe(ctx, data, filename)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranscriptUnavailable, err)
	}
	text = strings.TrimSpace(text)
	if len(text) < MinAudioTranscriptChars {
		return "", fmt.Errorf("%w: transcription too short (%d chars)", ErrTranscriptUnavailable, len(text))
	}
	return text, nil
}

// ResolveText trims and validates raw text input, passing it through unchanged.
func (r *Resolver) ResolveText(_ context.Context, text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < MinTextChars {
		return "", fmt.Errorf("%w: %d chars (minimum %d)", ErrInputTooShort, len(trimmed), MinTextChars)
	}
	return trimmed, nil
}

// joinSegments concatenates caption segments with single spaces and
// collapses any internal whitespace runs.
func joinSegments(segments []string) string {
	joined := strings.Join(segments, " ")
	return strings.Join(strings.Fields(joined), " ")
}
