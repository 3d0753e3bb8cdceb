package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"
)

// videoIDPattern matches the 11-character video ID in the common YouTube
// URL shapes: watch?v=, youtu.be/, embed/, shorts/.
var videoIDPattern = regexp.MustCompile(
	`(?:youtube\.com/(?:watch\?(?:.*&)?v=|embed/|shorts/)|youtu\.be/)([A-Za-z0-9_-]{11})`)

// ExtractVideoID pulls the video ID out of a YouTube URL.
func ExtractVideoID(url string) (string, error) {
	m := videoIDPattern.FindStringSubmatch(url)
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidYouTubeURL, url)
	}
	return m[1], nil
}

// CaptionFetcher retrieves the caption track for a YouTube video.
type CaptionFetcher interface {
	FetchCaptions(ctx context.Context, videoID string) ([]string, error)
}

// HTTPCaptionFetcher fetches captions from YouTube's timedtext endpoint.
type HTTPCaptionFetcher struct {
	client  *http.Client
	baseURL string
}

const defaultTimedTextURL = "https://www.youtube.com/api/timedtext"

func NewHTTPCaptionFetcher(timeout time.Duration) *HTTPCaptionFetcher {
	return &HTTPCaptionFetcher{
		client:  &http.Client{Timeout: timeout},
		baseURL: defaultTimedTextURL,
	}
}

// NewHTTPCaptionFetcherWithBaseURL is used by tests to point at a fake server.
func NewHTTPCaptionFetcherWithBaseURL(baseURL string, timeout time.Duration) *HTTPCaptionFetcher {
	return &HTTPCaptionFetcher{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// timedTextResponse is the json3 shape of the timedtext endpoint.
type timedTextResponse struct {
	Events []struct {
		Segs []struct {
			UTF8 string `json:"utf8"`
		} `json:"segs"`
	} `json:"events"`
}

func (f *HTTPCaptionFetcher) FetchCaptions(ctx context.Context, videoID string) ([]string, error) {
	url := fmt.Sprintf("%s?v=%s&lang=en&fmt=json3", f.baseURL, videoID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build caption request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch captions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("caption fetch returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("read caption response: %w", err)
	}

	var parsed timedTextResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode caption response: %w", err)
	}

	var segments []string
	for _, ev := range parsed.Events {
		for _, seg := range ev.Segs {
			if seg.UTF8 != "" {
				segments = append(segments, seg.UTF8)
			}
		}
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("no caption segments for video %s", videoID)
	}
	return segments, nil
}

var _ CaptionFetcher = (*HTTPCaptionFetcher)(nil)
