package transcript_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/contentforge/contentforge/internal/transcript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{"watch URL", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"watch URL with extra params", "https://www.youtube.com/watch?t=42&v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"short URL", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"embed URL", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"shorts URL", "https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"no video ID", "https://www.youtube.com/feed/subscriptions", "", true},
		{"different site", "https://vimeo.com/123456", "", true},
		{"not a URL", "dQw4w9WgXcQ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := transcript.ExtractVideoID(tt.url)
			if tt.wantErr {
				assert.ErrorIs(t, err, transcript.ErrInvalidYouTubeURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHTTPCaptionFetcher_ParsesTimedText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "dQw4w9WgXcQ", r.URL.Query().Get("v"))
		assert.Equal(t, "json3", r.URL.Query().Get("fmt"))
		fmt.Fprint(w, `{"events":[
			{"segs":[{"utf8":"never gonna"},{"utf8":" give you up"}]},
			{"segs":[{"utf8":"never gonna let you down"}]},
			{"segs":[{"utf8":""}]}
		]}`)
	}))
	defer srv.Close()

	fetcher := transcript.NewHTTPCaptionFetcherWithBaseURL(srv.URL, 5*time.Second)
	segments, err := fetcher.FetchCaptions(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, []string{"never gonna", " give you up", "never gonna let you down"}, segments)
}

func TestHTTPCaptionFetcher_EmptyTrack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"events":[]}`)
	}))
	defer srv.Close()

	fetcher := transcript.NewHTTPCaptionFetcherWithBaseURL(srv.URL, 5*time.Second)
	_, err := fetcher.FetchCaptions(context.Background(), "dQw4w9WgXcQ")
	assert.Error(t, err)
}

func TestHTTPCaptionFetcher_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	fetcher := transcript.NewHTTPCaptionFetcherWithBaseURL(srv.URL, 5*time.Second)
	_, err := fetcher.FetchCaptions(context.Background(), "dQw4w9WgXcQ")
	assert.ErrorContains(t, err, "status 404")
}
