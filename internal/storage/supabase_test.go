package storage_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/contentforge/contentforge/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupabaseStorage_UploadAndDownload(t *testing.T) {
	objects := map[string][]byte{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))

		switch r.Method {
		case http.MethodPost:
			assert.Equal(t, "audio/mpeg", r.Header.Get("Content-Type"))
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			objects[r.URL.Path] = body
			w.WriteHeader(http.StatusCreated)
		case http.MethodGet:
			data, ok := objects[r.URL.Path]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.Write(data)
		}
	}))
	defer srv.Close()

	s := storage.NewSupabaseStorage(srv.URL, "service-key", "audio-uploads", 5*time.Second)

	payload := []byte{0x49, 0x44, 0x33}
	require.NoError(t, s.Upload(context.Background(), "job-1/episode.mp3", payload, "audio/mpeg"))

	got, err := s.Download(context.Background(), "job-1/episode.mp3")
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	assert.Contains(t, objects, "/storage/v1/object/audio-uploads/job-1/episode.mp3")
}

func TestSupabaseStorage_UploadRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bucket quota exceeded", http.StatusForbidden)
	}))
	defer srv.Close()

	s := storage.NewSupabaseStorage(srv.URL, "service-key", "audio-uploads", 5*time.Second)
	err := s.Upload(context.Background(), "job-1/episode.mp3", []byte{0x01}, "audio/mpeg")
	require.ErrorIs(t, err, storage.ErrUploadFailed)
	assert.ErrorContains(t, err, "403")
}

func TestSupabaseStorage_DownloadMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	s := storage.NewSupabaseStorage(srv.URL, "service-key", "audio-uploads", 5*time.Second)
	_, err := s.Download(context.Background(), "job-1/missing.mp3")
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	m := storage.NewMemoryStore()

	require.NoError(t, m.Upload(context.Background(), "k", []byte("v"), "audio/mpeg"))
	got, err := m.Download(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	_, err = m.Download(context.Background(), "other")
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)
}
