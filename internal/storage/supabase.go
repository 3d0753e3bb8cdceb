package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// SupabaseStorage talks to the Supabase Storage HTTP API directly:
// POST/GET {base}/storage/v1/object/{bucket}/{key} with a service-role
// bearer key.
type SupabaseStorage struct {
	baseURL string
	apiKey  string
	bucket  string
	client  *http.Client
}

func NewSupabaseStorage(baseURL, apiKey, bucket string, timeout time.Duration) *SupabaseStorage {
	return &SupabaseStorage{
		baseURL: baseURL,
		apiKey:  apiKey,
		bucket:  bucket,
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *SupabaseStorage) objectURL(key string) string {
	return fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, key)
}

func (s *SupabaseStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.objectURL(key), bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: building request: %v", ErrUploadFailed, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: status %d: %s", ErrUploadFailed, resp.StatusCode, body)
	}
	return nil
}

func (s *SupabaseStorage) Download(ctx context.Context, key string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.objectURL(key), nil)
	if err != nil {
		return nil, fmt.Errorf("building download request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading object %s: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading object %s: status %d", key, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

var _ ObjectStore = (*SupabaseStorage)(nil)
