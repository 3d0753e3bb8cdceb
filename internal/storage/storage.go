// Package storage holds uploaded audio files between submission and
// worker pickup.
package storage

import (
	"context"
	"errors"
)

var (
	ErrUploadFailed   = errors.New("object upload failed")
	ErrObjectNotFound = errors.New("object not found")
)

// ObjectStore persists uploaded files under bucket-relative keys.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, error)
}
