// Package storage abstracts the object store holding vault media. The
// API persists URLs only; bytes move between client and store directly
// via presigned URLs.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ObjectStore uploads media and mints presigned access URLs.
type ObjectStore interface {
	// Upload stores the object and returns its canonical URL
	Upload(ctx context.Context, key string, contentType string, body io.Reader) (string, error)

	// Presign returns a time-limited URL granting read access to the key
	Presign(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// ObjectKey builds a collision-free storage key under the owner's prefix
func ObjectKey(ownerID uint64, filename string) string {
	return fmt.Sprintf("vault/%d/%s-%s", ownerID, uuid.NewString()[:8], filename)
}

// LogStore is an ObjectStore that only records operations. Used in
// development and tests where no bucket is configured.
type LogStore struct {
	BaseURL string
	Logger  *zap.Logger
}

func NewLogStore(baseURL string, logger *zap.Logger) *LogStore {
	return &LogStore{BaseURL: baseURL, Logger: logger}
}

func (s *LogStore) Upload(ctx context.Context, key string, contentType string, body io.Reader) (string, error) {
	n, err := io.Copy(io.Discard, body)
	if err != nil {
		return "", err
	}
	s.Logger.Info("stored object",
		zap.String("key", key),
		zap.String("content_type", contentType),
		zap.Int64("bytes", n))
	return s.BaseURL + "/" + key, nil
}

func (s *LogStore) Presign(ctx context.Context, key string, ttl time.Duration) (string, error) {
	s.Logger.Debug("presigned object",
		zap.String("key", key),
		zap.Duration("ttl", ttl))
	return fmt.Sprintf("%s/%s?expires=%d", s.BaseURL, key, time.Now().Add(ttl).Unix()), nil
}
