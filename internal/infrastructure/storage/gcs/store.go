package gcs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/workhive/marketplace-api/internal/core/ports"
)

// Config selects the bucket and, optionally, an explicit service account key.
// Without CredentialsFile the client uses application default credentials.
type Config struct {
	Bucket          string
	CredentialsFile string
}

// urlSigner is the subset of *storage.BucketHandle the store needs.
type urlSigner interface {
	SignedURL(object string, opts *storage.SignedURLOptions) (string, error)
}

// Store generates V4 signed URLs against a Google Cloud Storage bucket.
type Store struct {
	client *storage.Client
	bucket urlSigner
	now    func() time.Time
}

// New creates a Store. Callers should treat an empty bucket as "disabled" and
// not call New at all.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("gcs: bucket is empty")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}
	return &Store{client: client, bucket: client.Bucket(cfg.Bucket), now: time.Now}, nil
}

var _ ports.ObjectStore = (*Store)(nil)

// UploadURL returns a URL that accepts a single PUT with the given content type.
func (s *Store) UploadURL(_ context.Context, key, contentType string, ttl time.Duration) (string, error) {
	url, err := s.bucket.SignedURL(key, &storage.SignedURLOptions{
		Scheme:      storage.SigningSchemeV4,
		Method:      http.MethodPut,
		ContentType: contentType,
		Expires:     s.now().Add(ttl),
	})
	if err != nil {
		return "", fmt.Errorf("sign upload url: %w", err)
	}
	return url, nil
}

// RetrievalURL returns a URL that allows GET on key until ttl elapses.
func (s *Store) RetrievalURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	url, err := s.bucket.SignedURL(key, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: s.now().Add(ttl),
	})
	if err != nil {
		return "", fmt.Errorf("sign retrieval url: %w", err)
	}
	return url, nil
}

func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
