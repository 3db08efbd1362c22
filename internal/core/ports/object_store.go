package ports

import (
	"context"
	"time"

	"github.com/workhive/marketplace-api/internal/core/domain"
)

// ObjectStore generates time-limited URLs against an external bucket.
type ObjectStore interface {
	UploadURL(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)
	RetrievalURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// SignedURL is a generated URL and the moment it stops working.
type SignedURL struct {
	Key       string
	URL       string
	ExpiresAt time.Time
}

type AssetService interface {
	UploadURL(ctx context.Context, identityID, kind, contentType string) (*SignedURL, error)
	// RetrievalURL signs a GET for key. Only the identity whose id prefixes
	// the key, or a staff identity, may read it.
	RetrievalURL(ctx context.Context, requester domain.Claims, key string) (*SignedURL, error)
}
