package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/workhive/marketplace-api/internal/core/domain"
	"github.com/workhive/marketplace-api/internal/core/ports"
)

const defaultAssetURLTTL = 15 * time.Minute

// AssetKinds are the folders an identity may upload into.
var AssetKinds = []string{"avatar", "certificate", "portfolio", "logo"}

type assetService struct {
	store ports.ObjectStore
	ttl   time.Duration
	now   func() time.Time
}

// NewAssetService returns an AssetService. A nil store disables uploads and
// every call fails with domain.ErrAssetStoreDisabled.
func NewAssetService(store ports.ObjectStore, ttl time.Duration) ports.AssetService {
	if ttl <= 0 {
		ttl = defaultAssetURLTTL
	}
	return &assetService{store: store, ttl: ttl, now: time.Now}
}

// UploadURL returns a signed PUT URL for a new object under
// <identityID>/<kind>/<uuid>.
func (s *assetService) UploadURL(ctx context.Context, identityID, kind, contentType string) (*ports.SignedURL, error) {
	if s.store == nil {
		return nil, domain.ErrAssetStoreDisabled
	}
	if !validAssetKind(kind) {
		return nil, domain.E(domain.KindValidation, "kind must be one of "+strings.Join(AssetKinds, " "))
	}

	key := fmt.Sprintf("%s/%s/%s", identityID, kind, uuid.NewString())
	expiresAt := s.now().UTC().Add(s.ttl)
	url, err := s.store.UploadURL(ctx, key, contentType, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("upload url: %w", err)
	}
	return &ports.SignedURL{Key: key, URL: url, ExpiresAt: expiresAt}, nil
}

// RetrievalURL returns a signed GET URL for key. Keys belong to the identity
// named by their first segment; staff may read any key.
func (s *assetService) RetrievalURL(ctx context.Context, requester domain.Claims, key string) (*ports.SignedURL, error) {
	if s.store == nil {
		return nil, domain.ErrAssetStoreDisabled
	}
	key = strings.TrimSpace(key)
	if key == "" || strings.Contains(key, "..") || strings.HasPrefix(key, "/") {
		return nil, domain.E(domain.KindValidation, "key is invalid")
	}
	if owner, _, _ := strings.Cut(key, "/"); owner != requester.ID && !requester.Role.IsStaff() {
		return nil, domain.ErrForbidden
	}

	expiresAt := s.now().UTC().Add(s.ttl)
	url, err := s.store.RetrievalURL(ctx, key, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("retrieval url: %w", err)
	}
	return &ports.SignedURL{Key: key, URL: url, ExpiresAt: expiresAt}, nil
}

func validAssetKind(kind string) bool {
	for _, k := range AssetKinds {
		if k == kind {
			return true
		}
	}
	return false
}
