package service

import (
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// uniqueSlug returns a URL slug for title with a short random suffix so that
// equal titles never collide.
func uniqueSlug(title string) string {
	suffix := uuid.NewString()[:8]
	base := slug.Make(title)
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}
