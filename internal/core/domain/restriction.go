package domain

import "time"

// RestrictionKind names a capability an identity can be forbidden to exercise.
type RestrictionKind string

const (
	RestrictApplyJobs    RestrictionKind = "APPLY_JOBS"
	RestrictPostJobs     RestrictionKind = "POST_JOBS"
	RestrictUploadAssets RestrictionKind = "UPLOAD_ASSETS"
)

func (k RestrictionKind) Valid() bool {
	switch k {
	case RestrictApplyJobs, RestrictPostJobs, RestrictUploadAssets:
		return true
	}
	return false
}

// Restriction associates an identity with a denied capability. Its lifecycle
// is independent from the identity's.
type Restriction struct {
	ID         string          `json:"id"`
	IdentityID string          `json:"identityId"`
	Kind       RestrictionKind `json:"kind"`
	Reason     string          `json:"reason,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}
