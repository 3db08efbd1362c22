package domain

import (
	"strings"
	"time"
)

// Role is the privilege level of an identity. The set is closed: authorization
// compares roles by exact membership, never by substring.
type Role string

const (
	RoleWorker     Role = "WORKER"
	RoleBusiness   Role = "BUSINESS"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r.Rank() > 0
}

// Rank orders roles by privilege. Unknown roles rank 0.
func (r Role) Rank() int {
	switch r {
	case RoleWorker, RoleBusiness:
		return 1
	case RoleAdmin:
		return 2
	case RoleSuperAdmin:
		return 3
	default:
		return 0
	}
}

// IsStaff reports whether r is an administrative role.
func (r Role) IsStaff() bool {
	return r.Rank() >= RoleAdmin.Rank()
}

// ProfileKind is which of the two profile kinds an identity acts as.
type ProfileKind string

const (
	ProfileWorker   ProfileKind = "WORKER"
	ProfileBusiness ProfileKind = "BUSINESS"
)

func (p ProfileKind) Valid() bool {
	return p == ProfileWorker || p == ProfileBusiness
}

// Role returns the self-service role that matches the profile kind.
func (p ProfileKind) Role() Role {
	if p == ProfileBusiness {
		return RoleBusiness
	}
	return RoleWorker
}

// Identity is an account record. It is never physically removed; Deleted is a
// soft flag.
type Identity struct {
	ID             string      `json:"id"`
	Email          string      `json:"email"`
	PasswordHash   string      `json:"-"`
	FirstName      string      `json:"firstName"`
	LastName       string      `json:"lastName"`
	Verified       bool        `json:"isVerified"`
	Suspended      bool        `json:"isSuspended"`
	Deleted        bool        `json:"-"`
	Role           Role        `json:"role"`
	DefaultProfile ProfileKind `json:"defaultProfile"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

// HasPassword is false for externally-authenticated accounts.
func (i *Identity) HasPassword() bool {
	return i.PasswordHash != ""
}

// Claims snapshots the identity into the claim shape carried by tokens.
func (i *Identity) Claims() Claims {
	return Claims{
		ID:             i.ID,
		Email:          i.Email,
		FirstName:      i.FirstName,
		LastName:       i.LastName,
		Role:           i.Role,
		DefaultProfile: i.DefaultProfile,
	}
}

// NormalizeEmail lower-cases and trims an address before it reaches the store.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Claims is the identity snapshot embedded in access and refresh tokens.
type Claims struct {
	ID             string      `json:"id"`
	Email          string      `json:"email"`
	FirstName      string      `json:"firstName"`
	LastName       string      `json:"lastName"`
	Role           Role        `json:"role"`
	DefaultProfile ProfileKind `json:"defaultProfile"`
}

// TokenKind distinguishes access tokens from refresh tokens.
type TokenKind string

const (
	TokenAccess  TokenKind = "access"
	TokenRefresh TokenKind = "refresh"
)

// TokenPair is what signup, signin and profile switches hand back.
type TokenPair struct {
	AccessToken      string    `json:"accessToken"`
	RefreshToken     string    `json:"refreshToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

// WorkerProfile is the worker-side sub-record of an identity.
type WorkerProfile struct {
	IdentityID string    `json:"identityId"`
	Headline   string    `json:"headline"`
	Skills     []string  `json:"skills"`
	HourlyRate float64   `json:"hourlyRate"`
	CreatedAt  time.Time `json:"createdAt"`
}

// BusinessProfile is the business-side sub-record of an identity.
type BusinessProfile struct {
	IdentityID string    `json:"identityId"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	PostedJobs int64     `json:"postedJobs"`
	CreatedAt  time.Time `json:"createdAt"`
}
