package handler

import (
	"time"

	"github.com/workhive/marketplace-api/internal/core/domain"
)

// envelope wraps every successful response.
type envelope struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// errorResponse documents the error envelope rendered by the central handler.
type errorResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

type signUpRequest struct {
	Email       string `json:"email"       validate:"required,email"`
	Password    string `json:"password"    validate:"required,min=8"`
	FirstName   string `json:"firstName"   validate:"required"`
	LastName    string `json:"lastName"    validate:"required"`
	ProfileType string `json:"profileType" validate:"required,oneof=WORKER BUSINESS"`
}

type signInRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type passwordRecoveryRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type otpRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	OTP      string `json:"otp"      validate:"required,len=6,numeric"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type switchProfileRequest struct {
	ProfileType string `json:"profileType" validate:"required,oneof=WORKER BUSINESS"`
}

// sessionData carries the identity and, for mobile clients only, the tokens.
type sessionData struct {
	Identity         *domain.Identity `json:"identity"`
	AccessToken      string           `json:"accessToken,omitempty"`
	RefreshToken     string           `json:"refreshToken,omitempty"`
	AccessExpiresAt  *time.Time       `json:"accessExpiresAt,omitempty"`
	RefreshExpiresAt *time.Time       `json:"refreshExpiresAt,omitempty"`
}

type refreshData struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type verificationData struct {
	IsVerified bool `json:"isVerified"`
}

type accountData struct {
	Identity *domain.Identity        `json:"identity"`
	Worker   *domain.WorkerProfile   `json:"worker,omitempty"`
	Business *domain.BusinessProfile `json:"business,omitempty"`
}

// --- Jobs ---

type createJobRequest struct {
	Title       string  `json:"title"       validate:"required,max=120"`
	Description string  `json:"description" validate:"required,max=5000"`
	Location    string  `json:"location"    validate:"required,max=120"`
	PayRate     float64 `json:"payRate"     validate:"gt=0"`
}

type listJobsQuery struct {
	Status     string `query:"status"     validate:"omitempty,oneof=OPEN CLOSED"`
	Location   string `query:"location"   validate:"omitempty,max=120"`
	Search     string `query:"search"     validate:"omitempty,max=120"`
	BusinessID string `query:"businessId" validate:"omitempty,uuid4"`
	Page       int    `query:"page"       validate:"omitempty,gte=1"`
	Limit      int    `query:"limit"      validate:"omitempty,gte=1,max=100"`
}

type jobIDParam struct {
	ID string `param:"id" json:"-" validate:"required,uuid4"`
}

type jobStatusRequest struct {
	ID     string `param:"id"     json:"-"      validate:"required,uuid4"`
	Status string `json:"status"  validate:"required,oneof=OPEN CLOSED"`
}

type applyRequest struct {
	ID          string `param:"id"          json:"-"           validate:"required,uuid4"`
	CoverLetter string `json:"coverLetter"  validate:"max=5000"`
}

type jobPageData struct {
	Items []*domain.Job `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// --- Moderation ---

type identityIDParam struct {
	ID string `param:"id" json:"-" validate:"required,uuid4"`
}

type addRestrictionRequest struct {
	ID     string `param:"id"    json:"-"      validate:"required,uuid4"`
	Kind   string `json:"kind"   validate:"required,oneof=APPLY_JOBS POST_JOBS UPLOAD_ASSETS"`
	Reason string `json:"reason" validate:"max=500"`
}

type removeRestrictionRequest struct {
	ID   string `param:"id"   validate:"required,uuid4"`
	Kind string `param:"kind" validate:"required,oneof=APPLY_JOBS POST_JOBS UPLOAD_ASSETS"`
}

type suspensionRequest struct {
	ID        string `param:"id"        json:"-"         validate:"required,uuid4"`
	Suspended *bool  `json:"suspended"  validate:"required"`
}

type securityEventsQuery struct {
	ID    string `param:"id"    validate:"required,uuid4"`
	Limit int    `query:"limit" validate:"omitempty,gte=1,max=200"`
}

// --- Assets ---

type uploadURLRequest struct {
	Kind        string `json:"kind"        validate:"required,oneof=avatar certificate portfolio logo"`
	ContentType string `json:"contentType" validate:"required,max=100"`
}

type retrievalURLQuery struct {
	Key string `query:"key" validate:"required,max=512"`
}

type signedURLData struct {
	Key       string    `json:"key,omitempty"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}
