package postgres

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/workhive/marketplace-api/internal/core/domain"
)

type identityModel struct {
	ID             string  `gorm:"type:varchar(36);primaryKey"`
	Email          string  `gorm:"type:varchar(320);uniqueIndex;not null"`
	PasswordHash   *string `gorm:"type:varchar(100)"`
	FirstName      string  `gorm:"type:varchar(100)"`
	LastName       string  `gorm:"type:varchar(100)"`
	Verified       bool    `gorm:"not null"`
	Suspended      bool    `gorm:"not null"`
	Deleted        bool    `gorm:"not null;index"`
	Role           string  `gorm:"type:varchar(16);not null"`
	DefaultProfile string  `gorm:"type:varchar(16);not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (identityModel) TableName() string { return "identities" }

func (m *identityModel) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

func newIdentityModel(i *domain.Identity) *identityModel {
	m := &identityModel{
		ID:             i.ID,
		Email:          i.Email,
		FirstName:      i.FirstName,
		LastName:       i.LastName,
		Verified:       i.Verified,
		Suspended:      i.Suspended,
		Deleted:        i.Deleted,
		Role:           string(i.Role),
		DefaultProfile: string(i.DefaultProfile),
		CreatedAt:      i.CreatedAt,
		UpdatedAt:      i.UpdatedAt,
	}
	if i.PasswordHash != "" {
		hash := i.PasswordHash
		m.PasswordHash = &hash
	}
	return m
}

func (m *identityModel) toDomain() *domain.Identity {
	i := &domain.Identity{
		ID:             m.ID,
		Email:          m.Email,
		FirstName:      m.FirstName,
		LastName:       m.LastName,
		Verified:       m.Verified,
		Suspended:      m.Suspended,
		Deleted:        m.Deleted,
		Role:           domain.Role(m.Role),
		DefaultProfile: domain.ProfileKind(m.DefaultProfile),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	if m.PasswordHash != nil {
		i.PasswordHash = *m.PasswordHash
	}
	return i
}

type workerProfileModel struct {
	IdentityID string   `gorm:"type:varchar(36);primaryKey"`
	Headline   string   `gorm:"type:varchar(200)"`
	Skills     []string `gorm:"serializer:json"`
	HourlyRate float64
	CreatedAt  time.Time
}

func (workerProfileModel) TableName() string { return "worker_profiles" }

func (m *workerProfileModel) toDomain() *domain.WorkerProfile {
	skills := m.Skills
	if skills == nil {
		skills = []string{}
	}
	return &domain.WorkerProfile{
		IdentityID: m.IdentityID,
		Headline:   m.Headline,
		Skills:     skills,
		HourlyRate: m.HourlyRate,
		CreatedAt:  m.CreatedAt,
	}
}

type businessProfileModel struct {
	IdentityID string `gorm:"type:varchar(36);primaryKey"`
	Name       string `gorm:"type:varchar(200)"`
	Slug       string `gorm:"type:varchar(240);uniqueIndex"`
	PostedJobs int64  `gorm:"not null"`
	CreatedAt  time.Time
}

func (businessProfileModel) TableName() string { return "business_profiles" }

func (m *businessProfileModel) toDomain() *domain.BusinessProfile {
	return &domain.BusinessProfile{
		IdentityID: m.IdentityID,
		Name:       m.Name,
		Slug:       m.Slug,
		PostedJobs: m.PostedJobs,
		CreatedAt:  m.CreatedAt,
	}
}

type restrictionModel struct {
	ID         string `gorm:"type:varchar(36);primaryKey"`
	IdentityID string `gorm:"type:varchar(36);not null;uniqueIndex:idx_restriction_identity_kind"`
	Kind       string `gorm:"type:varchar(32);not null;uniqueIndex:idx_restriction_identity_kind"`
	Reason     string `gorm:"type:varchar(500)"`
	CreatedAt  time.Time
}

func (restrictionModel) TableName() string { return "restrictions" }

func (m *restrictionModel) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

func (m *restrictionModel) toDomain() domain.Restriction {
	return domain.Restriction{
		ID:         m.ID,
		IdentityID: m.IdentityID,
		Kind:       domain.RestrictionKind(m.Kind),
		Reason:     m.Reason,
		CreatedAt:  m.CreatedAt,
	}
}

type jobModel struct {
	ID          string `gorm:"type:varchar(36);primaryKey"`
	BusinessID  string `gorm:"type:varchar(36);not null;index"`
	Title       string `gorm:"type:varchar(200);not null"`
	Slug        string `gorm:"type:varchar(240);uniqueIndex"`
	Description string `gorm:"type:text"`
	Location    string `gorm:"type:varchar(200);index"`
	PayRate     float64
	Status      string `gorm:"type:varchar(16);not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (jobModel) TableName() string { return "jobs" }

func (m *jobModel) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

func newJobModel(j *domain.Job) *jobModel {
	return &jobModel{
		ID:          j.ID,
		BusinessID:  j.BusinessID,
		Title:       j.Title,
		Slug:        j.Slug,
		Description: j.Description,
		Location:    j.Location,
		PayRate:     j.PayRate,
		Status:      string(j.Status),
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}

func (m *jobModel) toDomain() *domain.Job {
	return &domain.Job{
		ID:          m.ID,
		BusinessID:  m.BusinessID,
		Title:       m.Title,
		Slug:        m.Slug,
		Description: m.Description,
		Location:    m.Location,
		PayRate:     m.PayRate,
		Status:      domain.JobStatus(m.Status),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

type applicationModel struct {
	ID          string `gorm:"type:varchar(36);primaryKey"`
	JobID       string `gorm:"type:varchar(36);not null;uniqueIndex:idx_application_job_worker"`
	WorkerID    string `gorm:"type:varchar(36);not null;uniqueIndex:idx_application_job_worker;index"`
	CoverLetter string `gorm:"type:text"`
	Status      string `gorm:"type:varchar(16);not null"`
	CreatedAt   time.Time
}

func (applicationModel) TableName() string { return "applications" }

func (m *applicationModel) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

func (m *applicationModel) toDomain() *domain.Application {
	return &domain.Application{
		ID:          m.ID,
		JobID:       m.JobID,
		WorkerID:    m.WorkerID,
		CoverLetter: m.CoverLetter,
		Status:      domain.ApplicationStatus(m.Status),
		CreatedAt:   m.CreatedAt,
	}
}
