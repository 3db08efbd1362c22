package ports

import (
	"context"

	"github.com/workhive/marketplace-api/internal/core/domain"
)

// CreateJobInput is a validated job posting.
type CreateJobInput struct {
	BusinessID  string
	Title       string
	Description string
	Location    string
	PayRate     float64
}

// JobPage is one page of a job listing.
type JobPage struct {
	Items []*domain.Job
	Total int64
	Page  int
	Limit int
}

type JobService interface {
	Create(ctx context.Context, in CreateJobInput) (*domain.Job, error)
	Get(ctx context.Context, id string) (*domain.Job, error)
	List(ctx context.Context, filter JobFilter) (*JobPage, error)
	SetStatus(ctx context.Context, ownerID, jobID string, status domain.JobStatus) (*domain.Job, error)

	Apply(ctx context.Context, workerID, jobID, coverLetter string) (*domain.Application, error)
	ListApplications(ctx context.Context, ownerID, jobID string) ([]*domain.Application, error)
	MyApplications(ctx context.Context, workerID string) ([]*domain.Application, error)
}
