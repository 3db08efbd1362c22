package ports

import (
	"context"

	"github.com/workhive/marketplace-api/internal/core/domain"
)

// JobFilter narrows a job listing. Zero values mean "no filter".
type JobFilter struct {
	Status     domain.JobStatus
	Location   string
	Search     string
	BusinessID string
	Page       int
	Limit      int
}

// Offset returns the number of rows to skip for the requested page.
func (f JobFilter) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// JobRepository persists jobs. FindByID returns domain.ErrJobNotFound.
type JobRepository interface {
	// Create inserts the job and increments the owning business's posted
	// jobs counter in one transaction.
	Create(ctx context.Context, job *domain.Job) error
	FindByID(ctx context.Context, id string) (*domain.Job, error)
	List(ctx context.Context, filter JobFilter) ([]*domain.Job, int64, error)
	UpdateStatus(ctx context.Context, id string, status domain.JobStatus) error
}

// ApplicationRepository persists job applications.
type ApplicationRepository interface {
	Exists(ctx context.Context, jobID, workerID string) (bool, error)
	Create(ctx context.Context, app *domain.Application) error
	ListByJob(ctx context.Context, jobID string) ([]*domain.Application, error)
	ListByWorker(ctx context.Context, workerID string) ([]*domain.Application, error)
}
