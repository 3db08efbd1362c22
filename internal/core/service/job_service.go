package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/workhive/marketplace-api/internal/core/domain"
	"github.com/workhive/marketplace-api/internal/core/ports"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type jobService struct {
	jobs       ports.JobRepository
	apps       ports.ApplicationRepository
	identities ports.IdentityRepository
	log        zerolog.Logger
	now        func() time.Time
}

// NewJobService returns a JobService implementation.
func NewJobService(
	jobs ports.JobRepository,
	apps ports.ApplicationRepository,
	identities ports.IdentityRepository,
	log zerolog.Logger,
) ports.JobService {
	return &jobService{
		jobs:       jobs,
		apps:       apps,
		identities: identities,
		log:        log,
		now:        time.Now,
	}
}

func (s *jobService) Create(ctx context.Context, in ports.CreateJobInput) (*domain.Job, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.E(domain.KindValidation, "title is required")
	}
	if in.PayRate < 0 {
		return nil, domain.E(domain.KindValidation, "payRate must not be negative")
	}

	_, business, err := s.identities.Profiles(ctx, in.BusinessID)
	if err != nil {
		return nil, fmt.Errorf("create job: profiles: %w", err)
	}
	if business == nil {
		return nil, domain.ErrProfileMissing
	}

	now := s.now().UTC()
	job := &domain.Job{
		BusinessID:  in.BusinessID,
		Title:       title,
		Slug:        uniqueSlug(title),
		Description: strings.TrimSpace(in.Description),
		Location:    strings.TrimSpace(in.Location),
		PayRate:     in.PayRate,
		Status:      domain.JobOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	s.log.Info().Str("job_id", job.ID).Str("business_id", job.BusinessID).Msg("job created")
	return job, nil
}

func (s *jobService) Get(ctx context.Context, id string) (*domain.Job, error) {
	return s.jobs.FindByID(ctx, id)
}

func (s *jobService) List(ctx context.Context, filter ports.JobFilter) (*ports.JobPage, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.E(domain.KindValidation, "status must be one of OPEN CLOSED")
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	switch {
	case filter.Limit <= 0:
		filter.Limit = defaultPageLimit
	case filter.Limit > maxPageLimit:
		filter.Limit = maxPageLimit
	}

	items, total, err := s.jobs.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	if items == nil {
		items = []*domain.Job{}
	}
	return &ports.JobPage{Items: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// SetStatus toggles a job between OPEN and CLOSED. The ownership check and
// the update are separate statements.
func (s *jobService) SetStatus(ctx context.Context, ownerID, jobID string, status domain.JobStatus) (*domain.Job, error) {
	if !status.Valid() {
		return nil, domain.E(domain.KindValidation, "status must be one of OPEN CLOSED")
	}
	job, err := s.ownedJob(ctx, ownerID, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status == status {
		return job, nil
	}

	if err := s.jobs.UpdateStatus(ctx, jobID, status); err != nil {
		return nil, fmt.Errorf("set job status: %w", err)
	}
	job.Status = status
	job.UpdatedAt = s.now().UTC()
	return job, nil
}

func (s *jobService) Apply(ctx context.Context, workerID, jobID, coverLetter string) (*domain.Application, error) {
	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != domain.JobOpen {
		return nil, domain.ErrJobClosed
	}

	worker, _, err := s.identities.Profiles(ctx, workerID)
	if err != nil {
		return nil, fmt.Errorf("apply: profiles: %w", err)
	}
	if worker == nil {
		return nil, domain.ErrProfileMissing
	}

	exists, err := s.apps.Exists(ctx, jobID, workerID)
	if err != nil {
		return nil, fmt.Errorf("apply: check existing: %w", err)
	}
	if exists {
		return nil, domain.ErrAlreadyApplied
	}

	app := &domain.Application{
		JobID:       jobID,
		WorkerID:    workerID,
		CoverLetter: strings.TrimSpace(coverLetter),
		Status:      domain.ApplicationPending,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.apps.Create(ctx, app); err != nil {
		if errors.Is(err, domain.ErrAlreadyApplied) {
			return nil, err
		}
		return nil, fmt.Errorf("apply: %w", err)
	}
	return app, nil
}

func (s *jobService) ListApplications(ctx context.Context, ownerID, jobID string) ([]*domain.Application, error) {
	if _, err := s.ownedJob(ctx, ownerID, jobID); err != nil {
		return nil, err
	}
	apps, err := s.apps.ListByJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return nonNilApps(apps), nil
}

func (s *jobService) MyApplications(ctx context.Context, workerID string) ([]*domain.Application, error) {
	apps, err := s.apps.ListByWorker(ctx, workerID)
	if err != nil {
		return nil, fmt.Errorf("my applications: %w", err)
	}
	return nonNilApps(apps), nil
}

func (s *jobService) ownedJob(ctx context.Context, ownerID, jobID string) (*domain.Job, error) {
	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.BusinessID != ownerID {
		return nil, domain.ErrForbidden
	}
	return job, nil
}

func nonNilApps(apps []*domain.Application) []*domain.Application {
	if apps == nil {
		return []*domain.Application{}
	}
	return apps
}
