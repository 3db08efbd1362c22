package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/workhive/marketplace-api/internal/core/domain"
	"github.com/workhive/marketplace-api/internal/core/ports"
)

// JobRepository implements ports.JobRepository with gorm.
type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

var _ ports.JobRepository = (*JobRepository)(nil)

// Create inserts the job and bumps business_profiles.posted_jobs atomically.
// A missing business profile rolls the insert back.
func (r *JobRepository) Create(ctx context.Context, job *domain.Job) error {
	m := newJobModel(job)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return fmt.Errorf("insert job: %w", err)
		}
		res := tx.Model(&businessProfileModel{}).
			Where("identity_id = ?", job.BusinessID).
			Update("posted_jobs", gorm.Expr("posted_jobs + ?", 1))
		if res.Error != nil {
			return fmt.Errorf("increment posted jobs: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrProfileMissing
		}
		return nil
	})
	if err != nil {
		return err
	}

	job.ID = m.ID
	return nil
}

func (r *JobRepository) FindByID(ctx context.Context, id string) (*domain.Job, error) {
	var m jobModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("find job: %w", err)
	}
	return m.toDomain(), nil
}

// likeEscaper makes user input match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func (r *JobRepository) List(ctx context.Context, f ports.JobFilter) ([]*domain.Job, int64, error) {
	q := r.db.WithContext(ctx).Model(&jobModel{})
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	if f.BusinessID != "" {
		q = q.Where("business_id = ?", f.BusinessID)
	}
	if loc := strings.TrimSpace(f.Location); loc != "" {
		q = q.Where("LOWER(location) = ?", strings.ToLower(loc))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
		q = q.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, like, like)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count jobs: %w", err)
	}

	var rows []jobModel
	err := q.Order("created_at DESC").Order("id").
		Offset(f.Offset()).Limit(f.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list jobs: %w", err)
	}

	out := make([]*domain.Job, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, total, nil
}

func (r *JobRepository) UpdateStatus(ctx context.Context, id string, status domain.JobStatus) error {
	res := r.db.WithContext(ctx).Model(&jobModel{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     string(status),
		"updated_at": time.Now().UTC(),
	})
	if res.Error != nil {
		return fmt.Errorf("update job status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrJobNotFound
	}
	return nil
}

// ApplicationRepository implements ports.ApplicationRepository with gorm.
type ApplicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

var _ ports.ApplicationRepository = (*ApplicationRepository)(nil)

func (r *ApplicationRepository) Exists(ctx context.Context, jobID, workerID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&applicationModel{}).
		Where("job_id = ? AND worker_id = ?", jobID, workerID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check application: %w", err)
	}
	return n > 0, nil
}

func (r *ApplicationRepository) Create(ctx context.Context, app *domain.Application) error {
	m := &applicationModel{
		ID:          app.ID,
		JobID:       app.JobID,
		WorkerID:    app.WorkerID,
		CoverLetter: app.CoverLetter,
		Status:      string(app.Status),
		CreatedAt:   app.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isDuplicate(err) {
			return domain.ErrAlreadyApplied
		}
		return fmt.Errorf("insert application: %w", err)
	}
	app.ID = m.ID
	return nil
}

func (r *ApplicationRepository) ListByJob(ctx context.Context, jobID string) ([]*domain.Application, error) {
	return r.list(ctx, "job_id = ?", jobID)
}

func (r *ApplicationRepository) ListByWorker(ctx context.Context, workerID string) ([]*domain.Application, error) {
	return r.list(ctx, "worker_id = ?", workerID)
}

func (r *ApplicationRepository) list(ctx context.Context, query, arg string) ([]*domain.Application, error) {
	var rows []applicationModel
	if err := r.db.WithContext(ctx).Where(query, arg).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	out := make([]*domain.Application, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}
