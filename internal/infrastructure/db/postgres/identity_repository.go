package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/workhive/marketplace-api/internal/core/domain"
	"github.com/workhive/marketplace-api/internal/core/ports"
)

// IdentityRepository implements ports.IdentityRepository with gorm.
type IdentityRepository struct {
	db *gorm.DB
}

func NewIdentityRepository(db *gorm.DB) *IdentityRepository {
	return &IdentityRepository{db: db}
}

var _ ports.IdentityRepository = (*IdentityRepository)(nil)

func (r *IdentityRepository) FindByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *IdentityRepository) FindByID(ctx context.Context, id string) (*domain.Identity, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *IdentityRepository) findOne(ctx context.Context, query string, arg string) (*domain.Identity, error) {
	var m identityModel
	if err := r.db.WithContext(ctx).Where(query, arg).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrIdentityNotFound
		}
		return nil, fmt.Errorf("find identity: %w", err)
	}
	return m.toDomain(), nil
}

func (r *IdentityRepository) Create(ctx context.Context, identity *domain.Identity, worker *domain.WorkerProfile, business *domain.BusinessProfile) error {
	m := newIdentityModel(identity)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			if isDuplicate(err) {
				return domain.ErrIdentityExists
			}
			return fmt.Errorf("insert identity: %w", err)
		}
		return createProfiles(tx, m.ID, worker, business)
	})
	if err != nil {
		return err
	}

	identity.ID = m.ID
	identity.CreatedAt = m.CreatedAt
	identity.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *IdentityRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.update(ctx, id, map[string]interface{}{"password_hash": passwordHash})
}

func (r *IdentityRepository) SoftDelete(ctx context.Context, id string) error {
	return r.update(ctx, id, map[string]interface{}{"deleted": true})
}

func (r *IdentityRepository) SetSuspended(ctx context.Context, id string, suspended bool) error {
	return r.update(ctx, id, map[string]interface{}{"suspended": suspended})
}

func (r *IdentityRepository) update(ctx context.Context, id string, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&identityModel{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("update identity: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrIdentityNotFound
	}
	return nil
}

func (r *IdentityRepository) SwitchProfile(ctx context.Context, id string, kind domain.ProfileKind, role domain.Role, worker *domain.WorkerProfile, business *domain.BusinessProfile) (*domain.Identity, error) {
	var m identityModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if worker != nil {
			wm := workerProfileModel{IdentityID: id}
			attrs := workerProfileModel{Headline: worker.Headline, Skills: worker.Skills, HourlyRate: worker.HourlyRate, CreatedAt: worker.CreatedAt}
			if err := tx.Where(&workerProfileModel{IdentityID: id}).Attrs(attrs).FirstOrCreate(&wm).Error; err != nil {
				return fmt.Errorf("ensure worker profile: %w", err)
			}
		}
		if business != nil {
			bm := businessProfileModel{IdentityID: id}
			attrs := businessProfileModel{Name: business.Name, Slug: business.Slug, CreatedAt: business.CreatedAt}
			if err := tx.Where(&businessProfileModel{IdentityID: id}).Attrs(attrs).FirstOrCreate(&bm).Error; err != nil {
				return fmt.Errorf("ensure business profile: %w", err)
			}
		}

		res := tx.Model(&identityModel{}).Where("id = ?", id).Updates(map[string]interface{}{
			"default_profile": string(kind),
			"role":            string(role),
			"updated_at":      time.Now().UTC(),
		})
		if res.Error != nil {
			return fmt.Errorf("switch profile: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrIdentityNotFound
		}
		return tx.Where("id = ?", id).First(&m).Error
	})
	if err != nil {
		return nil, err
	}
	return m.toDomain(), nil
}

func (r *IdentityRepository) Profiles(ctx context.Context, id string) (*domain.WorkerProfile, *domain.BusinessProfile, error) {
	db := r.db.WithContext(ctx)

	var worker *domain.WorkerProfile
	var wm workerProfileModel
	switch err := db.Where("identity_id = ?", id).First(&wm).Error; {
	case err == nil:
		worker = wm.toDomain()
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil, fmt.Errorf("find worker profile: %w", err)
	}

	var business *domain.BusinessProfile
	var bm businessProfileModel
	switch err := db.Where("identity_id = ?", id).First(&bm).Error; {
	case err == nil:
		business = bm.toDomain()
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil, fmt.Errorf("find business profile: %w", err)
	}

	return worker, business, nil
}

func createProfiles(tx *gorm.DB, identityID string, worker *domain.WorkerProfile, business *domain.BusinessProfile) error {
	if worker != nil {
		wm := &workerProfileModel{
			IdentityID: identityID,
			Headline:   worker.Headline,
			Skills:     worker.Skills,
			HourlyRate: worker.HourlyRate,
			CreatedAt:  worker.CreatedAt,
		}
		if err := tx.Create(wm).Error; err != nil {
			return fmt.Errorf("insert worker profile: %w", err)
		}
	}
	if business != nil {
		bm := &businessProfileModel{
			IdentityID: identityID,
			Name:       business.Name,
			Slug:       business.Slug,
			CreatedAt:  business.CreatedAt,
		}
		if err := tx.Create(bm).Error; err != nil {
			return fmt.Errorf("insert business profile: %w", err)
		}
	}
	return nil
}
