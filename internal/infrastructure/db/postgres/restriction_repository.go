package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/workhive/marketplace-api/internal/core/domain"
	"github.com/workhive/marketplace-api/internal/core/ports"
)

// RestrictionRepository implements ports.RestrictionRepository with gorm.
type RestrictionRepository struct {
	db *gorm.DB
}

func NewRestrictionRepository(db *gorm.DB) *RestrictionRepository {
	return &RestrictionRepository{db: db}
}

var _ ports.RestrictionRepository = (*RestrictionRepository)(nil)

func (r *RestrictionRepository) ListByIdentity(ctx context.Context, identityID string) ([]domain.Restriction, error) {
	var rows []restrictionModel
	if err := r.db.WithContext(ctx).Where("identity_id = ?", identityID).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list restrictions: %w", err)
	}
	out := make([]domain.Restriction, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

func (r *RestrictionRepository) HasAny(ctx context.Context, identityID string, kinds []domain.RestrictionKind) (bool, error) {
	if len(kinds) == 0 {
		return false, nil
	}
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}

	var n int64
	err := r.db.WithContext(ctx).Model(&restrictionModel{}).
		Where("identity_id = ? AND kind IN ?", identityID, names).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check restrictions: %w", err)
	}
	return n > 0, nil
}

func (r *RestrictionRepository) Add(ctx context.Context, in *domain.Restriction) error {
	m := restrictionModel{}
	err := r.db.WithContext(ctx).
		Where(&restrictionModel{IdentityID: in.IdentityID, Kind: string(in.Kind)}).
		Attrs(restrictionModel{Reason: in.Reason, CreatedAt: in.CreatedAt}).
		FirstOrCreate(&m).Error
	if err != nil {
		return fmt.Errorf("add restriction: %w", err)
	}
	*in = m.toDomain()
	return nil
}

func (r *RestrictionRepository) Remove(ctx context.Context, identityID string, kind domain.RestrictionKind) error {
	res := r.db.WithContext(ctx).
		Where("identity_id = ? AND kind = ?", identityID, string(kind)).
		Delete(&restrictionModel{})
	if res.Error != nil {
		return fmt.Errorf("remove restriction: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrRestrictionNotFound
	}
	return nil
}
