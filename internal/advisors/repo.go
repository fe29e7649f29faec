package advisors

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jviciana84/dealerops-backend/pkg/db/models"
)

// GormRepository reads alias data from profiles and user_advisor_mappings.
type GormRepository struct {
	db *gorm.DB
}

// NewRepository constructs the advisors repository.
func NewRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// ProfileAlias returns the alias on the user's profile, or "" when unset.
func (r *GormRepository) ProfileAlias(ctx context.Context, userID uuid.UUID) (string, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Select("alias").First(&profile, "id = ?", userID).Error; err != nil {
		return "", err
	}
	if profile.Alias == nil {
		return "", nil
	}
	return *profile.Alias, nil
}

// MappingAliasByUser returns the active mapping for the user id, or "".
func (r *GormRepository) MappingAliasByUser(ctx context.Context, userID uuid.UUID) (string, error) {
	var mapping models.AdvisorMapping
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND active = ?", userID, true).
		Order("created_at DESC").
		First(&mapping).Error
	if err != nil {
		return "", err
	}
	return mapping.AdvisorAlias, nil
}

// MappingAliasByEmail returns the active mapping for the email, or "".
func (r *GormRepository) MappingAliasByEmail(ctx context.Context, email string) (string, error) {
	var mapping models.AdvisorMapping
	err := r.db.WithContext(ctx).
		Where("email = ? AND active = ?", email, true).
		Order("created_at DESC").
		First(&mapping).Error
	if err != nil {
		return "", err
	}
	return mapping.AdvisorAlias, nil
}
