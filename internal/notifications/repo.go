package notifications

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jviciana84/dealerops-backend/pkg/db/models"
)

// Repository reads the email gate and the recipient directory.
type Repository interface {
	GetEmailConfig(ctx context.Context) (*models.EmailConfig, error)
	FindProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository constructs the notifications repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetEmailConfig(ctx context.Context) (*models.EmailConfig, error) {
	var cfg models.EmailConfig
	if err := r.db.WithContext(ctx).Order("id ASC").First(&cfg).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *gormRepository) FindProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}
