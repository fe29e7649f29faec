package extornos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jviciana84/dealerops-backend/pkg/db/models"
	"github.com/jviciana84/dealerops-backend/pkg/enums"
)

// Repository persists refund requests.
type Repository interface {
	Create(ctx context.Context, extorno *models.Extorno) (*models.Extorno, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Extorno, error)
	FindByToken(ctx context.Context, token uuid.UUID) (*models.Extorno, error)
	MarkTramitado(ctx context.Context, id uuid.UUID, token uuid.UUID, at time.Time) (bool, error)
	MarkRealizado(ctx context.Context, id uuid.UUID, token uuid.UUID, at time.Time) (bool, error)
	MarkRechazado(ctx context.Context, id uuid.UUID, motivo string, at time.Time) (bool, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository constructs the extornos repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, extorno *models.Extorno) (*models.Extorno, error) {
	if extorno.ID == uuid.Nil {
		extorno.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(extorno).Error; err != nil {
		return nil, err
	}
	return extorno, nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Extorno, error) {
	var extorno models.Extorno
	if err := r.db.WithContext(ctx).First(&extorno, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &extorno, nil
}

func (r *gormRepository) FindByToken(ctx context.Context, token uuid.UUID) (*models.Extorno, error) {
	var extorno models.Extorno
	if err := r.db.WithContext(ctx).First(&extorno, "confirmation_token = ?", token).Error; err != nil {
		return nil, err
	}
	return &extorno, nil
}

// MarkTramitado moves pendiente to tramitado and stores the confirmation
// token. The state guard in the WHERE clause serializes racing callers.
func (r *gormRepository) MarkTramitado(ctx context.Context, id uuid.UUID, token uuid.UUID, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Extorno{}).
		Where("id = ? AND estado = ?", id, enums.ExtornoStatusPendiente).
		Updates(map[string]any{
			"estado":             enums.ExtornoStatusTramitado,
			"confirmation_token": token,
			"tramitado_at":       at,
			"updated_at":         at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// MarkRealizado consumes the token: the row must still be tramitado and
// carry exactly this token, and the token column is cleared in the same
// statement, so a second confirm click finds nothing to update.
func (r *gormRepository) MarkRealizado(ctx context.Context, id uuid.UUID, token uuid.UUID, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Extorno{}).
		Where("id = ? AND estado = ? AND confirmation_token = ?", id, enums.ExtornoStatusTramitado, token).
		Updates(map[string]any{
			"estado":             enums.ExtornoStatusRealizado,
			"confirmation_token": nil,
			"realizado_at":       at,
			"updated_at":         at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// MarkRechazado closes a pendiente or tramitado request and voids any
// outstanding token.
func (r *gormRepository) MarkRechazado(ctx context.Context, id uuid.UUID, motivo string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Extorno{}).
		Where("id = ? AND estado IN ?", id, []enums.ExtornoStatus{enums.ExtornoStatusPendiente, enums.ExtornoStatusTramitado}).
		Updates(map[string]any{
			"estado":             enums.ExtornoStatusRechazado,
			"confirmation_token": nil,
			"motivo_rechazo":     motivo,
			"rechazado_at":       at,
			"updated_at":         at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
