package vehicles

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/jviciana84/dealerops-backend/pkg/db/models"
)

// SalesRepository looks up sale records by license plate.
type SalesRepository struct {
	db *gorm.DB
}

// NewSalesRepository constructs the sales_vehicles repository.
func NewSalesRepository(db *gorm.DB) *SalesRepository {
	return &SalesRepository{db: db}
}

// FindByPlate returns the sale record for the plate, or gorm.ErrRecordNotFound.
func (r *SalesRepository) FindByPlate(ctx context.Context, plate string) (*models.SalesVehicle, error) {
	var vehicle models.SalesVehicle
	if err := r.db.WithContext(ctx).First(&vehicle, "license_plate = ?", plate).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// DeliveryRepository reads and flags delivery rows.
type DeliveryRepository interface {
	WithTx(tx *gorm.DB) DeliveryRepository
	FindByPlate(ctx context.Context, plate string) (*models.Delivery, error)
	MarkSentToIncentives(ctx context.Context, plate string) error
}

type gormDeliveryRepository struct {
	db *gorm.DB
}

// NewDeliveryRepository constructs the entregas repository.
func NewDeliveryRepository(db *gorm.DB) DeliveryRepository {
	return &gormDeliveryRepository{db: db}
}

// WithTx returns a repository bound to the transaction.
func (r *gormDeliveryRepository) WithTx(tx *gorm.DB) DeliveryRepository {
	return &gormDeliveryRepository{db: tx}
}

// FindByPlate returns the delivery row for the plate.
func (r *gormDeliveryRepository) FindByPlate(ctx context.Context, plate string) (*models.Delivery, error) {
	var delivery models.Delivery
	if err := r.db.WithContext(ctx).First(&delivery, "matricula = ?", plate).Error; err != nil {
		return nil, err
	}
	return &delivery, nil
}

// MarkSentToIncentives flips the enviado_a_incentivos flag.
func (r *gormDeliveryRepository) MarkSentToIncentives(ctx context.Context, plate string) error {
	return r.db.WithContext(ctx).
		Model(&models.Delivery{}).
		Where("matricula = ?", plate).
		Updates(map[string]any{
			"enviado_a_incentivos": true,
			"updated_at":           time.Now().UTC(),
		}).Error
}
