package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesVehicle is the sale record fed by the sales desk; incentives read the
// price, payment method and registration date from it by license plate.
type SalesVehicle struct {
	ID               uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	LicensePlate     string           `gorm:"column:license_plate;not null;uniqueIndex"`
	Model            string           `gorm:"column:model;not null"`
	Advisor          string           `gorm:"column:advisor"`
	Price            *decimal.Decimal `gorm:"column:price;type:numeric(12,2)"`
	PaymentMethod    string           `gorm:"column:payment_method"`
	RegistrationDate *time.Time       `gorm:"column:registration_date"`
	CreatedAt        time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (SalesVehicle) TableName() string {
	return "sales_vehicles"
}
