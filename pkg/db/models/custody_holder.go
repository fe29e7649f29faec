package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/jviciana84/dealerops-backend/pkg/enums"
)

// VehicleKeys snapshots who currently holds each key of a vehicle. A nil
// holder with a dealership location means the key is back in the office.
type VehicleKeys struct {
	ID              uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	LicensePlate    string               `gorm:"column:license_plate;not null;uniqueIndex"`
	FirstKeyStatus  enums.HolderLocation `gorm:"column:first_key_status;not null;default:'dealership'"`
	FirstKeyHolder  *uuid.UUID           `gorm:"column:first_key_holder;type:uuid"`
	SecondKeyStatus enums.HolderLocation `gorm:"column:second_key_status;not null;default:'dealership'"`
	SecondKeyHolder *uuid.UUID           `gorm:"column:second_key_holder;type:uuid"`
	CardKeyStatus   enums.HolderLocation `gorm:"column:card_key_status;not null;default:'dealership'"`
	CardKeyHolder   *uuid.UUID           `gorm:"column:card_key_holder;type:uuid"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (VehicleKeys) TableName() string {
	return "vehicle_keys"
}

// VehicleDocuments mirrors VehicleKeys for the paper trail.
type VehicleDocuments struct {
	ID                      uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	LicensePlate            string               `gorm:"column:license_plate;not null;uniqueIndex"`
	TechnicalSheetStatus    enums.HolderLocation `gorm:"column:technical_sheet_status;not null;default:'dealership'"`
	TechnicalSheetHolder    *uuid.UUID           `gorm:"column:technical_sheet_holder;type:uuid"`
	CirculationPermitStatus enums.HolderLocation `gorm:"column:circulation_permit_status;not null;default:'dealership'"`
	CirculationPermitHolder *uuid.UUID           `gorm:"column:circulation_permit_holder;type:uuid"`
	UpdatedAt               time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (VehicleDocuments) TableName() string {
	return "vehicle_documents"
}
