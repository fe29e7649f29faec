package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/jviciana84/dealerops-backend/pkg/enums"
)

// KeyMovement logs one custody transfer attempt for a physical key. A nil
// FromUserID or ToUserID stands for the dealership itself. Confirmed and
// Rejected are mutually exclusive; both false means pending.
type KeyMovement struct {
	ID                   uuid.UUID     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VehicleID            uuid.UUID     `gorm:"column:vehicle_id;type:uuid;not null"`
	KeyType              enums.KeyType `gorm:"column:key_type;not null"`
	FromUserID           *uuid.UUID    `gorm:"column:from_user_id;type:uuid"`
	ToUserID             *uuid.UUID    `gorm:"column:to_user_id;type:uuid"`
	Reason               string        `gorm:"column:reason"`
	Confirmed            bool          `gorm:"column:confirmed;not null;default:false"`
	Rejected             bool          `gorm:"column:rejected;not null;default:false"`
	ConfirmationDeadline *time.Time    `gorm:"column:confirmation_deadline"`
	ConfirmedAt          *time.Time    `gorm:"column:confirmed_at"`
	RejectedAt           *time.Time    `gorm:"column:rejected_at"`
	Notes                *string       `gorm:"column:notes"`
	CreatedAt            time.Time     `gorm:"column:created_at;autoCreateTime"`
}

func (KeyMovement) TableName() string {
	return "key_movements"
}

// DocumentMovement mirrors KeyMovement for vehicle documents.
type DocumentMovement struct {
	ID                   uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VehicleID            uuid.UUID          `gorm:"column:vehicle_id;type:uuid;not null"`
	DocumentType         enums.DocumentType `gorm:"column:document_type;not null"`
	FromUserID           *uuid.UUID         `gorm:"column:from_user_id;type:uuid"`
	ToUserID             *uuid.UUID         `gorm:"column:to_user_id;type:uuid"`
	Reason               string             `gorm:"column:reason"`
	Confirmed            bool               `gorm:"column:confirmed;not null;default:false"`
	Rejected             bool               `gorm:"column:rejected;not null;default:false"`
	ConfirmationDeadline *time.Time         `gorm:"column:confirmation_deadline"`
	ConfirmedAt          *time.Time         `gorm:"column:confirmed_at"`
	RejectedAt           *time.Time         `gorm:"column:rejected_at"`
	Notes                *string            `gorm:"column:notes"`
	CreatedAt            time.Time          `gorm:"column:created_at;autoCreateTime"`
}

func (DocumentMovement) TableName() string {
	return "document_movements"
}
