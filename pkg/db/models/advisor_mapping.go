package models

import (
	"time"

	"github.com/google/uuid"
)

// AdvisorMapping binds a user identity to the free-text advisor alias used
// on incentive rows. The alias column on incentives is not a foreign key;
// this table is the explicit resolution path.
type AdvisorMapping struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	ProfileName  string    `gorm:"column:profile_name"`
	AdvisorAlias string    `gorm:"column:advisor_alias;not null"`
	Email        string    `gorm:"column:email;not null;index"`
	Active       bool      `gorm:"column:active;not null;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (AdvisorMapping) TableName() string {
	return "user_advisor_mappings"
}
