package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Profile mirrors the user directory maintained by the hosted auth provider.
// Alias is the sales-desk name the user signs incentives with, when set.
type Profile struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	FullName  string         `gorm:"column:full_name;not null"`
	Email     string         `gorm:"column:email;not null;uniqueIndex"`
	Alias     *string        `gorm:"column:alias"`
	Roles     pq.StringArray `gorm:"column:roles;type:text[];default:ARRAY[]::text[]"`
	Active    bool           `gorm:"column:active;not null;default:true"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (Profile) TableName() string {
	return "profiles"
}

// HasRole reports whether the profile carries the given role.
func (p Profile) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}
