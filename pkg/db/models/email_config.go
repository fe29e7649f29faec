package models

import (
	"time"

	"github.com/lib/pq"
)

// EmailConfig gates outbound workflow email. When disabled, sends are
// skipped and reported as such; the underlying data change still commits.
type EmailConfig struct {
	ID        int64          `gorm:"column:id;primaryKey;autoIncrement"`
	Enabled   bool           `gorm:"column:enabled;not null;default:true"`
	CC        pq.StringArray `gorm:"column:cc;type:text[];default:ARRAY[]::text[]"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (EmailConfig) TableName() string {
	return "email_config"
}
