package models

import (
	"time"

	"github.com/google/uuid"
)

// Delivery records the physical hand-over of a sold vehicle. Sending the
// delivery "to incentives" creates the incentive row and flips the flag.
type Delivery struct {
	ID                 uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Matricula          string     `gorm:"column:matricula;not null;uniqueIndex"`
	Modelo             string     `gorm:"column:modelo"`
	Asesor             string     `gorm:"column:asesor"`
	OR                 string     `gorm:"column:or_ref"`
	FechaEntrega       *time.Time `gorm:"column:fecha_entrega"`
	EnviadoAIncentivos bool       `gorm:"column:enviado_a_incentivos;not null;default:false"`
	CreatedAt          time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Delivery) TableName() string {
	return "entregas"
}
