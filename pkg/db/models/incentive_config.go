package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// IncentiveConfig is the single-row configuration snapshotted into every
// incentive at creation time. A missing row blocks incentive creation.
type IncentiveConfig struct {
	ID               int64           `gorm:"column:id;primaryKey;autoIncrement"`
	GastosEstructura decimal.Decimal `gorm:"column:gastos_estructura;type:numeric(12,2);not null"`
	PorcentajeMargen decimal.Decimal `gorm:"column:porcentaje_margen;type:numeric(5,2);not null"`
	ImporteMinimo    decimal.Decimal `gorm:"column:importe_minimo;type:numeric(12,2);not null"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (IncentiveConfig) TableName() string {
	return "incentivos_config"
}
