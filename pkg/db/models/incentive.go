package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Incentive is one row per vehicle sale awaiting or holding payout figures.
// Garantia and Gastos360 are three-state: nil means the cost is not yet
// known (the record is pending), zero means manufacturer-covered, and a
// positive value is a paid cost. That distinction must survive round-trips.
type Incentive struct {
	ID                 int64            `gorm:"column:id;primaryKey;autoIncrement"`
	Matricula          string           `gorm:"column:matricula;not null;uniqueIndex:idx_incentivos_matricula"`
	Modelo             string           `gorm:"column:modelo;not null"`
	Asesor             string           `gorm:"column:asesor;not null"`
	OR                 string           `gorm:"column:or_ref"`
	FechaEntrega       *time.Time       `gorm:"column:fecha_entrega"`
	PrecioVenta        *decimal.Decimal `gorm:"column:precio_venta;type:numeric(12,2)"`
	PrecioCompra       *decimal.Decimal `gorm:"column:precio_compra;type:numeric(12,2)"`
	FormaPago          string           `gorm:"column:forma_pago"`
	DiasStock          *int             `gorm:"column:dias_stock"`
	GastosEstructura   decimal.Decimal  `gorm:"column:gastos_estructura;type:numeric(12,2);not null"`
	Garantia           *decimal.Decimal `gorm:"column:garantia;type:numeric(12,2)"`
	Gastos360          *decimal.Decimal `gorm:"column:gastos_360;type:numeric(12,2)"`
	Financiado         bool             `gorm:"column:financiado;not null;default:false"`
	Antiguedad         bool             `gorm:"column:antiguedad;not null;default:false"`
	Otros              decimal.Decimal  `gorm:"column:otros;type:numeric(12,2);not null;default:0"`
	OtrosObservaciones *string          `gorm:"column:otros_observaciones"`
	ImporteMinimo      decimal.Decimal  `gorm:"column:importe_minimo;type:numeric(12,2);not null"`
	PorcentajeMargen   decimal.Decimal  `gorm:"column:porcentaje_margen_config_usado;type:numeric(5,2);not null"`
	Tramitado          bool             `gorm:"column:tramitado;not null;default:false"`
	CreatedAt          time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the historical Spanish table name.
func (Incentive) TableName() string {
	return "incentivos"
}

// IsPending reports whether a payout cannot be computed yet because a cost
// is still unknown.
func (i Incentive) IsPending() bool {
	return i.Garantia == nil || i.Gastos360 == nil
}
