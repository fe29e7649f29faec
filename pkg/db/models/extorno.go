package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jviciana84/dealerops-backend/pkg/enums"
)

// Extorno is a refund request. The confirmation token is minted when the
// request is processed and cleared when the payment is confirmed, so it is
// single-use by construction.
type Extorno struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Matricula         string              `gorm:"column:matricula;not null"`
	Cliente           string              `gorm:"column:cliente;not null"`
	NumeroCuenta      string              `gorm:"column:numero_cuenta;not null"`
	Concepto          string              `gorm:"column:concepto;not null"`
	Importe           decimal.Decimal     `gorm:"column:importe;type:numeric(12,2);not null"`
	Estado            enums.ExtornoStatus `gorm:"column:estado;not null;default:'pendiente'"`
	ConfirmationToken *uuid.UUID          `gorm:"column:confirmation_token;type:uuid;uniqueIndex"`
	SolicitadoPor     uuid.UUID           `gorm:"column:solicitado_por;type:uuid;not null"`
	TramitadoAt       *time.Time          `gorm:"column:tramitado_at"`
	RealizadoAt       *time.Time          `gorm:"column:realizado_at"`
	RechazadoAt       *time.Time          `gorm:"column:rechazado_at"`
	MotivoRechazo     *string             `gorm:"column:motivo_rechazo"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (Extorno) TableName() string {
	return "extornos"
}
