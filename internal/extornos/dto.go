// Package extornos implements the customer refund workflow.
package extornos

import (
	"github.com/shopspring/decimal"
)

// CreateRequest opens a refund request.
type CreateRequest struct {
	Matricula    string          `json:"matricula" validate:"required,plate"`
	Cliente      string          `json:"cliente" validate:"required"`
	NumeroCuenta string          `json:"numero_cuenta" validate:"required,min=8"`
	Concepto     string          `json:"concepto" validate:"required"`
	Importe      decimal.Decimal `json:"importe"`
}

// RejectRequest carries the mandatory rejection reason.
type RejectRequest struct {
	Motivo string `json:"motivo" validate:"required"`
}
