package incentives

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jviciana84/dealerops-backend/pkg/db/models"
)

// CreateRequest is the payload sent when a delivery is pushed to incentives.
type CreateRequest struct {
	Matricula    string     `json:"matricula" validate:"required,plate"`
	Modelo       string     `json:"modelo" validate:"required"`
	Asesor       string     `json:"asesor" validate:"required"`
	OR           string     `json:"or"`
	FechaEntrega *time.Time `json:"fecha_entrega"`
}

// UpdateRequest carries the back-office editable fields. Only non-nil
// members are written, which doubles as the mutation whitelist.
type UpdateRequest struct {
	Garantia           *decimal.Decimal `json:"garantia"`
	Gastos360          *decimal.Decimal `json:"gastos_360"`
	PrecioCompra       *decimal.Decimal `json:"precio_compra"`
	Otros              *decimal.Decimal `json:"otros"`
	OtrosObservaciones *string          `json:"otros_observaciones"`
	Antiguedad         *bool            `json:"antiguedad"`
	Financiado         *bool            `json:"financiado"`
	Tramitado          *bool            `json:"tramitado"`
}

// Empty reports whether the request would write nothing.
func (u UpdateRequest) Empty() bool {
	return u.Garantia == nil && u.Gastos360 == nil && u.PrecioCompra == nil &&
		u.Otros == nil && u.OtrosObservaciones == nil && u.Antiguedad == nil &&
		u.Financiado == nil && u.Tramitado == nil
}

// ListMode selects pending rows (a cost still unknown) or settled history.
type ListMode string

const (
	ListModePending    ListMode = "pending"
	ListModeHistorical ListMode = "historical"
)

// ListParams filters the incentives listing.
type ListParams struct {
	Mode    ListMode
	Year    int
	Month   time.Month
	Advisor string
	Limit   int
	Cursor  string
}

// Item pairs a stored row with its computed payout.
type Item struct {
	Incentive models.Incentive `json:"incentive"`
	Breakdown Breakdown        `json:"breakdown"`
}

// ListResult wraps returned rows and the cursor for the next page.
type ListResult struct {
	Items  []Item `json:"items"`
	Cursor string `json:"cursor"`
}

// Facets lists the distinct values the listing can be filtered by.
type Facets struct {
	Years    []int    `json:"years"`
	Months   []int    `json:"months"`
	Advisors []string `json:"advisors"`
}

// CreateResult reports a created row plus the email side effect outcome.
type CreateResult struct {
	Incentive    *models.Incentive `json:"incentive"`
	EmailWarning string            `json:"-"`
}

// ImportResult summarizes a bulk cost upload.
type ImportResult struct {
	Updated  int      `json:"updated"`
	Failed   int      `json:"failed"`
	Failures []string `json:"failures,omitempty"`
}

// ConfigInput is the writable shape of the payout configuration.
type ConfigInput struct {
	GastosEstructura decimal.Decimal `json:"gastos_estructura"`
	PorcentajeMargen decimal.Decimal `json:"porcentaje_margen"`
	ImporteMinimo    decimal.Decimal `json:"importe_minimo"`
}
