// Package incentives implements the payout ledger for delivered vehicles.
package incentives

import (
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	// Fixed bonuses for financed sales and aged-stock sales.
	financedBonus = decimal.NewFromInt(50)
	agedBonus     = decimal.NewFromInt(50)
)

// CalcInputs carries everything the payout formula reads. Garantia and
// Gastos360 are pointers because nil means the cost is not known yet, which
// is different from a zero cost.
type CalcInputs struct {
	PrecioVenta      *decimal.Decimal
	PrecioCompra     *decimal.Decimal
	GastosEstructura decimal.Decimal
	Garantia         *decimal.Decimal
	Gastos360        *decimal.Decimal
	PorcentajeMargen decimal.Decimal
	ImporteMinimo    decimal.Decimal
	Financiado       bool
	Antiguedad       bool
	Otros            decimal.Decimal
}

// Breakdown is the computed payout. When Pending is true no figures are
// populated; the record is waiting for its costs.
type Breakdown struct {
	Pending        bool            `json:"pending"`
	MargenBruto    decimal.Decimal `json:"margen_bruto"`
	MargenNeto     decimal.Decimal `json:"margen_neto"`
	IncentivoBase  decimal.Decimal `json:"incentivo_base"`
	AplicaMinimo   bool            `json:"aplica_minimo"`
	BonoFinanciado decimal.Decimal `json:"bono_financiado"`
	BonoAntiguedad decimal.Decimal `json:"bono_antiguedad"`
	Otros          decimal.Decimal `json:"otros"`
	Total          decimal.Decimal `json:"total"`
}

// Calculate computes the payout breakdown. A missing price counts as zero;
// a missing garantia or gastos_360 marks the record pending instead.
func Calculate(in CalcInputs) Breakdown {
	if in.Garantia == nil || in.Gastos360 == nil {
		return Breakdown{Pending: true}
	}

	venta := decimal.Zero
	if in.PrecioVenta != nil {
		venta = *in.PrecioVenta
	}
	compra := decimal.Zero
	if in.PrecioCompra != nil {
		compra = *in.PrecioCompra
	}

	bruto := venta.Sub(compra)
	neto := bruto.Sub(in.GastosEstructura).Sub(*in.Garantia).Sub(*in.Gastos360)

	base := in.ImporteMinimo
	aplicaMinimo := true
	if neto.IsPositive() {
		base = neto.Mul(in.PorcentajeMargen).Div(hundred)
		aplicaMinimo = false
	}

	out := Breakdown{
		MargenBruto:   bruto,
		MargenNeto:    neto,
		IncentivoBase: base,
		AplicaMinimo:  aplicaMinimo,
		Otros:         in.Otros,
	}
	if in.Financiado {
		out.BonoFinanciado = financedBonus
	}
	if in.Antiguedad {
		out.BonoAntiguedad = agedBonus
	}
	out.Total = base.Add(out.BonoFinanciado).Add(out.BonoAntiguedad).Add(in.Otros)
	return out
}

// Rounded returns a copy with every money figure rounded to cents. The
// formula runs at full precision; rounding happens once, where the
// breakdown leaves the service.
func (b Breakdown) Rounded() Breakdown {
	if b.Pending {
		return b
	}
	b.MargenBruto = b.MargenBruto.Round(2)
	b.MargenNeto = b.MargenNeto.Round(2)
	b.IncentivoBase = b.IncentivoBase.Round(2)
	b.BonoFinanciado = b.BonoFinanciado.Round(2)
	b.BonoAntiguedad = b.BonoAntiguedad.Round(2)
	b.Otros = b.Otros.Round(2)
	b.Total = b.Total.Round(2)
	return b
}
