package incentives

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jviciana84/dealerops-backend/internal/vehicles"
	"github.com/jviciana84/dealerops-backend/pkg/enums"
)

const (
	manufacturerWarrantyMonths = 36
	carResaleWarrantyMonths    = 24
	motoResaleWarrantyMonths   = 12
)

// ClassifyWarranty decides the garantia value at creation time. It returns
// zero (manufacturer covers it) when the resale warranty we must give still
// ends inside the manufacturer's 36 month window, and nil when it does not
// or when either date is missing, leaving the cost pending.
func ClassifyWarranty(deliveryDate, registrationDate *time.Time, model string) *decimal.Decimal {
	if deliveryDate == nil || registrationDate == nil {
		return nil
	}

	resaleMonths := carResaleWarrantyMonths
	if vehicles.ClassifyModel(model) == enums.VehicleTypeMotorcycle {
		resaleMonths = motoResaleWarrantyMonths
	}

	resaleEnd := deliveryDate.AddDate(0, resaleMonths, 0)
	manufacturerEnd := registrationDate.AddDate(0, manufacturerWarrantyMonths, 0)

	if !resaleEnd.After(manufacturerEnd) {
		zero := decimal.Zero
		return &zero
	}
	return nil
}
