// Package custody tracks who holds each vehicle key and document.
package custody

import (
	"time"

	"github.com/jviciana84/dealerops-backend/pkg/enums"
)

// DeriveStatus is the single source of truth for a movement's display
// status. auto_accepted is derived from an expired deadline and is never
// persisted; the row keeps confirmed=false and rejected=false.
func DeriveStatus(confirmed, rejected bool, deadline *time.Time, now time.Time) enums.MovementStatus {
	switch {
	case rejected:
		return enums.MovementStatusRejected
	case confirmed:
		return enums.MovementStatusConfirmed
	case deadline != nil && deadline.Before(now):
		return enums.MovementStatusAutoAccepted
	default:
		return enums.MovementStatusPending
	}
}
