package enums

// MovementStatus is the display status of a custody movement. Only pending,
// confirmed and rejected exist in storage; auto_accepted is derived from the
// confirmation deadline at read time and never persisted.
type MovementStatus string

const (
	MovementStatusPending      MovementStatus = "pending"
	MovementStatusConfirmed    MovementStatus = "confirmed"
	MovementStatusRejected     MovementStatus = "rejected"
	MovementStatusAutoAccepted MovementStatus = "auto_accepted"
)

func (m MovementStatus) String() string {
	return string(m)
}

// IsResolved reports whether the movement no longer accepts transitions.
func (m MovementStatus) IsResolved() bool {
	return m != MovementStatusPending
}
