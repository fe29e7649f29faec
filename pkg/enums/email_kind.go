package enums

// EmailKind names the workflow emails this service sends.
type EmailKind string

const (
	EmailKindIncentiveCreated    EmailKind = "incentive_created"
	EmailKindCustodyConfirmation EmailKind = "custody_confirmation"
	EmailKindExtornoConfirmation EmailKind = "extorno_confirmation"
)

func (e EmailKind) String() string {
	return string(e)
}
