package enums

import "fmt"

// ExtornoStatus tracks the refund workflow lifecycle.
type ExtornoStatus string

const (
	ExtornoStatusPendiente ExtornoStatus = "pendiente"
	ExtornoStatusTramitado ExtornoStatus = "tramitado"
	ExtornoStatusRealizado ExtornoStatus = "realizado"
	ExtornoStatusRechazado ExtornoStatus = "rechazado"
)

var validExtornoStatuses = []ExtornoStatus{
	ExtornoStatusPendiente,
	ExtornoStatusTramitado,
	ExtornoStatusRealizado,
	ExtornoStatusRechazado,
}

func (e ExtornoStatus) String() string {
	return string(e)
}

func (e ExtornoStatus) IsValid() bool {
	for _, candidate := range validExtornoStatuses {
		if candidate == e {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (e ExtornoStatus) IsTerminal() bool {
	return e == ExtornoStatusRealizado || e == ExtornoStatusRechazado
}

func ParseExtornoStatus(value string) (ExtornoStatus, error) {
	for _, candidate := range validExtornoStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid extorno status %q", value)
}
