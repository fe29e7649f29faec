package validators

import (
	"strings"

	"github.com/jviciana84/dealerops-backend/internal/vehicles"
)

// SanitizeString trims surrounding whitespace and caps the value at maxLen
// runes. Truncation counts runes, not bytes, so accented names survive intact.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen <= 0 {
		return trimmed
	}
	runes := []rune(trimmed)
	if len(runes) > maxLen {
		return string(runes[:maxLen])
	}
	return trimmed
}

// NormalizePlate exposes the canonical plate form to request validation so
// the `plate` tag and the services compare the same value.
func NormalizePlate(plate string) string {
	return vehicles.NormalizePlate(plate)
}
