package vehicles

import "strings"

// NormalizePlate uppercases a license plate and strips spaces and dashes.
// Every lookup, duplicate check, and stored row uses this canonical form.
func NormalizePlate(plate string) string {
	plate = strings.ToUpper(strings.TrimSpace(plate))
	plate = strings.ReplaceAll(plate, " ", "")
	return strings.ReplaceAll(plate, "-", "")
}
