// Package vehicles holds the sales and delivery lookups plus the model-name
// classifier the warranty rules depend on.
package vehicles

import (
	"regexp"
	"strings"

	"github.com/jviciana84/dealerops-backend/pkg/enums"
)

// Motorrad model names: a one or two letter series prefix followed by the
// displacement (R 1250 GS, F 900 R, C 400 X, CE 04, K 1600 GT, G 310 R,
// S 1000 RR, M 1000 RR).
// The M prefix needs the space: "M 1000 RR" is a motorcycle, "M440i" is not.
var motorcyclePattern = regexp.MustCompile(`^((R|F|S|K|G|C|CE)\s?\d{2,4}|M\s\d{3,4})`)

var motorcycleKeywords = []string{
	"motorrad",
	"moto",
	"scooter",
}

// ClassifyModel decides whether a model name is a car or a motorcycle.
// Anything not recognized as a motorcycle counts as a car, matching how the
// warranty window is chosen.
func ClassifyModel(model string) enums.VehicleType {
	normalized := strings.ToUpper(strings.TrimSpace(model))
	if normalized == "" {
		return enums.VehicleTypeCar
	}

	for _, keyword := range motorcycleKeywords {
		if strings.Contains(strings.ToLower(normalized), keyword) {
			return enums.VehicleTypeMotorcycle
		}
	}

	if motorcyclePattern.MatchString(normalized) {
		return enums.VehicleTypeMotorcycle
	}

	return enums.VehicleTypeCar
}
