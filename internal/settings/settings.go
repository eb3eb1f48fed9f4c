// Package settings resolves the matching configuration: scoring weights and
// the FX-rate table. Values live in a small key-value store; when the store
// is empty or unreachable the built-in defaults apply, so the matching
// engine always receives a usable snapshot.
package settings

import (
	"incentra/internal/matching"
)

// Store keys. Fixed identifiers, one document per concern.
const (
	KeyWeights = "matching.weights"
	KeyFxRates = "matching.fx_rates"
)

// DefaultFxRates returns the built-in FX snapshot used when no rates have
// been configured. USD is the unit currency by definition.
func DefaultFxRates() matching.FxRates {
	return matching.FxRates{
		"USD": 1,
		"CAD": 0.74,
		"GBP": 1.27,
		"EUR": 1.08,
	}
}
