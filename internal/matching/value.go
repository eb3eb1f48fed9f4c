package matching

import (
	"incentra/internal/program"
)

// FxRates maps ISO 4217 currency codes to their USD conversion rate.
// The table is treated as an immutable snapshot for the duration of one
// scoring or allocation call.
type FxRates map[string]float64

// Rate returns the USD rate for a currency. USD is always 1 even when the
// table omits it; unknown currencies are 0 so their benefits contribute
// nothing rather than failing valuation.
func (fx FxRates) Rate(currency string) float64 {
	if currency == "" {
		currency = "USD"
	}
	if rate, ok := fx[currency]; ok {
		return rate
	}
	if currency == "USD" {
		return 1
	}
	return 0
}

// ProgramValueUSD sums a program's benefits in USD. Each benefit contributes
// its value basis (max amount, falling back to min) converted at the
// snapshot rate; benefits in unknown currencies contribute zero and never
// abort valuation of the rest. The result is non-negative.
func ProgramValueUSD(rec program.Record, fx FxRates) float64 {
	var total float64
	for _, b := range rec.Benefits {
		dollars := float64(b.AmountCents()) / 100 * fx.Rate(b.CurrencyCode())
		if dollars > 0 {
			total += dollars
		}
	}
	return total
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
