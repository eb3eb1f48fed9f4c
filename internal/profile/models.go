// Package profile holds applicant profiles: the businesses seeking incentive
// programs. Profiles are immutable inputs to the matching engine.
package profile

import (
	"time"

	dErrors "incentra/pkg/domain-errors"
)

// Supported country codes.
const (
	CountryUS = "US"
	CountryCA = "CA"
	CountryUK = "UK"
)

// Profile describes an applicant business. CapexCents is the applicant's
// capital-expenditure budget in integer cents; Start/EndDate are ISO 8601
// dates (no time component). All optional fields degrade to neutral
// behavior in the matching engine rather than erroring.
type Profile struct {
	ID            int64    `json:"id,omitempty"`
	Name          string   `json:"name,omitempty"`
	CountryCode   string   `json:"country_code"`
	Jurisdiction  string   `json:"jurisdiction_code,omitempty"`
	IndustryCodes []string `json:"industry_codes"`
	CapexCents    *int64   `json:"capex_cents"`
	StartDate     string   `json:"start_date,omitempty"`
	EndDate       string   `json:"end_date,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// CapexUSD returns the capex budget in dollars, or zero when unset.
func (p Profile) CapexUSD() float64 {
	if p.CapexCents == nil || *p.CapexCents <= 0 {
		return 0
	}
	return float64(*p.CapexCents) / 100
}

// Validate checks the fields enforced at the API boundary. The matching
// engine itself is total over its inputs; validation here exists so stored
// profiles are well-formed.
func (p Profile) Validate() error {
	switch p.CountryCode {
	case CountryUS, CountryCA, CountryUK:
	default:
		return dErrors.New(dErrors.CodeBadRequest, "country_code must be one of US, CA, UK")
	}
	if p.CapexCents != nil && *p.CapexCents < 0 {
		return dErrors.New(dErrors.CodeBadRequest, "capex_cents must not be negative")
	}
	return nil
}
