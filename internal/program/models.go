// Package program holds the incentive program catalog: the program records
// matched against applicant profiles, their funding benefits, and the parsed
// stacking tags.
package program

import (
	"time"
)

// Benefit is one funding instrument attached to a program (grant, rebate,
// loan, tax credit). Amounts are integer cents; Currency defaults to USD
// when empty.
type Benefit struct {
	Type           string  `json:"type"`
	Notes          string  `json:"notes,omitempty"`
	MinAmountCents *int64  `json:"min_amount_cents"`
	MaxAmountCents *int64  `json:"max_amount_cents"`
	Currency       *string `json:"currency"`
}

// AmountCents returns the benefit's value basis: the maximum amount when
// present, falling back to the minimum, else zero.
func (b Benefit) AmountCents() int64 {
	if b.MaxAmountCents != nil {
		return *b.MaxAmountCents
	}
	if b.MinAmountCents != nil {
		return *b.MinAmountCents
	}
	return 0
}

// CurrencyCode returns the benefit's ISO 4217 currency, defaulting to USD.
func (b Benefit) CurrencyCode() string {
	if b.Currency == nil || *b.Currency == "" {
		return "USD"
	}
	return *b.Currency
}

// Record is an incentive program. Records are read-only to the matching
// engine; tags are parsed once at construction (see ParseTags) so the
// allocator never re-parses strings.
type Record struct {
	ID            int64     `json:"id"`
	UID           string    `json:"uid,omitempty"`
	SourceID      *int64    `json:"source_id"`
	CountryCode   string    `json:"country_code"`
	Jurisdiction  string    `json:"jurisdiction_code,omitempty"`
	IndustryCodes []string  `json:"industry_codes"`
	StartDate     string    `json:"start_date,omitempty"`
	EndDate       string    `json:"end_date,omitempty"`
	UpdatedAtMs   int64     `json:"updated_at"`
	Benefits      []Benefit `json:"benefits"`
	Tags          []Tag     `json:"tags"`

	// Score is an optional precomputed relevance score set by the scorer
	// before stack selection. Nil means unscored (treated as zero).
	Score *int `json:"score,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty"`
}

// ScoreValue returns the precomputed score, or zero when unscored.
func (r Record) ScoreValue() int {
	if r.Score == nil {
		return 0
	}
	return *r.Score
}

// TagStrings renders the parsed tags back to their string form, for
// persistence and API responses.
func (r Record) TagStrings() []string {
	if len(r.Tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(r.Tags))
	for _, t := range r.Tags {
		out = append(out, t.String())
	}
	return out
}
