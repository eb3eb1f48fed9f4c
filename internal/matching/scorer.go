// Package matching implements the relevance scorer and the stack allocator:
// pure, deterministic computation over profiles, program records, weights,
// and an FX-rate snapshot. Nothing here performs I/O or retains state; both
// entry points are total functions over their typed inputs.
package matching

import (
	"math"
	"time"

	"incentra/internal/profile"
	"incentra/internal/program"
)

// Freshness decay bounds, in days since the program record was last updated.
const (
	freshnessFullDays = 7
	freshnessZeroDays = 180
)

// Reasons are the named sub-scores backing a relevance score, each in [0,1].
// All five are always populated, even for zero-weighted factors, so callers
// can explain a score.
type Reasons struct {
	Jurisdiction float64 `json:"jurisdiction"`
	Industry     float64 `json:"industry"`
	Timing       float64 `json:"timing"`
	Size         float64 `json:"size"`
	Freshness    float64 `json:"freshness"`
}

// ScoreResult is a program's relevance to a profile.
type ScoreResult struct {
	Score   int     `json:"score"`
	Reasons Reasons `json:"reasons"`
}

// Score computes the 0-100 relevance of a program to a profile under the
// given weights and FX snapshot. now anchors the freshness decay and is
// passed explicitly so results are reproducible.
func Score(p profile.Profile, rec program.Record, w Weights, fx FxRates, now time.Time) ScoreResult {
	reasons := Reasons{
		Jurisdiction: jurisdictionScore(p, rec),
		Industry:     industryScore(p.IndustryCodes, rec.IndustryCodes),
		Timing:       timingScore(p.StartDate, p.EndDate, rec.StartDate, rec.EndDate),
		Size:         sizeScore(p, rec, fx),
		Freshness:    freshnessScore(rec.UpdatedAtMs, now),
	}

	sum := w.Sum()
	if sum <= 0 {
		return ScoreResult{Score: 0, Reasons: reasons}
	}

	weighted := reasons.Jurisdiction*w.Jurisdiction +
		reasons.Industry*w.Industry +
		reasons.Timing*w.Timing +
		reasons.Size*w.Size +
		reasons.Freshness*w.Freshness

	return ScoreResult{
		Score:   int(math.Round(100 * weighted / sum)),
		Reasons: reasons,
	}
}

// jurisdictionScore: different countries never match. Within the same
// country, a profile without a jurisdiction preference is satisfied by the
// country alone; with a preference, an exact jurisdiction match is full
// credit and anything else is partial.
func jurisdictionScore(p profile.Profile, rec program.Record) float64 {
	if p.CountryCode != rec.CountryCode {
		return 0
	}
	if p.Jurisdiction == "" {
		return 1
	}
	if p.Jurisdiction == rec.Jurisdiction {
		return 1
	}
	return 0.5
}

// industryScore is the Jaccard overlap of the two industry-code sets.
// Two empty sets mean no constraint and score 1.
func industryScore(profileCodes, programCodes []string) float64 {
	a := toSet(profileCodes)
	b := toSet(programCodes)
	if len(a) == 0 && len(b) == 0 {
		return 1
	}

	intersection := 0
	for code := range a {
		if _, ok := b[code]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func toSet(codes []string) map[string]struct{} {
	if len(codes) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return set
}

// timingScore measures how well the program's active window overlaps the
// profile's project window. Missing or unparseable dates are open-ended.
// The overlap is normalized by the smaller of the two finite durations, so
// fully covering a short window counts the same as fully covering a long
// one; with no finite duration on either side the match is unconstrained.
func timingScore(profileStart, profileEnd, programStart, programEnd string) float64 {
	pStart := parseDateMs(profileStart, math.Inf(-1))
	pEnd := parseDateMs(profileEnd, math.Inf(1))
	gStart := parseDateMs(programStart, math.Inf(-1))
	gEnd := parseDateMs(programEnd, math.Inf(1))

	overlapStart := math.Max(pStart, gStart)
	overlapEnd := math.Min(pEnd, gEnd)
	if overlapEnd < overlapStart {
		return 0
	}

	overlap := overlapEnd - overlapStart
	if overlap <= 0 || math.IsInf(overlap, 0) || math.IsNaN(overlap) {
		return 1
	}

	denom := smallerFiniteDuration(pEnd-pStart, gEnd-gStart)
	if denom <= 0 {
		return 1
	}
	return clamp01(overlap / denom)
}

// smallerFiniteDuration returns the smaller of the finite, positive
// durations, or 0 when neither qualifies.
func smallerFiniteDuration(a, b float64) float64 {
	aOK := !math.IsInf(a, 0) && !math.IsNaN(a) && a > 0
	bOK := !math.IsInf(b, 0) && !math.IsNaN(b) && b > 0
	switch {
	case aOK && bOK:
		return math.Min(a, b)
	case aOK:
		return a
	case bOK:
		return b
	default:
		return 0
	}
}

// parseDateMs parses an ISO 8601 date to epoch milliseconds, degrading to
// the given open-ended bound when the field is missing or malformed.
func parseDateMs(date string, missing float64) float64 {
	if date == "" {
		return missing
	}
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return missing
	}
	return float64(t.UnixMilli())
}

// sizeScore rates how much of the profile's capex the program's total value
// would cover. With no capex to evaluate against, or no program value, the
// factor is neutral.
func sizeScore(p profile.Profile, rec program.Record, fx FxRates) float64 {
	capex := p.CapexUSD()
	if capex <= 0 {
		return 0.5
	}
	value := ProgramValueUSD(rec, fx)
	if value <= 0 {
		return 0.5
	}
	return clamp01(value / capex)
}

// freshnessScore decays linearly with the age of the record: full credit up
// to a week old, nothing at six months, and zero for records that never
// carried an update timestamp.
func freshnessScore(updatedAtMs int64, now time.Time) float64 {
	if updatedAtMs <= 0 {
		return 0
	}
	ageDays := float64(now.UnixMilli()-updatedAtMs) / float64(24*time.Hour/time.Millisecond)
	if ageDays <= freshnessFullDays {
		return 1
	}
	if ageDays >= freshnessZeroDays {
		return 0
	}
	return clamp01((freshnessZeroDays - ageDays) / (freshnessZeroDays - freshnessFullDays))
}
