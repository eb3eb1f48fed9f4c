package matching

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"incentra/internal/profile"
	"incentra/internal/program"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func usdBenefit(maxCents int64) program.Benefit {
	return program.Benefit{Type: "grant", MaxAmountCents: &maxCents}
}

func centsPtr(v int64) *int64 { return &v }

func TestScore_ExactMatch(t *testing.T) {
	p := profile.Profile{
		CountryCode:   "US",
		Jurisdiction:  "US-CA",
		IndustryCodes: []string{"111110"},
		CapexCents:    centsPtr(100_000),
	}
	rec := program.Record{
		CountryCode:   "US",
		Jurisdiction:  "US-CA",
		IndustryCodes: []string{"111110"},
		Benefits:      []program.Benefit{usdBenefit(100_000)},
		UpdatedAtMs:   testNow.UnixMilli(),
	}

	result := Score(p, rec, DefaultWeights(), FxRates{"USD": 1}, testNow)

	assert.GreaterOrEqual(t, result.Score, 95, "perfect alignment should score near 100")
	assert.Equal(t, 1.0, result.Reasons.Jurisdiction)
	assert.Equal(t, 1.0, result.Reasons.Industry)
	assert.Equal(t, 1.0, result.Reasons.Timing)
	assert.Equal(t, 1.0, result.Reasons.Size)
	assert.Equal(t, 1.0, result.Reasons.Freshness)
}

func TestScore_Deterministic(t *testing.T) {
	p := profile.Profile{
		CountryCode:   "CA",
		IndustryCodes: []string{"311", "322"},
		CapexCents:    centsPtr(5_000_000),
		StartDate:     "2026-01-01",
		EndDate:       "2026-12-31",
	}
	rec := program.Record{
		CountryCode:   "CA",
		Jurisdiction:  "CA-ON",
		IndustryCodes: []string{"311"},
		StartDate:     "2026-03-01",
		EndDate:       "2026-09-30",
		Benefits:      []program.Benefit{usdBenefit(2_500_000)},
		UpdatedAtMs:   testNow.AddDate(0, -1, 0).UnixMilli(),
	}

	first := Score(p, rec, DefaultWeights(), FxRates{"USD": 1}, testNow)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Score(p, rec, DefaultWeights(), FxRates{"USD": 1}, testNow))
	}
}

func TestScore_Bounds(t *testing.T) {
	profiles := []profile.Profile{
		{},
		{CountryCode: "US", IndustryCodes: []string{"111110"}},
		{CountryCode: "UK", Jurisdiction: "UK-ENG", CapexCents: centsPtr(1)},
		{CountryCode: "US", StartDate: "garbage", EndDate: "2026-01-01"},
	}
	records := []program.Record{
		{},
		{CountryCode: "US", UpdatedAtMs: -5},
		{CountryCode: "UK", Benefits: []program.Benefit{usdBenefit(1 << 40)}},
		{CountryCode: "US", StartDate: "2026-06-01", EndDate: "2026-01-01"},
	}

	for _, p := range profiles {
		for _, rec := range records {
			res := Score(p, rec, DefaultWeights(), FxRates{}, testNow)
			assert.GreaterOrEqual(t, res.Score, 0)
			assert.LessOrEqual(t, res.Score, 100)
			for _, sub := range []float64{
				res.Reasons.Jurisdiction, res.Reasons.Industry, res.Reasons.Timing,
				res.Reasons.Size, res.Reasons.Freshness,
			} {
				assert.GreaterOrEqual(t, sub, 0.0)
				assert.LessOrEqual(t, sub, 1.0)
			}
		}
	}
}

func TestScore_ZeroWeightSum(t *testing.T) {
	p := profile.Profile{CountryCode: "US"}
	rec := program.Record{CountryCode: "US", UpdatedAtMs: testNow.UnixMilli()}

	res := Score(p, rec, Weights{}, FxRates{}, testNow)

	assert.Equal(t, 0, res.Score, "zero weight sum degrades to zero, not NaN")
	assert.Equal(t, 1.0, res.Reasons.Jurisdiction, "reasons are still reported")
	assert.Equal(t, 1.0, res.Reasons.Freshness)
}

func TestJurisdictionScore(t *testing.T) {
	tests := []struct {
		name                string
		profileCountry      string
		profileJurisdiction string
		programCountry      string
		programJurisdiction string
		want                float64
	}{
		{"different country", "US", "US-CA", "CA", "US-CA", 0},
		{"different country no jurisdictions", "US", "", "UK", "", 0},
		{"same country no preference", "US", "", "US", "US-NY", 1},
		{"exact jurisdiction match", "US", "US-CA", "US", "US-CA", 1},
		{"same country different jurisdiction", "US", "US-CA", "US", "US-NY", 0.5},
		{"preference but program has none", "US", "US-CA", "US", "", 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := profile.Profile{CountryCode: tt.profileCountry, Jurisdiction: tt.profileJurisdiction}
			rec := program.Record{CountryCode: tt.programCountry, Jurisdiction: tt.programJurisdiction}
			assert.Equal(t, tt.want, jurisdictionScore(p, rec))
		})
	}
}

func TestIndustryScore(t *testing.T) {
	tests := []struct {
		name    string
		profile []string
		program []string
		want    float64
	}{
		{"both empty", nil, nil, 1},
		{"identical sets", []string{"111110", "311"}, []string{"311", "111110"}, 1},
		{"disjoint sets", []string{"111110"}, []string{"311"}, 0},
		{"half overlap", []string{"a", "b"}, []string{"b", "c"}, 1.0 / 3.0},
		{"profile empty program not", nil, []string{"311"}, 0},
		{"duplicates collapse", []string{"311", "311"}, []string{"311"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, industryScore(tt.profile, tt.program), 1e-9)
		})
	}
}

func TestTimingScore(t *testing.T) {
	tests := []struct {
		name                       string
		pStart, pEnd, gStart, gEnd string
		want                       float64
	}{
		{"all open ended", "", "", "", "", 1},
		{"no overlap", "2026-01-01", "2026-03-31", "2026-06-01", "2026-12-31", 0},
		{"program covers profile fully", "2026-03-01", "2026-06-01", "2026-01-01", "2026-12-31", 1},
		{"full coverage of shorter program window", "2025-01-01", "2025-12-31", "2025-01-01", "2025-03-31", 1},
		{"half coverage of shorter profile window", "2025-01-01", "2025-01-31", "2025-01-16", "2025-03-01", 0.5},
		{"unparseable treated as open", "not-a-date", "", "2026-01-01", "", 1},
		{"profile open program bounded inside", "", "", "2026-01-01", "2026-06-30", 1},
		{"zero length overlap window", "2026-01-01", "2026-06-01", "2026-06-01", "2026-12-31", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, timingScore(tt.pStart, tt.pEnd, tt.gStart, tt.gEnd), 1e-6)
		})
	}
}

func TestSizeScore(t *testing.T) {
	fx := FxRates{"USD": 1, "CAD": 0.75}

	t.Run("no capex is neutral", func(t *testing.T) {
		rec := program.Record{Benefits: []program.Benefit{usdBenefit(100_000)}}
		assert.Equal(t, 0.5, sizeScore(profile.Profile{}, rec, fx))
	})

	t.Run("no program value is neutral", func(t *testing.T) {
		p := profile.Profile{CapexCents: centsPtr(100_000)}
		assert.Equal(t, 0.5, sizeScore(p, program.Record{}, fx))
	})

	t.Run("full coverage scores one", func(t *testing.T) {
		p := profile.Profile{CapexCents: centsPtr(100_000)}
		rec := program.Record{Benefits: []program.Benefit{usdBenefit(100_000)}}
		assert.Equal(t, 1.0, sizeScore(p, rec, fx))
	})

	t.Run("over coverage clamps to one", func(t *testing.T) {
		p := profile.Profile{CapexCents: centsPtr(100_000)}
		rec := program.Record{Benefits: []program.Benefit{usdBenefit(900_000)}}
		assert.Equal(t, 1.0, sizeScore(p, rec, fx))
	})

	t.Run("partial coverage is proportional", func(t *testing.T) {
		p := profile.Profile{CapexCents: centsPtr(400_000)}
		rec := program.Record{Benefits: []program.Benefit{usdBenefit(100_000)}}
		assert.InDelta(t, 0.25, sizeScore(p, rec, fx), 1e-9)
	})

	t.Run("foreign currency converts", func(t *testing.T) {
		cad := "CAD"
		p := profile.Profile{CapexCents: centsPtr(100_000)}
		rec := program.Record{Benefits: []program.Benefit{
			{Type: "grant", MaxAmountCents: centsPtr(100_000), Currency: &cad},
		}}
		assert.InDelta(t, 0.75, sizeScore(p, rec, fx), 1e-9)
	})
}

func TestFreshnessScore(t *testing.T) {
	t.Run("missing timestamp scores zero", func(t *testing.T) {
		assert.Equal(t, 0.0, freshnessScore(0, testNow))
		assert.Equal(t, 0.0, freshnessScore(-1, testNow))
	})

	t.Run("recent update is full credit", func(t *testing.T) {
		assert.Equal(t, 1.0, freshnessScore(testNow.UnixMilli(), testNow))
		assert.Equal(t, 1.0, freshnessScore(testNow.AddDate(0, 0, -7).UnixMilli(), testNow))
	})

	t.Run("stale update scores zero", func(t *testing.T) {
		assert.Equal(t, 0.0, freshnessScore(testNow.AddDate(0, 0, -180).UnixMilli(), testNow))
		assert.Equal(t, 0.0, freshnessScore(testNow.AddDate(-2, 0, 0).UnixMilli(), testNow))
	})

	t.Run("linear decay in between", func(t *testing.T) {
		age93 := freshnessScore(testNow.AddDate(0, 0, -93).UnixMilli(), testNow)
		assert.InDelta(t, (180.0-93.0)/173.0, age93, 1e-9)
	})

	t.Run("monotonic in updated_at", func(t *testing.T) {
		var prev float64 = -1
		for days := 400; days >= 0; days -= 10 {
			score := freshnessScore(testNow.AddDate(0, 0, -days).UnixMilli(), testNow)
			require.GreaterOrEqual(t, score, prev,
				"fresher records must never score below staler ones (age %d days)", days)
			prev = score
		}
	})
}
