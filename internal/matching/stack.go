package matching

import (
	"fmt"
	"math"
	"sort"

	"incentra/internal/profile"
	"incentra/internal/program"
)

// Constraint reason codes recorded in StackSuggestion.ConstraintsHit.
// Applied cap tags are recorded under their wire form ("cap:max:50%").
const (
	ReasonCapexExhausted       = "capex_exhausted"
	ReasonCountryMismatch      = "country_mismatch"
	ReasonJurisdictionMismatch = "jurisdiction_mismatch"
)

// SelectedProgram is one admitted stack entry. StackValueUSD is the amount
// actually credited toward the stack after cap adjustments, which may be
// less than the program's full market value.
type SelectedProgram struct {
	Program       program.Record `json:"program"`
	StackValueUSD float64        `json:"stack_value_usd"`
}

// StackSuggestion is the allocator's output: the admitted programs in
// admission order, their combined USD value, the fraction of capex covered,
// and the ordered set of constraint reasons hit along the way.
type StackSuggestion struct {
	Selected       []SelectedProgram `json:"selected"`
	ValueUSD       float64           `json:"value_usd"`
	CoverageRatio  float64           `json:"coverage_ratio"`
	ConstraintsHit []string          `json:"constraints_hit"`
}

// stackState is the accumulator carried across candidates. Everything the
// greedy pass needs to decide on the next candidate lives here, so each
// transition is independently testable.
type stackState struct {
	totalValueUSD float64
	bannedTags    map[string]struct{}
	selectedTags  map[string]struct{}
	seenSourceIDs map[int64]struct{}
	reasons       *reasonList
}

// reasonList is an ordered set: reasons keep first-hit order and duplicates
// are dropped, so output is reproducible.
type reasonList struct {
	seen  map[string]struct{}
	order []string
}

func (r *reasonList) add(reason string) {
	if _, ok := r.seen[reason]; ok {
		return
	}
	r.seen[reason] = struct{}{}
	r.order = append(r.order, reason)
}

// SuggestStack greedily selects a budget-constrained, non-conflicting set of
// programs for the profile. Candidates are taken in score-descending order;
// equal scores keep their input order (stable sort), which decides which of
// two equal-score mutually exclusive programs wins.
func SuggestStack(p profile.Profile, programs []program.Record, fx FxRates) StackSuggestion {
	candidates := make([]program.Record, len(programs))
	copy(candidates, programs)
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].ScoreValue() > candidates[j].ScoreValue()
	})

	capexUSD := p.CapexUSD()
	state := stackState{
		bannedTags:    make(map[string]struct{}),
		selectedTags:  make(map[string]struct{}),
		seenSourceIDs: make(map[int64]struct{}),
		reasons:       &reasonList{seen: make(map[string]struct{})},
	}

	var selected []SelectedProgram
	for _, candidate := range candidates {
		if capexUSD > 0 && capexUSD-state.totalValueUSD <= 0 {
			state.reasons.add(ReasonCapexExhausted)
			break
		}

		if rejected := rejectCandidate(p, candidate, &state); rejected {
			continue
		}

		value := ProgramValueUSD(candidate, fx)
		if value <= 0 {
			continue
		}

		adjusted := applyCaps(candidate, value, capexUSD, state.totalValueUSD, state.reasons)
		if adjusted <= 0 {
			continue
		}

		admit(candidate, &state)
		selected = append(selected, SelectedProgram{Program: candidate, StackValueUSD: adjusted})
		state.totalValueUSD += adjusted

		if capexUSD > 0 && state.totalValueUSD >= capexUSD {
			state.reasons.add(ReasonCapexExhausted)
			break
		}
	}

	return StackSuggestion{
		Selected:       selected,
		ValueUSD:       state.totalValueUSD,
		CoverageRatio:  coverageRatio(state.totalValueUSD, capexUSD),
		ConstraintsHit: state.reasons.order,
	}
}

// rejectCandidate applies the hard admission filters, recording a reason for
// every rejection. It never mutates accumulator state beyond the reasons.
func rejectCandidate(p profile.Profile, candidate program.Record, state *stackState) bool {
	if candidate.CountryCode != p.CountryCode {
		state.reasons.add(ReasonCountryMismatch)
		return true
	}
	if p.Jurisdiction != "" && candidate.Jurisdiction != p.Jurisdiction {
		state.reasons.add(ReasonJurisdictionMismatch)
		return true
	}
	if candidate.SourceID != nil {
		if _, ok := state.seenSourceIDs[*candidate.SourceID]; ok {
			state.reasons.add(fmt.Sprintf("duplicate_source:%d", *candidate.SourceID))
			return true
		}
	}
	for _, tag := range candidate.Tags {
		switch tag.Kind {
		case program.TagCapability:
			if _, banned := state.bannedTags[tag.Name]; banned {
				state.reasons.add("excluded:" + tag.Name)
				return true
			}
		case program.TagExcludes:
			if _, present := state.selectedTags[tag.Name]; present {
				state.reasons.add("excluded:" + tag.Name)
				return true
			}
		}
	}
	return false
}

// applyCaps intersects the candidate's percentage caps against capex, then
// clamps to the remaining budget. Cap tags need a capex base; without one
// they are ignored.
func applyCaps(candidate program.Record, value, capexUSD, totalUSD float64, reasons *reasonList) float64 {
	adjusted := value
	if capexUSD <= 0 {
		return adjusted
	}

	remaining := capexUSD - totalUSD
	for _, tag := range candidate.Tags {
		if tag.Kind != program.TagCapPercent {
			continue
		}
		capAmount := math.Min(remaining, capexUSD*tag.Percent/100)
		if capAmount < adjusted {
			adjusted = capAmount
		}
		reasons.add(tag.String())
	}

	if adjusted > remaining {
		adjusted = remaining
	}
	return adjusted
}

// admit folds the candidate's tags and provenance into the accumulator.
func admit(candidate program.Record, state *stackState) {
	for _, tag := range candidate.Tags {
		switch tag.Kind {
		case program.TagCapability:
			state.selectedTags[tag.Name] = struct{}{}
		case program.TagExcludes:
			state.bannedTags[tag.Name] = struct{}{}
		}
	}
	if candidate.SourceID != nil {
		state.seenSourceIDs[*candidate.SourceID] = struct{}{}
	}
}

// coverageRatio reports the fraction of capex covered, always in [0,1].
// Without a capex ceiling the stack covers itself in full.
func coverageRatio(totalUSD, capexUSD float64) float64 {
	denom := capexUSD
	if denom <= 0 {
		denom = totalUSD
	}
	if denom <= 0 {
		denom = 1
	}
	return math.Min(totalUSD/denom, 1)
}
