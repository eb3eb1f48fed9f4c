package program

import (
	"fmt"
	"strconv"
	"strings"
)

// TagKind discriminates the stacking tag variants.
type TagKind string

const (
	// TagCapability marks a capability/category the program contributes to a
	// stack. Later candidates excluding that capability are rejected.
	TagCapability TagKind = "capability"
	// TagExcludes declares the program mutually exclusive with any admitted
	// program carrying the named capability.
	TagExcludes TagKind = "excludes"
	// TagCapPercent limits the program's admitted value to a percentage of
	// the profile's total capex.
	TagCapPercent TagKind = "cap_percent"
)

const (
	excludePrefix = "exclude:"
	capPrefix     = "cap:max:"
)

// Tag is a parsed stacking tag. Tags arrive as strings on ingested programs
// (`exclude:<name>`, `cap:max:<pct>%`, or a bare capability name) and are
// parsed exactly once; invalid tags are a construction-time error, not a
// silent runtime no-op.
type Tag struct {
	Kind    TagKind `json:"kind"`
	Name    string  `json:"name,omitempty"`
	Percent float64 `json:"percent,omitempty"`
}

// String renders the tag in its wire form.
func (t Tag) String() string {
	switch t.Kind {
	case TagExcludes:
		return excludePrefix + t.Name
	case TagCapPercent:
		return capPrefix + strconv.FormatFloat(t.Percent, 'f', -1, 64) + "%"
	default:
		return t.Name
	}
}

// ParseTag parses a single tag string.
func ParseTag(raw string) (Tag, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Tag{}, fmt.Errorf("empty tag")
	}

	if rest, ok := strings.CutPrefix(s, excludePrefix); ok {
		name := strings.TrimSpace(rest)
		if name == "" {
			return Tag{}, fmt.Errorf("exclude tag %q names no capability", raw)
		}
		return Tag{Kind: TagExcludes, Name: name}, nil
	}

	if rest, ok := strings.CutPrefix(s, capPrefix); ok {
		pctStr, ok := strings.CutSuffix(strings.TrimSpace(rest), "%")
		if !ok {
			return Tag{}, fmt.Errorf("cap tag %q missing %% suffix", raw)
		}
		pct, err := strconv.ParseFloat(pctStr, 64)
		if err != nil {
			return Tag{}, fmt.Errorf("cap tag %q has invalid percentage: %w", raw, err)
		}
		if pct <= 0 || pct > 100 {
			return Tag{}, fmt.Errorf("cap tag %q percentage out of range (0, 100]", raw)
		}
		return Tag{Kind: TagCapPercent, Percent: pct}, nil
	}

	return Tag{Kind: TagCapability, Name: s}, nil
}

// ParseTags parses a tag list, failing on the first invalid tag.
func ParseTags(raw []string) ([]Tag, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	tags := make([]Tag, 0, len(raw))
	for _, s := range raw {
		tag, err := ParseTag(s)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}
