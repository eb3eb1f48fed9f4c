package matching

// Weights defines the relative importance of each scoring factor. Only the
// ratios matter: the scorer normalizes by the sum, so scaling all weights is
// a no-op. A zero sum degrades to a zero score rather than dividing by zero.
type Weights struct {
	Jurisdiction float64 `json:"jurisdiction"`
	Industry     float64 `json:"industry"`
	Timing       float64 `json:"timing"`
	Size         float64 `json:"size"`
	Freshness    float64 `json:"freshness"`
}

// DefaultWeights returns the standard weight distribution.
func DefaultWeights() Weights {
	return Weights{
		Jurisdiction: 30,
		Industry:     25,
		Timing:       20,
		Size:         15,
		Freshness:    10,
	}
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Jurisdiction + w.Industry + w.Timing + w.Size + w.Freshness
}

// Valid reports whether no weight is negative. Negative weights would invert
// factor contributions and are rejected at the settings boundary.
func (w Weights) Valid() bool {
	return w.Jurisdiction >= 0 && w.Industry >= 0 && w.Timing >= 0 &&
		w.Size >= 0 && w.Freshness >= 0
}
