package weights

// Map holds the learned scoring weights: the "prior" key plus one
// "factor.<name>" multiplier per factor.
type Map map[string]float64

// Weight keys.
const (
	PriorKey     = "prior"
	factorPrefix = "factor."
)

// Defaults returns the hardcoded bootstrap weights used when no persisted
// set exists or the store is unreadable.
func Defaults() Map {
	return Map{
		PriorKey:                    0.55,
		"factor.volume_anomaly":     1.0,
		"factor.relative_strength":  1.0,
		"factor.learned_rule_edge":  1.0,
		"factor.fv_extension":       0.7,
		"factor.structure_breakout": 0.8,
		"factor.sentiment":          0.6,
	}
}

// Prior returns the prior probability weight, defaulting to 0.55.
func (m Map) Prior() float64 {
	if p, ok := m[PriorKey]; ok {
		return p
	}
	return 0.55
}

// Factor returns the multiplier for a factor name, defaulting to 1.0.
func (m Map) Factor(name string) float64 {
	if w, ok := m[factorPrefix+name]; ok {
		return w
	}
	return 1.0
}

// Clone returns an independent copy. Scoring reads a shared Map; the
// learning pass mutates only its own copy.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
