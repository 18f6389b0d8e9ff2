package industry

import (
	"fmt"
	"math"
)

// Modifier is a set of multiplicative factors applied to base material quantity (M),
// time (T) and cost (C). Factors compose by per-axis multiplication.
type Modifier struct {
	M float64 `json:"m"`
	T float64 `json:"t"`
	C float64 `json:"c"`
}

// NeutralModifier leaves all quantities unchanged
func NeutralModifier() Modifier {
	return Modifier{M: 1, T: 1, C: 1}
}

// Compose multiplies two modifiers axis by axis
func (m Modifier) Compose(other Modifier) Modifier {
	return Modifier{M: m.M * other.M, T: m.T * other.T, C: m.C * other.C}
}

// Validate checks all factors are positive finite numbers
func (m Modifier) Validate() error {
	axes := []struct {
		name  string
		value float64
	}{{"m", m.M}, {"t", m.T}, {"c", m.C}}
	for _, axis := range axes {
		if !(axis.value > 0) || math.IsInf(axis.value, 0) {
			return fmt.Errorf("modifier factor %s must be positive, got %g", axis.name, axis.value)
		}
	}
	return nil
}

// BetterThan orders modifiers by material, then time, then cost, lower first.
// Equal modifiers are not better than each other.
func (m Modifier) BetterThan(other Modifier) bool {
	if m.M != other.M {
		return m.M < other.M
	}
	if m.T != other.T {
		return m.T < other.T
	}
	return m.C < other.C
}

func (m Modifier) String() string {
	return fmt.Sprintf("m=%.4f t=%.4f c=%.4f", m.M, m.T, m.C)
}
