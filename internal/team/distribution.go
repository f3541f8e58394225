package team

import "github.com/kalambet/teamfit/internal/disc"

// Distribution maps each style to the number of profiled members whose
// primary style it is. All four keys are always present.
type Distribution map[disc.Style]int

// NewDistribution returns a distribution with every style at zero.
func NewDistribution() Distribution {
	d := make(Distribution, len(disc.Styles))
	for _, s := range disc.Styles {
		d[s] = 0
	}
	return d
}

// Present reports whether at least one member has s as primary style.
func (d Distribution) Present(s disc.Style) bool { return d[s] > 0 }

// Distinct counts the styles with at least one member.
func (d Distribution) Distinct() int {
	n := 0
	for _, s := range disc.Styles {
		if d[s] > 0 {
			n++
		}
	}
	return n
}

// Max returns the largest single-style count.
func (d Distribution) Max() int {
	m := 0
	for _, s := range disc.Styles {
		if d[s] > m {
			m = d[s]
		}
	}
	return m
}

// Missing returns the styles with no members, in canonical order.
func (d Distribution) Missing() []disc.Style {
	var out []disc.Style
	for _, s := range disc.Styles {
		if d[s] == 0 {
			out = append(out, s)
		}
	}
	return out
}

// Clone returns an independent copy.
func (d Distribution) Clone() Distribution {
	out := make(Distribution, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}
