package ostinato

// Pattern matches integer indices cyclically: index i matches when i modulo
// Period equals one of Indices. A zero Period means the total length stands
// in for it, and negative indices count from the end. The zero value matches
// nothing; see MatchAll for the match-everything pattern.
type Pattern struct {
	Indices []int `yaml:"indices,flow"`
	Period  int   `yaml:"period,omitempty"`
}

// MatchAll returns a pattern matching every index.
func MatchAll() Pattern {
	return Pattern{Indices: []int{0}, Period: 1}
}

// Matches reports whether index matches the pattern given the total number
// of indices.
func (p Pattern) Matches(index, total int) bool {
	period := p.Period
	if period == 0 {
		period = total
	}
	if period <= 0 {
		return false
	}
	i := floorMod(index, period)
	for _, idx := range p.Indices {
		if floorMod(idx, period) == i {
			return true
		}
	}
	return false
}
