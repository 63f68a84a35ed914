package ostinato

import (
	"fmt"
)

// Spelling controls how an abstract duration is written out as tied leaves.
// MaxNote and MaxRest cap the written duration of a single sounding or
// silent leaf; the zero value means uncapped. IncreaseMonotonic orders the
// pieces of one tied run smallest first instead of largest first.
type Spelling struct {
	MaxNote           Duration `yaml:"max_note,omitempty"`
	MaxRest           Duration `yaml:"max_rest,omitempty"`
	IncreaseMonotonic bool     `yaml:"increase_monotonic,omitempty"`
}

// Spell writes a positive duration out as one or more concretely notatable
// leaves of the given kind whose written durations sum exactly to the input.
// Sounding pieces of one run are tied together; rests are not. The duration
// must have a power-of-two denominator.
func Spell(d Duration, kind LeafKind, s Spelling) ([]Leaf, error) {
	if d.Sign() <= 0 {
		return nil, fmt.Errorf("cannot spell nonpositive duration %v", d)
	}
	if !d.HasPowerOfTwoDenominator() {
		return nil, fmt.Errorf("cannot spell duration %v: denominator is not a power of two", d)
	}
	cap := s.MaxNote
	if kind == Rest {
		cap = s.MaxRest
	}
	var parts []Duration
	for rest := d; rest.Sign() > 0; {
		p := largestAssignable(rest, cap)
		if p.IsZero() {
			return nil, fmt.Errorf("cannot spell duration %v under maximum %v", d, cap)
		}
		parts = append(parts, p)
		rest = rest.Sub(p)
	}
	if s.IncreaseMonotonic {
		for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
			parts[i], parts[j] = parts[j], parts[i]
		}
	}
	leaves := make([]Leaf, len(parts))
	for i, p := range parts {
		leaves[i] = Leaf{Kind: kind, Written: p}
		if kind == Note && i < len(parts)-1 {
			leaves[i].Tie = true
		}
	}
	return leaves, nil
}

// largestAssignable returns the largest single-leaf duration not exceeding
// bound, and not exceeding cap when cap is set. Returns zero if none exists.
func largestAssignable(bound, cap Duration) Duration {
	if cap.Sign() > 0 && cap.Less(bound) {
		bound = cap
	}
	best := Duration{Num: 0, Den: 1}
	for den := int64(1); den <= bound.Den; den *= 2 {
		for _, num := range []int64{15, 14, 12, 8, 7, 6, 4, 3, 2, 1} {
			q := NewDuration(num, den)
			if !q.IsAssignable() {
				continue
			}
			if q.Cmp(bound) <= 0 && best.Less(q) {
				best = q
			}
		}
	}
	return best
}
