package ostinato

import (
	"fmt"
)

// Talea is a cyclic integer pattern of event weights: positive counts sound,
// negative counts are silent. An optional one-shot preamble plays before the
// cycle and optional one-shot end counts replace the tail of the final span.
// The denominator fixes the unit each count is measured in and must be a
// power of two. A Talea is never mutated in place; Advance returns a new one.
type Talea struct {
	Counts      []int `yaml:"counts,flow"`
	Denominator int   `yaml:"denominator"`
	Preamble    []int `yaml:"preamble,flow,omitempty"`
	EndCounts   []int `yaml:"end_counts,flow,omitempty"`
}

// NewTalea validates and returns a talea. The denominator must be a power of
// two and counts must be non-empty.
func NewTalea(counts []int, denominator int, preamble, endCounts []int) (Talea, error) {
	if len(counts) == 0 {
		return Talea{}, fmt.Errorf("talea counts must not be empty")
	}
	if !isPowerOfTwo(int64(denominator)) {
		return Talea{}, fmt.Errorf("talea denominator %d must be an integer power of 2", denominator)
	}
	t := Talea{
		Counts:      append([]int(nil), counts...),
		Denominator: denominator,
	}
	if len(preamble) > 0 {
		t.Preamble = append([]int(nil), preamble...)
	}
	if len(endCounts) > 0 {
		t.EndCounts = append([]int(nil), endCounts...)
	}
	return t, nil
}

// Copy makes a deep copy of a Talea.
func (t Talea) Copy() Talea {
	ret := Talea{
		Counts:      append([]int(nil), t.Counts...),
		Denominator: t.Denominator,
	}
	if len(t.Preamble) > 0 {
		ret.Preamble = append([]int(nil), t.Preamble...)
	}
	if len(t.EndCounts) > 0 {
		ret.EndCounts = append([]int(nil), t.EndCounts...)
	}
	return ret
}

// Len returns the number of counts, preamble excluded.
func (t Talea) Len() int {
	return len(t.Counts)
}

// Period returns the summed absolute weight of the counts. The preamble and
// end counts make no difference.
func (t Talea) Period() int {
	return weightOf(t.Counts)
}

// At returns the count at index i as a signed duration, treating the preamble
// followed by the counts as one infinitely repeating list.
func (t Talea) At(i int) Duration {
	seq := append(append([]int(nil), t.Preamble...), t.Counts...)
	n := len(seq)
	c := seq[((i%n)+n)%n]
	return NewDuration(int64(c), int64(t.Denominator))
}

// Slice returns the counts in [start, stop) as signed durations, with the
// same cyclic indexing as At.
func (t Talea) Slice(start, stop int) []Duration {
	var ret []Duration
	for i := start; i < stop; i++ {
		ret = append(ret, t.At(i))
	}
	return ret
}

// Contains reports whether the 1-based cumulative offset lands exactly on a
// count boundary. Boundaries inside the preamble are checked against the
// preamble's own cumulative weights; past the preamble the offset is reduced
// modulo the period.
func (t Talea) Contains(offset int) bool {
	if offset <= 0 {
		panic(fmt.Sprintf("offset %d must be positive", offset))
	}
	preambleWeight := 0
	if len(t.Preamble) > 0 {
		cumulative := 0
		for _, c := range t.Preamble {
			cumulative += abs(c)
			if offset == cumulative {
				return true
			}
		}
		preambleWeight = cumulative
	}
	offset -= preambleWeight
	offset = floorMod(offset, t.Period())
	cumulative := 0
	for _, c := range t.Counts[:len(t.Counts)-1] {
		if offset == cumulative {
			return true
		}
		cumulative += abs(c)
	}
	return offset == cumulative
}

// Advance returns a new talea with the given absolute weight consumed from
// the front of the preamble-plus-counts stream. Consuming the preamble
// exactly yields a talea with no preamble; consuming past it repeats the
// counts until enough weight accumulates and the remainder becomes the new
// preamble. Advancing by an exact multiple of the period also yields an
// empty preamble, never a full-cycle one.
func (t Talea) Advance(weight int) (Talea, error) {
	if weight < 0 {
		return Talea{}, fmt.Errorf("advance weight %d must be nonnegative", weight)
	}
	if weight == 0 {
		return t.Copy(), nil
	}
	preambleWeight := weightOf(t.Preamble)
	ret := t.Copy()
	switch {
	case weight < preambleWeight:
		_, remaining := splitWeights(t.Preamble, weight)
		ret.Preamble = remaining
	case weight == preambleWeight:
		ret.Preamble = nil
	default:
		weight -= preambleWeight
		extended := append([]int(nil), t.Counts...)
		for weightOf(extended) < weight {
			extended = append(extended, t.Counts...)
		}
		if weightOf(extended) == weight {
			ret.Preamble = nil
		} else {
			_, remaining := splitWeights(extended, weight)
			ret.Preamble = remaining
		}
	}
	return ret, nil
}

// weightOf sums the absolute values of the counts.
func weightOf(counts []int) int {
	ret := 0
	for _, c := range counts {
		ret += abs(c)
	}
	return ret
}

// splitWeights splits a signed count sequence at the given absolute weight,
// cutting a straddling count in two and preserving its sign. The weight must
// not exceed the total weight of the sequence.
func splitWeights(counts []int, weight int) (consumed, remaining []int) {
	for i, c := range counts {
		w := abs(c)
		if weight >= w {
			consumed = append(consumed, c)
			weight -= w
			continue
		}
		if weight > 0 {
			left, right := weight, w-weight
			if c < 0 {
				left, right = -left, -right
			}
			consumed = append(consumed, left)
			remaining = append(remaining, right)
		} else {
			remaining = append(remaining, c)
		}
		remaining = append(remaining, counts[i+1:]...)
		return consumed, remaining
	}
	return consumed, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// floorMod returns a mod m with the sign of m, matching floored division.
func floorMod(a, m int) int {
	r := a % m
	if r != 0 && (r < 0) != (m < 0) {
		r += m
	}
	return r
}
