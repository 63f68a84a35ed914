package maker

import (
	"errors"
	"fmt"
	"math"

	"github.com/veelahti/ostinato"
	"github.com/viterin/vek"
)

// ErrSpanTooSmall signals that a span cannot hold even the shortest two-step
// curve between the interpolation bounds. Callers branch on it explicitly;
// AccelerandoMaker falls back to spelling the span as one atomic event.
var ErrSpanTooSmall = errors.New("span too small for interpolation bounds")

// snapDenominator is the spelling grain curve samples are rounded to, in
// units of whole notes.
const snapDenominator = 1 << 10

// AccelerandoMaker fills each span with events whose durations glide from an
// interpolation's start duration to its stop duration. The interpolations
// are read cyclically, one per span; Exponent selects the blend curve: zero
// means the cosine ease, any positive value an exponential blend with that
// exponent.
type AccelerandoMaker struct {
	Interpolations []ostinato.Interpolation
	Exponent       float64
	Spelling       ostinato.Spelling
}

func (m AccelerandoMaker) Make(spans []ostinato.Duration, previous *ostinato.State) ([]*ostinato.Group, ostinato.State, error) {
	if len(m.Interpolations) == 0 {
		return nil, ostinato.State{}, fmt.Errorf("accelerando maker needs at least one interpolation")
	}
	if err := validateSpans(spans); err != nil {
		return nil, ostinato.State{}, err
	}
	prev := ostinato.State{}
	if previous != nil {
		prev = *previous
	}
	groups := make([]*ostinato.Group, len(spans))
	for i, span := range spans {
		in := m.Interpolations[(i+prev.SpansConsumed)%len(m.Interpolations)]
		group, err := m.fill(span, in)
		if err != nil {
			return nil, ostinato.State{}, err
		}
		groups[i] = group
	}
	voice := &ostinato.Voice{Groups: groups}
	total := ostinato.SumDurations(spans)
	if got := voice.Duration(); !got.Equal(total) {
		panic(fmt.Sprintf("accelerando maker produced total %v for spans totalling %v", got, total))
	}
	state := buildState(previous, len(spans), voice.GroupCount(), false, 0)
	return groups, state, nil
}

// fill produces one span's group: sampled magnitudes are snapped to the
// spelling grain and the last leaf's multiplier is recomputed from the
// remainder, so the snapped list still sums exactly to the span.
func (m AccelerandoMaker) fill(span ostinato.Duration, in ostinato.Interpolation) (*ostinato.Group, error) {
	samples, err := InterpolateDivide(span.Float(), in.Start.Float(), in.Stop.Float(), m.Exponent)
	if errors.Is(err, ErrSpanTooSmall) {
		leaves, err := ostinato.Spell(span, ostinato.Note, m.Spelling)
		if err != nil {
			return nil, err
		}
		return ostinato.NewGroup(ostinato.NewDuration(1, 1), leaves), nil
	}
	if err != nil {
		return nil, err
	}
	leaves := make([]ostinato.Leaf, len(samples))
	sum := ostinato.Duration{Num: 0, Den: 1}
	for i, s := range samples {
		n := int64(math.Round(s * snapDenominator))
		if n == 0 {
			n = 1
		}
		snapped := ostinato.NewDuration(n, snapDenominator)
		leaves[i] = ostinato.Leaf{
			Kind:       ostinato.Note,
			Written:    in.Written,
			Multiplier: snapped.Div(in.Written),
		}
		if i < len(leaves)-1 {
			sum = sum.Add(snapped)
		}
	}
	last := len(leaves) - 1
	leaves[last].Multiplier = span.Sub(sum).Div(in.Written)
	return ostinato.NewGroup(ostinato.NewDuration(1, 1), leaves), nil
}

// InterpolateDivide divides a total duration into magnitudes interpolated
// between the start and stop durations: starting at position zero it
// repeatedly samples the blend at position/total, appends the sample and
// advances by it, then rescales every sample by total/sum so the list sums
// to exactly total. An exponent of zero selects the cosine ease; positive
// values select the exponential blend y1*(1-t^e) + y2*t^e.
func InterpolateDivide(total, start, stop, exponent float64) ([]float64, error) {
	if total <= 0 {
		return nil, fmt.Errorf("total duration %v must be positive", total)
	}
	if start <= 0 || stop <= 0 {
		return nil, fmt.Errorf("start and stop durations must be positive, got %v and %v", start, stop)
	}
	if total < start+stop {
		return nil, ErrSpanTooSmall
	}
	var samples []float64
	partial := 0.0
	for partial < total {
		mu := partial / total
		var d float64
		if exponent <= 0 {
			d = interpolateCosine(start, stop, mu)
		} else {
			d = interpolateExponential(start, stop, mu, exponent)
		}
		samples = append(samples, d)
		partial += d
	}
	vek.MulNumber_Inplace(samples, total/vek.Sum(samples))
	return samples, nil
}

func interpolateCosine(y1, y2, mu float64) float64 {
	mu2 := (1 - math.Cos(mu*math.Pi)) / 2
	return y1*(1-mu2) + y2*mu2
}

func interpolateExponential(y1, y2, mu, exponent float64) float64 {
	return y1*(1-math.Pow(mu, exponent)) + y2*math.Pow(mu, exponent)
}

// CurveDirection compares a group's first and last actual durations: -1
// means the events shrink (a speed-up), +1 that they grow (a slow-down) and
// 0 that the span was too small for a curve. The direction is derived from
// output, never stored.
func CurveDirection(g *ostinato.Group) int {
	if len(g.Leaves) < 2 {
		return 0
	}
	first := g.Leaves[0].Duration()
	last := g.Leaves[len(g.Leaves)-1].Duration()
	return last.Cmp(first)
}
