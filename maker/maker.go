// Package maker fills rational time spans with concretely spelled events.
// TaleaMaker reads a cyclic integer pattern, AccelerandoMaker samples a
// speed-change curve, Bind allocates spans among several makers and Stack
// runs a maker through a pipeline of edit operations. Every maker takes the
// previous call's state and returns a freshly built one, so multi-part works
// can be generated incrementally while a maker remembers its place.
package maker

import (
	"fmt"

	"github.com/veelahti/ostinato"
)

// Maker produces one group per span, plus the state a later call needs to
// resume where this one left off. The previous state may be nil for a fresh
// start; the returned state is always rebuilt, never the previous one.
type Maker interface {
	Make(spans []ostinato.Duration, previous *ostinato.State) ([]*ostinato.Group, ostinato.State, error)
}

// buildState assembles the state returned from a top-level call. The groups
// produced this call are added to the carried-over count, minus one when the
// previous call ended with a run that ties over into this call's first leaf.
func buildState(previous *ostinato.State, spansConsumed, groupsProduced int, incomplete bool, weightConsumed int) ostinato.State {
	prev := ostinato.State{}
	if previous != nil {
		prev = *previous
	}
	produced := prev.GroupsProduced + groupsProduced
	if prev.IncompleteLastGroup {
		produced--
	}
	return ostinato.State{
		SpansConsumed:       prev.SpansConsumed + spansConsumed,
		GroupsProduced:      produced,
		IncompleteLastGroup: incomplete,
		WeightConsumed:      prev.WeightConsumed + weightConsumed,
	}
}

// validateSpans rejects spans the engine cannot fill: every span must be
// positive with a power-of-two denominator, like a time signature.
func validateSpans(spans []ostinato.Duration) error {
	for i, span := range spans {
		if span.Sign() <= 0 {
			return fmt.Errorf("span %d is %v; spans must be positive", i, span)
		}
		if !span.HasPowerOfTwoDenominator() {
			return fmt.Errorf("span %d is %v; span denominators must be powers of two", i, span)
		}
	}
	return nil
}

// rotate returns the slice rotated left by n, which may be negative.
func rotate(counts []int, n int) []int {
	ln := len(counts)
	if ln == 0 {
		return nil
	}
	n = ((n % ln) + ln) % ln
	ret := make([]int, 0, ln)
	ret = append(ret, counts[n:]...)
	ret = append(ret, counts[:n]...)
	return ret
}
