package ostinato

import (
	"fmt"
)

// Interpolation describes a continuous speed-change curve: produced events
// start near Start, end near Stop, and are all written as multiples of the
// fixed Written unit. Whether the curve accelerates or slows is not stored;
// it falls out of the produced durations.
type Interpolation struct {
	Start   Duration `yaml:"start"`
	Stop    Duration `yaml:"stop"`
	Written Duration `yaml:"written"`
}

// NewInterpolation validates and returns an interpolation. All three
// durations must be positive.
func NewInterpolation(start, stop, written Duration) (Interpolation, error) {
	for _, d := range []Duration{start, stop, written} {
		if d.Sign() <= 0 {
			return Interpolation{}, fmt.Errorf("interpolation durations must be positive, got %v", d)
		}
	}
	return Interpolation{Start: start, Stop: stop, Written: written}, nil
}

// Reverse swaps the start and stop durations, turning an accelerando into a
// ritardando and vice versa.
func (in Interpolation) Reverse() Interpolation {
	return Interpolation{Start: in.Stop, Stop: in.Start, Written: in.Written}
}
