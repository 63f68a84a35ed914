// Package meter regroups already-produced event sequences against a
// hierarchical beat structure: ties are re-merged up to a caller-chosen
// boundary depth and per-beat beam groups are recomputed, while the total
// duration stays exactly what it was.
package meter

import (
	"fmt"

	"github.com/veelahti/ostinato"
)

// Meter is one span's beat hierarchy: a time signature plus its depthwise
// offset inventory. Inventory[0] holds just the span edges, Inventory[1] the
// beat boundaries, deeper levels the sub-beat boundaries; every level
// includes both edges and offsets are measured from the span start. New
// derives a best-guess hierarchy from the signature; callers with unusual
// groupings fill Inventory themselves.
type Meter struct {
	Numerator   int                   `yaml:"numerator"`
	Denominator int                   `yaml:"denominator"`
	Inventory   [][]ostinato.Duration `yaml:"inventory,omitempty"`
}

// New returns the meter for a time signature with the conventional
// hierarchy: compound signatures (6/8, 9/8, 12/8...) group their units in
// threes with the units one level deeper, simple signatures beat on every
// unit.
func New(numerator, denominator int) Meter {
	m := Meter{Numerator: numerator, Denominator: denominator}
	total := ostinato.NewDuration(int64(numerator), int64(denominator))
	zero := ostinato.Duration{Num: 0, Den: 1}
	m.Inventory = [][]ostinato.Duration{{zero, total}}
	if numerator <= 1 {
		return m
	}
	unit := ostinato.NewDuration(1, int64(denominator))
	if numerator%3 == 0 && numerator > 3 {
		beat := ostinato.NewDuration(3, int64(denominator))
		m.Inventory = append(m.Inventory, offsetsEvery(beat, numerator/3))
		m.Inventory = append(m.Inventory, offsetsEvery(unit, numerator))
	} else {
		m.Inventory = append(m.Inventory, offsetsEvery(unit, numerator))
	}
	return m
}

// FromDuration derives a default meter from a span's own duration.
func FromDuration(d ostinato.Duration) Meter {
	return New(int(d.Num), int(d.Den))
}

// Duration returns the total duration of one span of this meter.
func (m Meter) Duration() ostinato.Duration {
	return ostinato.NewDuration(int64(m.Numerator), int64(m.Denominator))
}

func (m Meter) String() string {
	return fmt.Sprintf("%d/%d", m.Numerator, m.Denominator)
}

// sameSignature reports whether two meters notate the same signature, not
// merely the same duration: 3/4 and 6/8 differ.
func (m Meter) sameSignature(other Meter) bool {
	return m.Numerator == other.Numerator && m.Denominator == other.Denominator
}

func offsetsEvery(step ostinato.Duration, count int) []ostinato.Duration {
	ret := make([]ostinato.Duration, count+1)
	ret[0] = ostinato.Duration{Num: 0, Den: 1}
	for i := 1; i <= count; i++ {
		ret[i] = ret[i-1].Add(step)
	}
	return ret
}
