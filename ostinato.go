// Package ostinato turns abstract rational time spans into concretely spelled
// sounding and silent events. Spans are filled either from a repeating integer
// pattern (Talea) or from a continuous speed-change curve (Interpolation); the
// produced event tree can later be regrouped against a metrical hierarchy by
// the meter package. Everything is a plain value: generation is deterministic,
// single threaded and free of hidden state, and totals always match the input
// spans as exact rational equalities.
package ostinato

import (
	"fmt"
	"strings"
)

type (
	// LeafKind tells whether a leaf sounds or is silent.
	LeafKind int

	// Leaf is the smallest produced unit: one sounding note or silent rest
	// with a notated written duration, an optional rational multiplier
	// scaling the written duration to the actual sounding duration, and a
	// flag tying it to the next leaf. A zero Multiplier means no scaling.
	Leaf struct {
		Kind       LeafKind `yaml:"kind"`
		Written    Duration `yaml:"written"`
		Multiplier Duration `yaml:"multiplier,omitempty"`
		Tie        bool     `yaml:"tie,omitempty"`
	}

	// Group holds one span's worth of leaves, tagged with the ratio of the
	// actual span duration to the sum of the notated leaf durations. A unit
	// ratio group is plain spelled music; a non-unit ratio group is a
	// proportioned (tuplet-like) unit whose contents must not be respelled.
	Group struct {
		Ratio  Duration `yaml:"ratio"`
		Leaves []Leaf   `yaml:"leaves"`
	}

	// Beam marks a half-open range of leaf indices, counted over the
	// flattened voice, that render as one beamed group.
	Beam struct {
		Start int `yaml:"start"`
		Stop  int `yaml:"stop"`
	}

	// Voice is the score-graph container the engine writes into: the ordered
	// groups produced for each span plus the beam ranges over the flattened
	// leaves. The meter rewriter mutates a Voice in place; everything else
	// builds new values.
	Voice struct {
		Groups []*Group `yaml:"groups"`
		Beams  []Beam   `yaml:"beams,omitempty"`
	}
)

const (
	Note LeafKind = iota
	Rest
)

// Duration returns the actual duration of the leaf: the written duration
// scaled by the multiplier, if one is set.
func (l Leaf) Duration() Duration {
	if l.Multiplier.Num == 0 {
		return l.Written
	}
	return l.Written.Mul(l.Multiplier)
}

func (l Leaf) String() string {
	var sb strings.Builder
	if l.Kind == Rest {
		sb.WriteString("r")
	} else {
		sb.WriteString("c")
	}
	sb.WriteString(writtenString(l.Written))
	if l.Multiplier.Num != 0 {
		fmt.Fprintf(&sb, "*%v", l.Multiplier)
	}
	if l.Tie {
		sb.WriteString("~")
	}
	return sb.String()
}

// writtenString renders an assignable duration the way engravers write it: the
// reciprocal of the plain value followed by zero or more dots. Unassignable
// durations fall back to the raw fraction.
func writtenString(d Duration) string {
	if !d.IsAssignable() {
		return d.String()
	}
	// d = 2^a * (2^m - 1) / den; the plain value is 2^(a+m-1)/den
	n, a := d.Num, 0
	for n&1 == 0 {
		n >>= 1
		a++
	}
	m := 0
	for n > 0 {
		n >>= 1
		m++
	}
	dots := m - 1
	plain := NewDuration(int64(1)<<(a+m-1), d.Den)
	var label string
	switch {
	case plain.Den > 1:
		label = fmt.Sprintf("%d", plain.Den)
	case plain.Num == 1:
		label = "1"
	case plain.Num == 2:
		label = "breve"
	default:
		label = "longa"
	}
	return label + strings.Repeat(".", dots)
}

// NewGroup makes a group with the given ratio. Ratio must be positive.
func NewGroup(ratio Duration, leaves []Leaf) *Group {
	if ratio.Sign() <= 0 {
		panic(fmt.Sprintf("group ratio %v must be positive", ratio))
	}
	return &Group{Ratio: ratio, Leaves: leaves}
}

// Unit reports whether the group ratio is 1:1.
func (g *Group) Unit() bool {
	return g.Ratio.Num == 1 && g.Ratio.Den == 1
}

// NotatedDuration returns the sum of the leaf durations before the group
// ratio is applied.
func (g *Group) NotatedDuration() Duration {
	total := Duration{Num: 0, Den: 1}
	for _, l := range g.Leaves {
		total = total.Add(l.Duration())
	}
	return total
}

// Duration returns the actual duration of the group: the notated sum scaled
// by the group ratio.
func (g *Group) Duration() Duration {
	return g.Ratio.Mul(g.NotatedDuration())
}

// Copy makes a deep copy of a Group.
func (g *Group) Copy() *Group {
	leaves := make([]Leaf, len(g.Leaves))
	copy(leaves, g.Leaves)
	return &Group{Ratio: g.Ratio, Leaves: leaves}
}

func (g *Group) String() string {
	parts := make([]string, len(g.Leaves))
	for i, l := range g.Leaves {
		parts[i] = l.String()
	}
	if g.Unit() {
		return fmt.Sprintf("{ %s }", strings.Join(parts, " "))
	}
	return fmt.Sprintf("%v { %s }", g.Ratio, strings.Join(parts, " "))
}

// Leaves returns pointers to every leaf of the voice in playing order.
func (v *Voice) Leaves() []*Leaf {
	var ret []*Leaf
	for _, g := range v.Groups {
		for i := range g.Leaves {
			ret = append(ret, &g.Leaves[i])
		}
	}
	return ret
}

// Duration returns the total actual duration of the voice.
func (v *Voice) Duration() Duration {
	total := Duration{Num: 0, Den: 1}
	for _, g := range v.Groups {
		total = total.Add(g.Duration())
	}
	return total
}

// GroupCount counts the logical tied-event runs of the voice: a run is a
// maximal chain of leaves connected by tie flags; an untied leaf is a run of
// one. Rests never chain.
func (v *Voice) GroupCount() int {
	count := 0
	tied := false
	for _, g := range v.Groups {
		for _, l := range g.Leaves {
			if !tied {
				count++
			}
			tied = l.Tie && l.Kind == Note
		}
	}
	return count
}

// Copy makes a deep copy of a Voice.
func (v *Voice) Copy() *Voice {
	groups := make([]*Group, len(v.Groups))
	for i, g := range v.Groups {
		groups[i] = g.Copy()
	}
	beams := make([]Beam, len(v.Beams))
	copy(beams, v.Beams)
	return &Voice{Groups: groups, Beams: beams}
}

func (v *Voice) String() string {
	parts := make([]string, len(v.Groups))
	for i, g := range v.Groups {
		parts[i] = g.String()
	}
	return strings.Join(parts, " ")
}
