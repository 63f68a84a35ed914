package meter

import (
	"fmt"
	"sort"

	"github.com/veelahti/ostinato"
)

// Options tunes a Rewrite call. BoundaryDepth selects how deep into each
// meter's hierarchy tied runs may be merged: 0 merges only up to beat
// boundaries, 1 lets runs cross beats and stop only at span edges.
// ReferenceMeters supply replacement hierarchies for matching signatures.
// Spelling is used wherever the rewrite has to respell a duration.
type Options struct {
	BoundaryDepth   int
	ReferenceMeters []Meter
	Spelling        ostinato.Spelling
}

// Rewrite mutates the voice in place so its grouping follows the given
// meters: events are split at span boundaries and tied back together, tied
// runs inside each span are respelled as the fewest leaves the boundary
// depth allows, and beams are recomputed per beat. The voice's total duration
// must equal the meters' total exactly; proportioned groups are kept intact
// and never respelled. Rewriting an already rewritten voice changes nothing.
func Rewrite(voice *ostinato.Voice, meters []Meter, opts Options) error {
	if len(meters) == 0 {
		return fmt.Errorf("no meters to rewrite against")
	}
	resolved := make([]Meter, len(meters))
	for i, m := range meters {
		resolved[i] = m
		for _, ref := range opts.ReferenceMeters {
			if m.sameSignature(ref) {
				resolved[i] = ref
				break
			}
		}
	}
	boundaries := make([]ostinato.Duration, len(resolved)+1)
	boundaries[0] = ostinato.Duration{Num: 0, Den: 1}
	for i, m := range resolved {
		boundaries[i+1] = boundaries[i].Add(m.Duration())
	}
	if got, want := voice.Duration(), boundaries[len(boundaries)-1]; !got.Equal(want) {
		return fmt.Errorf("cannot rewrite: voice lasts %v but meters last %v", got, want)
	}
	kept, err := regroup(voice, boundaries, opts.Spelling)
	if err != nil {
		return err
	}
	if err := respell(voice, resolved, boundaries, opts); err != nil {
		return err
	}
	beams := beamBeats(voice, resolved, boundaries)
	beams = append(beams, kept...)
	sort.Slice(beams, func(i, j int) bool { return beams[i].Start < beams[j].Start })
	voice.Beams = dedupeBeams(beams)
	return nil
}

// regroup rebuilds the voice's groups so that no group crosses a span
// boundary: unit groups within a span are merged, leaves straddling a
// boundary are split and tied back together, and proportioned groups pass
// through whole. Beams lying entirely inside a proportioned group are
// returned remapped to the new leaf indices; all other beams are dropped for
// the later per-beat recompute.
func regroup(voice *ostinato.Voice, boundaries []ostinato.Duration, sp ostinato.Spelling) ([]ostinato.Beam, error) {
	starts := make(map[*ostinato.Group]int)
	flat := 0
	for _, g := range voice.Groups {
		starts[g] = flat
		flat += len(g.Leaves)
	}
	type innerBeam struct {
		group    *ostinato.Group
		from, to int
	}
	var inner []innerBeam
	for _, b := range voice.Beams {
		for _, g := range voice.Groups {
			if g.Unit() {
				continue
			}
			s := starts[g]
			if b.Start >= s && b.Stop <= s+len(g.Leaves) {
				inner = append(inner, innerBeam{g, b.Start - s, b.Stop - s})
				break
			}
		}
	}

	var groups []*ostinato.Group
	var current *ostinato.Group
	flush := func() {
		if current != nil && len(current.Leaves) > 0 {
			groups = append(groups, current)
		}
		current = nil
	}
	pos := ostinato.Duration{Num: 0, Den: 1}
	mi := 0

	var place func(l ostinato.Leaf) error
	place = func(l ostinato.Leaf) error {
		room := boundaries[mi+1].Sub(pos)
		ld := l.Duration()
		if ld.Cmp(room) <= 0 {
			if current == nil {
				current = ostinato.NewGroup(ostinato.NewDuration(1, 1), nil)
			}
			current.Leaves = append(current.Leaves, l)
			pos = pos.Add(ld)
			if pos.Equal(boundaries[mi+1]) {
				flush()
				mi++
			}
			return nil
		}
		left, right := room, ld.Sub(room)
		var before, after []ostinato.Leaf
		if l.Multiplier.Num != 0 {
			ll, rl := l, l
			ll.Multiplier = left.Div(l.Written)
			ll.Tie = l.Kind == ostinato.Note
			rl.Multiplier = right.Div(l.Written)
			before, after = []ostinato.Leaf{ll}, []ostinato.Leaf{rl}
		} else {
			var err error
			if before, err = ostinato.Spell(left, l.Kind, sp); err != nil {
				return err
			}
			if after, err = ostinato.Spell(right, l.Kind, sp); err != nil {
				return err
			}
			if l.Kind == ostinato.Note {
				before[len(before)-1].Tie = true
			}
			after[len(after)-1].Tie = l.Tie
		}
		for _, piece := range before {
			if err := place(piece); err != nil {
				return err
			}
		}
		for _, piece := range after {
			if err := place(piece); err != nil {
				return err
			}
		}
		return nil
	}

	for _, g := range voice.Groups {
		if !g.Unit() {
			gd := g.Duration()
			if end := pos.Add(gd); boundaries[mi+1].Less(end) {
				return nil, fmt.Errorf("grouping %v at offset %v crosses the span boundary at %v", g, pos, boundaries[mi+1])
			}
			flush()
			groups = append(groups, g)
			pos = pos.Add(gd)
			if pos.Equal(boundaries[mi+1]) {
				mi++
			}
			continue
		}
		for _, l := range g.Leaves {
			if err := place(l); err != nil {
				return nil, err
			}
		}
	}
	flush()
	voice.Groups = groups
	voice.Beams = nil

	flat = 0
	newStarts := make(map[*ostinato.Group]int)
	for _, g := range groups {
		newStarts[g] = flat
		flat += len(g.Leaves)
	}
	var kept []ostinato.Beam
	for _, ib := range inner {
		s := newStarts[ib.group]
		kept = append(kept, ostinato.Beam{Start: s + ib.from, Stop: s + ib.to})
	}
	return kept, nil
}

// respell rewrites every tied note run and every rest run inside the unit
// groups as the fewest leaves that do not cross a barrier of the enforced
// hierarchy level. Runs containing multiplier leaves keep their exact spelled
// form.
func respell(voice *ostinato.Voice, meters []Meter, boundaries []ostinato.Duration, opts Options) error {
	pos := ostinato.Duration{Num: 0, Den: 1}
	mi := 0
	for _, g := range voice.Groups {
		gd := g.Duration()
		if !g.Unit() {
			pos = pos.Add(gd)
			if pos.Equal(boundaries[mi+1]) {
				mi++
			}
			continue
		}
		inv := meters[mi].Inventory
		barriers := []ostinato.Duration{boundaries[mi], boundaries[mi+1]}
		if len(inv) > 0 {
			lvl := 1 - opts.BoundaryDepth
			if lvl < 0 {
				lvl = 0
			}
			if lvl > len(inv)-1 {
				lvl = len(inv) - 1
			}
			barriers = make([]ostinato.Duration, len(inv[lvl]))
			for i, off := range inv[lvl] {
				barriers[i] = boundaries[mi].Add(off)
			}
		}

		var leaves []ostinato.Leaf
		cursor := pos
		for i := 0; i < len(g.Leaves); {
			j := i
			kind := g.Leaves[i].Kind
			for j+1 < len(g.Leaves) && g.Leaves[j+1].Kind == kind &&
				(kind == ostinato.Rest || g.Leaves[j].Tie) {
				j++
			}
			run := g.Leaves[i : j+1]
			runDur := ostinato.Duration{Num: 0, Den: 1}
			hasMultiplier := false
			for _, l := range run {
				runDur = runDur.Add(l.Duration())
				if l.Multiplier.Num != 0 {
					hasMultiplier = true
				}
			}
			if hasMultiplier {
				leaves = append(leaves, run...)
			} else {
				segs := cutAt(cursor, runDur, barriers)
				for si, seg := range segs {
					pieces, err := ostinato.Spell(seg, kind, opts.Spelling)
					if err != nil {
						return err
					}
					if kind == ostinato.Note {
						pieces[len(pieces)-1].Tie = true
					}
					if si == len(segs)-1 {
						pieces[len(pieces)-1].Tie = run[len(run)-1].Tie
					}
					leaves = append(leaves, pieces...)
				}
			}
			cursor = cursor.Add(runDur)
			i = j + 1
		}
		g.Leaves = leaves
		pos = pos.Add(gd)
		if pos.Equal(boundaries[mi+1]) {
			mi++
		}
	}
	return nil
}

// cutAt splits a duration starting at start into the segments delimited by
// the barriers strictly inside it.
func cutAt(start, dur ostinato.Duration, barriers []ostinato.Duration) []ostinato.Duration {
	end := start.Add(dur)
	var segs []ostinato.Duration
	prev := start
	for _, b := range barriers {
		if start.Less(b) && b.Less(end) {
			segs = append(segs, b.Sub(prev))
			prev = b
		}
	}
	return append(segs, end.Sub(prev))
}

// beamBeats recomputes one beam per beat, covering exactly the leaves whose
// timespans fall entirely inside the beat, and only when those leaves fill
// the beat completely. Spans without a beat level get no beams.
func beamBeats(voice *ostinato.Voice, meters []Meter, boundaries []ostinato.Duration) []ostinato.Beam {
	type timespan struct {
		start, stop ostinato.Duration
	}
	var times []timespan
	pos := ostinato.Duration{Num: 0, Den: 1}
	for _, g := range voice.Groups {
		for _, l := range g.Leaves {
			d := g.Ratio.Mul(l.Duration())
			times = append(times, timespan{pos, pos.Add(d)})
			pos = pos.Add(d)
		}
	}
	var beams []ostinato.Beam
	for mi, m := range meters {
		if len(m.Inventory) < 2 {
			continue
		}
		beats := m.Inventory[1]
		for bi := 0; bi+1 < len(beats); bi++ {
			b0 := boundaries[mi].Add(beats[bi])
			b1 := boundaries[mi].Add(beats[bi+1])
			first, last := -1, -1
			sum := ostinato.Duration{Num: 0, Den: 1}
			for i, t := range times {
				if t.start.Cmp(b0) >= 0 && t.stop.Cmp(b1) <= 0 {
					if first < 0 {
						first = i
					}
					last = i
					sum = sum.Add(t.stop.Sub(t.start))
				}
			}
			if first >= 0 && last > first && sum.Equal(b1.Sub(b0)) {
				beams = append(beams, ostinato.Beam{Start: first, Stop: last + 1})
			}
		}
	}
	return beams
}

func dedupeBeams(beams []ostinato.Beam) []ostinato.Beam {
	var ret []ostinato.Beam
	for _, b := range beams {
		if n := len(ret); n > 0 && ret[n-1] == b {
			continue
		}
		ret = append(ret, b)
	}
	return ret
}
