package maker

import (
	"fmt"

	"github.com/veelahti/ostinato"
)

// TaleaMaker fills each span by reading the talea's counts cyclically:
// positive counts become notes, negative counts rests, and a count split
// across a span boundary is tied back together. ExtraCounts prolates span
// contents, giving the produced groups non-unit ratios; ReadOnceOnly forbids
// cycling past one full read of the pattern.
type TaleaMaker struct {
	Talea        ostinato.Talea
	ExtraCounts  []int
	ReadOnceOnly bool
	Spelling     ostinato.Spelling
}

// NewTaleaMaker builds a maker over a validated talea, pre-advanced by the
// given weight.
func NewTaleaMaker(counts []int, denominator int, advance int) (TaleaMaker, error) {
	talea, err := ostinato.NewTalea(counts, denominator, nil, nil)
	if err != nil {
		return TaleaMaker{}, err
	}
	talea, err = talea.Advance(advance)
	if err != nil {
		return TaleaMaker{}, err
	}
	return TaleaMaker{Talea: talea}, nil
}

func (m TaleaMaker) Make(spans []ostinato.Duration, previous *ostinato.State) ([]*ostinato.Group, ostinato.State, error) {
	if err := validateSpans(spans); err != nil {
		return nil, ostinato.State{}, err
	}
	prev := ostinato.State{}
	if previous != nil {
		prev = *previous
	}
	talea, err := m.Talea.Advance(prev.WeightConsumed)
	if err != nil {
		return nil, ostinato.State{}, err
	}

	// scale every vector to the least common denominator of the talea and
	// the spans, so all further arithmetic is on plain integers
	lcd := int64(talea.Denominator)
	for _, span := range spans {
		lcd = lcm64(lcd, span.Den)
	}
	mult := int(lcd) / talea.Denominator
	counts := scaleCounts(talea.Counts, mult)
	preamble := scaleCounts(talea.Preamble, mult)
	endCounts := scaleCounts(talea.EndCounts, mult)
	extra := scaleCounts(rotate(m.ExtraCounts, prev.SpansConsumed), mult)

	numerators := make([]int, len(spans))
	for i, span := range spans {
		numerators[i] = int(span.Num * (lcd / span.Den))
	}
	prolated := prolate(numerators, extra)

	lists, err := splitExtended(preamble, counts, prolated, m.ReadOnceOnly)
	if err != nil {
		return nil, ostinato.State{}, err
	}
	if len(endCounts) > 0 {
		lists, err = replaceTail(lists, endCounts)
		if err != nil {
			return nil, ostinato.State{}, err
		}
	}

	groups := make([]*ostinato.Group, len(spans))
	for i, list := range lists {
		var leaves []ostinato.Leaf
		for _, c := range list {
			kind := ostinato.Note
			if c < 0 {
				kind = ostinato.Rest
			}
			pieces, err := ostinato.Spell(ostinato.NewDuration(int64(abs(c)), lcd), kind, m.Spelling)
			if err != nil {
				return nil, ostinato.State{}, err
			}
			leaves = append(leaves, pieces...)
		}
		groups[i] = ostinato.NewGroup(ostinato.NewDuration(int64(numerators[i]), int64(prolated[i])), leaves)
	}

	voice := &ostinato.Voice{Groups: groups}
	if err := applyTies(voice, talea); err != nil {
		return nil, ostinato.State{}, err
	}
	if n := len(talea.EndCounts); n > 0 {
		severEndTies(voice, n)
	}

	total := ostinato.SumDurations(spans)
	if got := voice.Duration(); !got.Equal(total) {
		panic(fmt.Sprintf("talea maker produced total %v for spans totalling %v", got, total))
	}

	weightConsumed := 0
	for _, list := range lists {
		weightConsumed += weightOf(list)
	}
	incomplete := false
	if weightConsumed > 0 && !talea.Contains(weightConsumed) {
		leaves := voice.Leaves()
		if last := leaves[len(leaves)-1]; last.Kind == ostinato.Note {
			incomplete = true
		}
	}
	state := buildState(previous, len(spans), voice.GroupCount(), incomplete, weightConsumed)
	return groups, state, nil
}

// prolate adds each span's extra count, reduced modulo the span weight, to
// the span's numerator. Negative extras reduce modulo the negated weight so
// the addendum stays negative.
func prolate(numerators, extra []int) []int {
	ret := make([]int, len(numerators))
	for i, n := range numerators {
		add := 0
		if len(extra) > 0 {
			e := extra[i%len(extra)]
			if e >= 0 {
				add = e % n
			} else {
				add = -((-e) % n)
			}
		}
		ret[i] = n + add
	}
	return ret
}

// splitExtended lays the preamble and enough repetitions of the counts end
// to end and splits the stream into one signed list per span weight, cutting
// counts at span boundaries.
func splitExtended(preamble, counts, weights []int, readOnceOnly bool) ([][]int, error) {
	total := weightOf(weights)
	if readOnceOnly && weightOf(preamble)+weightOf(counts) < total {
		return nil, fmt.Errorf("talea %v + %v is too short to read %v once", preamble, counts, weights)
	}
	var stream []int
	if pw := weightOf(preamble); total <= pw {
		stream, _ = splitAt(preamble, total)
	} else {
		stream = append(append([]int(nil), preamble...), repeatToWeight(counts, total-pw)...)
	}
	lists := make([][]int, len(weights))
	for i, w := range weights {
		var part []int
		part, stream = splitAt(stream, w)
		lists[i] = part
	}
	return lists, nil
}

// splitAt splits a signed sequence at an absolute weight, cutting the
// straddling element and preserving signs.
func splitAt(counts []int, weight int) (head, tail []int) {
	for i, c := range counts {
		w := abs(c)
		if weight >= w {
			head = append(head, c)
			weight -= w
			continue
		}
		if weight > 0 {
			left, right := weight, w-weight
			if c < 0 {
				left, right = -left, -right
			}
			head = append(head, left)
			tail = append(tail, right)
		} else {
			tail = append(tail, c)
		}
		tail = append(tail, counts[i+1:]...)
		return head, tail
	}
	return head, nil
}

// repeatToWeight cycles the counts until the absolute weight is reached,
// truncating the final count to fit.
func repeatToWeight(counts []int, weight int) []int {
	var ret []int
	for weight > 0 {
		for _, c := range counts {
			w := abs(c)
			if w > weight {
				if c < 0 {
					c = -weight
				} else {
					c = weight
				}
				w = weight
			}
			ret = append(ret, c)
			weight -= w
			if weight == 0 {
				break
			}
		}
	}
	return ret
}

// replaceTail substitutes the one-shot end counts for the final weight of
// the flattened lists, then repartitions into the original span weights.
func replaceTail(lists [][]int, endCounts []int) ([][]int, error) {
	var flat []int
	weights := make([]int, len(lists))
	for i, list := range lists {
		weights[i] = weightOf(list)
		flat = append(flat, list...)
	}
	endWeight := weightOf(endCounts)
	if total := weightOf(flat); endWeight > total {
		return nil, fmt.Errorf("end counts weigh %d but only %d is available", endWeight, total)
	}
	head, _ := splitAt(flat, weightOf(flat)-endWeight)
	flat = append(head, endCounts...)
	ret := make([][]int, len(lists))
	for i, w := range weights {
		ret[i], flat = splitAt(flat, w)
	}
	return ret, nil
}

// applyTies reconstructs the ties a span boundary severed: the written leaf
// durations are partitioned back into the talea's own count weights, first
// the one-shot preamble exactly, then the counts cyclically, and every
// all-note part is tied into one run.
func applyTies(voice *ostinato.Voice, talea ostinato.Talea) error {
	leaves := voice.Leaves()
	written := make([]ostinato.Duration, len(leaves))
	for i, l := range leaves {
		written[i] = l.Written
	}
	den := int64(talea.Denominator)
	var preambleWeights []ostinato.Duration
	for _, c := range talea.Preamble {
		preambleWeights = append(preambleWeights, ostinato.NewDuration(int64(abs(c)), den))
	}
	var countWeights []ostinato.Duration
	for _, c := range talea.Counts {
		countWeights = append(countWeights, ostinato.NewDuration(int64(abs(c)), den))
	}
	total := ostinato.SumDurations(written)
	preambleTotal := ostinato.SumDurations(preambleWeights)
	var parts [][]int
	if total.Cmp(preambleTotal) <= 0 {
		var err error
		parts, err = partitionByWeights(written, preambleWeights, true, true, false)
		if err != nil {
			return err
		}
	} else {
		head, err := partitionByWeights(written, preambleWeights, false, false, true)
		if err != nil {
			return err
		}
		consumed := 0
		for _, p := range head {
			consumed += len(p)
		}
		tail, err := partitionByWeights(written[consumed:], countWeights, true, true, false)
		if err != nil {
			return err
		}
		parts = head
		for _, p := range tail {
			shifted := make([]int, len(p))
			for i, idx := range p {
				shifted[i] = idx + consumed
			}
			parts = append(parts, shifted)
		}
	}
	for _, part := range parts {
		if len(part) < 2 {
			continue
		}
		allNotes := true
		for _, idx := range part {
			if leaves[idx].Kind == ostinato.Rest {
				allNotes = false
				break
			}
		}
		if !allNotes {
			continue
		}
		for _, idx := range part[:len(part)-1] {
			leaves[idx].Tie = true
		}
	}
	return nil
}

// severEndTies detaches the tie leading into each of the final n leaves, so
// the one-shot end counts always start fresh runs.
func severEndTies(voice *ostinato.Voice, n int) {
	leaves := voice.Leaves()
	for i := len(leaves) - n; i < len(leaves); i++ {
		if i > 0 {
			leaves[i-1].Tie = false
		}
	}
}

// partitionByWeights groups item indices into parts of the target weights.
// Cyclic reuses the weights until the items run out; overhang collects any
// leftover items into a final part. When exact is set a part must hit its
// target weight exactly or the partition fails; otherwise a part closes at
// the first item that reaches or passes the target.
func partitionByWeights(items []ostinato.Duration, weights []ostinato.Duration, cyclic, overhang, exact bool) ([][]int, error) {
	var parts [][]int
	if len(weights) == 0 {
		if len(items) > 0 && overhang {
			all := make([]int, len(items))
			for i := range items {
				all[i] = i
			}
			parts = append(parts, all)
		}
		return parts, nil
	}
	idx, wi := 0, 0
	for idx < len(items) {
		if wi >= len(weights) {
			if cyclic {
				wi = 0
			} else {
				break
			}
		}
		target := weights[wi]
		var part []int
		acc := ostinato.Duration{Num: 0, Den: 1}
		for idx < len(items) && acc.Less(target) {
			acc = acc.Add(items[idx])
			part = append(part, idx)
			idx++
		}
		if exact && !acc.Equal(target) {
			return nil, fmt.Errorf("cannot partition exactly: part weighs %v, want %v", acc, target)
		}
		parts = append(parts, part)
		wi++
	}
	if idx < len(items) && overhang {
		var rest []int
		for ; idx < len(items); idx++ {
			rest = append(rest, idx)
		}
		parts = append(parts, rest)
	}
	return parts, nil
}

func scaleCounts(counts []int, mult int) []int {
	if len(counts) == 0 {
		return nil
	}
	ret := make([]int, len(counts))
	for i, c := range counts {
		ret[i] = c * mult
	}
	return ret
}

func weightOf(counts []int) int {
	ret := 0
	for _, c := range counts {
		ret += abs(c)
	}
	return ret
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func lcm64(a, b int64) int64 {
	x, y := a, b
	for y != 0 {
		x, y = y, x%y
	}
	return a / x * b
}
