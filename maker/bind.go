package maker

import (
	"fmt"

	"github.com/veelahti/ostinato"
)

// Assignment routes spans to a maker. A span matches when the predicate
// returns true or the index pattern matches its index; an assignment with
// neither matches every span. RememberStateAcrossGaps keeps the maker's last
// state alive across non-adjacent runs of spans, so a maker assigned only
// every third span still continues its pattern as if contiguous.
type Assignment struct {
	Maker                   Maker
	Predicate               func(index int, span ostinato.Duration) bool
	Pattern                 *ostinato.Pattern
	RememberStateAcrossGaps bool
}

func (a Assignment) matches(index, total int, span ostinato.Duration) bool {
	if a.Predicate != nil {
		return a.Predicate(index, span)
	}
	if a.Pattern != nil {
		return a.Pattern.Matches(index, total)
	}
	return true
}

// Bind allocates each span to the first assignment that matches it,
// first-match-wins, and batches contiguous runs of same-assignment spans
// into single maker calls.
type Bind struct {
	Assignments []Assignment
}

// BindResult carries everything one allocation call produced: the groups in
// span order, the state of the maker that ran last, and each assignment's
// final state keyed by assignment index. The per-assignment map is what a
// caller threads back in when resuming a remember-across-gaps setup; nothing
// survives inside the Bind itself between calls.
type BindResult struct {
	Groups      []*ostinato.Group
	State       ostinato.State
	MakerStates map[int]ostinato.State
}

// Allocate fills the spans. The previous state, when non-nil, is offered to
// every batched maker call; when nil, an assignment marked remember-across-
// gaps resumes instead from its own last state within this call.
func (b Bind) Allocate(spans []ostinato.Duration, previous *ostinato.State) (BindResult, error) {
	if len(b.Assignments) == 0 {
		return BindResult{}, fmt.Errorf("bind has no assignments")
	}
	assigned := make([]int, len(spans))
	for i, span := range spans {
		assigned[i] = -1
		for j, a := range b.Assignments {
			if a.matches(i, len(spans), span) {
				assigned[i] = j
				break
			}
		}
		if assigned[i] < 0 {
			return BindResult{}, fmt.Errorf("no assignment matches span %d", i)
		}
	}
	result := BindResult{MakerStates: make(map[int]ostinato.State)}
	for start := 0; start < len(spans); {
		stop := start
		for stop < len(spans) && assigned[stop] == assigned[start] {
			stop++
		}
		idx := assigned[start]
		a := b.Assignments[idx]
		prev := previous
		if prev == nil && a.RememberStateAcrossGaps {
			if cached, ok := result.MakerStates[idx]; ok {
				prev = &cached
			}
		}
		groups, state, err := a.Maker.Make(spans[start:stop], prev)
		if err != nil {
			return BindResult{}, fmt.Errorf("assignment %d on spans %d..%d: %w", idx, start, stop-1, err)
		}
		result.Groups = append(result.Groups, groups...)
		result.MakerStates[idx] = state
		result.State = state
		start = stop
	}
	return result, nil
}

// Make lets a Bind stand wherever a single maker can, dropping the
// per-assignment states.
func (b Bind) Make(spans []ostinato.Duration, previous *ostinato.State) ([]*ostinato.Group, ostinato.State, error) {
	result, err := b.Allocate(spans, previous)
	if err != nil {
		return nil, ostinato.State{}, err
	}
	return result.Groups, result.State, nil
}
