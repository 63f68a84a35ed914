package maker

import (
	"fmt"

	"github.com/veelahti/ostinato"
)

// OpKind enumerates the closed set of edit operations a Stack can run over
// produced music. Each kind reads only its own parameters from the Op.
type OpKind int

const (
	// OpCacheState freezes the pipeline state at this point instead of at
	// the end of the call; later ops still run but no longer affect the
	// returned state.
	OpCacheState OpKind = iota

	// OpRewriteRestFilled respells every fully silent group as the minimal
	// run of rests for its notated duration.
	OpRewriteRestFilled

	// OpForceRest silences the leaves the pattern selects.
	OpForceRest

	// OpForceNote makes the leaves the pattern selects sound.
	OpForceNote

	// OpUntie clears the tie on the leaves the pattern selects.
	OpUntie
)

// Op is one edit operation: a kind plus the parameters that kind reads. The
// pattern selects leaf indices over the flattened voice; its zero value
// selects nothing, so force and untie ops need an explicit pattern.
type Op struct {
	Kind     OpKind
	Pattern  ostinato.Pattern
	Spelling ostinato.Spelling
}

// Apply runs one edit operation over the voice in place. OpCacheState is a
// no-op here; the Stack interprets it.
func Apply(op Op, voice *ostinato.Voice) error {
	switch op.Kind {
	case OpCacheState:
		return nil
	case OpRewriteRestFilled:
		return rewriteRestFilled(voice, op.Spelling)
	case OpForceRest, OpForceNote:
		kind := ostinato.Rest
		if op.Kind == OpForceNote {
			kind = ostinato.Note
		}
		leaves := voice.Leaves()
		for i, l := range leaves {
			if !op.Pattern.Matches(i, len(leaves)) {
				continue
			}
			l.Kind = kind
			if kind == ostinato.Rest {
				l.Tie = false
				if i > 0 {
					leaves[i-1].Tie = false
				}
			}
		}
		return nil
	case OpUntie:
		leaves := voice.Leaves()
		for i, l := range leaves {
			if op.Pattern.Matches(i, len(leaves)) {
				l.Tie = false
			}
		}
		return nil
	}
	return fmt.Errorf("unknown op kind %d", op.Kind)
}

// rewriteRestFilled replaces the contents of every all-rest group with the
// fewest rests spelling the same notated duration.
func rewriteRestFilled(voice *ostinato.Voice, spelling ostinato.Spelling) error {
	for _, g := range voice.Groups {
		if len(g.Leaves) == 0 {
			continue
		}
		silent := true
		for _, l := range g.Leaves {
			if l.Kind != ostinato.Rest {
				silent = false
				break
			}
		}
		if !silent {
			continue
		}
		leaves, err := ostinato.Spell(g.NotatedDuration(), ostinato.Rest, spelling)
		if err != nil {
			return err
		}
		g.Leaves = leaves
	}
	return nil
}

// Stack runs a maker and then a pipeline of edit operations over its output.
// The returned state reflects the music as it stood when an OpCacheState ran,
// or the final music when none did; the checkpoint is computed once and the
// end-of-call recompute is then suppressed.
type Stack struct {
	Maker Maker
	Ops   []Op
}

func (s Stack) Make(spans []ostinato.Duration, previous *ostinato.State) ([]*ostinato.Group, ostinato.State, error) {
	groups, state, err := s.Maker.Make(spans, previous)
	if err != nil {
		return nil, ostinato.State{}, err
	}
	voice := &ostinato.Voice{Groups: groups}
	cached := false
	for _, op := range s.Ops {
		if op.Kind == OpCacheState {
			if !cached {
				state = recountGroups(state, previous, voice)
				cached = true
			}
			continue
		}
		if err := Apply(op, voice); err != nil {
			return nil, ostinato.State{}, err
		}
	}
	if !cached {
		state = recountGroups(state, previous, voice)
	}
	return voice.Groups, state, nil
}

// recountGroups recomputes the cumulative group count from the voice as it
// currently stands, reapplying the tied-over correction.
func recountGroups(state ostinato.State, previous *ostinato.State, voice *ostinato.Voice) ostinato.State {
	prev := ostinato.State{}
	if previous != nil {
		prev = *previous
	}
	produced := prev.GroupsProduced + voice.GroupCount()
	if prev.IncompleteLastGroup {
		produced--
	}
	state.GroupsProduced = produced
	return state
}
