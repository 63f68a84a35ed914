package audition_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veelahti/ostinato"
	"github.com/veelahti/ostinato/audition"
	"github.com/veelahti/ostinato/meter"
)

func unitGroup(leaves ...ostinato.Leaf) *ostinato.Group {
	return ostinato.NewGroup(ostinato.NewDuration(1, 1), leaves)
}

func note(num, den int64, tie bool) ostinato.Leaf {
	return ostinato.Leaf{Kind: ostinato.Note, Written: ostinato.NewDuration(num, den), Tie: tie}
}

func rest(num, den int64) ostinato.Leaf {
	return ostinato.Leaf{Kind: ostinato.Rest, Written: ostinato.NewDuration(num, den)}
}

type heard struct {
	on, off int64
}

func playback(t *testing.T, v *ostinato.Voice, opts audition.Options) []heard {
	t.Helper()
	s, err := audition.Render(v, opts)
	require.NoError(t, err)
	require.Len(t, s.Tracks, 1)
	var notes []heard
	var tick int64
	var open int64
	for _, ev := range s.Tracks[0] {
		tick += int64(ev.Delta)
		var ch, key, vel uint8
		if ev.Message.GetNoteOn(&ch, &key, &vel) && vel > 0 {
			open = tick
		}
		if ev.Message.GetNoteOff(&ch, &key, &vel) {
			notes = append(notes, heard{on: open, off: tick})
		}
	}
	return notes
}

func TestRenderMergesTies(t *testing.T) {
	// c8~ c8 r4 c4 at 960 ticks per quarter
	v := &ostinato.Voice{Groups: []*ostinato.Group{
		unitGroup(note(1, 8, true), note(1, 8, false), rest(1, 4), note(1, 4, false)),
	}}
	notes := playback(t, v, audition.Options{})
	require.Len(t, notes, 2)
	assert.Equal(t, heard{on: 0, off: 960}, notes[0])
	assert.Equal(t, heard{on: 1920, off: 2880}, notes[1])
}

func TestRenderTieAcrossGroups(t *testing.T) {
	v := &ostinato.Voice{Groups: []*ostinato.Group{
		unitGroup(note(1, 4, true)),
		unitGroup(note(1, 4, false)),
	}}
	notes := playback(t, v, audition.Options{})
	require.Len(t, notes, 1)
	assert.Equal(t, heard{on: 0, off: 1920}, notes[0])
}

func TestRenderTrailingTieStillEnds(t *testing.T) {
	v := &ostinato.Voice{Groups: []*ostinato.Group{
		unitGroup(note(1, 4, true)),
	}}
	notes := playback(t, v, audition.Options{})
	require.Len(t, notes, 1)
	assert.Equal(t, heard{on: 0, off: 960}, notes[0])
}

func TestRenderScalesProportionedGroups(t *testing.T) {
	triplet := ostinato.NewGroup(ostinato.NewDuration(2, 3), []ostinato.Leaf{
		note(1, 4, false), note(1, 4, false), note(1, 4, false),
	})
	v := &ostinato.Voice{Groups: []*ostinato.Group{triplet}}
	notes := playback(t, v, audition.Options{})
	require.Len(t, notes, 3)
	// each triplet quarter lasts 2/3 of 960 ticks
	assert.Equal(t, heard{on: 0, off: 640}, notes[0])
	assert.Equal(t, heard{on: 640, off: 1280}, notes[1])
	assert.Equal(t, heard{on: 1280, off: 1920}, notes[2])
}

func TestRenderWritesTimeSignatures(t *testing.T) {
	v := &ostinato.Voice{Groups: []*ostinato.Group{
		unitGroup(note(1, 4, false), note(1, 4, false), note(1, 8, false)),
	}}
	opts := audition.Options{Meters: []meter.Meter{meter.New(2, 4), meter.New(1, 8)}}
	s, err := audition.Render(v, opts)
	require.NoError(t, err)
	var sigs []string
	var tick int64
	for _, ev := range s.Tracks[0] {
		tick += int64(ev.Delta)
		var num, denom, cpt, dsqpq uint8
		if ev.Message.GetMetaTimeSig(&num, &denom, &cpt, &dsqpq) {
			sigs = append(sigs, fmt.Sprintf("%d/%d", num, denom))
			if len(sigs) == 2 {
				assert.Equal(t, int64(1920), tick, "the 1/8 span should start after the 2/4 span")
			}
		}
	}
	assert.Equal(t, []string{"2/4", "1/8"}, sigs)
}

func TestRenderRejectsEmpty(t *testing.T) {
	_, err := audition.Render(&ostinato.Voice{}, audition.Options{})
	assert.Error(t, err)
}
