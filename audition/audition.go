// Package audition renders produced voices as Standard MIDI Files so a
// sequence can be heard before it is engraved. Every leaf becomes wall time
// on a single track: tied notes merge into one sustained note, rests into
// silence, and group ratios scale their contents just as they would in
// notation.
package audition

import (
	"fmt"
	"math"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/veelahti/ostinato"
	"github.com/veelahti/ostinato/meter"
)

// ticksPerQuarter divides evenly by 3, 5 and 2^6, so triplet and quintuplet
// ratios land on exact ticks.
const ticksPerQuarter = 960

// Options tunes a render. Zero values pick the defaults: 120 BPM, middle C,
// channel 0, velocity 100. Meters, when given, are written as time signature
// changes at their span starts.
type Options struct {
	BPM      float64
	Key      uint8
	Channel  uint8
	Velocity uint8
	Meters   []meter.Meter
}

// Render flattens the voice into a one-track SMF. Ticks are computed from
// the running rational offset, never by accumulating per-leaf roundings, so
// the render cannot drift from the exact durations.
func Render(voice *ostinato.Voice, opts Options) (*smf.SMF, error) {
	if voice == nil || len(voice.Groups) == 0 {
		return nil, fmt.Errorf("nothing to render")
	}
	if opts.BPM == 0 {
		opts.BPM = 120
	}
	if opts.Key == 0 {
		opts.Key = 60
	}
	if opts.Velocity == 0 {
		opts.Velocity = 100
	}

	type event struct {
		tick int64
		rank int // metas, then offs, then ons
		msg  []byte
	}
	events := []event{{0, 0, smf.MetaTempo(opts.BPM)}}

	pos := ostinato.Duration{Num: 0, Den: 1}
	for _, m := range opts.Meters {
		events = append(events, event{toTick(pos), 0, smf.MetaMeter(uint8(m.Numerator), uint8(m.Denominator))})
		pos = pos.Add(m.Duration())
	}

	pos = ostinato.Duration{Num: 0, Den: 1}
	var sounding *ostinato.Duration // onset of the note currently held open
	emit := func(off ostinato.Duration) {
		events = append(events,
			event{toTick(*sounding), 2, midi.NoteOn(opts.Channel, opts.Key, opts.Velocity)},
			event{toTick(off), 1, midi.NoteOff(opts.Channel, opts.Key)})
		sounding = nil
	}
	for _, g := range voice.Groups {
		for _, l := range g.Leaves {
			d := g.Ratio.Mul(l.Duration())
			if l.Kind == ostinato.Note {
				if sounding == nil {
					onset := pos
					sounding = &onset
				}
				if !l.Tie {
					emit(pos.Add(d))
				}
			} else if sounding != nil {
				// a tie into a rest just ends
				emit(pos)
			}
			pos = pos.Add(d)
		}
	}
	if sounding != nil {
		emit(pos)
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return events[i].rank < events[j].rank
	})

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(ticksPerQuarter)
	var track smf.Track
	prev := int64(0)
	for _, ev := range events {
		track.Add(uint32(ev.tick-prev), ev.msg)
		prev = ev.tick
	}
	track.Close(0)
	if err := s.Add(track); err != nil {
		return nil, err
	}
	return s, nil
}

// toTick converts an offset in whole notes to an absolute tick count.
func toTick(d ostinato.Duration) int64 {
	return int64(math.Round(d.Float() * 4 * ticksPerQuarter))
}
