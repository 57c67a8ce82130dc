package sequencer

import (
	"math"
	"sort"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// smfEvent is a note boundary at an absolute tick, prior to delta
// conversion.
type smfEvent struct {
	tick uint32
	msg  gomidi.Message
	off  bool // note-offs sort before note-ons at the same tick
}

// ExportSMF renders the sequence as a Standard MIDI File: one SMF track
// per sequencer track, tempo meta on the first, a program change ahead of
// the notes. Muted tracks are rendered too; mute is a playback concern.
func ExportSMF(seq *Sequence) (*smf.SMF, error) {
	file := smf.New()
	clock := file.TimeFormat.(smf.MetricTicks)
	tpb := float64(clock.Ticks4th())

	for i, t := range seq.Tracks {
		tr := smf.Track{}
		tr.Add(0, smf.MetaTrackSequenceName(t.Name))
		if i == 0 {
			tr.Add(0, smf.MetaTempo(float64(seq.BPM)))
		}
		if t.Instrument != PercussionProgram {
			tr.Add(0, gomidi.ProgramChange(t.Channel, uint8(t.Instrument)))
		}

		events := make([]smfEvent, 0, len(t.Notes)*2)
		for _, n := range t.Notes {
			on := uint32(math.Round(n.Start * tpb))
			off := uint32(math.Round((n.Start + n.Duration) * tpb))
			events = append(events,
				smfEvent{tick: on, msg: gomidi.NoteOn(t.Channel, n.Pitch, n.Velocity)},
				smfEvent{tick: off, msg: gomidi.NoteOff(t.Channel, n.Pitch), off: true},
			)
		}
		sort.Slice(events, func(a, b int) bool {
			if events[a].tick != events[b].tick {
				return events[a].tick < events[b].tick
			}
			return events[a].off && !events[b].off
		})

		var last uint32
		for _, ev := range events {
			tr.Add(ev.tick-last, ev.msg)
			last = ev.tick
		}
		tr.Close(0)
		if err := file.Add(tr); err != nil {
			return nil, err
		}
	}
	return file, nil
}

// WriteSMF renders the sequence straight to a .mid file.
func WriteSMF(seq *Sequence, path string) error {
	file, err := ExportSMF(seq)
	if err != nil {
		return err
	}
	return file.WriteFile(path)
}
