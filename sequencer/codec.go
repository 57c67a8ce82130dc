package sequencer

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Wire format. Pointer fields let the decoder tell "absent" from "zero"
// and fall back to defaults, so older or hand-edited files still load.
type sequenceDoc struct {
	BPM    int        `json:"bpm"`
	Tracks []trackDoc `json:"tracks"`
}

type trackDoc struct {
	Name       *string   `json:"name,omitempty"`
	MidiPort   *string   `json:"midi_port,omitempty"`
	MidiChan   *int      `json:"midi_channel,omitempty"`
	Instrument *int      `json:"instrument,omitempty"`
	Notes      []noteDoc `json:"notes"`
}

type noteDoc struct {
	Pitch    int     `json:"pitch"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	Velocity *uint8  `json:"velocity,omitempty"`
}

// Marshal serializes a sequence. Notes are ordered by (start, pitch) so
// the output is stable regardless of edit order.
func Marshal(seq *Sequence) ([]byte, error) {
	doc := sequenceDoc{BPM: seq.BPM}
	for _, t := range seq.Tracks {
		notes := make([]Note, len(t.Notes))
		copy(notes, t.Notes)
		sort.Slice(notes, func(i, j int) bool {
			if notes[i].Start != notes[j].Start {
				return notes[i].Start < notes[j].Start
			}
			return notes[i].Pitch < notes[j].Pitch
		})

		td := trackDoc{
			Name:  strPtr(t.Name),
			Notes: make([]noteDoc, 0, len(notes)),
		}
		if t.SinkRef != "" {
			td.MidiPort = strPtr(t.SinkRef)
		}
		ch := int(t.Channel)
		td.MidiChan = &ch
		prog := t.Instrument
		td.Instrument = &prog
		for _, n := range notes {
			vel := n.Velocity
			td.Notes = append(td.Notes, noteDoc{
				Pitch:    int(n.Pitch),
				Start:    n.Start,
				Duration: n.Duration,
				Velocity: &vel,
			})
		}
		doc.Tracks = append(doc.Tracks, td)
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Unmarshal parses a persisted sequence. The format is tolerant: missing
// optional fields fall back to defaults, extra tracks are ignored, and
// fewer than four tracks leaves the rest fresh. A malformed document
// returns an error without producing a sequence, so a failed load never
// destroys in-memory state.
func Unmarshal(data []byte) (*Sequence, error) {
	var doc sequenceDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse sequence: %w", err)
	}

	seq := NewSequence()
	seq.SetBPM(doc.BPM) // out-of-range tempo keeps the default

	n := len(doc.Tracks)
	if n > NumTracks {
		n = NumTracks
	}
	for i := 0; i < n; i++ {
		td := doc.Tracks[i]
		t := seq.Tracks[i]
		if td.Name != nil {
			t.Name = *td.Name
		}
		if td.MidiPort != nil {
			t.SinkRef = *td.MidiPort
		}
		if td.MidiChan != nil {
			t.SetChannel(*td.MidiChan)
		}
		if td.Instrument != nil {
			t.SetInstrument(*td.Instrument)
		}
		for _, nd := range td.Notes {
			if nd.Pitch < 0 || nd.Pitch > 127 || nd.Start < 0 || nd.Duration <= 0 {
				continue
			}
			vel := uint8(DefaultVelocity)
			if nd.Velocity != nil {
				vel = *nd.Velocity
			}
			t.Notes = append(t.Notes, Note{
				Pitch:    uint8(nd.Pitch),
				Start:    nd.Start,
				Duration: nd.Duration,
				Velocity: vel,
			})
		}
	}
	return seq, nil
}

// SaveFile writes the engine's sequence to disk.
func (e *Engine) SaveFile(path string) error {
	e.mu.Lock()
	data, err := Marshal(e.seq)
	e.mu.Unlock()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadFile replaces the engine's sequence with one loaded from disk. The
// current sequence is untouched on any error, and loading while playing
// stops the transport first so no note-off is lost.
func (e *Engine) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	seq, err := Unmarshal(data)
	if err != nil {
		return err
	}
	e.Stop()
	e.mu.Lock()
	e.seq = seq
	e.mu.Unlock()
	return nil
}

func strPtr(s string) *string { return &s }
