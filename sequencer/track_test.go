package sequencer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToggleInsertsQuantized(t *testing.T) {
	tr := NewTrack(0, "Track 1", "#3b82f6")

	res := tr.Toggle(60, 0.27)
	assert.Equal(t, ToggleInserted, res)
	assert.Len(t, tr.Notes, 1)
	assert.Equal(t, 0.25, tr.Notes[0].Start)
	assert.Equal(t, uint8(60), tr.Notes[0].Pitch)
	assert.Equal(t, DefaultDuration, tr.Notes[0].Duration)
	assert.Equal(t, uint8(DefaultVelocity), tr.Notes[0].Velocity)
}

func TestQuantizeTiesRoundUp(t *testing.T) {
	assert.Equal(t, 0.25, Quantize(0.27))
	assert.Equal(t, 0.5, Quantize(0.375)) // exact midpoint goes up
	assert.Equal(t, 0.5, Quantize(0.38))
	assert.Equal(t, 0.0, Quantize(0.1))
	assert.Equal(t, 16.0, Quantize(15.9))
}

func TestToggleIsItsOwnInverse(t *testing.T) {
	tr := NewTrack(0, "Track 1", "#3b82f6")

	assert.Equal(t, ToggleInserted, tr.Toggle(60, 1.0))
	assert.Equal(t, ToggleRemoved, tr.Toggle(60, 1.0))
	assert.Empty(t, tr.Notes)

	// Same quantized coordinate, different raw clicks
	assert.Equal(t, ToggleInserted, tr.Toggle(60, 1.01))
	assert.Equal(t, ToggleRemoved, tr.Toggle(60, 0.99))
	assert.Empty(t, tr.Notes)
}

func TestToggleRemovesInsideSpan(t *testing.T) {
	tr := NewTrack(0, "Track 1", "#3b82f6")
	tr.Notes = []Note{{Pitch: 60, Start: 1.0, Duration: 0.5, Velocity: 100}}

	// 1.0 <= 1.25 < 1.5 falls inside the note
	assert.Equal(t, ToggleRemoved, tr.Toggle(60, 1.25))
	assert.Empty(t, tr.Notes)

	// 1.5 is past the end of the span: a fresh insert
	tr.Notes = []Note{{Pitch: 60, Start: 1.0, Duration: 0.5, Velocity: 100}}
	assert.Equal(t, ToggleInserted, tr.Toggle(60, 1.5))
	assert.Len(t, tr.Notes, 2)
	assert.Equal(t, 1.5, tr.Notes[1].Start)
}

func TestToggleNeverDuplicates(t *testing.T) {
	tr := NewTrack(0, "Track 1", "#3b82f6")
	clicks := []struct {
		pitch int
		beat  float64
	}{
		{60, 0.0}, {60, 0.1}, {60, 0.0}, {62, 0.0}, {60, 0.25},
		{62, 0.0}, {60, 0.24}, {60, 0.26}, {60, 4.0}, {60, 4.0},
	}
	for _, c := range clicks {
		tr.Toggle(c.pitch, c.beat)
		seen := make(map[NoteID]bool)
		for _, n := range tr.Notes {
			id := NoteID{Track: tr.ID, Pitch: n.Pitch, Start: n.Start}
			assert.False(t, seen[id], "duplicate (pitch,start): %+v", id)
			seen[id] = true
		}
	}
}

func TestToggleRejectsOutOfRange(t *testing.T) {
	tr := NewTrack(0, "Track 1", "#3b82f6")
	assert.Equal(t, ToggleIgnored, tr.Toggle(-1, 0))
	assert.Equal(t, ToggleIgnored, tr.Toggle(128, 0))
	assert.Equal(t, ToggleIgnored, tr.Toggle(60, -0.5))
	assert.Empty(t, tr.Notes)
}

func TestToggleAcceptsPitchOutsideVisibleWindow(t *testing.T) {
	tr := NewTrack(0, "Track 1", "#3b82f6")
	// Below C3 and above the 48-note window are still valid data.
	assert.Equal(t, ToggleInserted, tr.Toggle(12, 0))
	assert.Equal(t, ToggleInserted, tr.Toggle(120, 0))
	assert.Len(t, tr.Notes, 2)
}

func TestClear(t *testing.T) {
	tr := NewTrack(0, "Track 1", "#3b82f6")
	tr.Toggle(60, 0)
	tr.Toggle(64, 1)
	tr.Clear()
	assert.Empty(t, tr.Notes)
	tr.Clear() // clearing an empty grid is fine
	assert.Empty(t, tr.Notes)
}

func TestSetChannelRejectsOutOfRange(t *testing.T) {
	tr := NewTrack(2, "Track 3", "#f59e0b")
	assert.Equal(t, uint8(2), tr.Channel)

	assert.True(t, tr.SetChannel(9))
	assert.Equal(t, uint8(9), tr.Channel)

	assert.False(t, tr.SetChannel(16))
	assert.False(t, tr.SetChannel(-1))
	assert.Equal(t, uint8(9), tr.Channel)
}

func TestSetInstrumentRejectsOutOfRange(t *testing.T) {
	tr := NewTrack(0, "Track 1", "#3b82f6")

	assert.True(t, tr.SetInstrument(40))
	assert.Equal(t, 40, tr.Instrument)

	assert.False(t, tr.SetInstrument(-1))
	assert.False(t, tr.SetInstrument(129))
	assert.Equal(t, 40, tr.Instrument)

	assert.True(t, tr.SetInstrument(PercussionProgram))
	assert.Equal(t, PercussionProgram, tr.Instrument)
}
