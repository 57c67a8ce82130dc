package sequencer

import "math"

// Grid geometry. The editable window is 4 octaves anchored at C3, the
// timeline is a fixed 16-beat loop quantized to sixteenth notes. Notes
// outside the window are still valid data and still play.
const (
	NoteRange  = 48 // visible pitches
	LowestNote = 48 // C3
	LoopBeats  = 16.0
	QuantSteps = 4 // grid positions per beat

	DefaultDuration = 0.25
	DefaultVelocity = 100

	// PercussionProgram marks a track as playing a percussion kit;
	// no program change is sent for it.
	PercussionProgram = 128
)

// Note is a single grid event. Notes are never mutated in place; edits
// replace them wholesale.
type Note struct {
	Pitch    uint8   `json:"pitch"`
	Start    float64 `json:"start"`    // in beats
	Duration float64 `json:"duration"` // in beats
	Velocity uint8   `json:"velocity"`
}

// NoteID identifies a note for scheduling. Two notes with the same id are
// indistinguishable to the playback engine, so the grid never holds both.
type NoteID struct {
	Track int
	Pitch uint8
	Start float64
}

// Quantize snaps a raw beat position to the nearest sixteenth, ties
// rounding up.
func Quantize(rawBeat float64) float64 {
	return math.Round(rawBeat*QuantSteps) / QuantSteps
}
