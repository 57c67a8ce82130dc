package sequencer

// ToggleResult reports what a grid toggle did.
type ToggleResult int

const (
	ToggleIgnored ToggleResult = iota // out-of-range input, nothing changed
	ToggleInserted
	ToggleRemoved
)

// Track is one of the sequence's four lanes: a note grid plus output
// routing. ID is fixed at construction and equals the track's position
// in the sequence.
type Track struct {
	ID         int
	Name       string
	Color      string
	Notes      []Note
	Muted      bool
	SinkRef    string // output port name, empty = unrouted
	Channel    uint8  // 0-15
	Instrument int    // 0-127, or PercussionProgram
}

// NewTrack creates an empty track. The channel defaults to the track id,
// mirroring a fresh 4-track layout.
func NewTrack(id int, name, color string) *Track {
	return &Track{
		ID:      id,
		Name:    name,
		Color:   color,
		Channel: uint8(id),
	}
}

// Toggle adds or removes a note at the clicked position. The raw beat is
// quantized to the grid; if the click lands inside an existing note's span
// on the same pitch that note is removed, otherwise a sixteenth note is
// inserted. The scan-before-insert keeps (pitch, start) unique.
func (t *Track) Toggle(pitch int, rawBeat float64) ToggleResult {
	if pitch < 0 || pitch > 127 || rawBeat < 0 {
		return ToggleIgnored
	}
	beat := Quantize(rawBeat)
	p := uint8(pitch)
	for i, n := range t.Notes {
		if n.Pitch == p && n.Start <= beat && beat < n.Start+n.Duration {
			t.Notes = append(t.Notes[:i], t.Notes[i+1:]...)
			return ToggleRemoved
		}
	}
	t.Notes = append(t.Notes, Note{
		Pitch:    p,
		Start:    beat,
		Duration: DefaultDuration,
		Velocity: DefaultVelocity,
	})
	return ToggleInserted
}

// Clear empties the note grid.
func (t *Track) Clear() {
	t.Notes = nil
}

// SetChannel updates the output channel. Out-of-range values are rejected
// and the prior channel kept.
func (t *Track) SetChannel(ch int) bool {
	if ch < 0 || ch > 15 {
		return false
	}
	t.Channel = uint8(ch)
	return true
}

// SetInstrument updates the program number. Accepts 0-127 or the
// percussion sentinel; anything else is rejected.
func (t *Track) SetInstrument(prog int) bool {
	if (prog < 0 || prog > 127) && prog != PercussionProgram {
		return false
	}
	t.Instrument = prog
	return true
}
