package sequencer

// NumTracks is fixed: the editor is a 4-track sequencer.
const NumTracks = 4

// BPM bounds; updates outside this range are ignored.
const (
	MinBPM = 40
	MaxBPM = 240
)

// TrackColors are the four lane colors, in track order.
var TrackColors = [NumTracks]string{"#3b82f6", "#10b981", "#f59e0b", "#ef4444"}

// Sequence is the serialization root: four tracks plus tempo and the
// active-track selection. The active track receives new notes from edit
// commands; it has no effect on playback.
type Sequence struct {
	BPM         int
	Tracks      [NumTracks]*Track
	ActiveTrack int
}

// NewSequence creates a fresh sequence: four empty tracks at 120 BPM.
func NewSequence() *Sequence {
	s := &Sequence{BPM: 120}
	names := [NumTracks]string{"Track 1", "Track 2", "Track 3", "Track 4"}
	for i := 0; i < NumTracks; i++ {
		s.Tracks[i] = NewTrack(i, names[i], TrackColors[i])
	}
	return s
}

// SetBPM updates the tempo. Out-of-range values are rejected and the
// prior tempo kept.
func (s *Sequence) SetBPM(bpm int) bool {
	if bpm < MinBPM || bpm > MaxBPM {
		return false
	}
	s.BPM = bpm
	return true
}

// SetActiveTrack selects which track edit commands target.
func (s *Sequence) SetActiveTrack(idx int) bool {
	if idx < 0 || idx >= NumTracks {
		return false
	}
	s.ActiveTrack = idx
	return true
}

// MsPerBeat is the wall-clock duration of one beat in milliseconds.
func (s *Sequence) MsPerBeat() float64 {
	return 60000.0 / float64(s.BPM)
}
