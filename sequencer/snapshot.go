package sequencer

// Snapshot is the read-only view handed to UI collaborators. Everything
// in it is copied; holding one never observes later edits.
type Snapshot struct {
	BPM         int             `json:"bpm"`
	ActiveTrack int             `json:"activeTrack"`
	Playing     bool            `json:"playing"`
	Position    float64         `json:"position"` // in beats, 0 while stopped
	Tracks      []TrackSnapshot `json:"tracks"`
}

// TrackSnapshot is the per-track slice of a Snapshot.
type TrackSnapshot struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Color      string `json:"color"`
	Muted      bool   `json:"muted"`
	SinkRef    string `json:"sinkRef,omitempty"`
	Channel    uint8  `json:"channel"`
	Instrument int    `json:"instrument"`
	Notes      []Note `json:"notes"`
}

// snapshotLocked copies the sequence plus transport state. Caller holds
// the engine mutex.
func snapshotLocked(seq *Sequence, playing bool, position float64) Snapshot {
	snap := Snapshot{
		BPM:         seq.BPM,
		ActiveTrack: seq.ActiveTrack,
		Playing:     playing,
		Position:    position,
		Tracks:      make([]TrackSnapshot, NumTracks),
	}
	for i, t := range seq.Tracks {
		notes := make([]Note, len(t.Notes))
		copy(notes, t.Notes)
		snap.Tracks[i] = TrackSnapshot{
			ID:         t.ID,
			Name:       t.Name,
			Color:      t.Color,
			Muted:      t.Muted,
			SinkRef:    t.SinkRef,
			Channel:    t.Channel,
			Instrument: t.Instrument,
			Notes:      notes,
		}
	}
	return snap
}
