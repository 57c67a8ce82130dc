package sequencer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportSMFShape(t *testing.T) {
	seq := NewSequence()
	seq.SetBPM(90)
	seq.Tracks[0].Toggle(60, 0)
	seq.Tracks[0].Toggle(64, 1)
	seq.Tracks[1].Toggle(36, 0.5)
	seq.Tracks[1].Muted = true // mute is a playback concern, still rendered

	file, err := ExportSMF(seq)
	require.NoError(t, err)
	assert.Equal(t, NumTracks, len(file.Tracks))

	// Track 0: name + tempo + program change + 2 on/off pairs + end of track.
	assert.Len(t, file.Tracks[0], 8)
	// Track 1: name + program change + 1 pair + end of track.
	assert.Len(t, file.Tracks[1], 5)
	// Empty track still carries its name, program change and end marker.
	assert.Len(t, file.Tracks[2], 3)
}

func TestExportSMFPercussionHasNoProgramChange(t *testing.T) {
	seq := NewSequence()
	seq.Tracks[0].SetInstrument(PercussionProgram)
	seq.Tracks[0].Toggle(36, 0)

	file, err := ExportSMF(seq)
	require.NoError(t, err)
	// name + tempo + on + off + end of track, no program change
	assert.Len(t, file.Tracks[0], 5)
}

func TestWriteSMF(t *testing.T) {
	seq := NewSequence()
	seq.Tracks[0].Toggle(60, 0)
	path := t.TempDir() + "/out.mid"
	require.NoError(t, WriteSMF(seq, path))
}
