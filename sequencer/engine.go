package sequencer

import (
	"os"
	"sync"
	"time"

	charmlog "github.com/charmbracelet/log"

	"grid-seq/midi"
)

// tickInterval bounds note-onset latency. Position is derived from wall
// clock deltas, so the cadence never affects long-run timing accuracy.
const tickInterval = 10 * time.Millisecond

// voice is what the engine remembers about a sounding note: the routing
// captured at note-on time, so a mid-playback channel change cannot orphan
// the note-off.
type voice struct {
	sink    midi.Sink // nil if the open failed; note-off is then a no-op
	channel uint8
	pitch   uint8
}

// sinkOp is a deferred sink call. Ops are collected while holding the
// engine mutex and sent after it is released, so sink I/O never blocks
// the edit surface.
type sinkOp struct {
	sink midi.Sink
	kind opKind
	ch   uint8
	key  uint8
	vel  uint8
}

type opKind int

const (
	opNoteOn opKind = iota
	opNoteOff
	opProgram
)

// Engine is the playback scheduler and the single entry point for edit
// and transport commands. One mutex guards the sequence and the sounding
// set; both the edit surface and the tick goroutine go through it.
type Engine struct {
	mu       sync.Mutex
	seq      *Sequence
	opener   midi.Opener
	playing  bool
	position float64 // in beats
	lastTick time.Time
	sounding map[NoteID]voice
	stopped  chan struct{} // closed by Stop, one per run

	now    func() time.Time // swapped out by tests
	logger *charmlog.Logger
}

// NewEngine wires a sequence to a sink opener. A nil opener leaves every
// track unrouted (useful for headless editing).
func NewEngine(seq *Sequence, opener midi.Opener) *Engine {
	return &Engine{
		seq:      seq,
		opener:   opener,
		sounding: make(map[NoteID]voice),
		now:      time.Now,
		logger: charmlog.NewWithOptions(os.Stderr, charmlog.Options{
			Prefix: "engine",
		}),
	}
}

// Snapshot returns a read-only copy of the sequence and transport state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	pos := 0.0
	if e.playing {
		pos = e.position
	}
	return snapshotLocked(e.seq, e.playing, pos)
}

// Edit surface. Each command maps to exactly one model mutation; range
// violations are ignored and the prior state kept.

// ToggleNote adds or removes a note on the given track.
func (e *Engine) ToggleNote(track, pitch int, rawBeat float64) ToggleResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	if track < 0 || track >= NumTracks {
		return ToggleIgnored
	}
	return e.seq.Tracks[track].Toggle(pitch, rawBeat)
}

// ClearTrack empties a track's note grid.
func (e *Engine) ClearTrack(track int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if track >= 0 && track < NumTracks {
		e.seq.Tracks[track].Clear()
	}
}

// SetActiveTrack selects the track that receives new notes.
func (e *Engine) SetActiveTrack(track int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seq.SetActiveTrack(track)
}

// SetMuted flips a track's mute flag. Muting only suppresses new
// note-ons; anything already sounding ends on its own note-off.
func (e *Engine) SetMuted(track int, muted bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if track >= 0 && track < NumTracks {
		e.seq.Tracks[track].Muted = muted
	}
}

// SetBPM updates the tempo, taking effect on the next tick.
func (e *Engine) SetBPM(bpm int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seq.SetBPM(bpm)
}

// SetSink points a track at an output port.
func (e *Engine) SetSink(track int, ref string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if track >= 0 && track < NumTracks {
		e.seq.Tracks[track].SinkRef = ref
	}
}

// SetChannel updates a track's output channel and immediately re-sends
// its program change so the device is configured before the next play.
func (e *Engine) SetChannel(track, ch int) {
	e.mu.Lock()
	if track < 0 || track >= NumTracks || !e.seq.Tracks[track].SetChannel(ch) {
		e.mu.Unlock()
		return
	}
	ops := e.programChangeLocked(e.seq.Tracks[track])
	e.mu.Unlock()
	e.send(ops)
}

// SetInstrument updates a track's program number and immediately sends
// the program change, playing or not.
func (e *Engine) SetInstrument(track, prog int) {
	e.mu.Lock()
	if track < 0 || track >= NumTracks || !e.seq.Tracks[track].SetInstrument(prog) {
		e.mu.Unlock()
		return
	}
	ops := e.programChangeLocked(e.seq.Tracks[track])
	e.mu.Unlock()
	e.send(ops)
}

// Transport.

// Start begins playback from beat zero. Starting while already playing
// is a no-op. Program changes go out before any note event.
func (e *Engine) Start() {
	ops, stopped := e.begin(e.now())
	if stopped == nil {
		return
	}
	e.send(ops)
	go e.run(stopped)
}

// begin moves the state machine to Playing and returns the program
// changes to emit plus the stop channel for this run, or a nil channel
// if playback was already running.
func (e *Engine) begin(now time.Time) ([]sinkOp, chan struct{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.playing {
		return nil, nil
	}
	e.playing = true
	e.position = 0
	e.lastTick = now
	e.stopped = make(chan struct{})

	var ops []sinkOp
	for _, t := range e.seq.Tracks {
		ops = append(ops, e.programChangeLocked(t)...)
	}
	return ops, e.stopped
}

// Stop halts playback and flushes a note-off for every sounding note.
// Safe to call from any goroutine, and a no-op when already stopped.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.playing {
		e.mu.Unlock()
		return
	}
	e.playing = false
	e.position = 0
	close(e.stopped)
	ops := e.flushLocked()
	e.mu.Unlock()
	e.send(ops)
}

// Playing reports whether the transport is running.
func (e *Engine) Playing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playing
}

// Position returns the playhead in beats, 0 while stopped.
func (e *Engine) Position() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.playing {
		return 0
	}
	return e.position
}

// run is the tick loop. It only ever blocks on its own ticker; sink sends
// happen in tick after the mutex is released.
func (e *Engine) run(stopped chan struct{}) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stopped:
			return
		case <-ticker.C:
			if !e.tick(e.now()) {
				return
			}
		}
	}
}

// tick advances the playhead and derives note-on/off events. Returns
// false once the transport has settled into Stopped.
func (e *Engine) tick(now time.Time) bool {
	e.mu.Lock()
	if !e.playing {
		e.mu.Unlock()
		return false
	}

	delta := now.Sub(e.lastTick)
	e.lastTick = now
	e.position += delta.Seconds() * 1000.0 / e.seq.MsPerBeat()

	// End of the 16-beat timeline: one-shot playthrough, no auto-loop.
	if e.position >= LoopBeats {
		e.playing = false
		e.position = 0
		ops := e.flushLocked()
		e.mu.Unlock()
		e.send(ops)
		return false
	}

	pos := e.position
	var ops []sinkOp
	live := make(map[NoteID]bool)

	for _, t := range e.seq.Tracks {
		for _, n := range t.Notes {
			id := NoteID{Track: t.ID, Pitch: n.Pitch, Start: n.Start}
			live[id] = true
			end := n.Start + n.Duration

			if v, ok := e.sounding[id]; ok {
				if pos >= end {
					ops = append(ops, sinkOp{sink: v.sink, kind: opNoteOff, ch: v.channel, key: v.pitch})
					delete(e.sounding, id)
				}
				continue
			}
			if t.Muted || t.SinkRef == "" {
				continue
			}
			if n.Start <= pos && pos < end {
				sink := e.openLocked(t.SinkRef)
				e.sounding[id] = voice{sink: sink, channel: t.Channel, pitch: n.Pitch}
				ops = append(ops, sinkOp{sink: sink, kind: opNoteOn, ch: t.Channel, key: n.Pitch, vel: n.Velocity})
			}
		}
	}

	// Notes deleted from the grid mid-playback still get their note-off.
	for id, v := range e.sounding {
		if !live[id] {
			ops = append(ops, sinkOp{sink: v.sink, kind: opNoteOff, ch: v.channel, key: v.pitch})
			delete(e.sounding, id)
		}
	}

	e.mu.Unlock()
	e.send(ops)
	return true
}

// flushLocked drains the sounding set into note-off ops. Removing the
// entries under the lock guarantees exactly one note-off per note even if
// stop races with the tick loop.
func (e *Engine) flushLocked() []sinkOp {
	ops := make([]sinkOp, 0, len(e.sounding))
	for id, v := range e.sounding {
		ops = append(ops, sinkOp{sink: v.sink, kind: opNoteOff, ch: v.channel, key: v.pitch})
		delete(e.sounding, id)
	}
	return ops
}

// programChangeLocked builds the program-change op for a track, or none
// for unrouted and percussion tracks.
func (e *Engine) programChangeLocked(t *Track) []sinkOp {
	if t.SinkRef == "" || t.Instrument == PercussionProgram {
		return nil
	}
	sink := e.openLocked(t.SinkRef)
	if sink == nil {
		return nil
	}
	return []sinkOp{{sink: sink, kind: opProgram, ch: t.Channel, key: uint8(t.Instrument)}}
}

// openLocked resolves a sink reference, logging failures. The opener
// memoizes, so this is a map lookup after the first open.
func (e *Engine) openLocked(ref string) midi.Sink {
	if e.opener == nil {
		return nil
	}
	sink, err := e.opener.Open(ref)
	if err != nil {
		e.logger.Warn("sink unavailable", "port", ref, "err", err)
		return nil
	}
	return sink
}

// send dispatches collected ops outside the mutex. A failed send is
// logged and the rest of the batch still goes out; a broken output must
// never desynchronize the other tracks.
func (e *Engine) send(ops []sinkOp) {
	for _, op := range ops {
		if op.sink == nil {
			continue
		}
		var err error
		switch op.kind {
		case opNoteOn:
			err = op.sink.NoteOn(op.ch, op.key, op.vel)
		case opNoteOff:
			err = op.sink.NoteOff(op.ch, op.key)
		case opProgram:
			err = op.sink.ProgramChange(op.ch, op.key)
		}
		if err != nil {
			e.logger.Warn("send failed", "channel", op.ch, "key", op.key, "err", err)
		}
	}
}
