// Package midi provides the output side of the sequencer: an opaque Sink
// capability and a Router that maps port names to lazily opened senders.
package midi

// Sink receives note and program-change events for one output destination.
// Implementations must be safe for concurrent use; the engine calls them
// from both the tick loop and the edit surface.
type Sink interface {
	NoteOn(channel, key, velocity uint8) error
	NoteOff(channel, key uint8) error
	ProgramChange(channel, program uint8) error
}

// Opener resolves a sink reference (a port name) to a Sink. Opening is
// lazy and memoized: the first reference opens the port, later references
// reuse it.
type Opener interface {
	Open(ref string) (Sink, error)
}
