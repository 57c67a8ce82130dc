package midi

import (
	"fmt"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

// Router opens hardware MIDI output ports on demand and memoizes the
// senders so every track referencing the same port shares one connection.
type Router struct {
	mu      sync.RWMutex
	senders map[string]func(gomidi.Message) error
}

// NewRouter creates an empty router. Ports are opened on first use.
func NewRouter() *Router {
	return &Router{senders: make(map[string]func(gomidi.Message) error)}
}

// Open returns the sink for a port name, opening the port on first use.
// Safe to call from the tick loop and the edit surface concurrently.
func (r *Router) Open(ref string) (Sink, error) {
	if ref == "" {
		return nil, fmt.Errorf("empty port name")
	}

	r.mu.RLock()
	if send, ok := r.senders[ref]; ok {
		r.mu.RUnlock()
		return portSink{send: send}, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if send, ok := r.senders[ref]; ok {
		return portSink{send: send}, nil
	}

	for _, port := range gomidi.GetOutPorts() {
		if port.String() == ref {
			send, err := gomidi.SendTo(port)
			if err != nil {
				return nil, fmt.Errorf("open port %q: %w", ref, err)
			}
			r.senders[ref] = send
			return portSink{send: send}, nil
		}
	}
	return nil, fmt.Errorf("port %q not found", ref)
}

// Ports lists the currently available output port names.
func (r *Router) Ports() []string {
	ports := gomidi.GetOutPorts()
	names := make([]string, 0, len(ports))
	for _, p := range ports {
		names = append(names, p.String())
	}
	return names
}

// portSink adapts a gomidi sender to the Sink interface.
type portSink struct {
	send func(gomidi.Message) error
}

func (s portSink) NoteOn(channel, key, velocity uint8) error {
	return s.send(gomidi.NoteOn(channel, key, velocity))
}

func (s portSink) NoteOff(channel, key uint8) error {
	return s.send(gomidi.NoteOff(channel, key))
}

func (s portSink) ProgramChange(channel, program uint8) error {
	return s.send(gomidi.ProgramChange(channel, program))
}
