// Package api exposes the sequencer's command surface and render snapshot
// over HTTP, for collaborators that live outside the process.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"grid-seq/sequencer"
)

// Server binds an engine to HTTP handlers.
type Server struct {
	engine *sequencer.Engine
}

// NewHandler builds the API routes around an engine.
func NewHandler(engine *sequencer.Engine) http.Handler {
	s := &Server{engine: engine}
	r := mux.NewRouter()

	r.HandleFunc("/api/sequence", s.handleSnapshot).Methods(http.MethodGet)
	r.HandleFunc("/api/sequence/bpm", s.handleSetBPM).Methods(http.MethodPost)
	r.HandleFunc("/api/notes/toggle", s.handleToggle).Methods(http.MethodPost)
	r.HandleFunc("/api/tracks/{id}/clear", s.handleClear).Methods(http.MethodPost)
	r.HandleFunc("/api/tracks/{id}/mute", s.handleMute).Methods(http.MethodPost)
	r.HandleFunc("/api/tracks/{id}/routing", s.handleRouting).Methods(http.MethodPost)
	r.HandleFunc("/api/tracks/active", s.handleActive).Methods(http.MethodPost)
	r.HandleFunc("/api/transport/start", s.handleStart).Methods(http.MethodPost)
	r.HandleFunc("/api/transport/stop", s.handleStop).Methods(http.MethodPost)

	return cors.Default().Handler(r)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.engine.Snapshot())
}

type toggleRequest struct {
	Track int     `json:"track"`
	Pitch int     `json:"pitch"`
	Beat  float64 `json:"beat"`
}

type toggleResponse struct {
	Inserted bool `json:"inserted"`
	Removed  bool `json:"removed"`
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res := s.engine.ToggleNote(req.Track, req.Pitch, req.Beat)
	writeJSON(w, toggleResponse{
		Inserted: res == sequencer.ToggleInserted,
		Removed:  res == sequencer.ToggleRemoved,
	})
}

type bpmRequest struct {
	BPM int `json:"bpm"`
}

func (s *Server) handleSetBPM(w http.ResponseWriter, r *http.Request) {
	var req bpmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.engine.SetBPM(req.BPM)
	writeJSON(w, s.engine.Snapshot())
}

type muteRequest struct {
	Muted bool `json:"muted"`
}

func (s *Server) handleMute(w http.ResponseWriter, r *http.Request) {
	id, ok := trackID(w, r)
	if !ok {
		return
	}
	var req muteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.engine.SetMuted(id, req.Muted)
	writeJSON(w, s.engine.Snapshot())
}

type routingRequest struct {
	Channel    *int    `json:"channel,omitempty"`
	Instrument *int    `json:"instrument,omitempty"`
	Sink       *string `json:"sink,omitempty"`
}

func (s *Server) handleRouting(w http.ResponseWriter, r *http.Request) {
	id, ok := trackID(w, r)
	if !ok {
		return
	}
	var req routingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Sink != nil {
		s.engine.SetSink(id, *req.Sink)
	}
	if req.Channel != nil {
		s.engine.SetChannel(id, *req.Channel)
	}
	if req.Instrument != nil {
		s.engine.SetInstrument(id, *req.Instrument)
	}
	writeJSON(w, s.engine.Snapshot())
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	id, ok := trackID(w, r)
	if !ok {
		return
	}
	s.engine.ClearTrack(id)
	writeJSON(w, s.engine.Snapshot())
}

type activeRequest struct {
	Track int `json:"track"`
}

func (s *Server) handleActive(w http.ResponseWriter, r *http.Request) {
	var req activeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.engine.SetActiveTrack(req.Track)
	writeJSON(w, s.engine.Snapshot())
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	s.engine.Start()
	writeJSON(w, s.engine.Snapshot())
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.engine.Stop()
	writeJSON(w, s.engine.Snapshot())
}

func trackID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "bad track id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
