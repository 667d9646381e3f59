// Package api serves the music pad's JSON control surface and offers a client
// for it.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/satindergrewal/voicepad/internal/content"
	"github.com/satindergrewal/voicepad/internal/musicpad"
	"github.com/satindergrewal/voicepad/internal/stream"
)

// Music is the slice of the engine the API drives.
type Music interface {
	Status() musicpad.Status
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Snapshot is the /api/status body.
type Snapshot struct {
	Music       musicpad.Status `json:"music"`
	Listeners   map[string]int  `json:"listeners"`
	WebRTCPeers int             `json:"webrtc_peers"`
	FramesSent  uint64          `json:"frames_sent"`
}

// Server holds what the routes report on. Broadcaster and Peers may be nil
// when nothing is streamed.
type Server struct {
	Music       Music
	Broadcaster *stream.Broadcaster
	Peers       func() int
	Catalog     content.Catalog
	Tracks      []musicpad.TrackDefinition
}

// Register mounts the /api routes on mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/music/start", s.handleStart)
	mux.HandleFunc("/api/music/stop", s.handleStop)
	mux.HandleFunc("/api/content", s.handleContent)
	mux.HandleFunc("/api/tracks", s.handleTracks)
}

// Snapshot gathers the current status.
func (s *Server) Snapshot() Snapshot {
	snap := Snapshot{Music: s.Music.Status(), Listeners: map[string]int{}}
	if s.Broadcaster != nil {
		snap.Listeners = s.Broadcaster.Counts()
		snap.FramesSent = s.Broadcaster.FramesSent()
	}
	if s.Peers != nil {
		snap.WebRTCPeers = s.Peers()
	}
	return snap
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	writeJSON(w, http.StatusOK, s.Snapshot())
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	err := s.Music.Start(r.Context())
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, s.Music.Status())
	case errors.Is(err, musicpad.ErrUnsupported):
		// The UI disables its toggle from the returned status.
		writeJSON(w, http.StatusServiceUnavailable, s.Music.Status())
	default:
		log.Printf("Music start: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	if err := s.Music.Stop(r.Context()); err != nil {
		log.Printf("Music stop: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, s.Music.Status())
}

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Catalog)
}

func (s *Server) handleTracks(w http.ResponseWriter, r *http.Request) {
	data, err := musicpad.MarshalTracks(s.Tracks)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.Write(data)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
