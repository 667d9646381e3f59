package audio

import (
	"errors"
	"time"
)

const (
	SampleRate    = 48000
	Channels      = 2
	BitDepth      = 16
	FrameDuration = 20 * time.Millisecond
	FrameSize     = 960                  // samples per channel per 20ms frame
	FrameSamples  = FrameSize * Channels // total interleaved samples per frame
	FrameBytes    = FrameSamples * 2     // bytes per frame (int16 = 2 bytes)
)

var (
	// ErrClosed is returned when operating on a context that has been closed.
	ErrClosed = errors.New("audio: context closed")
	// ErrInvalidState is returned for node operations that are not allowed in
	// the node's current state, such as starting an oscillator twice.
	ErrInvalidState = errors.New("audio: invalid state")
	// ErrUnsupported signals that no synthesis backend is available on this host.
	ErrUnsupported = errors.New("audio: synthesis not supported")
)

// State is the lifecycle state of a Context.
type State int

const (
	StateSuspended State = iota
	StateRunning
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateSuspended:
		return "suspended"
	case StateRunning:
		return "running"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}
