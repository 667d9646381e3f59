package musicpad

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/satindergrewal/voicepad/internal/audio"
)

const (
	DefaultBPM          = 92
	DefaultStepDivision = 2
	DefaultMasterGain   = 0.22
)

var (
	// ErrUnsupported is returned by Start when the host cannot synthesize audio.
	ErrUnsupported = errors.New("music pad unsupported on this host")
	// ErrNotRunning is returned when the engine loop has exited.
	ErrNotRunning = errors.New("music pad engine not running")
)

// Config holds the engine's musical parameters.
type Config struct {
	BPM          float64
	StepDivision int // steps per beat
	MasterGain   float64
	Tracks       []TrackDefinition
}

// DefaultConfig returns the built-in tempo, level and tracks.
func DefaultConfig() Config {
	return Config{
		BPM:          DefaultBPM,
		StepDivision: DefaultStepDivision,
		MasterGain:   DefaultMasterGain,
		Tracks:       DefaultTracks(),
	}
}

// StepInterval is the step clock period, 60000/bpm/division milliseconds.
func (c Config) StepInterval() time.Duration {
	return time.Duration(float64(time.Minute) / c.BPM / float64(c.StepDivision))
}

// Validate checks the tempo, level and every track.
func (c Config) Validate() error {
	if c.BPM <= 0 {
		return fmt.Errorf("bpm must be positive, got %v", c.BPM)
	}
	if c.StepDivision <= 0 {
		return fmt.Errorf("step division must be positive, got %d", c.StepDivision)
	}
	if c.MasterGain < 0 || c.MasterGain > 1 {
		return fmt.Errorf("master gain %v outside [0,1]", c.MasterGain)
	}
	for i, d := range c.Tracks {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("track %d: %w", i, err)
		}
	}
	return nil
}

// Status is a snapshot of the engine for the UI shell.
type Status struct {
	Playing        bool    `json:"playing"`
	Supported      bool    `json:"supported"`
	Step           int     `json:"step"`
	Draining       int     `json:"draining"` // stopped sessions still fading out
	BPM            float64 `json:"bpm"`
	StepIntervalMs float64 `json:"step_interval_ms"`
}

type op int

const (
	opStart op = iota
	opStop
)

type command struct {
	op    op
	reply chan error
}

// Engine is the music pad sequencer. Run owns every session and audio node;
// Start and Stop are messages to it, so no node is touched from two goroutines.
type Engine struct {
	cfg     Config
	factory audio.Factory
	cmdCh   chan command
	frameCh chan []int16
	done    chan struct{}

	mu     sync.RWMutex
	status Status

	// owned by Run
	active      *Session
	draining    []*Session
	unsupported bool
	sessions    int
}

// New creates an engine that allocates contexts from factory.
func New(cfg Config, factory audio.Factory) *Engine {
	return &Engine{
		cfg:     cfg,
		factory: factory,
		cmdCh:   make(chan command),
		frameCh: make(chan []int16, 100),
		done:    make(chan struct{}),
		status: Status{
			Supported:      true,
			BPM:            cfg.BPM,
			StepIntervalMs: float64(cfg.StepInterval()) / float64(time.Millisecond),
		},
	}
}

// Frames returns the channel of outgoing PCM frames (20ms each).
func (e *Engine) Frames() <-chan []int16 {
	return e.frameCh
}

// Status returns the latest snapshot.
func (e *Engine) Status() Status {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.status
}

// Start begins playback. It is a no-op while a session is playing and returns
// ErrUnsupported, without sound, when the host cannot synthesize audio.
func (e *Engine) Start(ctx context.Context) error {
	return e.send(ctx, opStart)
}

// Stop halts the step clock and fades out. It is a no-op when nothing plays.
func (e *Engine) Stop(ctx context.Context) error {
	return e.send(ctx, opStop)
}

func (e *Engine) send(ctx context.Context, o op) error {
	reply := make(chan error, 1)
	select {
	case e.cmdCh <- command{op: o, reply: reply}:
	case <-e.done:
		return ErrNotRunning
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run renders frames at real-time rate until ctx is cancelled. Every session
// still alive when it returns is released.
func (e *Engine) Run(ctx context.Context) {
	defer close(e.frameCh)
	defer close(e.done)
	defer e.releaseAll()

	ticker := time.NewTicker(audio.FrameDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-e.cmdCh:
			cmd.reply <- e.handle(cmd.op)
		case <-ticker.C:
			frame := e.renderFrame()
			select {
			case e.frameCh <- frame:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (e *Engine) handle(o op) error {
	switch o {
	case opStart:
		return e.start()
	case opStop:
		e.stop()
	}
	return nil
}

func (e *Engine) start() error {
	if e.active != nil {
		return nil
	}
	if e.unsupported {
		return ErrUnsupported
	}

	actx, err := e.factory()
	if err == nil {
		if err = actx.Resume(); err != nil {
			actx.Close()
		}
	}
	if err != nil {
		e.unsupported = true
		e.publish()
		log.Printf("Music pad unsupported: %v", err)
		return fmt.Errorf("%w: %w", ErrUnsupported, err)
	}

	sess, err := newSession(actx, e.cfg)
	if err != nil {
		actx.Close()
		return fmt.Errorf("build session: %w", err)
	}
	e.active = sess
	e.sessions++
	e.publish()
	log.Printf("Music started (session %d, %.0f bpm, step %v)", e.sessions, e.cfg.BPM, e.cfg.StepInterval())
	return nil
}

func (e *Engine) stop() {
	if e.active == nil {
		return
	}
	e.active.stop()
	e.draining = append(e.draining, e.active)
	log.Printf("Music stopped after %d steps", e.active.Step())
	e.active = nil
	e.publish()
}

// renderFrame mixes the playing session with any sessions still fading out
// and releases those whose grace window has passed.
func (e *Engine) renderFrame() []int16 {
	mix := make([]float64, audio.FrameSize)
	if e.active != nil {
		addInto(mix, e.active.render(audio.FrameSize))
	}

	kept := e.draining[:0]
	for _, s := range e.draining {
		addInto(mix, s.render(audio.FrameSize))
		if s.expired() {
			if err := s.release(); err != nil {
				log.Printf("Music teardown: %v", err)
			}
			continue
		}
		kept = append(kept, s)
	}
	clear(e.draining[len(kept):])
	e.draining = kept

	e.publish()
	return audio.FloatsToFrame(mix)
}

func (e *Engine) releaseAll() {
	if e.active != nil {
		e.active.stop()
		e.draining = append(e.draining, e.active)
		e.active = nil
	}
	for _, s := range e.draining {
		if err := s.release(); err != nil {
			log.Printf("Music teardown: %v", err)
		}
	}
	e.draining = nil
	e.publish()
}

func (e *Engine) publish() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.status.Playing = e.active != nil
	e.status.Supported = !e.unsupported
	e.status.Draining = len(e.draining)
	if e.active != nil {
		e.status.Step = e.active.Step()
	}
}

func addInto(dst, src []float64) {
	for i, v := range src {
		dst[i] += v
	}
}
