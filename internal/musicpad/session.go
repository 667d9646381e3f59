package musicpad

import (
	"fmt"
	"math"

	"github.com/satindergrewal/voicepad/internal/audio"
)

// NearZero is the gain floor used instead of silence. Exponential curves never
// reach zero and a hard zero on a running oscillator clicks.
const NearZero = 0.0001

const (
	stepTau       = 0.09 // s, gain approach per step
	vibratoDepth  = 3.0  // Hz
	vibratoRate   = 0.9  // rad per step
	vibratoWindow = 0.22 // s

	pulseWaveform   = audio.Sawtooth
	pulseFrequency  = 45.0 // Hz
	pulseAccent     = 0.2
	pulseWeak       = 0.05
	pulseAttackTau  = 0.03
	pulseReleaseAt  = 0.12
	pulseReleaseTau = 0.08

	masterReleaseTau = 0.12
	voiceReleaseTau  = 0.1
	oscillatorTail   = 0.3
	teardownGrace    = 0.45
)

// Intensity is the gain a voice approaches on a step of the given strength.
func Intensity(baseGain, strength float64) float64 {
	if strength == 0 {
		return NearZero
	}
	return math.Max(baseGain*strength, NearZero)
}

// Vibrato is the frequency offset in Hz applied to sparkle voice i on a step.
func Vibrato(step, voice int) float64 {
	return vibratoDepth * math.Sin(float64(step+voice)*vibratoRate)
}

// Downbeat reports whether a step carries the accented pulse.
func Downbeat(step int) bool {
	return step%4 == 0
}

// PulseLevel is the peak gain of the sub pulse on a step.
func PulseLevel(step int) float64 {
	if Downbeat(step) {
		return pulseAccent
	}
	return pulseWeak
}

type voice struct {
	osc  *audio.OscillatorNode
	gain *audio.GainNode
	note float64
}

type track struct {
	def    TrackDefinition
	voices []voice
}

// Session is one playing instance of the pad: a context and every node in it.
// It is owned by a single goroutine.
type Session struct {
	ctx    *audio.Context
	master *audio.GainNode
	pulse  voice
	tracks []track

	step     int
	period   float64 // s between steps
	nextTick float64
	lastTick float64

	stopped   bool
	releaseAt float64
	released  bool
}

func newSession(ctx *audio.Context, cfg Config) (*Session, error) {
	now := ctx.CurrentTime()
	s := &Session{
		ctx:      ctx,
		period:   cfg.StepInterval().Seconds(),
		lastTick: math.NaN(),
	}
	s.nextTick = now + s.period

	s.master = ctx.CreateGain()
	s.master.Gain.SetValue(cfg.MasterGain)
	if err := s.master.Connect(ctx.Destination()); err != nil {
		return nil, fmt.Errorf("connect master: %w", err)
	}

	for i, def := range cfg.Tracks {
		tr := track{def: def}
		for _, note := range def.Notes {
			v, err := s.newVoice(def.Waveform, note, now)
			if err != nil {
				return nil, fmt.Errorf("track %d (%s): %w", i, def.Type, err)
			}
			tr.voices = append(tr.voices, v)
		}
		s.tracks = append(s.tracks, tr)
	}

	pulse, err := s.newVoice(pulseWaveform, pulseFrequency, now)
	if err != nil {
		return nil, fmt.Errorf("pulse: %w", err)
	}
	s.pulse = pulse
	return s, nil
}

// newVoice builds oscillator -> gain -> master and starts the oscillator. It
// keeps running for the whole session; only its gain moves.
func (s *Session) newVoice(w audio.Waveform, freq, now float64) (voice, error) {
	gain := s.ctx.CreateGain()
	gain.Gain.SetValue(NearZero)
	if err := gain.Connect(s.master); err != nil {
		return voice{}, err
	}
	osc := s.ctx.CreateOscillator()
	osc.Type = w
	osc.Frequency.SetValue(freq)
	if err := osc.Connect(gain); err != nil {
		return voice{}, err
	}
	if err := osc.Start(now); err != nil {
		return voice{}, err
	}
	return voice{osc: osc, gain: gain, note: freq}, nil
}

// Step returns the number of steps played so far.
func (s *Session) Step() int { return s.step }

// Stopped reports whether stop has been called.
func (s *Session) Stopped() bool { return s.stopped }

// Released reports whether the session's nodes and context are gone.
func (s *Session) Released() bool { return s.released }

// tick advances the sequencer by one step at the current context time.
func (s *Session) tick() {
	now := s.ctx.CurrentTime()
	for _, tr := range s.tracks {
		strength := tr.def.Strength(s.step)
		target := Intensity(tr.def.BaseGain, strength)
		for i, v := range tr.voices {
			v.gain.Gain.CancelScheduledValues(now)
			v.gain.Gain.SetTargetAtTime(target, now, stepTau)

			if tr.def.Type == Sparkle {
				v.osc.Frequency.SetValueAtTime(v.note, now)
				v.osc.Frequency.ExponentialRampToValueAtTime(v.note+Vibrato(s.step, i), now+vibratoWindow)
			}
		}
	}

	g := s.pulse.gain.Gain
	g.CancelScheduledValues(now)
	g.SetTargetAtTime(PulseLevel(s.step), now, pulseAttackTau)
	g.SetTargetAtTime(NearZero, now+pulseReleaseAt, pulseReleaseTau)

	s.lastTick = now
	s.step++
}

// render produces n samples, firing every step that falls inside them at its
// exact sample. A stopped session renders its fade without ticking.
func (s *Session) render(n int) []float64 {
	out := make([]float64, 0, n)
	for len(out) < n {
		chunk := n - len(out)
		if !s.stopped {
			until := s.ctx.SamplesUntil(s.nextTick)
			if until == 0 {
				s.tick()
				s.nextTick += s.period
				continue
			}
			chunk = min(chunk, until)
		}
		out = append(out, s.ctx.Render(chunk)...)
	}
	return out
}

// stop halts the step clock and fades everything toward the floor. The nodes
// stay alive until expired reports true.
func (s *Session) stop() {
	if s.stopped {
		return
	}
	s.stopped = true
	now := s.ctx.CurrentTime()

	s.master.Gain.CancelScheduledValues(now)
	s.master.Gain.SetTargetAtTime(NearZero, now, masterReleaseTau)

	for _, tr := range s.tracks {
		for _, v := range tr.voices {
			v.gain.Gain.CancelScheduledValues(now)
			v.gain.Gain.SetTargetAtTime(NearZero, now, voiceReleaseTau)
			v.osc.Stop(now + oscillatorTail)
		}
	}

	s.pulse.gain.Gain.CancelScheduledValues(now)
	s.pulse.gain.Gain.SetTargetAtTime(NearZero, now, pulseReleaseTau)
	s.pulse.osc.Stop(now + oscillatorTail)

	s.releaseAt = now + teardownGrace
}

// expired reports whether a stopped session has outlived its grace window.
func (s *Session) expired() bool {
	return s.stopped && s.ctx.SamplesUntil(s.releaseAt) == 0
}

// release disconnects every gain and closes the context. It is idempotent.
func (s *Session) release() error {
	if s.released {
		return nil
	}
	s.released = true

	s.master.Disconnect()
	s.pulse.gain.Disconnect()
	for _, tr := range s.tracks {
		for _, v := range tr.voices {
			v.gain.Disconnect()
		}
	}
	if err := s.ctx.Close(); err != nil {
		return fmt.Errorf("close context: %w", err)
	}
	return nil
}
