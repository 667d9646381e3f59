package musicpad

import (
	"math"
	"testing"
	"time"

	"github.com/satindergrewal/voicepad/internal/audio"
)

func TestStepInterval(t *testing.T) {
	got := DefaultConfig().StepInterval()
	want := 60000.0 / 92 / 2 // ms
	if diff := math.Abs(float64(got)/float64(time.Millisecond) - want); diff > 1e-3 {
		t.Errorf("StepInterval = %v, want %.3fms", got, want)
	}
	if got.Round(time.Millisecond) != 326*time.Millisecond {
		t.Errorf("StepInterval rounds to %v, want 326ms", got.Round(time.Millisecond))
	}
}

func TestVibrato(t *testing.T) {
	for step := 0; step < 12; step++ {
		for voice := 0; voice < 4; voice++ {
			want := 3 * math.Sin(float64(step+voice)*0.9)
			if got := Vibrato(step, voice); got != want {
				t.Errorf("Vibrato(%d, %d) = %v, want %v", step, voice, got, want)
			}
		}
	}
}

func TestDownbeat(t *testing.T) {
	for step := 0; step < 64; step++ {
		strong := step%4 == 0
		if Downbeat(step) != strong {
			t.Errorf("Downbeat(%d) = %v, want %v", step, Downbeat(step), strong)
		}
		want := 0.05
		if strong {
			want = 0.2
		}
		if got := PulseLevel(step); got != want {
			t.Errorf("PulseLevel(%d) = %v, want %v", step, got, want)
		}
	}
}

func TestIntensity(t *testing.T) {
	tests := []struct {
		base, strength, want float64
	}{
		{0.22, 1, 0.22},
		{0.22, 0, NearZero},
		{0.2, 0.5, 0.1},
		{0, 1, NearZero},
	}
	for _, tt := range tests {
		if got := Intensity(tt.base, tt.strength); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Intensity(%v, %v) = %v, want %v", tt.base, tt.strength, got, tt.want)
		}
	}
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	ctx := audio.NewContext(audio.SampleRate)
	ctx.Resume()
	s, err := newSession(ctx, DefaultConfig())
	if err != nil {
		t.Fatalf("newSession: %v", err)
	}
	return s
}

// renderUntilStep renders whole frames until the session has played n steps.
func renderUntilStep(t *testing.T, s *Session, n int) {
	t.Helper()
	for i := 0; s.Step() < n; i++ {
		if i > 10000 {
			t.Fatalf("session stuck at step %d", s.Step())
		}
		s.render(audio.FrameSize)
	}
}

func TestSessionGraph(t *testing.T) {
	s := newTestSession(t)
	voices := 0
	for _, tr := range s.tracks {
		if len(tr.voices) != len(tr.def.Notes) {
			t.Errorf("track %s has %d voices for %d notes", tr.def.Type, len(tr.voices), len(tr.def.Notes))
		}
		for i, v := range tr.voices {
			if v.osc.Type != tr.def.Waveform {
				t.Errorf("%s voice %d waveform = %s", tr.def.Type, i, v.osc.Type)
			}
			if !v.osc.Playing(0) {
				t.Errorf("%s voice %d oscillator not running from the start", tr.def.Type, i)
			}
			if g := v.gain.Gain.ValueAt(0); g != NearZero {
				t.Errorf("%s voice %d initial gain = %v, want floor", tr.def.Type, i, g)
			}
		}
		voices += len(tr.voices)
	}
	if voices != 8 {
		t.Errorf("default session has %d voices, want 8", voices)
	}
	if s.pulse.osc.Type != audio.Sawtooth || s.pulse.note != 45 {
		t.Errorf("pulse = %s %vHz, want sawtooth 45Hz", s.pulse.osc.Type, s.pulse.note)
	}
	if g := s.master.Gain.ValueAt(0); g != 0.22 {
		t.Errorf("master gain = %v, want 0.22", g)
	}
}

func TestFirstTickAfterOnePeriod(t *testing.T) {
	s := newTestSession(t)
	renderUntilStep(t, s, 1)
	if math.Abs(s.lastTick-s.period) > 1.0/audio.SampleRate {
		t.Errorf("first tick at %v, want %v", s.lastTick, s.period)
	}
}

func TestTickPeriod(t *testing.T) {
	s := newTestSession(t)
	var ticks []float64
	for s.Step() < 10 {
		before := s.Step()
		s.render(audio.FrameSize)
		if s.Step() != before {
			ticks = append(ticks, s.lastTick)
		}
	}
	if len(ticks) != 10 {
		t.Fatalf("saw %d ticks, want 10 (more than one per frame?)", len(ticks))
	}
	period := 60.0 / 92 / 2
	for i := 1; i < len(ticks); i++ {
		if d := ticks[i] - ticks[i-1]; math.Abs(d-period) > 1.5/audio.SampleRate {
			t.Errorf("tick %d interval = %.6fs, want %.6fs", i, d, period)
		}
	}
}

func TestTickSchedulesGains(t *testing.T) {
	s := newTestSession(t)
	renderUntilStep(t, s, 1) // step 0 played
	far := s.lastTick + 5

	pad := s.tracks[0]
	for i, v := range pad.voices {
		if got := v.gain.Gain.ValueAt(far); math.Abs(got-0.22) > 1e-6 {
			t.Errorf("pad voice %d approaches %v, want 0.22", i, got)
		}
	}
	sparkle := s.tracks[1] // pattern[0] == 0
	for i, v := range sparkle.voices {
		if got := v.gain.Gain.ValueAt(far); math.Abs(got-NearZero) > 1e-6 {
			t.Errorf("sparkle voice %d approaches %v, want floor", i, got)
		}
		if got := v.gain.Gain.ValueAt(far); got <= 0 {
			t.Errorf("sparkle voice %d gain reached %v", i, got)
		}
	}
	if peak := s.pulse.gain.Gain.ValueAt(s.lastTick + 0.12); peak < 0.15 {
		t.Errorf("downbeat pulse peak = %v, want accent near 0.2", peak)
	}
}

func TestVibratoOnlyOnSparkle(t *testing.T) {
	s := newTestSession(t)
	renderUntilStep(t, s, 3)
	step := s.Step() - 1
	end := s.lastTick + 0.22

	for i, v := range s.tracks[1].voices {
		want := v.note + Vibrato(step, i)
		if got := v.osc.Frequency.ValueAt(end); math.Abs(got-want) > 1e-9 {
			t.Errorf("sparkle voice %d frequency = %v, want %v", i, got, want)
		}
	}
	for _, idx := range []int{0, 2} {
		tr := s.tracks[idx]
		for i, v := range tr.voices {
			if got := v.osc.Frequency.ValueAt(end); got != v.note {
				t.Errorf("%s voice %d frequency = %v, want fixed %v", tr.def.Type, i, got, v.note)
			}
		}
	}
}

func TestSessionProducesSound(t *testing.T) {
	s := newTestSession(t)
	peak := 0.0
	for i := 0; i < 50; i++ {
		for _, v := range s.render(audio.FrameSize) {
			peak = math.Max(peak, math.Abs(v))
		}
	}
	if peak < 0.001 {
		t.Errorf("session peak level %v, want audible output", peak)
	}
	if peak > 1 {
		t.Errorf("session peak level %v clips", peak)
	}
}

func TestStopFreezesClockAndFades(t *testing.T) {
	s := newTestSession(t)
	renderUntilStep(t, s, 4)
	s.stop()
	steps := s.Step()
	stoppedAt := s.ctx.CurrentTime()

	for i := 0; i < 10; i++ { // 200ms
		s.render(audio.FrameSize)
	}
	if s.Step() != steps {
		t.Errorf("step advanced from %d to %d after stop", steps, s.Step())
	}
	if s.expired() {
		t.Error("session expired before the grace window")
	}
	for _, tr := range s.tracks {
		for i, v := range tr.voices {
			if v.osc.Playing(stoppedAt + 0.3) {
				t.Errorf("%s voice %d still scheduled to play after the tail", tr.def.Type, i)
			}
		}
	}
	if g := s.master.Gain.ValueAt(stoppedAt + 1); g > 0.001 {
		t.Errorf("master gain after fade = %v", g)
	}

	for i := 0; i < 13; i++ { // past 450ms total
		s.render(audio.FrameSize)
	}
	if !s.expired() {
		t.Errorf("session not expired at %.3fs after stop", s.ctx.CurrentTime()-stoppedAt)
	}
}

func TestReleaseClosesContext(t *testing.T) {
	s := newTestSession(t)
	s.stop()
	if err := s.release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	if s.ctx.State() != audio.StateClosed {
		t.Errorf("context state = %v, want closed", s.ctx.State())
	}
	if !s.Released() {
		t.Error("Released() = false")
	}
	// idempotent, and a closed context is not an error the caller sees twice
	if err := s.release(); err != nil {
		t.Errorf("second release: %v", err)
	}
}
