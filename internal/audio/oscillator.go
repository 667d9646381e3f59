package audio

import (
	"fmt"
	"math"
)

// Waveform selects the shape of an oscillator's output.
type Waveform string

const (
	Sine     Waveform = "sine"
	Triangle Waveform = "triangle"
	Square   Waveform = "square"
	Sawtooth Waveform = "sawtooth"
)

// ParseWaveform validates a waveform name.
func ParseWaveform(s string) (Waveform, error) {
	switch w := Waveform(s); w {
	case Sine, Triangle, Square, Sawtooth:
		return w, nil
	}
	return "", fmt.Errorf("unknown waveform %q", s)
}

// Sample returns the waveform's value at phase in [0,1).
func (w Waveform) Sample(phase float64) float64 {
	switch w {
	case Triangle:
		switch {
		case phase < 0.25:
			return 4 * phase
		case phase < 0.75:
			return 2 - 4*phase
		default:
			return 4*phase - 4
		}
	case Square:
		if phase < 0.5 {
			return 1
		}
		return -1
	case Sawtooth:
		return 2*phase - 1
	}
	return math.Sin(2 * math.Pi * phase)
}

// OscillatorNode is a periodic source. It is silent until started and after
// it has been stopped; it can be started only once.
type OscillatorNode struct {
	node
	Type      Waveform
	Frequency *Param

	phase   float64
	started bool
	startAt float64
	stopAt  float64
}

// Start schedules the oscillator to begin at context time when.
func (o *OscillatorNode) Start(when float64) error {
	if o.started {
		return ErrInvalidState
	}
	o.started = true
	o.startAt = when
	return nil
}

// Stop schedules the oscillator to fall silent at context time when. Calling
// Stop again reschedules the end.
func (o *OscillatorNode) Stop(when float64) error {
	if !o.started {
		return ErrInvalidState
	}
	o.stopAt = when
	return nil
}

// Playing reports whether the oscillator produces output at time t.
func (o *OscillatorNode) Playing(t float64) bool {
	return o.started && t >= o.startAt && t < o.stopAt
}

func (o *OscillatorNode) fill(buf []float64) {
	rate := float64(o.ctx.sampleRate)
	for i := range buf {
		t := o.ctx.sampleTime(i)
		if !o.Playing(t) {
			continue
		}
		buf[i] = o.Type.Sample(o.phase)
		o.phase += o.Frequency.ValueAt(t) / rate
		o.phase -= math.Floor(o.phase)
	}
}

func (o *OscillatorNode) params() []*Param { return []*Param{o.Frequency} }
