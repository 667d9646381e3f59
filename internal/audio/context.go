package audio

import (
	"fmt"
	"math"
)

// Context owns an audio graph and its sample clock. Its time advances only
// while it is running and only as samples are rendered. A Context is not safe
// for concurrent use; one goroutine owns it.
type Context struct {
	sampleRate int
	state      State
	frame      int64 // samples rendered since creation
	block      uint64
	dest       *DestinationNode
	nodes      []filler
}

// Factory allocates a fresh Context.
type Factory func() (*Context, error)

// NewFactory returns a Factory producing contexts at the given sample rate.
func NewFactory(sampleRate int) Factory {
	return func() (*Context, error) {
		return NewContext(sampleRate), nil
	}
}

// Unsupported returns a Factory that always fails with ErrUnsupported.
func Unsupported(reason error) Factory {
	return func() (*Context, error) {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, reason)
	}
}

// NewContext creates a suspended context.
func NewContext(sampleRate int) *Context {
	c := &Context{sampleRate: sampleRate}
	c.dest = &DestinationNode{}
	c.dest.node = node{ctx: c, self: c.dest, sink: true}
	return c
}

// SampleRate returns the context's sample rate in Hz.
func (c *Context) SampleRate() int { return c.sampleRate }

// State returns the lifecycle state.
func (c *Context) State() State { return c.state }

// CurrentTime returns the context time in seconds.
func (c *Context) CurrentTime() float64 {
	return float64(c.frame) / float64(c.sampleRate)
}

// Destination returns the output bus.
func (c *Context) Destination() *DestinationNode { return c.dest }

// Resume starts or continues the sample clock.
func (c *Context) Resume() error {
	if c.state == StateClosed {
		return ErrClosed
	}
	c.state = StateRunning
	return nil
}

// Suspend pauses the sample clock.
func (c *Context) Suspend() error {
	if c.state == StateClosed {
		return ErrClosed
	}
	c.state = StateSuspended
	return nil
}

// Close releases the graph. Closing a closed context returns ErrClosed.
func (c *Context) Close() error {
	if c.state == StateClosed {
		return ErrClosed
	}
	c.state = StateClosed
	for _, n := range c.nodes {
		n.(Node).Disconnect()
	}
	c.nodes = nil
	c.dest.inputs = nil
	return nil
}

// CreateGain adds a gain node with unity gain.
func (c *Context) CreateGain() *GainNode {
	g := &GainNode{Gain: newParam(1)}
	g.node = node{ctx: c, self: g, sink: true}
	c.nodes = append(c.nodes, g)
	return g
}

// CreateOscillator adds a 440 Hz sine oscillator.
func (c *Context) CreateOscillator() *OscillatorNode {
	o := &OscillatorNode{Type: Sine, Frequency: newParam(440), stopAt: math.Inf(1)}
	o.node = node{ctx: c, self: o}
	c.nodes = append(c.nodes, o)
	return o
}

// Render produces the next n mono samples of the destination bus. A context
// that is not running yields silence and its clock stands still.
func (c *Context) Render(n int) []float64 {
	out := make([]float64, n)
	if c.state != StateRunning || n <= 0 {
		return out
	}
	c.block++
	copy(out, c.dest.pull(n))
	c.frame += int64(n)

	now := c.CurrentTime()
	for _, nd := range c.nodes {
		for _, p := range nd.params() {
			p.compact(now)
		}
	}
	return out
}

// SamplesUntil returns how many samples remain before context time t,
// rounded up so that rendering them reaches or passes t.
func (c *Context) SamplesUntil(t float64) int {
	n := int(math.Ceil(t*float64(c.sampleRate))) - int(c.frame)
	if n < 0 {
		return 0
	}
	return n
}

func (c *Context) sampleTime(i int) float64 {
	return float64(c.frame+int64(i)) / float64(c.sampleRate)
}
