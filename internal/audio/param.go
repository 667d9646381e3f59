package audio

import (
	"math"
	"sort"
)

type eventKind int

const (
	setValue eventKind = iota
	linearRamp
	exponentialRamp
	setTarget
)

type event struct {
	kind  eventKind
	time  float64
	value float64
	tau   float64

	// from holds the starting value of a setTarget curve whose preceding
	// events were compacted away.
	from     float64
	resolved bool
}

// Param is the automation timeline of a single node parameter such as a gain
// or an oscillator frequency. Between scheduled events the value follows the
// same curves as a browser AudioParam.
type Param struct {
	value  float64
	events []event
}

func newParam(v float64) *Param {
	return &Param{value: v}
}

// SetValue sets the intrinsic value and drops every scheduled event.
func (p *Param) SetValue(v float64) {
	p.value = v
	p.events = nil
}

// SetValueAtTime jumps to v at time t.
func (p *Param) SetValueAtTime(v, t float64) {
	p.insert(event{kind: setValue, time: t, value: v})
}

// LinearRampToValueAtTime ramps linearly from the previous event to v, reaching
// it at time t.
func (p *Param) LinearRampToValueAtTime(v, t float64) {
	p.insert(event{kind: linearRamp, time: t, value: v})
}

// ExponentialRampToValueAtTime ramps exponentially from the previous event to
// v, reaching it at time t. When the start and end values are zero or differ
// in sign the previous value is held until t.
func (p *Param) ExponentialRampToValueAtTime(v, t float64) {
	p.insert(event{kind: exponentialRamp, time: t, value: v})
}

// SetTargetAtTime approaches target exponentially from time t with time
// constant tau (seconds). A non-positive tau jumps to target at t.
func (p *Param) SetTargetAtTime(target, t, tau float64) {
	p.insert(event{kind: setTarget, time: t, value: target, tau: tau})
}

// CancelScheduledValues removes every event scheduled at or after t. If a ramp
// was in progress at t, the value it had reached is held.
func (p *Param) CancelScheduledValues(t float64) {
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].time >= t })
	if i == len(p.events) {
		return
	}
	var held float64
	k := p.events[i].kind
	ramping := k == linearRamp || k == exponentialRamp
	if ramping {
		held = p.ValueAt(t)
	}
	p.events = p.events[:i]
	if ramping {
		p.events = append(p.events, event{kind: setValue, time: t, value: held})
	}
}

// ValueAt returns the parameter value at time t.
func (p *Param) ValueAt(t float64) float64 {
	return evaluate(p.value, p.events, t)
}

// Pending reports the number of events still on the timeline.
func (p *Param) Pending() int {
	return len(p.events)
}

// insert keeps events ordered by time; events sharing a time keep their
// insertion order.
func (p *Param) insert(e event) {
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].time > e.time })
	p.events = append(p.events, event{})
	copy(p.events[i+1:], p.events[i:])
	p.events[i] = e
}

// compact folds events that can no longer influence values at or after now.
func (p *Param) compact(now float64) {
	k := sort.Search(len(p.events), func(i int) bool { return p.events[i].time > now }) - 1
	if k < 1 {
		return
	}
	last := p.events[k]
	switch last.kind {
	case setTarget:
		if !last.resolved {
			last.from = evaluate(p.value, p.events[:k], last.time)
			last.resolved = true
		}
	case linearRamp, exponentialRamp:
		last.kind = setValue
	}
	p.events = append(p.events[:0], p.events[k:]...)
	p.events[0] = last
}

func evaluate(initial float64, events []event, t float64) float64 {
	var (
		hold      = initial
		targeting bool
		target    float64
		tau       float64
		t0, v0    float64
		prevTime  float64
		prevValue = initial
	)
	current := func(x float64) float64 {
		if targeting {
			return target + (v0-target)*math.Exp(-(x-t0)/tau)
		}
		return hold
	}

	for _, e := range events {
		if e.time > t {
			if e.time <= prevTime {
				return current(t)
			}
			switch e.kind {
			case linearRamp:
				return prevValue + (e.value-prevValue)*(t-prevTime)/(e.time-prevTime)
			case exponentialRamp:
				if prevValue*e.value > 0 {
					return prevValue * math.Pow(e.value/prevValue, (t-prevTime)/(e.time-prevTime))
				}
				return prevValue
			}
			return current(t)
		}

		before := current(e.time)
		switch e.kind {
		case setTarget:
			from := before
			if e.resolved {
				from = e.from
			}
			if e.tau <= 0 {
				targeting, hold, prevValue = false, e.value, e.value
			} else {
				targeting, target, tau, t0, v0 = true, e.value, e.tau, e.time, from
				prevValue = from
			}
		default:
			targeting, hold, prevValue = false, e.value, e.value
		}
		prevTime = e.time
	}
	return current(t)
}
