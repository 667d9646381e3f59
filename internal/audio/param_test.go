package audio

import (
	"math"
	"testing"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSetValueAtTime(t *testing.T) {
	p := newParam(1)
	p.SetValueAtTime(0.5, 1)

	tests := []struct {
		at, want float64
	}{
		{0, 1},
		{0.999, 1},
		{1, 0.5},
		{5, 0.5},
	}
	for _, tt := range tests {
		if got := p.ValueAt(tt.at); got != tt.want {
			t.Errorf("ValueAt(%v) = %v, want %v", tt.at, got, tt.want)
		}
	}
}

func TestLinearRamp(t *testing.T) {
	p := newParam(0)
	p.SetValueAtTime(0, 0)
	p.LinearRampToValueAtTime(1, 1)

	for _, tt := range []struct{ at, want float64 }{{0, 0}, {0.25, 0.25}, {0.5, 0.5}, {1, 1}, {2, 1}} {
		if got := p.ValueAt(tt.at); !near(got, tt.want) {
			t.Errorf("ValueAt(%v) = %v, want %v", tt.at, got, tt.want)
		}
	}
}

func TestExponentialRamp(t *testing.T) {
	p := newParam(1)
	p.SetValueAtTime(100, 0)
	p.ExponentialRampToValueAtTime(400, 2)

	if got := p.ValueAt(1); !near(got, 200) {
		t.Errorf("midpoint = %v, want 200", got)
	}
	if got := p.ValueAt(2); got != 400 {
		t.Errorf("end = %v, want 400", got)
	}
}

func TestExponentialRampToZeroHolds(t *testing.T) {
	p := newParam(1)
	p.SetValueAtTime(1, 0)
	p.ExponentialRampToValueAtTime(0, 1)

	if got := p.ValueAt(0.5); got != 1 {
		t.Errorf("ValueAt(0.5) = %v, want held 1", got)
	}
	if got := p.ValueAt(1); got != 0 {
		t.Errorf("ValueAt(1) = %v, want 0", got)
	}
}

func TestSetTargetApproach(t *testing.T) {
	p := newParam(1)
	p.SetTargetAtTime(0, 0, 0.1)

	if got := p.ValueAt(0.1); !near(got, math.Exp(-1)) {
		t.Errorf("after one time constant = %v, want %v", got, math.Exp(-1))
	}
	if got := p.ValueAt(1); !near(got, math.Exp(-10)) {
		t.Errorf("after ten time constants = %v, want %v", got, math.Exp(-10))
	}
}

func TestSetTargetIsContinuous(t *testing.T) {
	p := newParam(0)
	p.SetTargetAtTime(1, 0, 0.1)
	p.SetTargetAtTime(0, 0.5, 0.1)

	before := p.ValueAt(0.5 - 1e-9)
	at := p.ValueAt(0.5)
	if !near(at, 1-math.Exp(-5)) {
		t.Errorf("ValueAt(0.5) = %v, want %v", at, 1-math.Exp(-5))
	}
	if math.Abs(before-at) > 1e-6 {
		t.Errorf("discontinuity at 0.5: %v -> %v", before, at)
	}
}

func TestSetTargetZeroTauJumps(t *testing.T) {
	p := newParam(1)
	p.SetTargetAtTime(0.25, 1, 0)
	if got := p.ValueAt(1); got != 0.25 {
		t.Errorf("ValueAt(1) = %v, want 0.25", got)
	}
}

func TestCancelHoldsRampInProgress(t *testing.T) {
	p := newParam(0)
	p.SetValueAtTime(0, 0)
	p.LinearRampToValueAtTime(1, 1)
	p.CancelScheduledValues(0.5)

	if got := p.ValueAt(0.75); !near(got, 0.5) {
		t.Errorf("ValueAt(0.75) = %v, want held 0.5", got)
	}
	if p.Pending() != 2 {
		t.Errorf("Pending = %d, want 2", p.Pending())
	}
}

func TestCancelDropsFutureEvents(t *testing.T) {
	p := newParam(0.3)
	p.SetValueAtTime(1, 2)
	p.CancelScheduledValues(1)

	if got := p.ValueAt(3); got != 0.3 {
		t.Errorf("ValueAt(3) = %v, want 0.3", got)
	}
	if p.Pending() != 0 {
		t.Errorf("Pending = %d, want 0", p.Pending())
	}
}

func TestCancelBeforeAnyEventIsNoop(t *testing.T) {
	p := newParam(0.3)
	p.SetValueAtTime(1, 0)
	p.CancelScheduledValues(5)
	if got := p.ValueAt(6); got != 1 {
		t.Errorf("ValueAt(6) = %v, want 1", got)
	}
}

func TestEventsKeepInsertionOrderAtSameTime(t *testing.T) {
	p := newParam(0)
	p.SetValueAtTime(1, 1)
	p.SetValueAtTime(2, 1)
	if got := p.ValueAt(1); got != 2 {
		t.Errorf("ValueAt(1) = %v, want last inserted 2", got)
	}
}

func TestCompactPreservesFutureValues(t *testing.T) {
	build := func() *Param {
		p := newParam(0.0001)
		for step := 0; step < 10; step++ {
			now := float64(step) * 0.3
			strength := 0.05
			if step%4 == 0 {
				strength = 0.2
			}
			p.CancelScheduledValues(now)
			p.SetTargetAtTime(strength, now, 0.03)
			p.SetTargetAtTime(0.0001, now+0.12, 0.08)
		}
		return p
	}

	ref := build()
	p := build()
	before := p.Pending()
	p.compact(2.0)
	if p.Pending() >= before {
		t.Errorf("compact did not shrink timeline: %d -> %d", before, p.Pending())
	}
	for at := 2.0; at < 4; at += 0.01 {
		if a, b := ref.ValueAt(at), p.ValueAt(at); !near(a, b) {
			t.Fatalf("ValueAt(%v): compacted %v, reference %v", at, b, a)
		}
	}
}

func TestCompactConvertsFinishedRamp(t *testing.T) {
	p := newParam(100)
	p.SetValueAtTime(100, 0)
	p.ExponentialRampToValueAtTime(200, 0.2)
	p.SetValueAtTime(100, 0.3)
	p.ExponentialRampToValueAtTime(300, 0.5)

	p.compact(0.25)
	if p.Pending() != 3 {
		t.Errorf("Pending = %d, want 3", p.Pending())
	}
	if got := p.ValueAt(0.25); got != 200 {
		t.Errorf("ValueAt(0.25) = %v, want 200", got)
	}
	if got := p.ValueAt(0.4); !near(got, 100*math.Sqrt(3)) {
		t.Errorf("ValueAt(0.4) = %v, want %v", got, 100*math.Sqrt(3))
	}
}
