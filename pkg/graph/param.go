package graph

import (
	"math"
	"sort"
)

// ExpFloor is the smallest target an exponential ramp may reach. Exponential
// segments cannot pass through zero, so ramps "to silence" ramp here instead.
const ExpFloor = 0.001

type rampKind int

const (
	setValue rampKind = iota
	linearRamp
	exponentialRamp
)

type autoEvent struct {
	kind  rampKind
	value float64
	time  float64
}

// Param is an automatable scalar on a node (gain, frequency, cutoff).
// Automation events use absolute audio-clock times; a ramp runs from the
// previous event's value to its own. Amplitude envelopes are built from a
// linear attack followed by an exponential decay, per the voice contract.
type Param struct {
	ctx    *Context
	value  float64
	events []autoEvent
}

func newParam(ctx *Context, initial float64) *Param {
	return &Param{ctx: ctx, value: initial}
}

// SetValue installs v as the static value and drops pending automation.
func (p *Param) SetValue(v float64) {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	p.value = v
	p.events = nil
}

// Value reports the parameter value at the current clock time.
func (p *Param) Value() float64 {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	return p.valueAt(p.ctx.now())
}

// SetValueAtTime schedules a step to v at audio-clock time t.
func (p *Param) SetValueAtTime(v, t float64) {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	p.insert(autoEvent{setValue, v, t})
}

// LinearRampToValueAtTime schedules a linear ramp ending at v at time t.
func (p *Param) LinearRampToValueAtTime(v, t float64) {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	p.insert(autoEvent{linearRamp, v, t})
}

// ExponentialRampToValueAtTime schedules an exponential ramp ending at v at
// time t. Targets below ExpFloor are clamped to it.
func (p *Param) ExponentialRampToValueAtTime(v, t float64) {
	if v < ExpFloor {
		v = ExpFloor
	}
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	p.insert(autoEvent{exponentialRamp, v, t})
}

// CancelAndHoldAtTime freezes the value the parameter would have at t and
// drops everything scheduled at or past t. Used for note-off and fast
// release: the held value anchors the release ramp without a click.
func (p *Param) CancelAndHoldAtTime(t float64) {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	held := p.valueAt(t)
	kept := p.events[:0]
	for _, ev := range p.events {
		if ev.time < t {
			kept = append(kept, ev)
		}
	}
	p.events = append(kept, autoEvent{setValue, held, t})
}

// insert keeps events sorted by time, preserving call order for equal times.
// A ramp scheduled onto an empty timeline is anchored at the current value.
func (p *Param) insert(ev autoEvent) {
	if len(p.events) == 0 && ev.kind != setValue {
		p.events = append(p.events, autoEvent{setValue, p.value, p.ctx.now()})
	}
	p.events = append(p.events, ev)
	sort.SliceStable(p.events, func(i, j int) bool {
		return p.events[i].time < p.events[j].time
	})
}

// valueAt computes the automated value at time t. Caller holds ctx.mu.
func (p *Param) valueAt(t float64) float64 {
	if len(p.events) == 0 {
		return p.value
	}
	if t < p.events[0].time {
		return p.value
	}
	cur := p.value
	curTime := p.events[0].time
	for _, ev := range p.events {
		if ev.time <= t {
			cur = ev.value
			curTime = ev.time
			continue
		}
		switch ev.kind {
		case setValue:
			return cur
		case linearRamp:
			if ev.time <= curTime {
				return ev.value
			}
			frac := (t - curTime) / (ev.time - curTime)
			return cur + (ev.value-cur)*frac
		case exponentialRamp:
			if ev.time <= curTime {
				return ev.value
			}
			a := math.Max(cur, ExpFloor)
			b := math.Max(ev.value, ExpFloor)
			frac := (t - curTime) / (ev.time - curTime)
			return a * math.Pow(b/a, frac)
		}
	}
	return cur
}

// sample fills out with per-sample values for the block starting at frame
// start. Render path only; caller holds ctx.mu.
func (p *Param) sample(start int64, frames int, out []float32) {
	sr := p.ctx.sampleRate
	for i := 0; i < frames; i++ {
		out[i] = float32(p.valueAt(float64(start+int64(i)) / sr))
	}
}
