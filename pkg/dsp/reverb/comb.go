// Package reverb provides the diffusion network behind the shimmer effect:
// parallel feedback combs, series all-pass filters, and an octave-up
// shifter for the feedback path.
package reverb

import "math"

// onePole is the damping lowpass inside a comb's feedback loop. coeff is the
// pole position: 0 passes the input through, values toward 1 darken the tail.
type onePole struct {
	coeff float64
	state float64
}

func (f *onePole) process(x float64) float64 {
	f.state = x + (f.state-x)*f.coeff
	return f.state
}

func (f *onePole) reset() { f.state = 0 }

// Comb is a feedback comb filter with damped regeneration. One comb per
// tuning; the tank runs them in parallel.
type Comb struct {
	line     []float32
	pos      int
	feedback float64
	damp     onePole
}

// NewComb creates a comb filter with the given delay in samples.
func NewComb(delaySamples int) *Comb {
	return &Comb{
		line:     make([]float32, delaySamples),
		feedback: 0.5,
		damp:     onePole{coeff: 0.5},
	}
}

// SetFeedback sets the feedback amount (0-1).
func (c *Comb) SetFeedback(feedback float64) {
	c.feedback = math.Max(0.0, math.Min(1.0, feedback))
}

// SetDamping sets the damping amount (0-1).
func (c *Comb) SetDamping(damping float64) {
	c.damp.coeff = damping
}

// Process runs a single sample through the comb filter.
func (c *Comb) Process(input float32) float32 {
	out := c.line[c.pos]
	regen := c.damp.process(float64(out))
	c.line[c.pos] = input + float32(c.feedback*regen)

	c.pos++
	if c.pos >= len(c.line) {
		c.pos = 0
	}
	return out
}

// Reset clears the filter state.
func (c *Comb) Reset() {
	for i := range c.line {
		c.line[i] = 0
	}
	c.pos = 0
	c.damp.reset()
}

// Allpass is an all-pass diffusion stage: flat magnitude, smeared phase.
type Allpass struct {
	line     []float32
	pos      int
	feedback float64
}

// NewAllpass creates an all-pass filter with the given delay in samples.
func NewAllpass(delaySamples int) *Allpass {
	return &Allpass{
		line:     make([]float32, delaySamples),
		feedback: 0.5,
	}
}

// SetFeedback sets the feedback coefficient (typically around 0.5).
func (a *Allpass) SetFeedback(feedback float64) {
	a.feedback = feedback
}

// Process runs a single sample through the all-pass filter.
func (a *Allpass) Process(input float32) float32 {
	delayed := a.line[a.pos]

	// y[n] = -x[n] + x[n-D] + C * y[n-D]
	out := delayed - input
	a.line[a.pos] = input + float32(a.feedback)*delayed

	a.pos++
	if a.pos >= len(a.line) {
		a.pos = 0
	}
	return out
}

// Reset clears the filter state.
func (a *Allpass) Reset() {
	for i := range a.line {
		a.line[i] = 0
	}
	a.pos = 0
}
