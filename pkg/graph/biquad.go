package graph

import "math"

// FilterType selects the biquad response.
type FilterType int

const (
	// Lowpass passes frequencies below the cutoff
	Lowpass FilterType = iota
	// Highpass passes frequencies above the cutoff
	Highpass
	// Bandpass passes a band around the cutoff
	Bandpass
)

// coefficient refresh interval in samples; cutoff sweeps are piecewise
// constant at this granularity.
const biquadUpdateInterval = 16

// Biquad is a second-order IIR filter node (RBJ cookbook designs) with an
// automatable cutoff, so filter sweeps are ramps on Freq.
type Biquad struct {
	base
	Freq *Param

	typ FilterType
	q   float64

	lastFreq           float64
	b0, b1, b2, a1, a2 float64
	x1, x2, y1, y2     float64
}

// NewBiquad creates a filter node of the given type. Q defaults to 0.707.
func NewBiquad(ctx *Context, typ FilterType) *Biquad {
	b := &Biquad{typ: typ, q: 0.707}
	b.init(ctx, b)
	b.Freq = newParam(ctx, 1000.0)
	return b
}

// SetQ sets the filter resonance.
func (b *Biquad) SetQ(q float64) {
	b.ctx.mu.Lock()
	defer b.ctx.mu.Unlock()
	b.q = math.Max(0.1, q)
	b.lastFreq = 0 // force coefficient refresh
}

// update recomputes coefficients for cutoff f. Caller holds ctx.mu.
func (b *Biquad) update(f float64) {
	sr := b.ctx.sampleRate
	f = math.Max(10.0, math.Min(f, sr*0.45))

	omega := 2.0 * math.Pi * f / sr
	sinOmega := math.Sin(omega)
	cosOmega := math.Cos(omega)
	alpha := sinOmega / (2.0 * b.q)

	var b0, b1, b2 float64
	switch b.typ {
	case Lowpass:
		b0 = (1.0 - cosOmega) / 2.0
		b1 = 1.0 - cosOmega
		b2 = (1.0 - cosOmega) / 2.0
	case Highpass:
		b0 = (1.0 + cosOmega) / 2.0
		b1 = -(1.0 + cosOmega)
		b2 = (1.0 + cosOmega) / 2.0
	case Bandpass:
		b0 = alpha
		b1 = 0.0
		b2 = -alpha
	}
	a0 := 1.0 + alpha
	a1 := -2.0 * cosOmega
	a2 := 1.0 - alpha

	invA0 := 1.0 / a0
	b.b0 = b0 * invA0
	b.b1 = b1 * invA0
	b.b2 = b2 * invA0
	b.a1 = a1 * invA0
	b.a2 = a2 * invA0
}

func (b *Biquad) pull(start int64, frames int) []float32 {
	out, cached := b.begin(start, frames)
	if cached {
		return out
	}
	b.mixInputs(start, frames, out)
	sr := b.ctx.sampleRate
	for i := 0; i < frames; i++ {
		if i%biquadUpdateInterval == 0 {
			f := b.Freq.valueAt(float64(start+int64(i)) / sr)
			if f != b.lastFreq {
				b.update(f)
				b.lastFreq = f
			}
		}
		x0 := float64(out[i])
		y0 := b.b0*x0 + b.b1*b.x1 + b.b2*b.x2 - b.a1*b.y1 - b.a2*b.y2
		b.x2, b.x1 = b.x1, x0
		b.y2, b.y1 = b.y1, y0
		out[i] = float32(y0)
	}
	return out
}
