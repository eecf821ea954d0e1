package graph

import "math"

// Shape selects the oscillator waveform.
type Shape int

const (
	// ShapeSine is a sine wave
	ShapeSine Shape = iota
	// ShapeTriangle is a triangle wave
	ShapeTriangle
	// ShapeSaw is a sawtooth wave
	ShapeSaw
	// ShapeSquare is a square wave
	ShapeSquare
)

// Oscillator is a scheduled voice source: silent until Start, finished after
// Stop. Frequency is automatable, so pitch envelopes are exponential ramps
// on Freq.
type Oscillator struct {
	base
	Freq *Param

	shape      Shape
	phase      float64
	startFrame int64
	stopFrame  int64
}

// NewOscillator creates an oscillator with the given waveform at 440 Hz.
func NewOscillator(ctx *Context, shape Shape) *Oscillator {
	o := &Oscillator{shape: shape, startFrame: -1, stopFrame: -1}
	o.init(ctx, o)
	o.Freq = newParam(ctx, 440.0)
	return o
}

// Start schedules the oscillator to begin at audio-clock time t. Past times
// start immediately.
func (o *Oscillator) Start(t float64) {
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()
	o.startFrame = o.ctx.timeToFrame(t)
}

// Stop schedules the oscillator to end at audio-clock time t, after which
// the voice is considered finished and prunable.
func (o *Oscillator) Stop(t float64) {
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()
	o.stopFrame = o.ctx.timeToFrame(t)
}

func (o *Oscillator) pull(start int64, frames int) []float32 {
	out, cached := o.begin(start, frames)
	if cached {
		return out
	}
	if o.startFrame < 0 {
		return out
	}
	sr := o.ctx.sampleRate
	for i := 0; i < frames; i++ {
		f := start + int64(i)
		if f < o.startFrame || (o.stopFrame >= 0 && f >= o.stopFrame) {
			continue
		}
		freq := o.Freq.valueAt(float64(f) / sr)
		o.phase += freq / sr
		if o.phase >= 1.0 {
			o.phase -= math.Floor(o.phase)
		}
		switch o.shape {
		case ShapeSine:
			out[i] = float32(math.Sin(2.0 * math.Pi * o.phase))
		case ShapeTriangle:
			if o.phase < 0.5 {
				out[i] = float32(4.0*o.phase - 1.0)
			} else {
				out[i] = float32(3.0 - 4.0*o.phase)
			}
		case ShapeSaw:
			out[i] = float32(2.0*o.phase - 1.0)
		case ShapeSquare:
			if o.phase < 0.5 {
				out[i] = 1.0
			} else {
				out[i] = -1.0
			}
		}
	}
	return out
}

func (o *Oscillator) finished(now int64) bool {
	return o.stopFrame >= 0 && now >= o.stopFrame
}
