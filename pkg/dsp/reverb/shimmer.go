package reverb

import (
	"math"
	"sync/atomic"
)

// comb and allpass tunings in milliseconds; the classic Schroeder values.
var (
	combTunings    = [4]float64{29.7, 37.1, 41.1, 43.7}
	allpassTunings = [2]float64{5.0, 1.7}
)

// octaveShifter is a granular delay-line pitch shifter fixed at one octave
// up: two taps read the ring buffer at double speed, crossfaded with a
// triangular window to hide the splice.
type octaveShifter struct {
	buffer []float32
	write  int
	phase  float64
	win    float64
}

func newOctaveShifter(sampleRate float64) *octaveShifter {
	win := sampleRate * 0.05 // 50 ms grains
	return &octaveShifter{
		buffer: make([]float32, int(win)*2),
		win:    win,
	}
}

func (o *octaveShifter) read(offset float64) float32 {
	pos := float64(o.write) - offset
	n := float64(len(o.buffer))
	for pos < 0 {
		pos += n
	}
	i := int(pos)
	frac := pos - float64(i)
	j := i + 1
	if j >= len(o.buffer) {
		j = 0
	}
	return o.buffer[i] + float32(frac)*(o.buffer[j]-o.buffer[i])
}

// Process shifts a single sample up an octave.
func (o *octaveShifter) Process(input float32) float32 {
	o.buffer[o.write] = input

	// the tap delay shrinks by one sample per sample while the write head
	// advances by one, so the read point moves at 2x: one octave up
	tapA := o.phase
	tapB := math.Mod(o.phase+o.win/2, o.win)

	fadeA := float32(1.0 - math.Abs(2.0*tapA/o.win-1.0))
	fadeB := float32(1.0 - math.Abs(2.0*tapB/o.win-1.0))

	out := o.read(tapA)*fadeA + o.read(tapB)*fadeB

	o.write++
	if o.write >= len(o.buffer) {
		o.write = 0
	}
	o.phase -= 1.0
	if o.phase < 0 {
		o.phase += o.win
	}
	return out
}

func (o *octaveShifter) Reset() {
	for i := range o.buffer {
		o.buffer[i] = 0
	}
	o.write = 0
	o.phase = 0
}

// Shimmer is a mono diffusion tank with an octave-up shifter in the
// feedback path. Parameter setters are safe to call from the control thread
// while the audio thread runs ProcessBlock.
type Shimmer struct {
	combs     [4]*Comb
	allpasses [2]*Allpass
	shifter   *octaveShifter

	fb float32 // feedback signal carried across samples

	feedbackBits uint64
	shimmerBits  uint64
	dampBits     uint64
}

// NewShimmer creates a shimmer tank for the given sample rate.
func NewShimmer(sampleRate float64) *Shimmer {
	s := &Shimmer{shifter: newOctaveShifter(sampleRate)}
	for i := range s.combs {
		s.combs[i] = NewComb(int(combTunings[i] * sampleRate / 1000.0))
	}
	for i := range s.allpasses {
		s.allpasses[i] = NewAllpass(int(allpassTunings[i] * sampleRate / 1000.0))
		s.allpasses[i].SetFeedback(0.5)
	}
	s.SetDecay(0.7)
	s.SetShimmer(0.4)
	s.SetDamping(0.4)
	return s
}

// SetDecay sets the tail length (0-1). Larger is longer.
func (s *Shimmer) SetDecay(d float64) {
	d = math.Max(0.0, math.Min(1.0, d))
	atomic.StoreUint64(&s.feedbackBits, math.Float64bits(0.28+d*0.7))
}

// SetShimmer sets how much of the feedback is pitch-shifted (0-1).
func (s *Shimmer) SetShimmer(amount float64) {
	amount = math.Max(0.0, math.Min(1.0, amount))
	atomic.StoreUint64(&s.shimmerBits, math.Float64bits(amount))
}

// SetDamping sets high-frequency damping of the tail (0-1).
func (s *Shimmer) SetDamping(d float64) {
	d = math.Max(0.0, math.Min(1.0, d))
	atomic.StoreUint64(&s.dampBits, math.Float64bits(d))
}

// ProcessBlock renders the wet signal for in into out.
func (s *Shimmer) ProcessBlock(in, out []float32) {
	feedback := math.Float64frombits(atomic.LoadUint64(&s.feedbackBits))
	shimmer := math.Float64frombits(atomic.LoadUint64(&s.shimmerBits))
	damp := math.Float64frombits(atomic.LoadUint64(&s.dampBits))
	for i := range s.combs {
		s.combs[i].SetFeedback(feedback)
		s.combs[i].SetDamping(damp)
	}

	for i := range in {
		drive := in[i] + s.fb

		var wet float32
		for c := range s.combs {
			wet += s.combs[c].Process(drive)
		}
		wet *= 0.25
		for a := range s.allpasses {
			wet = s.allpasses[a].Process(wet)
		}

		shifted := s.shifter.Process(wet)
		fb := float64(wet)*(1.0-shimmer) + float64(shifted)*shimmer
		// keep the regeneration loop from running away
		if fb > 1.0 {
			fb = 1.0
		} else if fb < -1.0 {
			fb = -1.0
		}
		s.fb = float32(fb * feedback * 0.5)

		out[i] = wet
	}
}

// Reset clears the whole tank.
func (s *Shimmer) Reset() {
	for i := range s.combs {
		s.combs[i].Reset()
	}
	for i := range s.allpasses {
		s.allpasses[i].Reset()
	}
	s.shifter.Reset()
	s.fb = 0
}
