package reverb

import (
	"math"
	"testing"
)

const testRate = 44100.0

func blockEnergy(buf []float32) float64 {
	var e float64
	for _, s := range buf {
		e += float64(s) * float64(s)
	}
	return e
}

func TestCombImpulseResponse(t *testing.T) {
	c := NewComb(100)
	c.SetFeedback(0.5)
	c.SetDamping(0)

	var first float32
	for i := 0; i < 300; i++ {
		var in float32
		if i == 0 {
			in = 1
		}
		out := c.Process(in)
		switch i {
		case 99:
			if out != 0 {
				t.Fatalf("impulse leaked early: %v at %d", out, i)
			}
		case 100:
			first = out
		case 200:
			if math.Abs(float64(out)-float64(first)*0.5) > 1e-6 {
				t.Errorf("second echo = %v, want %v", out, first*0.5)
			}
		default:
			_ = out
		}
	}
	if first != 1 {
		t.Errorf("first echo = %v, want 1", first)
	}
}

func TestAllpassPassesEnergy(t *testing.T) {
	a := NewAllpass(50)
	a.SetFeedback(0.5)
	if out := a.Process(1); out != -1 {
		t.Errorf("direct path = %v, want -1", out)
	}
	var echo float32
	for i := 1; i <= 50; i++ {
		echo = a.Process(0)
	}
	if echo == 0 {
		t.Error("no delayed component")
	}
}

func TestShimmerTailDecays(t *testing.T) {
	s := NewShimmer(testRate)
	s.SetDecay(0.6)
	s.SetShimmer(0.3)

	in := make([]float32, 512)
	out := make([]float32, 512)

	// one burst block, then silence in
	for i := range in {
		in[i] = float32(math.Sin(2 * math.Pi * 220 * float64(i) / testRate))
	}
	s.ProcessBlock(in, out)

	zero := make([]float32, 512)
	var early, late float64
	for block := 0; block < 80; block++ {
		s.ProcessBlock(zero, out)
		e := blockEnergy(out)
		if block < 10 {
			early += e
		}
		if block >= 70 {
			late += e
		}
	}
	if early == 0 {
		t.Fatal("no tail after the input burst")
	}
	if late >= early {
		t.Errorf("tail not decaying: late %v >= early %v", late, early)
	}
}

func TestShimmerDecayLengthens(t *testing.T) {
	tail := func(decay float64) float64 {
		s := NewShimmer(testRate)
		s.SetDecay(decay)
		s.SetShimmer(0)

		in := make([]float32, 512)
		out := make([]float32, 512)
		in[0] = 1
		s.ProcessBlock(in, out)

		zero := make([]float32, 512)
		var e float64
		for block := 0; block < 40; block++ {
			s.ProcessBlock(zero, out)
			if block >= 30 {
				e += blockEnergy(out)
			}
		}
		return e
	}

	if short, long := tail(0.1), tail(0.9); short >= long {
		t.Errorf("decay has no effect: short %v >= long %v", short, long)
	}
}

func TestShimmerReset(t *testing.T) {
	s := NewShimmer(testRate)
	in := make([]float32, 512)
	out := make([]float32, 512)
	in[0] = 1
	s.ProcessBlock(in, out)
	s.Reset()

	zero := make([]float32, 512)
	s.ProcessBlock(zero, out)
	if e := blockEnergy(out); e != 0 {
		t.Errorf("state survives Reset: %v", e)
	}
}

func TestOctaveShifterDoublesFrequency(t *testing.T) {
	o := newOctaveShifter(testRate)
	const freq = 220.0

	crossings := 0
	var prev float32
	n := int(testRate) // one second
	warm := n / 2
	for i := 0; i < n; i++ {
		in := float32(math.Sin(2 * math.Pi * freq * float64(i) / testRate))
		out := o.Process(in)
		if i > warm {
			if (prev < 0) != (out < 0) {
				crossings++
			}
			prev = out
		} else {
			prev = out
		}
	}

	// 2*freq over half a second gives 2*freq zero crossings; the grain
	// splices add a few extra, so the band is wide
	got := float64(crossings)
	want := 2 * freq
	if got < want*0.8 || got > want*1.5 {
		t.Errorf("crossings = %v, want near %v", got, want)
	}
}
