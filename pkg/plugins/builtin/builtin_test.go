package builtin

import (
	"testing"

	"github.com/amapianolab/groovehost/pkg/graph"
	"github.com/amapianolab/groovehost/pkg/plugin"
)

const testRate = 44100.0

// rig builds one plugin wired straight to the destination with a running
// clock.
func rig(t *testing.T, ctor plugin.Constructor) (*graph.Context, plugin.Plugin) {
	t.Helper()
	ctx := graph.NewContext(testRate)
	p, err := ctor(ctx)
	if err != nil {
		t.Fatalf("constructor: %v", err)
	}
	p.Connect(ctx.Destination())
	ctx.Resume()
	return ctx, p
}

// renderEnergy pulls blocks and returns per-block energies.
func renderEnergy(ctx *graph.Context, blocks int) []float64 {
	out := make([]float32, 512)
	energies := make([]float64, blocks)
	for i := 0; i < blocks; i++ {
		ctx.Render(out)
		var e float64
		for _, s := range out {
			e += float64(s) * float64(s)
		}
		energies[i] = e
	}
	return energies
}

func total(energies []float64) float64 {
	var sum float64
	for _, e := range energies {
		sum += e
	}
	return sum
}

func TestLogDrumHit(t *testing.T) {
	ctx, p := rig(t, NewLogDrum)
	drum := p.(plugin.Percussion)

	if total(renderEnergy(ctx, 4)) != 0 {
		t.Fatal("idle log drum not silent")
	}

	drum.Trigger(0, 1.0)
	hit := renderEnergy(ctx, 40) // ~0.46 s, past the 0.4 s default decay
	if total(hit) == 0 {
		t.Fatal("trigger produced no audio")
	}
	if hit[2] <= hit[35] {
		t.Errorf("decay not falling: block 2 %v <= block 35 %v", hit[2], hit[35])
	}

	// the voice ends and the tail is pruned
	renderEnergy(ctx, 20)
	if e := total(renderEnergy(ctx, 10)); e > 1e-4 {
		t.Errorf("residual energy after the voice ended: %v", e)
	}
}

func TestLogDrumPitchOverride(t *testing.T) {
	crossings := func(note float64) int {
		ctx, p := rig(t, NewLogDrum)
		p.(plugin.Percussion).Trigger(0, 1.0, note)
		renderEnergy(ctx, 8) // skip the pitch-drop transient

		out := make([]float32, 4096)
		ctx.Render(out)
		n := 0
		for i := 1; i < len(out); i++ {
			if (out[i-1] < 0) != (out[i] < 0) {
				n++
			}
		}
		return n
	}

	low, high := crossings(36), crossings(60)
	if high <= low {
		t.Errorf("pitch override had no effect: %d crossings vs %d", low, high)
	}
}

func TestClapHit(t *testing.T) {
	ctx, p := rig(t, NewClap808)
	clap := p.(plugin.Percussion)

	clap.Trigger(0, 1.0)
	hit := renderEnergy(ctx, 32)
	if total(hit) == 0 {
		t.Fatal("clap produced no audio")
	}

	// default decay 0.3 s plus tail: silence well before 0.8 s total
	renderEnergy(ctx, 40)
	if e := total(renderEnergy(ctx, 10)); e > 1e-4 {
		t.Errorf("clap still ringing: %v", e)
	}
}

func TestBassHoldAndRelease(t *testing.T) {
	ctx, p := rig(t, NewBass)
	bass := p.(plugin.Instrument)

	handle := bass.NoteOn(40, 1.0, 0)
	held := renderEnergy(ctx, 40) // ~0.46 s
	if held[38] == 0 {
		t.Fatal("held note went silent")
	}

	bass.NoteOff(handle)
	// default release 0.12 s; give the tail and the stop margin room
	renderEnergy(ctx, 20)
	if e := total(renderEnergy(ctx, 10)); e > 1e-4 {
		t.Errorf("note still sounding after release: %v", e)
	}

	// a second NoteOff on the same handle must be a no-op
	bass.NoteOff(handle)
}

func TestBassAutoRelease(t *testing.T) {
	ctx, p := rig(t, NewBass)
	bass := p.(plugin.Instrument)

	bass.NoteOn(45, 1.0, 0.1)
	if total(renderEnergy(ctx, 8)) == 0 {
		t.Fatal("timed note produced no audio")
	}

	// 0.1 s hold + 0.12 s release, rendered well past both
	renderEnergy(ctx, 30)
	if e := total(renderEnergy(ctx, 10)); e > 1e-4 {
		t.Errorf("timed note still sounding: %v", e)
	}
}

func TestBassEarlyNoteOffCutsTimedNote(t *testing.T) {
	ctx, p := rig(t, NewBass)
	bass := p.(plugin.Instrument)

	// a long timed note, released well before its booked duration
	handle := bass.NoteOn(45, 1.0, 0.5)
	renderEnergy(ctx, 4) // ~0.046 s in
	bass.NoteOff(handle)

	// default release 0.12 s puts silence near 0.17 s; the booked schedule
	// alone would still be sustaining here
	renderEnergy(ctx, 20)
	if e := total(renderEnergy(ctx, 10)); e > 1e-4 {
		t.Errorf("early NoteOff ignored on a timed note: %v", e)
	}
}

func TestBassPolyphony(t *testing.T) {
	ctx, p := rig(t, NewBass)
	bass := p.(plugin.Instrument)

	h1 := bass.NoteOn(40, 0.8, 0)
	h2 := bass.NoteOn(47, 0.8, 0)
	if h1 == h2 {
		t.Fatal("voice handles collide")
	}
	both := total(renderEnergy(ctx, 10))

	bass.NoteOff(h1)
	renderEnergy(ctx, 20) // let the released voice die
	one := total(renderEnergy(ctx, 10))
	if one == 0 {
		t.Fatal("second voice killed by releasing the first")
	}
	if one >= both {
		t.Errorf("energy did not drop after one release: %v >= %v", one, both)
	}
}

func TestBassAllNotesOff(t *testing.T) {
	ctx, p := rig(t, NewBass)
	bass := p.(plugin.Instrument)

	bass.NoteOn(40, 1.0, 0)
	bass.NoteOn(43, 1.0, 0)
	renderEnergy(ctx, 4)

	p.(plugin.Silencer).AllNotesOff()
	renderEnergy(ctx, 12) // 0.03 s ramp + 0.08 s stop margin
	if e := total(renderEnergy(ctx, 10)); e > 1e-4 {
		t.Errorf("voices survive AllNotesOff: %v", e)
	}
}

func TestShimmerReverbTail(t *testing.T) {
	ctx := graph.NewContext(testRate)
	p, err := NewShimmerReverb(ctx)
	if err != nil {
		t.Fatalf("constructor: %v", err)
	}
	fx := p.(plugin.Effect)

	src := graph.NewOscillator(ctx, graph.ShapeSine)
	src.Freq.SetValue(440)

	out := fx.Process(src)
	if again := fx.Process(src); again != out {
		t.Error("repeated Process rewired the effect")
	}
	out.Connect(ctx.Destination())

	src.Start(0)
	src.Stop(0.1)
	ctx.Resume()

	renderEnergy(ctx, 10) // burst plus a little tail
	tail := total(renderEnergy(ctx, 10))
	if tail == 0 {
		t.Error("no reverb tail after the source stopped")
	}
}

func TestShimmerReverbMixParam(t *testing.T) {
	ctx := graph.NewContext(testRate)
	p, _ := NewShimmerReverb(ctx)
	fx := p.(plugin.Effect)

	src := graph.NewOscillator(ctx, graph.ShapeSine)
	fx.Process(src).Connect(ctx.Destination())
	src.Start(0)
	ctx.Resume()

	p.SetParam("mix", 0) // dry only: output tracks the source
	if total(renderEnergy(ctx, 2)) == 0 {
		t.Fatal("dry path silent at mix 0")
	}

	if v, ok := p.GetParam("mix"); !ok || v != 0 {
		t.Errorf("mix = %v, %v", v, ok)
	}
}
