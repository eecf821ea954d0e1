package builtin

import (
	"math"
	"sync"

	"github.com/amapianolab/groovehost/pkg/graph"
	"github.com/amapianolab/groovehost/pkg/plugin"
)

// Bass is the rolling amapiano sub bass: a saw voice through a resonant
// lowpass sweep with a full ADSR amplitude envelope. Voices are polyphonic
// and tracked by handle for NoteOff.
type Bass struct {
	plugin.Base
	ctx *graph.Context

	mu     sync.Mutex
	voices map[plugin.VoiceHandle]*bassVoice
	next   plugin.VoiceHandle
}

type bassVoice struct {
	osc      *graph.Oscillator
	env      *graph.Gain
	released bool
	endAt    float64
}

// NewBass constructs an amapiano bass on ctx.
func NewBass(ctx *graph.Context) (plugin.Plugin, error) {
	b := &Bass{
		Base:   plugin.NewBase(ctx),
		ctx:    ctx,
		voices: make(map[plugin.VoiceHandle]*bassVoice),
	}
	b.Params.Define("cutoff", plugin.Param{Min: 100, Max: 8000, Default: 800, Unit: "Hz", Label: "Cutoff"})
	b.Params.Define("resonance", plugin.Param{Min: 0.5, Max: 10, Default: 1.2, Label: "Resonance"})
	b.Params.Define("attack", plugin.Param{Min: 0.001, Max: 0.5, Default: 0.005, Unit: "s", Label: "Attack"})
	b.Params.Define("decay", plugin.Param{Min: 0.01, Max: 1.0, Default: 0.08, Unit: "s", Label: "Decay"})
	b.Params.Define("sustain", plugin.Param{Min: 0, Max: 1, Default: 0.8, Label: "Sustain"})
	b.Params.Define("release", plugin.Param{Min: 0.01, Max: 2.0, Default: 0.12, Unit: "s", Label: "Release"})
	b.Params.Define("level", plugin.Param{Min: 0, Max: 1, Default: 0.8, Label: "Level"})
	return b, nil
}

// NoteOn schedules a note immediately and returns a handle for NoteOff.
// A duration > 0 schedules the release automatically.
func (b *Bass) NoteOn(note int, velocity, duration float64) plugin.VoiceHandle {
	t := b.ctx.CurrentTime()
	velocity = clamp01(velocity)

	cutoff, _ := b.GetParam("cutoff")
	resonance, _ := b.GetParam("resonance")
	attack, _ := b.GetParam("attack")
	decay, _ := b.GetParam("decay")
	sustain, _ := b.GetParam("sustain")
	level, _ := b.GetParam("level")
	amp := velocity * level

	osc := graph.NewOscillator(b.ctx, graph.ShapeSaw)
	osc.SetEphemeral()
	osc.Freq.SetValue(graph.NoteToHz(float64(note)))

	filt := graph.NewBiquad(b.ctx, graph.Lowpass)
	filt.SetQ(resonance)
	filt.SetEphemeral()
	filt.Freq.SetValueAtTime(math.Min(cutoff*3.0, 10000), t)
	filt.Freq.ExponentialRampToValueAtTime(cutoff, t+attack+decay)

	env := graph.NewGain(b.ctx)
	env.SetEphemeral()
	env.Gain.SetValueAtTime(0, t)
	env.Gain.LinearRampToValueAtTime(amp, t+attack)
	env.Gain.ExponentialRampToValueAtTime(math.Max(amp*sustain, graph.ExpFloor), t+attack+decay)

	osc.Connect(filt)
	filt.Connect(env)
	env.Connect(b.Out)
	osc.Start(t)

	v := &bassVoice{osc: osc, env: env}

	b.mu.Lock()
	b.next++
	handle := b.next
	b.voices[handle] = v
	b.sweepLocked(t)
	b.mu.Unlock()

	if duration > 0 {
		b.scheduleRelease(v, t+duration)
	}
	return handle
}

// scheduleRelease books the release ramp of a timed note at audio-clock time
// at. The voice is not marked released: an earlier NoteOff can still cancel
// the booked ramp and cut the note short.
func (b *Bass) scheduleRelease(v *bassVoice, at float64) {
	release, _ := b.GetParam("release")
	v.env.Gain.CancelAndHoldAtTime(at)
	v.env.Gain.ExponentialRampToValueAtTime(graph.ExpFloor, at+release)
	v.osc.Stop(at + release + 0.05)
	v.endAt = at + release
}

// NoteOff begins the release phase of a voice. Already-released voices are
// a no-op.
func (b *Bass) NoteOff(handle plugin.VoiceHandle) {
	b.mu.Lock()
	v, ok := b.voices[handle]
	if ok {
		delete(b.voices, handle)
	}
	b.mu.Unlock()
	if !ok {
		return
	}
	b.releaseVoice(v, b.ctx.CurrentTime())
}

// AllNotesOff terminates every live voice with a fast release.
func (b *Bass) AllNotesOff() {
	b.mu.Lock()
	voices := b.voices
	b.voices = make(map[plugin.VoiceHandle]*bassVoice)
	b.mu.Unlock()

	now := b.ctx.CurrentTime()
	for _, v := range voices {
		if v.released {
			continue
		}
		v.released = true
		v.env.Gain.CancelAndHoldAtTime(now)
		v.env.Gain.ExponentialRampToValueAtTime(graph.ExpFloor, now+0.03)
		v.osc.Stop(now + 0.08)
	}
}

// releaseVoice schedules the release ramp at audio-clock time at.
func (b *Bass) releaseVoice(v *bassVoice, at float64) {
	if v.released {
		return
	}
	v.released = true
	release, _ := b.GetParam("release")
	v.env.Gain.CancelAndHoldAtTime(at)
	v.env.Gain.ExponentialRampToValueAtTime(graph.ExpFloor, at+release)
	v.osc.Stop(at + release + 0.05)
	v.endAt = at + release
}

// sweepLocked drops bookkeeping for voices whose tails ended. The graph
// pruned their nodes already. Caller holds b.mu.
func (b *Bass) sweepLocked(now float64) {
	for h, v := range b.voices {
		if v.endAt > 0 && now > v.endAt+0.2 {
			delete(b.voices, h)
		}
	}
}
