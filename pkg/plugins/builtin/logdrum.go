// Package builtin provides the stock plugin classes: log drum, 808 clap,
// amapiano bass, and shimmer reverb.
package builtin

import (
	"math"

	"github.com/amapianolab/groovehost/pkg/graph"
	"github.com/amapianolab/groovehost/pkg/plugin"
)

// LogDrum is the signature amapiano log drum: a sine voice with a pitch
// drop into the fundamental, a soft attack, and an exponential decay.
type LogDrum struct {
	plugin.Base
	ctx *graph.Context
}

// NewLogDrum constructs a log drum on ctx.
func NewLogDrum(ctx *graph.Context) (plugin.Plugin, error) {
	d := &LogDrum{Base: plugin.NewBase(ctx), ctx: ctx}
	d.Params.Define("pitch", plugin.Param{Min: 24, Max: 96, Default: 60, Unit: "MIDI", Label: "Pitch"})
	d.Params.Define("decay", plugin.Param{Min: 0.05, Max: 2.0, Default: 0.4, Unit: "s", Label: "Decay"})
	d.Params.Define("body", plugin.Param{Min: 0, Max: 1, Default: 0.5, Label: "Body"})
	d.Params.Define("level", plugin.Param{Min: 0, Max: 1, Default: 0.8, Label: "Level"})
	return d, nil
}

// Trigger schedules one hit at audio-clock time when (0 means now). An
// optional first extra arg overrides the pitch as a MIDI note for this hit.
func (d *LogDrum) Trigger(when, velocity float64, args ...float64) {
	t := when
	if t <= 0 {
		t = d.ctx.CurrentTime()
	}
	velocity = clamp01(velocity)

	pitch, _ := d.GetParam("pitch")
	if len(args) > 0 {
		pitch = math.Max(24, math.Min(96, args[0]))
	}
	decay, _ := d.GetParam("decay")
	body, _ := d.GetParam("body")
	level, _ := d.GetParam("level")

	f := graph.NoteToHz(pitch)

	osc := graph.NewOscillator(d.ctx, graph.ShapeSine)
	osc.SetEphemeral()
	osc.Freq.SetValueAtTime(f*(1.0+1.5*body), t)
	osc.Freq.ExponentialRampToValueAtTime(f, t+0.03+0.09*body)

	env := graph.NewGain(d.ctx)
	env.SetEphemeral()
	env.Gain.SetValueAtTime(0, t)
	env.Gain.LinearRampToValueAtTime(velocity*level, t+0.005)
	env.Gain.ExponentialRampToValueAtTime(graph.ExpFloor, t+decay)

	osc.Connect(env)
	env.Connect(d.Out)
	osc.Start(t)
	osc.Stop(t + decay + 0.1)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
