// Category: drums
// Description: Minimal sine blip one-shot
package main

import (
	"github.com/amapianolab/groovehost/pkg/graph"
	"github.com/amapianolab/groovehost/pkg/plugin"
)

type sineBlip struct {
	plugin.Base
	ctx *graph.Context
}

func SineBlipPlugin(ctx *graph.Context) (plugin.Plugin, error) {
	p := &sineBlip{Base: plugin.NewBase(ctx), ctx: ctx}
	p.Params.Define("pitch", plugin.Param{Min: 24, Max: 96, Default: 72, Unit: "MIDI", Label: "Pitch"})
	p.Params.Define("decay", plugin.Param{Min: 0.05, Max: 1, Default: 0.2, Unit: "s", Label: "Decay"})
	return p, nil
}

func (p *sineBlip) Trigger(when, velocity float64, args ...float64) {
	if when <= 0 {
		when = p.ctx.CurrentTime()
	}
	pitch, _ := p.GetParam("pitch")
	if len(args) > 0 {
		pitch = args[0]
	}
	decay, _ := p.GetParam("decay")
	if velocity < 0 {
		velocity = 1.0
	}

	osc := graph.NewOscillator(p.ctx, graph.ShapeSine)
	osc.Freq.SetValue(graph.NoteToHz(pitch))

	env := graph.NewGain(p.ctx)
	env.SetEphemeral()
	env.Gain.SetValueAtTime(0, when)
	env.Gain.LinearRampToValueAtTime(velocity, when+0.005)
	env.Gain.ExponentialRampToValueAtTime(graph.ExpFloor, when+decay)

	osc.Connect(env)
	env.Connect(p.Out)
	osc.Start(when)
	osc.Stop(when + decay + 0.05)
}
