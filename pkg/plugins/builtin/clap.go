package builtin

import (
	"github.com/amapianolab/groovehost/pkg/graph"
	"github.com/amapianolab/groovehost/pkg/plugin"
)

// Clap808 is an 808-style clap: three quick pre-claps and a longer body,
// all carved from one band-passed noise source by re-spiking the envelope.
type Clap808 struct {
	plugin.Base
	ctx *graph.Context
}

// NewClap808 constructs an 808 clap on ctx.
func NewClap808(ctx *graph.Context) (plugin.Plugin, error) {
	c := &Clap808{Base: plugin.NewBase(ctx), ctx: ctx}
	c.Params.Define("decay", plugin.Param{Min: 0.05, Max: 1.0, Default: 0.3, Unit: "s", Label: "Decay"})
	c.Params.Define("tone", plugin.Param{Min: 400, Max: 4000, Default: 1500, Unit: "Hz", Label: "Tone"})
	c.Params.Define("spread", plugin.Param{Min: 0.005, Max: 0.05, Default: 0.012, Unit: "s", Label: "Spread"})
	c.Params.Define("level", plugin.Param{Min: 0, Max: 1, Default: 0.8, Label: "Level"})
	return c, nil
}

// Trigger schedules one clap at audio-clock time when (0 means now).
func (c *Clap808) Trigger(when, velocity float64, args ...float64) {
	t := when
	if t <= 0 {
		t = c.ctx.CurrentTime()
	}
	velocity = clamp01(velocity)

	decay, _ := c.GetParam("decay")
	tone, _ := c.GetParam("tone")
	spread, _ := c.GetParam("spread")
	level, _ := c.GetParam("level")
	amp := velocity * level

	noise := graph.NewNoise(c.ctx)
	noise.SetEphemeral()

	filt := graph.NewBiquad(c.ctx, graph.Bandpass)
	filt.SetQ(2.0)
	filt.Freq.SetValue(tone)
	filt.SetEphemeral()

	env := graph.NewGain(c.ctx)
	env.SetEphemeral()
	env.Gain.SetValueAtTime(0, t)

	// three pre-claps, then the body
	for i := 0; i < 3; i++ {
		tb := t + float64(i)*spread
		env.Gain.SetValueAtTime(amp, tb)
		env.Gain.ExponentialRampToValueAtTime(graph.ExpFloor, tb+spread*0.9)
	}
	body := t + 3*spread
	env.Gain.SetValueAtTime(amp, body)
	env.Gain.ExponentialRampToValueAtTime(graph.ExpFloor, body+decay)

	noise.Connect(filt)
	filt.Connect(env)
	env.Connect(c.Out)
	noise.Start(t)
	noise.Stop(body + decay + 0.1)
}
