package graph

// Gain scales the mix of its inputs by an automatable gain. It doubles as
// the summing junction of the graph: the master bus and every plugin output
// are Gain nodes.
type Gain struct {
	base
	Gain *Param

	env []float32
}

// NewGain creates a gain node with unity gain.
func NewGain(ctx *Context) *Gain {
	g := &Gain{}
	g.init(ctx, g)
	g.Gain = newParam(ctx, 1.0)
	return g
}

func (g *Gain) pull(start int64, frames int) []float32 {
	out, cached := g.begin(start, frames)
	if cached {
		return out
	}
	g.mixInputs(start, frames, out)
	if cap(g.env) < frames {
		g.env = make([]float32, frames)
	}
	env := g.env[:frames]
	g.Gain.sample(start, frames, env)
	for i := range out {
		out[i] *= env[i]
	}
	return out
}
