package builtin

import (
	"sync"

	"github.com/amapianolab/groovehost/pkg/dsp/reverb"
	"github.com/amapianolab/groovehost/pkg/graph"
	"github.com/amapianolab/groovehost/pkg/plugin"
)

// ShimmerReverb is an insert effect: a diffusion tank with an octave-up
// shifter in the feedback path. Callers thread audio through Process and
// then connect the plugin's output wherever it should land.
type ShimmerReverb struct {
	plugin.Base
	ctx  *graph.Context
	tank *reverb.Shimmer
	fx   *graph.FX
	dry  *graph.Gain
	wet  *graph.Gain

	mu    sync.Mutex
	wired bool
}

// NewShimmerReverb constructs a shimmer reverb on ctx.
func NewShimmerReverb(ctx *graph.Context) (plugin.Plugin, error) {
	s := &ShimmerReverb{
		Base: plugin.NewBase(ctx),
		ctx:  ctx,
		tank: reverb.NewShimmer(ctx.SampleRate()),
	}
	s.fx = graph.NewFX(ctx, s.tank)
	s.dry = graph.NewGain(ctx)
	s.wet = graph.NewGain(ctx)
	s.fx.Connect(s.wet)
	s.dry.Connect(s.Out)
	s.wet.Connect(s.Out)

	s.Params.Define("mix", plugin.Param{Min: 0, Max: 1, Default: 0.3, Label: "Mix"})
	s.Params.Define("decay", plugin.Param{Min: 0, Max: 1, Default: 0.7, Label: "Decay"})
	s.Params.Define("shimmer", plugin.Param{Min: 0, Max: 1, Default: 0.4, Label: "Shimmer"})
	s.Params.Define("damping", plugin.Param{Min: 0, Max: 1, Default: 0.4, Label: "Damping"})
	s.Params.Define("level", plugin.Param{Min: 0, Max: 1, Default: 1.0, Label: "Level"})
	s.applyMix(0.3)
	return s, nil
}

// Process takes src as the effect input and returns the node where the
// processed signal is available. Repeated calls return the same output
// without rewiring.
func (s *ShimmerReverb) Process(src graph.Node) graph.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.wired {
		src.Connect(s.dry)
		src.Connect(s.fx)
		s.wired = true
	}
	return s.Out
}

// SetParam installs the clamped value and pushes it into the running tank.
func (s *ShimmerReverb) SetParam(name string, value float64) {
	if !s.Params.Set(name, value) {
		return
	}
	v, _ := s.Params.Get(name)
	switch name {
	case "mix":
		s.applyMix(v)
	case "decay":
		s.tank.SetDecay(v)
	case "shimmer":
		s.tank.SetShimmer(v)
	case "damping":
		s.tank.SetDamping(v)
	case "level":
		s.Out.Gain.SetValue(v)
	}
}

func (s *ShimmerReverb) applyMix(mix float64) {
	s.dry.Gain.SetValue(1.0 - mix)
	s.wet.Gain.SetValue(mix)
}
