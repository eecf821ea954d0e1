package plugin

import "github.com/amapianolab/groovehost/pkg/graph"

// Base provides the parameter set and output routing every built-in plugin
// shares. Concrete plugins embed it and add their capability methods.
type Base struct {
	Params *ParamSet
	Out    *graph.Gain
}

// NewBase creates a base with an empty parameter set and a fresh output node
// on ctx.
func NewBase(ctx *graph.Context) Base {
	return Base{
		Params: NewParamSet(),
		Out:    graph.NewGain(ctx),
	}
}

// Parameters enumerates the declared parameters.
func (b *Base) Parameters() map[string]Param { return b.Params.Snapshot() }

// SetParam installs a clamped value; unknown names are ignored.
func (b *Base) SetParam(name string, value float64) { b.Params.Set(name, value) }

// GetParam returns the current value of a parameter.
func (b *Base) GetParam(name string) (float64, bool) { return b.Params.Get(name) }

// Connect routes the plugin output into dst.
func (b *Base) Connect(dst graph.Node) { b.Out.Connect(dst) }

// Disconnect removes the plugin output from the graph.
func (b *Base) Disconnect() { b.Out.Disconnect() }
