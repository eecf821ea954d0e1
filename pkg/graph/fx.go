package graph

// Processor is a block DSP unit that can be mounted in the graph. Effect
// plugins implement their tails as Processors and wrap them in an FX node.
type Processor interface {
	// ProcessBlock reads in and writes the processed result into out.
	// Both slices have the same length. No allocations on this path.
	ProcessBlock(in, out []float32)
}

// FX adapts a Processor into a graph node: inputs are mixed into a scratch
// buffer and handed to the processor.
type FX struct {
	base
	proc Processor
	in   []float32
}

// NewFX wraps proc as a node of ctx.
func NewFX(ctx *Context, proc Processor) *FX {
	f := &FX{proc: proc}
	f.init(ctx, f)
	return f
}

func (f *FX) pull(start int64, frames int) []float32 {
	out, cached := f.begin(start, frames)
	if cached {
		return out
	}
	if cap(f.in) < frames {
		f.in = make([]float32, frames)
	}
	in := f.in[:frames]
	for i := range in {
		in[i] = 0
	}
	f.mixInputs(start, frames, in)
	f.proc.ProcessBlock(in, out)
	return out
}
