package graph

// Node is anything that can sit in the audio graph. Nodes are created from a
// Context, routed with Connect, and rendered by pulling from the destination
// down through the inputs once per block.
type Node interface {
	// Connect routes this node's output into dst.
	Connect(dst Node)
	// Disconnect removes this node from every destination it feeds.
	Disconnect()

	pull(start int64, frames int) []float32
	addInput(src Node)
	removeInput(src Node)
	finished(now int64) bool
}

// base carries the wiring every node shares: input/output lists, the
// per-block render cache, and voice pruning. Concrete nodes embed it and
// implement pull.
type base struct {
	ctx  *Context
	self Node

	inputs  []Node
	outputs []Node

	buf       []float32
	blockAt   int64
	haveBlock bool

	ephemeral bool
	fed       bool
}

func (b *base) init(ctx *Context, self Node) {
	b.ctx = ctx
	b.self = self
}

// Connect routes this node's output into dst. A connection that already
// exists between the pair is ignored, so repeated Connect calls never stack
// gain.
func (b *base) Connect(dst Node) {
	b.ctx.mu.Lock()
	defer b.ctx.mu.Unlock()
	for _, out := range b.outputs {
		if out == dst {
			return
		}
	}
	dst.addInput(b.self)
	b.outputs = append(b.outputs, dst)
}

// Disconnect removes this node from every destination it feeds.
func (b *base) Disconnect() {
	b.ctx.mu.Lock()
	defer b.ctx.mu.Unlock()
	for _, dst := range b.outputs {
		dst.removeInput(b.self)
	}
	b.outputs = nil
}

// SetEphemeral marks the node as part of a voice: once every source feeding
// it has finished, the node is pruned from the graph automatically.
func (b *base) SetEphemeral() {
	b.ctx.mu.Lock()
	defer b.ctx.mu.Unlock()
	b.ephemeral = true
}

func (b *base) addInput(src Node) {
	for _, in := range b.inputs {
		if in == src {
			return
		}
	}
	b.inputs = append(b.inputs, src)
	b.fed = true
}

func (b *base) removeInput(src Node) {
	for i, in := range b.inputs {
		if in == src {
			b.inputs = append(b.inputs[:i], b.inputs[i+1:]...)
			return
		}
	}
}

// begin returns the cached block if this node already rendered it (fan-out
// renders once per block), otherwise a zeroed buffer to render into.
func (b *base) begin(start int64, frames int) ([]float32, bool) {
	if b.haveBlock && b.blockAt == start && len(b.buf) == frames {
		return b.buf, true
	}
	if cap(b.buf) < frames {
		b.buf = make([]float32, frames)
	}
	b.buf = b.buf[:frames]
	for i := range b.buf {
		b.buf[i] = 0
	}
	b.blockAt = start
	b.haveBlock = true
	return b.buf, false
}

// mixInputs sums every input into out and drops inputs whose voices have
// finished by the end of the block.
func (b *base) mixInputs(start int64, frames int, out []float32) {
	end := start + int64(frames)
	kept := b.inputs[:0]
	for _, in := range b.inputs {
		src := in.pull(start, frames)
		for i := range out {
			out[i] += src[i]
		}
		if !in.finished(end) {
			kept = append(kept, in)
		}
	}
	b.inputs = kept
}

func (b *base) finished(now int64) bool {
	return b.ephemeral && b.fed && len(b.inputs) == 0
}
