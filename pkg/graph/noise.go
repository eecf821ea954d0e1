package graph

// Noise is a scheduled white-noise source, the raw material of claps and
// snare-type hits. Like Oscillator it is silent until Start and finished
// after Stop.
type Noise struct {
	base
	startFrame int64
	stopFrame  int64
	state      uint32
}

// NewNoise creates a white-noise source.
func NewNoise(ctx *Context) *Noise {
	n := &Noise{startFrame: -1, stopFrame: -1, state: 0x9d2c5681}
	n.init(ctx, n)
	return n
}

// Start schedules the source to begin at audio-clock time t.
func (n *Noise) Start(t float64) {
	n.ctx.mu.Lock()
	defer n.ctx.mu.Unlock()
	n.startFrame = n.ctx.timeToFrame(t)
}

// Stop schedules the source to end at audio-clock time t.
func (n *Noise) Stop(t float64) {
	n.ctx.mu.Lock()
	defer n.ctx.mu.Unlock()
	n.stopFrame = n.ctx.timeToFrame(t)
}

// next advances the xorshift generator and maps it to [-1, 1).
func (n *Noise) next() float32 {
	n.state ^= n.state << 13
	n.state ^= n.state >> 17
	n.state ^= n.state << 5
	return float32(n.state)/2147483648.0 - 1.0
}

func (n *Noise) pull(start int64, frames int) []float32 {
	out, cached := n.begin(start, frames)
	if cached {
		return out
	}
	if n.startFrame < 0 {
		return out
	}
	for i := 0; i < frames; i++ {
		f := start + int64(i)
		if f < n.startFrame || (n.stopFrame >= 0 && f >= n.stopFrame) {
			continue
		}
		out[i] = n.next()
	}
	return out
}

func (n *Noise) finished(now int64) bool {
	return n.stopFrame >= 0 && now >= n.stopFrame
}
