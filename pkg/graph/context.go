// Package graph implements a small realtime audio graph: a sample-clocked
// context, pull-rendered nodes, and sample-accurate parameter automation.
// Plugins allocate nodes from a shared Context and route them into the
// host's master bus; sources scheduled with Start/Stop terminate themselves
// and are pruned from the graph once they finish.
package graph

import (
	"math"
	"sync"
)

// Context owns the sample clock. All nodes of a graph are created from the
// same Context and rendered by pulling from its destination node.
//
// A freshly created Context is suspended: rendering emits silence and the
// clock does not advance until Resume is called. Events scheduled while
// suspended stay queued and fire once the clock runs, matching web-audio
// autoplay semantics.
type Context struct {
	mu         sync.Mutex
	sampleRate float64
	frame      int64
	running    bool
	dest       *Gain
}

// NewContext creates a suspended context with the given sample rate.
func NewContext(sampleRate float64) *Context {
	c := &Context{sampleRate: sampleRate}
	c.dest = NewGain(c)
	return c
}

// SampleRate returns the context sample rate in Hz.
func (c *Context) SampleRate() float64 { return c.sampleRate }

// Destination is the terminal node of the graph. Whatever reaches it is what
// the hardware (or an offline render) hears.
func (c *Context) Destination() *Gain { return c.dest }

// CurrentTime is the audio-clock time in seconds.
func (c *Context) CurrentTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now()
}

// Resume starts the clock. Idempotent.
func (c *Context) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = true
}

// Suspend halts the clock. Scheduled events stay queued and fire after the
// next Resume.
func (c *Context) Suspend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
}

// Running reports whether the clock is advancing.
func (c *Context) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Render pulls the next len(out) frames from the destination. The caller is
// the realtime driver (or a test rendering offline); blocks are mono float32.
func (c *Context) Render(out []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		for i := range out {
			out[i] = 0
		}
		return
	}
	buf := c.dest.pull(c.frame, len(out))
	copy(out, buf)
	c.frame += int64(len(out))
}

// now returns the clock time in seconds. Caller holds c.mu.
func (c *Context) now() float64 { return float64(c.frame) / c.sampleRate }

// timeToFrame converts an audio-clock time to an absolute frame. Times in
// the past clamp to the current frame: there is no retro-scheduling.
// Caller holds c.mu.
func (c *Context) timeToFrame(t float64) int64 {
	f := int64(math.Round(t * c.sampleRate))
	if f < c.frame {
		return c.frame
	}
	return f
}

// NoteToHz converts a MIDI note number to a frequency in Hz.
func NoteToHz(note float64) float64 {
	return 440.0 * math.Pow(2.0, (note-69.0)/12.0)
}
