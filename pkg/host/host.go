// Package host owns the audio context, the master output bus, and the live
// set of plugin instances. It is the single entry point the outer
// application drives: create, destroy, trigger, note events, parameters,
// routing, and state snapshots.
package host

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/amapianolab/groovehost/pkg/graph"
	"github.com/amapianolab/groovehost/pkg/plugin"
	"github.com/amapianolab/groovehost/pkg/registry"
)

// Instance is a live plugin produced by a registered class.
type Instance struct {
	ID        string
	PluginID  string
	CreatedAt time.Time
	Metadata  plugin.Metadata
	Plugin    plugin.Plugin
}

// Host bridges the outer application to the registry and the audio graph.
// Routing is a star topology: every instance connects directly to the master
// bus; effects are threaded by the caller through Process first.
type Host struct {
	mu        sync.RWMutex
	ctx       *graph.Context
	reg       *registry.Registry
	master    *graph.Gain
	instances map[string]*Instance
	order     []string
}

// New creates a host on ctx. The master bus exists for the host's lifetime
// and is never disconnected.
func New(ctx *graph.Context, reg *registry.Registry) *Host {
	h := &Host{
		ctx:       ctx,
		reg:       reg,
		master:    graph.NewGain(ctx),
		instances: make(map[string]*Instance),
	}
	h.master.Connect(ctx.Destination())
	return h
}

// Context returns the shared audio context.
func (h *Host) Context() *graph.Context { return h.ctx }

// Resume ensures the audio context is running. Required after the first
// user gesture on autoplay-gated platforms. Idempotent.
func (h *Host) Resume() { h.ctx.Resume() }

// CreatePlugin resolves pluginID, instantiates the class, and records the
// instance. instanceID may be empty, in which case a collision-resistant id
// is generated. The new instance is not connected to the master bus; call
// ConnectPlugin. An instanceID already in use is rejected with
// ErrDuplicateInstance.
func (h *Host) CreatePlugin(pluginID, instanceID string) (*Instance, error) {
	ctor, err := h.reg.Get(pluginID)
	if err != nil {
		return nil, err
	}
	if instanceID == "" {
		instanceID = fmt.Sprintf("%s-%s", pluginID, uuid.NewString()[:8])
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.instances[instanceID]; exists {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateInstance, instanceID)
	}

	p, err := ctor(h.ctx)
	if err != nil {
		return nil, fmt.Errorf("construct %q: %w", pluginID, err)
	}

	inst := &Instance{
		ID:        instanceID,
		PluginID:  pluginID,
		CreatedAt: time.Now(),
		Metadata:  h.reg.Metadata(pluginID),
		Plugin:    p,
	}
	h.instances[instanceID] = inst
	h.order = append(h.order, instanceID)
	return inst, nil
}

// GetPlugin returns the instance for id, or nil.
func (h *Host) GetPlugin(id string) *Instance {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.instances[id]
}

// DeletePlugin silences the instance if it can, disconnects its output, and
// removes it. Returns false if id is unknown.
func (h *Host) DeletePlugin(id string) bool {
	h.mu.Lock()
	inst, ok := h.instances[id]
	if !ok {
		h.mu.Unlock()
		return false
	}
	delete(h.instances, id)
	for i, got := range h.order {
		if got == id {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
	h.mu.Unlock()

	if s, ok := inst.Plugin.(plugin.Silencer); ok {
		s.AllNotesOff()
	}
	inst.Plugin.Disconnect()
	return true
}

// AllPlugins returns every live instance in creation order.
func (h *Host) AllPlugins() []*Instance {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Instance, 0, len(h.order))
	for _, id := range h.order {
		out = append(out, h.instances[id])
	}
	return out
}

// ConnectPlugin routes an instance's output to dst, defaulting to the master
// bus when dst is nil.
func (h *Host) ConnectPlugin(id string, dst graph.Node) error {
	inst := h.GetPlugin(id)
	if inst == nil {
		return fmt.Errorf("%w: %q", ErrUnknownInstance, id)
	}
	if dst == nil {
		dst = h.master
	}
	inst.Plugin.Connect(dst)
	return nil
}

// TriggerPlugin dispatches a one-shot trigger to the instance.
func (h *Host) TriggerPlugin(id string, when, velocity float64, args ...float64) error {
	inst := h.GetPlugin(id)
	if inst == nil {
		return fmt.Errorf("%w: %q", ErrUnknownInstance, id)
	}
	p, ok := inst.Plugin.(plugin.Percussion)
	if !ok {
		return fmt.Errorf("%w: %q does not support trigger", ErrCapabilityMismatch, inst.PluginID)
	}
	p.Trigger(when, velocity, args...)
	return nil
}

// NoteOn schedules a note on an instrument instance. Velocity defaults to
// 1.0 when negative; duration 0 holds until NoteOff.
func (h *Host) NoteOn(id string, note int, velocity, duration float64) (plugin.VoiceHandle, error) {
	inst := h.GetPlugin(id)
	if inst == nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownInstance, id)
	}
	p, ok := inst.Plugin.(plugin.Instrument)
	if !ok {
		return 0, fmt.Errorf("%w: %q does not support noteOn", ErrCapabilityMismatch, inst.PluginID)
	}
	if velocity < 0 {
		velocity = 1.0
	}
	return p.NoteOn(note, velocity, duration), nil
}

// NoteOff begins the release phase of a voice.
func (h *Host) NoteOff(id string, handle plugin.VoiceHandle) error {
	inst := h.GetPlugin(id)
	if inst == nil {
		return fmt.Errorf("%w: %q", ErrUnknownInstance, id)
	}
	p, ok := inst.Plugin.(plugin.Instrument)
	if !ok {
		return fmt.Errorf("%w: %q does not support noteOff", ErrCapabilityMismatch, inst.PluginID)
	}
	p.NoteOff(handle)
	return nil
}

// SetParameter passes a parameter change through to the instance.
func (h *Host) SetParameter(id, name string, value float64) error {
	inst := h.GetPlugin(id)
	if inst == nil {
		return fmt.Errorf("%w: %q", ErrUnknownInstance, id)
	}
	inst.Plugin.SetParam(name, value)
	return nil
}

// GetParameter reads a parameter value; ok is false for unknown names.
func (h *Host) GetParameter(id, name string) (value float64, ok bool, err error) {
	inst := h.GetPlugin(id)
	if inst == nil {
		return 0, false, fmt.Errorf("%w: %q", ErrUnknownInstance, id)
	}
	value, ok = inst.Plugin.GetParam(name)
	return value, ok, nil
}

// Parameters returns the instance's full parameter map.
func (h *Host) Parameters(id string) (map[string]plugin.Param, error) {
	inst := h.GetPlugin(id)
	if inst == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownInstance, id)
	}
	return inst.Plugin.Parameters(), nil
}

// MasterOutput returns the master bus node.
func (h *Host) MasterOutput() *graph.Gain { return h.master }

// SetMasterVolume sets the master bus gain, clamped to [0, 1]. Out-of-range
// values are clamped silently, not rejected.
func (h *Host) SetMasterVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	h.master.Gain.SetValue(v)
}

// MasterVolume reads the current master bus gain.
func (h *Host) MasterVolume() float64 { return h.master.Gain.Value() }
