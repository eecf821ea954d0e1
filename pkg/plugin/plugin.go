// Package plugin defines the contract every DSP unit satisfies: a uniform
// parameter surface plus capability interfaces for percussion one-shots,
// playable instruments, and insert effects.
package plugin

import "github.com/amapianolab/groovehost/pkg/graph"

// Param describes one named parameter: its current value plus declared
// range, default, and display metadata. The value always sits in [Min, Max].
type Param struct {
	Value   float64 `json:"value"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Default float64 `json:"default"`
	Unit    string  `json:"unit"`
	Label   string  `json:"label"`
}

// Metadata describes a plugin class for browsing UIs.
type Metadata struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	Tags        []string `json:"tags"`
}

// VoiceHandle identifies a live instrument voice for a later NoteOff.
// Handles are opaque and scoped to the instance that issued them.
type VoiceHandle int

// Plugin is the base contract: parameters and output routing. Construction
// allocates the plugin's own output node from the shared context but never
// connects it to the master bus; the host does that.
type Plugin interface {
	// Parameters enumerates every parameter the plugin accepts.
	Parameters() map[string]Param
	// SetParam clamps value into the parameter's range and installs it.
	// Unknown names are silently ignored for forward compatibility.
	SetParam(name string, value float64)
	// GetParam returns the current value, or ok == false for unknown names.
	GetParam(name string) (value float64, ok bool)
	// Connect routes the plugin's output node into dst.
	Connect(dst graph.Node)
	// Disconnect removes the plugin's output from the graph.
	Disconnect()
}

// Percussion is a plugin that plays one-shot hits.
type Percussion interface {
	Plugin
	// Trigger schedules a voice at audio-clock time when (0 means now) with
	// velocity in [0, 1]. Extra args are plugin-defined; by convention the
	// first overrides the pitch as a MIDI note.
	Trigger(when, velocity float64, args ...float64)
}

// Instrument is a plugin that plays pitched, held notes.
type Instrument interface {
	Plugin
	// NoteOn schedules a note immediately. A duration > 0 schedules the
	// release automatically; duration 0 holds until NoteOff.
	NoteOn(note int, velocity, duration float64) VoiceHandle
	// NoteOff begins the release phase of a voice. Idempotent.
	NoteOff(handle VoiceHandle)
}

// Effect is an insert: it takes a source node and returns the node where the
// processed signal is available. Process is called at most once per source.
type Effect interface {
	Plugin
	Process(src graph.Node) graph.Node
}

// Silencer is optionally implemented by plugins that can terminate every
// live voice at once (fast release, not a hard cut).
type Silencer interface {
	AllNotesOff()
}

// Constructor builds a plugin instance on the given context. This is the
// "plugin class" the registry stores; loaded artifacts export exactly one.
type Constructor func(*graph.Context) (Plugin, error)
