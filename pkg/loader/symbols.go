package loader

import (
	"reflect"

	"github.com/amapianolab/groovehost/pkg/graph"
	"github.com/amapianolab/groovehost/pkg/plugin"
)

// Symbols exposes the graph and plugin packages to interpreted artifacts,
// in the "importpath/name" layout the interpreter expects. Interface
// wrappers follow the yaegi extract convention so interpreted types can
// satisfy the compiled capability interfaces.
var Symbols = map[string]map[string]reflect.Value{}

func init() {
	Symbols["github.com/amapianolab/groovehost/pkg/graph/graph"] = map[string]reflect.Value{
		// function, constant and variable definitions
		"NewContext":    reflect.ValueOf(graph.NewContext),
		"NewGain":       reflect.ValueOf(graph.NewGain),
		"NewOscillator": reflect.ValueOf(graph.NewOscillator),
		"NewNoise":      reflect.ValueOf(graph.NewNoise),
		"NewBiquad":     reflect.ValueOf(graph.NewBiquad),
		"NewFX":         reflect.ValueOf(graph.NewFX),
		"NoteToHz":      reflect.ValueOf(graph.NoteToHz),
		"ExpFloor":      reflect.ValueOf(graph.ExpFloor),
		"ShapeSine":     reflect.ValueOf(graph.ShapeSine),
		"ShapeTriangle": reflect.ValueOf(graph.ShapeTriangle),
		"ShapeSaw":      reflect.ValueOf(graph.ShapeSaw),
		"ShapeSquare":   reflect.ValueOf(graph.ShapeSquare),
		"Lowpass":       reflect.ValueOf(graph.Lowpass),
		"Highpass":      reflect.ValueOf(graph.Highpass),
		"Bandpass":      reflect.ValueOf(graph.Bandpass),

		// type definitions
		"Context":    reflect.ValueOf((*graph.Context)(nil)),
		"Gain":       reflect.ValueOf((*graph.Gain)(nil)),
		"Oscillator": reflect.ValueOf((*graph.Oscillator)(nil)),
		"Noise":      reflect.ValueOf((*graph.Noise)(nil)),
		"Biquad":     reflect.ValueOf((*graph.Biquad)(nil)),
		"FX":         reflect.ValueOf((*graph.FX)(nil)),
		"Param":      reflect.ValueOf((*graph.Param)(nil)),
		"Shape":      reflect.ValueOf((*graph.Shape)(nil)),
		"FilterType": reflect.ValueOf((*graph.FilterType)(nil)),
		"Node":       reflect.ValueOf((*graph.Node)(nil)),
		"Processor":  reflect.ValueOf((*graph.Processor)(nil)),

		// interface wrapper definitions
		"_Processor": reflect.ValueOf((*_graph_Processor)(nil)),
	}

	Symbols["github.com/amapianolab/groovehost/pkg/plugin/plugin"] = map[string]reflect.Value{
		// function, constant and variable definitions
		"NewBase":     reflect.ValueOf(plugin.NewBase),
		"NewParamSet": reflect.ValueOf(plugin.NewParamSet),

		// type definitions
		"Base":        reflect.ValueOf((*plugin.Base)(nil)),
		"Param":       reflect.ValueOf((*plugin.Param)(nil)),
		"ParamSet":    reflect.ValueOf((*plugin.ParamSet)(nil)),
		"Metadata":    reflect.ValueOf((*plugin.Metadata)(nil)),
		"VoiceHandle": reflect.ValueOf((*plugin.VoiceHandle)(nil)),
		"Constructor": reflect.ValueOf((*plugin.Constructor)(nil)),
		"Plugin":      reflect.ValueOf((*plugin.Plugin)(nil)),
		"Percussion":  reflect.ValueOf((*plugin.Percussion)(nil)),
		"Instrument":  reflect.ValueOf((*plugin.Instrument)(nil)),
		"Effect":      reflect.ValueOf((*plugin.Effect)(nil)),
		"Silencer":    reflect.ValueOf((*plugin.Silencer)(nil)),

		// interface wrapper definitions
		"_Plugin":     reflect.ValueOf((*_plugin_Plugin)(nil)),
		"_Percussion": reflect.ValueOf((*_plugin_Percussion)(nil)),
		"_Instrument": reflect.ValueOf((*_plugin_Instrument)(nil)),
		"_Effect":     reflect.ValueOf((*_plugin_Effect)(nil)),
		"_Silencer":   reflect.ValueOf((*_plugin_Silencer)(nil)),
	}
}

// _graph_Processor is an interface wrapper for Processor type
type _graph_Processor struct {
	IValue        interface{}
	WProcessBlock func(in []float32, out []float32)
}

func (W _graph_Processor) ProcessBlock(in []float32, out []float32) { W.WProcessBlock(in, out) }

// _plugin_Plugin is an interface wrapper for Plugin type
type _plugin_Plugin struct {
	IValue      interface{}
	WConnect    func(dst graph.Node)
	WDisconnect func()
	WGetParam   func(name string) (value float64, ok bool)
	WParameters func() map[string]plugin.Param
	WSetParam   func(name string, value float64)
}

func (W _plugin_Plugin) Connect(dst graph.Node) { W.WConnect(dst) }
func (W _plugin_Plugin) Disconnect() { W.WDisconnect() }
func (W _plugin_Plugin) GetParam(name string) (value float64, ok bool) {
	return W.WGetParam(name)
}
func (W _plugin_Plugin) Parameters() map[string]plugin.Param { return W.WParameters() }
func (W _plugin_Plugin) SetParam(name string, value float64) { W.WSetParam(name, value) }

// _plugin_Percussion is an interface wrapper for Percussion type
type _plugin_Percussion struct {
	IValue      interface{}
	WConnect    func(dst graph.Node)
	WDisconnect func()
	WGetParam   func(name string) (value float64, ok bool)
	WParameters func() map[string]plugin.Param
	WSetParam   func(name string, value float64)
	WTrigger    func(when float64, velocity float64, args ...float64)
}

func (W _plugin_Percussion) Connect(dst graph.Node) { W.WConnect(dst) }
func (W _plugin_Percussion) Disconnect() { W.WDisconnect() }
func (W _plugin_Percussion) GetParam(name string) (value float64, ok bool) {
	return W.WGetParam(name)
}
func (W _plugin_Percussion) Parameters() map[string]plugin.Param { return W.WParameters() }
func (W _plugin_Percussion) SetParam(name string, value float64) { W.WSetParam(name, value) }
func (W _plugin_Percussion) Trigger(when float64, velocity float64, args ...float64) {
	W.WTrigger(when, velocity, args...)
}

// _plugin_Instrument is an interface wrapper for Instrument type
type _plugin_Instrument struct {
	IValue      interface{}
	WConnect    func(dst graph.Node)
	WDisconnect func()
	WGetParam   func(name string) (value float64, ok bool)
	WNoteOff    func(handle plugin.VoiceHandle)
	WNoteOn     func(note int, velocity float64, duration float64) plugin.VoiceHandle
	WParameters func() map[string]plugin.Param
	WSetParam   func(name string, value float64)
}

func (W _plugin_Instrument) Connect(dst graph.Node) { W.WConnect(dst) }
func (W _plugin_Instrument) Disconnect() { W.WDisconnect() }
func (W _plugin_Instrument) GetParam(name string) (value float64, ok bool) {
	return W.WGetParam(name)
}
func (W _plugin_Instrument) NoteOff(handle plugin.VoiceHandle) { W.WNoteOff(handle) }
func (W _plugin_Instrument) NoteOn(note int, velocity float64, duration float64) plugin.VoiceHandle {
	return W.WNoteOn(note, velocity, duration)
}
func (W _plugin_Instrument) Parameters() map[string]plugin.Param { return W.WParameters() }
func (W _plugin_Instrument) SetParam(name string, value float64) { W.WSetParam(name, value) }

// _plugin_Effect is an interface wrapper for Effect type
type _plugin_Effect struct {
	IValue      interface{}
	WConnect    func(dst graph.Node)
	WDisconnect func()
	WGetParam   func(name string) (value float64, ok bool)
	WParameters func() map[string]plugin.Param
	WProcess    func(src graph.Node) graph.Node
	WSetParam   func(name string, value float64)
}

func (W _plugin_Effect) Connect(dst graph.Node) { W.WConnect(dst) }
func (W _plugin_Effect) Disconnect() { W.WDisconnect() }
func (W _plugin_Effect) GetParam(name string) (value float64, ok bool) {
	return W.WGetParam(name)
}
func (W _plugin_Effect) Parameters() map[string]plugin.Param { return W.WParameters() }
func (W _plugin_Effect) Process(src graph.Node) graph.Node { return W.WProcess(src) }
func (W _plugin_Effect) SetParam(name string, value float64) { W.WSetParam(name, value) }

// _plugin_Silencer is an interface wrapper for Silencer type
type _plugin_Silencer struct {
	IValue       interface{}
	WAllNotesOff func()
}

func (W _plugin_Silencer) AllNotesOff() { W.WAllNotesOff() }
