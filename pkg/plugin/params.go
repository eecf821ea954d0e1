package plugin

import "sync"

// ParamSet is a named parameter table with range clamping. Plugins declare
// their parameters once at construction and route SetParam/GetParam through
// the set.
type ParamSet struct {
	mu     sync.RWMutex
	params map[string]Param
	order  []string
}

// NewParamSet creates an empty parameter set.
func NewParamSet() *ParamSet {
	return &ParamSet{params: make(map[string]Param)}
}

// Define registers a parameter. The initial value is the default. Redefining
// a name replaces it without changing its position.
func (s *ParamSet) Define(name string, p Param) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.Value = p.Default
	if _, exists := s.params[name]; !exists {
		s.order = append(s.order, name)
	}
	s.params[name] = p
}

// Set clamps value into the parameter's range and installs it. Returns false
// for unknown names, which callers ignore by contract.
func (s *ParamSet) Set(name string, value float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.params[name]
	if !ok {
		return false
	}
	if value < p.Min {
		value = p.Min
	}
	if value > p.Max {
		value = p.Max
	}
	p.Value = value
	s.params[name] = p
	return true
}

// Get returns the current value of a parameter.
func (s *ParamSet) Get(name string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.params[name]
	if !ok {
		return 0, false
	}
	return p.Value, true
}

// Snapshot returns a copy of every parameter. The copy never aliases
// internal state.
func (s *ParamSet) Snapshot() map[string]Param {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]Param, len(s.params))
	for name, p := range s.params {
		out[name] = p
	}
	return out
}

// Names returns parameter names in declaration order.
func (s *ParamSet) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
