package loader

import (
	"errors"
	"fmt"
	"sync"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/amapianolab/groovehost/pkg/catalog"
	"github.com/amapianolab/groovehost/pkg/graph"
	"github.com/amapianolab/groovehost/pkg/plugin"
)

// ErrArtifactLoad is returned when an artifact fails to evaluate.
var ErrArtifactLoad = errors.New("artifact load failed")

// ErrSymbolMissing is returned when an evaluated artifact does not export
// the constructor symbol its id demands, or exports it with the wrong
// signature.
var ErrSymbolMissing = errors.New("constructor symbol missing")

// Installer turns fetched artifact source into a plugin class.
type Installer interface {
	// Install evaluates src and returns the constructor exported under the
	// symbol derived from id.
	Install(id string, src []byte) (plugin.Constructor, error)
	// Revoke discards the installation for id. Constructors already handed
	// out keep working; their closures pin the evaluated code.
	Revoke(id string)
}

// YaegiInstaller evaluates artifacts with a Go interpreter. Every install
// gets a fresh interpreter so reinstalling an id never leaks state from the
// previous version.
type YaegiInstaller struct {
	mu      sync.Mutex
	interps map[string]*interp.Interpreter
}

// NewYaegiInstaller creates an installer with no installations.
func NewYaegiInstaller() *YaegiInstaller {
	return &YaegiInstaller{interps: make(map[string]*interp.Interpreter)}
}

// Install evaluates the artifact and resolves its constructor. Artifacts are
// package main sources that import the graph and plugin packages and export
// one constructor function named per the catalog convention.
func (y *YaegiInstaller) Install(id string, src []byte) (plugin.Constructor, error) {
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifactLoad, err)
	}
	if err := i.Use(Symbols); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifactLoad, err)
	}
	if _, err := i.Eval(string(src)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifactLoad, err)
	}

	sym := catalog.ClassName(id)
	v, err := i.Eval("main." + sym)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSymbolMissing, sym)
	}
	ctor, ok := v.Interface().(func(*graph.Context) (plugin.Plugin, error))
	if !ok {
		return nil, fmt.Errorf("%w: %s has signature %T", ErrSymbolMissing, sym, v.Interface())
	}

	y.mu.Lock()
	y.interps[id] = i
	y.mu.Unlock()
	return plugin.Constructor(ctor), nil
}

// Revoke drops the interpreter for id.
func (y *YaegiInstaller) Revoke(id string) {
	y.mu.Lock()
	delete(y.interps, id)
	y.mu.Unlock()
}
