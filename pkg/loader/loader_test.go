package loader

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/amapianolab/groovehost/pkg/catalog"
	"github.com/amapianolab/groovehost/pkg/graph"
	"github.com/amapianolab/groovehost/pkg/host"
	"github.com/amapianolab/groovehost/pkg/plugin"
	"github.com/amapianolab/groovehost/pkg/registry"
)

type stubPlugin struct {
	plugin.Base
	ctx *graph.Context
}

// Trigger plays a short square blip so tests can hear the instance.
func (s *stubPlugin) Trigger(when, velocity float64, args ...float64) {
	t := when
	if t <= 0 {
		t = s.ctx.CurrentTime()
	}
	osc := graph.NewOscillator(s.ctx, graph.ShapeSquare)
	osc.SetEphemeral()
	env := graph.NewGain(s.ctx)
	env.SetEphemeral()
	env.Gain.SetValueAtTime(velocity, t)
	env.Gain.ExponentialRampToValueAtTime(graph.ExpFloor, t+0.1)
	osc.Connect(env)
	env.Connect(s.Out)
	osc.Start(t)
	osc.Stop(t + 0.15)
}

// fakeInstaller records installs and revokes without interpreting anything.
type fakeInstaller struct {
	mu       sync.Mutex
	installs map[string]string
	revoked  []string
	fail     bool
}

func newFakeInstaller() *fakeInstaller {
	return &fakeInstaller{installs: make(map[string]string)}
}

func (f *fakeInstaller) Install(id string, src []byte) (plugin.Constructor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errors.New("install refused")
	}
	f.installs[id] = string(src)
	return func(ctx *graph.Context) (plugin.Plugin, error) {
		return &stubPlugin{Base: plugin.NewBase(ctx), ctx: ctx}, nil
	}, nil
}

func (f *fakeInstaller) Revoke(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked = append(f.revoked, id)
}

func (f *fakeInstaller) source(id string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.installs[id]
}

// fakeCatalog is an in-memory catalog service behind httptest.
type fakeCatalog struct {
	mu        sync.Mutex
	entries   []catalog.Entry
	artifacts map[string]string
	down      bool
}

func (c *fakeCatalog) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/plugins/list", func(w http.ResponseWriter, r *http.Request) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.down {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(catalog.ListResponse{Plugins: c.entries})
	})
	mux.HandleFunc("GET /plugins/{filename}", func(w http.ResponseWriter, r *http.Request) {
		c.mu.Lock()
		defer c.mu.Unlock()
		body, ok := c.artifacts[r.PathValue("filename")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(body))
	})
	return mux
}

func (c *fakeCatalog) set(entries []catalog.Entry, artifacts map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = entries
	c.artifacts = artifacts
}

func (c *fakeCatalog) setDown(down bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.down = down
}

func newTestLoader(t *testing.T, cat *fakeCatalog) (*Loader, *registry.Registry, *fakeInstaller) {
	t.Helper()
	srv := httptest.NewServer(cat.handler())
	t.Cleanup(srv.Close)
	reg := registry.New()
	inst := newFakeInstaller()
	return New(reg, srv.URL, WithInstaller(inst)), reg, inst
}

func TestLoadAllPlugins(t *testing.T) {
	cat := &fakeCatalog{}
	cat.set([]catalog.Entry{
		{ID: "kick", Name: "Kick", Category: "drums", Enabled: true, Filename: "kick.go"},
		{ID: "muted", Name: "Muted", Category: "drums", Enabled: false, Filename: "muted.go"},
	}, map[string]string{
		"kick.go":  "package main",
		"muted.go": "package main",
	})

	l, reg, inst := newTestLoader(t, cat)
	entries, err := l.LoadAllPlugins(context.Background())
	if err != nil {
		t.Fatalf("LoadAllPlugins: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if !reg.Has("kick") {
		t.Error("enabled plugin not registered")
	}
	if reg.Has("muted") {
		t.Error("disabled plugin registered")
	}
	if inst.source("kick") != "package main" {
		t.Errorf("installed source = %q", inst.source("kick"))
	}

	meta := reg.Metadata("kick")
	if meta.Name != "Kick" || meta.Type != "instrument" {
		t.Errorf("metadata = %+v", meta)
	}
}

func TestLoadPluginInstallFailure(t *testing.T) {
	cat := &fakeCatalog{}
	cat.set([]catalog.Entry{
		{ID: "bad", Enabled: true, Filename: "bad.go"},
	}, map[string]string{"bad.go": "package main"})

	l, reg, inst := newTestLoader(t, cat)
	inst.fail = true
	if l.LoadPlugin(context.Background(), cat.entries[0]) {
		t.Fatal("LoadPlugin reported success for refused install")
	}
	if reg.Has("bad") {
		t.Error("failed install reached the registry")
	}
}

func TestCheckForUpdates(t *testing.T) {
	cat := &fakeCatalog{}
	cat.set([]catalog.Entry{
		{ID: "kick", Enabled: true, Filename: "kick.go"},
	}, map[string]string{"kick.go": "package main", "snare.go": "package main"})

	l, reg, _ := newTestLoader(t, cat)
	if _, err := l.LoadAllPlugins(context.Background()); err != nil {
		t.Fatalf("LoadAllPlugins: %v", err)
	}

	// A new enabled entry appears, the old one is disabled.
	cat.set([]catalog.Entry{
		{ID: "kick", Enabled: false, Filename: "kick.go"},
		{ID: "snare", Enabled: true, Filename: "snare.go"},
	}, map[string]string{"kick.go": "package main", "snare.go": "package main"})

	l.CheckForUpdates(context.Background())
	if reg.Has("kick") {
		t.Error("disabled plugin still registered after tick")
	}
	if !reg.Has("snare") {
		t.Error("new plugin not picked up")
	}
}

func TestCheckForUpdatesCatalogDown(t *testing.T) {
	cat := &fakeCatalog{}
	cat.set([]catalog.Entry{
		{ID: "kick", Enabled: true, Filename: "kick.go"},
	}, map[string]string{"kick.go": "package main"})

	l, reg, _ := newTestLoader(t, cat)
	if _, err := l.LoadAllPlugins(context.Background()); err != nil {
		t.Fatalf("LoadAllPlugins: %v", err)
	}

	cat.setDown(true)
	l.CheckForUpdates(context.Background())
	if !reg.Has("kick") {
		t.Error("loaded plugin dropped on a failed catalog tick")
	}
}

func TestReloadPlugin(t *testing.T) {
	cat := &fakeCatalog{}
	cat.set([]catalog.Entry{
		{ID: "kick", Enabled: true, Filename: "kick.go"},
	}, map[string]string{"kick.go": "package main // v1"})

	l, _, inst := newTestLoader(t, cat)
	if _, err := l.LoadAllPlugins(context.Background()); err != nil {
		t.Fatalf("LoadAllPlugins: %v", err)
	}

	cat.set(cat.entries, map[string]string{"kick.go": "package main // v2"})
	if !l.ReloadPlugin(context.Background(), "kick") {
		t.Fatal("ReloadPlugin failed")
	}
	if got := inst.source("kick"); got != "package main // v2" {
		t.Errorf("reloaded source = %q, want v2", got)
	}
}

func TestUnloadPlugin(t *testing.T) {
	cat := &fakeCatalog{}
	cat.set([]catalog.Entry{
		{ID: "kick", Enabled: true, Filename: "kick.go"},
	}, map[string]string{"kick.go": "package main"})

	l, reg, inst := newTestLoader(t, cat)
	if _, err := l.LoadAllPlugins(context.Background()); err != nil {
		t.Fatalf("LoadAllPlugins: %v", err)
	}

	if !l.UnloadPlugin("kick") {
		t.Fatal("UnloadPlugin returned false for a loaded plugin")
	}
	if reg.Has("kick") {
		t.Error("unloaded plugin still registered")
	}
	if len(inst.revoked) != 1 || inst.revoked[0] != "kick" {
		t.Errorf("revoked = %v", inst.revoked)
	}
	if l.UnloadPlugin("kick") {
		t.Error("second UnloadPlugin returned true")
	}
}

func TestUnloadKeepsLiveInstancePlaying(t *testing.T) {
	cat := &fakeCatalog{}
	cat.set([]catalog.Entry{
		{ID: "foo", Name: "Foo", Category: "drums", Enabled: true, Filename: "foo.go"},
	}, map[string]string{"foo.go": "package main"})

	l, reg, _ := newTestLoader(t, cat)
	if _, err := l.LoadAllPlugins(context.Background()); err != nil {
		t.Fatalf("LoadAllPlugins: %v", err)
	}

	ctx := graph.NewContext(44100)
	h := host.New(ctx, reg)
	inst, err := h.CreatePlugin("foo", "foo-1")
	if err != nil {
		t.Fatalf("CreatePlugin: %v", err)
	}
	if err := h.ConnectPlugin(inst.ID, nil); err != nil {
		t.Fatalf("ConnectPlugin: %v", err)
	}
	h.Resume()

	// the plugin disappears from the catalog; the next tick unloads it
	cat.set([]catalog.Entry{}, nil)
	l.CheckForUpdates(context.Background())
	if reg.Has("foo") {
		t.Fatal("class still registered after unload")
	}

	if _, err := h.CreatePlugin("foo", ""); !errors.Is(err, registry.ErrUnknownPlugin) {
		t.Errorf("CreatePlugin after unload: %v, want ErrUnknownPlugin", err)
	}

	// the live instance keeps its class reference and still plays
	if err := h.TriggerPlugin("foo-1", 0, 1.0); err != nil {
		t.Fatalf("TriggerPlugin: %v", err)
	}
	out := make([]float32, 512)
	var energy float64
	for i := 0; i < 8; i++ {
		ctx.Render(out)
		for _, s := range out {
			energy += float64(s) * float64(s)
		}
	}
	if energy == 0 {
		t.Error("live instance silent after its class was unloaded")
	}
}

func TestYaegiInstaller(t *testing.T) {
	src, err := os.ReadFile("testdata/sine-blip.go")
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}

	inst := NewYaegiInstaller()
	ctor, err := inst.Install("sine-blip", src)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}

	ctx := graph.NewContext(44100)
	p, err := ctor(ctx)
	if err != nil {
		t.Fatalf("constructor: %v", err)
	}
	params := p.Parameters()
	if _, ok := params["pitch"]; !ok {
		t.Fatalf("interpreted plugin params = %v", params)
	}

	perc, ok := p.(plugin.Percussion)
	if !ok {
		t.Fatal("interpreted plugin does not satisfy Percussion")
	}
	p.Connect(ctx.Destination())
	ctx.Resume()
	perc.Trigger(0, 1.0)

	out := make([]float32, 4096)
	var energy float64
	for i := 0; i < 8; i++ {
		ctx.Render(out)
		for _, s := range out {
			energy += float64(s) * float64(s)
		}
	}
	if energy == 0 {
		t.Error("interpreted plugin produced silence")
	}
}

func TestYaegiInstallerSymbolMissing(t *testing.T) {
	inst := NewYaegiInstaller()
	_, err := inst.Install("sine-blip", []byte("package main\n\nvar X = 1\n"))
	if !errors.Is(err, ErrSymbolMissing) {
		t.Fatalf("err = %v, want ErrSymbolMissing", err)
	}
}
