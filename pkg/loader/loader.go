// Package loader keeps the registry synchronised with an HTTP plugin
// catalog: it fetches source artifacts, installs their classes at runtime,
// upgrades them in place, and removes revoked ones, all without touching
// the audio session. Loader failures are logged, never propagated; the
// audio path must not care that a catalog tick went wrong.
package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/amapianolab/groovehost/pkg/catalog"
	"github.com/amapianolab/groovehost/pkg/plugin"
	"github.com/amapianolab/groovehost/pkg/registry"
)

// DefaultPollInterval is the catalog polling cadence.
const DefaultPollInterval = 10 * time.Second

// Loader synchronises a Registry with a remote catalog.
type Loader struct {
	reg       *registry.Registry
	baseURL   string
	client    *http.Client
	installer Installer
	log       *slog.Logger

	mu     sync.Mutex
	loaded map[string]catalog.Entry
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Loader.
type Option func(*Loader)

// WithHTTPClient overrides the catalog HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) { l.client = c }
}

// WithInstaller overrides the artifact installer.
func WithInstaller(inst Installer) Option {
	return func(l *Loader) { l.installer = inst }
}

// WithLogger sets the loader's event log.
func WithLogger(log *slog.Logger) Option {
	return func(l *Loader) { l.log = log }
}

// New creates a loader against the catalog at baseURL.
func New(reg *registry.Registry, baseURL string, opts ...Option) *Loader {
	l := &Loader{
		reg:     reg,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 8 * time.Second},
		log:     slog.Default(),
		loaded:  make(map[string]catalog.Entry),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.installer == nil {
		l.installer = NewYaegiInstaller()
	}
	return l
}

// LoadAllPlugins fetches the catalog and loads every enabled plugin that is
// not already loaded. The full catalog list is returned.
func (l *Loader) LoadAllPlugins(ctx context.Context) ([]catalog.Entry, error) {
	entries, err := l.fetchCatalog(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.Enabled && !l.isLoaded(e.ID) {
			l.LoadPlugin(ctx, e)
		}
	}
	return entries, nil
}

// LoadPlugin fetches, installs, and registers one catalog entry. Failures
// are logged and reported as false; one bad artifact never blocks a batch.
func (l *Loader) LoadPlugin(ctx context.Context, entry catalog.Entry) bool {
	src, err := l.fetchArtifact(ctx, entry.Filename)
	if err != nil {
		l.log.Error("artifact fetch failed", "plugin", entry.ID, "err", err)
		return false
	}
	ctor, err := l.installer.Install(entry.ID, src)
	if err != nil {
		l.log.Error("artifact install failed", "plugin", entry.ID, "err", err)
		return false
	}
	l.reg.RegisterWithMetadata(entry.ID, ctor, entryMetadata(entry))

	l.mu.Lock()
	l.loaded[entry.ID] = entry
	l.mu.Unlock()

	l.log.Info("plugin loaded", "plugin", entry.ID, "file", entry.Filename)
	return true
}

// ReloadPlugin revokes the prior installation of id and loads it afresh
// from the catalog.
func (l *Loader) ReloadPlugin(ctx context.Context, id string) bool {
	l.installer.Revoke(id)
	l.mu.Lock()
	delete(l.loaded, id)
	l.mu.Unlock()

	entries, err := l.fetchCatalog(ctx)
	if err != nil {
		l.log.Error("catalog fetch failed", "err", err)
		return false
	}
	for _, e := range entries {
		if e.ID == id && e.Enabled {
			return l.LoadPlugin(ctx, e)
		}
	}
	l.log.Warn("plugin gone from catalog", "plugin", id)
	return false
}

// UnloadPlugin revokes the installation and unregisters the class. Live
// instances keep working; only future CreatePlugin calls fail.
func (l *Loader) UnloadPlugin(id string) bool {
	l.mu.Lock()
	_, was := l.loaded[id]
	delete(l.loaded, id)
	l.mu.Unlock()
	if !was {
		return false
	}
	l.installer.Revoke(id)
	l.reg.Unregister(id)
	l.log.Info("plugin unloaded", "plugin", id)
	return true
}

// Loaded returns the ids currently loaded from the catalog.
func (l *Loader) Loaded() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.loaded))
	for id := range l.loaded {
		out = append(out, id)
	}
	return out
}

// CheckForUpdates diffs the catalog against the loaded set: enabled entries
// not yet loaded are loaded, loaded ids that disappeared or were disabled
// are unloaded. A failed fetch skips the tick.
func (l *Loader) CheckForUpdates(ctx context.Context) {
	entries, err := l.fetchCatalog(ctx)
	if err != nil {
		l.log.Warn("catalog unavailable, skipping tick", "err", err)
		return
	}
	want := make(map[string]bool, len(entries))
	for _, e := range entries {
		want[e.ID] = e.Enabled
		if e.Enabled && !l.isLoaded(e.ID) {
			l.LoadPlugin(ctx, e)
		}
	}
	for _, id := range l.Loaded() {
		if !want[id] {
			l.UnloadPlugin(id)
		}
	}
}

// StartPolling begins periodic CheckForUpdates calls. Replaces any polling
// already running.
func (l *Loader) StartPolling(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	l.StopPolling()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	l.mu.Lock()
	l.cancel = cancel
	l.done = done
	l.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tickCtx, tickCancel := context.WithTimeout(ctx, interval)
				l.CheckForUpdates(tickCtx)
				tickCancel()
			}
		}
	}()
}

// StopPolling cancels polling, if running.
func (l *Loader) StopPolling() {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.cancel, l.done = nil, nil
	l.mu.Unlock()
	if cancel != nil {
		cancel()
		<-done
	}
}

func (l *Loader) isLoaded(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.loaded[id]
	return ok
}

func (l *Loader) fetchCatalog(ctx context.Context) ([]catalog.Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+"/api/plugins/list", nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog unavailable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("catalog unavailable: status %d", resp.StatusCode)
	}
	var list catalog.ListResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("catalog unavailable: %w", err)
	}
	return list.Plugins, nil
}

// fetchArtifact downloads an artifact body with a cache-busting query so a
// re-fetch after upload never sees a stale intermediary cache.
func (l *Loader) fetchArtifact(ctx context.Context, filename string) ([]byte, error) {
	url := fmt.Sprintf("%s/plugins/%s?t=%d", l.baseURL, filename, time.Now().UnixNano())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("artifact fetch: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// entryMetadata maps a catalog entry onto registry metadata.
func entryMetadata(e catalog.Entry) plugin.Metadata {
	typ := "unknown"
	switch strings.ToLower(e.Category) {
	case "effect", "effects":
		typ = "effect"
	case "drums", "synths", "percussion", "instrument":
		typ = "instrument"
	}
	return plugin.Metadata{
		Name:        e.Name,
		Category:    e.Category,
		Description: e.Description,
		Type:        typ,
		Tags:        []string{},
	}
}
