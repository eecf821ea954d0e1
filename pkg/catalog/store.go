package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const metadataFile = "plugin-metadata.json"

// Store is a directory of .go plugin artifacts plus a metadata sidecar.
// Artifacts dropped into the directory out of band are picked up on the
// next List (or immediately when Watch is running).
type Store struct {
	dir string
	log *slog.Logger

	mu   sync.Mutex
	meta map[string]Entry
}

// Open creates the directory if needed and loads the metadata sidecar.
func Open(dir string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create plugin dir: %w", err)
	}
	s := &Store{dir: dir, log: log, meta: make(map[string]Entry)}
	raw, err := os.ReadFile(filepath.Join(dir, metadataFile))
	if err == nil {
		if err := json.Unmarshal(raw, &s.meta); err != nil {
			log.Warn("plugin metadata unreadable, rebuilding", "err", err)
			s.meta = make(map[string]Entry)
		}
	}
	return s, nil
}

// Dir returns the artifact directory.
func (s *Store) Dir() string { return s.dir }

// List scans the directory and returns every artifact's entry, synthesising
// default metadata for files that have none yet.
func (s *Store) List() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var out []Entry
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".go") {
			continue
		}
		id := IDFromFilename(f.Name())
		entry, ok := s.meta[id]
		if !ok {
			info, err := f.Info()
			if err != nil {
				continue
			}
			entry = Entry{
				ID:          id,
				Name:        defaultName(id),
				Description: "No description",
				Category:    "effect",
				Enabled:     true,
				Size:        info.Size(),
				UploadedAt:  info.ModTime().UTC().Format(time.RFC3339),
				Filename:    f.Name(),
			}
			s.meta[id] = entry
		}
		out = append(out, entry)
	}
	s.saveLocked()
	return out, nil
}

// Put validates and stores an uploaded artifact, replacing any previous
// version of the same id. The artifact must export the constructor symbol
// derived from its id.
func (s *Store) Put(filename string, content []byte) (Entry, error) {
	if !strings.HasSuffix(filename, ".go") {
		return Entry{}, fmt.Errorf("only .go artifacts are allowed")
	}
	id := IDFromFilename(filename)
	src := string(content)
	if !strings.Contains(src, ClassName(id)) {
		return Entry{}, fmt.Errorf("artifact must define %s", ClassName(id))
	}

	if err := os.WriteFile(filepath.Join(s.dir, filename), content, 0o644); err != nil {
		return Entry{}, err
	}

	name, category, description := extractInfo(id, src)
	entry := Entry{
		ID:          id,
		Name:        name,
		Description: description,
		Category:    category,
		Enabled:     true,
		Size:        int64(len(content)),
		UploadedAt:  time.Now().UTC().Format(time.RFC3339),
		Filename:    filename,
	}

	s.mu.Lock()
	s.meta[id] = entry
	s.saveLocked()
	s.mu.Unlock()
	return entry, nil
}

// SetEnabled flips the enabled flag for id.
func (s *Store) SetEnabled(id string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.meta[id]
	if !ok {
		return fmt.Errorf("plugin not found: %q", id)
	}
	entry.Enabled = enabled
	s.meta[id] = entry
	s.saveLocked()
	return nil
}

// Delete removes an artifact and its metadata.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.meta[id]
	if !ok {
		return fmt.Errorf("plugin not found: %q", id)
	}
	if err := os.Remove(filepath.Join(s.dir, entry.Filename)); err != nil && !os.IsNotExist(err) {
		return err
	}
	delete(s.meta, id)
	s.saveLocked()
	return nil
}

// Path resolves id to the artifact file path.
func (s *Store) Path(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.meta[id]
	if !ok {
		return "", fmt.Errorf("plugin not found: %q", id)
	}
	return filepath.Join(s.dir, entry.Filename), nil
}

// Watch re-scans the directory whenever artifact files change on disk, so
// out-of-band edits show up in the served list. Blocks until ctx is done.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(s.dir); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(ev.Name, ".go") {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				s.log.Debug("plugin dir changed", "file", ev.Name, "op", ev.Op.String())
				if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
					s.dropMissing()
				}
				if _, err := s.List(); err != nil {
					s.log.Warn("rescan failed", "err", err)
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.Warn("watch error", "err", err)
		}
	}
}

// dropMissing forgets metadata whose artifact file disappeared.
func (s *Store) dropMissing() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, entry := range s.meta {
		if _, err := os.Stat(filepath.Join(s.dir, entry.Filename)); os.IsNotExist(err) {
			delete(s.meta, id)
		}
	}
	s.saveLocked()
}

// saveLocked persists the metadata sidecar. Caller holds s.mu.
func (s *Store) saveLocked() {
	raw, err := json.MarshalIndent(s.meta, "", "  ")
	if err != nil {
		return
	}
	if err := os.WriteFile(filepath.Join(s.dir, metadataFile), raw, 0o644); err != nil {
		s.log.Warn("save metadata failed", "err", err)
	}
}

// defaultName turns a kebab-case id into a title-cased display name.
func defaultName(id string) string {
	parts := strings.Split(id, "-")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}

// extractInfo pulls name, category, and description from artifact comments
// of the form "// Category: drums" and "// Description: ...".
func extractInfo(id, src string) (name, category, description string) {
	name = defaultName(id)
	category = "effect"
	for _, line := range strings.Split(src, "\n") {
		switch {
		case strings.Contains(line, "// Category:"):
			category = strings.ToLower(strings.TrimSpace(strings.SplitN(line, ":", 2)[1]))
		case strings.Contains(line, "// Description:"):
			description = strings.TrimSpace(strings.SplitN(line, ":", 2)[1])
		}
	}
	if description == "" {
		description = fmt.Sprintf("Custom %s plugin", category)
	}
	return name, category, description
}
