package catalog

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
)

// Server exposes a Store over HTTP with the catalog contract the hot-reload
// loader consumes, plus the management endpoints the outer UI uses.
type Server struct {
	store *Store
	log   *slog.Logger
}

// NewServer wraps store.
func NewServer(store *Store, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{store: store, log: log}
}

// Handler returns the catalog routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/plugins/list", s.handleList)
	mux.HandleFunc("POST /api/plugins/upload", s.handleUpload)
	mux.HandleFunc("POST /api/plugins/{id}/enable", s.handleEnable(true))
	mux.HandleFunc("POST /api/plugins/{id}/disable", s.handleEnable(false))
	mux.HandleFunc("DELETE /api/plugins/{id}", s.handleDelete)
	mux.HandleFunc("GET /api/plugins/{id}/download", s.handleDownload)
	mux.HandleFunc("GET /plugins/{filename}", s.handleArtifact)
	return mux
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.List()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []Entry{}
	}
	writeJSON(w, http.StatusOK, ListResponse{Plugins: entries})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("plugin")
	if err != nil {
		http.Error(w, "missing plugin file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	entry, err := s.store.Put(header.Filename, content)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.log.Info("plugin uploaded", "id", entry.ID, "file", entry.Filename, "size", entry.Size)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"id":      entry.ID,
		"name":    entry.Name,
		"message": "Plugin '" + entry.Name + "' uploaded successfully",
	})
}

func (s *Server) handleEnable(enabled bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if err := s.store.SetEnabled(id, enabled); err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.store.Delete(id); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	s.log.Info("plugin deleted", "id", id)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	path, err := s.store.Path(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	s.serveFile(w, path)
}

// handleArtifact serves artifact bodies to the loader. The cache-busting
// query the loader appends is ignored.
func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	id := IDFromFilename(r.PathValue("filename"))
	path, err := s.store.Path(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	s.serveFile(w, path)
}

func (s *Server) serveFile(w http.ResponseWriter, path string) {
	body, err := os.ReadFile(path)
	if err != nil {
		http.Error(w, "plugin file not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
