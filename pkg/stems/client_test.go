package stems

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSeparate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/research/stem-separation/separate" {
			t.Errorf("path = %q", r.URL.Path)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("FormFile: %v", err)
		}
		defer file.Close()
		if header.Filename != "mix.wav" {
			t.Errorf("filename = %q", header.Filename)
		}
		body, _ := io.ReadAll(file)
		if string(body) != "fake-wav-bytes" {
			t.Errorf("body = %q", body)
		}
		json.NewEncoder(w).Encode(SeparationResult{
			Success: true,
			Stems: []Stem{
				{Name: "bass", Type: "bass", QualityScore: 0.91, DownloadURL: "/stems/bass.wav"},
				{Name: "drums", Type: "drums", QualityScore: 0.88, DownloadURL: "/stems/drums.wav"},
			},
			ProcessingTimeSeconds: 12.5,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	result, err := c.Separate(context.Background(), "mix.wav", strings.NewReader("fake-wav-bytes"))
	if err != nil {
		t.Fatalf("Separate: %v", err)
	}
	if len(result.Stems) != 2 {
		t.Fatalf("stems = %d, want 2", len(result.Stems))
	}
	if result.Stems[0].Name != "bass" || result.Stems[0].QualityScore != 0.91 {
		t.Errorf("stem[0] = %+v", result.Stems[0])
	}
}

func TestSeparateServiceFailure(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "http error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "model not loaded", http.StatusServiceUnavailable)
			},
		},
		{
			name: "unsuccessful result",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(SeparationResult{Success: false})
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()
			c := NewClient(srv.URL)
			if _, err := c.Separate(context.Background(), "mix.wav", strings.NewReader("x")); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
