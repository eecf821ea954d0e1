// Package catalog defines the plugin catalog wire format and implements the
// catalog service: a directory of plugin source artifacts served over HTTP
// with list/upload/enable/disable/delete endpoints.
package catalog

import "strings"

// Entry describes one installable plugin as served by the catalog.
type Entry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Enabled     bool   `json:"enabled"`
	Size        int64  `json:"size,omitempty"`
	UploadedAt  string `json:"uploadedAt,omitempty"`
	Filename    string `json:"filename"`
}

// ListResponse is the body of GET /api/plugins/list.
type ListResponse struct {
	Plugins []Entry `json:"plugins"`
}

// ClassName derives the constructor symbol an artifact must export from its
// kebab-case id: each segment is capitalised and the literal "Plugin" is
// appended, so "my-plugin" exports MyPluginPlugin.
func ClassName(id string) string {
	var b strings.Builder
	for _, part := range strings.Split(id, "-") {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	b.WriteString("Plugin")
	return b.String()
}

// IDFromFilename derives the plugin id from an artifact filename: extension
// stripped, lower-cased, separators normalised to kebab-case.
func IDFromFilename(filename string) string {
	id := filename
	if i := strings.LastIndex(id, "."); i >= 0 {
		id = id[:i]
	}
	id = strings.ToLower(id)
	id = strings.ReplaceAll(id, "_", "-")
	id = strings.ReplaceAll(id, " ", "-")
	return id
}
