package handlers

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"
)

// staticFiles holds the browser UI.
//
//go:embed static/*
var staticFiles embed.FS

func (h *Handler) HandleStatic(w http.ResponseWriter, r *http.Request) {
	filepath := strings.TrimPrefix(r.URL.Path, "/")
	if filepath == "" {
		filepath = "index.html"
	}

	// Prevent directory traversal attacks
	if strings.Contains(filepath, "..") {
		http.Error(w, "Invalid file path", http.StatusBadRequest)
		return
	}

	// Set appropriate content type based on file extension
	switch {
	case strings.HasSuffix(filepath, ".css"):
		w.Header().Set("Content-Type", "text/css")
	case strings.HasSuffix(filepath, ".js"):
		w.Header().Set("Content-Type", "application/javascript")
	case strings.HasSuffix(filepath, ".html"):
		w.Header().Set("Content-Type", "text/html")
	}

	root, err := fs.Sub(staticFiles, "static")
	if err != nil {
		h.writeError(w, "static assets unavailable", http.StatusInternalServerError)
		return
	}
	http.ServeFileFS(w, r, root, filepath)
}
