package server

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
)

// handlePDF serves one artifact from the shelf directory. The route takes a
// single path segment; anything that is not a plain PDF file name is
// rejected before touching the filesystem, and the resolved path must still
// sit inside the shelf after symlink evaluation.
func (s *Server) handlePDF(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "file")

	if !validArtifactName(name) {
		s.logger.Warn().
			Str("event", "server.pdf_denied").
			Str("name", name).
			Str("reason", "bad_name").
			Msg("rejected artifact request")
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	shelfDir, err := filepath.EvalSymlinks(s.shelf.Dir())
	if err != nil {
		s.logger.Error().Err(err).Str("event", "server.pdf_error").Msg("resolving shelf directory")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	realPath, err := filepath.EvalSymlinks(filepath.Join(shelfDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		s.logger.Error().Err(err).Str("event", "server.pdf_error").Msg("resolving artifact path")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// Containment check: symlinked artifacts must not escape the shelf.
	rel, err := filepath.Rel(shelfDir, realPath)
	if err != nil || strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
		s.logger.Warn().
			Str("event", "server.pdf_denied").
			Str("name", name).
			Str("resolved", realPath).
			Str("reason", "path_escape").
			Msg("artifact path escapes the shelf")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	f, err := os.Open(realPath) // #nosec G304 -- resolved path verified inside the shelf
	if err != nil {
		s.logger.Error().Err(err).Str("event", "server.pdf_error").Msg("opening artifact")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	// Weak ETag from modtime and size; the development artifact changes on
	// every build, so clients revalidate instead of caching blindly.
	etag := fmt.Sprintf(`W/"%x-%x"`, info.ModTime().UnixNano(), info.Size())
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// validArtifactName accepts plain PDF file names: one segment, no
// separators, no traversal, no hidden files.
func validArtifactName(name string) bool {
	if name == "" || len(name) > 255 {
		return false
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return false
	}
	if strings.HasPrefix(name, ".") || strings.Contains(name, "..") {
		return false
	}
	return strings.HasSuffix(name, ".pdf")
}
