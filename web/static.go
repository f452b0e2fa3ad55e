package web

import (
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
)

func (s *Server) handleResource(w http.ResponseWriter, r *http.Request) {
	path, ok := resolve(s.opts.ResourcesDir, r.PathValue("file"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, path)
}

// handleUI serves the single page app. Unknown paths get index.html so
// client side routes survive a reload.
func (s *Server) handleUI(w http.ResponseWriter, r *http.Request) {
	if path, ok := resolve(s.opts.UIDir, r.PathValue("file")); ok {
		http.ServeFile(w, r, path)
		return
	}

	index := filepath.Join(s.opts.UIDir, "index.html")
	if _, err := os.Stat(index); err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, index)
}

// resolve maps a request path below root to a regular file.
func resolve(root, name string) (string, bool) {
	if root == "" || name == "" || !fs.ValidPath(name) {
		return "", false
	}

	path := filepath.Join(root, filepath.FromSlash(name))
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}
