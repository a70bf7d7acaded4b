// Package web serves the browser UI for a wamcp server.
package web

import (
	"embed"
	"encoding/json"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

//go:embed static
var staticFS embed.FS

// Handler serves the embedded single-page app. Unknown paths fall back to
// index.html so client-side routes survive a reload.
type Handler struct {
	apiURL string
	files  fs.FS
}

// NewHandler returns a Handler whose app talks to the tool endpoints at
// apiURL, e.g. http://localhost:3001/mcp/tools.
func NewHandler(apiURL string) *Handler {
	files, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return &Handler{apiURL: strings.TrimRight(apiURL, "/"), files: files}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.AllowAll().Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Get("/config.js", h.HandleConfig)
	r.Get("/*", h.HandleStatic)
	return r
}

// HandleConfig publishes the API base URL to the app.
func (h *Handler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	u, err := json.Marshal(h.apiURL)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write([]byte("window.WAMCP_API_URL = " + string(u) + ";\n"))
}

func (h *Handler) HandleStatic(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if name == "" {
		name = "index.html"
	}
	if st, err := fs.Stat(h.files, name); err != nil || st.IsDir() {
		name = "index.html"
	}
	http.ServeFileFS(w, r, h.files, name)
}
