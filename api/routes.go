package api

import (
	"encoding/json"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"recipe-desk/recipe"
	"recipe-desk/workspace"
)

// alertDuration is how long transient notifications stay on screen.
const alertDuration = 2 * time.Second

// Options carries the link settings and build information handlers need.
type Options struct {
	// BaseURL fixes the address share links start from. Empty means derive
	// it from the incoming request.
	BaseURL       string
	ReportBaseURL string
	Version       string
}

func RegisterRoutes(manager *workspace.Manager, store *recipe.Store, opts Options, staticFS fs.FS) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	h := &handler{manager: manager, store: store, opts: opts}

	// Saved recipes
	r.Get("/api/recipes", h.listRecipes)
	r.Post("/api/recipes", h.createRecipe)
	r.Get("/api/recipes/{id}", h.getRecipe)
	r.Delete("/api/recipes/{id}", h.deleteRecipe)

	// Share links built from user-edited text
	r.Post("/api/links", h.createLink)

	// Workspaces
	r.Get("/api/workspaces", h.listWorkspaces)
	r.Post("/api/workspaces", h.createWorkspace)
	r.Route("/api/workspaces/{id}", func(r chi.Router) {
		r.Get("/", h.getWorkspace)
		r.Delete("/", h.closeWorkspace)
		r.Put("/input", h.putInput)
		r.Post("/controls", h.postControl)
		r.Get("/link", h.workspaceLink)
		r.Get("/save-text", h.saveText)
		r.Post("/recipes", h.saveWorkspaceRecipe)
		r.Post("/load", h.loadWorkspaceRecipe)
		r.Get("/report", h.report)
		r.Get("/ws", h.handleWS)
	})

	// Static sub-FS: strip the "static/" prefix present in the embed.FS.
	// When staticFS is already rooted at the assets, fs.Sub still succeeds,
	// so probe index.html to detect that.
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		staticSub = staticFS
	} else if _, statErr := fs.Stat(staticSub, "index.html"); statErr != nil {
		staticSub = staticFS
	}

	// Serve the page by reading from the FS directly. http.FileServer
	// redirects paths ending in "index.html" to "./".
	r.Get("/", serveFile(staticSub, "index.html"))
	r.Get("/workspace/{id}", serveFile(staticSub, "index.html"))

	return r
}

// serveFile returns a handler that reads a single file from fsys and sends it.
func serveFile(fsys fs.FS, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(content)
	}
}

type handler struct {
	manager *workspace.Manager
	store   *recipe.Store
	opts    Options
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// baseAddress picks the address share links start from: an explicit value,
// then the configured one, then the scheme and host the request came in on.
func (h *handler) baseAddress(r *http.Request, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if h.opts.BaseURL != "" {
		return h.opts.BaseURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host + "/"
}
