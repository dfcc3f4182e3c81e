// Package server serves the requirements screens over HTTP and applies the
// document editing actions, answering them with Turbo-Stream responses.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/goliatone/go-reqdoc/components/uidsearch"
	"github.com/goliatone/go-reqdoc/internal/logging"
	"github.com/goliatone/go-reqdoc/pkg/cache"
	"github.com/goliatone/go-reqdoc/pkg/render"
	"github.com/goliatone/go-reqdoc/pkg/renderers/markdown"
	"github.com/goliatone/go-reqdoc/pkg/renderers/web"
	"github.com/goliatone/go-reqdoc/pkg/view"
)

// Renderer names registered on the server's registry.
const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

// Option customises a Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCache stores rendered pages in c.
func WithCache(c cache.Cache) Option {
	return func(s *Server) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithMetrics records render and action metrics and serves them at path.
func WithMetrics(m *Metrics, path string) Option {
	return func(s *Server) {
		s.metrics = m
		if path != "" {
			s.metricsPath = path
		}
	}
}

// WithWebRenderer replaces the default HTML renderer, e.g. one with
// template overrides.
func WithWebRenderer(r *web.Renderer) Option {
	return func(s *Server) {
		if r != nil {
			s.html = r
		}
	}
}

// WithViewOptions adds options to every view object the server builds.
func WithViewOptions(opts ...view.Option) Option {
	return func(s *Server) {
		s.viewOpts = append(s.viewOpts, opts...)
	}
}

// WithRenderOptions sets the theme and style passed to every render.
func WithRenderOptions(opts render.RenderOptions) Option {
	return func(s *Server) {
		s.renderOpts = opts
	}
}

// WithLinkBase mounts document pages under base.
func WithLinkBase(base string) Option {
	return func(s *Server) {
		s.linkBase = normalizeBase(base)
	}
}

// WithStaticPrefix serves the bundled assets under prefix.
func WithStaticPrefix(prefix string) Option {
	return func(s *Server) {
		if p := strings.TrimRight(prefix, "/"); p != "" {
			s.staticPrefix = p
		}
	}
}

// Server renders the project held by a Store.
type Server struct {
	store        *Store
	html         *web.Renderer
	renderers    *render.Registry
	cache        cache.Cache
	metrics      *Metrics
	logger       *slog.Logger
	viewOpts     []view.Option
	renderOpts   render.RenderOptions
	linkBase     string
	staticPrefix string
	metricsPath  string
}

// New builds a server for store.
func New(store *Store, opts ...Option) (*Server, error) {
	if store == nil {
		return nil, errors.New("server: store is required")
	}
	s := &Server{
		store:        store,
		cache:        cache.Nop{},
		logger:       logging.NewNop(),
		linkBase:     "/",
		staticPrefix: "/_static",
		metricsPath:  "/metrics",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.html == nil {
		html, err := web.New()
		if err != nil {
			return nil, fmt.Errorf("server: %w", err)
		}
		s.html = html
	}
	s.renderers = render.NewRegistry()
	if err := s.renderers.Register(s.html); err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	if err := s.renderers.Register(markdown.New()); err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	return s, nil
}

// Store returns the store the server renders.
func (s *Server) Store() *Store {
	return s.store
}

// Reload re-reads the project into the store and drops cached pages.
func (s *Server) Reload(ctx context.Context) error {
	err := s.store.Reload(ctx)
	s.metrics.Reloaded(err)
	if err != nil {
		return err
	}
	if err := s.cache.Purge(ctx); err != nil {
		s.logger.Warn("purge page cache", "error", err)
	}
	s.logger.Info("project reloaded", "revision", s.store.Revision())
	return nil
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, s.metricsPath, s.metrics.Handler())
	}
	r.Handle(s.staticPrefix+"/*", http.StripPrefix(s.staticPrefix+"/", http.FileServer(http.FS(assets()))))
	_, _ = uidsearch.New(uidsearch.WithSource(s.uidEntries)).RegisterRoutes(r, "/")

	r.Route("/actions", func(r chi.Router) {
		r.Get("/show_full_node", s.showFullNode)

		r.Get("/document/new_section", s.newNodeForm)
		r.Get("/document/new_requirement", s.newNodeForm)
		r.Post("/document/create_node", s.createNode)
		r.Get("/document/clone_requirement", s.cloneRequirement)
		r.Post("/document/clone_requirement", s.cloneRequirement)

		r.Get("/document/edit_section", s.editNodeForm)
		r.Get("/document/edit_requirement", s.editNodeForm)
		r.Post("/document/update_node", s.updateNode)

		r.Get("/document/delete_section", s.confirmDelete)
		r.Get("/document/delete_requirement", s.confirmDelete)
		r.Delete("/document/delete_section", s.deleteNode)
		r.Delete("/document/delete_requirement", s.deleteNode)

		r.Get("/document/edit_config", s.editConfigForm)
		r.Post("/document/save_config", s.saveConfig)

		r.Get("/project_index/new_document", s.newDocumentForm)
		r.Post("/project_index/create_document", s.createDocument)
	})

	r.Get("/*", s.page)
	return r
}

// uidEntries feeds the UID autocomplete from the current revision.
func (s *Server) uidEntries(context.Context) ([]uidsearch.Entry, error) {
	var entries []uidsearch.Entry
	err := s.store.Read(func(snap Snapshot) error {
		entries = uidsearch.EntriesFromProject(snap.Project)
		return nil
	})
	return entries, err
}

func assets() fs.FS {
	return web.AssetsFS()
}

func normalizeBase(base string) string {
	base = strings.Trim(strings.TrimSpace(base), "/")
	if base == "" {
		return "/"
	}
	return "/" + base + "/"
}

// httpError logs server side failures and writes a plain text error.
func (s *Server) httpError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug("request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	http.Error(w, err.Error(), status)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, render.ErrUnsupportedScreen):
		return http.StatusNotAcceptable
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

var errBadRequest = errors.New("bad request")
