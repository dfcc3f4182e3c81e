package uidsearch

import (
	"errors"
	"net/http"
	"path"
	"strings"
)

// Mux is satisfied by *http.ServeMux and chi.Router.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// Component is the UID autocomplete endpoint ready to mount.
type Component struct {
	opts Options
}

// New returns a component configured by fns.
func New(fns ...OptionFn) *Component {
	return &Component{opts: NewOptions(fns...)}
}

// Options returns the effective configuration.
func (c *Component) Options() Options {
	return c.opts
}

// Handler returns the JSON endpoint.
func (c *Component) Handler() http.Handler {
	return HandlerWithOptions(c.opts)
}

// RegisterRoutes mounts the endpoint below basePath and returns the pattern
// it registered.
func (c *Component) RegisterRoutes(mux Mux, basePath string) (string, error) {
	if mux == nil {
		return "", errors.New("uidsearch: nil mux")
	}
	pattern := MountPath(basePath, c.opts.RoutePath)
	mux.Handle(pattern, c.Handler())
	return pattern, nil
}

// MountPath joins basePath and routePath into one absolute, clean route.
func MountPath(basePath, routePath string) string {
	return path.Join("/", strings.TrimSpace(basePath), strings.TrimSpace(routePath))
}
