package uidsearch

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
)

// DeniedError is returned by a GuardFunc to answer with a specific status.
type DeniedError struct {
	Status int
	Reason string
}

func (e *DeniedError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return http.StatusText(e.status())
}

func (e *DeniedError) status() int {
	if e.Status < 400 {
		return http.StatusForbidden
	}
	return e.Status
}

type suggestions struct {
	Data []Option `json:"data"`
}

// Handler returns the JSON endpoint configured by fns.
func Handler(fns ...OptionFn) http.Handler {
	return HandlerWithOptions(NewOptions(fns...))
}

// HandlerWithOptions returns the JSON endpoint for opts. Without a Source it
// answers 503.
func HandlerWithOptions(opts Options) http.Handler {
	return &handler{opts: opts.withDefaults()}
}

type handler struct {
	opts Options
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		status(w, http.StatusMethodNotAllowed)
		return
	}
	if h.opts.Guard != nil {
		if err := h.opts.Guard(r); err != nil {
			code := http.StatusForbidden
			if denied := (*DeniedError)(nil); errors.As(err, &denied) {
				code = denied.status()
			}
			status(w, code)
			return
		}
	}
	if h.opts.Source == nil {
		status(w, http.StatusServiceUnavailable)
		return
	}
	entries, err := h.opts.Source(r.Context())
	if err != nil {
		status(w, http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get(h.opts.LimitParam))
	body := suggestions{Data: SearchOptions(entries, query.Get(h.opts.SearchParam), query.Get(h.opts.ExcludeParam), limit, h.opts)}
	if body.Data == nil {
		body.Data = []Option{}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}

func status(w http.ResponseWriter, code int) {
	http.Error(w, http.StatusText(code), code)
}
