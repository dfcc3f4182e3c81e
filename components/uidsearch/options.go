package uidsearch

import (
	"cmp"
	"context"
	"net/http"
)

// EmptySearchMode decides what an empty query returns.
type EmptySearchMode string

const (
	EmptySearchNone EmptySearchMode = "none" // no suggestions
	EmptySearchTop  EmptySearchMode = "top"  // the first entries in document order
)

// GuardFunc rejects a request by returning an error. A *DeniedError picks
// the status code; any other error answers 403.
type GuardFunc func(r *http.Request) error

// Source returns the entries to search. The server reads them from the
// current project snapshot on every request.
type Source func(ctx context.Context) ([]Entry, error)

// Options configures the endpoint. Zero fields take the defaults.
type Options struct {
	RoutePath       string
	SearchParam     string
	LimitParam      string
	ExcludeParam    string
	DefaultLimit    int
	MaxLimit        int
	EmptySearchMode EmptySearchMode
	Guard           GuardFunc
	Source          Source
}

type OptionFn func(*Options)

// DefaultOptions serves GET /autocomplete/uid?q=&limit=&exclude=.
func DefaultOptions() Options {
	return Options{
		RoutePath:       "/autocomplete/uid",
		SearchParam:     "q",
		LimitParam:      "limit",
		ExcludeParam:    "exclude",
		DefaultLimit:    20,
		MaxLimit:        100,
		EmptySearchMode: EmptySearchNone,
	}
}

// NewOptions applies fns over the defaults.
func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn != nil {
			fn(&opts)
		}
	}
	return opts.withDefaults()
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	o.RoutePath = cmp.Or(o.RoutePath, d.RoutePath)
	o.SearchParam = cmp.Or(o.SearchParam, d.SearchParam)
	o.LimitParam = cmp.Or(o.LimitParam, d.LimitParam)
	o.ExcludeParam = cmp.Or(o.ExcludeParam, d.ExcludeParam)
	o.EmptySearchMode = cmp.Or(o.EmptySearchMode, d.EmptySearchMode)
	if o.DefaultLimit <= 0 {
		o.DefaultLimit = d.DefaultLimit
	}
	if o.MaxLimit <= 0 {
		o.MaxLimit = d.MaxLimit
	}
	return o
}

func WithRoutePath(path string) OptionFn {
	return func(o *Options) { o.RoutePath = path }
}

func WithSearchParam(name string) OptionFn {
	return func(o *Options) { o.SearchParam = name }
}

func WithLimitParam(name string) OptionFn {
	return func(o *Options) { o.LimitParam = name }
}

func WithDefaultLimit(limit int) OptionFn {
	return func(o *Options) { o.DefaultLimit = limit }
}

func WithMaxLimit(limit int) OptionFn {
	return func(o *Options) { o.MaxLimit = limit }
}

func WithEmptySearchMode(mode EmptySearchMode) OptionFn {
	return func(o *Options) { o.EmptySearchMode = mode }
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) { o.Guard = guard }
}

func WithSource(source Source) OptionFn {
	return func(o *Options) { o.Source = source }
}

// WithEntries searches a fixed list.
func WithEntries(entries []Entry) OptionFn {
	fixed := append([]Entry(nil), entries...)
	return WithSource(func(context.Context) ([]Entry, error) {
		return fixed, nil
	})
}

// limitFor turns the requested limit into the number of suggestions to
// return. Zero asks for the default and negative values return nothing.
func (o Options) limitFor(requested int) int {
	switch {
	case requested < 0:
		return 0
	case requested == 0:
		requested = o.DefaultLimit
	}
	return min(requested, o.MaxLimit)
}
