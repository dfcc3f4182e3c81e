// Package cache stores rendered pages keyed by project revision, screen and
// request parameters.
package cache

import (
	"context"
	"errors"
	"strconv"
	"strings"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Page is a rendered response body.
type Page struct {
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// Cache is implemented by the in-memory and Redis page caches.
type Cache interface {
	Get(ctx context.Context, key string) (Page, error)
	Set(ctx context.Context, key string, page Page) error
	// Purge drops every page, e.g. after the project was reloaded.
	Purge(ctx context.Context) error
	Close() error
}

// Key joins the project revision and the request parts. Empty parts are
// kept so that "a", "" and "", "a" map to different keys.
func Key(revision uint64, parts ...string) string {
	var b strings.Builder
	b.WriteString("r")
	b.WriteString(strconv.FormatUint(revision, 10))
	for _, part := range parts {
		b.WriteByte('|')
		b.WriteString(strings.ReplaceAll(part, "|", "%7C"))
	}
	return b.String()
}

// Nop never stores anything.
type Nop struct{}

var _ Cache = Nop{}

func (Nop) Get(context.Context, string) (Page, error) { return Page{}, ErrMiss }
func (Nop) Set(context.Context, string, Page) error   { return nil }
func (Nop) Purge(context.Context) error               { return nil }
func (Nop) Close() error                              { return nil }
