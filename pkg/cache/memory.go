package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryOption customises a Memory cache.
type MemoryOption func(*memoryConfig)

type memoryConfig struct {
	ttl        time.Duration
	maxEntries int
}

// WithMemoryTTL expires entries after ttl. Zero keeps entries until evicted.
func WithMemoryTTL(ttl time.Duration) MemoryOption {
	return func(cfg *memoryConfig) {
		cfg.ttl = ttl
	}
}

// WithMaxEntries bounds the cache; the least recently used entry is evicted
// first. Zero means unbounded.
func WithMaxEntries(n int) MemoryOption {
	return func(cfg *memoryConfig) {
		cfg.maxEntries = n
	}
}

// Memory is an expiring LRU page cache safe for concurrent use.
type Memory struct {
	pages *expirable.LRU[string, Page]
}

var _ Cache = (*Memory)(nil)

// NewMemory constructs an empty in-memory cache.
func NewMemory(opts ...MemoryOption) *Memory {
	var cfg memoryConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Memory{pages: expirable.NewLRU[string, Page](cfg.maxEntries, nil, cfg.ttl)}
}

func (m *Memory) Get(ctx context.Context, key string) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	page, ok := m.pages.Get(key)
	if !ok {
		return Page{}, ErrMiss
	}
	return clonePage(page), nil
}

func (m *Memory) Set(ctx context.Context, key string, page Page) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.pages.Add(key, clonePage(page))
	return nil
}

func (m *Memory) Purge(context.Context) error {
	m.pages.Purge()
	return nil
}

func (m *Memory) Close() error {
	return m.Purge(context.Background())
}

// Len returns the number of stored entries. Expired entries count until the
// background sweep drops them.
func (m *Memory) Len() int {
	return m.pages.Len()
}

func clonePage(page Page) Page {
	page.Body = append([]byte(nil), page.Body...)
	return page
}
