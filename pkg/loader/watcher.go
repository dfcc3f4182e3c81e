package loader

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/goliatone/go-reqdoc/internal/logging"
)

// DefaultDebounce groups the bursts of events editors emit for one save.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reports changes to project, document and source files below a
// directory on the OS filesystem.
type Watcher struct {
	watcher  *fsnotify.Watcher
	root     string
	debounce time.Duration
	logger   *slog.Logger

	onChange func(paths []string)

	mu     sync.Mutex
	stopCh chan struct{}
	done   chan struct{}
}

// WatcherOption customises a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithWatchLogger sets the logger for watch errors.
func WithWatchLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWatcher watches root and all folders below it. onChange receives the
// changed paths, sorted and deduplicated, once per debounce window.
func NewWatcher(root string, onChange func(paths []string), opts ...WatcherOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		watcher:  fsw,
		root:     filepath.Clean(root),
		debounce: DefaultDebounce,
		logger:   logging.NewNop(),
		onChange: onChange,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	if err := w.watchDirRecursive(w.root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) watchDirRecursive(root string) error {
	if err := w.watcher.Add(root); err != nil {
		return err
	}
	return filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() || p == root {
			return nil
		}
		if _, skip := skipDirs[info.Name()]; skip || strings.HasPrefix(info.Name(), ".") {
			return filepath.SkipDir
		}
		_ = w.watcher.Add(p)
		return nil
	})
}

// Run processes events until ctx is done or Stop is called.
func (w *Watcher) Run(ctx context.Context) {
	defer close(w.done)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := make(map[string]struct{})

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.watchDirRecursive(event.Name)
				}
			}
			if !w.relevant(event.Name) {
				continue
			}
			pending[event.Name] = struct{}{}
			timer.Reset(w.debounce)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			pending = make(map[string]struct{})
			sort.Strings(paths)
			if w.onChange != nil {
				w.onChange(paths)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "root", w.root, "error", err)
		}
	}
}

// Stop ends Run and releases the underlying watcher. It is safe to call more
// than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	select {
	case <-w.stopCh:
		return
	default:
	}
	close(w.stopCh)
	_ = w.watcher.Close()
}

// Done is closed when Run returns.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

func (w *Watcher) relevant(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return false
	}
	for _, project := range ProjectFiles {
		if base == project {
			return true
		}
	}
	if IsDocumentFile(base) {
		return true
	}
	// Source files matter for coverage and markers.
	return filepath.Ext(base) != ""
}
