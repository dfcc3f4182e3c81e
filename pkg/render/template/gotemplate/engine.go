// Package gotemplate implements template.TemplateRenderer on top of
// github.com/goliatone/go-template.
//
// Templates are self-contained: composition happens in Go and child markup is
// handed to the parent as a pre-rendered string printed with the |safe
// filter. Every other value is auto-escaped.
package gotemplate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/flosch/pongo2/v6"
	gotemplatepkg "github.com/goliatone/go-template"
	"github.com/spf13/afero"

	"github.com/goliatone/go-reqdoc/pkg/model"
	"github.com/goliatone/go-reqdoc/pkg/render/template"
)

// DefaultExtension is appended to template names that carry no extension.
const DefaultExtension = ".tmpl"

// Option configures the engine before construction.
type Option func(*config)

type config struct {
	baseDir   string
	sources   []fs.FS
	extension string
	globals   map[string]any
	funcs     map[string]any
}

// WithBaseDir loads templates from a directory on disk. It is searched before
// any fs.FS source, so single partials can be overridden.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithFS adds a template source. Sources are searched in the order given.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.sources = append(cfg.sources, files)
		}
	}
}

// WithExtension overrides DefaultExtension.
func WithExtension(ext string) Option {
	return func(cfg *config) {
		if ext = strings.TrimSpace(ext); ext != "" {
			cfg.extension = "." + strings.TrimPrefix(ext, ".")
		}
	}
}

// WithGlobals makes values visible to every template.
func WithGlobals(values map[string]any) Option {
	return func(cfg *config) {
		if cfg.globals == nil {
			cfg.globals = make(map[string]any, len(values))
		}
		maps.Copy(cfg.globals, values)
	}
}

// WithFuncs registers helper functions callable from templates.
func WithFuncs(funcs map[string]any) Option {
	return func(cfg *config) {
		if cfg.funcs == nil {
			cfg.funcs = make(map[string]any, len(funcs))
		}
		maps.Copy(cfg.funcs, funcs)
	}
}

type backend interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
}

// Engine adapts a go-template renderer reading from a stack of sources.
type Engine struct {
	renderer backend
	files    fs.FS
	ext      string
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New builds an Engine. At least one template source is required.
func New(options ...Option) (*Engine, error) {
	cfg := config{extension: DefaultExtension}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.baseDir == "" && len(cfg.sources) == 0 {
		return nil, errors.New("gotemplate: no template source configured")
	}
	if cfg.baseDir != "" {
		if _, err := os.Stat(cfg.baseDir); err != nil {
			return nil, fmt.Errorf("gotemplate: template dir: %w", err)
		}
	}
	files := layered(cfg.baseDir, cfg.sources)

	registerFilters()
	opts := []gotemplatepkg.Option{
		gotemplatepkg.WithFS(files),
		gotemplatepkg.WithExtension(cfg.extension),
	}
	if len(cfg.globals) > 0 {
		globals, err := plainMap(cfg.globals)
		if err != nil {
			return nil, fmt.Errorf("gotemplate: globals: %w", err)
		}
		opts = append(opts, gotemplatepkg.WithGlobalData(globals))
	}
	if len(cfg.funcs) > 0 {
		opts = append(opts, gotemplatepkg.WithTemplateFunc(cfg.funcs))
	}

	renderer, err := gotemplatepkg.NewRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: configure renderer: %w", err)
	}
	return &Engine{renderer: renderer, files: files, ext: cfg.extension}, nil
}

// layered stacks the sources into one read-only tree. The base dir shadows
// every fs.FS and earlier sources shadow later ones.
func layered(baseDir string, sources []fs.FS) fs.FS {
	if baseDir == "" && len(sources) == 1 {
		return sources[0]
	}
	var stack []afero.Fs
	if baseDir != "" {
		stack = append(stack, afero.NewReadOnlyFs(afero.NewBasePathFs(afero.NewOsFs(), baseDir)))
	}
	for _, src := range sources {
		stack = append(stack, afero.FromIOFS{FS: src})
	}
	merged := stack[len(stack)-1]
	for i := len(stack) - 2; i >= 0; i-- {
		merged = afero.NewCopyOnWriteFs(merged, stack[i])
	}
	return afero.NewIOFS(merged)
}

// RenderTemplate renders the named template, adding the extension when the
// name has none.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	scope, err := toContext(data)
	if err != nil {
		return "", fmt.Errorf("gotemplate: template data: %w", err)
	}
	rendered, err := e.renderer.RenderTemplate(e.path(name), scope)
	if err != nil {
		return "", fmt.Errorf("gotemplate: render %q: %w", name, err)
	}
	return rendered, writeAll(rendered, out)
}

// RenderString renders inline template source.
func (e *Engine) RenderString(source string, data any, out ...io.Writer) (string, error) {
	scope, err := toContext(data)
	if err != nil {
		return "", fmt.Errorf("gotemplate: template data: %w", err)
	}
	rendered, err := e.renderer.RenderString(source, scope)
	if err != nil {
		return "", fmt.Errorf("gotemplate: render inline template: %w", err)
	}
	return rendered, writeAll(rendered, out)
}

// Exists reports whether name resolves to a file in any source.
func (e *Engine) Exists(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	info, err := fs.Stat(e.files, e.path(name))
	return err == nil && !info.IsDir()
}

func (e *Engine) path(name string) string {
	if strings.HasSuffix(name, e.ext) {
		return name
	}
	return name + e.ext
}

func writeAll(rendered string, out []io.Writer) error {
	for _, w := range out {
		if w == nil {
			continue
		}
		if _, err := io.WriteString(w, rendered); err != nil {
			return err
		}
	}
	return nil
}

// toContext turns the render data into a pongo2 scope. Maps keep their keys;
// structs become maps keyed by their JSON names.
func toContext(data any) (pongo2.Context, error) {
	if data == nil {
		return pongo2.Context{}, nil
	}
	value, err := plain(data)
	if err != nil {
		return nil, err
	}
	m, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("data of type %T is not an object", data)
	}
	delete(m, "")
	return pongo2.Context(m), nil
}

// plain converts data to maps, slices, strings, bools and functions.
// Integers become decimal strings so they print the same after any JSON
// round trip the renderer applies.
func plain(value any) (any, error) {
	switch v := value.(type) {
	case nil, string, bool, float64:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case []string:
		return plainSlice(stringsToAny(v))
	case map[string]string:
		out := make(map[string]any, len(v))
		for key, s := range v {
			out[strings.TrimSpace(key)] = s
		}
		return out, nil
	case pongo2.Context:
		return plainMap(v)
	case map[string]any:
		return plainMap(v)
	case []any:
		return plainSlice(v)
	case json.Number:
		if _, err := v.Int64(); err == nil {
			return v.String(), nil
		}
		return v.Float64()
	}
	if reflect.ValueOf(value).Kind() == reflect.Func {
		return value, nil
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(encoded))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return nil, err
	}
	return plain(decoded)
}

func plainMap(in map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(in))
	for key, value := range in {
		converted, err := plain(value)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		out[strings.TrimSpace(key)] = converted
	}
	return out, nil
}

func plainSlice(in []any) ([]any, error) {
	out := make([]any, len(in))
	for i, value := range in {
		converted, err := plain(value)
		if err != nil {
			return nil, err
		}
		out[i] = converted
	}
	return out, nil
}

func stringsToAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

var registerOnce sync.Once

// registerFilters adds the reqdoc filters to pongo2's process-wide table,
// which go-template shares.
func registerFilters() {
	registerOnce.Do(func() {
		filters := map[string]pongo2.FilterFunction{
			"trim":       stringFilter(strings.TrimSpace),
			"lowerfirst": stringFilter(lowerFirst),
			"anchorize":  stringFilter(model.Slugify),
		}
		for name, fn := range filters {
			if !pongo2.FilterExists(name) {
				_ = pongo2.RegisterFilter(name, fn)
			}
		}
	})
}

func stringFilter(fn func(string) string) pongo2.FilterFunction {
	return func(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		return pongo2.AsValue(fn(in.String())), nil
	}
}

// lowerFirst lower-cases the first non-space rune.
func lowerFirst(s string) string {
	i := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsSpace(r) })
	if i < 0 {
		return s
	}
	r := []rune(s[i:])
	r[0] = unicode.ToLower(r[0])
	return s[:i] + string(r)
}
