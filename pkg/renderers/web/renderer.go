// Package web renders the HTML screens, node presentations and Turbo-Stream
// responses of the requirements tool.
//
// Every component is a small pongo2 template looked up through a component
// registry. Composition happens in Go: a parent renders its children first
// and passes their markup down as a pre-rendered string, so the template
// layer never includes or extends other templates.
package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/goliatone/go-reqdoc/pkg/render"
	rendertemplate "github.com/goliatone/go-reqdoc/pkg/render/template"
	"github.com/goliatone/go-reqdoc/pkg/render/template/gotemplate"
	"github.com/goliatone/go-reqdoc/pkg/renderers/web/components"
	"github.com/goliatone/go-reqdoc/pkg/view"
)

// ContentType is the media type of full pages and fragments.
const ContentType = "text/html; charset=utf-8"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateDir      string
	templateRenderer rendertemplate.TemplateRenderer
	registry         *components.Registry
	overrides        map[string]components.Descriptor
}

// WithTemplatesFS supplies an additional template bundle searched before the
// embedded one, so single partials can be overridden.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads override templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateDir = path
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithRegistry replaces the default component registry.
func WithRegistry(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.registry = registry
		}
	}
}

// WithComponent replaces one component of the registry in use, leaving the
// shared registry untouched.
func WithComponent(name string, descriptor components.Descriptor) Option {
	return func(cfg *config) {
		if cfg.overrides == nil {
			cfg.overrides = make(map[string]components.Descriptor)
		}
		cfg.overrides[name] = descriptor
	}
}

// Renderer produces HTML for every screen.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
	registry  *components.Registry
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the web renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engineOpts := []gotemplate.Option{gotemplate.WithExtension(".tmpl")}
		if cfg.templateDir != "" {
			if _, err := os.Stat(cfg.templateDir); err != nil {
				return nil, fmt.Errorf("web renderer: templates dir: %w", err)
			}
			engineOpts = append(engineOpts, gotemplate.WithBaseDir(cfg.templateDir))
		}
		if cfg.templateFS != nil {
			engineOpts = append(engineOpts, gotemplate.WithFS(cfg.templateFS))
		}
		engineOpts = append(engineOpts, gotemplate.WithFS(TemplatesFS()))

		engine, err := gotemplate.New(engineOpts...)
		if err != nil {
			return nil, fmt.Errorf("web renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	registry := cfg.registry
	if registry == nil {
		registry = components.NewDefaultRegistry()
	}
	if len(cfg.overrides) > 0 {
		registry = registry.Clone()
		for name, descriptor := range cfg.overrides {
			if err := registry.Register(name, descriptor); err != nil {
				return nil, fmt.Errorf("web renderer: %w", err)
			}
		}
	}

	return &Renderer{templates: renderer, registry: registry}, nil
}

func (r *Renderer) Name() string {
	return "html"
}

func (r *Renderer) ContentType() string {
	return ContentType
}

// Registry exposes the component registry for callers that want to render
// single components.
func (r *Renderer) Registry() *components.Registry {
	return r.registry
}

// Render dispatches on req.Screen.
func (r *Renderer) Render(ctx context.Context, req render.Request) ([]byte, error) {
	if r.templates == nil {
		return nil, errors.New("web renderer: template renderer is nil")
	}
	if req.View == nil {
		return nil, errors.New("web renderer: view object is required")
	}

	p := r.newPage(ctx, req.View, req.Options)
	var (
		out string
		err error
	)
	switch req.Screen {
	case render.ScreenDocument:
		out, err = p.documentPage()
	case render.ScreenDocumentContent:
		out, err = p.documentContent()
	case render.ScreenTOC:
		out, err = p.toc()
	case render.ScreenNode:
		out, err = p.nodeScreen(req.Namespace, req.Options.Variant)
	case render.ScreenProjectIndex:
		out, err = p.projectIndexPage()
	case render.ScreenProjectTree:
		out, err = p.projectTree()
	case render.ScreenMatrix:
		out, err = p.matrixPage()
	case render.ScreenCoverage:
		out, err = p.coveragePage()
	case render.ScreenDiff:
		out, err = p.diffPage(req.Changes)
	case render.ScreenChangelog:
		out, err = p.changelogPage(req.Changes)
	case render.ScreenPDF:
		out, err = p.pdfPage()
	default:
		return nil, fmt.Errorf("web renderer: %w %q", render.ErrUnsupportedScreen, req.Screen)
	}
	if err != nil {
		return nil, fmt.Errorf("web renderer: render %s: %w", req.Screen, err)
	}
	return []byte(out), nil
}

// Component renders a single registered component with ns as its scope.
func (r *Renderer) Component(ctx context.Context, name string, ns render.Namespace, opts render.RenderOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	data := components.ComponentData{Template: r.templates, Theme: opts.Theme}
	if err := r.registry.Render(&buf, name, ns, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *Renderer) newPage(ctx context.Context, obj *view.Object, opts render.RenderOptions) *page {
	if ctx == nil {
		ctx = context.Background()
	}
	return &page{
		ctx:      ctx,
		view:     obj,
		registry: r.registry,
		data:     components.ComponentData{Template: r.templates, Theme: opts.Theme},
		opts:     opts,
	}
}
