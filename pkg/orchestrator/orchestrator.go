package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-reqdoc/pkg/diff"
	"github.com/goliatone/go-reqdoc/pkg/model"
	"github.com/goliatone/go-reqdoc/pkg/render"
	"github.com/goliatone/go-reqdoc/pkg/renderers/markdown"
	"github.com/goliatone/go-reqdoc/pkg/renderers/web"
	"github.com/goliatone/go-reqdoc/pkg/trace"
	"github.com/goliatone/go-reqdoc/pkg/view"
)

const defaultRendererName = "html"

// ErrDocumentNotFound is returned when a request names an unknown document.
var ErrDocumentNotFound = errors.New("orchestrator: document not found")

// ProjectLoader reads a project from its source, e.g. *loader.Loader.
type ProjectLoader interface {
	Load(ctx context.Context) (*model.Project, error)
}

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithLoader sets the loader used when a request carries no project.
func WithLoader(l ProjectLoader) Option {
	return func(o *Orchestrator) {
		o.loader = l
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithViewOptions adds options to every view object built for a render.
func WithViewOptions(opts ...view.Option) Option {
	return func(o *Orchestrator) {
		o.viewOpts = append(o.viewOpts, opts...)
	}
}

// WithTransformers registers transformers that run on the project after
// loading and before indexing.
func WithTransformers(transformers ...Transformer) Option {
	return func(o *Orchestrator) {
		o.transformers = append(o.transformers, transformers...)
	}
}

// WithBaseline sets the project the diff and changelog screens compare
// against. Without one the project is compared with itself.
func WithBaseline(project *model.Project) Option {
	return func(o *Orchestrator) {
		o.baseline = project
	}
}

// Orchestrator coordinates loading, indexing and rendering. The zero
// configuration renders HTML with the embedded templates and can also
// produce Markdown.
type Orchestrator struct {
	loader          ProjectLoader
	registry        *render.Registry
	defaultRenderer string
	viewOpts        []view.Option
	transformers    []Transformer
	baseline        *model.Project
	initialiseErr   error
}

// New constructs an Orchestrator applying any provided options.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{defaultRenderer: defaultRendererName}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes one screen to render.
type Request struct {
	// Project is rendered as is when set; otherwise the loader is asked.
	Project *model.Project

	// Screen selects what to render.
	Screen render.Screen

	// Document scopes document screens. It matches a document path, page
	// link or mid.
	Document string

	// Namespace carries screen parameters such as the node mid.
	Namespace render.Namespace

	// Renderer names the renderer to use, falling back to the default.
	Renderer string

	RenderOptions render.RenderOptions
}

// Generate executes the load → transform → index → render sequence and
// returns the rendered bytes.
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := o.initialiseErr; err != nil {
		return nil, err
	}
	if req.Screen == "" {
		return nil, errors.New("orchestrator: screen is required")
	}

	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return nil, err
	}
	project, err := o.resolveProject(ctx, req.Project)
	if err != nil {
		return nil, err
	}
	obj, err := o.viewFor(project)
	if err != nil {
		return nil, err
	}

	var doc *model.Document
	if req.Document != "" {
		if doc, err = FindDocument(project, req.Document); err != nil {
			return nil, err
		}
	}
	return o.render(ctx, renderer, obj, page{screen: req.Screen, document: doc}, req.Namespace, req.RenderOptions)
}

// Project loads (or takes) the project, runs the transformers and indexes it.
func (o *Orchestrator) Project(ctx context.Context, project *model.Project) (*model.Project, error) {
	if err := o.initialiseErr; err != nil {
		return nil, err
	}
	return o.resolveProject(ctx, project)
}

func (o *Orchestrator) resolveProject(ctx context.Context, project *model.Project) (*model.Project, error) {
	if project == nil {
		if o.loader == nil {
			return nil, errors.New("orchestrator: project or loader is required")
		}
		loaded, err := o.loader.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: load project: %w", err)
		}
		project = loaded
	}
	for _, transformer := range o.transformers {
		if transformer == nil {
			continue
		}
		if err := transformer.Transform(ctx, project); err != nil {
			return nil, fmt.Errorf("orchestrator: transform project: %w", err)
		}
	}
	if err := project.Index(); err != nil {
		return nil, fmt.Errorf("orchestrator: index project: %w", err)
	}
	return project, nil
}

func (o *Orchestrator) viewFor(project *model.Project) (*view.Object, error) {
	idx, err := trace.Build(project)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: trace: %w", err)
	}
	obj, err := view.New(project, idx, o.viewOpts...)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: view: %w", err)
	}
	return obj, nil
}

func (o *Orchestrator) render(ctx context.Context, renderer render.Renderer, obj *view.Object, p page, ns render.Namespace, opts render.RenderOptions) ([]byte, error) {
	if p.document != nil {
		obj = obj.ForDocument(p.document)
	}
	var changes *diff.ChangeSet
	if p.screen == render.ScreenDiff || p.screen == render.ScreenChangelog {
		baseline := o.baseline
		if baseline == nil {
			baseline = obj.Project
		} else if err := baseline.Index(); err != nil {
			return nil, fmt.Errorf("orchestrator: index baseline: %w", err)
		}
		var err error
		if changes, err = diff.Compare(baseline, obj.Project); err != nil {
			return nil, fmt.Errorf("orchestrator: compare: %w", err)
		}
	}
	output, err := renderer.Render(ctx, render.Request{
		Screen:    p.screen,
		View:      obj,
		Namespace: ns,
		Changes:   changes,
		Options:   opts,
	})
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render %s: %w", p.screen, err)
	}
	return output, nil
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = o.defaultRenderer
	}

	if target != "" {
		renderer, err := o.registry.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
		}
	}

	names := o.registry.List()
	if len(names) == 0 {
		return nil, errors.New("orchestrator: no renderers registered")
	}

	renderer, err := o.registry.Get(names[0])
	if err != nil {
		return nil, fmt.Errorf("orchestrator: renderer %q: %w", names[0], err)
	}
	return renderer, nil
}

// FindDocument matches ref against document paths, page links and mids.
func FindDocument(project *model.Project, ref string) (*model.Document, error) {
	for _, doc := range project.Documents {
		if doc.Path == ref || doc.HTMLLink() == ref || doc.MID == ref {
			return doc, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrDocumentNotFound, ref)
}

func (o *Orchestrator) applyDefaults() {
	if o.registry != nil {
		return
	}
	o.registry = render.NewRegistry()
	renderer, err := web.New()
	if err != nil {
		o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
		return
	}
	o.registry.MustRegister(renderer)
	o.registry.MustRegister(markdown.New())
}
