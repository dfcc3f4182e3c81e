// Package reqdoc renders requirements projects as HTML and Markdown. The
// root package re-exports the common entry points; the pkg/ packages hold the
// loader, the renderers and the server.
package reqdoc

import (
	"context"

	"github.com/goliatone/go-reqdoc/pkg/model"
	"github.com/goliatone/go-reqdoc/pkg/orchestrator"
	"github.com/goliatone/go-reqdoc/pkg/render"
)

// RenderOptions carries the theme and requirement style of a render.
type RenderOptions = render.RenderOptions

// Screen names a page or fragment, e.g. ScreenDocument.
type Screen = render.Screen

// Request describes one screen to render.
type Request = orchestrator.Request

// Transformer mutates a project before it is rendered.
type Transformer = orchestrator.Transformer

// Screens re-exported for callers that only import the root package.
const (
	ScreenDocument     = render.ScreenDocument
	ScreenTOC          = render.ScreenTOC
	ScreenProjectIndex = render.ScreenProjectIndex
	ScreenProjectTree  = render.ScreenProjectTree
	ScreenMatrix       = render.ScreenMatrix
	ScreenCoverage     = render.ScreenCoverage
	ScreenChangelog    = render.ScreenChangelog
)

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// GenerateHTML renders one screen of an in-memory project as a full HTML
// page. document names the document for document screens and may be empty
// otherwise.
func GenerateHTML(ctx context.Context, project *model.Project, screen Screen, document string, options ...orchestrator.Option) ([]byte, error) {
	return orchestrator.New(options...).Generate(ctx, orchestrator.Request{
		Project:  project,
		Screen:   screen,
		Document: document,
		Renderer: "html",
	})
}

// GenerateMarkdown is GenerateHTML for the Markdown renderer. Screens without
// a text form return render.ErrUnsupportedScreen.
func GenerateMarkdown(ctx context.Context, project *model.Project, screen Screen, document string, options ...orchestrator.Option) ([]byte, error) {
	return orchestrator.New(options...).Generate(ctx, orchestrator.Request{
		Project:  project,
		Screen:   screen,
		Document: document,
		Renderer: "markdown",
	})
}

// WithPreset forwards a preset transformer built from YAML or JSON bytes.
func WithPreset(data []byte) (orchestrator.Option, error) {
	preset, err := orchestrator.NewPresetTransformer(data)
	if err != nil {
		return nil, err
	}
	return orchestrator.WithTransformers(preset), nil
}
