package render

import (
	"context"

	"github.com/goliatone/go-reqdoc/pkg/diff"
	"github.com/goliatone/go-reqdoc/pkg/view"
)

// Screen names a top-level page or fragment a renderer can produce.
type Screen string

const (
	ScreenDocument        Screen = "document"
	ScreenDocumentContent Screen = "document_content"
	ScreenTOC             Screen = "toc"
	ScreenNode            Screen = "node"
	ScreenProjectIndex    Screen = "project_index"
	ScreenProjectTree     Screen = "project_tree"
	ScreenMatrix          Screen = "traceability_matrix"
	ScreenCoverage        Screen = "source_coverage"
	ScreenDiff            Screen = "diff"
	ScreenChangelog       Screen = "changelog"
	ScreenPDF             Screen = "pdf"
)

// Request carries everything a renderer needs for one render.
type Request struct {
	Screen Screen
	// View is the view object; document screens expect it scoped with
	// ForDocument.
	View *view.Object
	// Namespace holds per-invocation parameters (node mid, variant, confirm
	// dialog texts) passed down one level.
	Namespace Namespace
	// Changes feeds the diff and changelog screens.
	Changes *diff.ChangeSet
	Options RenderOptions
}

// Renderer converts a Request into a byte representation (HTML, Markdown).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, req Request) ([]byte, error)
}
