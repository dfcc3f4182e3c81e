package web

import (
	"context"
	"errors"
	"html"

	"github.com/goliatone/go-reqdoc/pkg/model"
	"github.com/goliatone/go-reqdoc/pkg/render"
	"github.com/goliatone/go-reqdoc/pkg/turbo"
	"github.com/goliatone/go-reqdoc/pkg/view"
)

// Turbo-Stream targets of the document screen.
const (
	TargetConfirm       = "confirm"
	TargetModal         = "modal"
	TargetTOC           = "frame-toc"
	TargetProjectTree   = "frame_project_tree"
	TargetDocumentTitle = "header_document_title"
)

// NodeTarget is the id of the turbo-frame wrapping a node or document root.
func NodeTarget(mid string) string {
	return "article-" + mid
}

func requireDocumentView(obj *view.Object) error {
	if obj == nil || obj.Document == nil {
		return errors.New("web renderer: stream requires a document view")
	}
	return nil
}

// StreamConfirmDelete opens the delete confirmation dialog.
func (r *Renderer) StreamConfirmDelete(ctx context.Context, confirm Confirm, opts render.RenderOptions) ([]byte, error) {
	dialog, err := r.ConfirmDialog(ctx, confirm, opts)
	if err != nil {
		return nil, err
	}
	return turbo.Render(turbo.Stream{Action: turbo.Update, Target: TargetConfirm, Template: dialog})
}

// StreamForm opens an edit dialog in the modal slot.
func (r *Renderer) StreamForm(ctx context.Context, form Form, opts render.RenderOptions) ([]byte, error) {
	dialog, err := r.FormDialog(ctx, form, opts)
	if err != nil {
		return nil, err
	}
	return turbo.Render(turbo.Stream{Action: turbo.Update, Target: TargetModal, Template: dialog})
}

// StreamNodeRemoved drops the node's frame and refreshes the table of
// contents. obj must reflect the document after the removal.
func (r *Renderer) StreamNodeRemoved(ctx context.Context, obj *view.Object, mid string, opts render.RenderOptions) ([]byte, error) {
	if err := requireDocumentView(obj); err != nil {
		return nil, err
	}
	toc, err := r.newPage(ctx, obj, opts).toc()
	if err != nil {
		return nil, err
	}
	return turbo.Render(
		turbo.Stream{Action: turbo.Remove, Target: NodeTarget(mid)},
		turbo.Stream{Action: turbo.Replace, Target: TargetTOC, Template: toc},
	)
}

// StreamCreateDocument refreshes the project tree after a document was added.
func (r *Renderer) StreamCreateDocument(ctx context.Context, obj *view.Object, opts render.RenderOptions) ([]byte, error) {
	if obj == nil {
		return nil, errors.New("web renderer: stream requires a view")
	}
	tree, err := r.newPage(ctx, obj, opts).projectTree()
	if err != nil {
		return nil, err
	}
	return turbo.Render(turbo.Stream{Action: turbo.Replace, Target: TargetProjectTree, Template: tree})
}

// StreamNewSection inserts a freshly created node right after the node that
// precedes it in document order, or after the document root when it is the
// first node, and refreshes the table of contents.
func (r *Renderer) StreamNewSection(ctx context.Context, obj *view.Object, node *model.Node, opts render.RenderOptions) ([]byte, error) {
	if err := requireDocumentView(obj); err != nil {
		return nil, err
	}
	if node == nil {
		return nil, errors.New("web renderer: stream requires the created node")
	}
	p := r.newPage(ctx, obj, opts)
	markup, err := p.renderNode(VariantFull, node)
	if err != nil {
		return nil, err
	}
	toc, err := p.toc()
	if err != nil {
		return nil, err
	}
	return turbo.Render(
		turbo.Stream{Action: turbo.After, Target: NodeTarget(precedingMID(obj, node)), Template: markup},
		turbo.Stream{Action: turbo.Replace, Target: TargetTOC, Template: toc},
	)
}

// StreamNodeUpdated re-renders an edited node in place and refreshes the
// table of contents.
func (r *Renderer) StreamNodeUpdated(ctx context.Context, obj *view.Object, node *model.Node, opts render.RenderOptions) ([]byte, error) {
	if err := requireDocumentView(obj); err != nil {
		return nil, err
	}
	if node == nil {
		return nil, errors.New("web renderer: stream requires the updated node")
	}
	p := r.newPage(ctx, obj, opts)
	markup, err := p.renderNode(VariantFull, node)
	if err != nil {
		return nil, err
	}
	toc, err := p.toc()
	if err != nil {
		return nil, err
	}
	return turbo.Render(
		turbo.Stream{Action: turbo.Replace, Target: NodeTarget(node.MID), Template: markup},
		turbo.Stream{Action: turbo.Replace, Target: TargetTOC, Template: toc},
	)
}

func precedingMID(obj *view.Object, node *model.Node) string {
	previous := obj.Document.MID
	for _, item := range obj.DocumentContent() {
		if item.Node == node {
			break
		}
		previous = item.Node.MID
	}
	return previous
}

// StreamSaveDocumentConfig re-renders the document root and the page header
// title after the document config was edited.
func (r *Renderer) StreamSaveDocumentConfig(ctx context.Context, obj *view.Object, opts render.RenderOptions) ([]byte, error) {
	if err := requireDocumentView(obj); err != nil {
		return nil, err
	}
	root, err := r.newPage(ctx, obj, opts).renderNode(VariantFull, nil)
	if err != nil {
		return nil, err
	}
	return turbo.Render(
		turbo.Stream{Action: turbo.Replace, Target: NodeTarget(obj.Document.MID), Template: root},
		turbo.Stream{Action: turbo.Update, Target: TargetDocumentTitle, Template: html.EscapeString(documentTitle(obj.Document))},
	)
}
