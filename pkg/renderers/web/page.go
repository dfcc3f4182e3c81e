package web

import (
	"bytes"
	"context"
	"strings"

	"github.com/goliatone/go-reqdoc/pkg/model"
	"github.com/goliatone/go-reqdoc/pkg/render"
	"github.com/goliatone/go-reqdoc/pkg/renderers/web/components"
	"github.com/goliatone/go-reqdoc/pkg/view"
)

// page is the state of one render: the view object plus the component
// plumbing. It is discarded when the render returns.
type page struct {
	ctx      context.Context
	view     *view.Object
	registry *components.Registry
	data     components.ComponentData
	opts     render.RenderOptions
}

func (p *page) component(name string, ns render.Namespace) (string, error) {
	if err := p.ctx.Err(); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := p.registry.Render(&buf, name, ns, p.data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// forDocument returns a page whose view object is scoped to doc.
func (p *page) forDocument(doc *model.Document) *page {
	clone := *p
	clone.view = p.view.ForDocument(doc)
	return &clone
}

// requirementStyle resolves the style of node, letting the request override
// the document setting.
func (p *page) requirementStyle(node *model.Node) string {
	style := strings.ToLower(strings.TrimSpace(p.opts.RequirementStyle))
	if style == "" {
		style = node.StyleMode()
	}
	switch style {
	case model.StyleNarrative, model.StylePlain, model.StyleTable, model.StyleZebra:
		return style
	default:
		return model.StyleInline
	}
}

func (p *page) staticURLs(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if url := p.assetURL(name); url != "" {
			out = append(out, url)
		}
	}
	return out
}

// assetURL prefers the theme's asset resolver and falls back to the bundled
// static prefix.
func (p *page) assetURL(name string) string {
	if theme := p.opts.Theme; theme != nil && theme.AssetURL != nil {
		if url := theme.AssetURL(name); url != "" {
			return url
		}
	}
	return p.view.RenderStaticURL(name)
}

func joinHTML(parts ...string) string {
	var b strings.Builder
	for _, part := range parts {
		if part == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(part)
	}
	return b.String()
}

// titleIndent pads an unnumbered title so it lines up with numbered siblings.
func titleIndent(level int) string {
	if level < 1 {
		level = 1
	}
	return strings.Repeat("&nbsp;", level*2-1)
}

// roleOf is the node-role attribute value: the entity kind, independent of
// the grammar tag.
func roleOf(node *model.Node) string {
	if node == nil {
		return string(model.NodeTypeDocument)
	}
	return string(node.Type)
}
