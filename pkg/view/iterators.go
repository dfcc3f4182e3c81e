package view

import (
	"strings"

	"github.com/goliatone/go-reqdoc/pkg/model"
)

// Item is one step of a document walk. Depth is 1 for top-level nodes.
type Item struct {
	Node  *model.Node
	Depth int
}

// TOCItem is one entry of the table of contents.
type TOCItem struct {
	Node   *model.Node
	Depth  int
	Anchor string
	Number string
	Title  string
	Linked bool
}

// DocumentContent returns the current document's nodes in document order,
// followed by the content of included fragments.
func (o *Object) DocumentContent() []Item {
	if o.Document == nil {
		return nil
	}
	var items []Item
	appendNodes := func(doc *model.Document) {
		doc.Walk(func(node *model.Node) bool {
			items = append(items, Item{Node: node, Depth: node.Level})
			return true
		})
	}
	appendNodes(o.Document)
	for _, fragment := range o.Document.IncludedDocuments() {
		appendNodes(fragment)
	}
	return items
}

// TableOfContents lists the titled sections and requirements of the current
// document. In deep traceability mode sections without requirements are
// listed without a link.
func (o *Object) TableOfContents() []TOCItem {
	var items []TOCItem
	for _, item := range o.DocumentContent() {
		node := item.Node
		if node.IsTextNode() || !node.HasTitle() {
			continue
		}
		linked := true
		if o.opts.deeptrace && node.IsSection() && !node.HasRequirements() {
			linked = false
		}
		items = append(items, TOCItem{
			Node:   node,
			Depth:  item.Depth,
			Anchor: o.RenderLocalAnchor(node),
			Number: node.Number,
			Title:  strings.TrimSpace(node.Title),
			Linked: linked,
		})
	}
	return items
}

// Requirements returns the requirements of the current document in order.
func (o *Object) Requirements() []*model.Node {
	var out []*model.Node
	for _, item := range o.DocumentContent() {
		if item.Node.IsRequirement() {
			out = append(out, item.Node)
		}
	}
	return out
}

// FieldFilter maps an element tag to the fields shown for it. Tags without an
// entry show every field.
type FieldFilter map[string][]string

// Includes reports whether field is shown for tag.
func (f FieldFilter) Includes(tag, field string) bool {
	if len(f) == 0 {
		return true
	}
	fields, ok := f[strings.ToUpper(strings.TrimSpace(tag))]
	if !ok {
		return true
	}
	for _, candidate := range fields {
		if strings.EqualFold(candidate, field) {
			return true
		}
	}
	return false
}
