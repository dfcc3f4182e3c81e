package model

import "strings"

// IsSection reports whether the node is a section.
func (n *Node) IsSection() bool { return n != nil && n.Type == NodeTypeSection }

// IsRequirement reports whether the node is a requirement.
func (n *Node) IsRequirement() bool { return n != nil && n.Type == NodeTypeRequirement }

// IsTextNode reports whether the node is a free text block.
func (n *Node) IsTextNode() bool { return n != nil && n.Type == NodeTypeText }

// Parent returns the enclosing node, or nil for top-level nodes.
func (n *Node) Parent() *Node {
	if n == nil {
		return nil
	}
	return n.parent
}

// Document returns the owning document once the tree has been indexed.
func (n *Node) Document() *Document {
	if n == nil {
		return nil
	}
	return n.document
}

// TypeString returns the grammar tag used in markup attributes.
func (n *Node) TypeString() string {
	if n == nil {
		return ""
	}
	if tag := strings.TrimSpace(n.ElementTag); tag != "" {
		return tag
	}
	switch n.Type {
	case NodeTypeSection:
		return "SECTION"
	case NodeTypeText:
		return "TEXT"
	case NodeTypeDocument:
		return "DOCUMENT"
	default:
		return "REQUIREMENT"
	}
}

// DisplayTitle prefixes the title with its number when one was assigned.
func (n *Node) DisplayTitle() string {
	if n == nil {
		return ""
	}
	title := strings.TrimSpace(n.Title)
	if n.Number == "" || title == "" {
		return title
	}
	return n.Number + ". " + title
}

// HasTitle reports whether the node carries a non-empty title.
func (n *Node) HasTitle() bool {
	return n != nil && strings.TrimSpace(n.Title) != ""
}

// HasStatement reports whether the node carries statement text.
func (n *Node) HasStatement() bool {
	return n != nil && strings.TrimSpace(n.Statement) != ""
}

// HasMeta reports whether the node carries any single-line meta fields,
// including UID and status.
func (n *Node) HasMeta() bool {
	if n == nil {
		return false
	}
	if n.UID != "" || n.Status != "" {
		return true
	}
	return len(n.MetaFields(false)) > 0
}

// HasMultilineFields reports whether any custom multi-line fields are present.
func (n *Node) HasMultilineFields() bool {
	return len(n.MetaFields(true)) > 0
}

// MetaFields returns custom fields filtered by the multiline flag, keeping the
// declared order.
func (n *Node) MetaFields(multiline bool) []Field {
	if n == nil {
		return nil
	}
	var out []Field
	for _, field := range n.Meta {
		if strings.TrimSpace(field.Value) == "" {
			continue
		}
		if field.Multiline == multiline {
			out = append(out, field)
		}
	}
	return out
}

// RelationsOf returns the node's relations of the given type.
func (n *Node) RelationsOf(kind RelationType) []Relation {
	if n == nil {
		return nil
	}
	var out []Relation
	for _, rel := range n.Relations {
		if rel.Type == kind {
			out = append(out, rel)
		}
	}
	return out
}

// StyleMode resolves the requirement style inherited from the document.
func (n *Node) StyleMode() string {
	if n == nil || n.document == nil {
		return StyleInline
	}
	return n.document.StyleMode()
}

// Walk visits the node and its descendants in document order. Returning false
// from fn skips the node's subtree.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || fn == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// HasRequirements reports whether the subtree below n holds any requirement.
func (n *Node) HasRequirements() bool {
	found := false
	for _, child := range n.Children {
		child.Walk(func(node *Node) bool {
			if node.IsRequirement() {
				found = true
			}
			return !found
		})
		if found {
			return true
		}
	}
	return false
}
