package model

import (
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
)

var (
	// ErrDuplicateUID is returned when two nodes in a project share a UID.
	ErrDuplicateUID = errors.New("model: duplicate uid")
	// ErrDuplicateMID is returned when two entities share a machine id.
	ErrDuplicateMID = errors.New("model: duplicate mid")
	// ErrUnknownInclude is returned when a document includes a missing fragment.
	ErrUnknownInclude = errors.New("model: unknown included document")
)

// Index links every node to its parent and document, assigns levels and
// title numbers and builds the MID lookup table. It is idempotent.
func (d *Document) Index() error {
	if d == nil {
		return errors.New("model: document is nil")
	}
	if strings.TrimSpace(d.MID) == "" {
		d.MID = NewMID()
	}
	d.byMID = make(map[string]*Node)

	var walk func(nodes []*Node, parent *Node, level int, prefix string) error
	walk = func(nodes []*Node, parent *Node, level int, prefix string) error {
		counter := 0
		for _, node := range nodes {
			if node == nil {
				continue
			}
			if strings.TrimSpace(node.MID) == "" {
				node.MID = NewMID()
			}
			if _, exists := d.byMID[node.MID]; exists {
				return fmt.Errorf("%w: %q in document %q", ErrDuplicateMID, node.MID, d.Path)
			}
			d.byMID[node.MID] = node

			node.parent = parent
			node.document = d
			node.Level = level
			node.Number = ""

			childPrefix := prefix
			if d.numbered(node) {
				counter++
				node.Number = strconv.Itoa(counter)
				if prefix != "" {
					node.Number = prefix + "." + node.Number
				}
				childPrefix = node.Number
			}
			if err := walk(node.Children, node, level+1, childPrefix); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(d.Nodes, nil, 1, "")
}

func (d *Document) numbered(node *Node) bool {
	if d.Config.DisableAutoLevel || !node.HasTitle() {
		return false
	}
	return node.IsSection() || node.IsRequirement()
}

// Walk visits all nodes in document order.
func (d *Document) Walk(fn func(*Node) bool) {
	if d == nil {
		return
	}
	for _, node := range d.Nodes {
		node.Walk(fn)
	}
}

// FindByMID returns the node with the given machine id.
func (d *Document) FindByMID(mid string) (*Node, bool) {
	if d == nil {
		return nil, false
	}
	if d.byMID == nil {
		_ = d.Index()
	}
	node, ok := d.byMID[mid]
	return node, ok
}

// StyleMode returns the configured requirement style, defaulting to inline.
func (d *Document) StyleMode() string {
	if d == nil {
		return StyleInline
	}
	switch style := strings.ToLower(strings.TrimSpace(d.Config.RequirementStyle)); style {
	case StyleNarrative, StylePlain, StyleTable, StyleZebra:
		return style
	default:
		return StyleInline
	}
}

// HTMLLink is the document page path relative to the site root.
func (d *Document) HTMLLink() string {
	if d == nil {
		return ""
	}
	clean := strings.TrimPrefix(path.Clean("/"+d.Path), "/")
	for _, ext := range []string{".sdoc.yaml", ".sdoc.yml", ".yaml", ".yml", ".sdoc"} {
		if strings.HasSuffix(clean, ext) {
			clean = strings.TrimSuffix(clean, ext)
			break
		}
	}
	return clean + ".html"
}

// HasAnyRequirements reports whether the document holds at least one
// requirement.
func (d *Document) HasAnyRequirements() bool {
	found := false
	d.Walk(func(node *Node) bool {
		if node.IsRequirement() {
			found = true
		}
		return !found
	})
	return found
}

// HasAnyNodes reports whether the document has content.
func (d *Document) HasAnyNodes() bool {
	return d != nil && len(d.Nodes) > 0
}

// HasTOCNodes reports whether any node would appear in the table of contents.
func (d *Document) HasTOCNodes() bool {
	found := false
	d.Walk(func(node *Node) bool {
		if node.HasTitle() && !node.IsTextNode() {
			found = true
		}
		return !found
	})
	return found
}

// IncludedBy lists documents that include this fragment.
func (d *Document) IncludedBy() []*Document {
	if d == nil {
		return nil
	}
	return d.includedBy
}

// IncludedDocuments lists the fragments this document includes.
func (d *Document) IncludedDocuments() []*Document {
	if d == nil {
		return nil
	}
	return d.included
}

// Index indexes every document, resolves fragment includes and checks UIDs
// are unique across the project.
func (p *Project) Index() error {
	if p == nil {
		return errors.New("model: project is nil")
	}
	byPath := make(map[string]*Document, len(p.Documents))
	docMIDs := make(map[string]struct{}, len(p.Documents))
	for _, doc := range p.Documents {
		if err := doc.Index(); err != nil {
			return err
		}
		if _, exists := docMIDs[doc.MID]; exists {
			return fmt.Errorf("%w: document %q", ErrDuplicateMID, doc.MID)
		}
		docMIDs[doc.MID] = struct{}{}
		doc.includedBy = nil
		doc.included = nil
		byPath[doc.Path] = doc
	}

	for _, doc := range p.Documents {
		for _, include := range doc.Includes {
			fragment, ok := byPath[include]
			if !ok {
				return fmt.Errorf("%w: %q from %q", ErrUnknownInclude, include, doc.Path)
			}
			fragment.Fragment = true
			fragment.includedBy = append(fragment.includedBy, doc)
			doc.included = append(doc.included, fragment)
		}
	}

	uids := make(map[string]string)
	for _, doc := range p.Documents {
		var dup error
		doc.Walk(func(node *Node) bool {
			if node.UID == "" || dup != nil {
				return dup == nil
			}
			if owner, exists := uids[node.UID]; exists {
				dup = fmt.Errorf("%w: %q in %q and %q", ErrDuplicateUID, node.UID, owner, doc.Path)
				return false
			}
			uids[node.UID] = doc.Path
			return true
		})
		if dup != nil {
			return dup
		}
	}
	return nil
}

// DocumentByPath returns the document loaded from the given relative path.
func (p *Project) DocumentByPath(rel string) (*Document, bool) {
	if p == nil {
		return nil, false
	}
	for _, doc := range p.Documents {
		if doc.Path == rel {
			return doc, true
		}
	}
	return nil, false
}

// DocumentByMID returns the document with the given machine id.
func (p *Project) DocumentByMID(mid string) (*Document, bool) {
	if p == nil {
		return nil, false
	}
	for _, doc := range p.Documents {
		if doc.MID == mid {
			return doc, true
		}
	}
	return nil, false
}

// FindNode locates a node by MID across all documents.
func (p *Project) FindNode(mid string) (*Node, bool) {
	if p == nil {
		return nil, false
	}
	for _, doc := range p.Documents {
		if node, ok := doc.FindByMID(mid); ok {
			return node, true
		}
	}
	return nil, false
}

// HasFeature reports whether the named feature toggle is enabled.
func (p *Project) HasFeature(feature string) bool {
	if p == nil {
		return false
	}
	for _, candidate := range p.Config.Features {
		if strings.EqualFold(strings.TrimSpace(candidate), feature) {
			return true
		}
	}
	return false
}

// SourceFile returns the scanned source file with the given path.
func (p *Project) SourceFile(rel string) (*SourceFile, bool) {
	if p == nil {
		return nil, false
	}
	for _, file := range p.SourceFiles {
		if file.Path == rel {
			return file, true
		}
	}
	return nil, false
}
