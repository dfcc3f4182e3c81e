package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	errDocumentPathMissing = errors.New("model: document path is required")
	errUnknownNodeType     = errors.New("model: unknown node type")
	errUnknownStyle        = errors.New("model: unknown requirement style")
	errUnknownElement      = errors.New("model: element is not declared in the document grammar")
	errSectionHasStatement = errors.New("model: sections cannot carry a statement")
)

var knownStyles = map[string]struct{}{
	"":             {},
	StyleInline:    {},
	StyleNarrative: {},
	StylePlain:     {},
	StyleTable:     {},
	StyleZebra:     {},
}

// Validate checks a loaded document for structural problems the renderers
// cannot recover from. It does not require Index to have run.
func (d *Document) Validate() error {
	if d == nil {
		return errors.New("model: document is nil")
	}
	if strings.TrimSpace(d.Path) == "" {
		return errDocumentPathMissing
	}
	if _, ok := knownStyles[strings.ToLower(d.Config.RequirementStyle)]; !ok {
		return fmt.Errorf("%w %q in %s", errUnknownStyle, d.Config.RequirementStyle, d.Path)
	}

	declared := make(map[string]struct{}, len(d.Grammar))
	for _, element := range d.Grammar {
		declared[strings.ToUpper(element.Tag)] = struct{}{}
	}

	var err error
	walkNodes(d.Nodes, func(n *Node) bool {
		if err = validateNode(n, declared); err != nil {
			err = fmt.Errorf("%s: %w", d.Path, err)
			return false
		}
		return true
	})
	return err
}

func validateNode(n *Node, declared map[string]struct{}) error {
	switch n.Type {
	case NodeTypeSection:
		if strings.TrimSpace(n.Statement) != "" {
			return fmt.Errorf("%w (%q)", errSectionHasStatement, n.Title)
		}
	case NodeTypeRequirement, NodeTypeText:
	default:
		return fmt.Errorf("%w %q", errUnknownNodeType, n.Type)
	}
	if n.ElementTag == "" || len(declared) == 0 {
		return nil
	}
	if _, ok := declared[strings.ToUpper(n.ElementTag)]; !ok {
		return fmt.Errorf("%w: %s", errUnknownElement, n.ElementTag)
	}
	return nil
}

func walkNodes(nodes []*Node, fn func(*Node) bool) bool {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if !fn(n) {
			return false
		}
		if !walkNodes(n.Children, fn) {
			return false
		}
	}
	return true
}
