// Package diff compares two project snapshots and reports which documents
// and nodes were added, removed or modified. It backs the diff and changelog
// screens.
package diff

import (
	"errors"
	"sort"
	"strings"

	"github.com/goliatone/go-reqdoc/pkg/model"
)

// ChangeType labels a change the way the changelog prints it.
type ChangeType string

const (
	DocumentModified    ChangeType = "Document modified"
	SectionAdded        ChangeType = "Section added"
	SectionRemoved      ChangeType = "Section removed"
	SectionModified     ChangeType = "Section modified"
	RequirementAdded    ChangeType = "Requirement added"
	RequirementRemoved  ChangeType = "Requirement removed"
	RequirementModified ChangeType = "Requirement modified"
)

// Side selects the left (before) or right (after) snapshot.
type Side string

const (
	Left  Side = "left"
	Right Side = "right"
)

// FieldChange is one field whose value differs between the two sides.
// Segments carry the inline diff for each side.
type FieldChange struct {
	Name        string
	LHS         string
	RHS         string
	LHSSegments []Segment
	RHSSegments []Segment
}

// NodeChange describes an added, removed or modified node. LHS is nil for
// additions and RHS is nil for removals.
type NodeChange struct {
	Type         ChangeType
	DocumentPath string
	LHS          *model.Node
	RHS          *model.Node
	FieldChanges []FieldChange
}

// Node returns whichever side of the change exists, preferring the right.
func (c NodeChange) Node() *model.Node {
	if c.RHS != nil {
		return c.RHS
	}
	return c.LHS
}

// DocumentChange groups node changes of one document path.
type DocumentChange struct {
	Path         string
	LHS          *model.Document
	RHS          *model.Document
	FieldChanges []FieldChange
	Nodes        []NodeChange
}

// Modified reports whether anything in the document differs.
func (c DocumentChange) Modified() bool {
	return c.LHS == nil || c.RHS == nil || len(c.FieldChanges) > 0 || len(c.Nodes) > 0
}

// Counter tallies additions, removals and modifications.
type Counter struct {
	Added    int
	Removed  int
	Modified int
}

// Stats summarises a change set.
type Stats struct {
	DocumentsModified int
	Sections          Counter
	// Requirements is keyed by element tag (REQUIREMENT, TEXT, ...).
	Requirements map[string]*Counter
}

// RequirementTags returns the element tags with requirement changes, sorted.
func (s Stats) RequirementTags() []string {
	tags := make([]string, 0, len(s.Requirements))
	for tag := range s.Requirements {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// ChangeSet is the result of Compare.
type ChangeSet struct {
	LHS       *model.Project
	RHS       *model.Project
	Documents []DocumentChange
	Stats     Stats

	bySide map[Side]map[string]*NodeChange
}

// Empty reports whether the two snapshots are equivalent.
func (cs *ChangeSet) Empty() bool {
	return cs == nil || len(cs.Documents) == 0
}

// FindNode looks up the change touching the node with the given MID on one
// side.
func (cs *ChangeSet) FindNode(side Side, mid string) (*NodeChange, bool) {
	if cs == nil {
		return nil, false
	}
	change, ok := cs.bySide[side][mid]
	return change, ok
}

// Document returns the change for a document path.
func (cs *ChangeSet) Document(path string) (*DocumentChange, bool) {
	if cs == nil {
		return nil, false
	}
	for i := range cs.Documents {
		if cs.Documents[i].Path == path {
			return &cs.Documents[i], true
		}
	}
	return nil, false
}

// Entry is one changelog row.
type Entry struct {
	Type         ChangeType
	DocumentPath string
	Node         *NodeChange
	Document     *DocumentChange
}

// Changelog flattens the change set into rows: each modified document is
// followed by its node changes.
func (cs *ChangeSet) Changelog() []Entry {
	if cs == nil {
		return nil
	}
	var entries []Entry
	for i := range cs.Documents {
		doc := &cs.Documents[i]
		entries = append(entries, Entry{Type: DocumentModified, DocumentPath: doc.Path, Document: doc})
		for j := range doc.Nodes {
			node := &doc.Nodes[j]
			entries = append(entries, Entry{Type: node.Type, DocumentPath: doc.Path, Node: node})
		}
	}
	return entries
}

// Compare matches documents by path and nodes by MID, then UID, then title
// path, and records every difference. Both projects must be indexed.
func Compare(lhs, rhs *model.Project) (*ChangeSet, error) {
	if lhs == nil || rhs == nil {
		return nil, errors.New("diff: both projects are required")
	}
	cs := &ChangeSet{
		LHS:   lhs,
		RHS:   rhs,
		Stats: Stats{Requirements: map[string]*Counter{}},
		bySide: map[Side]map[string]*NodeChange{
			Left:  {},
			Right: {},
		},
	}

	paths := map[string]struct{}{}
	for _, doc := range lhs.Documents {
		paths[doc.Path] = struct{}{}
	}
	for _, doc := range rhs.Documents {
		paths[doc.Path] = struct{}{}
	}
	ordered := make([]string, 0, len(paths))
	for p := range paths {
		ordered = append(ordered, p)
	}
	sort.Strings(ordered)

	for _, p := range ordered {
		left, _ := lhs.DocumentByPath(p)
		right, _ := rhs.DocumentByPath(p)
		change := compareDocuments(p, left, right)
		if !change.Modified() {
			continue
		}
		cs.Documents = append(cs.Documents, change)
	}

	for i := range cs.Documents {
		doc := &cs.Documents[i]
		cs.Stats.DocumentsModified++
		for j := range doc.Nodes {
			node := &doc.Nodes[j]
			if node.LHS != nil {
				cs.bySide[Left][node.LHS.MID] = node
			}
			if node.RHS != nil {
				cs.bySide[Right][node.RHS.MID] = node
			}
			cs.count(node)
		}
	}
	return cs, nil
}

func (cs *ChangeSet) count(change *NodeChange) {
	var counter *Counter
	if change.Node().IsSection() {
		counter = &cs.Stats.Sections
	} else {
		tag := change.Node().TypeString()
		if cs.Stats.Requirements[tag] == nil {
			cs.Stats.Requirements[tag] = &Counter{}
		}
		counter = cs.Stats.Requirements[tag]
	}
	switch change.Type {
	case SectionAdded, RequirementAdded:
		counter.Added++
	case SectionRemoved, RequirementRemoved:
		counter.Removed++
	default:
		counter.Modified++
	}
}

func compareDocuments(path string, lhs, rhs *model.Document) DocumentChange {
	change := DocumentChange{Path: path, LHS: lhs, RHS: rhs}
	if lhs != nil && rhs != nil {
		change.FieldChanges = compareFields(documentFields(lhs), documentFields(rhs))
	}

	leftNodes := flatten(lhs)
	rightNodes := flatten(rhs)
	matcher := newMatcher(rightNodes)
	matched := make(map[*model.Node]bool, len(rightNodes))

	for _, left := range leftNodes {
		right := matcher.match(left)
		if right == nil || matched[right] {
			change.Nodes = append(change.Nodes, NodeChange{
				Type:         removedType(left),
				DocumentPath: path,
				LHS:          left,
			})
			continue
		}
		matched[right] = true
		fields := compareFields(nodeFields(left), nodeFields(right))
		if len(fields) == 0 {
			continue
		}
		change.Nodes = append(change.Nodes, NodeChange{
			Type:         modifiedType(right),
			DocumentPath: path,
			LHS:          left,
			RHS:          right,
			FieldChanges: fields,
		})
	}
	for _, right := range rightNodes {
		if matched[right] {
			continue
		}
		change.Nodes = append(change.Nodes, NodeChange{
			Type:         addedType(right),
			DocumentPath: path,
			RHS:          right,
		})
	}
	return change
}

func flatten(doc *model.Document) []*model.Node {
	if doc == nil {
		return nil
	}
	var nodes []*model.Node
	doc.Walk(func(n *model.Node) bool {
		nodes = append(nodes, n)
		return true
	})
	return nodes
}

type matcher struct {
	byMID   map[string]*model.Node
	byUID   map[string]*model.Node
	byTitle map[string]*model.Node
}

func newMatcher(nodes []*model.Node) *matcher {
	m := &matcher{
		byMID:   make(map[string]*model.Node, len(nodes)),
		byUID:   make(map[string]*model.Node, len(nodes)),
		byTitle: make(map[string]*model.Node, len(nodes)),
	}
	for _, n := range nodes {
		m.byMID[n.MID] = n
		if n.UID != "" {
			m.byUID[n.UID] = n
		}
		if key := titlePath(n); key != "" {
			if _, exists := m.byTitle[key]; !exists {
				m.byTitle[key] = n
			}
		}
	}
	return m
}

func (m *matcher) match(n *model.Node) *model.Node {
	if found, ok := m.byMID[n.MID]; ok && found.Type == n.Type {
		return found
	}
	if n.UID != "" {
		if found, ok := m.byUID[n.UID]; ok {
			return found
		}
	}
	if key := titlePath(n); key != "" {
		return m.byTitle[key]
	}
	return nil
}

// titlePath identifies a titled node by its type and the titles from the
// document root down to it. Untitled nodes have no title path.
func titlePath(n *model.Node) string {
	if !n.HasTitle() {
		return ""
	}
	var titles []string
	for cur := n; cur != nil; cur = cur.Parent() {
		titles = append(titles, strings.TrimSpace(cur.Title))
	}
	for i, j := 0, len(titles)-1; i < j; i, j = i+1, j-1 {
		titles[i], titles[j] = titles[j], titles[i]
	}
	return n.TypeString() + ":" + strings.Join(titles, "/")
}

func addedType(n *model.Node) ChangeType {
	if n.IsSection() {
		return SectionAdded
	}
	return RequirementAdded
}

func removedType(n *model.Node) ChangeType {
	if n.IsSection() {
		return SectionRemoved
	}
	return RequirementRemoved
}

func modifiedType(n *model.Node) ChangeType {
	if n.IsSection() {
		return SectionModified
	}
	return RequirementModified
}
