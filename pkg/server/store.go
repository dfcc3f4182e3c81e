package server

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-reqdoc/pkg/model"
	"github.com/goliatone/go-reqdoc/pkg/trace"
)

var (
	// ErrNotFound is returned when a document or node mid is unknown.
	ErrNotFound = errors.New("store: not found")
	// ErrConflict is returned when a mutation would leave the project invalid.
	ErrConflict = errors.New("store: conflict")
)

// Placement of a new node relative to its reference node.
const (
	WhereBefore = "before"
	WhereAfter  = "after"
	WhereChild  = "child"
)

// Snapshot is a consistent view of the project at one revision.
type Snapshot struct {
	Project  *model.Project
	Index    *trace.MemoryIndex
	Baseline *model.Project
	Revision uint64
}

// Persister writes a changed document back to its source.
type Persister interface {
	Save(doc *model.Document) error
}

// Reloader reads the project again from its source.
type Reloader interface {
	Load(ctx context.Context) (*model.Project, error)
}

// StoreOption customises a Store.
type StoreOption func(*Store)

// WithPersister saves every mutated document through p.
func WithPersister(p Persister) StoreOption {
	return func(s *Store) {
		s.persister = p
	}
}

// WithReloader lets Reload fetch a fresh project.
func WithReloader(r Reloader) StoreOption {
	return func(s *Store) {
		s.reloader = r
	}
}

// WithBaseline sets the snapshot the diff and changelog screens compare the
// current project against.
func WithBaseline(project *model.Project) StoreOption {
	return func(s *Store) {
		s.baseline = project
	}
}

// Store guards the in-memory project. Readers hold the read lock for the
// whole render so mutations never interleave with a page being built.
type Store struct {
	mu        sync.RWMutex
	project   *model.Project
	index     *trace.MemoryIndex
	baseline  *model.Project
	revision  uint64
	persister Persister
	reloader  Reloader
}

// NewStore indexes project and wraps it.
func NewStore(project *model.Project, opts ...StoreOption) (*Store, error) {
	s := &Store{}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if err := s.replace(project); err != nil {
		return nil, err
	}
	if s.baseline != nil {
		if err := s.baseline.Index(); err != nil {
			return nil, fmt.Errorf("store: index baseline: %w", err)
		}
	}
	return s, nil
}

// Read calls fn with the current snapshot under the read lock.
func (s *Store) Read(fn func(Snapshot) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.snapshot())
}

// LookupUID returns the node that currently owns uid.
func (s *Store) LookupUID(uid string) (*model.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Lookup(uid)
}

// Revision returns the current revision; it grows with every change.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// Replace swaps in a new project, e.g. after the files changed on disk.
func (s *Store) Replace(project *model.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replace(project)
}

// Reload loads the project through the configured Reloader and replaces
// the current one.
func (s *Store) Reload(ctx context.Context) error {
	if s.reloader == nil {
		return errors.New("store: no reloader configured")
	}
	project, err := s.reloader.Load(ctx)
	if err != nil {
		return err
	}
	return s.Replace(project)
}

func (s *Store) replace(project *model.Project) error {
	if project == nil {
		return errors.New("store: project is nil")
	}
	if err := project.Index(); err != nil {
		return fmt.Errorf("store: index: %w", err)
	}
	idx, err := trace.Build(project)
	if err != nil {
		return fmt.Errorf("store: trace: %w", err)
	}
	s.project = project
	s.index = idx
	s.revision++
	return nil
}

func (s *Store) snapshot() Snapshot {
	return Snapshot{Project: s.project, Index: s.index, Baseline: s.baseline, Revision: s.revision}
}

// mutate runs change under the write lock and re-indexes. When indexing
// fails the undo func restores the previous state.
func (s *Store) mutate(change func(p *model.Project) (doc *model.Document, undo func(), err error)) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, undo, err := change(s.project)
	if err != nil {
		return Snapshot{}, err
	}
	if err := s.reindex(); err != nil {
		undo()
		if restoreErr := s.reindex(); restoreErr != nil {
			return Snapshot{}, errors.Join(err, restoreErr)
		}
		return Snapshot{}, fmt.Errorf("%w: %v", ErrConflict, err)
	}
	s.revision++
	if s.persister != nil && doc != nil {
		if err := s.persister.Save(doc); err != nil {
			return Snapshot{}, fmt.Errorf("store: save %s: %w", doc.Path, err)
		}
	}
	return s.snapshot(), nil
}

func (s *Store) reindex() error {
	if err := s.project.Index(); err != nil {
		return err
	}
	idx, err := trace.Build(s.project)
	if err != nil {
		return err
	}
	s.index = idx
	return nil
}

// DeleteBlockers lists why the node cannot be deleted: other requirements
// naming it (or a node below it) as parent, or linking to it inline.
func (s *Store) DeleteBlockers(mid string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	node, ok := s.project.FindNode(mid)
	if !ok {
		return nil, fmt.Errorf("%w: node %q", ErrNotFound, mid)
	}
	return deleteBlockers(s.index, node), nil
}

func deleteBlockers(idx trace.Index, node *model.Node) []string {
	doomed := make(map[*model.Node]struct{})
	node.Walk(func(n *model.Node) bool {
		doomed[n] = struct{}{}
		return true
	})
	var blockers []string
	node.Walk(func(n *model.Node) bool {
		for _, link := range idx.Children(n) {
			if _, gone := doomed[link.Node]; gone {
				continue
			}
			blockers = append(blockers, fmt.Sprintf("%s is the parent of %s.", label(n), label(link.Node)))
		}
		for _, from := range idx.IncomingLinks(n) {
			if _, gone := doomed[from]; gone {
				continue
			}
			blockers = append(blockers, fmt.Sprintf("%s is linked from %s.", label(n), label(from)))
		}
		return true
	})
	return blockers
}

func label(n *model.Node) string {
	if n.UID != "" {
		return n.UID
	}
	if n.Title != "" {
		return fmt.Sprintf("%q", n.Title)
	}
	return n.MID
}

// DeleteNode removes the node and everything below it from its document.
func (s *Store) DeleteNode(mid string) (Snapshot, *model.Document, error) {
	var owner *model.Document
	snap, err := s.mutate(func(p *model.Project) (*model.Document, func(), error) {
		node, ok := p.FindNode(mid)
		if !ok {
			return nil, nil, fmt.Errorf("%w: node %q", ErrNotFound, mid)
		}
		if blockers := deleteBlockers(s.index, node); len(blockers) > 0 {
			return nil, nil, fmt.Errorf("%w: %s", ErrConflict, strings.Join(blockers, " "))
		}
		owner = node.Document()
		siblings := siblingsOf(owner, node)
		pos := slices.Index(*siblings, node)
		if pos < 0 {
			return nil, nil, fmt.Errorf("%w: node %q is detached", ErrNotFound, mid)
		}
		previous := slices.Clone(*siblings)
		*siblings = slices.Delete(*siblings, pos, pos+1)
		return owner, func() { *siblings = previous }, nil
	})
	return snap, owner, err
}

// NewNode is the payload of a node insertion.
type NewNode struct {
	Type       model.NodeType
	ElementTag string
	UID        string
	Title      string
	Statement  string
	Rationale  string
	Reference  string
	Whereto    string
}

// InsertNode adds a node before, after or as the last child of the
// reference, which may be a node or the document itself.
func (s *Store) InsertNode(in NewNode) (Snapshot, *model.Node, error) {
	created := &model.Node{
		MID:        model.NewMID(),
		Type:       in.Type,
		ElementTag: in.ElementTag,
		UID:        strings.TrimSpace(in.UID),
		Title:      strings.TrimSpace(in.Title),
		Statement:  strings.TrimSpace(in.Statement),
		Rationale:  strings.TrimSpace(in.Rationale),
	}
	snap, err := s.mutate(func(p *model.Project) (*model.Document, func(), error) {
		return insert(p, created, in.Reference, in.Whereto)
	})
	if err != nil {
		return Snapshot{}, nil, err
	}
	return snap, created, nil
}

// CloneNode copies a requirement right after itself. The copy has a fresh
// mid, no UID and no children.
func (s *Store) CloneNode(mid string) (Snapshot, *model.Node, error) {
	var created *model.Node
	snap, err := s.mutate(func(p *model.Project) (*model.Document, func(), error) {
		source, ok := p.FindNode(mid)
		if !ok {
			return nil, nil, fmt.Errorf("%w: node %q", ErrNotFound, mid)
		}
		if !source.IsRequirement() {
			return nil, nil, fmt.Errorf("%w: only requirements can be cloned", ErrConflict)
		}
		created = &model.Node{
			MID:        model.NewMID(),
			Type:       source.Type,
			ElementTag: source.ElementTag,
			Title:      source.Title,
			Status:     source.Status,
			Statement:  source.Statement,
			Rationale:  source.Rationale,
			Comments:   slices.Clone(source.Comments),
			Meta:       slices.Clone(source.Meta),
			Relations:  slices.Clone(source.Relations),
		}
		return insert(p, created, mid, WhereAfter)
	})
	if err != nil {
		return Snapshot{}, nil, err
	}
	return snap, created, nil
}

func insert(p *model.Project, created *model.Node, reference, whereto string) (*model.Document, func(), error) {
	if doc, ok := p.DocumentByMID(reference); ok {
		if whereto != WhereChild {
			return nil, nil, fmt.Errorf("%w: nodes can only be added inside a document", ErrConflict)
		}
		previous := doc.Nodes
		doc.Nodes = append(slices.Clone(doc.Nodes), created)
		return doc, func() { doc.Nodes = previous }, nil
	}

	ref, ok := p.FindNode(reference)
	if !ok {
		return nil, nil, fmt.Errorf("%w: node %q", ErrNotFound, reference)
	}
	doc := ref.Document()
	switch whereto {
	case WhereChild:
		if !ref.IsSection() {
			return nil, nil, fmt.Errorf("%w: only sections have children", ErrConflict)
		}
		previous := ref.Children
		ref.Children = append(slices.Clone(ref.Children), created)
		return doc, func() { ref.Children = previous }, nil
	case WhereBefore, WhereAfter:
		siblings := siblingsOf(doc, ref)
		pos := slices.Index(*siblings, ref)
		if pos < 0 {
			return nil, nil, fmt.Errorf("%w: node %q is detached", ErrNotFound, reference)
		}
		if whereto == WhereAfter {
			pos++
		}
		previous := *siblings
		*siblings = slices.Insert(slices.Clone(*siblings), pos, created)
		return doc, func() { *siblings = previous }, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown placement %q", ErrConflict, whereto)
	}
}

func siblingsOf(doc *model.Document, node *model.Node) *[]*model.Node {
	if parent := node.Parent(); parent != nil {
		return &parent.Children
	}
	return &doc.Nodes
}

// NodeEdit is the payload of a node update. Empty strings clear fields.
type NodeEdit struct {
	MID       string
	UID       string
	Title     string
	Statement string
	Rationale string
}

// UpdateNode edits the basic fields of a node. Changing the UID of a node
// that other requirements point to is refused.
func (s *Store) UpdateNode(edit NodeEdit) (Snapshot, *model.Node, error) {
	var node *model.Node
	snap, err := s.mutate(func(p *model.Project) (*model.Document, func(), error) {
		var ok bool
		node, ok = p.FindNode(edit.MID)
		if !ok {
			return nil, nil, fmt.Errorf("%w: node %q", ErrNotFound, edit.MID)
		}
		uid := strings.TrimSpace(edit.UID)
		if uid != node.UID && (s.index.HasChildren(node) || len(s.index.IncomingLinks(node)) > 0) {
			return nil, nil, fmt.Errorf("%w: %s is referenced by other nodes", ErrConflict, label(node))
		}
		if node.IsSection() && strings.TrimSpace(edit.Statement) != "" {
			return nil, nil, fmt.Errorf("%w: sections cannot carry a statement", ErrConflict)
		}
		previous := *node
		node.UID = uid
		node.Title = strings.TrimSpace(edit.Title)
		node.Statement = strings.TrimSpace(edit.Statement)
		node.Rationale = strings.TrimSpace(edit.Rationale)
		return node.Document(), func() {
			node.UID = previous.UID
			node.Title = previous.Title
			node.Statement = previous.Statement
			node.Rationale = previous.Rationale
		}, nil
	})
	if err != nil {
		return Snapshot{}, nil, err
	}
	return snap, node, nil
}

// DocumentEdit is the payload of a document config update.
type DocumentEdit struct {
	MID            string
	Title          string
	UID            string
	Version        string
	Classification string
	Prefix         string
}

// UpdateDocumentConfig edits the document title and config header.
func (s *Store) UpdateDocumentConfig(edit DocumentEdit) (Snapshot, *model.Document, error) {
	var doc *model.Document
	snap, err := s.mutate(func(p *model.Project) (*model.Document, func(), error) {
		var ok bool
		doc, ok = p.DocumentByMID(edit.MID)
		if !ok {
			return nil, nil, fmt.Errorf("%w: document %q", ErrNotFound, edit.MID)
		}
		previousTitle, previousConfig := doc.Title, doc.Config
		doc.Title = strings.TrimSpace(edit.Title)
		doc.Config.UID = strings.TrimSpace(edit.UID)
		doc.Config.Version = strings.TrimSpace(edit.Version)
		doc.Config.Classification = strings.TrimSpace(edit.Classification)
		doc.Config.Prefix = strings.TrimSpace(edit.Prefix)
		return doc, func() {
			doc.Title = previousTitle
			doc.Config = previousConfig
		}, nil
	})
	if err != nil {
		return Snapshot{}, nil, err
	}
	return snap, doc, nil
}

// CreateDocument adds an empty document at path.
func (s *Store) CreateDocument(title, path string) (Snapshot, *model.Document, error) {
	doc := &model.Document{
		MID:   model.NewMID(),
		Title: strings.TrimSpace(title),
		Path:  strings.TrimSpace(path),
	}
	snap, err := s.mutate(func(p *model.Project) (*model.Document, func(), error) {
		if _, exists := p.DocumentByPath(doc.Path); exists {
			return nil, nil, fmt.Errorf("%w: document %q already exists", ErrConflict, doc.Path)
		}
		if err := doc.Validate(); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrConflict, err)
		}
		previous := p.Documents
		p.Documents = append(slices.Clone(p.Documents), doc)
		return doc, func() { p.Documents = previous }, nil
	})
	if err != nil {
		return Snapshot{}, nil, err
	}
	return snap, doc, nil
}
