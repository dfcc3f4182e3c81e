package trace

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/goliatone/go-reqdoc/pkg/model"
)

var (
	// ErrUnresolvedRelation is returned when a relation names a UID that no
	// node in the project carries.
	ErrUnresolvedRelation = errors.New("trace: unresolved relation")
	// ErrRelationCycle is returned when following parent relations loops back.
	ErrRelationCycle = errors.New("trace: relation cycle")
)

// LinkPattern matches inline [LINK: UID] references in free text.
var LinkPattern = regexp.MustCompile(`\[LINK:\s*([A-Za-z0-9_.\-]+)\s*\]`)

// Link is one resolved edge of the requirement graph.
type Link struct {
	Node *model.Node
	Role string
}

// FileLink ties a requirement to a source file, either declared on the
// requirement or discovered from @relation markers in the file.
type FileLink struct {
	Path    string
	Markers []model.Marker
}

// RelationKey identifies a (type, role) pair used somewhere in the project.
type RelationKey struct {
	Type model.RelationType
	Role string
}

// Label renders the key the way matrix headers show it.
func (k RelationKey) Label() string {
	if k.Role == "" {
		return string(k.Type)
	}
	return fmt.Sprintf("%s [%s]", k.Type, k.Role)
}

// Index answers traceability queries for the view layer.
type Index interface {
	Parents(node *model.Node) []Link
	Children(node *model.Node) []Link
	ParentsWithRole(node *model.Node, role string) []Link
	ChildrenWithRole(node *model.Node, role string) []Link
	HasParents(node *model.Node) bool
	HasChildren(node *model.Node) bool
	FileLinks(node *model.Node) []FileLink
	IncomingLinks(node *model.Node) []*model.Node
	KnownRelations() []RelationKey
	Lookup(uid string) (*model.Node, bool)
	NodesForFile(path string) []*model.Node
}

// MemoryIndex is the in-memory Index built from a project snapshot.
type MemoryIndex struct {
	byUID    map[string]*model.Node
	parents  map[*model.Node][]Link
	children map[*model.Node][]Link
	files    map[*model.Node][]FileLink
	incoming map[*model.Node][]*model.Node
	byFile   map[string][]*model.Node
	known    []RelationKey
}

var _ Index = (*MemoryIndex)(nil)

// Build indexes the project's relations. The project must already be indexed
// with Project.Index.
func Build(project *model.Project) (*MemoryIndex, error) {
	if project == nil {
		return nil, errors.New("trace: project is nil")
	}
	idx := &MemoryIndex{
		byUID:    make(map[string]*model.Node),
		parents:  make(map[*model.Node][]Link),
		children: make(map[*model.Node][]Link),
		files:    make(map[*model.Node][]FileLink),
		incoming: make(map[*model.Node][]*model.Node),
		byFile:   make(map[string][]*model.Node),
	}

	var nodes []*model.Node
	for _, doc := range project.Documents {
		doc.Walk(func(node *model.Node) bool {
			nodes = append(nodes, node)
			if node.UID != "" {
				idx.byUID[node.UID] = node
			}
			return true
		})
	}

	known := make(map[RelationKey]struct{})
	for _, node := range nodes {
		for _, rel := range node.Relations {
			switch rel.Type {
			case model.RelationParent, model.RelationChild:
				target, ok := idx.byUID[strings.TrimSpace(rel.Value)]
				if !ok {
					return nil, fmt.Errorf("%w: %s %q on %q", ErrUnresolvedRelation, rel.Type, rel.Value, nodeLabel(node))
				}
				child, parent := node, target
				if rel.Type == model.RelationChild {
					child, parent = target, node
				}
				idx.parents[child] = append(idx.parents[child], Link{Node: parent, Role: rel.Role})
				idx.children[parent] = append(idx.children[parent], Link{Node: child, Role: rel.Role})
				known[RelationKey{Type: model.RelationParent, Role: rel.Role}] = struct{}{}
				known[RelationKey{Type: model.RelationChild, Role: rel.Role}] = struct{}{}
			case model.RelationFile:
				idx.addFileLink(node, rel.Value, nil)
				known[RelationKey{Type: model.RelationFile}] = struct{}{}
			}
		}
	}

	for _, src := range project.SourceFiles {
		for _, marker := range src.Markers {
			for _, uid := range marker.UIDs {
				node, ok := idx.byUID[uid]
				if !ok {
					return nil, fmt.Errorf("%w: marker %q in %s:%d", ErrUnresolvedRelation, uid, src.Path, marker.Line)
				}
				idx.addFileLink(node, src.Path, &marker)
				known[RelationKey{Type: model.RelationFile}] = struct{}{}
			}
		}
	}

	for _, node := range nodes {
		seen := make(map[*model.Node]struct{})
		texts := append([]string{node.Statement, node.Rationale}, node.Comments...)
		for _, text := range texts {
			for _, match := range LinkPattern.FindAllStringSubmatch(text, -1) {
				target, ok := idx.byUID[match[1]]
				if !ok {
					return nil, fmt.Errorf("%w: LINK %q on %q", ErrUnresolvedRelation, match[1], nodeLabel(node))
				}
				if _, dup := seen[target]; dup {
					continue
				}
				seen[target] = struct{}{}
				idx.incoming[target] = append(idx.incoming[target], node)
			}
		}
	}

	if err := idx.checkCycles(nodes); err != nil {
		return nil, err
	}

	for key := range known {
		idx.known = append(idx.known, key)
	}
	sort.Slice(idx.known, func(i, j int) bool {
		a, b := idx.known[i], idx.known[j]
		if a.Type != b.Type {
			return relationOrder(a.Type) < relationOrder(b.Type)
		}
		return a.Role < b.Role
	})
	return idx, nil
}

func (idx *MemoryIndex) addFileLink(node *model.Node, path string, marker *model.Marker) {
	path = strings.TrimSpace(path)
	if path == "" {
		return
	}
	links := idx.files[node]
	pos := -1
	for i := range links {
		if links[i].Path == path {
			pos = i
			break
		}
	}
	if pos < 0 {
		links = append(links, FileLink{Path: path})
		pos = len(links) - 1
		idx.byFile[path] = append(idx.byFile[path], node)
	}
	if marker != nil {
		links[pos].Markers = append(links[pos].Markers, *marker)
	}
	idx.files[node] = links
}

func (idx *MemoryIndex) checkCycles(nodes []*model.Node) error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[*model.Node]int, len(nodes))
	var visit func(node *model.Node) error
	visit = func(node *model.Node) error {
		switch state[node] {
		case visiting:
			return fmt.Errorf("%w: through %q", ErrRelationCycle, nodeLabel(node))
		case done:
			return nil
		}
		state[node] = visiting
		for _, link := range idx.parents[node] {
			if err := visit(link.Node); err != nil {
				return err
			}
		}
		state[node] = done
		return nil
	}
	for _, node := range nodes {
		if err := visit(node); err != nil {
			return err
		}
	}
	return nil
}

// Parents returns the nodes this node traces up to.
func (idx *MemoryIndex) Parents(node *model.Node) []Link { return idx.parents[node] }

// Children returns the nodes tracing up to this node.
func (idx *MemoryIndex) Children(node *model.Node) []Link { return idx.children[node] }

// ParentsWithRole filters Parents by role. An empty role selects links
// without a role.
func (idx *MemoryIndex) ParentsWithRole(node *model.Node, role string) []Link {
	return filterRole(idx.parents[node], role)
}

// ChildrenWithRole filters Children by role.
func (idx *MemoryIndex) ChildrenWithRole(node *model.Node, role string) []Link {
	return filterRole(idx.children[node], role)
}

// HasParents reports whether the node has parent links.
func (idx *MemoryIndex) HasParents(node *model.Node) bool { return len(idx.parents[node]) > 0 }

// HasChildren reports whether the node has child links.
func (idx *MemoryIndex) HasChildren(node *model.Node) bool { return len(idx.children[node]) > 0 }

// FileLinks returns the source files tied to the node.
func (idx *MemoryIndex) FileLinks(node *model.Node) []FileLink { return idx.files[node] }

// IncomingLinks returns nodes whose text references the node with [LINK: UID].
func (idx *MemoryIndex) IncomingLinks(node *model.Node) []*model.Node { return idx.incoming[node] }

// KnownRelations lists relation keys in use, parents first.
func (idx *MemoryIndex) KnownRelations() []RelationKey {
	return append([]RelationKey(nil), idx.known...)
}

// Lookup resolves a UID.
func (idx *MemoryIndex) Lookup(uid string) (*model.Node, bool) {
	node, ok := idx.byUID[uid]
	return node, ok
}

// NodesForFile returns the requirements linked to a source file.
func (idx *MemoryIndex) NodesForFile(path string) []*model.Node { return idx.byFile[path] }

func filterRole(links []Link, role string) []Link {
	var out []Link
	for _, link := range links {
		if link.Role == role {
			out = append(out, link)
		}
	}
	return out
}

func relationOrder(kind model.RelationType) int {
	switch kind {
	case model.RelationParent:
		return 0
	case model.RelationChild:
		return 1
	default:
		return 2
	}
}

func nodeLabel(node *model.Node) string {
	if node.UID != "" {
		return node.UID
	}
	if node.Title != "" {
		return node.Title
	}
	return node.MID
}
