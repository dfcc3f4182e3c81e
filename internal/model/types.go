package model

// NodeType enumerates the entity kinds found in a document tree.
type NodeType string

const (
	NodeTypeDocument    NodeType = "document"
	NodeTypeSection     NodeType = "section"
	NodeTypeRequirement NodeType = "requirement"
	NodeTypeText        NodeType = "text"
)

// RelationType distinguishes parent/child links between requirements from
// links to source files.
type RelationType string

const (
	RelationParent RelationType = "Parent"
	RelationChild  RelationType = "Child"
	RelationFile   RelationType = "File"
)

// Requirement style modes selectable per document.
const (
	StyleInline    = "inline"
	StyleNarrative = "narrative"
	StylePlain     = "plain"
	StyleTable     = "table"
	StyleZebra     = "zebra"
)

// Project feature toggles.
const (
	FeatureSourceTraceability = "REQUIREMENT_TO_SOURCE_TRACEABILITY"
	FeatureDeepTraceability   = "DEEP_TRACEABILITY_SCREEN"
	FeatureMatrix             = "TRACEABILITY_MATRIX_SCREEN"
	FeatureDiff               = "DIFF"
	FeatureStandalone         = "STANDALONE_DOCUMENT_SCREEN"
	FeatureHTML2PDF           = "HTML2PDF"
	FeatureMermaid            = "MERMAID"
)

// Field is a single named attribute of a node beyond the built-in ones.
type Field struct {
	Name      string `json:"name"`
	Value     string `json:"value"`
	Multiline bool   `json:"multiline,omitempty"`
}

// Relation links a node to another node (by UID) or to a source file path.
type Relation struct {
	Type  RelationType `json:"type"`
	Value string       `json:"value"`
	Role  string       `json:"role,omitempty"`
}

// Node is a document-tree entity: section, requirement or text block.
// Level, Number and the parent/document back-references are populated by
// Document.Index and must be treated as read-only afterwards.
type Node struct {
	MID        string     `json:"mid"`
	UID        string     `json:"uid,omitempty"`
	Type       NodeType   `json:"type"`
	ElementTag string     `json:"element_tag,omitempty"`
	Title      string     `json:"title,omitempty"`
	Status     string     `json:"status,omitempty"`
	Statement  string     `json:"statement,omitempty"`
	Rationale  string     `json:"rationale,omitempty"`
	Comments   []string   `json:"comments,omitempty"`
	Meta       []Field    `json:"meta,omitempty"`
	Relations  []Relation `json:"relations,omitempty"`
	Children   []*Node    `json:"children,omitempty"`
	Composite  bool       `json:"composite,omitempty"`

	Level  int    `json:"level"`
	Number string `json:"number,omitempty"`

	parent   *Node
	document *Document
}

// DocumentConfig mirrors the [DOCUMENT] header of a requirements document.
type DocumentConfig struct {
	UID              string  `json:"uid,omitempty"`
	Version          string  `json:"version,omitempty"`
	Date             string  `json:"date,omitempty"`
	Classification   string  `json:"classification,omitempty"`
	Prefix           string  `json:"prefix,omitempty"`
	RequirementStyle string  `json:"requirement_style,omitempty"`
	Custom           []Field `json:"custom,omitempty"`
	Root             bool    `json:"root,omitempty"`
	DisableAutoLevel bool    `json:"disable_auto_level,omitempty"`
}

// GrammarElement declares a node kind a document may contain and the fields
// it accepts.
type GrammarElement struct {
	Tag       string   `json:"tag"`
	Fields    []string `json:"fields,omitempty"`
	Relations []string `json:"relations,omitempty"`
}

// Document is one requirements document (or fragment) in a project.
type Document struct {
	MID      string           `json:"mid"`
	Title    string           `json:"title"`
	Path     string           `json:"path"`
	Config   DocumentConfig   `json:"config"`
	Grammar  []GrammarElement `json:"grammar,omitempty"`
	Nodes    []*Node          `json:"nodes,omitempty"`
	Includes []string         `json:"includes,omitempty"`
	Fragment bool             `json:"fragment,omitempty"`

	includedBy []*Document
	included   []*Document
	byMID      map[string]*Node
}

// ProjectConfig carries project-wide settings and feature toggles.
type ProjectConfig struct {
	Title              string   `json:"title"`
	SourceRootPath     string   `json:"source_root_path,omitempty"`
	IncludeSourcePaths []string `json:"include_source_paths,omitempty"`
	ExcludeSourcePaths []string `json:"exclude_source_paths,omitempty"`
	Features           []string `json:"features,omitempty"`
	StaticPrefix       string   `json:"static_prefix,omitempty"`
}

// Function is a function declaration discovered in a source file.
type Function struct {
	Name      string `json:"name"`
	LineBegin int    `json:"line_begin"`
	LineEnd   int    `json:"line_end"`
}

// Marker is an @relation annotation found in a source file.
type Marker struct {
	UIDs       []string `json:"uids"`
	Scope      string   `json:"scope"`
	Role       string   `json:"role,omitempty"`
	Line       int      `json:"line"`
	RangeBegin int      `json:"range_begin"`
	RangeEnd   int      `json:"range_end"`
}

// SourceFile captures line statistics and traceability markers of one file
// under the project's source root.
type SourceFile struct {
	Path      string     `json:"path"`
	Lines     int        `json:"lines"`
	CodeLines int        `json:"code_lines"`
	Covered   int        `json:"covered"`
	Functions []Function `json:"functions,omitempty"`
	Markers   []Marker   `json:"markers,omitempty"`
	// CoveredFunctions counts functions that overlap a marker range.
	CoveredFunctions int `json:"covered_functions"`
}

// Project is the root snapshot handed to the view layer.
type Project struct {
	Config      ProjectConfig `json:"config"`
	Documents   []*Document   `json:"documents"`
	SourceFiles []*SourceFile `json:"source_files,omitempty"`
}
