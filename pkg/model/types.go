package model

import internalmodel "github.com/goliatone/go-reqdoc/internal/model"

// NodeType re-exports the internal NodeType enumeration.
type NodeType = internalmodel.NodeType

const (
	NodeTypeDocument    = internalmodel.NodeTypeDocument
	NodeTypeSection     = internalmodel.NodeTypeSection
	NodeTypeRequirement = internalmodel.NodeTypeRequirement
	NodeTypeText        = internalmodel.NodeTypeText
)

// RelationType re-exports the internal RelationType enumeration.
type RelationType = internalmodel.RelationType

const (
	RelationParent = internalmodel.RelationParent
	RelationChild  = internalmodel.RelationChild
	RelationFile   = internalmodel.RelationFile
)

const (
	StyleInline    = internalmodel.StyleInline
	StyleNarrative = internalmodel.StyleNarrative
	StylePlain     = internalmodel.StylePlain
	StyleTable     = internalmodel.StyleTable
	StyleZebra     = internalmodel.StyleZebra
)

const (
	FeatureSourceTraceability = internalmodel.FeatureSourceTraceability
	FeatureDeepTraceability   = internalmodel.FeatureDeepTraceability
	FeatureMatrix             = internalmodel.FeatureMatrix
	FeatureDiff               = internalmodel.FeatureDiff
	FeatureStandalone         = internalmodel.FeatureStandalone
	FeatureHTML2PDF           = internalmodel.FeatureHTML2PDF
	FeatureMermaid            = internalmodel.FeatureMermaid
)

type Field = internalmodel.Field
type Relation = internalmodel.Relation
type Node = internalmodel.Node
type DocumentConfig = internalmodel.DocumentConfig
type GrammarElement = internalmodel.GrammarElement
type Document = internalmodel.Document
type ProjectConfig = internalmodel.ProjectConfig
type Function = internalmodel.Function
type Marker = internalmodel.Marker
type SourceFile = internalmodel.SourceFile
type Project = internalmodel.Project
type Folder = internalmodel.Folder
type File = internalmodel.File

var (
	ErrDuplicateUID   = internalmodel.ErrDuplicateUID
	ErrDuplicateMID   = internalmodel.ErrDuplicateMID
	ErrUnknownInclude = internalmodel.ErrUnknownInclude
)

// NewMID returns a fresh machine identifier.
func NewMID() string { return internalmodel.NewMID() }

// FieldHumanTitle converts a grammar field name into its display label.
func FieldHumanTitle(name string) string { return internalmodel.FieldHumanTitle(name) }

// Slugify converts s into an anchor-safe slug.
func Slugify(s string) string { return internalmodel.Slugify(s) }
