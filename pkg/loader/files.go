package loader

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-reqdoc/pkg/model"
)

type projectFile struct {
	Title              string   `json:"title" yaml:"title"`
	SourceRootPath     string   `json:"source_root_path,omitempty" yaml:"source_root_path,omitempty"`
	IncludeSourcePaths []string `json:"include_source_paths,omitempty" yaml:"include_source_paths,omitempty"`
	ExcludeSourcePaths []string `json:"exclude_source_paths,omitempty" yaml:"exclude_source_paths,omitempty"`
	Features           []string `json:"features,omitempty" yaml:"features,omitempty"`
	StaticPrefix       string   `json:"static_prefix,omitempty" yaml:"static_prefix,omitempty"`
}

type documentFile struct {
	MID      string        `json:"mid" yaml:"mid"`
	Title    string        `json:"title" yaml:"title"`
	Config   configFile    `json:"config" yaml:"config"`
	Grammar  []grammarFile `json:"grammar,omitempty" yaml:"grammar,omitempty"`
	Includes []string      `json:"includes,omitempty" yaml:"includes,omitempty"`
	Fragment bool          `json:"fragment,omitempty" yaml:"fragment,omitempty"`
	Nodes    []nodeFile    `json:"nodes,omitempty" yaml:"nodes,omitempty"`
}

type configFile struct {
	UID              string      `json:"uid,omitempty" yaml:"uid,omitempty"`
	Version          string      `json:"version,omitempty" yaml:"version,omitempty"`
	Date             string      `json:"date,omitempty" yaml:"date,omitempty"`
	Classification   string      `json:"classification,omitempty" yaml:"classification,omitempty"`
	Prefix           string      `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	RequirementStyle string      `json:"requirement_style,omitempty" yaml:"requirement_style,omitempty"`
	Custom           []fieldFile `json:"custom,omitempty" yaml:"custom,omitempty"`
	Root             bool        `json:"root,omitempty" yaml:"root,omitempty"`
	DisableAutoLevel bool        `json:"disable_auto_level,omitempty" yaml:"disable_auto_level,omitempty"`
}

type grammarFile struct {
	Tag       string   `json:"tag" yaml:"tag"`
	Fields    []string `json:"fields,omitempty" yaml:"fields,omitempty"`
	Relations []string `json:"relations,omitempty" yaml:"relations,omitempty"`
}

type fieldFile struct {
	Name      string `json:"name" yaml:"name"`
	Value     string `json:"value" yaml:"value"`
	Multiline bool   `json:"multiline,omitempty" yaml:"multiline,omitempty"`
}

type relationFile struct {
	Type  string `json:"type" yaml:"type"`
	Value string `json:"value" yaml:"value"`
	Role  string `json:"role,omitempty" yaml:"role,omitempty"`
}

type nodeFile struct {
	Type       string         `json:"type" yaml:"type"`
	MID        string         `json:"mid,omitempty" yaml:"mid,omitempty"`
	UID        string         `json:"uid,omitempty" yaml:"uid,omitempty"`
	ElementTag string         `json:"element_tag,omitempty" yaml:"element_tag,omitempty"`
	Title      string         `json:"title,omitempty" yaml:"title,omitempty"`
	Status     string         `json:"status,omitempty" yaml:"status,omitempty"`
	Statement  string         `json:"statement,omitempty" yaml:"statement,omitempty"`
	Rationale  string         `json:"rationale,omitempty" yaml:"rationale,omitempty"`
	Comments   []string       `json:"comments,omitempty" yaml:"comments,omitempty"`
	Meta       []fieldFile    `json:"meta,omitempty" yaml:"meta,omitempty"`
	Relations  []relationFile `json:"relations,omitempty" yaml:"relations,omitempty"`
	Composite  bool           `json:"composite,omitempty" yaml:"composite,omitempty"`
	Children   []nodeFile     `json:"children,omitempty" yaml:"children,omitempty"`
}

// decode accepts JSON or YAML, trying JSON first.
func decode(data []byte, source string, out any) error {
	if len(strings.TrimSpace(string(data))) == 0 {
		return fmt.Errorf("loader: file %s is empty", source)
	}
	if err := json.Unmarshal(data, out); err == nil {
		return nil
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("loader: parse %s: %w", source, err)
	}
	return nil
}

func (f projectFile) config() model.ProjectConfig {
	return model.ProjectConfig{
		Title:              strings.TrimSpace(f.Title),
		SourceRootPath:     strings.TrimSpace(f.SourceRootPath),
		IncludeSourcePaths: trimAll(f.IncludeSourcePaths),
		ExcludeSourcePaths: trimAll(f.ExcludeSourcePaths),
		Features:           normaliseFeatures(f.Features),
		StaticPrefix:       strings.TrimSpace(f.StaticPrefix),
	}
}

func fileFromConfig(cfg model.ProjectConfig) projectFile {
	features := make([]string, 0, len(cfg.Features))
	for _, feature := range cfg.Features {
		features = append(features, strings.ToLower(feature))
	}
	return projectFile{
		Title:              cfg.Title,
		SourceRootPath:     cfg.SourceRootPath,
		IncludeSourcePaths: cfg.IncludeSourcePaths,
		ExcludeSourcePaths: cfg.ExcludeSourcePaths,
		Features:           features,
		StaticPrefix:       cfg.StaticPrefix,
	}
}

func (f documentFile) document(rel string) (*model.Document, error) {
	doc := &model.Document{
		MID:      strings.TrimSpace(f.MID),
		Title:    strings.TrimSpace(f.Title),
		Path:     rel,
		Includes: trimAll(f.Includes),
		Fragment: f.Fragment,
		Config: model.DocumentConfig{
			UID:              strings.TrimSpace(f.Config.UID),
			Version:          strings.TrimSpace(f.Config.Version),
			Date:             strings.TrimSpace(f.Config.Date),
			Classification:   strings.TrimSpace(f.Config.Classification),
			Prefix:           strings.TrimSpace(f.Config.Prefix),
			RequirementStyle: strings.ToLower(strings.TrimSpace(f.Config.RequirementStyle)),
			Custom:           fields(f.Config.Custom),
			Root:             f.Config.Root,
			DisableAutoLevel: f.Config.DisableAutoLevel,
		},
	}
	if doc.MID == "" {
		doc.MID = model.NewMID()
	}
	for _, g := range f.Grammar {
		tag := strings.ToUpper(strings.TrimSpace(g.Tag))
		if tag == "" {
			return nil, fmt.Errorf("loader: %s: grammar element without a tag", rel)
		}
		doc.Grammar = append(doc.Grammar, model.GrammarElement{
			Tag:       tag,
			Fields:    upperAll(g.Fields),
			Relations: trimAll(g.Relations),
		})
	}
	for i, raw := range f.Nodes {
		node, err := raw.node(rel, fmt.Sprintf("nodes[%d]", i))
		if err != nil {
			return nil, err
		}
		doc.Nodes = append(doc.Nodes, node)
	}
	return doc, nil
}

func (f nodeFile) node(rel, at string) (*model.Node, error) {
	kind, err := nodeType(f.Type)
	if err != nil {
		return nil, fmt.Errorf("loader: %s %s: %w", rel, at, err)
	}
	node := &model.Node{
		MID:        strings.TrimSpace(f.MID),
		UID:        strings.TrimSpace(f.UID),
		Type:       kind,
		ElementTag: strings.ToUpper(strings.TrimSpace(f.ElementTag)),
		Title:      strings.TrimSpace(f.Title),
		Status:     strings.TrimSpace(f.Status),
		Statement:  strings.TrimSpace(f.Statement),
		Rationale:  strings.TrimSpace(f.Rationale),
		Comments:   trimAll(f.Comments),
		Meta:       fields(f.Meta),
		Composite:  f.Composite,
	}
	if node.MID == "" {
		node.MID = model.NewMID()
	}
	for _, r := range f.Relations {
		relType, err := relationType(r.Type)
		if err != nil {
			return nil, fmt.Errorf("loader: %s %s: %w", rel, at, err)
		}
		node.Relations = append(node.Relations, model.Relation{
			Type:  relType,
			Value: strings.TrimSpace(r.Value),
			Role:  strings.TrimSpace(r.Role),
		})
	}
	for i, raw := range f.Children {
		child, err := raw.node(rel, fmt.Sprintf("%s.children[%d]", at, i))
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}
	return node, nil
}

func nodeType(raw string) (model.NodeType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "section":
		return model.NodeTypeSection, nil
	case "", "requirement":
		return model.NodeTypeRequirement, nil
	case "text":
		return model.NodeTypeText, nil
	default:
		return "", fmt.Errorf("unknown node type %q", raw)
	}
}

func relationType(raw string) (model.RelationType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "parent":
		return model.RelationParent, nil
	case "child":
		return model.RelationChild, nil
	case "file":
		return model.RelationFile, nil
	default:
		return "", fmt.Errorf("unknown relation type %q", raw)
	}
}

// fileFromDocument is the inverse of documentFile.document and backs Save.
func fileFromDocument(doc *model.Document) documentFile {
	out := documentFile{
		MID:      doc.MID,
		Title:    doc.Title,
		Includes: doc.Includes,
		Fragment: doc.Fragment,
		Config: configFile{
			UID:              doc.Config.UID,
			Version:          doc.Config.Version,
			Date:             doc.Config.Date,
			Classification:   doc.Config.Classification,
			Prefix:           doc.Config.Prefix,
			RequirementStyle: doc.Config.RequirementStyle,
			Root:             doc.Config.Root,
			DisableAutoLevel: doc.Config.DisableAutoLevel,
		},
	}
	for _, field := range doc.Config.Custom {
		out.Config.Custom = append(out.Config.Custom, fieldFile(field))
	}
	for _, g := range doc.Grammar {
		out.Grammar = append(out.Grammar, grammarFile(g))
	}
	for _, node := range doc.Nodes {
		out.Nodes = append(out.Nodes, fileFromNode(node))
	}
	return out
}

func fileFromNode(node *model.Node) nodeFile {
	out := nodeFile{
		Type:       string(node.Type),
		MID:        node.MID,
		UID:        node.UID,
		ElementTag: node.ElementTag,
		Title:      node.Title,
		Status:     node.Status,
		Statement:  node.Statement,
		Rationale:  node.Rationale,
		Comments:   node.Comments,
		Composite:  node.Composite,
	}
	for _, field := range node.Meta {
		out.Meta = append(out.Meta, fieldFile(field))
	}
	for _, rel := range node.Relations {
		out.Relations = append(out.Relations, relationFile{Type: strings.ToLower(string(rel.Type)), Value: rel.Value, Role: rel.Role})
	}
	for _, child := range node.Children {
		out.Children = append(out.Children, fileFromNode(child))
	}
	return out
}

func fields(raw []fieldFile) []model.Field {
	var out []model.Field
	for _, f := range raw {
		name := strings.ToUpper(strings.TrimSpace(f.Name))
		if name == "" {
			continue
		}
		out = append(out, model.Field{Name: name, Value: strings.TrimSpace(f.Value), Multiline: f.Multiline || strings.Contains(f.Value, "\n")})
	}
	return out
}

func normaliseFeatures(raw []string) []string {
	out := upperAll(raw)
	for i, feature := range out {
		out[i] = strings.ReplaceAll(feature, "-", "_")
	}
	return out
}

func upperAll(values []string) []string {
	out := trimAll(values)
	for i := range out {
		out[i] = strings.ToUpper(out[i])
	}
	return out
}

func trimAll(values []string) []string {
	var out []string
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
