package web

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-reqdoc/pkg/model"
	"github.com/goliatone/go-reqdoc/pkg/render"
	"github.com/goliatone/go-reqdoc/pkg/renderers/web/components"
	"github.com/goliatone/go-reqdoc/pkg/trace"
)

// truncateLimit is the statement length shown by the tiny presentation.
const truncateLimit = 120

// fieldShell wraps a value in the common field shell. trusted marks content
// produced by the markup converter; anything else is escaped.
func (p *page) fieldShell(content string, trusted, copyable bool) (string, error) {
	ns := render.Namespace{
		"content": content,
		"trusted": trusted,
		"copy":    copyable,
	}
	if copyable {
		ns["copy_icon"] = components.Icon("copy")
		ns["done_icon"] = components.Icon("done")
	}
	return p.component(components.NameFieldShell, ns)
}

func (p *page) includes(node *model.Node, field string) bool {
	return p.view.IncludesField(node.TypeString(), field)
}

func (p *page) titleField(node *model.Node, hLevel int) (string, error) {
	if !node.HasTitle() || !p.includes(node, "TITLE") {
		return "", nil
	}
	shell, err := p.fieldShell(strings.TrimSpace(node.Title), false, false)
	if err != nil {
		return "", err
	}
	ns := render.Namespace{"field": shell, "number": node.Number}
	if hLevel > 0 {
		ns["h_level"] = hLevel
	}
	return p.component(components.NameFieldTitle, ns)
}

func (p *page) uidField(node *model.Node) (string, error) {
	if node.UID == "" || !p.includes(node, "UID") {
		return "", nil
	}
	shell, err := p.fieldShell(node.UID, false, false)
	if err != nil {
		return "", err
	}
	return p.component(components.NameFieldUID, render.Namespace{"field": shell})
}

func (p *page) uidStandaloneField(node *model.Node) (string, error) {
	if strings.TrimSpace(node.UID) == "" {
		return "", nil
	}
	shell, err := p.fieldShell(node.UID, false, false)
	if err != nil {
		return "", err
	}
	return p.component(components.NameFieldUIDMeta, render.Namespace{"field": shell})
}

// labeledField renders one named field with its label. Free-text values go
// through the markup converter.
func (p *page) labeledField(label, dataLabel, value string, singleline, freeText, copyable bool) (string, error) {
	var (
		shell string
		err   error
	)
	if freeText {
		shell, err = p.fieldShell(p.view.RenderText(value), true, copyable)
	} else {
		shell, err = p.fieldShell(value, false, copyable)
	}
	if err != nil {
		return "", err
	}
	return p.component(components.NameFieldLabeled, render.Namespace{
		"label":      label,
		"data_label": dataLabel,
		"field":      shell,
		"singleline": singleline,
	})
}

func (p *page) statementField(node *model.Node, copyable bool) (string, error) {
	if !node.HasStatement() || !p.includes(node, "STATEMENT") {
		return "", nil
	}
	return p.labeledField(model.FieldHumanTitle("STATEMENT"), "statement", node.Statement, false, true, copyable)
}

func (p *page) truncatedStatementField(node *model.Node) (string, error) {
	if !node.HasStatement() || !p.includes(node, "STATEMENT") {
		return "", nil
	}
	return p.component(components.NameFieldTruncated, render.Namespace{
		"text": p.view.RenderTruncatedText(node.Statement, truncateLimit),
	})
}

func (p *page) rationaleField(node *model.Node, copyable bool) (string, error) {
	if strings.TrimSpace(node.Rationale) == "" || !p.includes(node, "RATIONALE") {
		return "", nil
	}
	return p.labeledField(model.FieldHumanTitle("RATIONALE"), "rationale", node.Rationale, false, true, copyable)
}

func (p *page) commentFields(node *model.Node, copyable bool) (string, error) {
	if !p.includes(node, "COMMENT") {
		return "", nil
	}
	var parts []string
	for _, comment := range node.Comments {
		if strings.TrimSpace(comment) == "" {
			continue
		}
		out, err := p.labeledField(model.FieldHumanTitle("COMMENT"), "comment", comment, false, true, copyable)
		if err != nil {
			return "", err
		}
		parts = append(parts, out)
	}
	return joinHTML(parts...), nil
}

// metaFields renders UID, status and the single-line custom fields.
func (p *page) metaFields(node *model.Node) (string, error) {
	if !node.HasMeta() {
		return "", nil
	}
	fields := make([]model.Field, 0, len(node.Meta)+2)
	if node.UID != "" {
		fields = append(fields, model.Field{Name: "UID", Value: node.UID})
	}
	if node.Status != "" {
		fields = append(fields, model.Field{Name: "STATUS", Value: node.Status})
	}
	fields = append(fields, node.MetaFields(false)...)

	var parts []string
	for _, field := range fields {
		if !p.includes(node, field.Name) {
			continue
		}
		out, err := p.labeledField(field.Name, field.Name, field.Value, true, false, false)
		if err != nil {
			return "", err
		}
		parts = append(parts, out)
	}
	return joinHTML(parts...), nil
}

func (p *page) multilineFields(node *model.Node, copyable bool) (string, error) {
	var parts []string
	for _, field := range node.MetaFields(true) {
		if !p.includes(node, field.Name) {
			continue
		}
		out, err := p.labeledField(field.Name, field.Name, field.Value, false, true, copyable)
		if err != nil {
			return "", err
		}
		parts = append(parts, out)
	}
	return joinHTML(parts...), nil
}

func (p *page) linksField(node *model.Node) (string, error) {
	parents := p.linkItems(p.view.Index.Parents(node))
	children := p.linkItems(p.view.Index.Children(node))
	if len(parents) == 0 && len(children) == 0 {
		return "", nil
	}
	return p.component(components.NameFieldLinks, render.Namespace{
		"parents":  parents,
		"children": children,
	})
}

func (p *page) linkItems(links []trace.Link) []map[string]any {
	if len(links) == 0 {
		return nil
	}
	out := make([]map[string]any, 0, len(links))
	for _, link := range links {
		out = append(out, map[string]any{
			"href":  p.view.RenderNodeLink(link.Node),
			"uid":   link.Node.UID,
			"title": link.Node.DisplayTitle(),
			"role":  link.Role,
		})
	}
	return out
}

// filesField lists the source files a requirement is traced to. It renders
// only when source traceability is enabled for the project.
func (p *page) filesField(node *model.Node) (string, error) {
	if !p.view.SourceTraceability() {
		return "", nil
	}
	links := p.view.Index.FileLinks(node)
	if len(links) == 0 {
		return "", nil
	}
	var files []map[string]any
	for _, link := range links {
		base := p.view.RenderSourceFileLink(link.Path)
		if len(link.Markers) == 0 {
			files = append(files, map[string]any{"href": base, "path": link.Path})
			continue
		}
		for _, marker := range link.Markers {
			files = append(files, map[string]any{
				"href":  fmt.Sprintf("%s#%s#%d#%d", base, node.UID, marker.RangeBegin, marker.RangeEnd),
				"path":  link.Path,
				"lines": fmt.Sprintf("%d-%d", marker.RangeBegin, marker.RangeEnd),
				"role":  marker.Role,
			})
		}
	}
	return p.component(components.NameFieldFiles, render.Namespace{"files": files})
}

// sectionTitleField renders a section heading. The anchor id is set on the
// heading for print layouts, where the anchor element is omitted.
func (p *page) sectionTitleField(node *model.Node, hLevel int, withAnchor bool) (string, error) {
	if !node.HasTitle() {
		return "", nil
	}
	shell, err := p.fieldShell(strings.TrimSpace(node.Title), false, false)
	if err != nil {
		return "", err
	}
	ns := render.Namespace{
		"field":   shell,
		"number":  node.Number,
		"h_level": headingLevel(hLevel),
	}
	if withAnchor {
		ns["anchor"] = p.view.RenderLocalAnchor(node)
	}
	return p.component(components.NameFieldSectionTitle, ns)
}

func (p *page) textField(node *model.Node) (string, error) {
	if !node.HasStatement() {
		return "", nil
	}
	shell, err := p.fieldShell(p.view.RenderText(node.Statement), true, false)
	if err != nil {
		return "", err
	}
	return p.component(components.NameFieldText, render.Namespace{"field": shell})
}

func (p *page) documentMeta(doc *model.Document) (string, error) {
	custom := make([]map[string]any, 0, len(doc.Config.Custom))
	for _, field := range doc.Config.Custom {
		if strings.TrimSpace(field.Value) == "" {
			continue
		}
		custom = append(custom, map[string]any{"label": field.Name, "value": field.Value})
	}
	return p.component(components.NameDocumentMeta, render.Namespace{
		"uid":            doc.Config.UID,
		"version":        doc.Config.Version,
		"date":           doc.Config.Date,
		"classification": doc.Config.Classification,
		"custom":         custom,
	})
}

func (p *page) documentTitle(doc *model.Document) (string, error) {
	return p.component(components.NameDocumentTitle, render.Namespace{"title": documentTitle(doc)})
}

func documentTitle(doc *model.Document) string {
	if title := strings.TrimSpace(doc.Title); title != "" {
		return title
	}
	return doc.Path
}

// headingLevel maps a tree depth to an <hN> level; the document title owns h1.
func headingLevel(depth int) int {
	level := depth + 1
	if level < 2 {
		return 2
	}
	if level > 6 {
		return 6
	}
	return level
}
