// Package markdown renders documents, the traceability matrix, source
// coverage and the changelog as Markdown for terminals and plain-text
// exports.
package markdown

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-reqdoc/pkg/diff"
	"github.com/goliatone/go-reqdoc/pkg/model"
	"github.com/goliatone/go-reqdoc/pkg/render"
	"github.com/goliatone/go-reqdoc/pkg/source"
	"github.com/goliatone/go-reqdoc/pkg/trace"
	"github.com/goliatone/go-reqdoc/pkg/view"
)

// ContentType is the media type of every Markdown screen.
const ContentType = "text/markdown; charset=utf-8"

// Option customises the renderer.
type Option func(*Renderer)

// WithTableOfContents prepends a bullet list of sections and requirements to
// document screens.
func WithTableOfContents(enabled bool) Option {
	return func(r *Renderer) {
		r.toc = enabled
	}
}

// Renderer implements render.Renderer for Markdown output.
type Renderer struct {
	toc bool
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the Markdown renderer.
func New(options ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Renderer) Name() string {
	return "markdown"
}

func (r *Renderer) ContentType() string {
	return ContentType
}

// Render dispatches on req.Screen. Screens without a text form, such as the
// project tree or the print layout, return an error.
func (r *Renderer) Render(ctx context.Context, req render.Request) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.View == nil {
		return nil, errors.New("markdown renderer: view object is required")
	}

	w := &writer{view: req.View}
	var err error
	switch req.Screen {
	case render.ScreenDocument:
		err = w.document(r.toc)
	case render.ScreenDocumentContent:
		err = w.document(false)
	case render.ScreenTOC:
		err = w.tableOfContents()
	case render.ScreenNode:
		err = w.singleNode(req.Namespace)
	case render.ScreenMatrix:
		w.matrix()
	case render.ScreenCoverage:
		w.coverage()
	case render.ScreenChangelog:
		err = w.changelog(req.Changes)
	default:
		return nil, fmt.Errorf("markdown renderer: %w %q", render.ErrUnsupportedScreen, req.Screen)
	}
	if err != nil {
		return nil, fmt.Errorf("markdown renderer: render %s: %w", req.Screen, err)
	}
	return []byte(w.String()), nil
}

type writer struct {
	strings.Builder
	view *view.Object
}

func (w *writer) line(format string, args ...any) {
	fmt.Fprintf(w, format, args...)
	w.WriteByte('\n')
}

func (w *writer) blank() {
	w.WriteByte('\n')
}

func (w *writer) requireDocument(screen render.Screen) error {
	return render.Assert(w.view.Document != nil, "%s requires a current document", screen)
}

func (w *writer) document(withTOC bool) error {
	if err := w.requireDocument(render.ScreenDocument); err != nil {
		return err
	}
	doc := w.view.Document
	w.line("# %s", documentTitle(doc))
	w.blank()
	w.documentMeta(doc)

	if withTOC {
		if err := w.tableOfContents(); err != nil {
			return err
		}
	}
	for _, item := range w.view.DocumentContent() {
		w.node(item.Node)
	}
	return nil
}

func (w *writer) documentMeta(doc *model.Document) {
	rows := [][2]string{
		{"UID", doc.Config.UID},
		{"VERSION", doc.Config.Version},
		{"DATE", doc.Config.Date},
		{"CLASSIFICATION", doc.Config.Classification},
	}
	for _, field := range doc.Config.Custom {
		rows = append(rows, [2]string{field.Name, field.Value})
	}
	written := false
	for _, row := range rows {
		if strings.TrimSpace(row[1]) == "" {
			continue
		}
		w.line("- **%s:** %s", row[0], inline(row[1]))
		written = true
	}
	if written {
		w.blank()
	}
}

func (w *writer) tableOfContents() error {
	if err := w.requireDocument(render.ScreenTOC); err != nil {
		return err
	}
	items := w.view.TableOfContents()
	if len(items) == 0 {
		return nil
	}
	for _, item := range items {
		indent := strings.Repeat("  ", max(item.Depth-1, 0))
		title := strings.TrimSpace(item.Number + " " + item.Title)
		if item.Linked {
			w.line("%s- [%s](#%s)", indent, inline(title), item.Anchor)
		} else {
			w.line("%s- %s", indent, inline(title))
		}
	}
	w.blank()
	return nil
}

func (w *writer) singleNode(ns render.Namespace) error {
	if err := ns.Require("node", "mid"); err != nil {
		return err
	}
	mid := ns.String("mid")
	node, ok := w.view.Project.FindNode(mid)
	if err := render.Assert(ok, "node %q not found", mid); err != nil {
		return err
	}
	if w.view.Document == nil {
		w.view = w.view.ForDocument(node.Document())
	}
	w.node(node)
	return nil
}

func (w *writer) node(node *model.Node) {
	switch {
	case node.IsSection():
		w.heading(node)
	case node.IsRequirement():
		w.requirement(node)
	case node.IsTextNode():
		if text := w.text(node.Statement); text != "" {
			w.line("%s", text)
			w.blank()
		}
	}
}

func (w *writer) heading(node *model.Node) {
	if !node.HasTitle() {
		return
	}
	level := min(node.Level+1, 6)
	w.line("%s %s", strings.Repeat("#", level), inline(strings.TrimSpace(node.Number+" "+node.Title)))
	w.blank()
}

func (w *writer) requirement(node *model.Node) {
	tag := node.TypeString()
	if node.HasTitle() && w.view.IncludesField(tag, "TITLE") {
		w.heading(node)
	}
	if node.UID != "" && w.view.IncludesField(tag, "UID") {
		w.line("- **UID:** %s", inline(node.UID))
	}
	if node.Status != "" && w.view.IncludesField(tag, "STATUS") {
		w.line("- **STATUS:** %s", inline(node.Status))
	}
	for _, field := range node.MetaFields(false) {
		if w.view.IncludesField(tag, field.Name) {
			w.line("- **%s:** %s", field.Name, inline(field.Value))
		}
	}
	w.blank()

	w.labeled(tag, "STATEMENT", node.Statement)
	w.labeled(tag, "RATIONALE", node.Rationale)
	for _, comment := range node.Comments {
		w.labeled(tag, "COMMENT", comment)
	}
	for _, field := range node.MetaFields(true) {
		w.labeled(tag, field.Name, field.Value)
	}
	w.relations(node)
}

func (w *writer) labeled(tag, field, value string) {
	if strings.TrimSpace(value) == "" || !w.view.IncludesField(tag, field) {
		return
	}
	w.line("**%s:**", model.FieldHumanTitle(field))
	w.blank()
	w.line("%s", w.text(value))
	w.blank()
}

func (w *writer) relations(node *model.Node) {
	idx := w.view.Index
	groups := []struct {
		label string
		links []trace.Link
	}{
		{"Parents", idx.Parents(node)},
		{"Children", idx.Children(node)},
	}
	for _, group := range groups {
		if len(group.links) == 0 {
			continue
		}
		w.line("**%s:**", group.label)
		w.blank()
		for _, link := range group.links {
			w.line("- %s", w.linkTo(link.Node, link.Role))
		}
		w.blank()
	}
	if !w.view.SourceTraceability() {
		return
	}
	files := idx.FileLinks(node)
	if len(files) == 0 {
		return
	}
	w.line("**Files:**")
	w.blank()
	for _, file := range files {
		if len(file.Markers) == 0 {
			w.line("- `%s`", file.Path)
			continue
		}
		for _, marker := range file.Markers {
			w.line("- `%s`, lines %d-%d", file.Path, marker.RangeBegin, marker.RangeEnd)
		}
	}
	w.blank()
}

func (w *writer) linkTo(node *model.Node, role string) string {
	label := strings.TrimSpace(node.UID + " " + node.Title)
	if label == "" {
		label = node.MID
	}
	out := fmt.Sprintf("[%s](%s)", inline(label), w.view.RenderNodeLink(node))
	if role != "" {
		out += " (" + role + ")"
	}
	return out
}

// text keeps free text as Markdown and resolves [LINK: UID] references.
func (w *writer) text(value string) string {
	value = strings.TrimSpace(value)
	return trace.LinkPattern.ReplaceAllStringFunc(value, func(match string) string {
		uid := trace.LinkPattern.FindStringSubmatch(match)[1]
		node, ok := w.view.Index.Lookup(uid)
		if !ok {
			return match
		}
		return w.linkTo(node, "")
	})
}

func (w *writer) matrix() {
	relations := w.view.Index.KnownRelations()
	headers := []string{"Requirement"}
	for _, rel := range relations {
		if rel.Type == model.RelationFile && !w.view.SourceTraceability() {
			continue
		}
		headers = append(headers, rel.Label())
	}

	w.line("# Traceability matrix")
	w.blank()
	for _, doc := range w.view.Project.Documents {
		if doc.Fragment {
			continue
		}
		scoped := w.view.ForDocument(doc)
		w.line("## %s", inline(documentTitle(doc)))
		w.blank()
		requirements := scoped.Requirements()
		if len(requirements) == 0 {
			w.line("No traceable content.")
			w.blank()
			continue
		}
		w.tableRow(headers)
		w.tableRule(len(headers))
		for _, node := range requirements {
			cells := []string{uidOrPlaceholder(node)}
			for _, rel := range relations {
				var values []string
				switch rel.Type {
				case model.RelationParent:
					for _, link := range scoped.Index.ParentsWithRole(node, rel.Role) {
						values = append(values, uidOrPlaceholder(link.Node))
					}
				case model.RelationChild:
					for _, link := range scoped.Index.ChildrenWithRole(node, rel.Role) {
						values = append(values, uidOrPlaceholder(link.Node))
					}
				case model.RelationFile:
					if !w.view.SourceTraceability() {
						continue
					}
					for _, link := range scoped.Index.FileLinks(node) {
						values = append(values, link.Path)
					}
				}
				cells = append(cells, strings.Join(values, ", "))
			}
			w.tableRow(cells)
		}
		w.blank()
	}
}

func (w *writer) coverage() {
	w.line("# Source coverage")
	w.blank()
	files := w.view.Project.SourceFiles
	if len(files) == 0 || !w.view.SourceTraceability() {
		w.line("The project has no source files yet.")
		return
	}
	coverage := source.BuildCoverage(files)
	w.tableRow([]string{"Path", "Lines %", "Covered", "Code LOC", "Total LOC", "Functions %", "Functions covered", "Functions"})
	w.tableRule(8)
	rows := append(append([]source.Row(nil), coverage.Rows...), coverage.Total)
	for _, row := range rows {
		name := row.Path
		if row.IsFolder && row.Path != "" {
			name += "/"
		}
		if name == "" {
			name = "**" + row.Name + "**"
		}
		w.tableRow([]string{name, row.LinesPercent, row.LinesCovered, row.LinesTotal, row.LinesAll, row.FuncPercent, row.FuncCovered, row.FuncTotal})
	}
}

func (w *writer) changelog(changes *diff.ChangeSet) error {
	if err := render.Assert(changes != nil, "comparison requires two snapshots"); err != nil {
		return err
	}
	w.line("# Changelog")
	w.blank()
	stats := changes.Stats
	w.line("- Documents modified: %d", stats.DocumentsModified)
	w.line("- Sections added: %d, removed: %d, modified: %d", stats.Sections.Added, stats.Sections.Removed, stats.Sections.Modified)
	for _, tag := range stats.RequirementTags() {
		counter := stats.Requirements[tag]
		w.line("- %s added: %d, removed: %d, modified: %d", tag, counter.Added, counter.Removed, counter.Modified)
	}
	w.blank()
	if changes.Empty() {
		w.line("The compared snapshots are identical.")
		return nil
	}
	for i, entry := range changes.Changelog() {
		subject := entry.DocumentPath
		var fields []diff.FieldChange
		switch {
		case entry.Node != nil:
			subject = nodeLabel(entry.Node.Node()) + " in " + entry.DocumentPath
			fields = entry.Node.FieldChanges
		case entry.Document != nil:
			fields = entry.Document.FieldChanges
		}
		w.line("%d. **%s**: %s", i+1, entry.Type, inline(subject))
		for _, field := range fields {
			w.line("   - %s: `%s` -> `%s`", field.Name, code(field.LHS), code(field.RHS))
		}
	}
	return nil
}

func (w *writer) tableRow(cells []string) {
	escaped := make([]string, len(cells))
	for i, cell := range cells {
		escaped[i] = strings.ReplaceAll(cell, "|", `\|`)
	}
	w.line("| %s |", strings.Join(escaped, " | "))
}

func (w *writer) tableRule(columns int) {
	w.line("|%s", strings.Repeat(" --- |", columns))
}

func documentTitle(doc *model.Document) string {
	if title := strings.TrimSpace(doc.Title); title != "" {
		return title
	}
	return doc.Path
}

func nodeLabel(node *model.Node) string {
	if node == nil {
		return ""
	}
	return strings.TrimSpace(node.UID + " " + node.DisplayTitle())
}

func uidOrPlaceholder(node *model.Node) string {
	if node.UID != "" {
		return node.UID
	}
	return "[No UID]"
}

// inline flattens a value onto a single line.
func inline(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

func code(value string) string {
	return strings.ReplaceAll(inline(value), "`", "'")
}
