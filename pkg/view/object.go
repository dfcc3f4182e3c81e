// Package view provides the per-request view object: the façade that hands
// project and document data, traceability queries and link helpers to the
// screen and component renderers. A view object is built for one render and
// never mutates the snapshot it wraps.
package view

import (
	"errors"
	"path"
	"strings"
	"time"

	"github.com/goliatone/go-reqdoc/pkg/markup"
	"github.com/goliatone/go-reqdoc/pkg/model"
	"github.com/goliatone/go-reqdoc/pkg/trace"
)

// Option configures an Object.
type Option func(*options)

type options struct {
	linkBase      string
	staticPrefix  string
	standalone    bool
	server        bool
	deeptrace     bool
	showFragments bool
	version       string
	now           func() time.Time
	filter        FieldFilter
}

// WithLinkBase sets the prefix for document links (default "/").
func WithLinkBase(base string) Option {
	return func(o *options) {
		o.linkBase = base
	}
}

// WithStaticPrefix sets the URL prefix of bundled static assets.
func WithStaticPrefix(prefix string) Option {
	return func(o *options) {
		o.staticPrefix = prefix
	}
}

// WithStandalone renders self-contained pages: links stay inside the page and
// editing controls are hidden.
func WithStandalone(standalone bool) Option {
	return func(o *options) {
		o.standalone = standalone
	}
}

// WithServer marks the render as served by the live web server, enabling
// editing controls and stable links.
func WithServer(server bool) Option {
	return func(o *options) {
		o.server = server
	}
}

// WithDeeptrace switches the table of contents to the deep traceability
// layout where sections without requirements are not linked.
func WithDeeptrace(deeptrace bool) Option {
	return func(o *options) {
		o.deeptrace = deeptrace
	}
}

// WithFragments lists included document fragments in the project tree.
func WithFragments(show bool) Option {
	return func(o *options) {
		o.showFragments = show
	}
}

// WithVersion sets the tool version shown in page footers.
func WithVersion(version string) Option {
	return func(o *options) {
		o.version = version
	}
}

// WithClock overrides the clock used for DateToday.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithFieldFilter limits which fields are shown per element tag.
func WithFieldFilter(filter FieldFilter) Option {
	return func(o *options) {
		o.filter = filter
	}
}

// Object is the view object handed to renderers.
type Object struct {
	Project  *model.Project
	Document *model.Document
	Index    trace.Index

	markup *markup.Converter
	opts   options
}

// New builds a project-level view object.
func New(project *model.Project, index trace.Index, opts ...Option) (*Object, error) {
	if project == nil {
		return nil, errors.New("view: project is required")
	}
	if index == nil {
		return nil, errors.New("view: traceability index is required")
	}
	cfg := options{
		linkBase:     "/",
		staticPrefix: "/_static",
		now:          time.Now,
		version:      "dev",
	}
	if project.Config.StaticPrefix != "" {
		cfg.staticPrefix = project.Config.StaticPrefix
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if !strings.HasSuffix(cfg.linkBase, "/") {
		cfg.linkBase += "/"
	}
	obj := &Object{Project: project, Index: index, opts: cfg}
	obj.markup = markup.New(markup.WithLinkResolver(obj.resolveLink))
	return obj, nil
}

// ForDocument returns a copy of the view object scoped to doc.
func (o *Object) ForDocument(doc *model.Document) *Object {
	clone := *o
	clone.Document = doc
	clone.markup = markup.New(markup.WithLinkResolver(clone.resolveLink))
	return &clone
}

// Standalone reports whether links and controls are rendered for a
// self-contained page.
func (o *Object) Standalone() bool { return o.opts.standalone }

// Server reports whether the page is served by the live server.
func (o *Object) Server() bool { return o.opts.server && !o.opts.standalone }

// IsDeeptrace reports whether the deep traceability layout is active.
func (o *Object) IsDeeptrace() bool { return o.opts.deeptrace }

// Version returns the tool version.
func (o *Object) Version() string { return o.opts.version }

// DateToday formats the current date for print headers and footers.
func (o *Object) DateToday() string { return o.opts.now().Format("2006-01-02") }

// ProjectTitle returns the configured project title.
func (o *Object) ProjectTitle() string {
	if title := strings.TrimSpace(o.Project.Config.Title); title != "" {
		return title
	}
	return "Untitled Project"
}

// HasFeature forwards to the project configuration.
func (o *Object) HasFeature(feature string) bool { return o.Project.HasFeature(feature) }

// SourceTraceability reports whether file relations and coverage are enabled.
func (o *Object) SourceTraceability() bool {
	return o.Project.HasFeature(model.FeatureSourceTraceability)
}

// RenderLocalAnchor returns the in-page anchor for node: its UID when set,
// otherwise a slug of its number and title, otherwise its machine id.
func (o *Object) RenderLocalAnchor(node *model.Node) string {
	if node == nil {
		return ""
	}
	if node.UID != "" {
		return node.UID
	}
	if node.HasTitle() {
		if slug := model.Slugify(node.Number + " " + node.Title); slug != "" {
			return slug
		}
	}
	return "node-" + node.MID
}

// RenderNodeLink returns the href of node. Nodes in the current document (or
// any node when standalone) link to the local anchor.
func (o *Object) RenderNodeLink(node *model.Node) string {
	if node == nil {
		return ""
	}
	anchor := "#" + o.RenderLocalAnchor(node)
	doc := node.Document()
	if o.opts.standalone || doc == nil || (o.Document != nil && doc == o.Document) {
		return anchor
	}
	return o.RenderDocumentLink(doc) + anchor
}

// RenderDocumentLink returns the href of a document page.
func (o *Object) RenderDocumentLink(doc *model.Document) string {
	if doc == nil {
		return ""
	}
	return o.opts.linkBase + doc.HTMLLink()
}

// RenderStaticURL returns the URL of a bundled static asset.
func (o *Object) RenderStaticURL(name string) string {
	return strings.TrimRight(o.opts.staticPrefix, "/") + "/" + strings.TrimLeft(name, "/")
}

// RenderSourceFileLink returns the URL of the source file view for rel.
func (o *Object) RenderSourceFileLink(rel string) string {
	return o.opts.linkBase + path.Join("_source_files", rel) + ".html"
}

// RenderStableLink returns the permanent link of a node with a UID.
func (o *Object) RenderStableLink(node *model.Node) string {
	if node == nil || node.UID == "" {
		return ""
	}
	return o.opts.linkBase + "?a=" + node.UID
}

// ShouldDisplayStableLink reports whether the copy-stable-link button is shown
// for node.
func (o *Object) ShouldDisplayStableLink(node *model.Node) bool {
	return node != nil && node.UID != "" && o.Server()
}

// RenderText converts a free-text field to sanitized HTML, resolving
// [LINK: UID] references.
func (o *Object) RenderText(text string) string {
	return o.markup.Render(text)
}

// RenderTruncatedText returns the plain-text statement cut to limit runes.
func (o *Object) RenderTruncatedText(text string, limit int) string {
	return markup.Truncate(o.markup.PlainText(text), limit)
}

func (o *Object) resolveLink(uid string) (string, string, bool) {
	node, ok := o.Index.Lookup(uid)
	if !ok {
		return "", "", false
	}
	label := node.DisplayTitle()
	if label == "" {
		label = uid
	}
	return o.RenderNodeLink(node), label, true
}

// IncludesField reports whether the current field filter shows field on
// nodes of the given element tag.
func (o *Object) IncludesField(tag, field string) bool {
	return o.opts.filter.Includes(tag, field)
}

// GrammarElements returns the element tags a new node may be created with.
func (o *Object) GrammarElements() []string {
	if o.Document == nil || len(o.Document.Grammar) == 0 {
		return []string{"REQUIREMENT", "TEXT"}
	}
	out := make([]string, 0, len(o.Document.Grammar))
	for _, element := range o.Document.Grammar {
		out = append(out, element.Tag)
	}
	return out
}

// IsEmptyTree reports whether the project has no documents to list.
func (o *Object) IsEmptyTree() bool {
	for _, doc := range o.Project.Documents {
		if o.shouldListDocument(doc) {
			return false
		}
	}
	return true
}

// FileTree returns the project document tree.
func (o *Object) FileTree() *model.Folder {
	return o.Project.DocumentTree()
}

// ShouldDisplayFolder reports whether a folder holds anything listable.
func (o *Object) ShouldDisplayFolder(folder *model.Folder) bool {
	if folder == nil {
		return false
	}
	for _, file := range folder.Files {
		if o.ShouldDisplayFile(file) {
			return true
		}
	}
	for _, child := range folder.Folders {
		if o.ShouldDisplayFolder(child) {
			return true
		}
	}
	return false
}

// ShouldDisplayFile reports whether a file is listed in the project tree.
func (o *Object) ShouldDisplayFile(file *model.File) bool {
	if file == nil {
		return false
	}
	if file.Source != nil {
		return true
	}
	return o.shouldListDocument(file.Document)
}

func (o *Object) shouldListDocument(doc *model.Document) bool {
	if doc == nil {
		return false
	}
	return !doc.Fragment || o.opts.showFragments
}
