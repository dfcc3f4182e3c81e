package web_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-reqdoc/pkg/model"
	"github.com/goliatone/go-reqdoc/pkg/render"
	"github.com/goliatone/go-reqdoc/pkg/renderers/web"
	"github.com/goliatone/go-reqdoc/pkg/renderers/web/components"
	"github.com/goliatone/go-reqdoc/pkg/testsupport"
	"github.com/goliatone/go-reqdoc/pkg/trace"
	"github.com/goliatone/go-reqdoc/pkg/view"
)

func newRenderer(t *testing.T, opts ...web.Option) *web.Renderer {
	t.Helper()
	renderer, err := web.New(opts...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return renderer
}

func newView(t *testing.T, project *model.Project, opts ...view.Option) *view.Object {
	t.Helper()
	idx, err := trace.Build(project)
	if err != nil {
		t.Fatalf("trace: %v", err)
	}
	obj, err := view.New(project, idx, opts...)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	return obj
}

func documentView(t *testing.T, project *model.Project, opts ...view.Option) *view.Object {
	t.Helper()
	return newView(t, project, opts...).ForDocument(project.Documents[0])
}

func renderScreen(t *testing.T, renderer *web.Renderer, req render.Request) string {
	t.Helper()
	out, err := renderer.Render(context.Background(), req)
	if err != nil {
		t.Fatalf("render %s: %v", req.Screen, err)
	}
	return string(out)
}

func TestRendererMetadata(t *testing.T) {
	renderer := newRenderer(t)
	if renderer.Name() != "html" {
		t.Fatalf("unexpected name %q", renderer.Name())
	}
	if renderer.ContentType() != web.ContentType {
		t.Fatalf("unexpected content type %q", renderer.ContentType())
	}
	if _, ok := renderer.Registry().Descriptor(components.NameNodeFull); !ok {
		t.Fatalf("default registry misses the full node shell")
	}
}

func TestRenderRequiresView(t *testing.T) {
	_, err := newRenderer(t).Render(context.Background(), render.Request{Screen: render.ScreenDocument})
	if err == nil {
		t.Fatalf("expected error without a view object")
	}
}

func TestRenderUnsupportedScreen(t *testing.T) {
	project := testsupport.SampleProject(t)
	_, err := newRenderer(t).Render(context.Background(), render.Request{
		Screen: "unknown",
		View:   newView(t, project),
	})
	if err == nil || !strings.Contains(err.Error(), "unsupported screen") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDocumentContentEmitsOneShellPerNode(t *testing.T) {
	project := testsupport.SampleProject(t)
	markup := renderScreen(t, newRenderer(t), render.Request{
		Screen: render.ScreenDocumentContent,
		View:   documentView(t, project),
	})

	counts := map[string]int{
		"node-root":        testsupport.CountElements(t, markup, "sdoc-node", map[string]string{"data-testid": "node-root"}),
		"node-section":     testsupport.CountElements(t, markup, "sdoc-node", map[string]string{"data-testid": "node-section"}),
		"node-requirement": testsupport.CountElements(t, markup, "sdoc-node", map[string]string{"data-testid": "node-requirement"}),
		"node-text":        testsupport.CountElements(t, markup, "sdoc-node", map[string]string{"data-testid": "node-text"}),
	}
	want := map[string]int{"node-root": 1, "node-section": 2, "node-requirement": 3, "node-text": 1}
	if diff := cmp.Diff(want, counts); diff != "" {
		t.Fatalf("node shell counts mismatch (-want +got):\n%s", diff)
	}

	if got := strings.Count(markup, "<sdoc-node "); got != strings.Count(markup, "</sdoc-node>") {
		t.Fatalf("unbalanced node markup: %d open, %d close", got, strings.Count(markup, "</sdoc-node>"))
	}

	root := testsupport.ParseFragment(t, markup)
	frames := testsupport.FindAll(root, "turbo-frame", map[string]string{"id": "article-" + testsupport.MIDBoot})
	if len(frames) != 1 {
		t.Fatalf("expected a turbo-frame for the boot requirement, got %d", len(frames))
	}
	testsupport.MustContain(t, markup,
		`id="frame_document_content"`,
		`data-testid="document-title"`,
		`data-testid="document-config-uid-field">DOC-SYS<`,
		`<em>system</em>`,
		`data-testid="requirement-style-inline"`,
	)
}

func TestDocumentContentRequiresDocument(t *testing.T) {
	project := testsupport.SampleProject(t)
	_, err := newRenderer(t).Render(context.Background(), render.Request{
		Screen: render.ScreenDocumentContent,
		View:   newView(t, project),
	})
	if !errors.Is(err, render.ErrAssertion) {
		t.Fatalf("expected assertion error, got %v", err)
	}
}

func TestRequirementFields(t *testing.T) {
	project := testsupport.SampleProject(t)
	markup := renderScreen(t, newRenderer(t), render.Request{
		Screen: render.ScreenDocumentContent,
		View:   documentView(t, project),
	})

	testsupport.MustContain(t, markup,
		`data-field-label="statement"`,
		`data-field-label="rationale"`,
		`data-field-label="comment"`,
		`data-field-label="VERIFICATION"`,
		`data-field-label="NOTES"`,
		`data-field-label="parent relations"`,
		`data-field-label="child relations"`,
		`(Refines)`,
		`data-status="Approved"`,
	)

	root := testsupport.ParseFragment(t, markup)
	singleline := testsupport.FindAll(root, "sdoc-node-field", map[string]string{"data-field-type": "singleline"})
	var labels []string
	for _, field := range singleline {
		label, _ := testsupport.Attr(field, "data-field-label")
		labels = append(labels, label)
	}
	// SYS-1: UID, STATUS, VERIFICATION. SYS-2: UID. SYS-3: UID, STATUS.
	want := []string{"UID", "STATUS", "VERIFICATION", "UID", "UID", "STATUS"}
	if diff := cmp.Diff(want, labels); diff != "" {
		t.Fatalf("single-line fields mismatch (-want +got):\n%s", diff)
	}

	anchors := testsupport.FindAll(root, "sdoc-anchor", map[string]string{"id": "SYS-1"})
	if len(anchors) != 1 {
		t.Fatalf("expected one anchor for SYS-1, got %d", len(anchors))
	}
	if text := testsupport.Text(anchors[0]); !strings.Contains(text, "Incoming link from:") || !strings.Contains(text, "Shutdown") {
		t.Fatalf("unexpected incoming link text %q", text)
	}
}

func TestFileRelationsFollowSourceTraceability(t *testing.T) {
	renderer := newRenderer(t)

	enabled := testsupport.SampleProject(t)
	markup := renderScreen(t, renderer, render.Request{
		Screen: render.ScreenDocumentContent,
		View:   documentView(t, enabled),
	})
	testsupport.MustContain(t, markup, `data-field-label="file relations"`, `href="/_source_files/src/usb.go.html"`)

	disabled := testsupport.SampleProject(t)
	disabled.Config.Features = nil
	markup = renderScreen(t, renderer, render.Request{
		Screen: render.ScreenDocumentContent,
		View:   documentView(t, disabled),
	})
	testsupport.MustNotContain(t, markup, `data-field-label="file relations"`, "_source_files")
}

func TestFileRelationsCarryMarkerRanges(t *testing.T) {
	project := testsupport.SampleProject(t)
	obj := newView(t, project).ForDocument(project.Documents[1])
	markup := renderScreen(t, newRenderer(t), render.Request{
		Screen: render.ScreenDocumentContent,
		View:   obj,
	})
	testsupport.MustContain(t, markup,
		`href="/_source_files/src/usb.go.html#SW-1#3#10"`,
		`lines: 3-10`,
		`data-testid="requirement-style-narrative"`,
		`node_fields_group-primary`,
	)
}

func TestServerModeControls(t *testing.T) {
	renderer := newRenderer(t)

	static := renderScreen(t, renderer, render.Request{
		Screen: render.ScreenDocumentContent,
		View:   documentView(t, testsupport.SampleProject(t)),
	})
	testsupport.MustNotContain(t, static, "copy_stable_link-button", "sdoc-node-controls", "document-root-placeholder")

	served := renderScreen(t, renderer, render.Request{
		Screen: render.ScreenDocumentContent,
		View:   documentView(t, testsupport.SampleProject(t), view.WithServer(true)),
	})
	if got := testsupport.CountElements(t, served, "div", map[string]string{"class": "copy_stable_link-button"}); got != 3 {
		t.Fatalf("expected 3 stable link buttons (nodes with UID), got %d", got)
	}
	if got := testsupport.CountElements(t, served, "a", map[string]string{"data-testid": "node-clone-action"}); got != 3 {
		t.Fatalf("expected clone actions on requirements only, got %d", got)
	}
	testsupport.MustContain(t, served,
		`data-testid="document-edit-config-action"`,
		`data-path="/?a=SYS-1"`,
		`data-testid="node-add-section-child-action"`,
		`data-testid="node-add-requirement-below-action"`,
		`whereto=child`,
	)

	standalone := renderScreen(t, renderer, render.Request{
		Screen: render.ScreenDocumentContent,
		View:   documentView(t, testsupport.SampleProject(t), view.WithServer(true), view.WithStandalone(true)),
	})
	testsupport.MustNotContain(t, standalone, "copy_stable_link-button", `id="article-`)
}

func TestEmptyDocumentPlaceholder(t *testing.T) {
	project := singleEmptyDocument(t)
	if err := project.Index(); err != nil {
		t.Fatalf("index: %v", err)
	}
	markup := renderScreen(t, newRenderer(t), render.Request{
		Screen: render.ScreenDocumentContent,
		View:   documentView(t, project, view.WithServer(true)),
	})
	testsupport.MustContain(t, markup, `data-testid="document-root-placeholder"`)
}

// singleEmptyDocument keeps only the system document, without nodes. The
// software document and the source markers pointing at it are dropped so
// nothing references the removed requirements.
func singleEmptyDocument(t *testing.T) *model.Project {
	t.Helper()
	project := testsupport.NewSampleProject()
	project.Documents = project.Documents[:1]
	project.Documents[0].Nodes = nil
	project.SourceFiles = nil
	return project
}

func TestInterpolatedValuesAreEscaped(t *testing.T) {
	project := testsupport.SampleProject(t)
	boot, _ := project.FindNode(testsupport.MIDBoot)
	boot.Title = `Boot <script>alert(1)</script>`
	boot.Meta[0].Value = `"quoted" & <b>bold</b>`

	markup := renderScreen(t, newRenderer(t), render.Request{
		Screen: render.ScreenDocument,
		View:   documentView(t, project),
	})
	testsupport.MustNotContain(t, markup, "<script>alert", "<b>bold</b>")
	testsupport.MustContain(t, markup, "&lt;script&gt;", "&lt;b&gt;bold&lt;/b&gt;")
}

func TestFieldFilterHidesFields(t *testing.T) {
	project := testsupport.SampleProject(t)
	markup := renderScreen(t, newRenderer(t), render.Request{
		Screen: render.ScreenDocumentContent,
		View: documentView(t, project, view.WithFieldFilter(view.FieldFilter{
			"REQUIREMENT": {"TITLE", "STATEMENT"},
		})),
	})
	testsupport.MustContain(t, markup, `data-field-label="statement"`)
	testsupport.MustNotContain(t, markup, `data-field-label="rationale"`, `data-field-label="VERIFICATION"`)
}

func TestTableOfContentsNesting(t *testing.T) {
	project := testsupport.SampleProject(t)
	markup := renderScreen(t, newRenderer(t), render.Request{
		Screen: render.ScreenTOC,
		View:   documentView(t, project),
	})

	root := testsupport.ParseFragment(t, markup)
	if got := len(testsupport.FindAll(root, "li", map[string]string{"data-nodeid": ""})); got != 5 {
		t.Fatalf("expected 5 toc items, got %d", got)
	}
	// The top list plus one nested list per section.
	if got := len(testsupport.FindAll(root, "ul", nil)); got != 3 {
		t.Fatalf("expected 3 lists, got %d", got)
	}
	overview := testsupport.FindAll(root, "li", map[string]string{"data-nodeid": testsupport.MIDOverview})
	if len(overview) != 1 || len(testsupport.FindAll(overview[0], "li", nil)) != 2 {
		t.Fatalf("overview should hold its two requirements")
	}
	testsupport.MustContain(t, markup, `href="#SYS-1"`, `id="frame-toc"`)
}

func TestTableOfContentsDeeptrace(t *testing.T) {
	project := testsupport.SampleProject(t)
	project.Documents[0].Nodes = append(project.Documents[0].Nodes, &model.Node{
		MID:   "sec0000000000000000000000empty",
		Type:  model.NodeTypeSection,
		Title: "Empty",
	})
	if err := project.Index(); err != nil {
		t.Fatalf("index: %v", err)
	}
	markup := renderScreen(t, newRenderer(t), render.Request{
		Screen: render.ScreenTOC,
		View:   documentView(t, project, view.WithDeeptrace(true)),
	})
	if got := testsupport.CountElements(t, markup, "span", map[string]string{"class": "toc-title-no-link"}); got != 1 {
		t.Fatalf("expected one unlinked section, got %d", got)
	}
}

func TestTableOfContentsEmpty(t *testing.T) {
	project := singleEmptyDocument(t)
	if err := project.Index(); err != nil {
		t.Fatalf("index: %v", err)
	}
	markup := renderScreen(t, newRenderer(t), render.Request{
		Screen: render.ScreenTOC,
		View:   documentView(t, project),
	})
	testsupport.MustContain(t, markup, `data-testid="toc-empty-text"`)
}

func TestNodeScreenVariants(t *testing.T) {
	renderer := newRenderer(t)
	project := testsupport.SampleProject(t)
	obj := documentView(t, project)

	cases := []struct {
		variant string
		want    []string
	}{
		{web.VariantFull, []string{`node-role="requirement"`, `id="article-` + testsupport.MIDBoot + `"`}},
		{web.VariantCard, []string{`node-style="card"`, `data-testid="node-card-requirement"`}},
		{web.VariantTiny, []string{`node-style="tiny"`, `data-uid="SYS-1"`, "The system shall boot in under 5 seconds."}},
		{web.VariantReadonly, []string{`node-style="readonly"`}},
	}
	for _, tc := range cases {
		t.Run(tc.variant, func(t *testing.T) {
			markup := renderScreen(t, renderer, render.Request{
				Screen:    render.ScreenNode,
				View:      obj,
				Namespace: render.Namespace{"mid": testsupport.MIDBoot},
				Options:   render.RenderOptions{Variant: tc.variant},
			})
			testsupport.MustContain(t, markup, tc.want...)
			if got := strings.Count(markup, "<sdoc-node "); got != 1 {
				t.Fatalf("expected exactly one node shell, got %d", got)
			}
		})
	}
}

func TestNodeScreenResolvesDocumentWhenUnscoped(t *testing.T) {
	project := testsupport.SampleProject(t)
	markup := renderScreen(t, newRenderer(t), render.Request{
		Screen:    render.ScreenNode,
		View:      newView(t, project),
		Namespace: render.Namespace{"mid": testsupport.MIDSoftwareDoc},
		Options:   render.RenderOptions{Variant: web.VariantFull},
	})
	testsupport.MustContain(t, markup, `data-testid="node-root"`, "Software Requirements")
}

func TestNodeScreenErrors(t *testing.T) {
	renderer := newRenderer(t)
	project := testsupport.SampleProject(t)
	obj := documentView(t, project)

	_, err := renderer.Render(context.Background(), render.Request{Screen: render.ScreenNode, View: obj})
	var undefined *render.UndefinedError
	if !errors.As(err, &undefined) || undefined.Variable != "mid" {
		t.Fatalf("expected undefined mid, got %v", err)
	}

	_, err = renderer.Render(context.Background(), render.Request{
		Screen:    render.ScreenNode,
		View:      obj,
		Namespace: render.Namespace{"mid": testsupport.MIDBoot},
		Options:   render.RenderOptions{Variant: "poster"},
	})
	if !errors.Is(err, render.ErrAssertion) {
		t.Fatalf("expected assertion error for unknown variant, got %v", err)
	}

	_, err = renderer.Render(context.Background(), render.Request{
		Screen:    render.ScreenNode,
		View:      obj,
		Namespace: render.Namespace{"mid": "missing"},
	})
	if !errors.Is(err, render.ErrAssertion) {
		t.Fatalf("expected assertion error for unknown node, got %v", err)
	}
}

func TestRequirementStyleOverride(t *testing.T) {
	project := testsupport.SampleProject(t)
	markup := renderScreen(t, newRenderer(t), render.Request{
		Screen:    render.ScreenNode,
		View:      documentView(t, project),
		Namespace: render.Namespace{"mid": testsupport.MIDBoot},
		Options:   render.RenderOptions{RequirementStyle: "Plain"},
	})
	testsupport.MustContain(t, markup, `node-view="plain"`, `data-testid="requirement-style-plain"`)
}

func TestDocumentPageLayout(t *testing.T) {
	project := testsupport.SampleProject(t)
	theme := &render.ThemeConfig{CSSVars: map[string]string{"--brand": "#123456"}}
	markup := renderScreen(t, newRenderer(t), render.Request{
		Screen:  render.ScreenDocument,
		View:    documentView(t, project, view.WithVersion("1.2.3")),
		Options: render.RenderOptions{Theme: theme},
	})
	testsupport.MustContain(t, markup,
		`<link rel="stylesheet" href="/_static/reqdoc.css"/>`,
		`<script src="/_static/reqdoc.js" defer></script>`,
		`:root { --brand: #123456 }`,
		`<title>System Requirements - Sample Project</title>`,
		`id="header_document_title"`,
		`reqdoc 1.2.3`,
		`id="frame_project_tree"`,
		`id="frame-toc"`,
		`id="frame_document_content"`,
	)
}

func TestThemeAssetURL(t *testing.T) {
	project := testsupport.SampleProject(t)
	theme := &render.ThemeConfig{AssetURL: func(key string) string { return "https://cdn.example.com/" + key }}
	markup := renderScreen(t, newRenderer(t), render.Request{
		Screen:  render.ScreenProjectIndex,
		View:    newView(t, project),
		Options: render.RenderOptions{Theme: theme},
	})
	testsupport.MustContain(t, markup, `href="https://cdn.example.com/reqdoc.css"`)
}

func TestProjectTree(t *testing.T) {
	project := testsupport.SampleProject(t)
	markup := renderScreen(t, newRenderer(t), render.Request{
		Screen: render.ScreenProjectTree,
		View:   documentView(t, project),
	})
	if got := testsupport.CountElements(t, markup, "a", map[string]string{"data-testid": "tree-file-link"}); got != 2 {
		t.Fatalf("expected 2 document links, got %d", got)
	}
	if got := testsupport.CountElements(t, markup, "details", map[string]string{"class": "project_tree-folder"}); got != 1 {
		t.Fatalf("expected 1 folder, got %d", got)
	}
	if got := testsupport.CountElements(t, markup, "a", map[string]string{"active": "true"}); got != 1 {
		t.Fatalf("expected the current document to be active, got %d", got)
	}
	testsupport.MustContain(t, markup, `href="/requirements/system.html"`, `href="/requirements/software.html"`)

	empty := renderScreen(t, newRenderer(t), render.Request{
		Screen: render.ScreenProjectTree,
		View:   newView(t, &model.Project{}),
	})
	testsupport.MustContain(t, empty, `data-testid="document-tree-empty-text"`)
}

func TestProjectIndex(t *testing.T) {
	project := testsupport.SampleProject(t)
	markup := renderScreen(t, newRenderer(t), render.Request{
		Screen: render.ScreenProjectIndex,
		View:   newView(t, project),
	})
	if got := testsupport.CountElements(t, markup, "li", map[string]string{"data-testid": "project-feature"}); got != 3 {
		t.Fatalf("expected 3 features listed, got %d", got)
	}
	testsupport.MustContain(t, markup, `data-viewtype="project_index"`, `<code style="word-wrap: break-word;">src</code>`)
}

func TestTraceabilityMatrix(t *testing.T) {
	project := testsupport.SampleProject(t)
	markup := renderScreen(t, newRenderer(t), render.Request{
		Screen: render.ScreenMatrix,
		View:   newView(t, project),
	})

	root := testsupport.ParseFragment(t, markup)
	var headers []string
	for _, th := range testsupport.FindAll(root, "th", nil) {
		headers = append(headers, testsupport.Text(th))
	}
	want := []string{"Node", "Parent", "Parent [Refines]", "Child", "Child [Refines]", "File"}
	if diff := cmp.Diff(want, headers); diff != "" {
		t.Fatalf("matrix headers mismatch (-want +got):\n%s", diff)
	}
	testsupport.MustContain(t, markup,
		`with_relation="parent"`,
		`with_relation="child"`,
		`with_relation="file"`,
		`href="/requirements/software.html#SW-1"`,
	)

	project.Config.Features = nil
	markup = renderScreen(t, newRenderer(t), render.Request{
		Screen: render.ScreenMatrix,
		View:   newView(t, project),
	})
	testsupport.MustNotContain(t, markup, `with_relation="file"`, "<th>File</th>")
}

func TestSourceCoverage(t *testing.T) {
	project := testsupport.SampleProject(t)
	markup := renderScreen(t, newRenderer(t), render.Request{
		Screen: render.ScreenCoverage,
		View:   newView(t, project),
	})
	if got := testsupport.CountElements(t, markup, "tr", map[string]string{"class": "project_coverage-folder"}); got != 2 {
		t.Fatalf("expected 2 folder rows, got %d", got)
	}
	testsupport.MustContain(t, markup,
		`href="/_source_files/src/usb.go.html"`,
		`data-value="50.0"`,
		`project_coverage-file project_coverage-file_uncovered`,
		`project_coverage-total`,
	)

	project.SourceFiles = nil
	markup = renderScreen(t, newRenderer(t), render.Request{
		Screen: render.ScreenCoverage,
		View:   newView(t, project),
	})
	testsupport.MustContain(t, markup, `data-testid="coverage-empty-text"`)
}

func TestPDFScreen(t *testing.T) {
	project := testsupport.SampleProject(t)
	fixed := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	markup := renderScreen(t, newRenderer(t), render.Request{
		Screen: render.ScreenPDF,
		View: documentView(t, project,
			view.WithServer(true),
			view.WithVersion("0.9.0"),
			view.WithClock(func() time.Time { return fixed }),
		),
	})
	testsupport.MustContain(t, markup,
		`data-viewtype="html2pdf"`,
		`<div class="html2pdf-footer-left">2024-05-01</div>`,
		`<div class="html2pdf-footer-right">0.9.0</div>`,
		`<div class="html2pdf-header-left">Sample Project</div>`,
		`data-testid="pdf-toc-list"`,
		`<h2 id="1-overview">`,
	)
	testsupport.MustNotContain(t, markup, "sdoc-node-controls", "copy_stable_link-button")
	if got := testsupport.CountElements(t, markup, "sdoc-node", map[string]string{"node-style": "readonly"}); got != 6 {
		t.Fatalf("expected 6 readonly nodes, got %d", got)
	}
}

func TestTemplateOverrideFromFS(t *testing.T) {
	overrides := fstest.MapFS{
		"templates/components/badge.tmpl": {Data: []byte(`<em class="custom-badge">{{ text }}</em>`)},
	}
	renderer := newRenderer(t, web.WithTemplatesFS(overrides))
	out, err := renderer.Component(context.Background(), components.NameBadge, render.Namespace{"text": "UID"}, render.RenderOptions{})
	if err != nil {
		t.Fatalf("component: %v", err)
	}
	if out != `<em class="custom-badge">UID</em>` {
		t.Fatalf("override not applied: %q", out)
	}
}

func TestWithComponentOverridesOneRenderer(t *testing.T) {
	badge := components.Descriptor{Renderer: func(buf *bytes.Buffer, ns render.Namespace, _ components.ComponentData) error {
		buf.WriteString("[" + ns.String("text") + "]")
		return nil
	}}
	custom := newRenderer(t, web.WithComponent(components.NameBadge, badge))
	out, err := custom.Component(context.Background(), components.NameBadge, render.Namespace{"text": "UID"}, render.RenderOptions{})
	if err != nil {
		t.Fatalf("component: %v", err)
	}
	if out != "[UID]" {
		t.Fatalf("override not applied: %q", out)
	}

	plain, err := newRenderer(t).Component(context.Background(), components.NameBadge, render.Namespace{"text": "UID"}, render.RenderOptions{})
	if err != nil {
		t.Fatalf("component: %v", err)
	}
	if plain == "[UID]" {
		t.Fatal("override leaked into the default registry")
	}

	if _, err := web.New(web.WithComponent(" ", badge)); err == nil {
		t.Fatal("expected an error for a nameless component")
	}
}

func TestThemePartialOverride(t *testing.T) {
	overrides := fstest.MapFS{
		"themes/dark/title.tmpl": {Data: []byte(`<h1 class="dark">{{ title }}</h1>`)},
	}
	renderer := newRenderer(t, web.WithTemplatesFS(overrides))
	theme := &render.ThemeConfig{Partials: map[string]string{"fields.document_title": "themes/dark/title.tmpl"}}
	out, err := renderer.Component(context.Background(), components.NameDocumentTitle, render.Namespace{"title": "A & B"}, render.RenderOptions{Theme: theme})
	if err != nil {
		t.Fatalf("component: %v", err)
	}
	if out != `<h1 class="dark">A &amp; B</h1>` {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRenderHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	project := testsupport.SampleProject(t)
	_, err := newRenderer(t).Render(ctx, render.Request{
		Screen: render.ScreenDocumentContent,
		View:   documentView(t, project),
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
