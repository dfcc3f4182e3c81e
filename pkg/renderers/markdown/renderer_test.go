package markdown_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-reqdoc/pkg/diff"
	"github.com/goliatone/go-reqdoc/pkg/model"
	"github.com/goliatone/go-reqdoc/pkg/render"
	"github.com/goliatone/go-reqdoc/pkg/renderers/markdown"
	"github.com/goliatone/go-reqdoc/pkg/testsupport"
	"github.com/goliatone/go-reqdoc/pkg/trace"
	"github.com/goliatone/go-reqdoc/pkg/view"
)

func newView(t *testing.T, project *model.Project) *view.Object {
	t.Helper()
	idx, err := trace.Build(project)
	if err != nil {
		t.Fatalf("trace: %v", err)
	}
	obj, err := view.New(project, idx)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	return obj
}

func renderMarkdown(t *testing.T, r *markdown.Renderer, req render.Request) string {
	t.Helper()
	out, err := r.Render(context.Background(), req)
	if err != nil {
		t.Fatalf("render %s: %v", req.Screen, err)
	}
	return string(out)
}

func TestRendererMetadata(t *testing.T) {
	r := markdown.New()
	if r.Name() != "markdown" {
		t.Fatalf("unexpected name %q", r.Name())
	}
	if r.ContentType() != markdown.ContentType {
		t.Fatalf("unexpected content type %q", r.ContentType())
	}

	registry := render.NewRegistry()
	if err := registry.Register(r); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := registry.Get("markdown"); err != nil {
		t.Fatalf("lookup: %v", err)
	}
}

func TestDocumentScreen(t *testing.T) {
	project := testsupport.SampleProject(t)
	obj := newView(t, project).ForDocument(project.Documents[0])
	out := renderMarkdown(t, markdown.New(), render.Request{Screen: render.ScreenDocument, View: obj})

	for _, want := range []string{
		"# System Requirements\n",
		"- **UID:** DOC-SYS\n",
		"- **OWNER:** Platform Team\n",
		"## 1 Overview\n",
		"This section describes the *system* behaviour.\n",
		"### 1.1 Boot\n",
		"- **STATUS:** Approved\n",
		"- **VERIFICATION:** Test\n",
		"**Statement:**\n\nThe system shall boot in under 5 seconds.\n",
		"**Notes:**\n\nfirst line\nsecond line\n",
		"The system shall shut down cleanly after [SYS-1 Boot](#SYS-1).",
		"**Parents:**\n\n- [SYS-1 Boot](#SYS-1) (Refines)\n",
		"**Children:**\n\n- [SYS-2 Shutdown](#SYS-2) (Refines)\n",
		"**Files:**\n\n- `src/usb.go`\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "[LINK:") {
		t.Fatalf("inline link left unresolved:\n%s", out)
	}
	if strings.Contains(out, "- [1 Overview]") {
		t.Fatalf("table of contents rendered without the option:\n%s", out)
	}
}

func TestDocumentScreenCrossDocumentLinks(t *testing.T) {
	project := testsupport.SampleProject(t)
	obj := newView(t, project).ForDocument(project.Documents[1])
	out := renderMarkdown(t, markdown.New(), render.Request{Screen: render.ScreenDocumentContent, View: obj})

	for _, want := range []string{
		"- [SYS-3 USB](/requirements/system.html#SYS-3)\n",
		"- `src/usb.go`, lines 3-10\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
	if !strings.HasPrefix(out, "# ") {
		t.Fatalf("expected document title heading:\n%s", out)
	}
}

func TestDocumentScreenWithTableOfContents(t *testing.T) {
	project := testsupport.SampleProject(t)
	obj := newView(t, project).ForDocument(project.Documents[0])
	out := renderMarkdown(t, markdown.New(markdown.WithTableOfContents(true)), render.Request{Screen: render.ScreenDocument, View: obj})

	toc := "- [1 Overview](#1-overview)\n" +
		"  - [1.1 Boot](#SYS-1)\n" +
		"  - [1.2 Shutdown](#SYS-2)\n" +
		"- [2 Interfaces](#2-interfaces)\n" +
		"  - [2.1 USB](#SYS-3)\n"
	if !strings.Contains(out, toc) {
		t.Fatalf("expected table of contents:\n%s\nin:\n%s", toc, out)
	}
	if strings.Index(out, toc) > strings.Index(out, "## 1 Overview") {
		t.Fatalf("table of contents should precede the content")
	}
}

func TestDocumentScreenHonoursFieldFilter(t *testing.T) {
	project := testsupport.SampleProject(t)
	idx, err := trace.Build(project)
	if err != nil {
		t.Fatalf("trace: %v", err)
	}
	obj, err := view.New(project, idx, view.WithFieldFilter(view.FieldFilter{
		"REQUIREMENT": {"TITLE", "UID", "STATEMENT"},
	}))
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	out := renderMarkdown(t, markdown.New(), render.Request{Screen: render.ScreenDocumentContent, View: obj.ForDocument(project.Documents[0])})
	for _, unwanted := range []string{"**STATUS:**", "**Rationale:**", "**VERIFICATION:**"} {
		if strings.Contains(out, unwanted) {
			t.Fatalf("filtered field %q rendered:\n%s", unwanted, out)
		}
	}
	if !strings.Contains(out, "- **UID:** SYS-1") {
		t.Fatalf("expected UID to remain:\n%s", out)
	}
}

func TestDocumentScreensRequireDocument(t *testing.T) {
	obj := newView(t, testsupport.SampleProject(t))
	for _, screen := range []render.Screen{render.ScreenDocument, render.ScreenTOC} {
		_, err := markdown.New().Render(context.Background(), render.Request{Screen: screen, View: obj})
		if !errors.Is(err, render.ErrAssertion) {
			t.Fatalf("%s: expected assertion error, got %v", screen, err)
		}
	}
}

func TestNodeScreen(t *testing.T) {
	obj := newView(t, testsupport.SampleProject(t))
	out := renderMarkdown(t, markdown.New(), render.Request{
		Screen:    render.ScreenNode,
		View:      obj,
		Namespace: render.Namespace{"mid": testsupport.MIDShutdown},
	})
	if !strings.HasPrefix(out, "### 1.2 Shutdown\n") {
		t.Fatalf("unexpected node markdown:\n%s", out)
	}
	if strings.Contains(out, "Boot\n") {
		t.Fatalf("sibling node rendered:\n%s", out)
	}

	_, err := markdown.New().Render(context.Background(), render.Request{Screen: render.ScreenNode, View: obj})
	if !errors.Is(err, render.ErrUndefined) {
		t.Fatalf("expected undefined error, got %v", err)
	}
	_, err = markdown.New().Render(context.Background(), render.Request{
		Screen:    render.ScreenNode,
		View:      obj,
		Namespace: render.Namespace{"mid": "missing"},
	})
	if !errors.Is(err, render.ErrAssertion) {
		t.Fatalf("expected assertion error, got %v", err)
	}
}

func TestMatrixScreen(t *testing.T) {
	out := renderMarkdown(t, markdown.New(), render.Request{Screen: render.ScreenMatrix, View: newView(t, testsupport.SampleProject(t))})

	lines := strings.Split(out, "\n")
	var rows []string
	for _, line := range lines {
		if strings.HasPrefix(line, "| ") && !strings.HasPrefix(line, "| ---") {
			rows = append(rows, line)
		}
	}
	header := "| Requirement | Parent | Parent [Refines] | Child | Child [Refines] | File |"
	want := []string{
		header,
		"| SYS-1 |  |  |  | SYS-2 |  |",
		"| SYS-2 |  | SYS-1 |  |  |  |",
		"| SYS-3 |  |  | SW-1 |  | src/usb.go |",
		header,
		"| SW-1 | SYS-3 |  |  |  | src/usb.go |",
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("matrix rows mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(out, "## Software Requirements\n") {
		t.Fatalf("expected per-document heading:\n%s", out)
	}
}

func TestMatrixEscapesPipes(t *testing.T) {
	project := testsupport.SampleProject(t)
	project.SourceFiles = nil
	project.Documents[0].Nodes[1].Children[0].Relations = []model.Relation{{Type: model.RelationFile, Value: "src/a|b.go"}}
	out := renderMarkdown(t, markdown.New(), render.Request{Screen: render.ScreenMatrix, View: newView(t, project)})
	if !strings.Contains(out, `src/a\|b.go`) {
		t.Fatalf("expected escaped pipe:\n%s", out)
	}
}

func TestCoverageScreen(t *testing.T) {
	out := renderMarkdown(t, markdown.New(), render.Request{Screen: render.ScreenCoverage, View: newView(t, testsupport.SampleProject(t))})
	for _, want := range []string{
		"| src/ | 33.3 | 8 | 24 | 30 | 33.3 | 1 | 3 |",
		"| src/util/ | 0.0 | 0 | 8 | 10 | 0.0 | 0 | 1 |",
		"| src/usb.go | 50.0 | 8 | 16 | 20 | 50.0 | 1 | 2 |",
		"| **Total** | 33.3 | 8 | 24 | 30 | 33.3 | 1 | 3 |",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}

	empty := testsupport.SampleProject(t)
	empty.SourceFiles = nil
	empty.Documents[0].Nodes[1].Children[0].Relations = nil
	out = renderMarkdown(t, markdown.New(), render.Request{Screen: render.ScreenCoverage, View: newView(t, empty)})
	if !strings.Contains(out, "The project has no source files yet.") {
		t.Fatalf("expected empty text:\n%s", out)
	}
}

func TestChangelogScreen(t *testing.T) {
	lhs := testsupport.SampleProject(t)
	rhs := testsupport.SampleProject(t)
	boot, _ := rhs.FindNode(testsupport.MIDBoot)
	boot.Statement = "The system shall boot in under 3 seconds."
	changes, err := diff.Compare(lhs, rhs)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}

	out := renderMarkdown(t, markdown.New(), render.Request{Screen: render.ScreenChangelog, View: newView(t, rhs), Changes: changes})
	for _, want := range []string{
		"- Documents modified: 1\n",
		"- REQUIREMENT added: 0, removed: 0, modified: 1\n",
		"1. **Document modified**: requirements/system.sdoc.yaml\n",
		"2. **Requirement modified**: SYS-1 1.1. Boot in requirements/system.sdoc.yaml\n",
		"   - STATEMENT: `The system shall boot in under 5 seconds.` -> `The system shall boot in under 3 seconds.`\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}

	same, err := diff.Compare(testsupport.SampleProject(t), testsupport.SampleProject(t))
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	out = renderMarkdown(t, markdown.New(), render.Request{Screen: render.ScreenChangelog, View: newView(t, rhs), Changes: same})
	if !strings.Contains(out, "The compared snapshots are identical.") {
		t.Fatalf("expected identical text:\n%s", out)
	}

	_, err = markdown.New().Render(context.Background(), render.Request{Screen: render.ScreenChangelog, View: newView(t, rhs)})
	if !errors.Is(err, render.ErrAssertion) {
		t.Fatalf("expected assertion error, got %v", err)
	}
}

func TestUnsupportedScreens(t *testing.T) {
	obj := newView(t, testsupport.SampleProject(t))
	for _, screen := range []render.Screen{render.ScreenPDF, render.ScreenProjectTree, render.ScreenDiff} {
		if _, err := markdown.New().Render(context.Background(), render.Request{Screen: screen, View: obj}); !errors.Is(err, render.ErrUnsupportedScreen) {
			t.Fatalf("%s: expected unsupported screen, got %v", screen, err)
		}
	}
	if _, err := markdown.New().Render(context.Background(), render.Request{Screen: render.ScreenMatrix}); err == nil {
		t.Fatalf("expected error without a view")
	}
}

func TestRenderHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := markdown.New().Render(ctx, render.Request{Screen: render.ScreenMatrix, View: newView(t, testsupport.SampleProject(t))})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPlainOutputKeepsText(t *testing.T) {
	out, err := markdown.Plain("# Title\n\nSome **bold** text.", 40)
	if err != nil {
		t.Fatalf("plain: %v", err)
	}
	if !strings.Contains(out, "Title") || !strings.Contains(out, "bold") {
		t.Fatalf("unexpected output %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("plain output contains escape sequences: %q", out)
	}
}
