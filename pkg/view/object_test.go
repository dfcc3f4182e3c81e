package view_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-reqdoc/pkg/model"
	"github.com/goliatone/go-reqdoc/pkg/testsupport"
	"github.com/goliatone/go-reqdoc/pkg/trace"
	"github.com/goliatone/go-reqdoc/pkg/view"
)

func newObject(t *testing.T, opts ...view.Option) (*view.Object, *model.Project) {
	t.Helper()
	project := testsupport.SampleProject(t)
	idx, err := trace.Build(project)
	if err != nil {
		t.Fatalf("trace: %v", err)
	}
	obj, err := view.New(project, idx, opts...)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	return obj, project
}

func TestNewRequiresProjectAndIndex(t *testing.T) {
	if _, err := view.New(nil, nil); err == nil {
		t.Fatalf("expected error for nil project")
	}
	if _, err := view.New(&model.Project{}, nil); err == nil {
		t.Fatalf("expected error for nil index")
	}
}

func TestLinksAndAnchors(t *testing.T) {
	obj, project := newObject(t)
	system := obj.ForDocument(project.Documents[0])

	boot, _ := project.FindNode(testsupport.MIDBoot)
	overview, _ := project.FindNode(testsupport.MIDOverview)
	intro, _ := project.FindNode(testsupport.MIDIntroText)
	driver, _ := project.FindNode(testsupport.MIDDriver)

	if got := system.RenderLocalAnchor(boot); got != "SYS-1" {
		t.Fatalf("uid anchor: %q", got)
	}
	if got := system.RenderLocalAnchor(overview); got != "1-overview" {
		t.Fatalf("title anchor: %q", got)
	}
	if got := system.RenderLocalAnchor(intro); got != "node-"+testsupport.MIDIntroText {
		t.Fatalf("mid anchor: %q", got)
	}
	if got := system.RenderNodeLink(boot); got != "#SYS-1" {
		t.Fatalf("local link: %q", got)
	}
	if got := system.RenderNodeLink(driver); got != "/requirements/software.html#SW-1" {
		t.Fatalf("cross-document link: %q", got)
	}
	standalone := obj.ForDocument(project.Documents[0])
	standaloneObj, _ := newObject(t, view.WithStandalone(true))
	if got := standaloneObj.RenderNodeLink(driver); got != "#SW-1" {
		t.Fatalf("standalone link: %q", got)
	}
	if got := standalone.RenderStaticURL("/app.css"); got != "/_static/app.css" {
		t.Fatalf("static url: %q", got)
	}
	if got := standalone.RenderSourceFileLink("src/usb.go"); got != "/_source_files/src/usb.go.html" {
		t.Fatalf("source link: %q", got)
	}
}

func TestStableLinkGuard(t *testing.T) {
	obj, project := newObject(t)
	boot, _ := project.FindNode(testsupport.MIDBoot)
	if obj.ShouldDisplayStableLink(boot) {
		t.Fatalf("stable link should be hidden outside server mode")
	}
	server, _ := newObject(t, view.WithServer(true))
	if !server.ShouldDisplayStableLink(boot) {
		t.Fatalf("stable link should be shown in server mode")
	}
	intro, _ := project.FindNode(testsupport.MIDIntroText)
	if server.ShouldDisplayStableLink(intro) {
		t.Fatalf("nodes without uid have no stable link")
	}
	if got := server.RenderStableLink(boot); got != "/?a=SYS-1" {
		t.Fatalf("stable link: %q", got)
	}
}

func TestDocumentContentAndTOC(t *testing.T) {
	obj, project := newObject(t, view.WithDeeptrace(true))
	doc := obj.ForDocument(project.Documents[0])

	var got []string
	for _, item := range doc.DocumentContent() {
		got = append(got, item.Node.MID)
	}
	want := []string{
		testsupport.MIDOverview, testsupport.MIDIntroText, testsupport.MIDBoot,
		testsupport.MIDShutdown, testsupport.MIDInterfaces, testsupport.MIDUSB,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("content order mismatch (-want +got):\n%s", diff)
	}

	toc := doc.TableOfContents()
	if len(toc) != 5 {
		t.Fatalf("expected 5 toc entries, got %d", len(toc))
	}
	if toc[0].Number != "1" || toc[0].Depth != 1 || !toc[0].Linked {
		t.Fatalf("unexpected first toc entry: %+v", toc[0])
	}
	if toc[1].Number != "1.1" || toc[1].Anchor != "SYS-1" || toc[1].Depth != 2 {
		t.Fatalf("unexpected second toc entry: %+v", toc[1])
	}
	if len(doc.Requirements()) != 3 {
		t.Fatalf("expected 3 requirements")
	}
	if obj.DocumentContent() != nil {
		t.Fatalf("project-level view has no document content")
	}
}

func TestRenderTextResolvesLinks(t *testing.T) {
	obj, project := newObject(t)
	doc := obj.ForDocument(project.Documents[0])
	shutdown, _ := project.FindNode(testsupport.MIDShutdown)

	html := doc.RenderText(shutdown.Statement)
	testsupport.MustContain(t, html, `href="#SYS-1"`, "1.1. Boot")

	other := obj.ForDocument(project.Documents[1])
	testsupport.MustContain(t, other.RenderText(shutdown.Statement), `href="/requirements/system.html#SYS-1"`)

	if got := doc.RenderTruncatedText("The system shall boot within five seconds of power on", 24); got != "The system shall boot..." {
		t.Fatalf("unexpected truncated text %q", got)
	}
}

func TestMiscHelpers(t *testing.T) {
	fixed := time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC)
	obj, project := newObject(t,
		view.WithClock(func() time.Time { return fixed }),
		view.WithFieldFilter(view.FieldFilter{"REQUIREMENT": {"TITLE", "STATEMENT"}}),
	)
	if obj.DateToday() != "2024-05-06" {
		t.Fatalf("unexpected date %q", obj.DateToday())
	}
	if !obj.IncludesField("REQUIREMENT", "statement") || obj.IncludesField("REQUIREMENT", "RATIONALE") {
		t.Fatalf("field filter not applied")
	}
	if !obj.IncludesField("TEXT", "RATIONALE") {
		t.Fatalf("unfiltered tags show every field")
	}
	if obj.IsEmptyTree() {
		t.Fatalf("sample project tree is not empty")
	}
	doc := obj.ForDocument(project.Documents[0])
	if diff := cmp.Diff([]string{"REQUIREMENT", "TEXT"}, doc.GrammarElements()); diff != "" {
		t.Fatalf("grammar elements mismatch: %s", diff)
	}
	if !obj.SourceTraceability() || obj.ProjectTitle() != "Sample Project" {
		t.Fatalf("unexpected project settings")
	}

	tree := obj.FileTree()
	if !obj.ShouldDisplayFolder(tree.Folders[0]) {
		t.Fatalf("requirements folder should be listed")
	}
	project.Documents[1].Fragment = true
	if !obj.ShouldDisplayFolder(tree.Folders[0]) {
		t.Fatalf("folder still holds a regular document")
	}
	if obj.ShouldDisplayFile(&model.File{Document: project.Documents[1]}) {
		t.Fatalf("fragments are hidden by default")
	}
}
