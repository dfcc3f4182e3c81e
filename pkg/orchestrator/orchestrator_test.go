package orchestrator_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"

	"github.com/goliatone/go-reqdoc/pkg/model"
	"github.com/goliatone/go-reqdoc/pkg/orchestrator"
	"github.com/goliatone/go-reqdoc/pkg/render"
	"github.com/goliatone/go-reqdoc/pkg/testsupport"
)

type stubLoader struct {
	project *model.Project
	err     error
	calls   int
}

func (l *stubLoader) Load(context.Context) (*model.Project, error) {
	l.calls++
	return l.project, l.err
}

func TestGenerateDocument(t *testing.T) {
	ctx := testsupport.Context()
	orch := orchestrator.New()

	html, err := orch.Generate(ctx, orchestrator.Request{
		Project:  testsupport.NewSampleProject(),
		Screen:   render.ScreenDocument,
		Document: testsupport.SystemDocPath,
	})
	if err != nil {
		t.Fatalf("generate html: %v", err)
	}
	testsupport.MustContain(t, string(html), `data-viewtype="document"`, "The system shall boot in under 5 seconds.")

	md, err := orch.Generate(ctx, orchestrator.Request{
		Project:  testsupport.NewSampleProject(),
		Screen:   render.ScreenDocument,
		Document: "requirements/software.html",
		Renderer: "markdown",
	})
	if err != nil {
		t.Fatalf("generate markdown: %v", err)
	}
	if !strings.Contains(string(md), "# Software Requirements\n") {
		t.Fatalf("unexpected markdown:\n%s", md)
	}
}

func TestGenerateUsesLoaderAndTransformers(t *testing.T) {
	loader := &stubLoader{project: testsupport.NewSampleProject()}
	retitle := orchestrator.TransformerFunc(func(_ context.Context, p *model.Project) error {
		p.Config.Title = "Transformed"
		return nil
	})
	orch := orchestrator.New(
		orchestrator.WithLoader(loader),
		orchestrator.WithTransformers(nil, retitle),
	)

	out, err := orch.Generate(testsupport.Context(), orchestrator.Request{Screen: render.ScreenProjectIndex})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected one load, got %d", loader.calls)
	}
	testsupport.MustContain(t, string(out), "Transformed")
}

func TestGenerateErrors(t *testing.T) {
	ctx := testsupport.Context()
	failing := errors.New("disk on fire")
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	cases := map[string]struct {
		orch *orchestrator.Orchestrator
		ctx  context.Context
		req  orchestrator.Request
		want error
	}{
		"missing screen": {
			orch: orchestrator.New(),
			ctx:  ctx,
			req:  orchestrator.Request{Project: testsupport.NewSampleProject()},
		},
		"no project or loader": {
			orch: orchestrator.New(),
			ctx:  ctx,
			req:  orchestrator.Request{Screen: render.ScreenProjectIndex},
		},
		"loader failure": {
			orch: orchestrator.New(orchestrator.WithLoader(&stubLoader{err: failing})),
			ctx:  ctx,
			req:  orchestrator.Request{Screen: render.ScreenProjectIndex},
			want: failing,
		},
		"unknown document": {
			orch: orchestrator.New(),
			ctx:  ctx,
			req:  orchestrator.Request{Project: testsupport.NewSampleProject(), Screen: render.ScreenDocument, Document: "nope.sdoc.yaml"},
			want: orchestrator.ErrDocumentNotFound,
		},
		"unknown renderer": {
			orch: orchestrator.New(),
			ctx:  ctx,
			req:  orchestrator.Request{Project: testsupport.NewSampleProject(), Screen: render.ScreenProjectIndex, Renderer: "pdf"},
		},
		"unsupported screen": {
			orch: orchestrator.New(),
			ctx:  ctx,
			req:  orchestrator.Request{Project: testsupport.NewSampleProject(), Screen: render.ScreenProjectTree, Renderer: "markdown"},
			want: render.ErrUnsupportedScreen,
		},
		"transformer failure": {
			orch: orchestrator.New(orchestrator.WithTransformers(orchestrator.TransformerFunc(func(context.Context, *model.Project) error {
				return failing
			}))),
			ctx:  ctx,
			req:  orchestrator.Request{Project: testsupport.NewSampleProject(), Screen: render.ScreenProjectIndex},
			want: failing,
		},
		"cancelled context": {
			orch: orchestrator.New(),
			ctx:  cancelled,
			req:  orchestrator.Request{Project: testsupport.NewSampleProject(), Screen: render.ScreenProjectIndex},
			want: context.Canceled,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := tc.orch.Generate(tc.ctx, tc.req)
			if err == nil {
				t.Fatal("expected an error")
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestGenerateChangelogAgainstBaseline(t *testing.T) {
	current := testsupport.NewSampleProject()
	boot := current.Documents[0].Nodes[0].Children[1]
	boot.Statement = "The system shall boot in under 3 seconds."

	orch := orchestrator.New(orchestrator.WithBaseline(testsupport.NewSampleProject()))
	out, err := orch.Generate(testsupport.Context(), orchestrator.Request{
		Project:  current,
		Screen:   render.ScreenChangelog,
		Renderer: "markdown",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	testsupport.MustContain(t, string(out), "2. **Requirement modified**: SYS-1 1.1. Boot in requirements/system.sdoc.yaml\n")

	same, err := orchestrator.New().Generate(testsupport.Context(), orchestrator.Request{
		Project:  testsupport.NewSampleProject(),
		Screen:   render.ScreenChangelog,
		Renderer: "markdown",
	})
	if err != nil {
		t.Fatalf("generate without baseline: %v", err)
	}
	testsupport.MustContain(t, string(same), "The compared snapshots are identical.")
}

func TestFindDocument(t *testing.T) {
	project := testsupport.SampleProject(t)
	for _, ref := range []string{testsupport.SystemDocPath, "requirements/system.html", testsupport.MIDSystemDoc} {
		doc, err := orchestrator.FindDocument(project, ref)
		if err != nil {
			t.Fatalf("find %q: %v", ref, err)
		}
		if doc.MID != testsupport.MIDSystemDoc {
			t.Fatalf("find %q returned %s", ref, doc.MID)
		}
	}
}

func TestExportHTML(t *testing.T) {
	out := afero.NewMemMapFs()
	written, err := orchestrator.New().Export(testsupport.Context(), orchestrator.ExportRequest{
		Project: testsupport.NewSampleProject(),
		Fs:      out,
		Dir:     "/site",
	})
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	want := []string{
		"index.html",
		"project_tree.html",
		"requirements/system.html",
		"requirements/software.html",
		"traceability_matrix.html",
		"source_coverage.html",
		"diff.html",
		"changelog.html",
		"_static/reqdoc.css",
		"_static/reqdoc.js",
	}
	if diff := cmp.Diff(want, written); diff != "" {
		t.Fatalf("written files mismatch (-want +got):\n%s", diff)
	}

	page, err := afero.ReadFile(out, "/site/requirements/system.html")
	if err != nil {
		t.Fatalf("read page: %v", err)
	}
	testsupport.MustContain(t, string(page), "The system shall boot in under 5 seconds.")
	if ok, _ := afero.Exists(out, "/site/_static/reqdoc.css"); !ok {
		t.Fatal("stylesheet was not copied")
	}
}

func TestExportMarkdownSkipsHTMLOnlyScreens(t *testing.T) {
	project := testsupport.NewSampleProject()
	project.Config.Features = []string{model.FeatureMatrix}

	out := afero.NewMemMapFs()
	written, err := orchestrator.New().Export(testsupport.Context(), orchestrator.ExportRequest{
		Project:  project,
		Renderer: "markdown",
		Fs:       out,
		Dir:      "/md",
	})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	want := []string{
		"requirements/system.md",
		"requirements/software.md",
		"traceability_matrix.md",
	}
	if diff := cmp.Diff(want, written); diff != "" {
		t.Fatalf("written files mismatch (-want +got):\n%s", diff)
	}
	data, err := afero.ReadFile(out, "/md/requirements/system.md")
	if err != nil {
		t.Fatalf("read page: %v", err)
	}
	if !strings.Contains(string(data), "# System Requirements\n") {
		t.Fatalf("unexpected markdown:\n%s", data)
	}
}

func TestExportRequiresDir(t *testing.T) {
	_, err := orchestrator.New().Export(testsupport.Context(), orchestrator.ExportRequest{Project: testsupport.NewSampleProject()})
	if err == nil {
		t.Fatal("expected an error without an output folder")
	}
}
