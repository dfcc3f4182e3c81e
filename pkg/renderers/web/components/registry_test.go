package components

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-reqdoc/pkg/render"
)

func noopRenderer(buf *bytes.Buffer, ns render.Namespace, data ComponentData) error { return nil }

func TestRegistryDescriptorClone(t *testing.T) {
	reg := New()
	if err := reg.Register("test", Descriptor{Renderer: noopRenderer, Required: []string{"mid"}}); err != nil {
		t.Fatalf("register: %v", err)
	}

	desc, ok := reg.Descriptor("TEST")
	if !ok {
		t.Fatalf("descriptor not found")
	}
	desc.Required[0] = "mutated"

	original, _ := reg.Descriptor("test")
	if diff := cmp.Diff([]string{"mid"}, original.Required); diff != "" {
		t.Fatalf("registry descriptor mutated (-want +got):\n%s", diff)
	}

	clone := reg.Clone()
	clone.MustRegister("extra", Descriptor{Renderer: noopRenderer})
	if _, ok := reg.Descriptor("extra"); ok {
		t.Fatalf("clone registration leaked into the original registry")
	}
}

func TestRegistryRegisterRequiresRendererOrTemplate(t *testing.T) {
	if err := New().Register("empty", Descriptor{}); err == nil {
		t.Fatalf("expected error for descriptor without renderer or template")
	}
}

func TestRegistryAssetsDeduplicates(t *testing.T) {
	reg := New()
	reg.MustRegister("node", Descriptor{
		Renderer:    noopRenderer,
		Stylesheets: []string{"/shared.css", "/node.css"},
		Scripts:     []Script{{Src: "/shared.js"}},
	})
	reg.MustRegister("matrix", Descriptor{
		Renderer:    noopRenderer,
		Stylesheets: []string{"/shared.css", "/matrix.css"},
		Scripts:     []Script{{Src: "/shared.js"}, {Src: "/matrix.js", Defer: true}},
	})

	styles, scripts := reg.Assets([]string{"node", "MATRIX", "unknown"})
	if diff := cmp.Diff([]string{"/shared.css", "/node.css", "/matrix.css"}, styles); diff != "" {
		t.Fatalf("stylesheets mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Script{{Src: "/shared.js"}, {Src: "/matrix.js", Defer: true}}, scripts); diff != "" {
		t.Fatalf("scripts mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultLayoutAssets(t *testing.T) {
	styles, scripts := NewDefaultRegistry().Assets([]string{NameLayout})
	if diff := cmp.Diff([]string{StylesheetName}, styles); diff != "" {
		t.Fatalf("stylesheets mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Script{{Src: ScriptName, Defer: true}}, scripts); diff != "" {
		t.Fatalf("scripts mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistryRenderChecksRequiredVariables(t *testing.T) {
	reg := NewDefaultRegistry()
	var buf bytes.Buffer

	err := reg.Render(&buf, NameAnchor, render.Namespace{"anchor": "SYS-1"}, ComponentData{})
	if !errors.Is(err, render.ErrUndefined) {
		t.Fatalf("expected undefined variable error, got %v", err)
	}
	var undefined *render.UndefinedError
	if !errors.As(err, &undefined) {
		t.Fatalf("expected *render.UndefinedError, got %T", err)
	}
	if undefined.Component != NameAnchor || undefined.Variable != "role" {
		t.Fatalf("unexpected error detail: %+v", undefined)
	}
	if buf.Len() != 0 {
		t.Fatalf("failed render wrote output: %q", buf.String())
	}
}

func TestRegistryRenderUnknownComponent(t *testing.T) {
	var buf bytes.Buffer
	err := New().Render(&buf, "missing", nil, ComponentData{})
	if err == nil || !strings.Contains(err.Error(), `unknown component "missing"`) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRegistryRenderUsesThemePartial(t *testing.T) {
	template := &recordingTemplateRenderer{}
	reg := NewDefaultRegistry()
	theme := &render.ThemeConfig{Partials: map[string]string{
		"badge": "themes/custom/badge.tmpl",
	}}

	var buf bytes.Buffer
	if err := reg.Render(&buf, NameBadge, render.Namespace{"text": "UID"}, ComponentData{Template: template, Theme: theme}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if err := reg.Render(&buf, NameDocumentTitle, render.Namespace{"title": "Doc"}, ComponentData{Template: template, Theme: theme}); err != nil {
		t.Fatalf("render: %v", err)
	}

	want := []string{"themes/custom/badge.tmpl", "templates/components/document_title.tmpl"}
	if diff := cmp.Diff(want, template.calls); diff != "" {
		t.Fatalf("template calls mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistryRenderWithoutTemplateRenderer(t *testing.T) {
	var buf bytes.Buffer
	err := NewDefaultRegistry().Render(&buf, NameBadge, render.Namespace{}, ComponentData{})
	if err == nil || !strings.Contains(err.Error(), "template renderer not configured") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRegistryNamesSorted(t *testing.T) {
	reg := New()
	reg.MustRegister("Zeta", Descriptor{Renderer: noopRenderer})
	reg.MustRegister("alpha", Descriptor{Renderer: noopRenderer})

	if diff := cmp.Diff([]string{"alpha", "zeta"}, reg.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestIconComponent(t *testing.T) {
	reg := NewDefaultRegistry()

	var buf bytes.Buffer
	if err := reg.Render(&buf, NameIcon, render.Namespace{"name": "copy"}, ComponentData{}); err != nil {
		t.Fatalf("render icon: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "<svg") {
		t.Fatalf("expected svg markup, got %q", buf.String())
	}

	buf.Reset()
	if err := reg.Render(&buf, NameIcon, render.Namespace{"name": "nope"}, ComponentData{}); err == nil {
		t.Fatalf("expected error for unknown icon")
	}
}

func TestIconsAreSanitized(t *testing.T) {
	for _, name := range IconNames() {
		icon := Icon(name)
		if icon == "" {
			t.Fatalf("icon %q sanitized to nothing", name)
		}
		if strings.Contains(icon, "<script") || strings.Contains(icon, "onload") {
			t.Fatalf("icon %q kept unsafe markup: %s", name, icon)
		}
	}

	got := SanitizeIcon(`<svg onload="alert(1)"><script>alert(1)</script><path d="M0 0"/></svg>`)
	if strings.Contains(got, "onload") || strings.Contains(got, "script") {
		t.Fatalf("unsafe markup survived: %s", got)
	}
	if !strings.Contains(got, `d="M0 0"`) {
		t.Fatalf("path data dropped: %s", got)
	}
}

type recordingTemplateRenderer struct {
	calls []string
}

func (r *recordingTemplateRenderer) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	r.calls = append(r.calls, name)
	return "", nil
}

func (r *recordingTemplateRenderer) Exists(name string) bool {
	return true
}
