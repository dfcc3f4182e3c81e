package reqdoc_test

import (
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/goliatone/go-reqdoc"
	"github.com/goliatone/go-reqdoc/pkg/render"
	"github.com/goliatone/go-reqdoc/pkg/testsupport"
)

func TestGenerateHTML(t *testing.T) {
	out, err := reqdoc.GenerateHTML(testsupport.Context(), testsupport.NewSampleProject(), reqdoc.ScreenDocument, testsupport.SystemDocPath)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	testsupport.MustContain(t, string(out), "<html", "System Requirements")
}

func TestGenerateMarkdown(t *testing.T) {
	out, err := reqdoc.GenerateMarkdown(testsupport.Context(), testsupport.NewSampleProject(), reqdoc.ScreenMatrix, "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(string(out), "SYS-1") {
		t.Fatalf("matrix misses SYS-1:\n%s", out)
	}

	_, err = reqdoc.GenerateMarkdown(testsupport.Context(), testsupport.NewSampleProject(), reqdoc.ScreenProjectTree, "")
	if !errors.Is(err, render.ErrUnsupportedScreen) {
		t.Fatalf("expected unsupported screen, got %v", err)
	}
}

func TestWithPreset(t *testing.T) {
	opt, err := reqdoc.WithPreset([]byte("title: Preset Title\n"))
	if err != nil {
		t.Fatalf("preset: %v", err)
	}
	out, err := reqdoc.GenerateHTML(testsupport.Context(), testsupport.NewSampleProject(), reqdoc.ScreenProjectIndex, "", opt)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	testsupport.MustContain(t, string(out), "Preset Title")

	if _, err := reqdoc.WithPreset(nil); err == nil {
		t.Fatal("expected an error for an empty preset")
	}
}

func TestEmbeddedFilesystems(t *testing.T) {
	if _, err := fs.ReadFile(reqdoc.AssetsFS(), "reqdoc.css"); err != nil {
		t.Fatalf("expected the stylesheet to be readable: %v", err)
	}
	entries, err := fs.ReadDir(reqdoc.EmbeddedTemplates(), ".")
	if err != nil || len(entries) == 0 {
		t.Fatalf("expected embedded templates, got %d entries (%v)", len(entries), err)
	}
}
