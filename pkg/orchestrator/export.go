package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/goliatone/go-reqdoc/pkg/model"
	"github.com/goliatone/go-reqdoc/pkg/render"
	"github.com/goliatone/go-reqdoc/pkg/renderers/web"
)

// DefaultStaticDir is the export folder of the bundled stylesheet and script.
const DefaultStaticDir = "_static"

// page is one file of an export.
type page struct {
	path     string
	screen   render.Screen
	document *model.Document
}

// ExportRequest describes a static export.
type ExportRequest struct {
	// Project is exported as is when set; otherwise the loader is asked.
	Project *model.Project

	// Renderer names the renderer; "markdown" writes .md files.
	Renderer string

	// Fs receives the files; nil writes to the OS filesystem.
	Fs afero.Fs

	// Dir is the output folder.
	Dir string

	// StaticDir is the folder below Dir that receives the HTML assets.
	StaticDir string

	RenderOptions render.RenderOptions
}

// Export renders every page of the project into req.Dir and returns the
// written paths relative to it, in the order they were written.
func (o *Orchestrator) Export(ctx context.Context, req ExportRequest) ([]string, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := o.initialiseErr; err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Dir) == "" {
		return nil, errors.New("orchestrator: output folder is required")
	}
	out := req.Fs
	if out == nil {
		out = afero.NewOsFs()
	}

	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return nil, err
	}
	project, err := o.resolveProject(ctx, req.Project)
	if err != nil {
		return nil, err
	}
	obj, err := o.viewFor(project)
	if err != nil {
		return nil, err
	}

	html := renderer.ContentType() == web.ContentType
	var written []string
	for _, p := range plan(project, html) {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		body, err := o.render(ctx, renderer, obj, p, nil, req.RenderOptions)
		if err != nil {
			return written, err
		}
		if err := writeFile(out, req.Dir, p.path, body); err != nil {
			return written, err
		}
		written = append(written, p.path)
	}

	if html {
		staticDir := req.StaticDir
		if staticDir == "" {
			staticDir = DefaultStaticDir
		}
		assets, err := copyAssets(out, req.Dir, staticDir)
		written = append(written, assets...)
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

// plan lists the pages of an export. Markdown has no project index, tree or
// diff page.
func plan(project *model.Project, html bool) []page {
	ext := func(link string) string {
		if html {
			return link
		}
		return strings.TrimSuffix(link, ".html") + ".md"
	}

	var pages []page
	if html {
		pages = append(pages,
			page{path: "index.html", screen: render.ScreenProjectIndex},
			page{path: "project_tree.html", screen: render.ScreenProjectTree},
		)
	}
	for _, doc := range project.Documents {
		if doc.Fragment {
			continue
		}
		pages = append(pages, page{path: ext(doc.HTMLLink()), screen: render.ScreenDocument, document: doc})
	}
	if project.HasFeature(model.FeatureMatrix) {
		pages = append(pages, page{path: ext("traceability_matrix.html"), screen: render.ScreenMatrix})
	}
	if project.HasFeature(model.FeatureSourceTraceability) {
		pages = append(pages, page{path: ext("source_coverage.html"), screen: render.ScreenCoverage})
	}
	if project.HasFeature(model.FeatureDiff) {
		if html {
			pages = append(pages, page{path: "diff.html", screen: render.ScreenDiff})
		}
		pages = append(pages, page{path: ext("changelog.html"), screen: render.ScreenChangelog})
	}
	return pages
}

func writeFile(out afero.Fs, dir, rel string, body []byte) error {
	target := filepath.Join(dir, filepath.FromSlash(rel))
	if err := out.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("orchestrator: create folder for %s: %w", rel, err)
	}
	if err := afero.WriteFile(out, target, body, 0o644); err != nil {
		return fmt.Errorf("orchestrator: write %s: %w", rel, err)
	}
	return nil
}

func copyAssets(out afero.Fs, dir, staticDir string) ([]string, error) {
	var written []string
	err := fs.WalkDir(web.AssetsFS(), ".", func(name string, entry fs.DirEntry, err error) error {
		if err != nil || entry.IsDir() {
			return err
		}
		data, err := fs.ReadFile(web.AssetsFS(), name)
		if err != nil {
			return err
		}
		rel := path.Join(staticDir, name)
		if err := writeFile(out, dir, rel, data); err != nil {
			return err
		}
		written = append(written, rel)
		return nil
	})
	if err != nil {
		return written, fmt.Errorf("orchestrator: copy assets: %w", err)
	}
	return written, nil
}
