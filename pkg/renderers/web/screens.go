package web

import (
	"strings"

	"github.com/goliatone/go-reqdoc/pkg/model"
	"github.com/goliatone/go-reqdoc/pkg/render"
	"github.com/goliatone/go-reqdoc/pkg/renderers/web/components"
	"github.com/goliatone/go-reqdoc/pkg/source"
	"github.com/goliatone/go-reqdoc/pkg/trace"
	"github.com/goliatone/go-reqdoc/pkg/view"
)

// layout wraps a screen body in the page chrome.
func (p *page) layout(ns render.Namespace) (string, error) {
	stylesheets, scripts := p.registry.Assets([]string{components.NameLayout})
	scriptItems := make([]map[string]any, 0, len(scripts))
	for _, script := range scripts {
		scriptItems = append(scriptItems, map[string]any{
			"src":    p.assetURL(script.Src),
			"defer":  script.Defer,
			"module": script.Module,
		})
	}
	base := render.Namespace{
		"server":        p.view.Server(),
		"stylesheets":   p.staticURLs(stylesheets),
		"scripts":       scriptItems,
		"theme_style":   p.opts.Theme.StyleAttribute(),
		"project_title": p.view.ProjectTitle(),
		"version":       p.view.Version(),
	}
	return p.component(components.NameLayout, base.Merge(ns))
}

func (p *page) requireDocument(screen render.Screen) error {
	return render.Assert(p.view.Document != nil, "%s requires a current document", screen)
}

func (p *page) documentPage() (string, error) {
	if err := p.requireDocument(render.ScreenDocument); err != nil {
		return "", err
	}
	tree, err := p.projectTree()
	if err != nil {
		return "", err
	}
	toc, err := p.toc()
	if err != nil {
		return "", err
	}
	content, err := p.documentContent()
	if err != nil {
		return "", err
	}
	title := documentTitle(p.view.Document)
	return p.layout(render.Namespace{
		"title":          title + " - " + p.view.ProjectTitle(),
		"viewtype":       "document",
		"tree":           tree,
		"toc":            toc,
		"document_title": title,
		"main":           content,
	})
}

// documentContent renders the document root followed by every node of the
// document and its included fragments in document order.
func (p *page) documentContent() (string, error) {
	if err := p.requireDocument(render.ScreenDocumentContent); err != nil {
		return "", err
	}
	root, err := p.renderNode(VariantFull, nil)
	if err != nil {
		return "", err
	}
	parts := []string{root}
	for _, item := range p.view.DocumentContent() {
		out, err := p.renderNode(VariantFull, item.Node)
		if err != nil {
			return "", err
		}
		parts = append(parts, out)
	}
	return p.component(components.NameDocumentContent, render.Namespace{"nodes": joinHTML(parts...)})
}

func (p *page) toc() (string, error) {
	if err := p.requireDocument(render.ScreenTOC); err != nil {
		return "", err
	}
	items := p.view.TableOfContents()
	var (
		markup string
		err    error
	)
	if len(items) > 0 {
		markup, _, err = p.tocBranch(items, 0)
		if err != nil {
			return "", err
		}
	}
	return p.component(components.NameTOC, render.Namespace{"items": markup})
}

// tocBranch renders items[start:] until the depth drops below the depth of
// items[start], nesting deeper entries under their predecessor. It returns
// the index of the first unconsumed item.
func (p *page) tocBranch(items []view.TOCItem, start int) (string, int, error) {
	depth := items[start].Depth
	var parts []string
	i := start
	for i < len(items) && items[i].Depth >= depth {
		item := items[i]
		i++
		var (
			children string
			err      error
		)
		if i < len(items) && items[i].Depth > item.Depth {
			children, i, err = p.tocBranch(items, i)
			if err != nil {
				return "", i, err
			}
		}
		out, err := p.component(components.NameTOCItem, render.Namespace{
			"mid":      item.Node.MID,
			"linked":   item.Linked,
			"anchor":   item.Anchor,
			"number":   item.Number,
			"indent":   titleIndent(item.Depth),
			"title":    item.Title,
			"children": children,
		})
		if err != nil {
			return "", i, err
		}
		parts = append(parts, out)
	}
	return joinHTML(parts...), i, nil
}

func (p *page) projectTree() (string, error) {
	if p.view.IsEmptyTree() {
		return p.component(components.NameProjectTree, render.Namespace{"empty": true})
	}
	entries, err := p.folderEntries(p.view.FileTree())
	if err != nil {
		return "", err
	}
	return p.component(components.NameProjectTree, render.Namespace{"entries": entries})
}

// folderEntries renders the listable subfolders and files of folder,
// recursing once per displayed subfolder.
func (p *page) folderEntries(folder *model.Folder) (string, error) {
	var parts []string
	for _, child := range folder.Folders {
		if !p.view.ShouldDisplayFolder(child) {
			continue
		}
		entries, err := p.folderEntries(child)
		if err != nil {
			return "", err
		}
		out, err := p.component(components.NameProjectTreeFolder, render.Namespace{
			"level":         child.Level,
			"name":          child.Name,
			"folder_icon":   components.Icon("folder"),
			"collapse_icon": components.Icon("folder_collapse"),
			"entries":       entries,
		})
		if err != nil {
			return "", err
		}
		parts = append(parts, out)
	}
	for _, file := range folder.Files {
		if !p.view.ShouldDisplayFile(file) || file.Document == nil {
			continue
		}
		out, err := p.treeFile(file)
		if err != nil {
			return "", err
		}
		parts = append(parts, out)
	}
	return joinHTML(parts...), nil
}

func (p *page) treeFile(file *model.File) (string, error) {
	doc := file.Document
	icon := components.Icon("document")
	var includedBy []string
	if doc.Fragment {
		icon = components.Icon("fragment")
		for _, parent := range doc.IncludedBy() {
			includedBy = append(includedBy, documentTitle(parent))
		}
	}
	return p.component(components.NameProjectTreeFile, render.Namespace{
		"href":        p.view.RenderDocumentLink(doc),
		"icon":        icon,
		"title":       documentTitle(doc),
		"file_name":   file.Name,
		"active":      p.view.Document != nil && p.view.Document == doc,
		"included_by": strings.Join(includedBy, ", "),
	})
}

func (p *page) projectIndexPage() (string, error) {
	tree, err := p.projectTree()
	if err != nil {
		return "", err
	}
	cfg := p.view.Project.Config
	main, err := p.component(components.NameProjectIndex, render.Namespace{
		"tree":           tree,
		"source_root":    cfg.SourceRootPath,
		"include_source": cfg.IncludeSourcePaths,
		"exclude_source": cfg.ExcludeSourcePaths,
		"features":       cfg.Features,
	})
	if err != nil {
		return "", err
	}
	return p.layout(render.Namespace{
		"title":    p.view.ProjectTitle(),
		"viewtype": "project_index",
		"main":     main,
	})
}

// Traceability matrix.

func (p *page) matrixPage() (string, error) {
	relations := p.view.Index.KnownRelations()
	if !p.view.SourceTraceability() {
		relations = withoutFileRelations(relations)
	}
	headers := make([]string, 0, len(relations))
	for _, rel := range relations {
		headers = append(headers, rel.Label())
	}

	var documents []map[string]any
	for _, doc := range p.view.Project.Documents {
		if doc.Fragment {
			continue
		}
		var rows []map[string]any
		for _, node := range p.view.ForDocument(doc).Requirements() {
			row, err := p.matrixRow(node, relations)
			if err != nil {
				return "", err
			}
			rows = append(rows, row)
		}
		documents = append(documents, map[string]any{
			"title": documentTitle(doc),
			"rows":  rows,
		})
	}

	main, err := p.component(components.NameMatrix, render.Namespace{
		"headers":   headers,
		"icon":      components.Icon("document"),
		"documents": documents,
	})
	if err != nil {
		return "", err
	}
	return p.layout(render.Namespace{
		"title":    "Traceability matrix - " + p.view.ProjectTitle(),
		"viewtype": "traceability_matrix",
		"main":     main,
	})
}

func withoutFileRelations(relations []trace.RelationKey) []trace.RelationKey {
	out := relations[:0:0]
	for _, rel := range relations {
		if rel.Type != model.RelationFile {
			out = append(out, rel)
		}
	}
	return out
}

func (p *page) matrixRow(node *model.Node, relations []trace.RelationKey) (map[string]any, error) {
	self, err := p.matrixRequirement(node, "")
	if err != nil {
		return nil, err
	}
	cells := make([]string, 0, len(relations))
	for _, rel := range relations {
		var parts []string
		switch rel.Type {
		case model.RelationParent:
			for _, link := range p.view.Index.ParentsWithRole(node, rel.Role) {
				out, err := p.matrixRequirement(link.Node, "parent")
				if err != nil {
					return nil, err
				}
				parts = append(parts, out)
			}
		case model.RelationChild:
			for _, link := range p.view.Index.ChildrenWithRole(node, rel.Role) {
				out, err := p.matrixRequirement(link.Node, "child")
				if err != nil {
					return nil, err
				}
				parts = append(parts, out)
			}
		case model.RelationFile:
			for _, link := range p.view.Index.FileLinks(node) {
				out, err := p.component(components.NameMatrixFile, render.Namespace{
					"href": p.view.RenderSourceFileLink(link.Path),
					"path": link.Path,
				})
				if err != nil {
					return nil, err
				}
				parts = append(parts, out)
			}
		}
		cells = append(cells, joinHTML(parts...))
	}
	return map[string]any{"node": self, "cells": cells}, nil
}

func (p *page) matrixRequirement(node *model.Node, relation string) (string, error) {
	return p.component(components.NameMatrixRequirement, render.Namespace{
		"status":   node.Status,
		"uid":      node.UID,
		"relation": relation,
		"number":   node.Number,
		"href":     p.view.RenderNodeLink(node),
		"title":    strings.TrimSpace(node.Title),
	})
}

// Source coverage.

func (p *page) coveragePage() (string, error) {
	files := p.view.Project.SourceFiles
	ns := render.Namespace{}
	if len(files) == 0 || !p.view.SourceTraceability() {
		ns["empty"] = true
	} else {
		coverage := source.BuildCoverage(files)
		var rows []string
		for _, row := range coverage.Rows {
			out, err := p.coverageRow(row, false)
			if err != nil {
				return "", err
			}
			rows = append(rows, out)
		}
		total, err := p.coverageRow(coverage.Total, true)
		if err != nil {
			return "", err
		}
		ns["rows"] = joinHTML(rows...)
		ns["total"] = total
	}
	main, err := p.component(components.NameCoverage, ns)
	if err != nil {
		return "", err
	}
	return p.layout(render.Namespace{
		"title":    "Source coverage - " + p.view.ProjectTitle(),
		"viewtype": "source_coverage",
		"main":     main,
	})
}

func (p *page) coverageRow(row source.Row, total bool) (string, error) {
	if row.IsFolder && !total {
		linesBar, err := p.component(components.NameValueBar, render.Namespace{"value": row.LinesPercent})
		if err != nil {
			return "", err
		}
		funcBar, err := p.component(components.NameValueBar, render.Namespace{"value": row.FuncPercent})
		if err != nil {
			return "", err
		}
		return p.component(components.NameCoverageFolder, render.Namespace{
			"level":         row.Level,
			"icon":          components.Icon("folder"),
			"name":          row.Name,
			"lines_percent": row.LinesPercent,
			"lines_bar":     linesBar,
			"func_percent":  row.FuncPercent,
			"func_bar":      funcBar,
		})
	}

	ns := render.Namespace{
		"total":         total,
		"uncovered":     row.Uncovered,
		"name":          row.Name,
		"path":          row.Path,
		"level":         row.Level,
		"lines_percent": row.LinesPercent,
		"lines_covered": row.LinesCovered,
		"lines_total":   row.LinesTotal,
		"lines_all":     row.LinesAll,
		"func_percent":  row.FuncPercent,
		"func_covered":  row.FuncCovered,
		"func_total":    row.FuncTotal,
	}
	if total {
		ns["path"] = row.Name
	} else {
		ns["href"] = p.view.RenderSourceFileLink(row.Path)
		ns["icon"] = components.Icon("file")
	}
	return p.component(components.NameCoverageFile, ns)
}

// Print.

func (p *page) pdfPage() (string, error) {
	if err := p.requireDocument(render.ScreenPDF); err != nil {
		return "", err
	}
	doc := p.view.Document

	var tocItems []map[string]any
	for _, item := range p.view.TableOfContents() {
		tocItems = append(tocItems, map[string]any{
			"mid":    item.Node.MID,
			"number": item.Number,
			"indent": titleIndent(item.Depth),
			"anchor": item.Anchor,
			"title":  item.Title,
		})
	}
	toc, err := p.component(components.NamePDFTOC, render.Namespace{"items": tocItems})
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, len(doc.Nodes))
	for _, item := range p.view.DocumentContent() {
		out, err := p.renderNode(VariantReadonly, item.Node)
		if err != nil {
			return "", err
		}
		parts = append(parts, out)
	}

	title, err := p.documentTitle(doc)
	if err != nil {
		return "", err
	}
	meta, err := p.documentMeta(doc)
	if err != nil {
		return "", err
	}
	frontpage, err := p.component(components.NamePDFFrontpage, render.Namespace{"title": title, "meta": meta})
	if err != nil {
		return "", err
	}
	header, err := p.component(components.NamePDFHeader, render.Namespace{
		"project":  p.view.ProjectTitle(),
		"document": documentTitle(doc),
	})
	if err != nil {
		return "", err
	}
	footer, err := p.component(components.NamePDFFooter, render.Namespace{
		"date":    p.view.DateToday(),
		"version": p.view.Version(),
	})
	if err != nil {
		return "", err
	}

	stylesheets, _ := p.registry.Assets([]string{components.NameLayout})
	return p.component(components.NamePDF, render.Namespace{
		"stylesheets": p.staticURLs(stylesheets),
		"title":       documentTitle(doc),
		"toc":         toc,
		"nodes":       joinHTML(parts...),
		"frontpage":   frontpage,
		"header":      header,
		"footer":      footer,
	})
}
