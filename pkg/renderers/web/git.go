package web

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-reqdoc/pkg/diff"
	"github.com/goliatone/go-reqdoc/pkg/model"
	"github.com/goliatone/go-reqdoc/pkg/render"
	"github.com/goliatone/go-reqdoc/pkg/renderers/web/components"
)

var multilineFields = map[string]bool{
	"STATEMENT": true,
	"RATIONALE": true,
	"COMMENT":   true,
}

func requireChanges(changes *diff.ChangeSet) error {
	return render.Assert(changes != nil && changes.LHS != nil && changes.RHS != nil, "comparison requires two snapshots")
}

// diffPage renders both snapshots side by side. Every document is listed
// under its folder; changed documents, nodes and fields carry a modified
// attribute naming their side.
func (p *page) diffPage(changes *diff.ChangeSet) (string, error) {
	if err := requireChanges(changes); err != nil {
		return "", err
	}
	ns := render.Namespace{"separator": components.Icon("separator")}
	if changes.Empty() {
		ns["empty"] = true
	}
	left, err := p.diffColumn(changes, diff.Left, changes.LHS)
	if err != nil {
		return "", err
	}
	right, err := p.diffColumn(changes, diff.Right, changes.RHS)
	if err != nil {
		return "", err
	}
	ns["left"] = left
	ns["right"] = right

	main, err := p.component(components.NameDiff, ns)
	if err != nil {
		return "", err
	}
	return p.layout(render.Namespace{
		"title":    "Diff - " + p.view.ProjectTitle(),
		"viewtype": "diff",
		"main":     main,
	})
}

func (p *page) diffColumn(changes *diff.ChangeSet, side diff.Side, project *model.Project) ([]map[string]any, error) {
	var entries []map[string]any
	var walk func(folder *model.Folder, root bool) error
	walk = func(folder *model.Folder, root bool) error {
		if !root {
			entries = append(entries, map[string]any{
				"folder": true,
				"level":  folder.Level,
				"path":   folder.RelPath,
			})
		}
		for _, child := range folder.Folders {
			if err := walk(child, false); err != nil {
				return err
			}
		}
		for _, file := range folder.Files {
			if file.Document == nil {
				continue
			}
			out, err := p.diffDocument(changes, side, file.Document)
			if err != nil {
				return err
			}
			entries = append(entries, map[string]any{"html": out})
		}
		return nil
	}
	if err := walk(project.DocumentTree(), true); err != nil {
		return nil, err
	}
	return entries, nil
}

func (p *page) diffDocument(changes *diff.ChangeSet, side diff.Side, doc *model.Document) (string, error) {
	change, found := changes.Document(doc.Path)
	var fields string
	if found {
		out, err := p.diffFields(side, change.FieldChanges)
		if err != nil {
			return "", err
		}
		fields = out
	}

	var nodes []string
	var failed error
	doc.Walk(func(node *model.Node) bool {
		if failed != nil {
			return false
		}
		nodeChange, _ := changes.FindNode(side, node.MID)
		out, err := p.diffNode(side, node, nodeChange, true)
		if err != nil {
			failed = err
			return false
		}
		nodes = append(nodes, out)
		return true
	})
	if failed != nil {
		return "", failed
	}

	return p.component(components.NameDiffDocument, render.Namespace{
		"modified": found && change.Modified(),
		"side":     string(side),
		"icon":     components.Icon("document"),
		"title":    documentTitle(doc),
		"fields":   fields,
		"nodes":    joinHTML(nodes...),
	})
}

// diffNode renders one node of a diff column. change is nil for untouched
// nodes.
func (p *page) diffNode(side diff.Side, node *model.Node, change *diff.NodeChange, withButton bool) (string, error) {
	badge, err := p.component(components.NameBadge, render.Namespace{"text": node.TypeString()})
	if err != nil {
		return "", err
	}
	ns := render.Namespace{
		"modified": change != nil,
		"side":     string(side),
		"mid":      node.MID,
		"badge":    badge,
		"number":   node.Number,
		"indent":   titleIndent(node.Level),
		"title":    strings.TrimSpace(node.Title),
	}
	if change != nil {
		fields, err := p.diffFields(side, change.FieldChanges)
		if err != nil {
			return "", err
		}
		ns["fields"] = fields
		if counterpart := counterpartOf(side, change); withButton && counterpart != nil {
			button, err := p.component(components.NameButtonDiff, render.Namespace{
				"href": fmt.Sprintf("#diff-%s-%s", otherSide(side), counterpart.MID),
				"icon": components.Icon("diff"),
			})
			if err != nil {
				return "", err
			}
			ns["diff_button"] = button
		}
	}
	return p.component(components.NameDiffNode, ns)
}

func otherSide(side diff.Side) diff.Side {
	if side == diff.Left {
		return diff.Right
	}
	return diff.Left
}

func counterpartOf(side diff.Side, change *diff.NodeChange) *model.Node {
	if side == diff.Left {
		return change.RHS
	}
	return change.LHS
}

func (p *page) diffFields(side diff.Side, changes []diff.FieldChange) (string, error) {
	if len(changes) == 0 {
		return "", nil
	}
	fields := make([]map[string]any, 0, len(changes))
	for _, change := range changes {
		badge, err := p.component(components.NameBadge, render.Namespace{"text": change.Name})
		if err != nil {
			return "", err
		}
		value, segments := change.LHS, change.LHSSegments
		if side == diff.Right {
			value, segments = change.RHS, change.RHSSegments
		}
		items := make([]map[string]any, 0, len(segments))
		for _, segment := range segments {
			items = append(items, map[string]any{"kind": string(segment.Kind), "text": segment.Text})
		}
		fields = append(fields, map[string]any{
			"multiline": multilineFields[change.Name] || strings.Contains(value, "\n"),
			"modified":  true,
			"badge":     badge,
			"segments":  items,
			"value":     value,
		})
	}
	return p.component(components.NameDiffFields, render.Namespace{
		"side":   string(side),
		"fields": fields,
	})
}

// changelogPage lists the change statistics followed by one row per change.
func (p *page) changelogPage(changes *diff.ChangeSet) (string, error) {
	if err := requireChanges(changes); err != nil {
		return "", err
	}
	stats, err := p.changelogStats(changes.Stats)
	if err != nil {
		return "", err
	}

	var rows []string
	for i, entry := range changes.Changelog() {
		out, err := p.changelogChange(i+1, entry)
		if err != nil {
			return "", err
		}
		rows = append(rows, out)
	}

	main, err := p.component(components.NameChangelog, render.Namespace{
		"stats":   stats,
		"changes": joinHTML(rows...),
	})
	if err != nil {
		return "", err
	}
	return p.layout(render.Namespace{
		"title":    "Changelog - " + p.view.ProjectTitle(),
		"viewtype": "changelog",
		"main":     main,
	})
}

func (p *page) changelogStats(stats diff.Stats) (string, error) {
	type pair struct {
		key   string
		value int
	}
	pairs := []pair{
		{"Documents modified", stats.DocumentsModified},
		{"Sections added", stats.Sections.Added},
		{"Sections removed", stats.Sections.Removed},
		{"Sections modified", stats.Sections.Modified},
	}
	for _, tag := range stats.RequirementTags() {
		counter := stats.Requirements[tag]
		pairs = append(pairs,
			pair{tag + " added", counter.Added},
			pair{tag + " removed", counter.Removed},
			pair{tag + " modified", counter.Modified},
		)
	}
	parts := make([]string, 0, len(pairs))
	for _, kv := range pairs {
		out, err := p.component(components.NameTableKeyValue, render.Namespace{
			"key":   kv.key,
			"value": fmt.Sprint(kv.value),
		})
		if err != nil {
			return "", err
		}
		parts = append(parts, out)
	}
	return joinHTML(parts...), nil
}

func (p *page) changelogChange(number int, entry diff.Entry) (string, error) {
	ns := render.Namespace{
		"number": number,
		"type":   string(entry.Type),
		"css":    changeClass(entry.Type),
	}
	switch {
	case entry.Node != nil:
		change := entry.Node
		ns["lhs_null"] = "The node did not exist."
		ns["rhs_null"] = "The node was removed."
		if change.LHS != nil {
			out, err := p.diffNode(diff.Left, change.LHS, change, false)
			if err != nil {
				return "", err
			}
			ns["lhs"] = out
		}
		if change.RHS != nil {
			out, err := p.diffNode(diff.Right, change.RHS, change, false)
			if err != nil {
				return "", err
			}
			ns["rhs"] = out
		}
	case entry.Document != nil:
		change := entry.Document
		ns["lhs_null"] = "The document did not exist."
		ns["rhs_null"] = "The document was removed."
		if change.LHS != nil {
			out, err := p.changelogDocument(diff.Left, change.LHS, change)
			if err != nil {
				return "", err
			}
			ns["lhs"] = out
		}
		if change.RHS != nil {
			out, err := p.changelogDocument(diff.Right, change.RHS, change)
			if err != nil {
				return "", err
			}
			ns["rhs"] = out
		}
	}
	return p.component(components.NameChangelogChange, ns)
}

func (p *page) changelogDocument(side diff.Side, doc *model.Document, change *diff.DocumentChange) (string, error) {
	fields, err := p.diffFields(side, change.FieldChanges)
	if err != nil {
		return "", err
	}
	return p.component(components.NameDiffDocument, render.Namespace{
		"modified": len(change.FieldChanges) > 0,
		"side":     string(side),
		"icon":     components.Icon("document"),
		"title":    documentTitle(doc),
		"fields":   fields,
	})
}

func changeClass(kind diff.ChangeType) string {
	switch {
	case strings.HasSuffix(string(kind), "added"):
		return "added"
	case strings.HasSuffix(string(kind), "removed"):
		return "removed"
	default:
		return "modified"
	}
}
