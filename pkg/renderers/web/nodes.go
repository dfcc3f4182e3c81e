package web

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/goliatone/go-reqdoc/pkg/model"
	"github.com/goliatone/go-reqdoc/pkg/render"
	"github.com/goliatone/go-reqdoc/pkg/renderers/web/components"
)

// Node presentations.
const (
	VariantFull     = "full"
	VariantCard     = "card"
	VariantTiny     = "tiny"
	VariantReadonly = "readonly"
)

type nodeKey struct {
	variant string
	kind    model.NodeType
}

// nodeComposer renders one node presentation. Document composers receive a
// nil node and read the document from the page's view object.
type nodeComposer func(p *page, node *model.Node) (string, error)

var nodeComposers = map[nodeKey]nodeComposer{
	{VariantFull, model.NodeTypeDocument}:    (*page).fullDocument,
	{VariantFull, model.NodeTypeSection}:     (*page).fullSection,
	{VariantFull, model.NodeTypeRequirement}: (*page).fullRequirement,
	{VariantFull, model.NodeTypeText}:        (*page).fullText,

	{VariantCard, model.NodeTypeDocument}:    (*page).cardDocument,
	{VariantCard, model.NodeTypeSection}:     (*page).cardSection,
	{VariantCard, model.NodeTypeRequirement}: (*page).cardRequirement,
	{VariantCard, model.NodeTypeText}:        (*page).cardText,

	{VariantTiny, model.NodeTypeDocument}:    (*page).tinyDocument,
	{VariantTiny, model.NodeTypeSection}:     (*page).tinySection,
	{VariantTiny, model.NodeTypeRequirement}: (*page).tinyRequirement,
	{VariantTiny, model.NodeTypeText}:        (*page).tinyText,

	{VariantReadonly, model.NodeTypeDocument}:    (*page).readonlyDocument,
	{VariantReadonly, model.NodeTypeSection}:     (*page).readonlySection,
	{VariantReadonly, model.NodeTypeRequirement}: (*page).readonlyRequirement,
	{VariantReadonly, model.NodeTypeText}:        (*page).readonlyText,
}

func normalizeVariant(variant string) string {
	variant = strings.ToLower(strings.TrimSpace(variant))
	if variant == "" {
		return VariantFull
	}
	return variant
}

// renderNode looks up the composer for the node's kind. A nil node renders
// the document root of the current view.
func (p *page) renderNode(variant string, node *model.Node) (string, error) {
	kind := model.NodeTypeDocument
	if node != nil {
		kind = node.Type
	}
	variant = normalizeVariant(variant)
	composer, ok := nodeComposers[nodeKey{variant: variant, kind: kind}]
	if err := render.Assert(ok, "no %q presentation for %q nodes", variant, kind); err != nil {
		return "", err
	}
	if node == nil {
		if err := render.Assert(p.view.Document != nil, "document node requires a current document"); err != nil {
			return "", err
		}
	}
	return composer(p, node)
}

// nodeScreen renders a single node for the node screen. ns carries the node
// (or document) machine id under "mid".
func (p *page) nodeScreen(ns render.Namespace, variant string) (string, error) {
	if err := ns.Require("node", "mid"); err != nil {
		return "", err
	}
	mid := ns.String("mid")
	project := p.view.Project
	if doc, ok := project.DocumentByMID(mid); ok {
		return p.forDocument(doc).renderNode(variant, nil)
	}
	node, ok := project.FindNode(mid)
	if err := render.Assert(ok, "node %q not found", mid); err != nil {
		return "", err
	}
	scoped := p
	if p.view.Document == nil {
		scoped = p.forDocument(node.Document())
	}
	return scoped.renderNode(variant, node)
}

// Entities.

func (p *page) requirementEntity(node *model.Node, hLevel int, copyable bool) (string, error) {
	style := p.requirementStyle(node)
	title, err := p.titleField(node, hLevel)
	if err != nil {
		return "", err
	}
	meta, err := p.metaFields(node)
	if err != nil {
		return "", err
	}
	statement, err := p.statementField(node, copyable)
	if err != nil {
		return "", err
	}
	rationale, err := p.rationaleField(node, copyable)
	if err != nil {
		return "", err
	}
	comments, err := p.commentFields(node, copyable)
	if err != nil {
		return "", err
	}
	multiline, err := p.multilineFields(node, copyable)
	if err != nil {
		return "", err
	}
	links, err := p.linksField(node)
	if err != nil {
		return "", err
	}
	files, err := p.filesField(node)
	if err != nil {
		return "", err
	}

	ns := render.Namespace{
		"style":     style,
		"number":    node.Number,
		"status":    node.Status,
		"type_name": node.TypeString(),
		"title":     title,
	}
	if style == model.StyleNarrative {
		ns["secondary"] = joinHTML(meta, links, files)
		ns["primary"] = joinHTML(statement, rationale, comments, multiline)
	} else {
		ns["fields"] = joinHTML(meta, statement, rationale, comments, multiline, links, files)
	}
	return p.component(components.NameNodeContent, ns)
}

func (p *page) sectionEntity(node *model.Node, withAnchor bool) (string, error) {
	title, err := p.sectionTitleField(node, node.Level, withAnchor)
	if err != nil {
		return "", err
	}
	uid, err := p.uidStandaloneField(node)
	if err != nil {
		return "", err
	}
	return p.component(components.NameSection, render.Namespace{"title": title, "uid": uid})
}

func (p *page) documentEntity(withMeta bool) (string, error) {
	doc := p.view.Document
	title, err := p.documentTitle(doc)
	if err != nil {
		return "", err
	}
	if !withMeta {
		return title, nil
	}
	meta, err := p.documentMeta(doc)
	if err != nil {
		return "", err
	}
	return joinHTML(title, meta), nil
}

// Shells.

func (p *page) anchor(node *model.Node) (string, error) {
	var incoming []map[string]any
	for _, source := range p.view.Index.IncomingLinks(node) {
		title := source.DisplayTitle()
		if title == "" {
			title = source.UID
		}
		incoming = append(incoming, map[string]any{
			"href":  p.view.RenderNodeLink(source),
			"title": title,
		})
	}
	return p.component(components.NameAnchor, render.Namespace{
		"anchor":   p.view.RenderLocalAnchor(node),
		"role":     roleOf(node),
		"uid":      node.UID,
		"incoming": incoming,
	})
}

func (p *page) stableLink(node *model.Node) (string, error) {
	if !p.view.ShouldDisplayStableLink(node) {
		return "", nil
	}
	return p.component(components.NameCopyStableLink, render.Namespace{
		"path": p.view.RenderStableLink(node),
		"icon": components.Icon("link"),
	})
}

func (p *page) fullShell(node *model.Node, entity string) (string, error) {
	anchor, err := p.anchor(node)
	if err != nil {
		return "", err
	}
	stable, err := p.stableLink(node)
	if err != nil {
		return "", err
	}
	controls, err := p.nodeControls(node)
	if err != nil {
		return "", err
	}
	role := roleOf(node)
	ns := render.Namespace{
		"frame":       !p.view.Standalone(),
		"mid":         node.MID,
		"is_section":  node.IsSection(),
		"role":        role,
		"type_name":   node.TypeString(),
		"included":    p.isIncluded(node),
		"testid":      "node-" + role,
		"stable_link": stable,
		"anchor":      anchor,
		"entity":      entity,
		"controls":    controls,
	}
	if node.IsRequirement() {
		ns["view"] = p.requirementStyle(node)
	}
	return p.component(components.NameNodeFull, ns)
}

func (p *page) isIncluded(node *model.Node) bool {
	owner := node.Document()
	return owner != nil && p.view.Document != nil && owner != p.view.Document
}

func (p *page) cardShell(node *model.Node, entity string) (string, error) {
	anchor, err := p.anchor(node)
	if err != nil {
		return "", err
	}
	controls, err := p.cardControls(node)
	if err != nil {
		return "", err
	}
	role := roleOf(node)
	return p.component(components.NameNodeCard, render.Namespace{
		"role":     role,
		"status":   node.Status,
		"testid":   "node-card-" + role,
		"anchor":   anchor,
		"entity":   entity,
		"controls": controls,
	})
}

func (p *page) tinyShell(node *model.Node, entity string) (string, error) {
	ns := render.Namespace{"role": roleOf(node), "entity": entity}
	if node != nil {
		ns["uid"] = node.UID
	}
	return p.component(components.NameNodeTiny, ns)
}

func (p *page) readonlyShell(node *model.Node, entity string, withAnchor bool) (string, error) {
	ns := render.Namespace{"role": roleOf(node), "entity": entity}
	if node != nil && withAnchor {
		anchor, err := p.anchor(node)
		if err != nil {
			return "", err
		}
		ns["anchor"] = anchor
	}
	if node.IsRequirement() {
		ns["view"] = p.requirementStyle(node)
	}
	return p.component(components.NameNodeReadonly, ns)
}

// Full presentation.

func (p *page) fullDocument(_ *model.Node) (string, error) {
	doc := p.view.Document
	entity, err := p.documentEntity(true)
	if err != nil {
		return "", err
	}
	controls, err := p.documentControls(doc)
	if err != nil {
		return "", err
	}
	return p.component(components.NameNodeRoot, render.Namespace{
		"frame":       !p.view.Standalone(),
		"mid":         doc.MID,
		"entity":      entity,
		"placeholder": p.view.Server() && !doc.HasAnyNodes(),
		"controls":    controls,
	})
}

func (p *page) fullSection(node *model.Node) (string, error) {
	entity, err := p.sectionEntity(node, false)
	if err != nil {
		return "", err
	}
	return p.fullShell(node, entity)
}

func (p *page) fullRequirement(node *model.Node) (string, error) {
	entity, err := p.requirementEntity(node, headingLevel(node.Level), true)
	if err != nil {
		return "", err
	}
	return p.fullShell(node, entity)
}

func (p *page) fullText(node *model.Node) (string, error) {
	uid, err := p.uidStandaloneField(node)
	if err != nil {
		return "", err
	}
	text, err := p.textField(node)
	if err != nil {
		return "", err
	}
	return p.fullShell(node, joinHTML(uid, text))
}

// Card presentation.

func (p *page) cardDocument(_ *model.Node) (string, error) {
	entity, err := p.documentEntity(false)
	if err != nil {
		return "", err
	}
	return p.component(components.NameNodeCard, render.Namespace{
		"role":   roleOf(nil),
		"testid": "node-card-" + roleOf(nil),
		"entity": entity,
	})
}

func (p *page) cardSection(node *model.Node) (string, error) {
	title, err := p.titleField(node, 0)
	if err != nil {
		return "", err
	}
	return p.cardShell(node, title)
}

func (p *page) cardRequirement(node *model.Node) (string, error) {
	entity, err := p.requirementEntity(node, 0, false)
	if err != nil {
		return "", err
	}
	return p.cardShell(node, entity)
}

func (p *page) cardText(node *model.Node) (string, error) {
	text, err := p.textField(node)
	if err != nil {
		return "", err
	}
	return p.cardShell(node, text)
}

// Tiny presentation.

func (p *page) tinyDocument(_ *model.Node) (string, error) {
	entity, err := p.documentEntity(false)
	if err != nil {
		return "", err
	}
	return p.tinyShell(nil, entity)
}

func (p *page) tinySection(node *model.Node) (string, error) {
	title, err := p.titleField(node, 0)
	if err != nil {
		return "", err
	}
	return p.tinyShell(node, title)
}

func (p *page) tinyRequirement(node *model.Node) (string, error) {
	uid, err := p.uidField(node)
	if err != nil {
		return "", err
	}
	title, err := p.titleField(node, 0)
	if err != nil {
		return "", err
	}
	statement, err := p.truncatedStatementField(node)
	if err != nil {
		return "", err
	}
	return p.tinyShell(node, joinHTML(uid, title, statement))
}

func (p *page) tinyText(node *model.Node) (string, error) {
	statement, err := p.truncatedStatementField(node)
	if err != nil {
		return "", err
	}
	return p.tinyShell(node, statement)
}

// Readonly presentation, used for print.

func (p *page) readonlyDocument(_ *model.Node) (string, error) {
	entity, err := p.documentEntity(true)
	if err != nil {
		return "", err
	}
	return p.readonlyShell(nil, entity, false)
}

func (p *page) readonlySection(node *model.Node) (string, error) {
	entity, err := p.sectionEntity(node, true)
	if err != nil {
		return "", err
	}
	return p.readonlyShell(node, entity, false)
}

func (p *page) readonlyRequirement(node *model.Node) (string, error) {
	entity, err := p.requirementEntity(node, headingLevel(node.Level), false)
	if err != nil {
		return "", err
	}
	return p.readonlyShell(node, entity, true)
}

func (p *page) readonlyText(node *model.Node) (string, error) {
	text, err := p.textField(node)
	if err != nil {
		return "", err
	}
	return p.readonlyShell(node, text, true)
}

// Controls.

// actionURL builds a form action href under /actions/.
func actionURL(action string, params url.Values) string {
	return "/actions/" + action + "?" + params.Encode()
}

func (p *page) contextMID() string {
	if p.view.Document == nil {
		return ""
	}
	return p.view.Document.MID
}

func (p *page) nodeControls(node *model.Node) (string, error) {
	if !p.view.Server() {
		return "", nil
	}
	kind := "requirement"
	if node.IsSection() {
		kind = "section"
	}
	params := url.Values{
		"node_id":              {node.MID},
		"context_document_mid": {p.contextMID()},
	}
	ns := render.Namespace{
		"role":        roleOf(node),
		"edit_href":   actionURL("document/edit_"+kind, params),
		"edit_icon":   components.Icon("edit"),
		"delete_href": actionURL("document/delete_"+kind, params),
		"delete_icon": components.Icon("delete"),
		"add_links":   p.addLinks(node),
		"add_icon":    components.Icon("menu_handler"),
	}
	if node.IsRequirement() {
		ns["clone_href"] = actionURL("document/clone_requirement", url.Values{
			"reference_mid":        {node.MID},
			"context_document_mid": {p.contextMID()},
		})
		ns["clone_icon"] = components.Icon("clone")
	}
	return p.component(components.NameNodeControls, ns)
}

func (p *page) documentControls(doc *model.Document) (string, error) {
	if !p.view.Server() {
		return "", nil
	}
	return p.component(components.NameNodeControls, render.Namespace{
		"role":        roleOf(nil),
		"is_document": true,
		"edit_href":   actionURL("document/edit_config", url.Values{"document_mid": {doc.MID}}),
		"edit_icon":   components.Icon("edit"),
		"add_links":   p.addLinks(nil),
		"add_icon":    components.Icon("menu_handler"),
	})
}

type placement struct {
	whereto string
	testid  string
	label   string
}

var (
	placeBefore = placement{"before", "above", "above"}
	placeChild  = placement{"child", "child", "as child"}
	placeAfter  = placement{"after", "below", "below"}
)

// addLinks builds the add-node menu. Documents only accept children, text
// and requirements only accept siblings.
func (p *page) addLinks(node *model.Node) []map[string]any {
	var (
		places    []placement
		reference string
	)
	switch {
	case node == nil:
		places = []placement{placeChild}
		reference = p.contextMID()
	case node.IsSection():
		places = []placement{placeBefore, placeChild, placeAfter}
		reference = node.MID
	default:
		places = []placement{placeBefore, placeAfter}
		reference = node.MID
	}

	elements := append([]string{"SECTION"}, p.view.GrammarElements()...)
	var links []map[string]any
	for _, place := range places {
		for _, element := range elements {
			params := url.Values{
				"reference_mid":        {reference},
				"whereto":              {place.whereto},
				"context_document_mid": {p.contextMID()},
			}
			action := "document/new_section"
			label := "Section"
			if element != "SECTION" {
				action = "document/new_requirement"
				params.Set("element_type", element)
				label = element
			}
			links = append(links, map[string]any{
				"where":  place.whereto,
				"href":   actionURL(action, params),
				"testid": fmt.Sprintf("node-add-%s-%s-action", strings.ToLower(element), place.testid),
				"label":  label + " " + place.label,
			})
		}
	}
	return links
}

func (p *page) cardControls(node *model.Node) (string, error) {
	if !p.view.Server() {
		return "", nil
	}
	return p.component(components.NameCardControls, render.Namespace{
		"role":      roleOf(node),
		"find_href": p.view.RenderNodeLink(node),
		"find_icon": components.Icon("find"),
		"more_href": actionURL("show_full_node", url.Values{"reference_mid": {node.MID}}),
		"more_icon": components.Icon("show_more"),
	})
}
