package components

const (
	componentPrefix = "templates/components/"
	screenPrefix    = "templates/screens/"
)

// Stylesheet and script names served from the embedded asset bundle.
const (
	StylesheetName = "reqdoc.css"
	ScriptName     = "reqdoc.js"
)

type entry struct {
	name     string
	template string
	partial  string
	required []string
}

var defaultEntries = []entry{
	{NameButtonCancel, componentPrefix + "button_cancel.tmpl", "buttons.cancel", nil},
	{NameButtonConfirm, componentPrefix + "button_confirm.tmpl", "buttons.confirm", []string{"href"}},
	{NameButtonDelete, componentPrefix + "button_delete.tmpl", "buttons.delete", []string{"href"}},
	{NameButtonSubmit, componentPrefix + "button_submit.tmpl", "buttons.submit", nil},
	{NameButtonDiff, componentPrefix + "button_diff.tmpl", "buttons.diff", []string{"href", "icon"}},
	{NameBadge, componentPrefix + "badge.tmpl", "badge", nil},
	{NameModal, componentPrefix + "modal.tmpl", "modal", []string{"context", "header", "footer"}},
	{NameConfirm, componentPrefix + "confirm.tmpl", "confirm", []string{"message"}},
	{NameForm, componentPrefix + "form.tmpl", "form", []string{"id", "action"}},

	{NameFieldShell, componentPrefix + "field_shell.tmpl", "fields.shell", nil},
	{NameFieldTitle, componentPrefix + "field_title.tmpl", "fields.title", []string{"field"}},
	{NameFieldUID, componentPrefix + "field_uid.tmpl", "fields.uid", []string{"field"}},
	{NameFieldUIDMeta, componentPrefix + "field_uid_standalone.tmpl", "fields.uid_standalone", []string{"field"}},
	{NameFieldLabeled, componentPrefix + "field_labeled.tmpl", "fields.labeled", []string{"field", "data_label"}},
	{NameFieldTruncated, componentPrefix + "field_truncated.tmpl", "fields.truncated", []string{"text"}},
	{NameFieldText, componentPrefix + "field_text.tmpl", "fields.text", []string{"field"}},
	{NameFieldLinks, componentPrefix + "field_links.tmpl", "fields.links", nil},
	{NameFieldFiles, componentPrefix + "field_files.tmpl", "fields.files", []string{"files"}},
	{NameFieldSectionTitle, componentPrefix + "field_section_title.tmpl", "fields.section_title", []string{"field", "h_level"}},
	{NameDocumentMeta, componentPrefix + "document_meta.tmpl", "fields.document_meta", nil},
	{NameDocumentTitle, componentPrefix + "document_title.tmpl", "fields.document_title", []string{"title"}},

	{NameAnchor, componentPrefix + "anchor.tmpl", "nodes.anchor", []string{"anchor", "role"}},
	{NameCopyStableLink, componentPrefix + "copy_stable_link.tmpl", "nodes.copy_stable_link", []string{"path", "icon"}},
	{NameNodeFull, componentPrefix + "node_full.tmpl", "nodes.full", []string{"mid", "role", "testid"}},
	{NameNodeCard, componentPrefix + "node_card.tmpl", "nodes.card", []string{"role", "testid"}},
	{NameNodeTiny, componentPrefix + "node_tiny.tmpl", "nodes.tiny", []string{"role"}},
	{NameNodeReadonly, componentPrefix + "node_readonly.tmpl", "nodes.readonly", []string{"role"}},
	{NameNodeRoot, componentPrefix + "node_root.tmpl", "nodes.root", []string{"mid"}},
	{NameNodeContent, componentPrefix + "node_content.tmpl", "nodes.content", []string{"style"}},
	{NameSection, componentPrefix + "section.tmpl", "nodes.section", nil},
	{NameNodeControls, componentPrefix + "node_controls.tmpl", "nodes.controls", []string{"role"}},
	{NameCardControls, componentPrefix + "card_controls.tmpl", "nodes.card_controls", []string{"role", "find_href", "more_href"}},

	{NameDocumentContent, screenPrefix + "document_content.tmpl", "screens.document_content", nil},
	{NameTOC, screenPrefix + "toc.tmpl", "screens.toc", nil},
	{NameTOCItem, screenPrefix + "toc_item.tmpl", "screens.toc_item", []string{"mid", "anchor"}},
	{NameProjectIndex, screenPrefix + "project_index.tmpl", "screens.project_index", nil},
	{NameProjectTree, screenPrefix + "project_tree.tmpl", "screens.project_tree", nil},
	{NameProjectTreeFolder, screenPrefix + "project_tree_folder.tmpl", "screens.project_tree_folder", []string{"name"}},
	{NameProjectTreeFile, screenPrefix + "project_tree_file.tmpl", "screens.project_tree_file", []string{"href", "file_name"}},
	{NameMatrix, screenPrefix + "matrix.tmpl", "screens.matrix", nil},
	{NameMatrixRequirement, screenPrefix + "matrix_requirement.tmpl", "screens.matrix_requirement", nil},
	{NameMatrixFile, screenPrefix + "matrix_file.tmpl", "screens.matrix_file", []string{"href", "path"}},
	{NameCoverage, screenPrefix + "coverage.tmpl", "screens.coverage", nil},
	{NameCoverageFolder, screenPrefix + "coverage_folder.tmpl", "screens.coverage_folder", []string{"name"}},
	{NameCoverageFile, screenPrefix + "coverage_file.tmpl", "screens.coverage_file", []string{"name", "path"}},
	{NameValueBar, screenPrefix + "value_bar.tmpl", "screens.value_bar", nil},
	{NameDiff, screenPrefix + "diff.tmpl", "screens.diff", nil},
	{NameDiffDocument, screenPrefix + "diff_document.tmpl", "screens.diff_document", []string{"title"}},
	{NameDiffNode, screenPrefix + "diff_node.tmpl", "screens.diff_node", []string{"badge"}},
	{NameDiffFields, screenPrefix + "diff_fields.tmpl", "screens.diff_fields", nil},
	{NameChangelog, screenPrefix + "changelog.tmpl", "screens.changelog", nil},
	{NameChangelogChange, screenPrefix + "changelog_change.tmpl", "screens.changelog_change", []string{"number", "type"}},
	{NameTableKeyValue, componentPrefix + "table_key_value.tmpl", "table_key_value", []string{"key"}},
	{NamePDF, screenPrefix + "pdf.tmpl", "screens.pdf", nil},
	{NamePDFTOC, screenPrefix + "pdf_toc.tmpl", "screens.pdf_toc", nil},
	{NamePDFFrontpage, screenPrefix + "pdf_frontpage.tmpl", "screens.pdf_frontpage", nil},
	{NamePDFHeader, screenPrefix + "pdf_header.tmpl", "screens.pdf_header", nil},
	{NamePDFFooter, screenPrefix + "pdf_footer.tmpl", "screens.pdf_footer", []string{"date"}},
}

// NewDefaultRegistry constructs a registry pre-populated with the built-in
// components used by the web renderer. Every template-backed component can be
// overridden per theme through its partial key.
func NewDefaultRegistry() *Registry {
	registry := New()

	registry.MustRegister(NameIcon, Descriptor{
		Required: []string{"name"},
		Renderer: iconRenderer,
	})
	for _, e := range defaultEntries {
		registry.MustRegister(e.name, Descriptor{
			Template: e.template,
			Partial:  e.partial,
			Required: e.required,
		})
	}

	registry.MustRegister(NameLayout, Descriptor{
		Template:    screenPrefix + "layout.tmpl",
		Partial:     "layout",
		Required:    []string{"title"},
		Stylesheets: []string{StylesheetName},
		Scripts:     []Script{{Src: ScriptName, Defer: true}},
	})
	return registry
}
