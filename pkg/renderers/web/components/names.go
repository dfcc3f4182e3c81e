package components

// Canonical component names used by the web renderer and default registry.
const (
	NameIcon          = "icon"
	NameButtonCancel  = "button_cancel"
	NameButtonConfirm = "button_confirm"
	NameButtonDelete  = "button_delete"
	NameButtonSubmit  = "button_submit"
	NameButtonDiff    = "button_diff"
	NameBadge         = "badge"
	NameModal         = "modal"
	NameConfirm       = "confirm"
	NameForm          = "form"

	NameFieldShell        = "field_shell"
	NameFieldTitle        = "field_title"
	NameFieldUID          = "field_uid"
	NameFieldUIDMeta      = "field_uid_standalone"
	NameFieldLabeled      = "field_labeled"
	NameFieldTruncated    = "field_truncated"
	NameFieldText         = "field_text"
	NameFieldLinks        = "field_links"
	NameFieldFiles        = "field_files"
	NameFieldSectionTitle = "field_section_title"
	NameDocumentMeta      = "document_meta"
	NameDocumentTitle     = "document_title"

	NameAnchor         = "anchor"
	NameCopyStableLink = "copy_stable_link"
	NameNodeFull       = "node_full"
	NameNodeCard       = "node_card"
	NameNodeTiny       = "node_tiny"
	NameNodeReadonly   = "node_readonly"
	NameNodeRoot       = "node_root"
	NameNodeContent    = "node_content"
	NameSection        = "section"
	NameNodeControls   = "node_controls"
	NameCardControls   = "card_controls"

	NameLayout             = "layout"
	NameDocumentContent    = "document_content"
	NameTOC                = "toc"
	NameTOCItem            = "toc_item"
	NameProjectIndex       = "project_index"
	NameProjectTree        = "project_tree"
	NameProjectTreeFolder  = "project_tree_folder"
	NameProjectTreeFile    = "project_tree_file"
	NameMatrix             = "traceability_matrix"
	NameMatrixRequirement  = "matrix_requirement"
	NameMatrixFile         = "matrix_file"
	NameCoverage           = "source_coverage"
	NameCoverageFolder     = "coverage_folder"
	NameCoverageFile       = "coverage_file"
	NameValueBar           = "value_bar"
	NameDiff               = "diff"
	NameDiffDocument       = "diff_document"
	NameDiffNode           = "diff_node"
	NameDiffFields         = "diff_fields"
	NameChangelog          = "changelog"
	NameChangelogChange    = "changelog_change"
	NameTableKeyValue      = "table_key_value"
	NamePDF                = "pdf"
	NamePDFTOC             = "pdf_toc"
	NamePDFFrontpage       = "pdf_frontpage"
	NamePDFHeader          = "pdf_header"
	NamePDFFooter          = "pdf_footer"
)
