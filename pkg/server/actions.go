package server

import (
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/goliatone/go-reqdoc/pkg/loader"
	"github.com/goliatone/go-reqdoc/pkg/model"
	"github.com/goliatone/go-reqdoc/pkg/renderers/web"
	"github.com/goliatone/go-reqdoc/pkg/turbo"
)

const (
	actionCreateNode     = "/actions/document/create_node"
	actionUpdateNode     = "/actions/document/update_node"
	actionSaveConfig     = "/actions/document/save_config"
	actionCreateDocument = "/actions/project_index/create_document"
)

// respondStream builds a Turbo-Stream response under the read lock.
func (s *Server) respondStream(w http.ResponseWriter, r *http.Request, status int, build func(snap Snapshot) ([]byte, error)) {
	var body []byte
	err := s.store.Read(func(snap Snapshot) error {
		var err error
		body, err = build(snap)
		return err
	})
	if err != nil {
		s.httpError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", turbo.ContentType)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (s *Server) streamForm(w http.ResponseWriter, r *http.Request, status int, form web.Form) {
	s.respondStream(w, r, status, func(Snapshot) ([]byte, error) {
		return s.html.StreamForm(r.Context(), form, s.renderOpts)
	})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := decodeForm(r, out); err != nil {
		s.httpError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return false
	}
	return true
}

// contextDocument is the document the user is looking at, falling back to
// the document that owns the node.
func contextDocument(snap Snapshot, contextMID string, node *model.Node) (*model.Document, error) {
	if doc, ok := snap.Project.DocumentByMID(contextMID); ok {
		return doc, nil
	}
	if node != nil && node.Document() != nil {
		return node.Document(), nil
	}
	return nil, fmt.Errorf("%w: document %q", ErrNotFound, contextMID)
}

func isNewRequirement(r *http.Request, form newNodeInput) bool {
	if form.NodeType != "" {
		return form.NodeType == string(model.NodeTypeRequirement)
	}
	return strings.HasSuffix(r.URL.Path, "/new_requirement")
}

func nodeFormFields(requirement bool, form newNodeInput, errs fieldErrors) []web.FormField {
	if !requirement {
		return []web.FormField{{Name: "TITLE", Value: form.Title, Error: errs["TITLE"]}}
	}
	return []web.FormField{
		{Name: "UID", Value: form.UID, Error: errs["UID"]},
		{Name: "TITLE", Value: form.Title, Error: errs["TITLE"]},
		{Name: "STATEMENT", Value: form.Statement, Error: errs["STATEMENT"], Multiline: true},
		{Name: "RATIONALE", Value: form.Rationale, Error: errs["RATIONALE"], Multiline: true},
	}
}

func (s *Server) nodeForm(form newNodeInput, requirement bool, errs fieldErrors) web.Form {
	nodeType, header := string(model.NodeTypeSection), "Add section"
	if requirement {
		nodeType = string(model.NodeTypeRequirement)
		header = "Add " + strings.ToLower(firstNonEmpty(form.ElementType, "requirement"))
	}
	hidden := map[string]string{
		"reference_mid":        form.ReferenceMID,
		"whereto":              form.Whereto,
		"context_document_mid": form.ContextDocumentMID,
		"node_type":            nodeType,
	}
	if requirement {
		hidden["element_type"] = strings.ToUpper(firstNonEmpty(form.ElementType, "REQUIREMENT"))
	}
	return web.Form{
		ID:          "new_node",
		Header:      header,
		Action:      actionCreateNode,
		Fields:      nodeFormFields(requirement, form, errs),
		Hidden:      hidden,
		SubmitLabel: "Add",
	}
}

// newNodeForm opens the add section or add requirement dialog.
func (s *Server) newNodeForm(w http.ResponseWriter, r *http.Request) {
	var form newNodeInput
	if !s.decode(w, r, &form) {
		return
	}
	err := s.store.Read(func(snap Snapshot) error {
		if _, ok := snap.Project.DocumentByMID(form.ReferenceMID); ok {
			return nil
		}
		if _, ok := snap.Project.FindNode(form.ReferenceMID); !ok {
			return fmt.Errorf("%w: node %q", ErrNotFound, form.ReferenceMID)
		}
		return nil
	})
	if err != nil {
		s.httpError(w, r, err)
		return
	}
	s.streamForm(w, r, http.StatusOK, s.nodeForm(form, isNewRequirement(r, form), nil))
}

// createNode inserts the node posted by the add dialog.
func (s *Server) createNode(w http.ResponseWriter, r *http.Request) {
	var form newNodeInput
	if !s.decode(w, r, &form) {
		return
	}
	requirement := isNewRequirement(r, form)
	errs := fieldErrors{}
	if requirement {
		errs.require("STATEMENT", form.Statement, "Statement must not be empty.")
		s.checkUID(errs, form.UID, "")
	} else {
		errs.require("TITLE", form.Title, "Section title must not be empty.")
	}
	if len(errs) > 0 {
		s.streamForm(w, r, http.StatusUnprocessableEntity, s.nodeForm(form, requirement, errs))
		return
	}

	in := NewNode{
		Type:      model.NodeTypeSection,
		Title:     form.Title,
		Reference: form.ReferenceMID,
		Whereto:   form.Whereto,
	}
	if requirement {
		in.Type = model.NodeTypeRequirement
		in.ElementTag = strings.ToUpper(firstNonEmpty(form.ElementType, "REQUIREMENT"))
		in.UID = form.UID
		in.Statement = form.Statement
		in.Rationale = form.Rationale
	}
	_, created, err := s.store.InsertNode(in)
	s.metrics.action("create_node", err)
	if err != nil {
		s.httpError(w, r, err)
		return
	}
	s.streamNewNode(w, r, form.ContextDocumentMID, created.MID)
}

// cloneRequirement copies a requirement right below itself.
func (s *Server) cloneRequirement(w http.ResponseWriter, r *http.Request) {
	var ref nodeRef
	if !s.decode(w, r, &ref) {
		return
	}
	_, created, err := s.store.CloneNode(firstNonEmpty(ref.ReferenceMID, ref.NodeID))
	s.metrics.action("clone_requirement", err)
	if err != nil {
		s.httpError(w, r, err)
		return
	}
	s.streamNewNode(w, r, ref.ContextDocumentMID, created.MID)
}

func (s *Server) streamNewNode(w http.ResponseWriter, r *http.Request, contextMID, mid string) {
	s.respondStream(w, r, http.StatusOK, func(snap Snapshot) ([]byte, error) {
		node, ok := snap.Project.FindNode(mid)
		if !ok {
			return nil, fmt.Errorf("%w: node %q", ErrNotFound, mid)
		}
		doc, err := contextDocument(snap, contextMID, node)
		if err != nil {
			return nil, err
		}
		obj, err := s.viewFor(snap, false)
		if err != nil {
			return nil, err
		}
		return s.html.StreamNewSection(r.Context(), obj.ForDocument(doc), node, s.renderOpts)
	})
}

// checkUID records an error when uid is taken by a node other than selfMID.
func (s *Server) checkUID(errs fieldErrors, uid, selfMID string) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return
	}
	if other, ok := s.store.LookupUID(uid); ok && other.MID != selfMID {
		errs["UID"] = fmt.Sprintf("UID %s is already used.", uid)
	}
}

func deleteHref(node *model.Node, contextMID string) string {
	kind := "requirement"
	if node.IsSection() {
		kind = "section"
	}
	params := url.Values{"node_id": {node.MID}, "context_document_mid": {contextMID}}
	return "/actions/document/delete_" + kind + "?" + params.Encode()
}

func editFormFields(node *model.Node, form editNodeInput, errs fieldErrors) []web.FormField {
	if node.IsSection() {
		return []web.FormField{{Name: "TITLE", Value: form.Title, Error: errs["TITLE"]}}
	}
	return []web.FormField{
		{Name: "UID", Value: form.UID, Error: errs["UID"]},
		{Name: "TITLE", Value: form.Title, Error: errs["TITLE"]},
		{Name: "STATEMENT", Value: form.Statement, Error: errs["STATEMENT"], Multiline: true},
		{Name: "RATIONALE", Value: form.Rationale, Error: errs["RATIONALE"], Multiline: true},
	}
}

func editForm(node *model.Node, form editNodeInput, errs fieldErrors) web.Form {
	return web.Form{
		ID:     "edit_node",
		Header: "Edit " + strings.ToLower(node.TypeString()),
		Action: actionUpdateNode,
		Fields: editFormFields(node, form, errs),
		Hidden: map[string]string{
			"node_id":              node.MID,
			"context_document_mid": form.ContextDocumentMID,
		},
		DeleteHref: deleteHref(node, form.ContextDocumentMID),
	}
}

// editNodeForm opens the edit dialog of a section or requirement.
func (s *Server) editNodeForm(w http.ResponseWriter, r *http.Request) {
	var ref nodeRef
	if !s.decode(w, r, &ref) {
		return
	}
	s.respondStream(w, r, http.StatusOK, func(snap Snapshot) ([]byte, error) {
		node, ok := snap.Project.FindNode(ref.NodeID)
		if !ok {
			return nil, fmt.Errorf("%w: node %q", ErrNotFound, ref.NodeID)
		}
		form := editNodeInput{
			NodeID:             node.MID,
			ContextDocumentMID: ref.ContextDocumentMID,
			UID:                node.UID,
			Title:              node.Title,
			Statement:          node.Statement,
			Rationale:          node.Rationale,
		}
		return s.html.StreamForm(r.Context(), editForm(node, form, nil), s.renderOpts)
	})
}

// updateNode saves the edit dialog.
func (s *Server) updateNode(w http.ResponseWriter, r *http.Request) {
	var form editNodeInput
	if !s.decode(w, r, &form) {
		return
	}
	var node *model.Node
	if err := s.store.Read(func(snap Snapshot) error {
		var ok bool
		if node, ok = snap.Project.FindNode(form.NodeID); !ok {
			return fmt.Errorf("%w: node %q", ErrNotFound, form.NodeID)
		}
		return nil
	}); err != nil {
		s.httpError(w, r, err)
		return
	}

	errs := fieldErrors{}
	if node.IsSection() {
		errs.require("TITLE", form.Title, "Section title must not be empty.")
	} else {
		errs.require("STATEMENT", form.Statement, "Statement must not be empty.")
		s.checkUID(errs, form.UID, node.MID)
	}
	if len(errs) > 0 {
		s.streamForm(w, r, http.StatusUnprocessableEntity, editForm(node, form, errs))
		return
	}

	_, _, err := s.store.UpdateNode(NodeEdit{
		MID:       form.NodeID,
		UID:       form.UID,
		Title:     form.Title,
		Statement: form.Statement,
		Rationale: form.Rationale,
	})
	s.metrics.action("update_node", err)
	if err != nil {
		s.httpError(w, r, err)
		return
	}
	s.respondStream(w, r, http.StatusOK, func(snap Snapshot) ([]byte, error) {
		node, ok := snap.Project.FindNode(form.NodeID)
		if !ok {
			return nil, fmt.Errorf("%w: node %q", ErrNotFound, form.NodeID)
		}
		doc, err := contextDocument(snap, form.ContextDocumentMID, node)
		if err != nil {
			return nil, err
		}
		obj, err := s.viewFor(snap, false)
		if err != nil {
			return nil, err
		}
		return s.html.StreamNodeUpdated(r.Context(), obj.ForDocument(doc), node, s.renderOpts)
	})
}

// confirmDelete opens the confirmation dialog. Nodes other requirements
// depend on get the reasons listed instead of a confirm button.
func (s *Server) confirmDelete(w http.ResponseWriter, r *http.Request) {
	var ref nodeRef
	if !s.decode(w, r, &ref) {
		return
	}
	blockers, err := s.store.DeleteBlockers(ref.NodeID)
	if err != nil {
		s.httpError(w, r, err)
		return
	}
	confirm := web.Confirm{
		Href:   r.URL.Path + "?" + r.URL.RawQuery,
		Method: "delete",
		Errors: blockers,
	}
	s.respondStream(w, r, http.StatusOK, func(Snapshot) ([]byte, error) {
		return s.html.StreamConfirmDelete(r.Context(), confirm, s.renderOpts)
	})
}

// deleteNode removes the node and answers with the frame removal.
func (s *Server) deleteNode(w http.ResponseWriter, r *http.Request) {
	var ref nodeRef
	if !s.decode(w, r, &ref) {
		return
	}
	_, owner, err := s.store.DeleteNode(ref.NodeID)
	s.metrics.action("delete_node", err)
	if err != nil {
		s.httpError(w, r, err)
		return
	}
	s.respondStream(w, r, http.StatusOK, func(snap Snapshot) ([]byte, error) {
		doc, ok := snap.Project.DocumentByMID(ref.ContextDocumentMID)
		if !ok {
			doc = owner
		}
		obj, err := s.viewFor(snap, false)
		if err != nil {
			return nil, err
		}
		return s.html.StreamNodeRemoved(r.Context(), obj.ForDocument(doc), ref.NodeID, s.renderOpts)
	})
}

func configForm(form documentConfigInput, errs fieldErrors) web.Form {
	return web.Form{
		ID:     "edit_config",
		Header: "Edit document",
		Action: actionSaveConfig,
		Fields: []web.FormField{
			{Name: "TITLE", Value: form.Title, Error: errs["TITLE"]},
			{Name: "UID", Value: form.UID, Error: errs["UID"]},
			{Name: "VERSION", Value: form.Version},
			{Name: "CLASSIFICATION", Value: form.Classification},
			{Name: "PREFIX", Value: form.Prefix},
		},
		Hidden: map[string]string{"document_mid": form.DocumentMID},
	}
}

// editConfigForm opens the document config dialog.
func (s *Server) editConfigForm(w http.ResponseWriter, r *http.Request) {
	var form documentConfigInput
	if !s.decode(w, r, &form) {
		return
	}
	s.respondStream(w, r, http.StatusOK, func(snap Snapshot) ([]byte, error) {
		doc, ok := snap.Project.DocumentByMID(form.DocumentMID)
		if !ok {
			return nil, fmt.Errorf("%w: document %q", ErrNotFound, form.DocumentMID)
		}
		current := documentConfigInput{
			DocumentMID:    doc.MID,
			Title:          doc.Title,
			UID:            doc.Config.UID,
			Version:        doc.Config.Version,
			Classification: doc.Config.Classification,
			Prefix:         doc.Config.Prefix,
		}
		return s.html.StreamForm(r.Context(), configForm(current, nil), s.renderOpts)
	})
}

// saveConfig stores the document config dialog.
func (s *Server) saveConfig(w http.ResponseWriter, r *http.Request) {
	var form documentConfigInput
	if !s.decode(w, r, &form) {
		return
	}
	errs := fieldErrors{}
	errs.require("TITLE", form.Title, "Document title must not be empty.")
	if len(errs) > 0 {
		s.streamForm(w, r, http.StatusUnprocessableEntity, configForm(form, errs))
		return
	}
	_, _, err := s.store.UpdateDocumentConfig(DocumentEdit{
		MID:            form.DocumentMID,
		Title:          form.Title,
		UID:            form.UID,
		Version:        form.Version,
		Classification: form.Classification,
		Prefix:         form.Prefix,
	})
	s.metrics.action("save_config", err)
	if err != nil {
		s.httpError(w, r, err)
		return
	}
	s.respondStream(w, r, http.StatusOK, func(snap Snapshot) ([]byte, error) {
		doc, ok := snap.Project.DocumentByMID(form.DocumentMID)
		if !ok {
			return nil, fmt.Errorf("%w: document %q", ErrNotFound, form.DocumentMID)
		}
		obj, err := s.viewFor(snap, false)
		if err != nil {
			return nil, err
		}
		return s.html.StreamSaveDocumentConfig(r.Context(), obj.ForDocument(doc), s.renderOpts)
	})
}

func documentForm(form newDocumentInput, errs fieldErrors) web.Form {
	return web.Form{
		ID:     "new_document",
		Header: "Add document",
		Action: actionCreateDocument,
		Fields: []web.FormField{
			{Name: "TITLE", Value: form.Title, Error: errs["TITLE"]},
			{Name: "PATH", Label: "File path", Value: form.Path, Error: errs["PATH"]},
		},
		SubmitLabel: "Add",
	}
}

// newDocumentForm opens the add document dialog.
func (s *Server) newDocumentForm(w http.ResponseWriter, r *http.Request) {
	s.streamForm(w, r, http.StatusOK, documentForm(newDocumentInput{}, nil))
}

// createDocument adds an empty document to the project.
func (s *Server) createDocument(w http.ResponseWriter, r *http.Request) {
	var form newDocumentInput
	if !s.decode(w, r, &form) {
		return
	}
	errs := fieldErrors{}
	errs.require("TITLE", form.Title, "Document title must not be empty.")
	docPath := strings.TrimSpace(form.Path)
	switch {
	case docPath == "":
		errs["PATH"] = "Document path must not be empty."
	case path.IsAbs(docPath) || strings.HasPrefix(path.Clean(docPath), ".."):
		errs["PATH"] = "Document path must stay inside the project folder."
	case !loader.IsDocumentFile(docPath):
		errs["PATH"] = fmt.Sprintf("Document path must end in one of %s.", strings.Join(loader.DocumentExtensions, ", "))
	}
	if len(errs) > 0 {
		s.streamForm(w, r, http.StatusUnprocessableEntity, documentForm(form, errs))
		return
	}

	_, _, err := s.store.CreateDocument(form.Title, path.Clean(docPath))
	s.metrics.action("create_document", err)
	if err != nil {
		s.httpError(w, r, err)
		return
	}
	s.respondStream(w, r, http.StatusOK, func(snap Snapshot) ([]byte, error) {
		obj, err := s.viewFor(snap, false)
		if err != nil {
			return nil, err
		}
		return s.html.StreamCreateDocument(r.Context(), obj, s.renderOpts)
	})
}
