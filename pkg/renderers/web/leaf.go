package web

import (
	"context"
	"sort"

	"github.com/goliatone/go-reqdoc/pkg/model"
	"github.com/goliatone/go-reqdoc/pkg/render"
	"github.com/goliatone/go-reqdoc/pkg/renderers/web/components"
)

const (
	defaultConfirmHeader  = "Are you sure?"
	defaultConfirmMessage = "This is an unrecoverable action."
)

// Confirm describes the confirmation dialog shown before a destructive
// action. Errors, when present, replace the confirm button: the action is
// not allowed.
type Confirm struct {
	Header  string
	Message string
	Href    string
	Method  string
	Label   string
	Errors  []string
}

// ConfirmDialog renders the confirm modal.
func (r *Renderer) ConfirmDialog(ctx context.Context, confirm Confirm, opts render.RenderOptions) (string, error) {
	return r.newPage(ctx, nil, opts).confirmDialog(confirm)
}

func (p *page) confirmDialog(confirm Confirm) (string, error) {
	header := confirm.Header
	if header == "" {
		header = defaultConfirmHeader
	}
	message := confirm.Message
	if message == "" {
		message = defaultConfirmMessage
	}
	errs := render.MergeMessages(nil, confirm.Errors...)

	content, err := p.component(components.NameConfirm, render.Namespace{
		"message": message,
		"errors":  errs,
	})
	if err != nil {
		return "", err
	}

	cancel, err := p.component(components.NameButtonCancel, render.Namespace{})
	if err != nil {
		return "", err
	}
	footer := cancel
	if len(errs) == 0 {
		button, err := p.component(components.NameButtonConfirm, render.Namespace{
			"href":   confirm.Href,
			"method": confirm.Method,
			"label":  confirm.Label,
		})
		if err != nil {
			return "", err
		}
		footer = joinHTML(cancel, button)
	}

	return p.component(components.NameModal, render.Namespace{
		"context": "confirm",
		"header":  header,
		"content": content,
		"footer":  footer,
	})
}

// FormField is one editable input of a Form.
type FormField struct {
	Name      string
	Label     string
	Value     string
	Error     string
	Multiline bool
}

// Form describes an edit dialog. Hidden values are posted back unchanged.
// DeleteHref adds a delete button next to the submit button.
type Form struct {
	ID          string
	Header      string
	Action      string
	Fields      []FormField
	Hidden      map[string]string
	SubmitLabel string
	DeleteHref  string
}

// FormDialog renders a form inside the modal.
func (r *Renderer) FormDialog(ctx context.Context, form Form, opts render.RenderOptions) (string, error) {
	return r.newPage(ctx, nil, opts).formDialog(form)
}

func (p *page) formDialog(form Form) (string, error) {
	id := form.ID
	if id == "" {
		id = "sdoc_form"
	}
	fields := make([]map[string]any, 0, len(form.Fields))
	for _, field := range form.Fields {
		label := field.Label
		if label == "" {
			label = model.FieldHumanTitle(field.Name)
		}
		fields = append(fields, map[string]any{
			"name":      field.Name,
			"label":     label,
			"value":     field.Value,
			"error":     field.Error,
			"multiline": field.Multiline,
		})
	}
	names := make([]string, 0, len(form.Hidden))
	for name := range form.Hidden {
		names = append(names, name)
	}
	sort.Strings(names)
	hidden := make([]map[string]any, 0, len(names))
	for _, name := range names {
		hidden = append(hidden, map[string]any{"name": name, "value": form.Hidden[name]})
	}

	content, err := p.component(components.NameForm, render.Namespace{
		"id":     id,
		"action": form.Action,
		"fields": fields,
		"hidden": hidden,
		"testid": id,
	})
	if err != nil {
		return "", err
	}

	cancel, err := p.component(components.NameButtonCancel, render.Namespace{})
	if err != nil {
		return "", err
	}
	parts := []string{cancel}
	if form.DeleteHref != "" {
		del, err := p.component(components.NameButtonDelete, render.Namespace{"href": form.DeleteHref})
		if err != nil {
			return "", err
		}
		parts = append(parts, del)
	}
	submit, err := p.component(components.NameButtonSubmit, render.Namespace{
		"form":  id,
		"label": form.SubmitLabel,
	})
	if err != nil {
		return "", err
	}
	parts = append(parts, submit)

	return p.component(components.NameModal, render.Namespace{
		"context": "form",
		"header":  form.Header,
		"content": content,
		"footer":  joinHTML(parts...),
	})
}
