package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// nodeRef is the query of node scoped actions.
type nodeRef struct {
	NodeID             string `mapstructure:"node_id"`
	ReferenceMID       string `mapstructure:"reference_mid"`
	ContextDocumentMID string `mapstructure:"context_document_mid"`
}

// newNodeInput carries both the add-menu query and the posted form.
type newNodeInput struct {
	ReferenceMID       string `mapstructure:"reference_mid"`
	Whereto            string `mapstructure:"whereto"`
	ContextDocumentMID string `mapstructure:"context_document_mid"`
	ElementType        string `mapstructure:"element_type"`
	NodeType           string `mapstructure:"node_type"`
	UID                string `mapstructure:"UID"`
	Title              string `mapstructure:"TITLE"`
	Statement          string `mapstructure:"STATEMENT"`
	Rationale          string `mapstructure:"RATIONALE"`
}

type editNodeInput struct {
	NodeID             string `mapstructure:"node_id"`
	ContextDocumentMID string `mapstructure:"context_document_mid"`
	UID                string `mapstructure:"UID"`
	Title              string `mapstructure:"TITLE"`
	Statement          string `mapstructure:"STATEMENT"`
	Rationale          string `mapstructure:"RATIONALE"`
}

type documentConfigInput struct {
	DocumentMID    string `mapstructure:"document_mid"`
	Title          string `mapstructure:"TITLE"`
	UID            string `mapstructure:"UID"`
	Version        string `mapstructure:"VERSION"`
	Classification string `mapstructure:"CLASSIFICATION"`
	Prefix         string `mapstructure:"PREFIX"`
}

type newDocumentInput struct {
	Title string `mapstructure:"TITLE"`
	Path  string `mapstructure:"PATH"`
}

// decodeForm parses the query and the posted body into out. Repeated keys
// keep their first value.
func decodeForm(r *http.Request, out any) error {
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("parse form: %w", err)
	}
	values := make(map[string]any, len(r.Form))
	for key, vals := range r.Form {
		if len(vals) > 0 {
			values[key] = vals[0]
		}
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(values); err != nil {
		return fmt.Errorf("decode form: %w", err)
	}
	return nil
}

// fieldErrors maps form field names to messages.
type fieldErrors map[string]string

func (fe fieldErrors) require(field, value, message string) {
	if strings.TrimSpace(value) == "" {
		fe[field] = message
	}
}
