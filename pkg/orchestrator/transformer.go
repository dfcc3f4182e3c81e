package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-reqdoc/pkg/model"
)

// Transformer mutates a project before it is indexed and rendered.
type Transformer interface {
	Transform(ctx context.Context, project *model.Project) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, project *model.Project) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, project *model.Project) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, project)
}

// PresetTransformer applies declarative overrides loaded from a YAML or JSON
// document:
//
//	title: Release 2.0
//	features:
//	  enable: [TRACEABILITY_MATRIX_SCREEN]
//	  disable: [DIFF]
//	requirement_style: table
//	documents:
//	  requirements/system.sdoc.yaml:
//	    title: System
//	    version: "2.0"
type PresetTransformer struct {
	document presetDocument
}

type presetDocument struct {
	Title            string                   `yaml:"title"`
	Features         presetFeatures           `yaml:"features"`
	RequirementStyle string                   `yaml:"requirement_style"`
	Documents        map[string]documentPatch `yaml:"documents"`
}

type presetFeatures struct {
	Enable  []string `yaml:"enable"`
	Disable []string `yaml:"disable"`
}

type documentPatch struct {
	Title            string `yaml:"title"`
	Version          string `yaml:"version"`
	Classification   string `yaml:"classification"`
	RequirementStyle string `yaml:"requirement_style"`
}

// NewPresetTransformer constructs a transformer from raw YAML or JSON bytes.
func NewPresetTransformer(data []byte) (*PresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("preset transformer: document is empty")
	}
	var document presetDocument
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("preset transformer: parse document: %w", err)
	}
	return &PresetTransformer{document: document}, nil
}

// NewPresetTransformerFromFS loads a preset document from fsys.
func NewPresetTransformerFromFS(fsys fs.FS, path string) (*PresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("preset transformer: read %s: %w", path, err)
	}
	return NewPresetTransformer(data)
}

// Transform applies the overrides. A patch for an unknown document is an
// error so typos do not pass silently.
func (t *PresetTransformer) Transform(ctx context.Context, project *model.Project) error {
	if project == nil {
		return errors.New("preset transformer: project is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if t.document.Title != "" {
		project.Config.Title = t.document.Title
	}
	project.Config.Features = toggleFeatures(project.Config.Features, t.document.Features)

	for _, doc := range project.Documents {
		if t.document.RequirementStyle != "" {
			doc.Config.RequirementStyle = t.document.RequirementStyle
		}
	}
	for ref, patch := range t.document.Documents {
		doc, err := FindDocument(project, ref)
		if err != nil {
			return fmt.Errorf("preset transformer: %w", err)
		}
		applyDocumentPatch(doc, patch)
	}
	for _, doc := range project.Documents {
		if err := doc.Validate(); err != nil {
			return fmt.Errorf("preset transformer: %w", err)
		}
	}
	return nil
}

func toggleFeatures(current []string, toggles presetFeatures) []string {
	out := make([]string, 0, len(current)+len(toggles.Enable))
	disabled := func(feature string) bool {
		return slices.ContainsFunc(toggles.Disable, func(d string) bool {
			return strings.EqualFold(strings.TrimSpace(d), feature)
		})
	}
	has := func(feature string) bool {
		return slices.ContainsFunc(out, func(f string) bool {
			return strings.EqualFold(f, feature)
		})
	}
	for _, feature := range append(slices.Clone(current), toggles.Enable...) {
		feature = strings.ToUpper(strings.TrimSpace(feature))
		if feature == "" || disabled(feature) || has(feature) {
			continue
		}
		out = append(out, feature)
	}
	return out
}

func applyDocumentPatch(doc *model.Document, patch documentPatch) {
	if patch.Title != "" {
		doc.Title = patch.Title
	}
	if patch.Version != "" {
		doc.Config.Version = patch.Version
	}
	if patch.Classification != "" {
		doc.Config.Classification = patch.Classification
	}
	if patch.RequirementStyle != "" {
		doc.Config.RequirementStyle = patch.RequirementStyle
	}
}
