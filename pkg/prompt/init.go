package prompt

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/goliatone/go-reqdoc/pkg/model"
)

// Styles offered for the first document, in display order.
var Styles = []string{model.StyleTable, model.StyleInline, model.StyleNarrative, model.StylePlain, model.StyleZebra}

// Features offered by the init flow, in display order.
var Features = []string{
	model.FeatureSourceTraceability,
	model.FeatureMatrix,
	model.FeatureDeepTraceability,
	model.FeatureDiff,
	model.FeatureStandalone,
	model.FeatureHTML2PDF,
	model.FeatureMermaid,
}

// InitAnswers holds what `reqdoc init` asks for.
type InitAnswers struct {
	ProjectTitle     string
	DocumentTitle    string
	DocumentPath     string
	UIDPrefix        string
	RequirementStyle string
	Features         []string
	SourceRoot       string
}

// DefaultInitAnswers is used when the user accepts every default.
func DefaultInitAnswers(projectTitle string) InitAnswers {
	return InitAnswers{
		ProjectTitle:     projectTitle,
		DocumentTitle:    "Requirements",
		DocumentPath:     "docs/requirements.sdoc.yaml",
		UIDPrefix:        "REQ-",
		RequirementStyle: model.StyleTable,
		Features:         []string{model.FeatureMatrix},
	}
}

// AskInit walks the user through a new project, starting from defaults.
func AskInit(ctx context.Context, d Driver, defaults InitAnswers) (InitAnswers, error) {
	answers := defaults
	var err error

	if answers.ProjectTitle, err = d.Input(ctx, InputConfig{
		Message:   "Project title",
		Default:   defaults.ProjectTitle,
		Validator: required("project title"),
	}); err != nil {
		return InitAnswers{}, err
	}
	if answers.DocumentTitle, err = d.Input(ctx, InputConfig{
		Message:   "First document title",
		Default:   defaults.DocumentTitle,
		Validator: required("document title"),
	}); err != nil {
		return InitAnswers{}, err
	}
	if answers.DocumentPath, err = d.Input(ctx, InputConfig{
		Message:   "Document file",
		Default:   defaults.DocumentPath,
		Help:      "Relative to the project folder; ends in .sdoc.yaml, .sdoc.yml or .sdoc.json.",
		Validator: ValidateDocumentPath,
	}); err != nil {
		return InitAnswers{}, err
	}
	if answers.UIDPrefix, err = d.Input(ctx, InputConfig{
		Message: "Requirement UID prefix",
		Default: defaults.UIDPrefix,
	}); err != nil {
		return InitAnswers{}, err
	}

	style, err := d.Select(ctx, SelectConfig{
		Message:      "Requirement style",
		Options:      Styles,
		DefaultIndex: indexOf(Styles, defaults.RequirementStyle),
	})
	if err != nil {
		return InitAnswers{}, err
	}
	if style >= 0 && style < len(Styles) {
		answers.RequirementStyle = Styles[style]
	}

	labels := make([]string, len(Features))
	for i, feature := range Features {
		labels[i] = featureLabel(feature)
	}
	var selected []int
	for i, feature := range Features {
		if contains(defaults.Features, feature) {
			selected = append(selected, i)
		}
	}
	picked, err := d.MultiSelect(ctx, SelectConfig{
		Message:  "Features",
		Options:  labels,
		Defaults: selected,
	})
	if err != nil {
		return InitAnswers{}, err
	}
	answers.Features = answers.Features[:0:0]
	for _, idx := range picked {
		if idx >= 0 && idx < len(Features) {
			answers.Features = append(answers.Features, Features[idx])
		}
	}

	answers.SourceRoot = ""
	if contains(answers.Features, model.FeatureSourceTraceability) {
		if answers.SourceRoot, err = d.Input(ctx, InputConfig{
			Message:   "Source folder",
			Default:   firstNonEmpty(defaults.SourceRoot, "src"),
			Validator: required("source folder"),
		}); err != nil {
			return InitAnswers{}, err
		}
	}

	answers.trim()
	return answers, nil
}

// Scaffold builds the project file and the first document from answers.
func (a InitAnswers) Scaffold() (model.ProjectConfig, *model.Document) {
	a.trim()
	cfg := model.ProjectConfig{
		Title:          a.ProjectTitle,
		SourceRootPath: a.SourceRoot,
		Features:       append([]string(nil), a.Features...),
	}
	doc := &model.Document{
		MID:   model.NewMID(),
		Title: a.DocumentTitle,
		Path:  path.Clean(a.DocumentPath),
		Config: model.DocumentConfig{
			Version:          "0.1",
			Prefix:           a.UIDPrefix,
			RequirementStyle: a.RequirementStyle,
		},
		Nodes: []*model.Node{
			{
				MID:   model.NewMID(),
				Type:  model.NodeTypeSection,
				Title: "Introduction",
				Children: []*model.Node{
					{
						MID:       model.NewMID(),
						Type:      model.NodeTypeText,
						Statement: "Describe the scope of " + a.DocumentTitle + ".",
					},
					{
						MID:        model.NewMID(),
						UID:        a.UIDPrefix + "1",
						Type:       model.NodeTypeRequirement,
						ElementTag: "REQUIREMENT",
						Title:      "First requirement",
						Status:     "Draft",
						Statement:  "The system shall do something useful.",
					},
				},
			},
		},
	}
	return cfg, doc
}

// ValidateDocumentPath accepts relative document file paths inside the project.
func ValidateDocumentPath(raw string) error {
	p := strings.TrimSpace(raw)
	switch {
	case p == "":
		return errors.New("document file is required")
	case path.IsAbs(p) || strings.HasPrefix(path.Clean(p), ".."):
		return fmt.Errorf("document file %q must stay inside the project folder", p)
	}
	lower := strings.ToLower(p)
	for _, ext := range []string{".sdoc.yaml", ".sdoc.yml", ".sdoc.json"} {
		if strings.HasSuffix(lower, ext) {
			return nil
		}
	}
	return fmt.Errorf("document file %q must end in .sdoc.yaml, .sdoc.yml or .sdoc.json", p)
}

func (a *InitAnswers) trim() {
	a.ProjectTitle = strings.TrimSpace(a.ProjectTitle)
	a.DocumentTitle = strings.TrimSpace(a.DocumentTitle)
	a.DocumentPath = strings.TrimSpace(a.DocumentPath)
	a.UIDPrefix = strings.TrimSpace(a.UIDPrefix)
	a.SourceRoot = strings.TrimSpace(a.SourceRoot)
}

func featureLabel(feature string) string {
	return strings.ToLower(strings.ReplaceAll(feature, "_", " "))
}

func required(what string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", what)
		}
		return nil
	}
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
