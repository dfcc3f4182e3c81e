package testsupport

import (
	"testing"

	"github.com/goliatone/go-reqdoc/pkg/model"
)

// Stable machine ids used by SampleProject so markup assertions can target
// turbo-frame ids and node attributes directly.
const (
	MIDSystemDoc    = "doc0000000000000000000000000sys"
	MIDSoftwareDoc  = "doc00000000000000000000000000sw"
	MIDOverview     = "sec00000000000000000000overview"
	MIDInterfaces   = "sec000000000000000000interfaces"
	MIDIntroText    = "txt0000000000000000000000intro"
	MIDBoot         = "req00000000000000000000000sys1"
	MIDShutdown     = "req00000000000000000000000sys2"
	MIDUSB          = "req00000000000000000000000sys3"
	MIDDriver       = "req000000000000000000000000sw1"
	SystemDocPath   = "requirements/system.sdoc.yaml"
	SoftwareDocPath = "requirements/software.sdoc.yaml"
)

// SampleProject builds a small indexed project with two documents, parent
// relations with and without roles, an inline [LINK: UID], a file relation
// and two scanned source files.
func SampleProject(t testing.TB) *model.Project {
	t.Helper()

	project := NewSampleProject()
	if err := project.Index(); err != nil {
		t.Fatalf("index sample project: %v", err)
	}
	return project
}

// NewSampleProject returns the unindexed sample project for callers outside
// of tests (CLI scaffolding, examples).
func NewSampleProject() *model.Project {
	grammar := []model.GrammarElement{
		{Tag: "REQUIREMENT", Fields: []string{"UID", "STATUS", "TITLE", "STATEMENT", "RATIONALE", "COMMENT", "VERIFICATION", "NOTES"}, Relations: []string{"Parent", "File"}},
		{Tag: "TEXT", Fields: []string{"UID", "STATEMENT"}},
	}

	system := &model.Document{
		MID:   MIDSystemDoc,
		Title: "System Requirements",
		Path:  SystemDocPath,
		Config: model.DocumentConfig{
			UID:            "DOC-SYS",
			Version:        "1.0",
			Date:           "2024-01-01",
			Classification: "Public",
			Custom:         []model.Field{{Name: "OWNER", Value: "Platform Team"}},
		},
		Grammar: grammar,
		Nodes: []*model.Node{
			{
				MID:   MIDOverview,
				Type:  model.NodeTypeSection,
				Title: "Overview",
				Children: []*model.Node{
					{
						MID:        MIDIntroText,
						Type:       model.NodeTypeText,
						ElementTag: "TEXT",
						Statement:  "This section describes the *system* behaviour.",
					},
					{
						MID:        MIDBoot,
						UID:        "SYS-1",
						Type:       model.NodeTypeRequirement,
						ElementTag: "REQUIREMENT",
						Title:      "Boot",
						Status:     "Approved",
						Statement:  "The system shall boot in under 5 seconds.",
						Rationale:  "Users expect a responsive device.",
						Comments:   []string{"Measured on reference hardware."},
						Meta: []model.Field{
							{Name: "VERIFICATION", Value: "Test"},
							{Name: "NOTES", Value: "first line\nsecond line", Multiline: true},
						},
					},
					{
						MID:        MIDShutdown,
						UID:        "SYS-2",
						Type:       model.NodeTypeRequirement,
						ElementTag: "REQUIREMENT",
						Title:      "Shutdown",
						Statement:  "The system shall shut down cleanly after [LINK: SYS-1].",
						Relations: []model.Relation{
							{Type: model.RelationParent, Value: "SYS-1", Role: "Refines"},
						},
					},
				},
			},
			{
				MID:   MIDInterfaces,
				Type:  model.NodeTypeSection,
				Title: "Interfaces",
				Children: []*model.Node{
					{
						MID:        MIDUSB,
						UID:        "SYS-3",
						Type:       model.NodeTypeRequirement,
						ElementTag: "REQUIREMENT",
						Title:      "USB",
						Status:     "Draft",
						Statement:  "The system shall expose a USB port.",
						Relations: []model.Relation{
							{Type: model.RelationFile, Value: "src/usb.go"},
						},
					},
				},
			},
		},
	}

	software := &model.Document{
		MID:     MIDSoftwareDoc,
		Title:   "Software Requirements",
		Path:    SoftwareDocPath,
		Config:  model.DocumentConfig{UID: "DOC-SW", RequirementStyle: model.StyleNarrative},
		Grammar: grammar,
		Nodes: []*model.Node{
			{
				MID:        MIDDriver,
				UID:        "SW-1",
				Type:       model.NodeTypeRequirement,
				ElementTag: "REQUIREMENT",
				Title:      "Driver",
				Statement:  "The software shall provide a USB driver.",
				Relations: []model.Relation{
					{Type: model.RelationParent, Value: "SYS-3"},
				},
			},
		},
	}

	return &model.Project{
		Config: model.ProjectConfig{
			Title:          "Sample Project",
			SourceRootPath: "src",
			Features: []string{
				model.FeatureSourceTraceability,
				model.FeatureMatrix,
				model.FeatureDiff,
			},
		},
		Documents: []*model.Document{system, software},
		SourceFiles: []*model.SourceFile{
			{
				Path:      "src/usb.go",
				Lines:     20,
				CodeLines: 16,
				Covered:   8,
				Functions: []model.Function{
					{Name: "usbInit", LineBegin: 3, LineEnd: 10},
					{Name: "usbClose", LineBegin: 12, LineEnd: 18},
				},
				CoveredFunctions: 1,
				Markers: []model.Marker{
					{UIDs: []string{"SW-1"}, Scope: "range_start", Line: 3, RangeBegin: 3, RangeEnd: 10},
				},
			},
			{
				Path:      "src/util/strings.go",
				Lines:     10,
				CodeLines: 8,
				Functions: []model.Function{
					{Name: "trim", LineBegin: 1, LineEnd: 5},
				},
			},
		},
	}
}
