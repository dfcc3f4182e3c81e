package diff_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-reqdoc/pkg/diff"
	"github.com/goliatone/go-reqdoc/pkg/model"
	"github.com/goliatone/go-reqdoc/pkg/testsupport"
)

func modifiedProject(t *testing.T) *model.Project {
	t.Helper()
	project := testsupport.NewSampleProject()
	system := project.Documents[0]

	overview := system.Nodes[0]
	boot := overview.Children[1]
	boot.Statement = "The system shall boot in under 3 seconds."
	overview.Children = overview.Children[:2] // drops SYS-2

	interfaces := system.Nodes[1]
	interfaces.Children = append(interfaces.Children, &model.Node{
		MID:        "req00000000000000000000000sys4",
		UID:        "SYS-4",
		Type:       model.NodeTypeRequirement,
		ElementTag: "REQUIREMENT",
		Title:      "Ethernet",
	})
	interfaces.Title = "External Interfaces"

	if err := project.Index(); err != nil {
		t.Fatalf("index modified project: %v", err)
	}
	return project
}

func TestCompare_DetectsNodeChanges(t *testing.T) {
	lhs := testsupport.SampleProject(t)
	rhs := modifiedProject(t)

	cs, err := diff.Compare(lhs, rhs)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if cs.Empty() {
		t.Fatalf("expected changes")
	}
	if len(cs.Documents) != 1 || cs.Documents[0].Path != testsupport.SystemDocPath {
		t.Fatalf("expected only the system document to change, got %+v", cs.Documents)
	}

	var got []string
	for _, entry := range cs.Changelog() {
		label := string(entry.Type)
		if entry.Node != nil {
			label += " " + entry.Node.Node().MID
		}
		got = append(got, label)
	}
	want := []string{
		"Document modified",
		"Requirement modified " + testsupport.MIDBoot,
		"Requirement removed " + testsupport.MIDShutdown,
		"Section modified " + testsupport.MIDInterfaces,
		"Requirement added req00000000000000000000000sys4",
	}
	if d := cmp.Diff(want, got); d != "" {
		t.Fatalf("changelog mismatch (-want +got):\n%s", d)
	}

	if cs.Stats.DocumentsModified != 1 {
		t.Fatalf("expected one modified document, got %d", cs.Stats.DocumentsModified)
	}
	if d := cmp.Diff(diff.Counter{Modified: 1}, cs.Stats.Sections); d != "" {
		t.Fatalf("section stats mismatch (-want +got):\n%s", d)
	}
	if d := cmp.Diff(&diff.Counter{Added: 1, Removed: 1, Modified: 1}, cs.Stats.Requirements["REQUIREMENT"]); d != "" {
		t.Fatalf("requirement stats mismatch (-want +got):\n%s", d)
	}
	if d := cmp.Diff([]string{"REQUIREMENT"}, cs.Stats.RequirementTags()); d != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", d)
	}
}

func TestCompare_FieldChangesCarryInlineDiff(t *testing.T) {
	cs, err := diff.Compare(testsupport.SampleProject(t), modifiedProject(t))
	if err != nil {
		t.Fatalf("compare: %v", err)
	}

	change, ok := cs.FindNode(diff.Left, testsupport.MIDBoot)
	if !ok {
		t.Fatalf("expected change for boot requirement on the left")
	}
	if right, ok := cs.FindNode(diff.Right, testsupport.MIDBoot); !ok || right != change {
		t.Fatalf("expected the same change on the right side")
	}
	if len(change.FieldChanges) != 1 || change.FieldChanges[0].Name != "STATEMENT" {
		t.Fatalf("expected a single STATEMENT change, got %+v", change.FieldChanges)
	}

	field := change.FieldChanges[0]
	var deleted, inserted string
	for _, seg := range field.LHSSegments {
		if seg.Kind == diff.SegmentDelete {
			deleted += seg.Text
		}
	}
	for _, seg := range field.RHSSegments {
		if seg.Kind == diff.SegmentInsert {
			inserted += seg.Text
		}
	}
	if deleted != "5" || inserted != "3" {
		t.Fatalf("unexpected inline diff: deleted %q inserted %q", deleted, inserted)
	}

	if _, ok := cs.FindNode(diff.Right, testsupport.MIDShutdown); ok {
		t.Fatalf("removed node must not appear on the right side")
	}
}

func TestCompare_MatchesByUIDWhenMIDChanges(t *testing.T) {
	lhs := testsupport.SampleProject(t)
	rhs := testsupport.NewSampleProject()
	rhs.Documents[1].Nodes[0].MID = "req00000000000000000000000other"
	if err := rhs.Index(); err != nil {
		t.Fatalf("index: %v", err)
	}

	cs, err := diff.Compare(lhs, rhs)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if !cs.Empty() {
		t.Fatalf("expected no changes when only the MID differs, got %+v", cs.Changelog())
	}
}

func TestCompare_DocumentOnlyOnOneSide(t *testing.T) {
	lhs := testsupport.SampleProject(t)
	rhs := testsupport.NewSampleProject()
	rhs.Documents = rhs.Documents[:1]
	if err := rhs.Index(); err != nil {
		t.Fatalf("index: %v", err)
	}

	cs, err := diff.Compare(lhs, rhs)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	doc, ok := cs.Document(testsupport.SoftwareDocPath)
	if !ok || !doc.Modified() || doc.RHS != nil {
		t.Fatalf("expected removed software document, got %+v", doc)
	}
	if len(doc.Nodes) != 1 || doc.Nodes[0].Type != diff.RequirementRemoved {
		t.Fatalf("expected one removed requirement, got %+v", doc.Nodes)
	}
}

func TestCompare_RequiresProjects(t *testing.T) {
	if _, err := diff.Compare(nil, testsupport.SampleProject(t)); err == nil {
		t.Fatalf("expected error for nil project")
	}
}

func TestInlineDiff(t *testing.T) {
	left, right := diff.InlineDiff("same", "same")
	want := []diff.Segment{{Kind: diff.SegmentEqual, Text: "same"}}
	if d := cmp.Diff(want, left); d != "" {
		t.Fatalf("left mismatch (-want +got):\n%s", d)
	}
	if d := cmp.Diff(want, right); d != "" {
		t.Fatalf("right mismatch (-want +got):\n%s", d)
	}
}
