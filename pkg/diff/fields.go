package diff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/goliatone/go-reqdoc/pkg/model"
)

// SegmentKind marks whether a segment is shared by both sides or only
// present on one of them.
type SegmentKind string

const (
	SegmentEqual  SegmentKind = "equal"
	SegmentInsert SegmentKind = "insert"
	SegmentDelete SegmentKind = "delete"
)

// Segment is a run of text in an inline diff.
type Segment struct {
	Kind SegmentKind
	Text string
}

type namedValue struct {
	name  string
	value string
}

func documentFields(doc *model.Document) []namedValue {
	fields := []namedValue{
		{"TITLE", doc.Title},
		{"UID", doc.Config.UID},
		{"VERSION", doc.Config.Version},
		{"DATE", doc.Config.Date},
		{"CLASSIFICATION", doc.Config.Classification},
		{"PREFIX", doc.Config.Prefix},
		{"REQUIREMENT_STYLE", doc.Config.RequirementStyle},
	}
	for _, f := range doc.Config.Custom {
		fields = append(fields, namedValue{strings.ToUpper(f.Name), f.Value})
	}
	return fields
}

func nodeFields(n *model.Node) []namedValue {
	fields := []namedValue{
		{"UID", n.UID},
		{"TITLE", n.Title},
		{"STATUS", n.Status},
		{"STATEMENT", n.Statement},
		{"RATIONALE", n.Rationale},
		{"COMMENT", strings.Join(n.Comments, "\n\n")},
	}
	for _, f := range n.Meta {
		fields = append(fields, namedValue{strings.ToUpper(f.Name), f.Value})
	}
	relations := make([]string, 0, len(n.Relations))
	for _, r := range n.Relations {
		entry := string(r.Type) + ":" + r.Value
		if r.Role != "" {
			entry += "[" + r.Role + "]"
		}
		relations = append(relations, entry)
	}
	fields = append(fields, namedValue{"RELATIONS", strings.Join(relations, ", ")})
	return fields
}

// compareFields pairs fields by name; a field missing on one side compares
// against the empty string.
func compareFields(lhs, rhs []namedValue) []FieldChange {
	right := make(map[string]string, len(rhs))
	var order []string
	seen := map[string]bool{}
	for _, f := range lhs {
		if !seen[f.name] {
			order = append(order, f.name)
			seen[f.name] = true
		}
	}
	for _, f := range rhs {
		right[f.name] = f.value
		if !seen[f.name] {
			order = append(order, f.name)
			seen[f.name] = true
		}
	}
	left := make(map[string]string, len(lhs))
	for _, f := range lhs {
		left[f.name] = f.value
	}

	var changes []FieldChange
	for _, name := range order {
		a, b := left[name], right[name]
		if a == b {
			continue
		}
		lhsSegs, rhsSegs := InlineDiff(a, b)
		changes = append(changes, FieldChange{
			Name:        name,
			LHS:         a,
			RHS:         b,
			LHSSegments: lhsSegs,
			RHSSegments: rhsSegs,
		})
	}
	return changes
}

// InlineDiff computes a semantic character diff and splits it into the
// segments shown on each side: the left side gets equal and deleted runs,
// the right side equal and inserted runs.
func InlineDiff(lhs, rhs string) ([]Segment, []Segment) {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(lhs, rhs, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var left, right []Segment
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			left = append(left, Segment{Kind: SegmentEqual, Text: d.Text})
			right = append(right, Segment{Kind: SegmentEqual, Text: d.Text})
		case diffmatchpatch.DiffDelete:
			left = append(left, Segment{Kind: SegmentDelete, Text: d.Text})
		case diffmatchpatch.DiffInsert:
			right = append(right, Segment{Kind: SegmentInsert, Text: d.Text})
		}
	}
	return left, right
}
