package uidsearch

import (
	"sort"
	"strings"

	"github.com/goliatone/go-reqdoc/pkg/model"
)

// Entry is one searchable requirement.
type Entry struct {
	UID      string
	Title    string
	Document string
}

// Option is the JSON shape of a suggestion.
type Option struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Document string `json:"document,omitempty"`
}

// EntriesFromProject lists every node that carries a UID, in document order.
func EntriesFromProject(project *model.Project) []Entry {
	if project == nil {
		return nil
	}
	var entries []Entry
	for _, doc := range project.Documents {
		doc.Walk(func(n *model.Node) bool {
			if n.UID != "" {
				entries = append(entries, Entry{UID: n.UID, Title: n.Title, Document: doc.Title})
			}
			return true
		})
	}
	return entries
}

const (
	rankUIDPrefix = iota
	rankUIDContains
	rankTitleContains
)

type match struct {
	entry Entry
	rank  int
}

// Search returns at most limit entries matching query. UID prefix matches
// come first, then other UID matches, then title matches; each group is
// ordered by UID. exclude drops one UID, e.g. the node being edited.
func Search(entries []Entry, query, exclude string, limit int, opts Options) []Entry {
	limit = opts.withDefaults().limitFor(limit)
	if limit == 0 {
		return nil
	}

	query = strings.TrimSpace(query)
	if query == "" {
		if opts.EmptySearchMode != EmptySearchTop {
			return nil
		}
		out := make([]Entry, 0, min(limit, len(entries)))
		for _, entry := range entries {
			if entry.UID == exclude {
				continue
			}
			if len(out) == limit {
				break
			}
			out = append(out, entry)
		}
		return out
	}

	q := strings.ToLower(query)
	matches := make([]match, 0, 16)
	for _, entry := range entries {
		if entry.UID == exclude {
			continue
		}
		uid := strings.ToLower(entry.UID)
		switch {
		case strings.HasPrefix(uid, q):
			matches = append(matches, match{entry: entry, rank: rankUIDPrefix})
		case strings.Contains(uid, q):
			matches = append(matches, match{entry: entry, rank: rankUIDContains})
		case strings.Contains(strings.ToLower(entry.Title), q):
			matches = append(matches, match{entry: entry, rank: rankTitleContains})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].rank != matches[j].rank {
			return matches[i].rank < matches[j].rank
		}
		return matches[i].entry.UID < matches[j].entry.UID
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]Entry, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.entry)
	}
	return out
}

// SearchOptions runs Search and labels each hit as "UID Title".
func SearchOptions(entries []Entry, query, exclude string, limit int, opts Options) []Option {
	results := Search(entries, query, exclude, limit, opts)
	if len(results) == 0 {
		return nil
	}
	out := make([]Option, 0, len(results))
	for _, entry := range results {
		label := entry.UID
		if entry.Title != "" {
			label += " " + entry.Title
		}
		out = append(out, Option{Value: entry.UID, Label: label, Document: entry.Document})
	}
	return out
}
