package source

import (
	"fmt"

	"github.com/goliatone/go-reqdoc/pkg/model"
)

// Stats are raw coverage counters.
type Stats struct {
	LinesCovered int
	LinesTotal   int
	LinesAll     int
	FuncCovered  int
	FuncTotal    int
}

func (s *Stats) add(other Stats) {
	s.LinesCovered += other.LinesCovered
	s.LinesTotal += other.LinesTotal
	s.LinesAll += other.LinesAll
	s.FuncCovered += other.FuncCovered
	s.FuncTotal += other.FuncTotal
}

// Row is one line of the coverage table with every number preformatted.
type Row struct {
	Name      string
	Path      string
	Level     int
	IsFolder  bool
	Uncovered bool

	LinesPercent string
	LinesCovered string
	LinesTotal   string
	LinesAll     string
	FuncPercent  string
	FuncCovered  string
	FuncTotal    string

	Stats Stats
	File  *model.SourceFile
}

// Coverage is the tree of rows shown by the coverage screen, in display
// order, plus the project total.
type Coverage struct {
	Rows  []Row
	Total Row
}

// BuildCoverage aggregates per-file counters into folder rows. Folders come
// before files at every level; a row with no covered lines is uncovered.
func BuildCoverage(files []*model.SourceFile) *Coverage {
	tree := (&model.Project{SourceFiles: files}).SourceTree()
	coverage := &Coverage{}
	total := appendFolder(coverage, tree, true)
	coverage.Total = newRow("Total", "", 0, true, total, nil)
	return coverage
}

func appendFolder(coverage *Coverage, folder *model.Folder, root bool) Stats {
	var stats Stats
	insertAt := len(coverage.Rows)
	if !root {
		coverage.Rows = append(coverage.Rows, Row{})
	}
	for _, child := range folder.Folders {
		stats.add(appendFolder(coverage, child, false))
	}
	for _, file := range folder.Files {
		fileStats := statsFor(file.Source)
		stats.add(fileStats)
		coverage.Rows = append(coverage.Rows, newRow(file.Name, file.RelPath, file.Level, false, fileStats, file.Source))
	}
	if !root {
		coverage.Rows[insertAt] = newRow(folder.Name, folder.RelPath, folder.Level, true, stats, nil)
	}
	return stats
}

func statsFor(file *model.SourceFile) Stats {
	if file == nil {
		return Stats{}
	}
	return Stats{
		LinesCovered: file.Covered,
		LinesTotal:   file.CodeLines,
		LinesAll:     file.Lines,
		FuncCovered:  file.CoveredFunctions,
		FuncTotal:    len(file.Functions),
	}
}

func newRow(name, relPath string, level int, folder bool, stats Stats, file *model.SourceFile) Row {
	return Row{
		Name:         name,
		Path:         relPath,
		Level:        level,
		IsFolder:     folder,
		Uncovered:    stats.LinesCovered == 0,
		LinesPercent: percent(stats.LinesCovered, stats.LinesTotal),
		LinesCovered: fmt.Sprint(stats.LinesCovered),
		LinesTotal:   fmt.Sprint(stats.LinesTotal),
		LinesAll:     fmt.Sprint(stats.LinesAll),
		FuncPercent:  percent(stats.FuncCovered, stats.FuncTotal),
		FuncCovered:  fmt.Sprint(stats.FuncCovered),
		FuncTotal:    fmt.Sprint(stats.FuncTotal),
		Stats:        stats,
		File:         file,
	}
}

func percent(covered, total int) string {
	if total == 0 {
		return "0.0"
	}
	return fmt.Sprintf("%.1f", float64(covered)*100/float64(total))
}
