// Package source scans the project's source tree for line statistics,
// function declarations and @relation markers, and summarises the result for
// the coverage screen.
package source

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/goliatone/go-reqdoc/pkg/model"
)

// DefaultInclude lists the patterns scanned when no include patterns are
// configured.
var DefaultInclude = []string{
	"**/*.go", "**/*.py", "**/*.rs", "**/*.c", "**/*.h", "**/*.cpp", "**/*.hpp",
	"**/*.cc", "**/*.java", "**/*.js", "**/*.ts",
}

// Scan walks root on fsys and returns one SourceFile per matching file,
// sorted by path. Paths keep root as their prefix so they line up with File
// relations written relative to the project directory. Patterns are matched
// against the path relative to root; "**/" matches any number of folders.
func Scan(ctx context.Context, fsys afero.Fs, root string, include, exclude []string) ([]*model.SourceFile, error) {
	if fsys == nil {
		return nil, errors.New("source: filesystem is nil")
	}
	if len(include) == 0 {
		include = DefaultInclude
	}
	root = filepath.Clean(root)

	var files []*model.SourceFile
	err := afero.Walk(fsys, root, func(p string, info fs.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if info.IsDir() {
			if rel != "." && matchAny(exclude, rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !matchAny(include, rel) || matchAny(exclude, rel) {
			return nil
		}

		file, err := scanFile(fsys, p, path.Join(filepath.ToSlash(root), rel))
		if err != nil {
			return err
		}
		files = append(files, file)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("source: scan %s: %w", root, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func scanFile(fsys afero.Fs, fullPath, displayPath string) (*model.SourceFile, error) {
	f, err := fsys.Open(fullPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", displayPath, err)
	}
	return Analyze(displayPath, lines)
}

// Analyze computes statistics for already-read source lines.
func Analyze(displayPath string, lines []string) (*model.SourceFile, error) {
	lang := languageFor(displayPath)
	file := &model.SourceFile{
		Path:      displayPath,
		Lines:     len(lines),
		Functions: findFunctions(lang, lines),
	}

	markers, err := parseMarkers(lines)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", displayPath, err)
	}
	file.Markers = markers

	covered := coveredLines(markers, len(lines))
	for idx, line := range lines {
		if !isCodeLine(lang, line) {
			continue
		}
		file.CodeLines++
		if covered[idx+1] {
			file.Covered++
		}
	}
	for _, fn := range file.Functions {
		for line := fn.LineBegin; line <= fn.LineEnd; line++ {
			if covered[line] {
				file.CoveredFunctions++
				break
			}
		}
	}
	return file, nil
}

// coveredLines returns the 1-based line numbers traced by markers.
func coveredLines(markers []model.Marker, total int) map[int]bool {
	covered := make(map[int]bool)
	for _, m := range markers {
		switch m.Scope {
		case ScopeFile:
			for line := 1; line <= total; line++ {
				covered[line] = true
			}
		case ScopeLine:
			covered[m.Line] = true
		case ScopeRangeStart:
			for line := m.RangeBegin; line <= m.RangeEnd; line++ {
				covered[line] = true
			}
		}
	}
	return covered
}

func isCodeLine(lang language, line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	for _, prefix := range lang.commentPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return false
		}
	}
	return true
}

func matchAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if matchGlob(strings.TrimSpace(pattern), rel) {
			return true
		}
	}
	return false
}

func matchGlob(pattern, rel string) bool {
	if pattern == "" {
		return false
	}
	if rest, ok := strings.CutPrefix(pattern, "**/"); ok {
		segments := strings.Split(rel, "/")
		for i := range segments {
			if matchGlob(rest, strings.Join(segments[i:], "/")) {
				return true
			}
		}
		return false
	}
	if ok, _ := path.Match(pattern, rel); ok {
		return true
	}
	// A bare folder pattern ("vendor", "build/") excludes everything below it.
	prefix := strings.TrimSuffix(pattern, "/")
	return !strings.ContainsAny(prefix, "*?[") && (rel == prefix || strings.HasPrefix(rel, prefix+"/"))
}
