package source

import (
	"path"
	"regexp"
	"strings"

	"github.com/goliatone/go-reqdoc/pkg/model"
)

type blockStyle int

const (
	blockBraces blockStyle = iota
	blockIndent
)

type language struct {
	name            string
	commentPrefixes []string
	function        *regexp.Regexp
	block           blockStyle
}

var (
	langGo = language{
		name:            "go",
		commentPrefixes: []string{"//", "/*", "*"},
		function:        regexp.MustCompile(`^func\s+(?:\([^)]*\)\s*)?([A-Za-z_]\w*)\s*[\[(]`),
	}
	langPython = language{
		name:            "python",
		commentPrefixes: []string{"#"},
		function:        regexp.MustCompile(`^\s*(?:async\s+)?def\s+([A-Za-z_]\w*)\s*\(`),
		block:           blockIndent,
	}
	langRust = language{
		name:            "rust",
		commentPrefixes: []string{"//", "/*", "*"},
		function:        regexp.MustCompile(`^\s*(?:pub(?:\([^)]*\))?\s+)?(?:const\s+)?(?:async\s+)?(?:unsafe\s+)?fn\s+([A-Za-z_]\w*)`),
	}
	langJS = language{
		name:            "javascript",
		commentPrefixes: []string{"//", "/*", "*"},
		function:        regexp.MustCompile(`^\s*(?:export\s+)?(?:async\s+)?function\s*\*?\s*([A-Za-z_$][\w$]*)\s*\(`),
	}
	langCLike = language{
		name:            "c",
		commentPrefixes: []string{"//", "/*", "*"},
		function:        regexp.MustCompile(`^(?:[A-Za-z_][\w:<>,\*&\s]*?[\s\*&])([A-Za-z_][\w:~]*)\s*\([^;]*$`),
	}
	langText = language{name: "text"}
)

func languageFor(p string) language {
	switch strings.ToLower(path.Ext(p)) {
	case ".go":
		return langGo
	case ".py":
		return langPython
	case ".rs":
		return langRust
	case ".js", ".ts", ".mjs":
		return langJS
	case ".c", ".h", ".cc", ".cpp", ".hpp", ".java":
		return langCLike
	}
	return langText
}

var cKeywords = map[string]bool{"if": true, "for": true, "while": true, "switch": true, "return": true, "sizeof": true}

// findFunctions locates function declarations with per-language heuristics.
// Brace languages end a function where the braces opened on or after the
// declaration balance out; Python ends it at the next line indented no
// deeper than the def.
func findFunctions(lang language, lines []string) []model.Function {
	if lang.function == nil {
		return nil
	}
	var functions []model.Function
	for idx := 0; idx < len(lines); idx++ {
		match := lang.function.FindStringSubmatch(lines[idx])
		if match == nil || cKeywords[match[1]] {
			continue
		}
		var end int
		if lang.block == blockIndent {
			end = indentBlockEnd(lines, idx)
		} else {
			var ok bool
			end, ok = braceBlockEnd(lines, idx)
			if !ok {
				continue
			}
		}
		functions = append(functions, model.Function{Name: match[1], LineBegin: idx + 1, LineEnd: end + 1})
		if lang.block == blockBraces {
			idx = end
		}
	}
	return functions
}

func braceBlockEnd(lines []string, start int) (int, bool) {
	depth := 0
	opened := false
	for idx := start; idx < len(lines); idx++ {
		for _, r := range lines[idx] {
			switch {
			case r == '{':
				depth++
				opened = true
			case r == '}':
				depth--
			case r == ';' && !opened:
				// a prototype or trait signature
				return 0, false
			}
		}
		if opened && depth <= 0 {
			return idx, true
		}
	}
	return 0, false
}

func indentBlockEnd(lines []string, start int) int {
	base := indentation(lines[start])
	end := start
	for idx := start + 1; idx < len(lines); idx++ {
		if strings.TrimSpace(lines[idx]) == "" {
			continue
		}
		if indentation(lines[idx]) <= base {
			break
		}
		end = idx
	}
	return end
}

func indentation(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}
