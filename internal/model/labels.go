package model

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	splitWordsPattern = regexp.MustCompile(`[_\-\s]+`)
	titleCaser        = cases.Title(language.English)
)

// FieldHumanTitle converts a grammar field name (STATUS, VERIFICATION_METHOD,
// testCase) into the label shown next to its value.
func FieldHumanTitle(name string) string {
	if name == "" {
		return ""
	}

	words := splitWordsPattern.Split(name, -1)
	var segments []string
	for _, word := range words {
		if word == "" {
			continue
		}
		segments = append(segments, splitCamel(word))
	}
	return titleCaser.String(strings.ToLower(strings.TrimSpace(strings.Join(segments, " "))))
}

func splitCamel(input string) string {
	var out strings.Builder
	for i, r := range input {
		if i > 0 && isBoundary(input, i, r) {
			out.WriteRune(' ')
		}
		out.WriteRune(r)
	}
	return out.String()
}

func isBoundary(input string, index int, r rune) bool {
	prev := rune(input[index-1])
	return (isLower(prev) && isUpper(r)) || (isLetter(prev) && isDigit(r)) || (isDigit(prev) && isLetter(r))
}

func isUpper(r rune) bool  { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool  { return r >= 'a' && r <= 'z' }
func isDigit(r rune) bool  { return r >= '0' && r <= '9' }
func isLetter(r rune) bool { return isUpper(r) || isLower(r) }

// NewMID returns a fresh machine identifier: a random UUID rendered as 32 hex
// characters.
func NewMID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and collapses runs of non-alphanumerics into dashes.
func Slugify(s string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
	return strings.Trim(slug, "-")
}
