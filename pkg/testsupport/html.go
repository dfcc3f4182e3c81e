package testsupport

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

// ParseFragment parses markup into a node tree rooted at a synthetic body.
func ParseFragment(t testing.TB, markup string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader("<!DOCTYPE html><html><body>" + markup + "</body></html>"))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

// FindAll returns every element below root with the given tag whose
// attributes contain all key/value pairs in attrs. An empty value matches
// presence only. Root itself is never part of the result.
func FindAll(root *html.Node, tag string, attrs map[string]string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag && matchAttrs(n, attrs) {
			out = append(out, n)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	for child := root.FirstChild; child != nil; child = child.NextSibling {
		walk(child)
	}
	return out
}

// CountElements parses markup and counts matching elements.
func CountElements(t testing.TB, markup, tag string, attrs map[string]string) int {
	t.Helper()
	return len(FindAll(ParseFragment(t, markup), tag, attrs))
}

// Attr returns the value of the named attribute.
func Attr(n *html.Node, key string) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

// Text concatenates the text content below n with whitespace collapsed.
func Text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

// MustContain fails the test when markup lacks any of the fragments.
func MustContain(t testing.TB, markup string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if !strings.Contains(markup, fragment) {
			t.Fatalf("expected markup to contain %q\nmarkup:\n%s", fragment, markup)
		}
	}
}

// MustNotContain fails the test when markup contains any of the fragments.
func MustNotContain(t testing.TB, markup string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if strings.Contains(markup, fragment) {
			t.Fatalf("expected markup to omit %q\nmarkup:\n%s", fragment, markup)
		}
	}
}

func matchAttrs(n *html.Node, attrs map[string]string) bool {
	for key, want := range attrs {
		got, ok := Attr(n, key)
		if !ok {
			return false
		}
		if want != "" && got != want {
			return false
		}
	}
	return true
}
