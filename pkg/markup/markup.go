// Package markup turns the free-text fields of requirements (statement,
// rationale, comments, multi-line meta fields) into sanitized HTML.
package markup

import (
	"html"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-reqdoc/pkg/trace"
)

// LinkResolver maps a UID referenced with [LINK: UID] to an href and the
// label to show. ok is false when the UID is unknown.
type LinkResolver func(uid string) (href, label string, ok bool)

// Option configures a Converter.
type Option func(*Converter)

// WithLinkResolver sets the resolver used for [LINK: UID] references.
func WithLinkResolver(resolver LinkResolver) Option {
	return func(c *Converter) {
		c.resolve = resolver
	}
}

// Converter renders Markdown to sanitized HTML. It is safe for concurrent use.
type Converter struct {
	resolve LinkResolver
}

// New constructs a Converter.
func New(options ...Option) *Converter {
	c := &Converter{}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Render converts text to HTML. Empty input yields an empty string.
func (c *Converter) Render(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	source := c.expandLinks(text)

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	rendered := markdown.ToHTML([]byte(source), p, renderer)

	return strings.TrimSpace(string(contentPolicy().SanitizeBytes(rendered)))
}

func (c *Converter) expandLinks(text string) string {
	return trace.LinkPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := trace.LinkPattern.FindStringSubmatch(match)
		uid := groups[1]
		if c.resolve == nil {
			return html.EscapeString(uid)
		}
		href, label, ok := c.resolve(uid)
		if !ok {
			return html.EscapeString(uid)
		}
		if label == "" {
			label = uid
		}
		return `<a class="reference" href="` + html.EscapeString(href) + `">` + html.EscapeString(label) + `</a>`
	})
}

// PlainText renders text and strips every tag, leaving readable text with
// whitespace collapsed.
func (c *Converter) PlainText(text string) string {
	rendered := c.Render(text)
	if rendered == "" {
		return ""
	}
	stripped := html.UnescapeString(textPolicy().Sanitize(rendered))
	return strings.Join(strings.Fields(stripped), " ")
}

// Truncate shortens plain text to at most limit runes, cutting at a word
// boundary when possible and appending an ellipsis.
func Truncate(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	cut := string(runes[:limit])
	if idx := strings.LastIndexByte(cut, ' '); idx > limit/2 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " .,;:") + "..."
}

var (
	contentPolicyOnce sync.Once
	contentPolicyInst *bluemonday.Policy
	textPolicyOnce    sync.Once
	textPolicyInst    *bluemonday.Policy
)

func contentPolicy() *bluemonday.Policy {
	contentPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AllowRelativeURLs(true)
		policy.AllowAttrs("class").OnElements("a", "code", "span", "div", "pre")
		contentPolicyInst = policy
	})
	return contentPolicyInst
}

func textPolicy() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicyInst = bluemonday.StrictPolicy()
	})
	return textPolicyInst
}
