package components

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-reqdoc/pkg/render"
)

var iconSources = map[string]string{
	"copy":            `<svg width="16" height="16" viewBox="0 0 16 16" fill="none" stroke="currentColor" stroke-width="1.5"><rect x="5.5" y="5.5" width="8" height="8" rx="1"/><path d="M10.5 3.5v-1a1 1 0 0 0-1-1h-6a1 1 0 0 0-1 1v6a1 1 0 0 0 1 1h1"/></svg>`,
	"done":            `<svg width="16" height="16" viewBox="0 0 16 16" fill="none" stroke="currentColor" stroke-width="1.5"><polyline points="3 8.5 6.5 12 13 4.5"/></svg>`,
	"diff":            `<svg width="16" height="16" viewBox="0 0 16 16" fill="none" stroke="currentColor" stroke-width="1.5"><path d="M5 2v8M1 6h8M1 13h8"/><path d="M11 3h3v10h-3"/></svg>`,
	"document":        `<svg width="16" height="16" viewBox="0 0 16 16" fill="none" stroke="currentColor" stroke-width="1.5"><path d="M3.5 1.5h6l3 3v10h-9z"/><path d="M9.5 1.5v3h3M5.5 8h5M5.5 11h5"/></svg>`,
	"fragment":        `<svg width="16" height="16" viewBox="0 0 16 16" fill="none" stroke="currentColor" stroke-width="1.5" stroke-linecap="round"><path d="M3.5 1.5h6l3 3v10h-9z"/><path d="M5.5 8h5"/></svg>`,
	"file":            `<svg width="16" height="16" viewBox="0 0 16 16" fill="none" stroke="currentColor" stroke-width="1.5"><path d="M3.5 1.5h6l3 3v10h-9z"/><path d="M9.5 1.5v3h3"/></svg>`,
	"folder":          `<svg width="16" height="16" viewBox="0 0 16 16" fill="none" stroke="currentColor" stroke-width="1.5"><path d="M1.5 3.5h5l1.5 2h6.5v7h-13z"/></svg>`,
	"folder_collapse": `<svg width="16" height="16" viewBox="0 0 16 16" fill="none" stroke="currentColor" stroke-width="1.5"><polyline points="5 10 8 7 11 10"/></svg>`,
	"edit":            `<svg width="16" height="16" viewBox="0 0 16 16" fill="none" stroke="currentColor" stroke-width="1.5"><path d="M11 2.5l2.5 2.5-8 8H3v-2.5z"/></svg>`,
	"delete":          `<svg width="16" height="16" viewBox="0 0 16 16" fill="none" stroke="currentColor" stroke-width="1.5"><path d="M2.5 4.5h11M6 4.5v-2h4v2M4 4.5l1 9h6l1-9"/></svg>`,
	"clone":           `<svg width="16" height="16" viewBox="0 0 16 16" fill="none" stroke="currentColor" stroke-width="1.5"><rect x="1.5" y="1.5" width="9" height="9" rx="1"/><path d="M5.5 14.5h9v-9"/></svg>`,
	"add":             `<svg width="16" height="16" viewBox="0 0 16 16" fill="none" stroke="currentColor" stroke-width="1.5"><path d="M8 3v10M3 8h10"/></svg>`,
	"menu_handler":    `<svg width="16" height="16" viewBox="0 0 16 16" fill="currentColor"><circle cx="8" cy="3" r="1.5"/><circle cx="8" cy="8" r="1.5"/><circle cx="8" cy="13" r="1.5"/></svg>`,
	"link":            `<svg width="16" height="16" viewBox="0 0 16 16" fill="none" stroke="currentColor" stroke-width="1.5"><path d="M7 9a3 3 0 0 0 4.2 0l2.3-2.3a3 3 0 0 0-4.2-4.2L8.5 3.3"/><path d="M9 7a3 3 0 0 0-4.2 0L2.5 9.3a3 3 0 0 0 4.2 4.2l.8-.8"/></svg>`,
	"find":            `<svg width="16" height="16" viewBox="0 0 16 16" fill="none" stroke="currentColor" stroke-width="1.5"><circle cx="7" cy="7" r="4.5"/><path d="M10.5 10.5l4 4"/></svg>`,
	"show_more":       `<svg width="16" height="16" viewBox="0 0 16 16" fill="none" stroke="currentColor" stroke-width="1.5"><path d="M2 2h5M2 2v5M14 14H9M14 14V9M2 2l5 5M14 14l-5-5"/></svg>`,
	"separator":       `<svg width="16" height="16" viewBox="0 0 16 16" fill="none" stroke="currentColor" stroke-width="1.5"><path d="M10 2L6 14"/></svg>`,
}

var (
	iconPolicyOnce sync.Once
	iconPolicy     *bluemonday.Policy

	iconsOnce sync.Once
	icons     map[string]string
)

// Icon returns the sanitized SVG markup for name, or "" for unknown icons.
func Icon(name string) string {
	iconsOnce.Do(func() {
		icons = make(map[string]string, len(iconSources))
		for key, raw := range iconSources {
			icons[key] = SanitizeIcon(raw)
		}
	})
	return icons[strings.TrimSpace(name)]
}

// IconNames lists the built-in icons.
func IconNames() []string {
	names := make([]string, 0, len(iconSources))
	for name := range iconSources {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// SanitizeIcon strips everything but presentational SVG elements from raw.
func SanitizeIcon(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(iconSanitizer().Sanitize(trimmed))
}

func iconRenderer(buf *bytes.Buffer, ns render.Namespace, _ ComponentData) error {
	name := ns.String("name")
	markup := Icon(name)
	if markup == "" {
		return fmt.Errorf("components: unknown icon %q", name)
	}
	buf.WriteString(markup)
	return nil
}

func iconSanitizer() *bluemonday.Policy {
	iconPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("svg", "g", "path", "circle", "rect", "line", "polyline", "polygon", "title")

		policy.AllowAttrs(
			"xmlns", "viewBox", "width", "height", "fill", "stroke",
			"stroke-width", "stroke-linecap", "stroke-linejoin", "aria-hidden", "class",
		).OnElements("svg")

		for _, el := range []string{"path", "circle", "rect", "line", "polyline", "polygon"} {
			policy.AllowAttrs(
				"d", "cx", "cy", "r", "x", "y", "x1", "y1", "x2", "y2",
				"points", "rx", "ry", "width", "height", "fill", "stroke",
				"stroke-width", "stroke-linecap", "stroke-linejoin",
			).OnElements(el)
		}
		iconPolicy = policy
	})
	return iconPolicy
}
