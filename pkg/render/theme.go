package render

import (
	"errors"
	"fmt"
	"maps"
	"path"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// ThemeConfig is the renderer-facing projection of a go-theme selection.
type ThemeConfig struct {
	Theme    string
	Variant  string
	Partials map[string]string
	Tokens   map[string]string
	CSSVars  map[string]string
	AssetURL func(key string) string
}

// Partial returns the template override for a component key, or fallback.
func (c *ThemeConfig) Partial(key, fallback string) string {
	if c == nil {
		return fallback
	}
	if candidate := strings.TrimSpace(c.Partials[key]); candidate != "" {
		return candidate
	}
	return fallback
}

// StyleAttribute renders the CSS variables as an inline style declaration
// list, sorted by name.
func (c *ThemeConfig) StyleAttribute() string {
	if c == nil || len(c.CSSVars) == 0 {
		return ""
	}
	names := make([]string, 0, len(c.CSSVars))
	for name := range c.CSSVars {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+c.CSSVars[name])
	}
	return strings.Join(parts, "; ")
}

// ResolveTheme asks the selector for a theme and projects it, merging the
// fallback partials underneath the manifest and variant templates.
func ResolveTheme(selector theme.ThemeSelector, name, variant string, fallbacks map[string]string) (*ThemeConfig, error) {
	if selector == nil {
		return nil, errors.New("render: theme selector is nil")
	}
	selection, err := selector.Select(name, variant)
	if err != nil {
		return nil, fmt.Errorf("render: select theme %q: %w", name, err)
	}
	return ThemeFromSelection(selection, fallbacks), nil
}

// ThemeFromSelection merges manifest, variant and fallbacks into a
// ThemeConfig. Variant values win over manifest values.
func ThemeFromSelection(selection *theme.Selection, fallbacks map[string]string) *ThemeConfig {
	cfg := &ThemeConfig{
		Partials: maps.Clone(fallbacks),
		Tokens:   map[string]string{},
		CSSVars:  map[string]string{},
	}
	if cfg.Partials == nil {
		cfg.Partials = map[string]string{}
	}
	assetPrefix := ""
	assetFiles := map[string]string{}

	if selection != nil {
		cfg.Theme = selection.Theme
		cfg.Variant = selection.Variant
		if manifest := selection.Manifest; manifest != nil {
			if cfg.Theme == "" {
				cfg.Theme = manifest.Name
			}
			maps.Copy(cfg.Tokens, manifest.Tokens)
			maps.Copy(cfg.Partials, manifest.Templates)
			assetPrefix = manifest.Assets.Prefix
			maps.Copy(assetFiles, manifest.Assets.Files)

			if v, ok := manifest.Variants[selection.Variant]; ok {
				maps.Copy(cfg.Tokens, v.Tokens)
				maps.Copy(cfg.Partials, v.Templates)
				if v.Assets.Prefix != "" {
					assetPrefix = v.Assets.Prefix
				}
				maps.Copy(assetFiles, v.Assets.Files)
			}
		}
	}

	for key, value := range cfg.Tokens {
		cfg.CSSVars["--"+strings.TrimPrefix(key, "--")] = value
	}
	cfg.AssetURL = func(key string) string {
		file, ok := assetFiles[key]
		if !ok {
			return ""
		}
		if assetPrefix == "" || strings.HasPrefix(file, "/") || strings.Contains(file, "://") {
			return file
		}
		return path.Join(assetPrefix, file)
	}
	return cfg
}

// ManifestSelector serves theme selections from a fixed set of manifests,
// typically loaded from configuration.
type ManifestSelector struct {
	manifests      map[string]*theme.Manifest
	defaultTheme   string
	defaultVariant string
}

var _ theme.ThemeSelector = (*ManifestSelector)(nil)

// NewManifestSelector indexes manifests by name.
func NewManifestSelector(defaultTheme, defaultVariant string, manifests ...*theme.Manifest) *ManifestSelector {
	s := &ManifestSelector{
		manifests:      make(map[string]*theme.Manifest, len(manifests)),
		defaultTheme:   defaultTheme,
		defaultVariant: defaultVariant,
	}
	for _, manifest := range manifests {
		if manifest == nil || manifest.Name == "" {
			continue
		}
		s.manifests[manifest.Name] = manifest
	}
	return s
}

// Select implements theme.ThemeSelector. Empty arguments fall back to the
// defaults; an unknown variant is an error.
func (s *ManifestSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	if name == "" {
		name = s.defaultTheme
	}
	if variant == "" {
		variant = s.defaultVariant
	}
	manifest, ok := s.manifests[name]
	if !ok {
		return nil, fmt.Errorf("render: theme %q not registered", name)
	}
	if variant != "" {
		if _, ok := manifest.Variants[variant]; !ok {
			return nil, fmt.Errorf("render: theme %q has no variant %q", name, variant)
		}
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}
