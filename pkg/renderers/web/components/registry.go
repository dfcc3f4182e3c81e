package components

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-reqdoc/pkg/render"
	rendertemplate "github.com/goliatone/go-reqdoc/pkg/render/template"
)

// Renderer writes a component into buf. ns has already been checked against
// the descriptor's Required keys.
type Renderer func(buf *bytes.Buffer, ns render.Namespace, data ComponentData) error

// ComponentData carries what every component of one page render shares.
type ComponentData struct {
	Template rendertemplate.TemplateRenderer
	Theme    *render.ThemeConfig
}

// Script is a script tag a component needs once per page.
type Script struct {
	Src    string
	Defer  bool
	Module bool
}

// Descriptor defines one component. Template is rendered with the namespace
// as its scope unless Renderer is set; a theme may swap the template through
// the Partial key. Stylesheets and Scripts name static assets the page must
// link when the component is used.
type Descriptor struct {
	Name        string
	Template    string
	Partial     string
	Required    []string
	Renderer    Renderer
	Stylesheets []string
	Scripts     []Script
}

func (d Descriptor) clone() Descriptor {
	d.Required = slices.Clone(d.Required)
	d.Stylesheets = slices.Clone(d.Stylesheets)
	d.Scripts = slices.Clone(d.Scripts)
	return d
}

// Registry maps component names (case-insensitive) to descriptors.
type Registry struct {
	mu    sync.RWMutex
	byKey map[string]Descriptor
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{byKey: make(map[string]Descriptor)}
}

// Clone returns an independent copy, e.g. to override one component of the
// default set for a single renderer.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return &Registry{byKey: maps.Clone(r.byKey)}
}

// Register adds or replaces the component called name.
func (r *Registry) Register(name string, descriptor Descriptor) error {
	key := componentKey(name)
	if key == "" {
		return fmt.Errorf("components: empty component name")
	}
	if descriptor.Renderer == nil && strings.TrimSpace(descriptor.Template) == "" {
		return fmt.Errorf("components: %q has neither a template nor a renderer", key)
	}
	descriptor.Name = key
	descriptor = descriptor.clone()

	r.mu.Lock()
	r.byKey[key] = descriptor
	r.mu.Unlock()
	return nil
}

// MustRegister is Register for the default set.
func (r *Registry) MustRegister(name string, descriptor Descriptor) {
	if err := r.Register(name, descriptor); err != nil {
		panic(err)
	}
}

// Descriptor looks a component up. The returned value is a copy.
func (r *Registry) Descriptor(name string) (Descriptor, bool) {
	r.mu.RLock()
	descriptor, ok := r.byKey[componentKey(name)]
	r.mu.RUnlock()
	return descriptor.clone(), ok
}

// Names lists the registered components sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.byKey))
}

// Assets collects the stylesheets and scripts of the named components in
// order, each listed once. Unknown names are skipped.
func (r *Registry) Assets(names []string) (stylesheets []string, scripts []Script) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, name := range names {
		descriptor, ok := r.byKey[componentKey(name)]
		if !ok {
			continue
		}
		for _, href := range descriptor.Stylesheets {
			if _, dup := seen["css:"+href]; href == "" || dup {
				continue
			}
			seen["css:"+href] = struct{}{}
			stylesheets = append(stylesheets, href)
		}
		for _, script := range descriptor.Scripts {
			if _, dup := seen["js:"+script.Src]; script.Src == "" || dup {
				continue
			}
			seen["js:"+script.Src] = struct{}{}
			scripts = append(scripts, script)
		}
	}
	return stylesheets, scripts
}

// Render writes the component called name into buf. Missing required keys
// fail with a *render.UndefinedError before anything is written.
func (r *Registry) Render(buf *bytes.Buffer, name string, ns render.Namespace, data ComponentData) error {
	descriptor, ok := r.Descriptor(name)
	if !ok {
		return fmt.Errorf("components: unknown component %q", name)
	}
	if err := ns.Require(descriptor.Name, descriptor.Required...); err != nil {
		return err
	}
	if descriptor.Renderer != nil {
		return descriptor.Renderer(buf, ns, data)
	}
	if data.Template == nil {
		return fmt.Errorf("components: template renderer not configured for %q", descriptor.Name)
	}

	name = descriptor.Template
	if descriptor.Partial != "" {
		name = data.Theme.Partial(descriptor.Partial, descriptor.Template)
	}
	out, err := data.Template.RenderTemplate(name, map[string]any(ns))
	if err != nil {
		return fmt.Errorf("components: render %q: %w", descriptor.Name, err)
	}
	buf.WriteString(out)
	return nil
}

func componentKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
