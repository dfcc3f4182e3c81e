package template

import (
	"io"
)

// TemplateRenderer renders named templates against a data scope. The output
// is returned and also copied to every writer in out.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	// Exists reports whether the named template can be loaded.
	Exists(name string) bool
}
