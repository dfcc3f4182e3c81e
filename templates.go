package reqdoc

import (
	"io/fs"

	"github.com/goliatone/go-reqdoc/pkg/renderers/web"
)

// EmbeddedTemplates exposes the built-in HTML templates so callers can copy
// and override them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return web.TemplatesFS()
}

// AssetsFS holds the stylesheet and script the HTML pages link to.
//
// Typical mount:
//
//	mux.Handle("/_static/",
//	  http.StripPrefix("/_static/",
//	    http.FileServerFS(reqdoc.AssetsFS()),
//	  ),
//	)
func AssetsFS() fs.FS {
	return web.AssetsFS()
}
