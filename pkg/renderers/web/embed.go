package web

import (
	"embed"
	"io/fs"
)

//go:embed templates/components/*.tmpl templates/screens/*.tmpl
var embeddedTemplates embed.FS

//go:embed assets/*
var embeddedAssets embed.FS

// TemplatesFS exposes the embedded template bundle. Template names are rooted
// at "templates/", e.g. "templates/components/badge.tmpl".
func TemplatesFS() fs.FS {
	return embeddedTemplates
}

// AssetsFS exposes the embedded stylesheet and script so callers can serve
// them over HTTP or copy them next to exported pages.
func AssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		return embeddedAssets
	}
	return sub
}
