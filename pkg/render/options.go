package render

// RenderOptions describe per-request presentation choices that do not belong
// to the document snapshot.
type RenderOptions struct {
	// Theme carries partial overrides, tokens and asset resolution derived
	// from a go-theme selection. Nil renders the built-in look.
	Theme *ThemeConfig
	// RequirementStyle overrides the document's configured requirement style
	// (inline, narrative, plain).
	RequirementStyle string
	// Variant picks the node presentation for the node screen: full, card or
	// tiny.
	Variant string
}
