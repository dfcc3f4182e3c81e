// Package template defines the engine contract the HTML renderers compose
// partials through. Implementations live in sub-packages.
package template
