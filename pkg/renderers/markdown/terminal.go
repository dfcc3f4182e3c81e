package markdown

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// DefaultWidth is the word-wrap column used when the terminal size is unknown.
const DefaultWidth = 100

// Terminal styles Markdown for display in a terminal, picking a light or dark
// theme from the terminal background.
func Terminal(markdown string, width int) (string, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	tr, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("markdown: terminal renderer: %w", err)
	}
	out, err := tr.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("markdown: render for terminal: %w", err)
	}
	return out, nil
}

// Plain renders Markdown without colour, for output that is not a TTY.
func Plain(markdown string, width int) (string, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("notty"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("markdown: plain renderer: %w", err)
	}
	return tr.Render(markdown)
}
