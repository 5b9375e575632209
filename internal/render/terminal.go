package render

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// Terminal renders a Markdown document for terminal display. Style is a
// glamour standard style name ("dark", "light", "notty"); empty or
// "auto" detects from the terminal.
func Terminal(src []byte, style string, width int) (string, error) {
	if width <= 0 {
		width = 100
	}
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" || style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("render: terminal renderer: %w", err)
	}
	out, err := r.Render(string(src))
	if err != nil {
		return "", fmt.Errorf("render: terminal: %w", err)
	}
	return out, nil
}
