package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var offStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#222"))

// Preview renders f as rows of colored cells for a terminal.
func Preview(f *Frame) string {
	styles := map[Color]lipgloss.Style{}
	var lines []string
	for y := 0; y < Height; y++ {
		var line strings.Builder
		for x := 0; x < Width; x++ {
			c := f.At(x, y)
			if c == Black {
				line.WriteString(offStyle.Render("·"))
				continue
			}
			style, ok := styles[c]
			if !ok {
				style = lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex()))
				styles[c] = style
			}
			line.WriteString(style.Render("■"))
		}
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}
