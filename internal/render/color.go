package render

import colorful "github.com/lucasb-eyer/go-colorful"

// Color is an 8-bit RGB LED color.
type Color struct {
	R, G, B uint8
}

var (
	Black = Color{}
	White = Color{255, 255, 255}
	Red   = Color{255, 0, 0}
	Green = Color{0, 255, 0}
	Blue  = Color{0, 0, 255}
)

// Scale dims c by factor/256.
func Scale(c Color, factor uint8) Color {
	return Color{
		R: uint8(uint(c.R) * uint(factor) / 256),
		G: uint8(uint(c.G) * uint(factor) / 256),
		B: uint8(uint(c.B) * uint(factor) / 256),
	}
}

// Blend adds b to a per component, saturating at 255.
func Blend(a, b Color) Color {
	return Color{R: addClamp(a.R, b.R), G: addClamp(a.G, b.G), B: addClamp(a.B, b.B)}
}

func addClamp(a, b uint8) uint8 {
	if s := uint(a) + uint(b); s < 255 {
		return uint8(s)
	}
	return 255
}

// Hex formats c as #rrggbb.
func (c Color) Hex() string {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}.Hex()
}

// ChannelColors returns one color per channel. The first three channels are
// red, green and blue; further channels get evenly spaced hues.
func ChannelColors(n int) []Color {
	colors := make([]Color, n)
	base := []Color{Red, Green, Blue}
	for i := range colors {
		if i < len(base) {
			colors[i] = base[i]
			continue
		}
		r, g, b := colorful.Hsv(360*float64(i)/float64(n), 1, 1).RGB255()
		colors[i] = Color{r, g, b}
	}
	return colors
}
