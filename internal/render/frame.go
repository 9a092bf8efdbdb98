package render

// Panel dimensions.
const (
	Width  = 32
	Height = 16
)

// Canvas is a drawable LED surface. Pixels outside the surface are ignored.
type Canvas interface {
	Size() (width, height int)
	Set(x, y int, c Color)
	Clear()
}

// Frame is an in-memory Width x Height canvas. Row 0 is the top.
type Frame struct {
	pix [Height][Width]Color
}

func (f *Frame) Size() (int, int) { return Width, Height }

func (f *Frame) Set(x, y int, c Color) {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return
	}
	f.pix[y][x] = c
}

// At returns the pixel at x, y, or Black when out of bounds.
func (f *Frame) At(x, y int) Color {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return Black
	}
	return f.pix[y][x]
}

func (f *Frame) Clear() { f.pix = [Height][Width]Color{} }

// vline draws a vertical line from y0 to y1 inclusive.
func vline(c Canvas, x, y0, y1 int, col Color) {
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		c.Set(x, y, col)
	}
}
