// Package render projects performance state onto a 32x16 LED panel.
//
// Layout, left to right: one expression bar per channel starting at column 0,
// one column per note slot starting at column 4, and one damper column per
// channel starting at column 29. The top right corner flashes white for the
// first quarter of each beat.
package render

import (
	"github.com/leandrodaf/panelmeter/internal/performance"
)

// Column layout.
const (
	FirstExpressionColumn = 0
	FirstNoteColumn       = 4
	FirstDamperColumn     = 29
)

// flashTicks is how many clock ticks after the beat the corner stays lit.
const flashTicks = 6

// Projector draws a performance.State. It holds no state of its own beyond
// the channel palette, so one Projector can be reused for every frame.
type Projector struct {
	colors []Color
}

// NewProjector uses ChannelColors(channels) as the palette.
func NewProjector(channels int) *Projector {
	return &Projector{colors: ChannelColors(channels)}
}

// Colors returns the channel palette.
func (p *Projector) Colors() []Color { return p.colors }

// Draw clears c and renders s onto it.
func (p *Projector) Draw(c Canvas, s *performance.State) {
	c.Clear()
	width, height := c.Size()

	channels := min(len(p.colors), s.Notes.Channels())
	for ch := 0; ch < channels && FirstExpressionColumn+ch < FirstNoteColumn; ch++ {
		drawValue(c, height, FirstExpressionColumn+ch, s.Controllers.Expression[ch], p.colors[ch])
	}

	for i := 0; i < s.Notes.Len() && FirstNoteColumn+i < FirstDamperColumn; i++ {
		slot, ok := s.Notes.At(i)
		if !ok {
			continue
		}
		p.drawSlot(c, height, FirstNoteColumn+i, slot.Intensity)
	}

	for ch := 0; ch < channels; ch++ {
		if s.Controllers.Damper[ch] {
			vline(c, FirstDamperColumn+ch, 4, height-1, p.colors[ch])
		}
	}

	if s.Tick() < flashTicks {
		for x := FirstDamperColumn; x < width; x++ {
			vline(c, x, 0, 2, White)
		}
	}
}

// drawValue draws a bottom-up bar: v/8 full pixels and one partial pixel.
// 127 fills the column.
func drawValue(c Canvas, height, x int, v uint8, col Color) {
	if v == 127 {
		vline(c, x, 0, height-1, col)
		return
	}
	full := int(v / 8)
	last := v % 8 * 32
	if full > 0 {
		vline(c, x, height-full, height-1, col)
	}
	if last > 0 {
		c.Set(x, height-1-full, Scale(col, last))
	}
}

// drawSlot blends one bar per channel into a single column. Every LED of the
// column is written, so a slot always overwrites what was below it.
func (p *Projector) drawSlot(c Canvas, height, x int, intensity []uint8) {
	for led := 0; led < height; led++ {
		color := Black
		for ch, v := range intensity {
			if ch >= len(p.colors) {
				break
			}
			full := int(v / 8)
			switch {
			case led < full:
				color = Blend(color, p.colors[ch])
			case led == full && v%8 > 0:
				color = Blend(color, Scale(p.colors[ch], v%8*32))
			}
		}
		c.Set(x, height-1-led, color)
	}
}
