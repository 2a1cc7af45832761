package charts

import (
	"fmt"
	"image/color"
)

// Sequence hands out increasing chart ids.
type Sequence struct {
	next int
}

// NewSequence returns a sequence whose first id is start.
func NewSequence(start int) *Sequence {
	return &Sequence{next: start}
}

// Next returns the next id.
func (s *Sequence) Next() int {
	id := s.next
	s.next++
	return id
}

// pairedColors is the 12-class qualitative "Paired" palette.
var pairedColors = []color.NRGBA{
	{R: 166, G: 206, B: 227, A: 255},
	{R: 31, G: 120, B: 180, A: 255},
	{R: 178, G: 223, B: 138, A: 255},
	{R: 51, G: 160, B: 44, A: 255},
	{R: 251, G: 154, B: 153, A: 255},
	{R: 227, G: 26, B: 28, A: 255},
	{R: 253, G: 191, B: 111, A: 255},
	{R: 255, G: 127, B: 0, A: 255},
	{R: 202, G: 178, B: 214, A: 255},
	{R: 106, G: 61, B: 154, A: 255},
	{R: 255, G: 255, B: 153, A: 255},
	{R: 177, G: 89, B: 40, A: 255},
}

// Palette cycles through a fixed list of colors.
type Palette struct {
	colors []color.NRGBA
	next   int
}

// NewPalette returns a palette over colors, or over the default 12-color
// palette when none are given.
func NewPalette(colors ...color.NRGBA) *Palette {
	if len(colors) == 0 {
		colors = pairedColors
	}
	return &Palette{colors: colors}
}

// Next returns the next color, wrapping around at the end.
func (p *Palette) Next() color.NRGBA {
	c := p.colors[p.next%len(p.colors)]
	p.next++
	return c
}

// Hex formats c as #RRGGBB.
func Hex(c color.NRGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}
