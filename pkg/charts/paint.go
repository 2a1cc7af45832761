package charts

import (
	"image/color"

	"github.com/chazu/uvatlas/pkg/mesh"
)

var black = color.NRGBA{A: 255}

// Paint sets every vertex color to black, then paints the vertices of each
// live chart with the chart's color.
func Paint(m *mesh.Mesh, charts []*Chart) {
	for _, v := range m.Vertices() {
		m.SetColor(v, black)
	}
	for _, c := range charts {
		if c.IsCleared() {
			continue
		}
		for _, v := range c.Vertices() {
			m.SetColor(v, c.Color())
		}
	}
}
