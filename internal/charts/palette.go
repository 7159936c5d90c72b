package charts

import "github.com/wcharczuk/go-chart/v2/drawing"

// Palette is a gradient defined by color stops; Colors samples it evenly.
type Palette []drawing.Color

var (
	Viridis  = stops("440154", "3b528b", "21918c", "5ec962", "fde725")
	Magma    = stops("000004", "3b0f70", "8c2981", "de4968", "fe9f6d", "fcfdbf")
	Coolwarm = stops("3b4cc0", "8db0fe", "dddddd", "f49a7b", "b40426")

	Teal   = drawing.ColorFromHex("008080")
	Orange = drawing.ColorFromHex("ffa500")
	Blue   = drawing.ColorFromHex("1f77b4")
	Red    = drawing.ColorFromHex("d62728")
)

func stops(hex ...string) Palette {
	p := make(Palette, len(hex))
	for i, h := range hex {
		p[i] = drawing.ColorFromHex(h)
	}
	return p
}

// Colors returns n colors spread across the palette, skipping the darkest and
// lightest extremes so small counts stay readable. An empty palette yields Blue.
func (p Palette) Colors(n int) []drawing.Color {
	out := make([]drawing.Color, n)
	if len(p) == 0 {
		for i := range out {
			out[i] = Blue
		}
		return out
	}
	if len(p) == 1 {
		for i := range out {
			out[i] = p[0]
		}
		return out
	}
	for i := range out {
		// positions in (0,1), like seaborn's discrete sampling of a colormap
		t := (float64(i) + 0.5) / float64(n)
		out[i] = p.at(t)
	}
	return out
}

func (p Palette) at(t float64) drawing.Color {
	pos := t * float64(len(p)-1)
	i := int(pos)
	if i >= len(p)-1 {
		return p[len(p)-1]
	}
	f := pos - float64(i)
	a, b := p[i], p[i+1]
	mix := func(x, y uint8) uint8 { return uint8(float64(x) + (float64(y)-float64(x))*f + 0.5) }
	return drawing.Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 255}
}
