package charts

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func days(n int) []time.Time {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = start.AddDate(0, 0, i)
	}
	return out
}

func TestLineRendersSVGAndPNG(t *testing.T) {
	spec := LineSpec{
		Title:  "Sales of Books over Time",
		XLabel: "Date",
		YLabel: "Quantity Sold",
		Series: []Series{{Name: "Books", Color: Teal, Times: days(5), Values: []float64{3, 5, 4, 8, 6}}},
	}
	var svg bytes.Buffer
	if err := Line(spec, &svg, SVG); err != nil {
		t.Fatalf("Line svg: %v", err)
	}
	if !strings.Contains(svg.String(), "<svg") {
		t.Fatalf("expected svg output")
	}
	var png bytes.Buffer
	if err := Line(spec, &png, PNG); err != nil {
		t.Fatalf("Line png: %v", err)
	}
	if !bytes.HasPrefix(png.Bytes(), []byte("\x89PNG")) {
		t.Fatalf("expected png magic bytes")
	}
}

func TestLineConstantSeries(t *testing.T) {
	spec := LineSpec{Series: []Series{{Name: "flat", Color: Orange, Times: days(3), Values: []float64{0, 0, 0}}}}
	if err := Line(spec, &bytes.Buffer{}, SVG); err != nil {
		t.Fatalf("constant series should still render: %v", err)
	}
}

func TestNoData(t *testing.T) {
	one := LineSpec{Series: []Series{{Name: "one", Times: days(1), Values: []float64{1}}}}
	cases := map[string]func() error{
		"line single point": func() error { return Line(one, &bytes.Buffer{}, SVG) },
		"line empty":        func() error { return Line(LineSpec{}, &bytes.Buffer{}, SVG) },
		"bar empty":         func() error { return Bar(BarSpec{Palette: Viridis}, &bytes.Buffer{}, SVG) },
		"scatter empty":     func() error { return Scatter(ScatterSpec{}, &bytes.Buffer{}, PNG) },
	}
	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			if err := fn(); !errors.Is(err, ErrNoData) {
				t.Fatalf("expected ErrNoData, got %v", err)
			}
		})
	}
}

func TestBarAndScatter(t *testing.T) {
	var buf bytes.Buffer
	err := Bar(BarSpec{
		Title:   "Conversion Rates by Interaction Type",
		YLabel:  "Conversion Rate",
		Bars:    []BarValue{{"Click", 0.2}, {"Purchase", 0.9}, {"View", 0}},
		Palette: Magma,
	}, &buf, SVG)
	if err != nil {
		t.Fatalf("Bar: %v", err)
	}
	if !strings.Contains(buf.String(), "Purchase") {
		t.Fatalf("bar labels missing from svg")
	}

	buf.Reset()
	if err := Bar(BarSpec{Bars: []BarValue{{"zero", 0}}, Palette: Coolwarm}, &buf, SVG); err != nil {
		t.Fatalf("all-zero bars should render: %v", err)
	}

	buf.Reset()
	err = Scatter(ScatterSpec{
		XLabel: "Test Data Index",
		YLabel: "Quantity Sold",
		Sets: []Points{
			{Name: "Actual Sales", Color: Blue, X: []float64{0, 1, 2}, Y: []float64{10, 12, 9}},
			{Name: "Predicted Sales", Color: Red, X: []float64{0, 1, 2}, Y: []float64{11, 11, 11}},
		},
	}, &buf, PNG)
	if err != nil {
		t.Fatalf("Scatter: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Fatalf("expected png magic bytes")
	}
}

func TestPaletteColors(t *testing.T) {
	cs := Viridis.Colors(4)
	if len(cs) != 4 {
		t.Fatalf("got %d colors", len(cs))
	}
	if cs[0] == cs[3] {
		t.Fatalf("palette samples should differ across the gradient")
	}
	if got := Palette(nil).Colors(2); got[0] != Blue || got[1] != Blue {
		t.Fatalf("empty palette should fall back to blue")
	}
}
