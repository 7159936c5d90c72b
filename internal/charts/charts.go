// Package charts renders the dashboard and analysis charts with go-chart.
package charts

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNoData is returned when a chart has nothing meaningful to draw.
var ErrNoData = errors.New("charts: no data")

// Format selects the output encoding.
type Format string

const (
	SVG Format = "svg"
	PNG Format = "png"
)

// ContentType returns the HTTP content type for f.
func (f Format) ContentType() string {
	if f == PNG {
		return "image/png"
	}
	return "image/svg+xml"
}

func (f Format) provider() chart.RendererProvider {
	if f == PNG {
		return chart.PNG
	}
	return chart.SVG
}

const (
	defaultWidth  = 1000
	defaultHeight = 600
)

// Series is one named line of a time-series chart.
type Series struct {
	Name   string
	Color  drawing.Color
	Times  []time.Time
	Values []float64
}

// LineSpec describes a time-series line chart with dot markers.
type LineSpec struct {
	Title  string
	XLabel string
	YLabel string
	Series []Series
	Legend bool
	Width  int
	Height int
}

// BarValue is one labelled bar.
type BarValue struct {
	Label string
	Value float64
}

// BarSpec describes a categorical bar chart.
type BarSpec struct {
	Title   string
	YLabel  string
	Bars    []BarValue
	Palette Palette
	Width   int
	Height  int
}

// Points is one named point cloud of a scatter chart.
type Points struct {
	Name  string
	Color drawing.Color
	X     []float64
	Y     []float64
}

// ScatterSpec describes an x/y scatter chart.
type ScatterSpec struct {
	Title  string
	XLabel string
	YLabel string
	Sets   []Points
	Width  int
	Height int
}

func size(w, h int) (int, int) {
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	return w, h
}

var background = chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}}

// Line renders spec as a line chart. Series with fewer than two points are dropped;
// if none remain it returns ErrNoData.
func Line(spec LineSpec, w io.Writer, format Format) error {
	var series []chart.Series
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range spec.Series {
		if len(s.Times) < 2 || len(s.Times) != len(s.Values) {
			continue
		}
		for _, v := range s.Values {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		series = append(series, chart.TimeSeries{
			Name:    s.Name,
			XValues: s.Times,
			YValues: s.Values,
			Style: chart.Style{
				StrokeColor: s.Color,
				StrokeWidth: 2,
				DotColor:    s.Color,
				DotWidth:    3,
			},
		})
	}
	if len(series) == 0 {
		return ErrNoData
	}
	width, height := size(spec.Width, spec.Height)
	ch := chart.Chart{
		Title:      spec.Title,
		Width:      width,
		Height:     height,
		Background: background,
		XAxis: chart.XAxis{
			Name:           spec.XLabel,
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01-02"),
			Style:          chart.Style{TextRotationDegrees: 45},
		},
		YAxis: chart.YAxis{
			Name:  spec.YLabel,
			Range: valueRange(lo, hi),
		},
		Series: series,
	}
	if spec.Legend {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}
	if err := ch.Render(format.provider(), w); err != nil {
		return fmt.Errorf("render line chart: %w", err)
	}
	return nil
}

// Bar renders spec as a bar chart. An empty bar list returns ErrNoData.
func Bar(spec BarSpec, w io.Writer, format Format) error {
	if len(spec.Bars) == 0 {
		return ErrNoData
	}
	colors := spec.Palette.Colors(len(spec.Bars))
	bars := make([]chart.Value, len(spec.Bars))
	hi := 0.0
	for i, b := range spec.Bars {
		hi = math.Max(hi, b.Value)
		bars[i] = chart.Value{
			Label: b.Label,
			Value: b.Value,
			Style: chart.Style{FillColor: colors[i], StrokeColor: colors[i]},
		}
	}
	width, height := size(spec.Width, spec.Height)
	bw := barWidth(width, len(bars))
	bc := chart.BarChart{
		Title:      spec.Title,
		Width:      width,
		Height:     height,
		BarWidth:   bw,
		BarSpacing: bw,
		Background: background,
		YAxis: chart.YAxis{
			Name:  spec.YLabel,
			Range: valueRange(0, hi),
		},
		Bars: bars,
	}
	if err := bc.Render(format.provider(), w); err != nil {
		return fmt.Errorf("render bar chart: %w", err)
	}
	return nil
}

// Scatter renders spec as dots without connecting lines.
func Scatter(spec ScatterSpec, w io.Writer, format Format) error {
	var series []chart.Series
	xlo, xhi := math.Inf(1), math.Inf(-1)
	ylo, yhi := math.Inf(1), math.Inf(-1)
	for _, p := range spec.Sets {
		if len(p.X) == 0 || len(p.X) != len(p.Y) {
			continue
		}
		for i := range p.X {
			xlo, xhi = math.Min(xlo, p.X[i]), math.Max(xhi, p.X[i])
			ylo, yhi = math.Min(ylo, p.Y[i]), math.Max(yhi, p.Y[i])
		}
		series = append(series, chart.ContinuousSeries{
			Name:    p.Name,
			XValues: p.X,
			YValues: p.Y,
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidth:    3,
				DotColor:    p.Color,
			},
		})
	}
	if len(series) == 0 {
		return ErrNoData
	}
	width, height := size(spec.Width, spec.Height)
	ch := chart.Chart{
		Title:      spec.Title,
		Width:      width,
		Height:     height,
		Background: background,
		XAxis:      chart.XAxis{Name: spec.XLabel, Range: valueRange(xlo, xhi)},
		YAxis:      chart.YAxis{Name: spec.YLabel, Range: valueRange(ylo, yhi)},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	if err := ch.Render(format.provider(), w); err != nil {
		return fmt.Errorf("render scatter chart: %w", err)
	}
	return nil
}

// valueRange pads [lo, hi] so the axis never collapses to a zero delta.
func valueRange(lo, hi float64) *chart.ContinuousRange {
	if lo > 0 {
		lo = 0
	}
	if hi <= lo {
		hi = lo + 1
	}
	return &chart.ContinuousRange{Min: lo, Max: hi + (hi-lo)*0.05}
}

func barWidth(width, n int) int {
	bw := (width - 120) / (n * 2)
	if bw > 120 {
		bw = 120
	}
	if bw < 8 {
		bw = 8
	}
	return bw
}
