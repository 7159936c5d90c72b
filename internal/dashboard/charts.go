package dashboard

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"io"
	"time"

	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/KaramelBytes/salespulse/internal/charts"
	"github.com/KaramelBytes/salespulse/internal/sales"
)

// chartNames lists the page charts in display order.
var chartNames = []string{"sales", "strategy", "conversion", "totals", "forecast"}

var errUnknownChart = errors.New("unknown chart")

// renderChart writes the named chart of view as SVG. Charts without data
// render a placeholder instead of failing.
func renderChart(w io.Writer, name string, v Variant, view *View) error {
	var buf bytes.Buffer
	var err error
	switch name {
	case "sales":
		err = charts.Line(charts.LineSpec{
			Title:  view.Title,
			XLabel: "Date",
			YLabel: "Average " + view.QuantityLabel,
			Series: []charts.Series{daily("Quantity Sold", charts.Teal, view.SalesOverTime)},
		}, &buf, charts.SVG)
	case "strategy":
		err = charts.Bar(charts.BarSpec{
			Title:   "Sales Distribution by Marketing Strategy",
			YLabel:  "Average Quantity Sold" + view.Scale.Suffix(),
			Bars:    bars(view.ByStrategy),
			Palette: charts.Viridis,
		}, &buf, charts.SVG)
	case "conversion":
		err = charts.Bar(charts.BarSpec{
			Title:   "Conversion Rates by Interaction Type",
			YLabel:  "Conversion Rate",
			Bars:    bars(view.Conversion),
			Palette: charts.Magma,
		}, &buf, charts.SVG)
	case "totals":
		err = charts.Bar(charts.BarSpec{
			Title:   fmt.Sprintf("Sales Comparison Across %ss", v.GroupLabel),
			YLabel:  "Total Quantity Sold" + view.Scale.Suffix(),
			Bars:    bars(view.Totals),
			Palette: charts.Coolwarm,
		}, &buf, charts.SVG)
	case "forecast":
		err = charts.Line(charts.LineSpec{
			Title:  fmt.Sprintf("%d-Day Sales Forecast", forecastWindow),
			XLabel: "Date",
			YLabel: view.QuantityLabel,
			Series: []charts.Series{daily(fmt.Sprintf("Moving Average (%d days)", forecastWindow), charts.Orange, view.Forecast)},
			Legend: true,
		}, &buf, charts.SVG)
	default:
		return errUnknownChart
	}
	if errors.Is(err, charts.ErrNoData) {
		_, err = io.WriteString(w, placeholderSVG("No data for the current filters"))
		return err
	}
	if err != nil {
		return err
	}
	_, err = w.Write(buf.Bytes())
	return err
}

func daily(name string, color drawing.Color, values []sales.DailyValue) charts.Series {
	s := charts.Series{Name: name, Color: color, Times: make([]time.Time, len(values)), Values: make([]float64, len(values))}
	for i, d := range values {
		s.Times[i] = d.Date
		s.Values[i] = d.Value
	}
	return s
}

func bars(groups []sales.GroupValue) []charts.BarValue {
	out := make([]charts.BarValue, len(groups))
	for i, g := range groups {
		out[i] = charts.BarValue{Label: g.Key, Value: g.Value}
	}
	return out
}

func placeholderSVG(msg string) string {
	return `<svg xmlns="http://www.w3.org/2000/svg" width="1000" height="120" viewBox="0 0 1000 120">` +
		`<rect width="1000" height="120" fill="#f7f7f7"/>` +
		`<text x="500" y="65" text-anchor="middle" font-family="sans-serif" font-size="18" fill="#666">` +
		html.EscapeString(msg) + `</text></svg>`
}
