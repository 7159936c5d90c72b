package dashboard

import (
	"fmt"
	"html/template"
	"net/url"
	"strconv"
	"strings"

	"github.com/KaramelBytes/salespulse/internal/sales"
)

type option struct {
	Value    string
	Selected bool
}

type statRow struct {
	Label  string
	Values []string
}

type chartRef struct {
	Name string
	URL  string
}

type pageData struct {
	Variant     Variant
	View        *View
	Query       Query
	Start       string
	End         string
	Products    []option
	Regions     []option
	Strategies  []option
	Scales      []option
	MinQty      string
	QtyMin      string
	QtyMax      string
	StatHeader  []string
	StatRows    []statRow
	Charts      map[string]chartRef
	HasRegion   bool
	QueryString string
}

func newPageData(t *sales.Table, v Variant, q Query, view *View) pageData {
	d := pageData{
		Variant:   v,
		View:      view,
		Query:     q,
		Start:     dateOrEmpty(q.Start.Format(sales.DateLayout), q.Start.IsZero()),
		End:       dateOrEmpty(q.End.Format(sales.DateLayout), q.End.IsZero()),
		MinQty:    strconv.FormatFloat(q.MinQuantity, 'f', -1, 64),
		HasRegion: t.HasRegion,
		Charts:    map[string]chartRef{},
	}
	lo, hi := t.QuantityBounds()
	d.QtyMin = strconv.FormatFloat(lo, 'f', -1, 64)
	d.QtyMax = strconv.FormatFloat(hi, 'f', -1, 64)

	products := t.Distinct(sales.ColProductType)
	if v.WithAll {
		products = append([]string{sales.All}, t.Uniques(sales.ColProductType)...)
		regions := append([]string{sales.All}, t.Uniques(sales.ColRegion)...)
		d.Regions = options(regions, q.Region)
		d.Scales = options([]string{string(Units), string(Thousands), string(Millions)}, string(q.Scale))
	}
	d.Products = options(products, q.Product)
	d.Strategies = options(t.Distinct(sales.ColMarketingStrategy), q.Strategies...)

	for _, s := range view.Summary {
		d.StatHeader = append(d.StatHeader, s.Column)
	}
	if len(view.Summary) > 0 {
		add := func(label string, get func(sales.ColumnStats) float64) {
			row := statRow{Label: label}
			for _, s := range view.Summary {
				row.Values = append(row.Values, strconv.FormatFloat(get(s), 'f', 4, 64))
			}
			d.StatRows = append(d.StatRows, row)
		}
		add("count", func(s sales.ColumnStats) float64 { return float64(s.Count) })
		add("mean", func(s sales.ColumnStats) float64 { return s.Mean })
		add("std", func(s sales.ColumnStats) float64 { return s.Std })
		add("min", func(s sales.ColumnStats) float64 { return s.Min })
		add("25%", func(s sales.ColumnStats) float64 { return s.Q25 })
		add("50%", func(s sales.ColumnStats) float64 { return s.Q50 })
		add("75%", func(s sales.ColumnStats) float64 { return s.Q75 })
		add("max", func(s sales.ColumnStats) float64 { return s.Max })
	}

	d.QueryString = q.Values().Encode()
	for _, name := range chartNames {
		d.Charts[name] = chartRef{Name: name, URL: chartURL(name, q.Values())}
	}
	return d
}

func chartURL(name string, vals url.Values) string {
	return "/charts/" + name + ".svg?" + vals.Encode()
}

func dateOrEmpty(s string, zero bool) string {
	if zero {
		return ""
	}
	return s
}

func options(values []string, selected ...string) []option {
	out := make([]option, len(values))
	for i, v := range values {
		out[i] = option{Value: v}
		for _, s := range selected {
			if s == v {
				out[i].Selected = true
			}
		}
	}
	return out
}

var pageTmpl = template.Must(template.Must(template.New("page").Parse(pageHTML)).Parse(sectionsHTML))

// sectionNames are the page sections re-rendered server side on every
// websocket rerun; charts reload through their URLs instead.
var sectionNames = []string{"summary", "anomalies"}

func renderSections(d pageData) (map[string]string, error) {
	out := make(map[string]string, len(sectionNames))
	for _, name := range sectionNames {
		var b strings.Builder
		if err := pageTmpl.ExecuteTemplate(&b, name, d); err != nil {
			return nil, fmt.Errorf("render %s section: %w", name, err)
		}
		out[name] = b.String()
	}
	return out, nil
}

const sectionsHTML = `{{define "summary"}}{{if .StatRows}}<table>
<tr><th></th>{{range .StatHeader}}<th>{{.}}</th>{{end}}</tr>
{{range .StatRows}}<tr><td>{{.Label}}</td>{{range .Values}}<td>{{.}}</td>{{end}}</tr>
{{end}}</table>{{else}}<p class="note">No data for the current filters.</p>{{end}}{{end}}
{{define "anomalies"}}{{if .View.ShowAnomalies}}{{if .View.Anomalies}}<p>Anomalies detected: {{.View.AnomalyCount}}</p>
<table>
<tr><th>Date</th><th>ProductType</th>{{if .HasRegion}}<th>Region</th>{{end}}<th>{{.View.QuantityLabel}}</th><th>Anomaly</th></tr>
{{range .View.Anomalies}}<tr><td>{{.Date}}</td><td>{{.ProductType}}</td>{{if $.HasRegion}}<td>{{.Region}}</td>{{end}}<td>{{.QuantitySold}}</td><td>{{.Anomaly}}</td></tr>
{{end}}</table>{{else}}<p>No anomalies detected in the selected period.</p>{{end}}{{end}}{{end}}`

const pageHTML = `<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Variant.Title}}</title>
<style>
body { font-family: sans-serif; margin: 0; display: flex; color: #222; }
aside { width: 260px; padding: 16px; background: #f3f4f6; min-height: 100vh; box-sizing: border-box; }
aside label { display: block; margin-top: 12px; font-size: 14px; }
aside select, aside input { width: 100%; box-sizing: border-box; }
main { flex: 1; padding: 16px 32px; }
section { margin-bottom: 32px; }
table { border-collapse: collapse; font-size: 14px; }
th, td { border: 1px solid #ddd; padding: 4px 8px; text-align: right; }
th:first-child, td:first-child { text-align: left; }
img { max-width: 100%; }
.note { color: #666; font-style: italic; }
footer { border-top: 1px solid #ddd; padding-top: 8px; color: #666; }
</style>
</head>
<body>
<aside>
<h3>Filter Data</h3>
<form id="filters" method="get" action="/">
<input type="hidden" name="applied" value="1">
<label>Start Date <input type="date" name="start" value="{{.Start}}"></label>
<label>End Date <input type="date" name="end" value="{{.End}}"></label>
<label>Select Product Type
<select name="product">{{range .Products}}<option{{if .Selected}} selected{{end}}>{{.Value}}</option>{{end}}</select></label>
{{if .Variant.WithAll}}<label>Select Region
<select name="region">{{range .Regions}}<option{{if .Selected}} selected{{end}}>{{.Value}}</option>{{end}}</select></label>{{end}}
<label>Select Marketing Strategies
<select name="strategy" multiple>{{range .Strategies}}<option{{if .Selected}} selected{{end}}>{{.Value}}</option>{{end}}</select></label>
<label>Min Sales Quantity <input type="number" name="min_qty" min="{{.QtyMin}}" max="{{.QtyMax}}" value="{{.MinQty}}"></label>
{{if .Variant.WithAll}}<label>Display Scale
<select name="scale">{{range .Scales}}<option{{if .Selected}} selected{{end}}>{{.Value}}</option>{{end}}</select></label>{{end}}
<label><input type="checkbox" name="show_anomalies" style="width:auto"{{if .Query.ShowAnomalies}} checked{{end}}> Show Anomalies</label>
<p><button type="submit">Apply</button></p>
</form>
</aside>
<main>
<h1>{{.Variant.Title}}</h1>
<p>{{.Variant.Description}}</p>
<p id="rows">Rows in view: {{.View.Rows}}</p>

<section>
<h2>Summary Statistics</h2>
<div id="summary">{{template "summary" .}}</div>
</section>

<section>
<h2>Product Sales Over Time</h2>
<img class="chart" data-name="sales" src="{{(index .Charts "sales").URL}}" alt="{{.View.Title}}">
</section>

<section>
<h2>Sales Distribution by Marketing Strategy</h2>
<img class="chart" data-name="strategy" src="{{(index .Charts "strategy").URL}}" alt="Sales distribution by marketing strategy">
</section>

<section>
<h2>Conversion Rates by Interaction Type</h2>
<img class="chart" data-name="conversion" src="{{(index .Charts "conversion").URL}}" alt="Conversion rates by interaction type">
</section>

<section>
<h2>Anomaly Detection</h2>
<div id="anomalies">{{template "anomalies" .}}</div>
</section>

<section>
<h2>Sales Comparison by {{.Variant.GroupLabel}}</h2>
<img class="chart" data-name="totals" src="{{(index .Charts "totals").URL}}" alt="Totals by {{.Variant.GroupLabel}}">
</section>

<section>
<h2>Sales Forecast (Next 7 Days)</h2>
<img class="chart" data-name="forecast" src="{{(index .Charts "forecast").URL}}" alt="7-day moving average">
</section>

<footer>SalesPulse &middot; {{.Variant.Name}} dashboard</footer>
</main>
<script>
(function () {
  var form = document.getElementById("filters");
  if (!window.WebSocket) { return; }
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + "/ws");
  ws.onmessage = function (ev) {
    var msg = JSON.parse(ev.data);
    if (msg.error) { return; }
    document.getElementById("rows").textContent = "Rows in view: " + msg.view.rows;
    Object.keys(msg.sections || {}).forEach(function (name) {
      var el = document.getElementById(name);
      if (el) { el.innerHTML = msg.sections[name]; }
    });
    document.querySelectorAll("img.chart").forEach(function (img) {
      img.src = "/charts/" + img.dataset.name + ".svg?" + msg.query;
    });
    history.replaceState(null, "", "/?" + msg.query);
  };
  form.addEventListener("change", function () {
    if (ws.readyState !== WebSocket.OPEN) { return; }
    ws.send(JSON.stringify({query: new URLSearchParams(new FormData(form)).toString()}));
  });
})();
</script>
</body>
</html>
`
