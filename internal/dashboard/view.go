package dashboard

import (
	"github.com/KaramelBytes/salespulse/internal/sales"
)

const forecastWindow = 7

// AnomalyRow is one line of the anomaly listing.
type AnomalyRow struct {
	Date         string  `json:"date"`
	ProductType  string  `json:"product_type"`
	Region       string  `json:"region,omitempty"`
	QuantitySold float64 `json:"quantity_sold"`
	Anomaly      int     `json:"anomaly"`
}

// View is everything one rerun displays, with quantities already divided by
// the display scale. Conversion rates are never scaled.
type View struct {
	Variant       string              `json:"variant"`
	Title         string              `json:"title"`
	Rows          int                 `json:"rows"`
	Scale         Scale               `json:"scale"`
	QuantityLabel string              `json:"quantity_label"`
	Summary       []sales.ColumnStats `json:"summary"`
	SalesOverTime []sales.DailyValue  `json:"sales_over_time"`
	ByStrategy    []sales.GroupValue  `json:"by_strategy"`
	Conversion    []sales.GroupValue  `json:"conversion"`
	ShowAnomalies bool                `json:"show_anomalies"`
	AnomalyCount  int                 `json:"anomaly_count"`
	Anomalies     []AnomalyRow        `json:"anomalies"`
	GroupBy       string              `json:"group_by"`
	Totals        []sales.GroupValue  `json:"totals"`
	Forecast      []sales.DailyValue  `json:"forecast"`
}

// Compute runs the full page pipeline against a fresh filtered view of t.
func Compute(t *sales.Table, v Variant, q Query) *View {
	ft := t.Filter(q.Filter())
	factor := q.Scale.Factor()
	view := &View{
		Variant:       v.Name,
		Title:         salesTitle(q.Product),
		Rows:          ft.Len(),
		Scale:         q.Scale,
		QuantityLabel: "Quantity Sold" + q.Scale.Suffix(),
		ShowAnomalies: q.ShowAnomalies,
		GroupBy:       v.GroupDim,
	}

	for _, s := range sales.Describe(ft) {
		if s.Column == sales.ColQuantitySold {
			s = s.Scaled(factor)
		}
		view.Summary = append(view.Summary, s)
	}

	// line and strategy bars plot per-date and per-strategy means; totals and
	// the forecast work on sums
	view.SalesOverTime = scaleDaily(sales.DailyMeans(ft), factor)
	view.ByStrategy = scaleGroups(sales.MeanQuantityBy(ft, sales.ColMarketingStrategy), factor)
	view.Conversion = sales.MeanConvertedBy(ft, sales.ColInteractionType)
	view.Totals = scaleGroups(sales.SumQuantityBy(ft, v.GroupDim), factor)
	view.Forecast = scaleDaily(sales.RollingMean(sales.DailyTotals(ft), forecastWindow), factor)

	if ft.HasAnomaly {
		for _, r := range ft.Anomalies() {
			view.Anomalies = append(view.Anomalies, AnomalyRow{
				Date:         r.Date.Format(sales.DateLayout),
				ProductType:  r.ProductType,
				Region:       r.Region,
				QuantitySold: r.QuantitySold / factor,
				Anomaly:      1,
			})
		}
		view.AnomalyCount = len(view.Anomalies)
	}
	return view
}

func salesTitle(product string) string {
	if product == "" || product == sales.All {
		return "Sales of All Products over Time"
	}
	return "Sales of " + product + " over Time"
}

func scaleGroups(groups []sales.GroupValue, factor float64) []sales.GroupValue {
	if factor == 1 {
		return groups
	}
	out := make([]sales.GroupValue, len(groups))
	for i, g := range groups {
		g.Value /= factor
		out[i] = g
	}
	return out
}

func scaleDaily(values []sales.DailyValue, factor float64) []sales.DailyValue {
	if factor == 1 {
		return values
	}
	out := make([]sales.DailyValue, len(values))
	for i, d := range values {
		d.Value /= factor
		out[i] = d
	}
	return out
}
