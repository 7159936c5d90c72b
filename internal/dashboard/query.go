package dashboard

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/salespulse/internal/sales"
)

// Scale is the display unit for quantities.
type Scale string

const (
	Units     Scale = "units"
	Thousands Scale = "thousands"
	Millions  Scale = "millions"
)

// Factor is the divisor applied to every displayed quantity.
func (s Scale) Factor() float64 {
	switch s {
	case Thousands:
		return 1e3
	case Millions:
		return 1e6
	}
	return 1
}

// Suffix labels quantity axes and columns.
func (s Scale) Suffix() string {
	switch s {
	case Thousands:
		return " (thousands)"
	case Millions:
		return " (millions)"
	}
	return ""
}

func parseScale(s string) (Scale, error) {
	switch Scale(strings.ToLower(strings.TrimSpace(s))) {
	case "", Units:
		return Units, nil
	case Thousands:
		return Thousands, nil
	case Millions:
		return Millions, nil
	}
	return "", fmt.Errorf("scale must be units, thousands or millions, got %q", s)
}

// Query is the resolved filter state of one rerun.
type Query struct {
	Start         time.Time
	End           time.Time
	Product       string
	Region        string
	Strategies    []string
	MinQuantity   float64
	ShowAnomalies bool
	Scale         Scale
}

// ParseQuery resolves request parameters against the dataset, filling in the
// widget defaults for anything not supplied.
func ParseQuery(vals url.Values, v Variant, t *sales.Table) (Query, error) {
	lo, hi := t.DateBounds()
	q := Query{Start: lo, End: hi, ShowAnomalies: true, Scale: Units}

	var err error
	startSet, endSet := false, false
	if s := strings.TrimSpace(vals.Get("start")); s != "" {
		if q.Start, err = time.Parse(sales.DateLayout, s); err != nil {
			return q, fmt.Errorf("start: expected YYYY-MM-DD, got %q", s)
		}
		startSet = true
	}
	if s := strings.TrimSpace(vals.Get("end")); s != "" {
		if q.End, err = time.Parse(sales.DateLayout, s); err != nil {
			return q, fmt.Errorf("end: expected YYYY-MM-DD, got %q", s)
		}
		endSet = true
	}
	if !q.Start.IsZero() && !q.End.IsZero() && q.End.Before(q.Start) {
		// a lone bound outside the data collapses the range to an empty view
		switch {
		case startSet && endSet:
			return q, fmt.Errorf("end %s is before start %s", q.End.Format(sales.DateLayout), q.Start.Format(sales.DateLayout))
		case startSet:
			q.End = q.Start
		default:
			q.Start = q.End
		}
	}

	q.Product = strings.TrimSpace(vals.Get("product"))
	if q.Product == "" {
		q.Product = defaultProduct(v, t)
	}
	if v.WithAll {
		q.Region = strings.TrimSpace(vals.Get("region"))
		if q.Region == "" {
			q.Region = sales.All
		}
	}
	for _, s := range vals["strategy"] {
		if s = strings.TrimSpace(s); s != "" && !slices.Contains(q.Strategies, s) {
			q.Strategies = append(q.Strategies, s)
		}
	}
	if s := strings.TrimSpace(vals.Get("min_qty")); s != "" {
		if q.MinQuantity, err = strconv.ParseFloat(s, 64); err != nil {
			return q, fmt.Errorf("min_qty: expected a number, got %q", s)
		}
	}
	// a submitted form omits unchecked boxes, so the marker decides the default
	if vals.Has("applied") || vals.Has("show_anomalies") {
		q.ShowAnomalies = isOn(vals.Get("show_anomalies"))
	}
	if v.WithAll {
		if q.Scale, err = parseScale(vals.Get("scale")); err != nil {
			return q, err
		}
	}
	return q, nil
}

func defaultProduct(v Variant, t *sales.Table) string {
	if v.WithAll {
		return sales.All
	}
	if products := t.Distinct(sales.ColProductType); len(products) > 0 {
		return products[0]
	}
	return ""
}

func isOn(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "on", "true", "yes":
		return true
	}
	return false
}

// Filter converts the query into table predicates.
func (q Query) Filter() sales.Filter {
	f := sales.Filter{Start: q.Start, End: q.End, Strategies: q.Strategies, MinQuantity: sales.Float(q.MinQuantity)}
	if q.Product != "" {
		f.ProductTypes = []string{q.Product}
	}
	if q.Region != "" {
		f.Regions = []string{q.Region}
	}
	return f
}

// Values encodes the query so chart URLs rerun with the same state.
func (q Query) Values() url.Values {
	vals := url.Values{}
	if !q.Start.IsZero() {
		vals.Set("start", q.Start.Format(sales.DateLayout))
	}
	if !q.End.IsZero() {
		vals.Set("end", q.End.Format(sales.DateLayout))
	}
	if q.Product != "" {
		vals.Set("product", q.Product)
	}
	if q.Region != "" {
		vals.Set("region", q.Region)
	}
	for _, s := range q.Strategies {
		vals.Add("strategy", s)
	}
	vals.Set("min_qty", strconv.FormatFloat(q.MinQuantity, 'f', -1, 64))
	vals.Set("applied", "1")
	if q.ShowAnomalies {
		vals.Set("show_anomalies", "on")
	}
	if q.Scale != "" && q.Scale != Units {
		vals.Set("scale", string(q.Scale))
	}
	return vals
}
