// Package dashboard serves the interactive sales dashboards over HTTP.
package dashboard

import (
	"fmt"

	"github.com/KaramelBytes/salespulse/internal/sales"
)

// Variant describes one dashboard flavour.
type Variant struct {
	Name        string
	Title       string
	Description string
	// GroupDim is the column of the totals comparison section.
	GroupDim   string
	GroupLabel string
	// WithAll adds the All option to the product selector and enables the
	// region selector and the display scale.
	WithAll bool
}

var variants = map[string]Variant{
	"product": {
		Name:  "product",
		Title: "Product Sales Dashboard",
		Description: "This dashboard provides insights into product sales, customer interactions, and the " +
			"effectiveness of marketing strategies. Use the interactive filters to explore the data in various ways.",
		GroupDim:   sales.ColProductType,
		GroupLabel: "Product Type",
	},
	"region": {
		Name:  "region",
		Title: "Product Sales Dashboard by Region",
		Description: "Sales, conversions and anomalies across products and regions. Pick a product, a region " +
			"and a display scale to explore the data.",
		GroupDim:   sales.ColRegion,
		GroupLabel: "Region",
		WithAll:    true,
	},
}

// LookupVariant returns the named variant.
func LookupVariant(name string) (Variant, error) {
	v, ok := variants[name]
	if !ok {
		return Variant{}, fmt.Errorf("unknown dashboard variant %q (want product or region)", name)
	}
	return v, nil
}

// Check verifies the table carries the columns the variant needs.
func (v Variant) Check(t *sales.Table) error {
	if v.GroupDim == sales.ColRegion && !t.HasRegion {
		return &sales.MissingColumnsError{Source: t.Name, Columns: []string{sales.ColRegion}}
	}
	return nil
}
