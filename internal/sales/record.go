// Package sales loads the product sales dataset and derives filtered views,
// group aggregates and summary statistics from it.
package sales

import (
	"math"
	"sort"
	"time"
)

// Column names as they appear in the dataset header.
const (
	ColDate              = "Date"
	ColProductType       = "ProductType"
	ColMarketingStrategy = "MarketingStrategy"
	ColInteractionType   = "InteractionType"
	ColQuantitySold      = "QuantitySold"
	ColConverted         = "Converted"
	ColAnomaly           = "Anomaly"
	ColRegion            = "Region"
)

// DateLayout is the day-precision layout used for output and query parameters.
const DateLayout = "2006-01-02"

// Record is one row of the sales dataset.
type Record struct {
	Date              time.Time `json:"date"`
	ProductType       string    `json:"product_type"`
	MarketingStrategy string    `json:"marketing_strategy"`
	InteractionType   string    `json:"interaction_type"`
	QuantitySold      float64   `json:"quantity_sold"`
	Converted         bool      `json:"converted"`
	Anomaly           bool      `json:"anomaly"`
	Region            string    `json:"region,omitempty"`
}

// Dimension returns the categorical value of the named column.
// Unknown names return the empty string.
func (r Record) Dimension(col string) string {
	switch col {
	case ColProductType:
		return r.ProductType
	case ColMarketingStrategy:
		return r.MarketingStrategy
	case ColInteractionType:
		return r.InteractionType
	case ColRegion:
		return r.Region
	case ColDate:
		return r.Date.Format(DateLayout)
	}
	return ""
}

// Table is an in-memory, read-only set of records. Filtering derives new tables.
type Table struct {
	Name       string
	Records    []Record
	HasAnomaly bool
	HasRegion  bool
	// Skipped counts rows dropped because a required cell failed to parse.
	Skipped  int
	Warnings []string
}

// Len returns the number of records.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// derive returns an empty table that keeps t's header metadata.
func (t *Table) derive(capacity int) *Table {
	return &Table{
		Name:       t.Name,
		Records:    make([]Record, 0, capacity),
		HasAnomaly: t.HasAnomaly,
		HasRegion:  t.HasRegion,
	}
}

// Distinct returns the distinct values of a categorical column in order of first appearance.
func (t *Table) Distinct(col string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, r := range t.Records {
		v := r.Dimension(col)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Uniques returns the distinct values of a categorical column sorted ascending.
func (t *Table) Uniques(col string) []string {
	out := t.Distinct(col)
	sort.Strings(out)
	return out
}

// DateBounds returns the earliest and latest record dates. Both are zero for an empty table.
func (t *Table) DateBounds() (time.Time, time.Time) {
	var lo, hi time.Time
	for i, r := range t.Records {
		if i == 0 || r.Date.Before(lo) {
			lo = r.Date
		}
		if i == 0 || r.Date.After(hi) {
			hi = r.Date
		}
	}
	return lo, hi
}

// QuantityBounds returns the min and max QuantitySold. Both are zero for an empty table.
func (t *Table) QuantityBounds() (float64, float64) {
	if t.Len() == 0 {
		return 0, 0
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, r := range t.Records {
		lo = math.Min(lo, r.QuantitySold)
		hi = math.Max(hi, r.QuantitySold)
	}
	return lo, hi
}

// TotalQuantity sums QuantitySold over all records.
func (t *Table) TotalQuantity() float64 {
	var total float64
	for _, r := range t.Records {
		total += r.QuantitySold
	}
	return total
}

// Anomalies returns the records flagged in the dataset's Anomaly column.
func (t *Table) Anomalies() []Record {
	var out []Record
	for _, r := range t.Records {
		if r.Anomaly {
			out = append(out, r)
		}
	}
	return out
}

func truncateDay(ts time.Time) time.Time {
	y, m, d := ts.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
