package sales

import "time"

// All is the selector sentinel meaning "no restriction" for a dimension.
const All = "All"

// Filter describes the predicates of a filtered view. The zero value keeps every row.
// Dimensions are AND-combined; values within a dimension are OR-combined.
type Filter struct {
	// Start and End bound Date inclusively at day granularity; zero means open.
	Start time.Time
	End   time.Time

	ProductTypes []string
	Regions      []string
	Strategies   []string

	// MinQuantity keeps rows with QuantitySold >= *MinQuantity when set.
	MinQuantity *float64
}

// Filter returns a new table with the records matching f. t is not modified.
func (t *Table) Filter(f Filter) *Table {
	start, end := f.Start, f.End
	if !start.IsZero() {
		start = truncateDay(start)
	}
	if !end.IsZero() {
		end = truncateDay(end)
	}
	products := valueSet(f.ProductTypes)
	regions := valueSet(f.Regions)
	strategies := valueSet(f.Strategies)

	out := t.derive(len(t.Records))
	for _, r := range t.Records {
		if !start.IsZero() && r.Date.Before(start) {
			continue
		}
		if !end.IsZero() && r.Date.After(end) {
			continue
		}
		if products != nil && !products[r.ProductType] {
			continue
		}
		if regions != nil && !regions[r.Region] {
			continue
		}
		if strategies != nil && !strategies[r.MarketingStrategy] {
			continue
		}
		if f.MinQuantity != nil && r.QuantitySold < *f.MinQuantity {
			continue
		}
		out.Records = append(out.Records, r)
	}
	return out
}

// valueSet builds an exact-match lookup set. It returns nil (no restriction)
// for an empty selection or one that contains All.
func valueSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		if v == All {
			return nil
		}
		set[v] = true
	}
	return set
}

// Float returns a pointer to v, for Filter.MinQuantity.
func Float(v float64) *float64 { return &v }
