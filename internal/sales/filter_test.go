package sales

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	d, _ := time.Parse(DateLayout, s)
	return d
}

func TestFilter(t *testing.T) {
	tbl := loadFixture(t)
	cases := []struct {
		name string
		f    Filter
		want int
	}{
		{"zero value keeps all", Filter{}, 6},
		{"date range inclusive", Filter{Start: day("2023-01-02"), End: day("2023-01-03")}, 3},
		{"end bound with clock time", Filter{End: day("2023-01-01").Add(15 * time.Hour)}, 2},
		{"single product", Filter{ProductTypes: []string{"Electronics"}}, 2},
		{"all sentinel is a no-op", Filter{ProductTypes: []string{All}}, 6},
		{"strategies are or-combined", Filter{Strategies: []string{"Email", "TV"}}, 4},
		{"dimensions are and-combined", Filter{ProductTypes: []string{"Books"}, Strategies: []string{"TV"}}, 1},
		{"min quantity inclusive", Filter{MinQuantity: Float(7)}, 3},
		{"unknown value matches nothing", Filter{ProductTypes: []string{"Toys"}}, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := tbl.Filter(c.f)
			if got.Len() != c.want {
				t.Fatalf("got %d rows, want %d", got.Len(), c.want)
			}
			if !got.HasAnomaly {
				t.Fatalf("filtered table lost header metadata")
			}
		})
	}
	if tbl.Len() != 6 {
		t.Fatalf("filter mutated the source table")
	}
}

func TestFilterSingleValueInvariant(t *testing.T) {
	tbl := loadFixture(t)
	for _, p := range tbl.Uniques(ColProductType) {
		for _, r := range tbl.Filter(Filter{ProductTypes: []string{p}}).Records {
			if r.ProductType != p {
				t.Fatalf("filter on %s returned %s", p, r.ProductType)
			}
		}
	}
}
