package sales

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func TestDescribeValues(t *testing.T) {
	s := DescribeValues("x", []float64{4, 1, 3, 2})
	if s.Count != 4 || s.Mean != 2.5 || s.Min != 1 || s.Max != 4 {
		t.Fatalf("unexpected stats: %+v", s)
	}
	if math.Abs(s.Std-math.Sqrt(5.0/3.0)) > 1e-12 {
		t.Fatalf("sample std: %v", s.Std)
	}
	if s.Q25 != 1.75 || s.Q50 != 2.5 || s.Q75 != 3.25 {
		t.Fatalf("quartiles: %v %v %v", s.Q25, s.Q50, s.Q75)
	}
	if one := DescribeValues("x", []float64{7}); one.Std != 0 || one.Q50 != 7 {
		t.Fatalf("single value: %+v", one)
	}
}

func TestDescribeTable(t *testing.T) {
	stats := Describe(loadFixture(t))
	if len(stats) != 3 {
		t.Fatalf("expected QuantitySold, Converted, Anomaly; got %d columns", len(stats))
	}
	if stats[0].Column != ColQuantitySold || stats[0].Max != 120 {
		t.Fatalf("quantity stats: %+v", stats[0])
	}
	if stats[1].Mean != 0.5 {
		t.Fatalf("conversion mean: %v", stats[1].Mean)
	}
	if Describe(&Table{}) != nil {
		t.Fatalf("empty table should describe to nil")
	}
	if _, err := json.Marshal(stats); err != nil {
		t.Fatalf("stats must be JSON-safe: %v", err)
	}

	scaled := stats[0].Scaled(1000)
	if scaled.Count != stats[0].Count || scaled.Max != 0.12 {
		t.Fatalf("scaled: %+v", scaled)
	}
}

func TestDescribeText(t *testing.T) {
	out := DescribeText(Describe(loadFixture(t)))
	for _, want := range []string{"QuantitySold", "count", "25%", "max", "120.000000"} {
		if !strings.Contains(out, want) {
			t.Fatalf("describe text missing %q:\n%s", want, out)
		}
	}
	if DescribeText(nil) != "(no rows)\n" {
		t.Fatalf("empty describe text")
	}
	g := GroupsText("ProductType", "QuantitySold", SumQuantityBy(loadFixture(t), ColProductType))
	if !strings.Contains(g, "Clothing") || !strings.Contains(g, "125") {
		t.Fatalf("groups text:\n%s", g)
	}
}
