package sales

import (
	"math"
	"testing"
)

func TestGroupSumsMatchTotal(t *testing.T) {
	tbl := loadFixture(t)
	for _, dim := range []string{ColProductType, ColMarketingStrategy, ColInteractionType} {
		groups := SumQuantityBy(tbl, dim)
		if math.Abs(Sum(groups)-tbl.TotalQuantity()) > 1e-9 {
			t.Fatalf("%s: group sum %v != total %v", dim, Sum(groups), tbl.TotalQuantity())
		}
		for i := 1; i < len(groups); i++ {
			if groups[i-1].Key >= groups[i].Key {
				t.Fatalf("%s: groups not sorted: %v", dim, groups)
			}
		}
	}
}

func TestMeanConvertedAndCount(t *testing.T) {
	tbl := loadFixture(t)
	rates := MeanConvertedBy(tbl, ColInteractionType)
	want := map[string]float64{"Click": 1, "View": 0, "Purchase": 1, "Inquiry": 0}
	for _, g := range rates {
		if g.Value != want[g.Key] {
			t.Fatalf("rate for %s: got %v want %v", g.Key, g.Value, want[g.Key])
		}
		if g.Value < 0 || g.Value > 1 {
			t.Fatalf("rate out of range: %+v", g)
		}
	}
	counts := CountBy(tbl, ColProductType)
	if len(counts) != 3 || counts[0].Key != "Books" || counts[0].Value != 2 || counts[0].Count != 2 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
	if SumQuantityBy(&Table{}, ColProductType) != nil {
		t.Fatalf("empty table should have no groups")
	}
}

func TestDailyTotals(t *testing.T) {
	daily := DailyTotals(loadFixture(t))
	want := []float64{15, 7, 123, 4}
	if len(daily) != len(want) {
		t.Fatalf("got %d days, want %d", len(daily), len(want))
	}
	for i, d := range daily {
		if d.Value != want[i] {
			t.Fatalf("day %d: got %v want %v", i, d.Value, want[i])
		}
		if i > 0 && !daily[i-1].Date.Before(d.Date) {
			t.Fatalf("days not ascending")
		}
	}
}

func TestMeansPerDayAndGroup(t *testing.T) {
	tbl := loadFixture(t)
	daily := DailyMeans(tbl)
	wantDaily := []float64{7.5, 7, 61.5, 4}
	if len(daily) != len(wantDaily) {
		t.Fatalf("got %d days, want %d", len(daily), len(wantDaily))
	}
	for i, d := range daily {
		if d.Value != wantDaily[i] {
			t.Fatalf("day %d: got %v want %v", i, d.Value, wantDaily[i])
		}
	}
	wantGroups := map[string]float64{"Email": 6.5, "Influencer": 120, "Social Media": 7, "TV": 4.5}
	groups := MeanQuantityBy(tbl, ColMarketingStrategy)
	if len(groups) != len(wantGroups) {
		t.Fatalf("unexpected groups: %+v", groups)
	}
	for _, g := range groups {
		if g.Value != wantGroups[g.Key] {
			t.Fatalf("mean for %s: got %v want %v", g.Key, g.Value, wantGroups[g.Key])
		}
	}
	if DailyMeans(&Table{}) != nil {
		t.Fatalf("empty table should have no days")
	}
}

func TestRollingMean(t *testing.T) {
	var in []DailyValue
	for i := 0; i < 20; i++ {
		in = append(in, DailyValue{Date: day("2023-01-01").AddDate(0, 0, i), Value: float64(i * i % 13)})
	}
	const w = 7
	out := RollingMean(in, w)
	if len(out) != len(in)-w+1 {
		t.Fatalf("got %d points, want %d", len(out), len(in)-w+1)
	}
	for k, p := range out {
		var sum float64
		for j := k; j < k+w; j++ {
			sum += in[j].Value
		}
		if math.Abs(p.Value-sum/w) > 1e-9 {
			t.Fatalf("point %d: got %v want %v", k, p.Value, sum/w)
		}
		if !p.Date.Equal(in[k+w-1].Date) {
			t.Fatalf("point %d dated %s, want %s", k, p.Date, in[k+w-1].Date)
		}
	}
	if RollingMean(in[:w-1], w) != nil {
		t.Fatalf("short series should have no defined points")
	}
}
