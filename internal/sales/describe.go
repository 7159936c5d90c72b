package sales

import (
	"math"
	"sort"
)

// ColumnStats is the numeric summary of one column: count, mean, sample
// standard deviation, min, quartiles and max.
type ColumnStats struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q25    float64 `json:"q25"`
	Q50    float64 `json:"q50"`
	Q75    float64 `json:"q75"`
	Max    float64 `json:"max"`
}

// Describe summarizes the numeric columns of t: QuantitySold, Converted and,
// when present, Anomaly. Flags count as 0/1. An empty table yields no stats.
func Describe(t *Table) []ColumnStats {
	if t.Len() == 0 {
		return nil
	}
	n := t.Len()
	qty := make([]float64, n)
	conv := make([]float64, n)
	var anom []float64
	if t.HasAnomaly {
		anom = make([]float64, n)
	}
	for i, r := range t.Records {
		qty[i] = r.QuantitySold
		conv[i] = converted(r)
		if anom != nil && r.Anomaly {
			anom[i] = 1
		}
	}
	out := []ColumnStats{DescribeValues(ColQuantitySold, qty), DescribeValues(ColConverted, conv)}
	if anom != nil {
		out = append(out, DescribeValues(ColAnomaly, anom))
	}
	return out
}

// DescribeValues summarizes a single numeric column. Std is 0 for fewer than two values.
func DescribeValues(name string, vals []float64) ColumnStats {
	s := ColumnStats{Column: name, Count: len(vals)}
	if len(vals) == 0 {
		return s
	}
	// Welford update
	var mean, m2 float64
	for i, x := range vals {
		delta := x - mean
		mean += delta / float64(i+1)
		m2 += delta * (x - mean)
	}
	s.Mean = mean
	if len(vals) > 1 {
		s.Std = math.Sqrt(m2 / float64(len(vals)-1))
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	s.Q25 = Quantile(sorted, 0.25)
	s.Q50 = Quantile(sorted, 0.5)
	s.Q75 = Quantile(sorted, 0.75)
	return s
}

// Scaled returns a copy with every value statistic divided by factor.
// Count is untouched.
func (s ColumnStats) Scaled(factor float64) ColumnStats {
	if factor == 0 || factor == 1 {
		return s
	}
	s.Mean /= factor
	s.Std /= factor
	s.Min /= factor
	s.Q25 /= factor
	s.Q50 /= factor
	s.Q75 /= factor
	s.Max /= factor
	return s
}

// Quantile interpolates linearly between closest ranks of an ascending slice.
func Quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
