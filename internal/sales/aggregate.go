package sales

import (
	"sort"
	"time"
)

// GroupValue is one aggregated group.
type GroupValue struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// DailyValue is one point of a per-day series.
type DailyValue struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

type groupAcc struct {
	sum   float64
	count int
}

// aggregateBy groups records by a categorical column. Groups come back sorted by key.
func aggregateBy(t *Table, dim string, value func(Record) float64, mean bool) []GroupValue {
	if t.Len() == 0 {
		return nil
	}
	acc := map[string]*groupAcc{}
	for _, r := range t.Records {
		k := r.Dimension(dim)
		a := acc[k]
		if a == nil {
			a = &groupAcc{}
			acc[k] = a
		}
		a.sum += value(r)
		a.count++
	}
	out := make([]GroupValue, 0, len(acc))
	for k, a := range acc {
		v := a.sum
		if mean {
			v = a.sum / float64(a.count)
		}
		out = append(out, GroupValue{Key: k, Value: v, Count: a.count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func quantity(r Record) float64 { return r.QuantitySold }

func converted(r Record) float64 {
	if r.Converted {
		return 1
	}
	return 0
}

// SumQuantityBy totals QuantitySold per value of dim.
func SumQuantityBy(t *Table, dim string) []GroupValue {
	return aggregateBy(t, dim, quantity, false)
}

// MeanQuantityBy averages QuantitySold per value of dim.
func MeanQuantityBy(t *Table, dim string) []GroupValue {
	return aggregateBy(t, dim, quantity, true)
}

// MeanConvertedBy computes the conversion rate (mean of Converted) per value of dim.
func MeanConvertedBy(t *Table, dim string) []GroupValue {
	return aggregateBy(t, dim, converted, true)
}

// CountBy counts rows per value of dim; Value and Count both hold the count.
func CountBy(t *Table, dim string) []GroupValue {
	return aggregateBy(t, dim, func(Record) float64 { return 1 }, false)
}

// DailyTotals sums QuantitySold per date, sorted by date. Days without rows are absent.
func DailyTotals(t *Table) []DailyValue {
	return dailyBy(t, false)
}

// DailyMeans averages QuantitySold per date, sorted by date.
func DailyMeans(t *Table) []DailyValue {
	return dailyBy(t, true)
}

func dailyBy(t *Table, mean bool) []DailyValue {
	if t.Len() == 0 {
		return nil
	}
	acc := map[time.Time]*groupAcc{}
	for _, r := range t.Records {
		a := acc[r.Date]
		if a == nil {
			a = &groupAcc{}
			acc[r.Date] = a
		}
		a.sum += r.QuantitySold
		a.count++
	}
	out := make([]DailyValue, 0, len(acc))
	for d, a := range acc {
		v := a.sum
		if mean {
			v = a.sum / float64(a.count)
		}
		out = append(out, DailyValue{Date: d, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// RollingMean computes the trailing mean over window consecutive points.
// Points before the window fills are undefined and omitted, so result[k]
// belongs to values[k+window-1].
func RollingMean(values []DailyValue, window int) []DailyValue {
	if window <= 0 || len(values) < window {
		return nil
	}
	out := make([]DailyValue, 0, len(values)-window+1)
	var sum float64
	for i, v := range values {
		sum += v.Value
		if i >= window {
			sum -= values[i-window].Value
		}
		if i >= window-1 {
			out = append(out, DailyValue{Date: v.Date, Value: sum / float64(window)})
		}
	}
	return out
}

// Sum adds up group values.
func Sum(groups []GroupValue) float64 {
	var total float64
	for _, g := range groups {
		total += g.Value
	}
	return total
}
