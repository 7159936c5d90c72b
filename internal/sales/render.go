package sales

import (
	"fmt"
	"strings"
	"text/tabwriter"
)

// DescribeText renders stats as a fixed-width table with one row per statistic
// and one column per dataset column.
func DescribeText(stats []ColumnStats) string {
	if len(stats) == 0 {
		return "(no rows)\n"
	}
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "\t")
	for _, s := range stats {
		fmt.Fprintf(tw, "%s\t", s.Column)
	}
	fmt.Fprintln(tw)
	rows := []struct {
		label string
		get   func(ColumnStats) float64
	}{
		{"count", func(s ColumnStats) float64 { return float64(s.Count) }},
		{"mean", func(s ColumnStats) float64 { return s.Mean }},
		{"std", func(s ColumnStats) float64 { return s.Std }},
		{"min", func(s ColumnStats) float64 { return s.Min }},
		{"25%", func(s ColumnStats) float64 { return s.Q25 }},
		{"50%", func(s ColumnStats) float64 { return s.Q50 }},
		{"75%", func(s ColumnStats) float64 { return s.Q75 }},
		{"max", func(s ColumnStats) float64 { return s.Max }},
	}
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t", row.label)
		for _, s := range stats {
			fmt.Fprintf(tw, "%.6f\t", row.get(s))
		}
		fmt.Fprintln(tw)
	}
	_ = tw.Flush()
	return b.String()
}

// GroupsText renders groups as "key  value" lines under a header.
func GroupsText(keyHeader, valueHeader string, groups []GroupValue) string {
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\n", keyHeader, valueHeader)
	for _, g := range groups {
		fmt.Fprintf(tw, "%s\t%.6g\n", safeVal(g.Key), g.Value)
	}
	_ = tw.Flush()
	return b.String()
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
