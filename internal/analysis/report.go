package analysis

import (
	"fmt"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/KaramelBytes/salespulse/internal/sales"
)

type interactionRow struct {
	InteractionType   string  `dataframe:"InteractionType"`
	TotalInteractions int     `dataframe:"total_interactions"`
	ConversionRate    float64 `dataframe:"conversion_rate"`
}

type labelledRow struct {
	Date              string  `dataframe:"Date"`
	ProductType       string  `dataframe:"ProductType"`
	MarketingStrategy string  `dataframe:"MarketingStrategy"`
	InteractionType   string  `dataframe:"InteractionType"`
	QuantitySold      float64 `dataframe:"QuantitySold"`
	Converted         bool    `dataframe:"Converted"`
	Region            string  `dataframe:"Region"`
	Anomaly           bool    `dataframe:"Anomaly"`
}

// Frame returns the dataset with the model's Anomaly column as a DataFrame.
// Region is included only when the dataset has that column.
func (r *Report) Frame() dataframe.DataFrame {
	rows := make([]labelledRow, 0, len(r.table.Records))
	for i, rec := range r.table.Records {
		rows = append(rows, labelledRow{
			Date:              rec.Date.Format(sales.DateLayout),
			ProductType:       rec.ProductType,
			MarketingStrategy: rec.MarketingStrategy,
			InteractionType:   rec.InteractionType,
			QuantitySold:      rec.QuantitySold,
			Converted:         rec.Converted,
			Region:            rec.Region,
			Anomaly:           r.Anomalous[i],
		})
	}
	df := dataframe.LoadStructs(rows)
	if !r.table.HasRegion {
		df = df.Drop(sales.ColRegion)
	}
	return df
}

// AnomalyFrame returns only the rows labelled anomalous.
func (r *Report) AnomalyFrame() dataframe.DataFrame {
	return r.Frame().Filter(dataframe.F{Colname: "Anomaly", Comparator: series.Eq, Comparando: true})
}

func (r *Report) interactionFrame() dataframe.DataFrame {
	rows := make([]interactionRow, len(r.Interactions))
	for i, s := range r.Interactions {
		rows[i] = interactionRow(s)
	}
	return dataframe.LoadStructs(rows)
}

// Text renders the report for the terminal.
func (r *Report) Text() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	b.WriteString(fmt.Sprintf("Run: %s\n", r.RunID))
	b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	if r.Skipped > 0 {
		b.WriteString(fmt.Sprintf("Rows: %d (skipped %d)\n\n", r.Rows, r.Skipped))
	} else {
		b.WriteString(fmt.Sprintf("Rows: %d\n\n", r.Rows))
	}

	b.WriteString("[INTERACTION SUMMARY]\n")
	b.WriteString(r.interactionFrame().String())
	b.WriteString("\n\n")

	b.WriteString("[STATISTICAL SUMMARY]\n")
	b.WriteString(sales.DescribeText(r.Summary))
	b.WriteString("\n")

	reg := r.Regression
	b.WriteString("[SALES FORECASTING RESULTS]\n")
	b.WriteString(fmt.Sprintf("Model: QuantitySold = %.4f", reg.Intercept))
	for i, f := range reg.Features {
		b.WriteString(fmt.Sprintf(" %+.4f*%s", reg.Coef[i], f))
	}
	b.WriteString("\n")
	for i, f := range reg.Features {
		b.WriteString(fmt.Sprintf("- %s codes: %s\n", f, codeList(reg.Categories[i])))
	}
	b.WriteString(fmt.Sprintf("Train rows: %d, test rows: %d\n", reg.TrainRows, reg.TestRows))
	if reg.R2 != nil {
		b.WriteString(fmt.Sprintf("Test R²: %.4f, RMSE: %.4f\n", *reg.R2, reg.RMSE))
	} else {
		b.WriteString(fmt.Sprintf("Test R²: n/a (constant target), RMSE: %.4f\n", reg.RMSE))
	}
	limit := len(reg.Predictions)
	if r.opt.MaxPrint > 0 && r.opt.MaxPrint < limit {
		limit = r.opt.MaxPrint
	}
	for _, p := range reg.Predictions[:limit] {
		b.WriteString(fmt.Sprintf("Predicted: %v, Actual: %v\n", p.Predicted, p.Actual))
	}
	if limit < len(reg.Predictions) {
		b.WriteString(fmt.Sprintf("... %d more predictions\n", len(reg.Predictions)-limit))
	}
	b.WriteString("\n")

	b.WriteString("[DATASET WITH ANOMALIES DETECTED]\n")
	b.WriteString(r.Frame().String())
	b.WriteString("\n\n")

	b.WriteString("[ANOMALIES]\n")
	b.WriteString(fmt.Sprintf("Anomalous rows: %d of %d (contamination %.2f, score threshold %.4f)\n",
		r.AnomalyCount, r.Rows, r.opt.Contamination, r.Threshold))
	if r.AnomalyCount > 0 {
		b.WriteString(r.AnomalyFrame().String())
		b.WriteString("\n")
	}

	if r.PlotPath != "" || len(r.Notes) > 0 {
		b.WriteString("\n[NOTES]\n")
		if r.PlotPath != "" {
			b.WriteString(fmt.Sprintf("- actual vs predicted plot written to %s\n", r.PlotPath))
		}
		for _, n := range r.Notes {
			b.WriteString("- " + n + "\n")
		}
	}
	return b.String()
}

func codeList(cats []string) string {
	parts := make([]string, len(cats))
	for i, c := range cats {
		parts[i] = fmt.Sprintf("%d=%s", i, c)
	}
	return strings.Join(parts, ", ")
}
