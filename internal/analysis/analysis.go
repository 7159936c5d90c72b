// Package analysis runs the exploratory analytics over a loaded sales table:
// interaction summary, numeric describe, a categorical-code regression and
// isolation-forest anomaly labels.
package analysis

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"

	"github.com/KaramelBytes/salespulse/internal/charts"
	"github.com/KaramelBytes/salespulse/internal/obs"
	"github.com/KaramelBytes/salespulse/internal/sales"
	"github.com/KaramelBytes/salespulse/internal/utils"
)

// Options configures Run.
type Options struct {
	TestSize      float64
	SplitSeed     uint64
	Contamination float64
	Trees         int
	MaxSamples    int
	ForestSeed    uint64
	// PlotPath, when set, receives the actual-vs-predicted scatter as PNG.
	PlotPath string
	// MaxPrint caps printed prediction lines; 0 prints all.
	MaxPrint int
}

// DefaultOptions returns the stock model parameters.
func DefaultOptions() Options {
	return Options{
		TestSize:      0.2,
		SplitSeed:     42,
		Contamination: 0.1,
		Trees:         100,
		MaxSamples:    256,
	}
}

// InteractionSummary is one row of the per-interaction-type table.
type InteractionSummary struct {
	InteractionType   string  `json:"interaction_type"`
	TotalInteractions int     `json:"total_interactions"`
	ConversionRate    float64 `json:"conversion_rate"`
}

// Prediction pairs a test row's fitted and observed quantity.
type Prediction struct {
	Row       int     `json:"row"`
	Predicted float64 `json:"predicted"`
	Actual    float64 `json:"actual"`
}

// Regression holds the fitted quantity model and its test-set results.
type Regression struct {
	Features    []string     `json:"features"`
	Categories  [][]string   `json:"categories"`
	Intercept   float64      `json:"intercept"`
	Coef        []float64    `json:"coef"`
	TrainRows   int          `json:"train_rows"`
	TestRows    int          `json:"test_rows"`
	R2          *float64     `json:"r2,omitempty"`
	RMSE        float64      `json:"rmse"`
	Predictions []Prediction `json:"predictions"`
}

// Report is the full output of one analysis run.
type Report struct {
	RunID        string               `json:"run_id"`
	Name         string               `json:"name"`
	Rows         int                  `json:"rows"`
	Skipped      int                  `json:"skipped"`
	Interactions []InteractionSummary `json:"interactions"`
	Summary      []sales.ColumnStats  `json:"summary"`
	Regression   Regression           `json:"regression"`
	Anomalous    []bool               `json:"-"`
	AnomalyCount int                  `json:"anomaly_count"`
	Threshold    float64              `json:"threshold"`
	PlotPath     string               `json:"plot_path,omitempty"`
	Notes        []string             `json:"notes,omitempty"`

	opt   Options
	table *sales.Table
}

// Interactions counts rows and averages Converted per InteractionType.
func Interactions(t *sales.Table) []InteractionSummary {
	counts := sales.CountBy(t, sales.ColInteractionType)
	rates := sales.MeanConvertedBy(t, sales.ColInteractionType)
	out := make([]InteractionSummary, len(counts))
	for i, c := range counts {
		// both groupings are sorted by the same key set
		out[i] = InteractionSummary{InteractionType: c.Key, TotalInteractions: c.Count, ConversionRate: rates[i].Value}
	}
	return out
}

// Run executes every analysis step over t. t is not modified; derived codes
// and model labels live in the report.
func Run(t *sales.Table, opt Options) (*Report, error) {
	if t.Len() == 0 {
		return nil, fmt.Errorf("analyze %s: dataset has no rows", t.Name)
	}
	rep := &Report{
		RunID:   uuid.NewString(),
		Name:    t.Name,
		Rows:    t.Len(),
		Skipped: t.Skipped,
		Notes:   append([]string(nil), t.Warnings...),
		opt:     opt,
		table:   t,
	}
	log := obs.Logger.With("run_id", rep.RunID)
	log.Info("analysis_start", "dataset", t.Name, "rows", t.Len())

	rep.Interactions = Interactions(t)
	rep.Summary = sales.Describe(t)

	if err := rep.fitRegression(t, opt); err != nil {
		return nil, err
	}
	log.Info("regression_fit", "train", rep.Regression.TrainRows, "test", rep.Regression.TestRows)

	rows := make([][]float64, t.Len())
	for i, r := range t.Records {
		rows[i] = []float64{r.QuantitySold}
	}
	forest, err := FitForest(rows, ForestOptions{
		Trees:         opt.Trees,
		MaxSamples:    opt.MaxSamples,
		Contamination: opt.Contamination,
		Seed:          opt.ForestSeed,
	})
	if err != nil {
		return nil, fmt.Errorf("anomaly detection: %w", err)
	}
	rep.Anomalous = forest.Predict(rows)
	rep.Threshold = forest.Threshold()
	for _, a := range rep.Anomalous {
		if a {
			rep.AnomalyCount++
		}
	}
	log.Info("anomalies_labelled", "count", rep.AnomalyCount, "threshold", rep.Threshold)

	if opt.PlotPath != "" {
		if err := rep.writePlot(opt.PlotPath); err != nil {
			return nil, err
		}
		rep.PlotPath = opt.PlotPath
	}
	return rep, nil
}

func (r *Report) fitRegression(t *sales.Table, opt Options) error {
	products := make([]string, t.Len())
	strategies := make([]string, t.Len())
	for i, rec := range t.Records {
		products[i] = rec.ProductType
		strategies[i] = rec.MarketingStrategy
	}
	pc, pcats := Codes(products)
	sc, scats := Codes(strategies)

	train, test, err := Split(t.Len(), opt.TestSize, opt.SplitSeed)
	if err != nil {
		return fmt.Errorf("regression: %w", err)
	}
	pick := func(idx []int) ([][]float64, []float64) {
		x := make([][]float64, len(idx))
		y := make([]float64, len(idx))
		for k, i := range idx {
			x[k] = []float64{pc[i], sc[i]}
			y[k] = t.Records[i].QuantitySold
		}
		return x, y
	}
	xTrain, yTrain := pick(train)
	xTest, yTest := pick(test)
	model, err := FitOLS(xTrain, yTrain)
	if err != nil {
		return fmt.Errorf("regression: %w", err)
	}
	pred := model.Predict(xTest)

	reg := Regression{
		Features:    []string{sales.ColProductType, sales.ColMarketingStrategy},
		Categories:  [][]string{pcats, scats},
		Intercept:   model.Intercept,
		Coef:        model.Coef,
		TrainRows:   len(train),
		TestRows:    len(test),
		RMSE:        RMSE(yTest, pred),
		Predictions: make([]Prediction, len(test)),
	}
	if r2, ok := RSquared(yTest, pred); ok {
		reg.R2 = &r2
	}
	for k, i := range test {
		reg.Predictions[k] = Prediction{Row: i, Predicted: pred[k], Actual: yTest[k]}
	}
	r.Regression = reg
	return nil
}

func (r *Report) writePlot(path string) error {
	n := len(r.Regression.Predictions)
	idx := make([]float64, n)
	actual := make([]float64, n)
	pred := make([]float64, n)
	for i, p := range r.Regression.Predictions {
		idx[i] = float64(i)
		actual[i] = p.Actual
		pred[i] = p.Predicted
	}
	var buf bytes.Buffer
	err := charts.Scatter(charts.ScatterSpec{
		Title:  "Predicted vs Actual Sales",
		XLabel: "Test Data Index",
		YLabel: "Quantity Sold",
		Sets: []charts.Points{
			{Name: "Actual Sales", Color: charts.Blue, X: idx, Y: actual},
			{Name: "Predicted Sales", Color: charts.Red, X: idx, Y: pred},
		},
	}, &buf, charts.PNG)
	if err != nil {
		return fmt.Errorf("plot: %w", err)
	}
	if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
		return fmt.Errorf("write plot: %w", err)
	}
	return nil
}
