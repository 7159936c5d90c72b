package sales

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"strconv"
	"time"
)

// GenerateOptions controls synthetic dataset generation.
type GenerateOptions struct {
	Rows    int
	Start   time.Time
	Days    int
	Regions bool
	Seed    uint64
	// AnomalyRate is the share of rows turned into flagged quantity spikes.
	AnomalyRate float64
}

// DefaultGenerateOptions mirrors the shape of the reference dataset.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Rows:        10000,
		Start:       time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		Days:        365,
		Seed:        1,
		AnomalyRate: 0.05,
	}
}

var (
	genProducts     = []string{"Electronics", "Clothing", "Home Appliances", "Books", "Beauty"}
	genStrategies   = []string{"Email", "Social Media", "TV", "Influencer"}
	genInteractions = []string{"Click", "View", "Purchase", "Inquiry"}
	genRegions      = []string{"North", "South", "East", "West"}
	// base daily quantity per product, conversion probability per interaction
	genBase       = map[string]float64{"Electronics": 40, "Clothing": 60, "Home Appliances": 25, "Books": 35, "Beauty": 50}
	genStratBoost = map[string]float64{"Email": 0.9, "Social Media": 1.2, "TV": 1.1, "Influencer": 1.3}
	genConvProb   = map[string]float64{"Click": 0.15, "View": 0.05, "Purchase": 0.9, "Inquiry": 0.3}
)

// Generate writes a deterministic synthetic dataset with the loader's schema.
func Generate(w io.Writer, opt GenerateOptions) error {
	if opt.Rows <= 0 {
		return fmt.Errorf("generate: rows must be positive, got %d", opt.Rows)
	}
	if opt.Days <= 0 {
		opt.Days = 1
	}
	if opt.Start.IsZero() {
		opt.Start = DefaultGenerateOptions().Start
	}
	r := rand.New(rand.NewPCG(opt.Seed, opt.Seed^0x9e3779b97f4a7c15))
	cw := csv.NewWriter(w)
	header := []string{ColDate, ColProductType, ColMarketingStrategy, ColInteractionType, ColQuantitySold, ColConverted, ColAnomaly}
	if opt.Regions {
		header = append(header, ColRegion)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := 0; i < opt.Rows; i++ {
		day := opt.Start.AddDate(0, 0, r.IntN(opt.Days))
		product := genProducts[r.IntN(len(genProducts))]
		strategy := genStrategies[r.IntN(len(genStrategies))]
		interaction := genInteractions[r.IntN(len(genInteractions))]
		// weekly seasonality plus noise
		season := 1 + 0.2*math.Sin(2*math.Pi*float64(day.YearDay())/7)
		qty := genBase[product] * genStratBoost[strategy] * season * (0.7 + 0.6*r.Float64())
		anomaly := r.Float64() < opt.AnomalyRate
		if anomaly {
			qty *= 3 + 2*r.Float64()
		}
		conv := r.Float64() < genConvProb[interaction]
		row := []string{
			day.Format(DateLayout),
			product,
			strategy,
			interaction,
			strconv.Itoa(int(math.Round(qty))),
			boolDigit(conv),
			boolDigit(anomaly),
		}
		if opt.Regions {
			row = append(row, genRegions[r.IntN(len(genRegions))])
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func boolDigit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
