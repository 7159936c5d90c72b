package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/salespulse/internal/analysis"
	"github.com/KaramelBytes/salespulse/internal/obs"
	"github.com/KaramelBytes/salespulse/internal/sales"
	"github.com/KaramelBytes/salespulse/internal/utils"
	"github.com/spf13/cobra"
)

var (
	anaData          string
	anaPlotPath      string
	anaOutputPath    string
	anaJSON          bool
	anaSheetName     string
	anaMaxRows       int
	anaDecimal       string
	anaThousands     string
	anaContamination float64
	anaSeed          int64
	anaTestSize      float64
	anaMaxPrint      int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Run interaction summary, regression and anomaly detection over a dataset",
	Long: `Analyze loads a sales dataset (CSV, TSV or XLSX), prints the interaction
summary and numeric describe, fits a quantity regression on an 80/20 split and
labels anomalies with an isolation forest. Without a file argument the
configured product_data path is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := effectiveConfig()
		path := c.ProductData
		if anaData != "" {
			path = anaData
		}
		if len(args) == 1 {
			path = args[0]
		}
		lopt, err := loadOptionsFromFlags()
		if err != nil {
			return err
		}
		tbl, err := sales.Load(path, lopt)
		if err != nil {
			return err
		}
		obs.Logger.Info("dataset_loaded", "path", path, "rows", tbl.Len(), "skipped", tbl.Skipped)

		opt := analysis.DefaultOptions()
		opt.Contamination = c.Contamination
		opt.Trees = c.ForestTrees
		opt.MaxSamples = c.ForestSamples
		opt.ForestSeed = uint64(c.ForestSeed)
		opt.TestSize = c.TestSize
		opt.SplitSeed = uint64(c.SplitSeed)
		opt.MaxPrint = c.MaxPrintRows
		if cmd.Flags().Changed("contamination") {
			opt.Contamination = anaContamination
		}
		if cmd.Flags().Changed("seed") {
			opt.SplitSeed = uint64(anaSeed)
			opt.ForestSeed = uint64(anaSeed)
		}
		if cmd.Flags().Changed("test-size") {
			opt.TestSize = anaTestSize
		}
		if cmd.Flags().Changed("max-print") {
			opt.MaxPrint = anaMaxPrint
		}
		opt.PlotPath = anaPlotPath

		rep, err := analysis.Run(tbl, opt)
		if err != nil {
			return err
		}

		var out []byte
		if anaJSON {
			if out, err = utils.PrettyJSON(rep); err != nil {
				return err
			}
		} else {
			out = []byte(rep.Text())
		}
		if anaOutputPath != "" {
			if err := utils.SafeWriteFile(anaOutputPath, out); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote analysis to %s\n", anaOutputPath)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
		}
		if rep.PlotPath != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote actual-vs-predicted plot to %s\n", rep.PlotPath)
		}
		return nil
	},
}

func loadOptionsFromFlags() (sales.LoadOptions, error) {
	opt := sales.LoadOptions{Sheet: anaSheetName, MaxRows: anaMaxRows}
	switch strings.ToLower(strings.TrimSpace(anaDecimal)) {
	case ",", "comma":
		opt.DecimalSeparator = ','
	case ".", "dot":
		opt.DecimalSeparator = '.'
	case "":
	default:
		return opt, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", anaDecimal)
	}
	switch strings.ToLower(strings.TrimSpace(anaThousands)) {
	case ",":
		opt.ThousandsSeparator = ','
	case ".":
		opt.ThousandsSeparator = '.'
	case "space", " ":
		opt.ThousandsSeparator = ' '
	case "":
	default:
		return opt, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", anaThousands)
	}
	return opt, nil
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVar(&anaData, "data", "", "dataset path (default product_data from config)")
	analyzeCmd.Flags().StringVar(&anaPlotPath, "plot", "", "write the actual-vs-predicted scatter plot (PNG) to this path")
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "write the report to this file instead of stdout")
	analyzeCmd.Flags().BoolVar(&anaJSON, "json", false, "emit the report as JSON")
	analyzeCmd.Flags().StringVar(&anaSheetName, "sheet", "", "XLSX: sheet name (default first sheet)")
	analyzeCmd.Flags().IntVar(&anaMaxRows, "max-rows", 0, "limit rows read (0 = unlimited)")
	analyzeCmd.Flags().StringVar(&anaDecimal, "decimal", "", "decimal separator: '.'|'comma' (default auto)")
	analyzeCmd.Flags().StringVar(&anaThousands, "thousands", "", "thousands separator: ','|'.'|'space' (default auto)")
	analyzeCmd.Flags().Float64Var(&anaContamination, "contamination", 0.1, "expected anomaly share in (0, 0.5]")
	analyzeCmd.Flags().Int64Var(&anaSeed, "seed", 42, "seed for the train/test split and the forest")
	analyzeCmd.Flags().Float64Var(&anaTestSize, "test-size", 0.2, "share of rows held out for testing")
	analyzeCmd.Flags().IntVar(&anaMaxPrint, "max-print", 0, "max prediction lines printed (0 = all)")
}
