package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/salespulse/internal/config"
	"github.com/KaramelBytes/salespulse/internal/obs"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile   string
	debug     bool
	logFormat string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "salespulse",
	Short: "SalesPulse: sales dashboards and analytics over a product sales dataset",
	Long: `SalesPulse serves interactive sales dashboards, runs exploratory analytics
(interaction summary, regression, isolation-forest anomalies) and generates
synthetic datasets with the expected schema.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.salespulse/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text|json (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c
	initLogging(cfg)
}

// effectiveConfig returns the loaded config, or defaults when loading was skipped or failed.
func effectiveConfig() *cfgpkg.Global {
	if cfg == nil {
		cfg = cfgpkg.Default()
		initLogging(cfg)
	}
	return cfg
}

func initLogging(c *cfgpkg.Global) {
	format, level := c.LogFormat, c.LogLevel
	if logFormat != "" {
		format = logFormat
	}
	if debug {
		level = "debug"
	}
	obs.Init(os.Stderr, format, level)
}
