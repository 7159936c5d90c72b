package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/salespulse/internal/config"
	"github.com/KaramelBytes/salespulse/internal/utils"
	"github.com/spf13/cobra"
)

var cfgShowJSON bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set SalesPulse configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := effectiveConfig()
		out := cmd.OutOrStdout()
		if cfgShowJSON {
			b, err := utils.PrettyJSON(c)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		fmt.Fprintf(out, "product_data: %s\n", c.ProductData)
		fmt.Fprintf(out, "region_data: %s\n", c.RegionData)
		fmt.Fprintf(out, "addr: %s\n", c.Addr)
		fmt.Fprintf(out, "variant: %s\n", c.Variant)
		fmt.Fprintf(out, "contamination: %.3f\n", c.Contamination)
		fmt.Fprintf(out, "forest_trees: %d\n", c.ForestTrees)
		fmt.Fprintf(out, "forest_samples: %d\n", c.ForestSamples)
		fmt.Fprintf(out, "forest_seed: %d\n", c.ForestSeed)
		fmt.Fprintf(out, "test_size: %.3f\n", c.TestSize)
		fmt.Fprintf(out, "split_seed: %d\n", c.SplitSeed)
		fmt.Fprintf(out, "max_print_rows: %d\n", c.MaxPrintRows)
		fmt.Fprintf(out, "log_format: %s\n", c.LogFormat)
		fmt.Fprintf(out, "log_level: %s\n", c.LogLevel)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		next := *cfg
		if err := setConfigValue(&next, key, val); err != nil {
			return err
		}
		if err := next.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(&next, cfgFile); err != nil {
			return err
		}
		cfg = &next
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func setConfigValue(c *cfgpkg.Global, key, val string) error {
	atoi := func() (int, error) {
		i, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("invalid int for %s: %v", key, val)
		}
		return i, nil
	}
	atoi64 := func() (int64, error) {
		i, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid int for %s: %v", key, val)
		}
		return i, nil
	}
	atof := func() (float64, error) {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid float for %s: %v", key, val)
		}
		return f, nil
	}
	var err error
	switch key {
	case "product_data":
		c.ProductData = val
	case "region_data":
		c.RegionData = val
	case "addr":
		c.Addr = val
	case "variant":
		c.Variant = strings.ToLower(val)
	case "contamination":
		c.Contamination, err = atof()
	case "forest_trees":
		c.ForestTrees, err = atoi()
	case "forest_samples":
		c.ForestSamples, err = atoi()
	case "forest_seed":
		c.ForestSeed, err = atoi64()
	case "test_size":
		c.TestSize, err = atof()
	case "split_seed":
		c.SplitSeed, err = atoi64()
	case "max_print_rows":
		c.MaxPrintRows, err = atoi()
	case "log_format":
		switch strings.ToLower(val) {
		case "text", "json":
			c.LogFormat = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_format: %s (use text or json)", val)
		}
	case "log_level":
		c.LogLevel = strings.ToLower(val)
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return err
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configShowCmd.Flags().BoolVar(&cfgShowJSON, "json", false, "print configuration as JSON")
}
