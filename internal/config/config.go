package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Dataset paths per dashboard variant. The analyze command uses ProductData.
	ProductData string `mapstructure:"product_data" yaml:"product_data"`
	RegionData  string `mapstructure:"region_data" yaml:"region_data"`

	// Dashboard server
	Addr    string `mapstructure:"addr" yaml:"addr"`
	Variant string `mapstructure:"variant" yaml:"variant"`

	// Analytics model parameters
	Contamination float64 `mapstructure:"contamination" yaml:"contamination"`
	ForestTrees   int     `mapstructure:"forest_trees" yaml:"forest_trees"`
	ForestSamples int     `mapstructure:"forest_samples" yaml:"forest_samples"`
	ForestSeed    int64   `mapstructure:"forest_seed" yaml:"forest_seed"`
	TestSize      float64 `mapstructure:"test_size" yaml:"test_size"`
	SplitSeed     int64   `mapstructure:"split_seed" yaml:"split_seed"`
	MaxPrintRows  int     `mapstructure:"max_print_rows" yaml:"max_print_rows"`

	// Logging
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("product_data", "large_product_sales_data.csv")
	v.SetDefault("region_data", "large_product_sales_500k.csv")
	v.SetDefault("addr", ":8501")
	v.SetDefault("variant", "product")
	// Model defaults
	v.SetDefault("contamination", 0.1)
	v.SetDefault("forest_trees", 100)
	v.SetDefault("forest_samples", 256)
	v.SetDefault("forest_seed", 0)
	v.SetDefault("test_size", 0.2)
	v.SetDefault("split_seed", 42)
	v.SetDefault("max_print_rows", 0)
	// Logging defaults
	v.SetDefault("log_format", "text")
	v.SetDefault("log_level", "info")
}

// Default returns the built-in configuration without reading files or env.
func Default() *Global {
	v := viper.New()
	setDefaults(v)
	var c Global
	_ = v.Unmarshal(&c)
	return &c
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.salespulse/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := configDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("SALESPULSE")
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks value ranges that would otherwise surface as model errors later.
func (c *Global) Validate() error {
	if c.Contamination <= 0 || c.Contamination > 0.5 {
		return fmt.Errorf("invalid contamination %.3f: must be in (0, 0.5]", c.Contamination)
	}
	if c.TestSize <= 0 || c.TestSize >= 1 {
		return fmt.Errorf("invalid test_size %.3f: must be in (0, 1)", c.TestSize)
	}
	if c.ForestTrees <= 0 {
		return fmt.Errorf("invalid forest_trees %d: must be positive", c.ForestTrees)
	}
	if c.ForestSamples <= 1 {
		return fmt.Errorf("invalid forest_samples %d: must be at least 2", c.ForestSamples)
	}
	switch c.Variant {
	case "product", "region":
	default:
		return fmt.Errorf("invalid variant %q (use product or region)", c.Variant)
	}
	return nil
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".salespulse"), nil
}
