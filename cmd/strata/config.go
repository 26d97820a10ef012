package main

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/tsawler/strata"
)

// loadConfig builds the pipeline configuration. Defaults come from the
// library; a config file, when present, overrides individual tunables.
// Environment variables with a STRATA_ prefix override both.
func loadConfig(cfgFile string) (strata.Config, error) {
	cfg := strata.DefaultConfig()

	v := viper.New()
	v.SetEnvPrefix("STRATA")
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("strata")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.strata")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("reading config file: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
