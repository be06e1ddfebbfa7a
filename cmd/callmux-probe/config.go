// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"code.hybscloud.com/callmux/internal/logging"
	"github.com/spf13/viper"
)

// envPrefix prefixes every environment override, e.g. CALLMUX_ENDPOINT.
const envPrefix = "CALLMUX"

// Config is the probe configuration. Precedence: flags, environment,
// config file, defaults.
type Config struct {
	Endpoint string         `mapstructure:"endpoint"`
	Timeout  time.Duration  `mapstructure:"timeout"`
	Session  string         `mapstructure:"session"`
	Params   string         `mapstructure:"params"`
	Events   bool           `mapstructure:"events"`
	Log      logging.Config `mapstructure:"log"`
}

func setDefaults(v *viper.Viper) {
	logDefaults := logging.DefaultConfig()
	v.SetDefault("endpoint", "")
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("session", "")
	v.SetDefault("params", "")
	v.SetDefault("events", false)
	v.SetDefault("log.level", logDefaults.Level)
	v.SetDefault("log.format", logDefaults.Format)
	v.SetDefault("log.time_format", logDefaults.TimeFormat)
	v.SetDefault("log.output", logDefaults.Output)
}

// loadConfig reads the optional config file at path and decodes v.
func loadConfig(v *viper.Viper, path string) (Config, error) {
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.Endpoint == "" {
		return errors.New("endpoint is required (--endpoint or CALLMUX_ENDPOINT)")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.Params != "" && !json.Valid([]byte(c.Params)) {
		return fmt.Errorf("params is not valid JSON: %q", c.Params)
	}
	return nil
}
