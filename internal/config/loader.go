package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load reads the config file at path and applies APP_ environment
// overrides (APP_POSTGRES_HOST overrides postgres.host, and so on).
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()

	var config Config
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config file not found: %w", err)
	}
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.SetDefaults()
	return &config, nil
}
