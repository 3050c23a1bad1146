package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is everything the storefront process needs. All keys can be set via
// STOREFRONT_* environment variables, e.g. STOREFRONT_BACKEND_URL.
type Config struct {
	ListenAddr      string        `mapstructure:"listen_addr"`
	BackendURL      string        `mapstructure:"backend_url"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	GeoDatasetURL   string        `mapstructure:"geo_dataset_url"`
	RedisAddr       string        `mapstructure:"redis_addr"`
	KafkaBrokers    []string      `mapstructure:"kafka_brokers"`
	KafkaTopic      string        `mapstructure:"kafka_topic"`
	LogLevel        string        `mapstructure:"log_level"`
	LogJSON         bool          `mapstructure:"log_json"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("backend_url", "http://localhost:3001")
	v.SetDefault("request_timeout", 15*time.Second)
	v.SetDefault("shutdown_timeout", 10*time.Second)
	v.SetDefault("geo_dataset_url", "")
	v.SetDefault("redis_addr", "")
	v.SetDefault("kafka_brokers", []string{})
	v.SetDefault("kafka_topic", "storefront-checkout")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", true)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.BackendURL == "" {
		return nil, fmt.Errorf("backend_url must be set")
	}
	return &cfg, nil
}
