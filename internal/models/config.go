package models

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type CloudStorageConfig struct {
	Provider string `mapstructure:"provider"` // "s3" or "local"
	Region   string `mapstructure:"region"`
	Bucket   string `mapstructure:"bucket"`
}

type Config struct {
	Seed            int     `mapstructure:"seed"`
	InitialUsers    int     `mapstructure:"initial_users"`
	InitialPartners int     `mapstructure:"initial_partners"`
	CityName        string  `mapstructure:"city_name"`
	CityLat         float64 `mapstructure:"city_latitude"`
	CityLng         float64 `mapstructure:"city_longitude"`
	UrbanRadius     float64 `mapstructure:"urban_radius"` // km

	// Queue
	QueueWorkers int `mapstructure:"queue_workers"`
	QueueSize    int `mapstructure:"queue_size"`

	// Payment verification simulation
	PaymentSuccessRate float64       `mapstructure:"payment_success_rate"`
	PaymentLatency     time.Duration `mapstructure:"payment_latency"`

	// Location simulator
	LocationUpdateInterval time.Duration `mapstructure:"location_update_interval"`
	LocationJitter         float64       `mapstructure:"location_jitter"`

	// The source system never returned partners to the available pool after
	// a delivery; completed partners dropped out of matching forever. That
	// is almost certainly a bug, so the behaviour is explicit here. Off by
	// default to stay contract-compatible.
	RestorePartnerOnDelivery bool `mapstructure:"restore_partner_on_delivery"`

	// Outputs
	KafkaEnabled     bool   `mapstructure:"kafka_enabled"`
	KafkaBrokerList  string `mapstructure:"kafka_broker_list"`
	SessionTimeoutMs int    `mapstructure:"session_timeout_ms"`
	OutputFile       string `mapstructure:"output_file_path"`
	OutputFolder     string `mapstructure:"output_folder"`

	PostgresDSN  string             `mapstructure:"postgres_dsn"`
	CloudStorage CloudStorageConfig `mapstructure:"cloud_storage"`
}

// LoadConfig initializes and reads the configuration using Viper
func LoadConfig(cfgFile string) (*Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Default config location
		viper.AddConfigPath("examples")
		viper.SetConfigName("config")
		viper.SetConfigType("json")
	}

	viper.AutomaticEnv() // Read in environment variables that match

	viper.SetDefault("queue_workers", 4)
	viper.SetDefault("queue_size", 256)
	viper.SetDefault("payment_success_rate", 0.9)
	viper.SetDefault("payment_latency", "150ms")
	viper.SetDefault("location_update_interval", "3s")
	viper.SetDefault("location_jitter", 0.001)

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			config.DecodeHook,
			mapstructure.StringToTimeDurationHookFunc(),
		)
	})
	if err := viper.Unmarshal(&config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	return &config, nil
}
