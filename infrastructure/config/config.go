// Package config loads pipeline configuration from the environment and an
// optional YAML file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Environment string

	// AWS configuration
	AWSRegion  string
	StreamName string
	TableName  string

	// Consumer configuration
	IteratorType     string // LATEST or TRIM_HORIZON
	GetRecordsLimit  int32
	PollInterval     time.Duration
	RunDuration      time.Duration
	AnomalyThreshold float64

	// Producer configuration
	Subreddit        string
	ProducerDuration time.Duration
	SecretName       string
	UserAgent        string

	// Batch export configuration
	ExportBucket string
	ExportLimit  int

	// Report configuration
	ReportBucket   string
	ReportTempDir  string
	ReportKey      string
	AthenaDatabase string

	// Observability
	LogLevel        string
	EnableMetrics   bool
	MetricNamespace string
}

// Load reads configuration from REDSTREAM_* environment variables, with an
// optional config file layered underneath. An empty cfgFile skips the file.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("environment", "development")
	v.SetDefault("aws_region", "eu-north-1")
	v.SetDefault("stream_name", "reddit-bde")
	v.SetDefault("table_name", "tbl_reddit_processed")
	v.SetDefault("iterator_type", "LATEST")
	v.SetDefault("get_records_limit", 100)
	v.SetDefault("poll_interval", time.Second)
	v.SetDefault("run_duration", 55*time.Minute)
	v.SetDefault("anomaly_threshold", 3.0)
	v.SetDefault("subreddit", "learnpython")
	v.SetDefault("producer_duration", time.Hour)
	v.SetDefault("secret_name", "reddit-user-secret")
	v.SetDefault("user_agent", "redstream/0.1")
	v.SetDefault("export_bucket", "reddit-batch-data-bde")
	v.SetDefault("export_limit", 100)
	v.SetDefault("report_bucket", "reddit-processed-athena-results")
	v.SetDefault("report_temp_dir", "temp/")
	v.SetDefault("report_key", "latest-data.csv")
	v.SetDefault("athena_database", "default")
	v.SetDefault("log_level", "info")
	v.SetDefault("enable_metrics", false)
	v.SetDefault("metric_namespace", "Redstream/Pipeline")

	v.SetEnvPrefix("REDSTREAM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		Environment:      v.GetString("environment"),
		AWSRegion:        v.GetString("aws_region"),
		StreamName:       v.GetString("stream_name"),
		TableName:        v.GetString("table_name"),
		IteratorType:     v.GetString("iterator_type"),
		GetRecordsLimit:  v.GetInt32("get_records_limit"),
		PollInterval:     v.GetDuration("poll_interval"),
		RunDuration:      v.GetDuration("run_duration"),
		AnomalyThreshold: v.GetFloat64("anomaly_threshold"),
		Subreddit:        v.GetString("subreddit"),
		ProducerDuration: v.GetDuration("producer_duration"),
		SecretName:       v.GetString("secret_name"),
		UserAgent:        v.GetString("user_agent"),
		ExportBucket:     v.GetString("export_bucket"),
		ExportLimit:      v.GetInt("export_limit"),
		ReportBucket:     v.GetString("report_bucket"),
		ReportTempDir:    v.GetString("report_temp_dir"),
		ReportKey:        v.GetString("report_key"),
		AthenaDatabase:   v.GetString("athena_database"),
		LogLevel:         v.GetString("log_level"),
		EnableMetrics:    v.GetBool("enable_metrics"),
		MetricNamespace:  v.GetString("metric_namespace"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.StreamName == "" {
		return fmt.Errorf("stream_name is required")
	}
	if c.TableName == "" {
		return fmt.Errorf("table_name is required")
	}
	if c.IteratorType != "LATEST" && c.IteratorType != "TRIM_HORIZON" {
		return fmt.Errorf("iterator_type must be LATEST or TRIM_HORIZON, got %q", c.IteratorType)
	}
	if c.GetRecordsLimit <= 0 || c.GetRecordsLimit > 10000 {
		return fmt.Errorf("get_records_limit must be in (0, 10000], got %d", c.GetRecordsLimit)
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
