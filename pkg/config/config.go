package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"120s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"logging"`
	Scheduler struct {
		Enabled  bool   `yaml:"enabled" default:"true"`
		Spec     string `yaml:"spec" default:"30 3 * * *"`
		Location string `yaml:"location" default:"Asia/Tokyo"`
	} `yaml:"scheduler"`
	Pipeline struct {
		// Gate for any today-prediction attempt (valid rows and history days).
		MinDaysToday int `yaml:"min_days_today" default:"14"`
		// Gates for attempting the 3-day target at all.
		MinDays3d      int `yaml:"min_days_3d" default:"30"`
		MinUnhealthy3d int `yaml:"min_unhealthy_3d" default:"5"`
		// Gates for enabling the gradient-boosted tree candidate.
		TreeMinDays      int `yaml:"tree_min_days" default:"45"`
		TreeMinUnhealthy int `yaml:"tree_min_unhealthy" default:"8"`
		// Trailing validation window length.
		ValidationDays int `yaml:"validation_days" default:"14"`
		// Recency window for active-user discovery and missing-rate.
		ActiveUserDays int `yaml:"active_user_days" default:"7"`
		Workers        int `yaml:"workers" default:"4"`
	} `yaml:"pipeline"`
	Confidence struct {
		MediumDays       int     `yaml:"medium_days" default:"30"`
		MediumUnhealthy  int     `yaml:"medium_unhealthy" default:"5"`
		HighDays         int     `yaml:"high_days" default:"60"`
		HighUnhealthy    int     `yaml:"high_unhealthy" default:"10"`
		MissingThreshold float64 `yaml:"missing_threshold" default:"0.3"`
	} `yaml:"confidence"`
	ClickHouse struct {
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"wellpulse"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
	} `yaml:"clickhouse"`
	Redis struct {
		Enabled  bool   `yaml:"enabled" default:"true"`
		Host     string `yaml:"host" default:"localhost"`
		Port     int    `yaml:"port" default:"6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db" default:"0"`
		Prefix   string `yaml:"prefix" default:"wellpulse"`
	} `yaml:"redis"`
	Kafka struct {
		Enabled      bool          `yaml:"enabled" default:"false"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic" default:"prediction.completed"`
		RequiredAcks int           `yaml:"required_acks" default:"-1"`
		Compression  string        `yaml:"compression" default:"gzip"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
	} `yaml:"kafka"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Redis.Host = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Pipeline.MinDaysToday < 1 {
		return fmt.Errorf("pipeline.min_days_today must be >= 1")
	}
	if c.Pipeline.ValidationDays < 1 {
		return fmt.Errorf("pipeline.validation_days must be >= 1")
	}
	if c.Pipeline.Workers < 1 {
		return fmt.Errorf("pipeline.workers must be >= 1")
	}
	if c.Confidence.MediumDays > c.Confidence.HighDays {
		return fmt.Errorf("confidence.medium_days must not exceed confidence.high_days")
	}
	if c.Confidence.MissingThreshold < 0 || c.Confidence.MissingThreshold > 1 {
		return fmt.Errorf("confidence.missing_threshold must be in [0,1]")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if _, err := time.LoadLocation(c.Scheduler.Location); err != nil {
		return fmt.Errorf("scheduler.location: %w", err)
	}
	return nil
}

// Location returns the scheduler's time location. Validate() already checks
// it loads, so an error here means the config changed after startup.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Scheduler.Location)
}
