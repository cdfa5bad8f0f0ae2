package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	JobStore struct {
		Type string        `yaml:"type"` // "memory" or "redis"
		TTL  time.Duration `yaml:"ttl"`  // retention for terminal jobs, 0 keeps forever
	} `yaml:"job_store"`
	Queue struct {
		Type      string        `yaml:"type"` // "memory" or "redis"
		Workers   int           `yaml:"workers"`
		QueueSize int           `yaml:"queue_size"`
		KeyPrefix string        `yaml:"key_prefix"`
		PollDelay time.Duration `yaml:"poll_delay"`
	} `yaml:"queue"`
	Redis struct {
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port"`
		Password     string        `yaml:"password"`
		DB           int           `yaml:"db"`
		PoolSize     int           `yaml:"pool_size"`
		MinIdleConns int           `yaml:"min_idle_conns"`
		PoolTimeout  time.Duration `yaml:"pool_timeout"`
		Prefix       string        `yaml:"prefix"`
	} `yaml:"redis"`
	ClickHouse struct {
		Enabled      bool          `yaml:"enabled"`
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port"`
		Database     string        `yaml:"database"`
		User         string        `yaml:"user"`
		Password     string        `yaml:"password"`
		DialTimeout  time.Duration `yaml:"dial_timeout"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic"`
		RequiredAcks int           `yaml:"required_acks"`
		Compression  string        `yaml:"compression"`
		MaxAttempts  int           `yaml:"max_attempts"`
		BatchTimeout time.Duration `yaml:"batch_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"kafka"`
	Finnhub struct {
		APIKey  string        `yaml:"api_key"`
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"finnhub"`
	Forecast ForecastConfig `yaml:"forecast"`
	Client   struct {
		BaseURL        string        `yaml:"base_url"`
		PollInterval   time.Duration `yaml:"poll_interval"`
		MaxPolls       int           `yaml:"max_polls"`
		SubmitAttempts int           `yaml:"submit_attempts"`
		SubmitBackoff  time.Duration `yaml:"submit_backoff"`
	} `yaml:"client"`
}

// ForecastConfig fixes the model hyperparameters. They are global configuration,
// never tunable per request, so every job trained by one deployment is comparable.
type ForecastConfig struct {
	WindowSize    int     `yaml:"window_size"`
	HorizonDays   int     `yaml:"horizon_days"`
	Epochs        int     `yaml:"epochs"`
	BatchSize     int     `yaml:"batch_size"`
	HiddenUnits   int     `yaml:"hidden_units"`
	Dropout       float64 `yaml:"dropout"`
	TrainWeight   float64 `yaml:"train_weight"` // weighted epoch score: w*train + (1-w)*val
	Seed          int64   `yaml:"seed"`
	MinHistory    int     `yaml:"min_history"`
	SplitFraction float64 `yaml:"split_fraction"`
	HeadlineLimit int     `yaml:"headline_limit"`
}

// DefaultForecastConfig returns the fixed model defaults.
func DefaultForecastConfig() ForecastConfig {
	return ForecastConfig{
		WindowSize:    20,
		HorizonDays:   20,
		Epochs:        15,
		BatchSize:     64,
		HiddenUnits:   50,
		Dropout:       0.20,
		TrainWeight:   0.25,
		Seed:          12,
		MinHistory:    125,
		SplitFraction: 0.80,
		HeadlineLimit: 5,
	}
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	c, err := parse(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment
// variables. Overrides apply before validation, so a file that leaves a
// value (like the API key) to the environment still validates.
func LoadWithEnv(path string) (*Config, error) {
	c, err := parse(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("FINNHUB_API_KEY"); v != "" {
		c.Finnhub.APIKey = v
	}
	if v := os.Getenv("JOB_STORE"); v != "" {
		c.JobStore.Type = v
	}
	if v := os.Getenv("QUEUE"); v != "" {
		c.Queue.Type = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Redis.Host = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func parse(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	c := &Config{Forecast: DefaultForecastConfig()}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
	if c.JobStore.Type == "" {
		c.JobStore.Type = "memory"
	}
	if c.Queue.Type == "" {
		c.Queue.Type = "memory"
	}
	if c.Queue.Workers <= 0 {
		c.Queue.Workers = 2
	}
	if c.Queue.QueueSize <= 0 {
		c.Queue.QueueSize = 64
	}
	if c.Queue.KeyPrefix == "" {
		c.Queue.KeyPrefix = "stockcast:queue"
	}
	if c.Finnhub.BaseURL == "" {
		c.Finnhub.BaseURL = "https://finnhub.io/api/v1"
	}
	if c.Finnhub.Timeout <= 0 {
		c.Finnhub.Timeout = 15 * time.Second
	}
	if c.Client.PollInterval <= 0 {
		c.Client.PollInterval = 3 * time.Second
	}
	if c.Client.MaxPolls <= 0 {
		c.Client.MaxPolls = 20
	}
	if c.Client.SubmitAttempts <= 0 {
		c.Client.SubmitAttempts = 2
	}
	if c.Client.SubmitBackoff <= 0 {
		c.Client.SubmitBackoff = 5 * time.Second
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.JobStore.Type != "memory" && c.JobStore.Type != "redis" {
		return fmt.Errorf("job_store.type must be 'memory' or 'redis', got '%s'", c.JobStore.Type)
	}
	if c.Queue.Type != "memory" && c.Queue.Type != "redis" {
		return fmt.Errorf("queue.type must be 'memory' or 'redis', got '%s'", c.Queue.Type)
	}
	if c.Finnhub.APIKey == "" {
		return fmt.Errorf("finnhub.api_key is required")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when clickhouse is enabled")
	}
	return c.Forecast.Validate()
}

// Validate checks hyperparameter sanity.
func (f ForecastConfig) Validate() error {
	if f.WindowSize <= 0 || f.HorizonDays <= 0 || f.Epochs <= 0 || f.BatchSize <= 0 || f.HiddenUnits <= 0 {
		return fmt.Errorf("forecast: window_size, horizon_days, epochs, batch_size, hidden_units must be positive")
	}
	if f.Dropout < 0 || f.Dropout >= 1 {
		return fmt.Errorf("forecast: dropout must be in [0, 1)")
	}
	if f.TrainWeight < 0 || f.TrainWeight > 1 {
		return fmt.Errorf("forecast: train_weight must be in [0, 1]")
	}
	if f.SplitFraction <= 0 || f.SplitFraction >= 1 {
		return fmt.Errorf("forecast: split_fraction must be in (0, 1)")
	}
	if f.MinHistory <= f.WindowSize+1 {
		return fmt.Errorf("forecast: min_history must exceed window_size+1")
	}
	return nil
}
